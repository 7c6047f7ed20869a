package solver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examena/surveillance-api/internal/models"
)

func testSession(date, start, end string, roomCodes ...string) models.SurveillanceSession {
	s := models.SurveillanceSession{
		Key: models.SessionKey{
			Date:        date,
			StartTime:   start,
			EndTime:     end,
			SessionType: models.SessionPrincipal,
			Semester:    "S1",
		},
	}
	for _, code := range roomCodes {
		s.Rooms = append(s.Rooms, models.ExamRoom{RoomCode: code})
	}
	return s
}

func testTeacher(id, grade string) models.Teacher {
	return models.Teacher{ID: id, Code: id, FullName: "Teacher " + id, GradeCode: grade, Participates: true}
}

func testGrades() map[string]models.Grade {
	return map[string]models.Grade{
		"PR": {Code: "PR", Rank: 1, MaxSurveillances: 2},
		"MC": {Code: "MC", Rank: 2, MaxSurveillances: 3},
	}
}

func quickOptions(minPerRoom int) Options {
	return Options{MinPerRoom: minPerRoom, TimeBudget: 2 * time.Second, Workers: 1, Seed: 7}
}

func TestBuildOrdersSessionsChronologically(t *testing.T) {
	sessions := []models.SurveillanceSession{
		testSession("2025-06-03", "08:00", "10:00", "A1"),
		testSession("2025-06-02", "14:00", "16:00", "B1"),
		testSession("2025-06-02", "08:00", "10:00", "C1"),
	}

	m, err := Build(nil, testGrades(), sessions, nil, quickOptions(2))
	require.NoError(t, err)

	keys := m.Sessions()
	require.Len(t, keys, 3)
	assert.Equal(t, "2025-06-02", keys[0].Date)
	assert.Equal(t, "08:00", keys[0].StartTime)
	assert.Equal(t, "14:00", keys[1].StartTime)
	assert.Equal(t, "2025-06-03", keys[2].Date)
}

func TestBuildComputesDemandFromRooms(t *testing.T) {
	sessions := []models.SurveillanceSession{
		testSession("2025-06-02", "08:00", "10:00", "A1", "A2"),
		testSession("2025-06-03", "08:00", "10:00", "B1"),
	}

	m, err := Build(nil, testGrades(), sessions, nil, quickOptions(2))
	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalRooms())
	assert.Equal(t, 6, m.RequiredSlots())
}

func TestBuildSkipsNonParticipatingTeachers(t *testing.T) {
	optedOut := testTeacher("t2", "PR")
	optedOut.Participates = false
	teachers := []models.Teacher{testTeacher("t1", "PR"), optedOut}

	m, err := Build(teachers, testGrades(), nil, nil, quickOptions(2))
	require.NoError(t, err)
	require.Len(t, m.Teachers, 1)
	assert.Equal(t, "t1", m.Teachers[0].ID)
}

func TestBuildRejectsUnknownGrade(t *testing.T) {
	teachers := []models.Teacher{testTeacher("t1", "XX")}

	_, err := Build(teachers, testGrades(), nil, nil, quickOptions(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown grade")
}

func TestBuildRejectsMalformedSlots(t *testing.T) {
	bad := testSession("2025-06-02", "8h00", "10:00", "A1")
	_, err := Build(nil, testGrades(), []models.SurveillanceSession{bad}, nil, quickOptions(2))
	require.Error(t, err)

	inverted := testSession("2025-06-02", "10:00", "08:00", "A1")
	_, err = Build(nil, testGrades(), []models.SurveillanceSession{inverted}, nil, quickOptions(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ends before it starts")
}

func TestBuildMapsPreferencesToSessions(t *testing.T) {
	// 2025-06-02 is a Monday.
	sessions := []models.SurveillanceSession{
		testSession("2025-06-02", "08:00", "10:00", "A1"),
		testSession("2025-06-03", "08:00", "10:00", "B1"),
	}
	teachers := []models.Teacher{testTeacher("t1", "PR"), testTeacher("t2", "PR")}
	prefs := []models.Preference{
		{TeacherID: "t1", Weekday: 1},
	}

	m, err := Build(teachers, testGrades(), sessions, prefs, quickOptions(2))
	require.NoError(t, err)
	require.Len(t, m.Teachers, 2)

	assert.True(t, m.Teachers[0].HasPreferences())
	assert.True(t, m.Teachers[0].Prefers(0))
	assert.False(t, m.Teachers[0].Prefers(1))
	assert.False(t, m.Teachers[1].HasPreferences())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyWeighted, p)

	p, err = ParsePolicy("equal_quota")
	require.NoError(t, err)
	assert.Equal(t, PolicyEqualQuota, p)

	p, err = ParsePolicy("strict_max_quota")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrictMax, p)

	_, err = ParsePolicy("simplex")
	require.Error(t, err)
}

func TestOptionsNormalizeDefaults(t *testing.T) {
	var opts Options
	opts.normalize()
	assert.Equal(t, 2, opts.MinPerRoom)
	assert.Equal(t, time.Minute, opts.TimeBudget)
	assert.Equal(t, 1.0, opts.PreferenceWeight)
	assert.Equal(t, 1, opts.Workers)

	opts = Options{RelativeGapLimit: 3}
	opts.normalize()
	assert.Equal(t, 1.0, opts.RelativeGapLimit)
}

func TestResultGap(t *testing.T) {
	r := &Result{Objective: 90, Bound: 100}
	assert.InDelta(t, 0.1, r.Gap(), 1e-9)

	r = &Result{Objective: 120, Bound: 100}
	assert.Equal(t, 0.0, r.Gap())

	r = &Result{Objective: 50, Bound: 0}
	assert.Equal(t, 0.0, r.Gap())
}
