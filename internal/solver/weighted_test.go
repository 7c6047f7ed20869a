package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examena/surveillance-api/internal/models"
)

func TestWeightedCoversAllRooms(t *testing.T) {
	sessions := []models.SurveillanceSession{
		testSession("2025-06-02", "08:00", "10:00", "A1"),
	}
	teachers := []models.Teacher{testTeacher("t1", "PR"), testTeacher("t2", "PR")}

	m, err := Build(teachers, testGrades(), sessions, nil, quickOptions(2))
	require.NoError(t, err)

	res := (&weightedStrategy{}).Solve(m)
	require.True(t, res.Success)
	assert.Equal(t, "weighted roster generated", res.Message)
	assert.Len(t, res.Assignments, 2)
	assert.Equal(t, 2, res.Report.AssignedSlots)
	assert.Empty(t, res.Report.Causes)
}

func TestWeightedReportsPartialCoverage(t *testing.T) {
	sessions := []models.SurveillanceSession{
		testSession("2025-06-02", "08:00", "10:00", "A1"),
	}
	teachers := []models.Teacher{testTeacher("t1", "PR")}

	m, err := Build(teachers, testGrades(), sessions, nil, quickOptions(2))
	require.NoError(t, err)

	res := (&weightedStrategy{}).Solve(m)

	// Partial coverage is still a success: the best roster is returned and
	// the shortfall lands in the diagnostics instead.
	require.True(t, res.Success)
	assert.Equal(t, "roster generated with partial coverage", res.Message)
	assert.Len(t, res.Assignments, 1)
	require.NotEmpty(t, res.Report.Causes)
	assert.Contains(t, res.Report.Causes[0].Message, "could not be staffed")
	assert.Contains(t, res.Report.UncoveredSessions, m.Sessions()[0].String())
}

func TestWeightedRelaxesRoomToSingleSupervisor(t *testing.T) {
	sessions := []models.SurveillanceSession{
		testSession("2025-06-02", "08:00", "10:00", "A1"),
	}
	teachers := []models.Teacher{testTeacher("t1", "PR")}

	opts := quickOptions(2)
	opts.AllowSingle = true
	m, err := Build(teachers, testGrades(), sessions, nil, opts)
	require.NoError(t, err)

	res := (&weightedStrategy{}).Solve(m)
	require.True(t, res.Success)
	assert.Equal(t, "weighted roster generated", res.Message)
	assert.Len(t, res.Assignments, 1)
	assert.Equal(t, 1, res.Report.RelaxedRooms)
	assert.Empty(t, res.Report.Causes)
	assert.Empty(t, res.Report.UncoveredSessions)
}

func TestWeightedFavorsStatedPreferences(t *testing.T) {
	sessions := []models.SurveillanceSession{
		testSession("2025-06-02", "08:00", "10:00", "A1"),
		testSession("2025-06-03", "08:00", "10:00", "B1"),
	}
	teachers := []models.Teacher{testTeacher("t1", "PR"), testTeacher("t2", "PR")}
	prefs := []models.Preference{{TeacherID: "t1", Date: "2025-06-02"}}

	m, err := Build(teachers, testGrades(), sessions, prefs, quickOptions(1))
	require.NoError(t, err)

	res := (&weightedStrategy{}).Solve(m)
	require.True(t, res.Success)
	require.Len(t, res.Assignments, 2)

	for _, a := range res.Assignments {
		if a.Session.Date == "2025-06-02" {
			assert.Equal(t, "t1", a.TeacherID)
			assert.True(t, a.Preferred)
		}
	}
	assert.Equal(t, 1, res.Report.Preferences.Respected)
	assert.Zero(t, res.Report.Preferences.Violated)
}

func TestWeightedIsDeterministicForFixedSeed(t *testing.T) {
	sessions := []models.SurveillanceSession{
		testSession("2025-06-02", "08:00", "10:00", "A1", "A2"),
		testSession("2025-06-03", "08:00", "10:00", "B1"),
		testSession("2025-06-03", "14:00", "16:00", "C1"),
	}
	teachers := []models.Teacher{
		testTeacher("t1", "PR"), testTeacher("t2", "PR"),
		testTeacher("t3", "MC"), testTeacher("t4", "MC"),
	}

	solveOnce := func() []Assignment {
		m, err := Build(teachers, testGrades(), sessions, nil, quickOptions(2))
		require.NoError(t, err)
		res := (&weightedStrategy{}).Solve(m)
		require.True(t, res.Success)
		return res.Assignments
	}

	assert.Equal(t, solveOnce(), solveOnce())
}
