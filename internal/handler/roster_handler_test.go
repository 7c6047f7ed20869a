package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examena/surveillance-api/internal/dto"
	"github.com/examena/surveillance-api/internal/models"
	"github.com/examena/surveillance-api/internal/service"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
)

type rosterTeacherRepoStub struct {
	teacher *models.Teacher
}

func (s *rosterTeacherRepoStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if s.teacher != nil && s.teacher.ID == id {
		return s.teacher, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
}

func (s *rosterTeacherRepoStub) ListParticipating(ctx context.Context) ([]models.Teacher, error) {
	if s.teacher == nil {
		return nil, nil
	}
	return []models.Teacher{*s.teacher}, nil
}

type rosterGradeRepoStub struct {
	grades []models.Grade
}

func (s *rosterGradeRepoStub) List(ctx context.Context) ([]models.Grade, error) {
	return s.grades, nil
}

type rosterExamRepoStub struct {
	rooms []models.ExamRoom
}

func (s *rosterExamRepoStub) ListByFilter(ctx context.Context, filter models.ExamRoomFilter) ([]models.ExamRoom, error) {
	var out []models.ExamRoom
	for _, room := range s.rooms {
		if room.Semester != filter.Semester || room.SessionType != filter.SessionType {
			continue
		}
		if filter.Date != "" && room.Date != filter.Date {
			continue
		}
		out = append(out, room)
	}
	return out, nil
}

type rosterAssignmentRepoStub struct {
	assignments []models.Assignment
	details     []models.AssignmentDetail
}

func (s *rosterAssignmentRepoStub) ListByScope(ctx context.Context, semester, sessionType string) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range s.assignments {
		if a.Semester == semester && a.SessionType == sessionType {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *rosterAssignmentRepoStub) ListByTeacher(ctx context.Context, teacherID string) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range s.assignments {
		if a.TeacherID == teacherID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *rosterAssignmentRepoStub) ListBySession(ctx context.Context, key models.SessionKey) ([]models.AssignmentDetail, error) {
	var out []models.AssignmentDetail
	for _, d := range s.details {
		if d.Date == key.Date && d.StartTime == key.StartTime {
			out = append(out, d)
		}
	}
	return out, nil
}

func newRosterHandlerFixture() *RosterHandler {
	teachers := &rosterTeacherRepoStub{
		teacher: &models.Teacher{ID: "t-1", Code: "T1", FullName: "Alice Benali", GradeCode: "PR", Participates: true},
	}
	grades := &rosterGradeRepoStub{
		grades: []models.Grade{{Code: "PR", Rank: 1, MaxSurveillances: 2, MinSurveillances: 1}},
	}
	exams := &rosterExamRepoStub{
		rooms: []models.ExamRoom{
			{ID: "r-1", Date: "2025-06-02", StartTime: "08:00", EndTime: "10:00", Semester: "S1", SessionType: models.SessionPrincipal, RoomCode: "A101"},
			{ID: "r-2", Date: "2025-06-02", StartTime: "08:00", EndTime: "10:00", Semester: "S1", SessionType: models.SessionPrincipal, RoomCode: "B204"},
		},
	}
	assignments := &rosterAssignmentRepoStub{
		assignments: []models.Assignment{
			{
				ID: "a-1", TeacherID: "t-1",
				Date: "2025-06-02", StartTime: "08:00", EndTime: "10:00",
				SessionType: models.SessionPrincipal, Semester: "S1",
				RoomCode: "A101", IsResponsible: true,
			},
		},
		details: []models.AssignmentDetail{
			{
				Assignment: models.Assignment{
					ID: "a-1", TeacherID: "t-1",
					Date: "2025-06-02", StartTime: "08:00", EndTime: "10:00",
					SessionType: models.SessionPrincipal, Semester: "S1",
					RoomCode: "A101", IsResponsible: true,
				},
				TeacherName: "Alice Benali", TeacherCode: "T1", GradeCode: "PR",
			},
		},
	}
	svc := service.NewRosterService(teachers, grades, exams, assignments, nil, 2, nil)
	return NewRosterHandler(svc)
}

func TestRosterHandlerTeacherRoster(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRosterHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/rosters/teachers/t-1?semester=S1&session_type=principal", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}

	handler.TeacherRoster(c)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data dto.TeacherRosterResponse `json:"data"`
		Meta map[string]interface{}    `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "t-1", env.Data.TeacherID)
	assert.Equal(t, 1, env.Data.DutyCount)
	assert.Equal(t, 2, env.Data.QuotaMax)
	assert.Equal(t, false, env.Meta["cached"])
}

func TestRosterHandlerMissingScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRosterHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/rosters/teachers/t-1?semester=S1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}

	handler.TeacherRoster(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestRosterHandlerTeacherNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRosterHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/rosters/teachers/t-9?semester=S1&session_type=principal", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "t-9"}}

	handler.TeacherRoster(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRosterHandlerSessionRosterMissingSlot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRosterHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/rosters/session?semester=S1&session_type=principal&date=2025-06-02", nil)
	c.Request = req

	handler.SessionRoster(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRosterHandlerSessionRoster(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRosterHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet,
		"/rosters/session?semester=S1&session_type=principal&date=2025-06-02&start_time=08:00", nil)
	c.Request = req

	handler.SessionRoster(c)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data dto.SessionRosterResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, []string{"A101", "B204"}, env.Data.Rooms)
	assert.Equal(t, 4, env.Data.Required)
	assert.Equal(t, 1, env.Data.Assigned)
}

func TestRosterHandlerWorkload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRosterHandlerFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/rosters/workload?semester=S1&session_type=principal", nil)
	c.Request = req

	handler.Workload(c)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data []dto.WorkloadRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "t-1", env.Data[0].TeacherID)
}
