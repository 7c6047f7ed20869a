package service

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examena/surveillance-api/internal/dto"
	"github.com/examena/surveillance-api/internal/models"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
)

type stubTeacherDirectoryRepo struct {
	teachers      map[string]models.Teacher
	listTotal     int
	participation map[string]bool
}

func (m *stubTeacherDirectoryRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	out := make([]models.Teacher, 0, len(m.teachers))
	for _, t := range m.teachers {
		out = append(out, t)
	}
	return out, m.listTotal, nil
}

func (m *stubTeacherDirectoryRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return &t, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
}

func (m *stubTeacherDirectoryRepo) SetParticipation(ctx context.Context, id string, participates bool) error {
	t, ok := m.teachers[id]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	t.Participates = participates
	m.teachers[id] = t
	if m.participation == nil {
		m.participation = make(map[string]bool)
	}
	m.participation[id] = participates
	return nil
}

type stubTeacherPrefRepo struct {
	byTeacher map[string][]models.Preference
	replaced  map[string][]models.Preference
}

func (m *stubTeacherPrefRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Preference, error) {
	return m.byTeacher[teacherID], nil
}

func (m *stubTeacherPrefRepo) ReplaceForTeacher(ctx context.Context, exec sqlx.ExtContext, teacherID string, prefs []models.Preference) error {
	if m.replaced == nil {
		m.replaced = make(map[string][]models.Preference)
	}
	m.replaced[teacherID] = prefs
	return nil
}

type teacherFixture struct {
	svc         *TeacherService
	directory   *stubTeacherDirectoryRepo
	preferences *stubTeacherPrefRepo
	mock        sqlmock.Sqlmock
	cleanup     func()
}

func newTeacherFixture(t *testing.T) *teacherFixture {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	directory := &stubTeacherDirectoryRepo{
		teachers: map[string]models.Teacher{
			"t1": {ID: "t1", Code: "T1", FullName: "Alice Prof", GradeCode: "PR", Participates: true},
		},
		listTotal: 1,
	}
	grades := &stubEditGradeRepo{grades: []models.Grade{{Code: "PR", Rank: 1, MaxSurveillances: 2}}}
	preferences := &stubTeacherPrefRepo{byTeacher: make(map[string][]models.Preference)}

	svc := NewTeacherService(directory, grades, preferences, &stubTxBeginner{db: sqlx.NewDb(db, "sqlmock")}, nil)
	return &teacherFixture{
		svc:         svc,
		directory:   directory,
		preferences: preferences,
		mock:        mock,
		cleanup:     func() { db.Close() },
	}
}

func TestTeacherListNormalizesPagination(t *testing.T) {
	fx := newTeacherFixture(t)
	defer fx.cleanup()

	_, pagination, err := fx.svc.List(context.Background(), models.TeacherFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 50, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestTeacherSetParticipationReturnsUpdatedRecord(t *testing.T) {
	fx := newTeacherFixture(t)
	defer fx.cleanup()

	teacher, err := fx.svc.SetParticipation(context.Background(), "t1", false)
	require.NoError(t, err)
	assert.False(t, teacher.Participates)
	assert.Equal(t, map[string]bool{"t1": false}, fx.directory.participation)
}

func TestTeacherPreferencesRequireExistingTeacher(t *testing.T) {
	fx := newTeacherFixture(t)
	defer fx.cleanup()

	_, err := fx.svc.Preferences(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, "NOT_FOUND"))
}

func TestTeacherReplacePreferences(t *testing.T) {
	fx := newTeacherFixture(t)
	defer fx.cleanup()

	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	prefs, err := fx.svc.ReplacePreferences(context.Background(), "t1", dto.ReplacePreferencesRequest{
		Semester:    "S1",
		SessionType: models.SessionPrincipal,
		Preferences: []dto.PreferenceRequest{
			{Date: "2025-06-02", SlotCode: "S1"},
			{Weekday: "monday"},
		},
	})
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, "t1", prefs[0].TeacherID)
	assert.Equal(t, "2025-06-02", prefs[0].Date)
	assert.Equal(t, 1, prefs[1].Weekday)
	assert.Len(t, fx.preferences.replaced["t1"], 2)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestTeacherReplacePreferencesValidates(t *testing.T) {
	fx := newTeacherFixture(t)
	defer fx.cleanup()

	_, err := fx.svc.ReplacePreferences(context.Background(), "t1", dto.ReplacePreferencesRequest{
		Semester:    "S1",
		SessionType: models.SessionPrincipal,
		Preferences: []dto.PreferenceRequest{{SlotCode: "S9"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, "VALIDATION_ERROR"))
}
