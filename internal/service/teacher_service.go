package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/examena/surveillance-api/internal/dto"
	"github.com/examena/surveillance-api/internal/models"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
)

// TeacherDirectoryRepository is the persistence surface of the teacher
// directory.
type TeacherDirectoryRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	SetParticipation(ctx context.Context, id string, participates bool) error
}

// TeacherGradeRepository lists grade quota definitions for directory views.
type TeacherGradeRepository interface {
	List(ctx context.Context) ([]models.Grade, error)
}

// TeacherPreferenceRepository reads and replaces stated preferences.
type TeacherPreferenceRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Preference, error)
	ReplaceForTeacher(ctx context.Context, exec sqlx.ExtContext, teacherID string, prefs []models.Preference) error
}

// TeacherTxBeginner opens transactions for preference replacement.
type TeacherTxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TeacherService manages the teacher directory: listings, the participation
// flag and stated availability preferences.
type TeacherService struct {
	teachers    TeacherDirectoryRepository
	grades      TeacherGradeRepository
	preferences TeacherPreferenceRepository
	tx          TeacherTxBeginner
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(
	teachers TeacherDirectoryRepository,
	grades TeacherGradeRepository,
	preferences TeacherPreferenceRepository,
	tx TeacherTxBeginner,
	logger *zap.Logger,
) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{
		teachers:    teachers,
		grades:      grades,
		preferences: preferences,
		tx:          tx,
		validate:    validator.New(),
		logger:      logger,
	}
}

// List returns a filtered teacher page with pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.teachers.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return teachers, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one teacher by ID.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	return s.teachers.FindByID(ctx, id)
}

// Grades returns the grade quota table ordered by seniority.
func (s *TeacherService) Grades(ctx context.Context) ([]models.Grade, error) {
	return s.grades.List(ctx)
}

// SetParticipation toggles whether a teacher is considered by future solves.
// Existing assignments are untouched.
func (s *TeacherService) SetParticipation(ctx context.Context, id string, participates bool) (*models.Teacher, error) {
	if err := s.teachers.SetParticipation(ctx, id, participates); err != nil {
		return nil, err
	}
	s.logger.Info("participation updated", zap.String("teacher_id", id), zap.Bool("participates", participates))
	return s.teachers.FindByID(ctx, id)
}

// Preferences returns one teacher's stated preferences.
func (s *TeacherService) Preferences(ctx context.Context, teacherID string) ([]models.Preference, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, err
	}
	return s.preferences.ListByTeacher(ctx, teacherID)
}

// ReplacePreferences swaps a teacher's preference set for one dataset. An
// empty preference list clears the teacher's wishes.
func (s *TeacherService) ReplacePreferences(ctx context.Context, teacherID string, req dto.ReplacePreferencesRequest) ([]models.Preference, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "invalid preference request")
	}
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, err
	}

	prefs := make([]models.Preference, 0, len(req.Preferences))
	for _, p := range req.Preferences {
		pref := models.Preference{
			TeacherID:   teacherID,
			Date:        p.Date,
			SlotCode:    p.SlotCode,
			Semester:    req.Semester,
			SessionType: req.SessionType,
		}
		if p.Weekday != "" {
			day, err := parseWeekday(p.Weekday)
			if err != nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
			}
			pref.Weekday = day
		}
		prefs = append(prefs, pref)
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin preference transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := s.preferences.ReplaceForTeacher(ctx, tx, teacherID, prefs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit preference transaction: %w", err)
	}

	s.logger.Info("preferences replaced", zap.String("teacher_id", teacherID), zap.Int("count", len(prefs)))
	return prefs, nil
}
