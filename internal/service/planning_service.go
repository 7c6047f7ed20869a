package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/examena/surveillance-api/internal/dto"
	"github.com/examena/surveillance-api/internal/models"
	"github.com/examena/surveillance-api/internal/solver"
	"github.com/examena/surveillance-api/pkg/config"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
)

// PlanningTeacherRepository lists the teacher pool for a solve.
type PlanningTeacherRepository interface {
	ListParticipating(ctx context.Context) ([]models.Teacher, error)
}

// PlanningGradeRepository lists grade quota definitions.
type PlanningGradeRepository interface {
	List(ctx context.Context) ([]models.Grade, error)
}

// PlanningExamRepository lists the exam calendar of a dataset.
type PlanningExamRepository interface {
	ListByFilter(ctx context.Context, filter models.ExamRoomFilter) ([]models.ExamRoom, error)
}

// PlanningPreferenceRepository lists teacher preferences of a dataset.
type PlanningPreferenceRepository interface {
	ListByScope(ctx context.Context, semester, sessionType string) ([]models.Preference, error)
}

// PlanningAssignmentRepository persists solve results atomically.
type PlanningAssignmentRepository interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	DeleteByScope(ctx context.Context, exec sqlx.ExtContext, semester, sessionType string) (int64, error)
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, rows []models.Assignment) error
}

// PlanningService orchestrates roster generation: it loads the dataset,
// builds the constraint model, runs the selected strategy and atomically
// replaces the stored roster with the result.
type PlanningService struct {
	teachers    PlanningTeacherRepository
	grades      PlanningGradeRepository
	exams       PlanningExamRepository
	preferences PlanningPreferenceRepository
	assignments PlanningAssignmentRepository
	cache       *CacheService
	metrics     *MetricsService
	locks       *datasetLocks
	cfg         config.SolverConfig
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewPlanningService constructs a planning service.
func NewPlanningService(
	teachers PlanningTeacherRepository,
	grades PlanningGradeRepository,
	exams PlanningExamRepository,
	preferences PlanningPreferenceRepository,
	assignments PlanningAssignmentRepository,
	cache *CacheService,
	metrics *MetricsService,
	locks *datasetLocks,
	cfg config.SolverConfig,
	logger *zap.Logger,
) *PlanningService {
	if locks == nil {
		locks = newDatasetLocks()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanningService{
		teachers:    teachers,
		grades:      grades,
		exams:       exams,
		preferences: preferences,
		assignments: assignments,
		cache:       cache,
		metrics:     metrics,
		locks:       locks,
		cfg:         cfg,
		validate:    validator.New(),
		logger:      logger,
	}
}

// Locks exposes the dataset lock table so the edit service shares it.
func (s *PlanningService) Locks() *datasetLocks {
	return s.locks
}

// options translates the wire request into solver options, applying
// configured defaults and clamping the time budget.
func (s *PlanningService) options(req dto.SolveRequest) solver.Options {
	opts := solver.Options{
		MinPerRoom:       req.MinPerRoom,
		AllowSingle:      req.AllowSingle || s.cfg.AllowSingle,
		RelativeGapLimit: req.RelativeGapLimit,
		PreferenceWeight: req.PreferenceWeight,
		Workers:          s.cfg.Workers,
	}
	if opts.MinPerRoom < 1 {
		opts.MinPerRoom = s.cfg.MinPerRoom
	}
	if opts.RelativeGapLimit == 0 {
		opts.RelativeGapLimit = s.cfg.DefaultGapLimit
	}
	if opts.PreferenceWeight == 0 {
		opts.PreferenceWeight = s.cfg.PreferenceWeight
	}
	budget := time.Duration(req.MaxTimeInSeconds) * time.Second
	if budget <= 0 {
		budget = s.cfg.DefaultTimeBudget
	}
	if s.cfg.MaxTimeBudget > 0 && budget > s.cfg.MaxTimeBudget {
		budget = s.cfg.MaxTimeBudget
	}
	opts.TimeBudget = budget
	return opts
}

// Solve runs one roster generation for the requested dataset. Concurrent
// solves on the same dataset are rejected with Busy rather than queued.
func (s *PlanningService) Solve(ctx context.Context, req dto.SolveRequest) (*dto.SolveResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "invalid solve request")
	}
	policyName := req.Policy
	if policyName == "" {
		policyName = s.cfg.DefaultPolicy
	}
	policy, err := solver.ParsePolicy(policyName)
	if err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, err.Error())
	}
	strategy, err := solver.ForPolicy(policy)
	if err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, err.Error())
	}

	key := DatasetKey(req.Semester, req.SessionType)
	if err := s.locks.acquireSolve(key); err != nil {
		return nil, err
	}
	defer s.locks.releaseSolve(key)

	opts := s.options(req)

	rooms, err := s.exams.ListByFilter(ctx, models.ExamRoomFilter{Semester: req.Semester, SessionType: req.SessionType})
	if err != nil {
		return nil, fmt.Errorf("load exam calendar: %w", err)
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("no exam rooms found for dataset %s", key))
	}

	teachers, err := s.teachers.ListParticipating(ctx)
	if err != nil {
		return nil, fmt.Errorf("load teachers: %w", err)
	}
	gradeList, err := s.grades.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load grades: %w", err)
	}
	grades := make(map[string]models.Grade, len(gradeList))
	for _, g := range gradeList {
		grades[g.Code] = g
	}
	prefs, err := s.preferences.ListByScope(ctx, req.Semester, req.SessionType)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	sessions, err := GroupSessions(rooms, opts.MinPerRoom)
	if err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, err.Error())
	}

	model, err := solver.Build(teachers, grades, sessions, prefs, opts)
	if err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, err.Error())
	}

	s.logger.Info("solve started",
		zap.String("dataset", key),
		zap.String("policy", string(policy)),
		zap.Int("sessions", len(sessions)),
		zap.Int("required_slots", model.RequiredSlots()),
		zap.Duration("budget", opts.TimeBudget),
	)

	res := strategy.Solve(model)

	coverage := 0.0
	if model.RequiredSlots() > 0 {
		coverage = float64(len(res.Assignments)) / float64(model.RequiredSlots())
	}
	if s.metrics != nil {
		s.metrics.ObserveSolve(string(policy), res.Success, res.WallTime, coverage, res.Gap())
	}

	if res.Success {
		rows := s.toRows(req.Semester, req.SessionType, model, res.Assignments)
		if err := s.persist(ctx, req.Semester, req.SessionType, rows); err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, rosterCachePattern(req.Semester, req.SessionType)); err != nil {
				s.logger.Warn("invalidate roster cache", zap.Error(err))
			}
		}
	}

	s.logger.Info("solve finished",
		zap.String("dataset", key),
		zap.Bool("success", res.Success),
		zap.Int("assignments", len(res.Assignments)),
		zap.Float64("objective", res.Objective),
		zap.Float64("gap", res.Gap()),
		zap.Duration("wall_time", res.WallTime),
	)

	resp := &dto.SolveResponse{
		Success:        res.Success,
		Message:        res.Message,
		Policy:         string(res.Policy),
		AssignmentsNum: len(res.Assignments),
		GenerationTime: res.WallTime.Seconds(),
		Objective:      res.Objective,
		Bound:          res.Bound,
		Gap:            res.Gap(),
		Suboptimal:     res.Suboptimal,
		Warnings:       res.Report.Render(),
	}
	return resp, nil
}

// toRows converts solver output to assignment rows, stamping exactly one
// responsible supervisor per session.
func (s *PlanningService) toRows(semester, sessionType string, model *solver.Model, assignments []solver.Assignment) []models.Assignment {
	ranks := make(map[string]int, len(model.Teachers))
	for _, t := range model.Teachers {
		ranks[t.ID] = t.GradeRank
	}

	bySession := make(map[string][]int)
	rows := make([]models.Assignment, 0, len(assignments))
	for i, a := range assignments {
		rows = append(rows, models.Assignment{
			TeacherID:   a.TeacherID,
			Date:        a.Session.Date,
			StartTime:   a.Session.StartTime,
			EndTime:     a.Session.EndTime,
			SessionType: sessionType,
			Semester:    semester,
			RoomCode:    a.RoomCode,
		})
		sk := a.Session.String()
		bySession[sk] = append(bySession[sk], i)
	}

	for _, idxs := range bySession {
		candidates := make([]ResponsibleCandidate, 0, len(idxs))
		for _, i := range idxs {
			candidates = append(candidates, ResponsibleCandidate{TeacherID: rows[i].TeacherID, GradeRank: ranks[rows[i].TeacherID]})
		}
		lead, ok := SelectResponsible(candidates, "")
		if !ok {
			continue
		}
		for _, i := range idxs {
			if rows[i].TeacherID == lead {
				rows[i].IsResponsible = true
				break
			}
		}
	}
	return rows
}

// persist atomically swaps the stored roster of the dataset.
func (s *PlanningService) persist(ctx context.Context, semester, sessionType string, rows []models.Assignment) error {
	tx, err := s.assignments.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := s.assignments.DeleteByScope(ctx, tx, semester, sessionType); err != nil {
		return err
	}
	if err := s.assignments.BulkInsert(ctx, tx, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster transaction: %w", err)
	}
	return nil
}

// Reset clears every assignment of a dataset, leaving calendar, teachers and
// preferences untouched.
func (s *PlanningService) Reset(ctx context.Context, req dto.ResetRequest) (*dto.ResetResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "invalid reset request")
	}
	key := DatasetKey(req.Semester, req.SessionType)
	unlock, err := s.locks.lockEdit(key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx, err := s.assignments.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reset transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleted, err := s.assignments.DeleteByScope(ctx, tx, req.Semester, req.SessionType)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reset transaction: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, rosterCachePattern(req.Semester, req.SessionType)); err != nil {
			s.logger.Warn("invalidate roster cache", zap.Error(err))
		}
	}

	s.logger.Info("roster reset", zap.String("dataset", key), zap.Int64("deleted", deleted))
	return &dto.ResetResponse{Deleted: deleted}, nil
}
