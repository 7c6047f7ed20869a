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

// EditTeacherRepository resolves teachers referenced by manual edits.
type EditTeacherRepository interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// EditGradeRepository resolves grade ranks for responsible selection.
type EditGradeRepository interface {
	List(ctx context.Context) ([]models.Grade, error)
}

// EditExamRepository resolves the exam session targeted by an edit.
type EditExamRepository interface {
	ListBySlot(ctx context.Context, date, startTime string) ([]models.ExamRoom, error)
}

// EditAssignmentRepository mutates single assignments transactionally.
type EditAssignmentRepository interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	ListBySession(ctx context.Context, key models.SessionKey) ([]models.AssignmentDetail, error)
	ListByTeacherAndDate(ctx context.Context, teacherID, date string) ([]models.Assignment, error)
	Insert(ctx context.Context, exec sqlx.ExtContext, a *models.Assignment) error
	Delete(ctx context.Context, exec sqlx.ExtContext, teacherID string, key models.SessionKey) (bool, error)
	SetResponsible(ctx context.Context, exec sqlx.ExtContext, key models.SessionKey, teacherID string) error
}

// EditService applies manual roster corrections after a solve. Edits are
// serialized per dataset and preserve the single-responsible invariant; they
// never enforce quota bounds, which are a solver concern only.
type EditService struct {
	teachers    EditTeacherRepository
	grades      EditGradeRepository
	exams       EditExamRepository
	assignments EditAssignmentRepository
	cache       *CacheService
	locks       *datasetLocks
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewEditService constructs an edit service sharing the planning lock table.
func NewEditService(
	teachers EditTeacherRepository,
	grades EditGradeRepository,
	exams EditExamRepository,
	assignments EditAssignmentRepository,
	cache *CacheService,
	locks *datasetLocks,
	logger *zap.Logger,
) *EditService {
	if locks == nil {
		locks = newDatasetLocks()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditService{
		teachers:    teachers,
		grades:      grades,
		exams:       exams,
		assignments: assignments,
		cache:       cache,
		locks:       locks,
		validate:    validator.New(),
		logger:      logger,
	}
}

// resolveSession turns (date, start_time) into the full session key by
// consulting the exam calendar. The end time is inferred; two sessions with
// the same start but different ends in one dataset are rejected as ambiguous.
func (s *EditService) resolveSession(ctx context.Context, req dto.EditRequest) (models.SessionKey, []models.ExamRoom, error) {
	rooms, err := s.exams.ListBySlot(ctx, req.Date, req.StartTime)
	if err != nil {
		return models.SessionKey{}, nil, fmt.Errorf("resolve session: %w", err)
	}

	var matched []models.ExamRoom
	endTimes := make(map[string]struct{})
	for _, room := range rooms {
		if room.Semester != req.Semester || room.SessionType != req.SessionType {
			continue
		}
		if req.EndTime != "" && room.EndTime != req.EndTime {
			continue
		}
		matched = append(matched, room)
		endTimes[room.EndTime] = struct{}{}
	}
	if len(matched) == 0 {
		return models.SessionKey{}, nil, appErrors.Clone(appErrors.ErrNotFound,
			fmt.Sprintf("no exam session on %s at %s for dataset %s", req.Date, req.StartTime, DatasetKey(req.Semester, req.SessionType)))
	}
	if len(endTimes) > 1 {
		return models.SessionKey{}, nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("ambiguous session on %s at %s: multiple end times, set end_time to choose one", req.Date, req.StartTime))
	}

	key := models.SessionKey{
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     matched[0].EndTime,
		SessionType: req.SessionType,
		Semester:    req.Semester,
	}
	return key, matched, nil
}

// gradeRanks loads the grade table as a code to rank lookup.
func (s *EditService) gradeRanks(ctx context.Context) (map[string]int, error) {
	grades, err := s.grades.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load grades: %w", err)
	}
	ranks := make(map[string]int, len(grades))
	for _, g := range grades {
		ranks[g.Code] = g.Rank
	}
	return ranks, nil
}

// currentResponsible returns the teacher currently carrying the flag.
func currentResponsible(details []models.AssignmentDetail) string {
	for _, d := range details {
		if d.IsResponsible {
			return d.TeacherID
		}
	}
	return ""
}

// Add assigns one teacher to one session. The target room may be given; when
// omitted the least staffed room of the session is chosen.
func (s *EditService) Add(ctx context.Context, req dto.EditRequest) (*dto.EditResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "invalid edit request")
	}

	key := DatasetKey(req.Semester, req.SessionType)
	unlock, err := s.locks.lockEdit(key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		return nil, err
	}

	session, rooms, err := s.resolveSession(ctx, req)
	if err != nil {
		return nil, err
	}

	details, err := s.assignments.ListBySession(ctx, session)
	if err != nil {
		return nil, err
	}
	for _, d := range details {
		if d.TeacherID == teacher.ID {
			return nil, appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("teacher %s is already assigned to the session on %s at %s", teacher.ID, session.Date, session.StartTime))
		}
	}

	sameDay, err := s.assignments.ListByTeacherAndDate(ctx, teacher.ID, session.Date)
	if err != nil {
		return nil, err
	}
	for _, a := range sameDay {
		if a.SessionKey().Overlaps(session) {
			return nil, appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("teacher %s already supervises an overlapping session from %s to %s", teacher.ID, a.StartTime, a.EndTime))
		}
	}

	roomCode, err := pickRoom(req.RoomCode, rooms, details)
	if err != nil {
		return nil, err
	}

	ranks, err := s.gradeRanks(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.assignments.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin edit transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := models.Assignment{
		TeacherID:   teacher.ID,
		Date:        session.Date,
		StartTime:   session.StartTime,
		EndTime:     session.EndTime,
		SessionType: session.SessionType,
		Semester:    session.Semester,
		RoomCode:    roomCode,
	}
	if err := s.assignments.Insert(ctx, tx, &row); err != nil {
		return nil, err
	}

	candidates := make([]ResponsibleCandidate, 0, len(details)+1)
	for _, d := range details {
		candidates = append(candidates, ResponsibleCandidate{TeacherID: d.TeacherID, GradeRank: ranks[d.GradeCode]})
	}
	candidates = append(candidates, ResponsibleCandidate{TeacherID: teacher.ID, GradeRank: ranks[teacher.GradeCode]})

	lead, _ := SelectResponsible(candidates, currentResponsible(details))
	if err := s.assignments.SetResponsible(ctx, tx, session, lead); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit edit transaction: %w", err)
	}

	s.invalidate(ctx, session)
	s.logger.Info("assignment added",
		zap.String("teacher_id", teacher.ID),
		zap.String("session", session.String()),
		zap.String("room", roomCode),
	)

	return &dto.EditResponse{
		TeacherID:     teacher.ID,
		Date:          session.Date,
		StartTime:     session.StartTime,
		EndTime:       session.EndTime,
		RoomCode:      roomCode,
		ResponsibleID: lead,
		Supervisors:   len(details) + 1,
	}, nil
}

// Remove unassigns one teacher from one session. Removing the last
// supervisor is allowed but flagged with a coverage warning.
func (s *EditService) Remove(ctx context.Context, req dto.EditRequest) (*dto.EditResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "invalid edit request")
	}

	key := DatasetKey(req.Semester, req.SessionType)
	unlock, err := s.locks.lockEdit(key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, _, err := s.resolveSession(ctx, req)
	if err != nil {
		return nil, err
	}

	details, err := s.assignments.ListBySession(ctx, session)
	if err != nil {
		return nil, err
	}

	ranks, err := s.gradeRanks(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.assignments.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin edit transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	existed, err := s.assignments.Delete(ctx, tx, req.TeacherID, session)
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, appErrors.Clone(appErrors.ErrNotFound,
			fmt.Sprintf("teacher %s is not assigned to the session on %s at %s", req.TeacherID, session.Date, session.StartTime))
	}

	var remaining []models.AssignmentDetail
	candidates := make([]ResponsibleCandidate, 0, len(details))
	for _, d := range details {
		if d.TeacherID == req.TeacherID {
			continue
		}
		remaining = append(remaining, d)
		candidates = append(candidates, ResponsibleCandidate{TeacherID: d.TeacherID, GradeRank: ranks[d.GradeCode]})
	}

	lead, _ := SelectResponsible(candidates, currentResponsible(remaining))
	if err := s.assignments.SetResponsible(ctx, tx, session, lead); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit edit transaction: %w", err)
	}

	s.invalidate(ctx, session)
	s.logger.Info("assignment removed",
		zap.String("teacher_id", req.TeacherID),
		zap.String("session", session.String()),
	)

	resp := &dto.EditResponse{
		TeacherID:     req.TeacherID,
		Date:          session.Date,
		StartTime:     session.StartTime,
		EndTime:       session.EndTime,
		ResponsibleID: lead,
		Supervisors:   len(remaining),
	}
	if len(remaining) == 0 {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("session on %s at %s has no supervisors left", session.Date, session.StartTime))
	}
	return resp, nil
}

// pickRoom validates an explicit room choice or picks the least staffed room.
func pickRoom(requested string, rooms []models.ExamRoom, details []models.AssignmentDetail) (string, error) {
	staffing := make(map[string]int, len(rooms))
	for _, room := range rooms {
		staffing[room.RoomCode] = 0
	}
	for _, d := range details {
		if _, ok := staffing[d.RoomCode]; ok {
			staffing[d.RoomCode]++
		}
	}

	if requested != "" {
		if _, ok := staffing[requested]; !ok {
			return "", appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("room %s does not belong to the session", requested))
		}
		return requested, nil
	}

	best := ""
	for _, room := range rooms {
		if best == "" || staffing[room.RoomCode] < staffing[best] ||
			(staffing[room.RoomCode] == staffing[best] && room.RoomCode < best) {
			best = room.RoomCode
		}
	}
	return best, nil
}

func (s *EditService) invalidate(ctx context.Context, session models.SessionKey) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, rosterCachePattern(session.Semester, session.SessionType)); err != nil {
		s.logger.Warn("invalidate roster cache", zap.Error(err))
	}
}
