package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/examena/surveillance-api/internal/dto"
	"github.com/examena/surveillance-api/internal/models"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
)

// RosterTeacherRepository resolves teachers for roster payloads.
type RosterTeacherRepository interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ListParticipating(ctx context.Context) ([]models.Teacher, error)
}

// RosterGradeRepository resolves quota bounds for roster payloads.
type RosterGradeRepository interface {
	List(ctx context.Context) ([]models.Grade, error)
}

// RosterExamRepository lists the exam calendar for session summaries.
type RosterExamRepository interface {
	ListByFilter(ctx context.Context, filter models.ExamRoomFilter) ([]models.ExamRoom, error)
}

// RosterAssignmentRepository reads stored assignments.
type RosterAssignmentRepository interface {
	ListByScope(ctx context.Context, semester, sessionType string) ([]models.Assignment, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Assignment, error)
	ListBySession(ctx context.Context, key models.SessionKey) ([]models.AssignmentDetail, error)
}

// RosterService serves the read side of the roster: per-teacher duty lists,
// per-session supervisor lists and dataset-wide summaries, cached in Redis
// and invalidated by every solve and edit.
type RosterService struct {
	teachers    RosterTeacherRepository
	grades      RosterGradeRepository
	exams       RosterExamRepository
	assignments RosterAssignmentRepository
	cache       *CacheService
	minPerRoom  int
	logger      *zap.Logger
}

// NewRosterService constructs a roster service.
func NewRosterService(
	teachers RosterTeacherRepository,
	grades RosterGradeRepository,
	exams RosterExamRepository,
	assignments RosterAssignmentRepository,
	cache *CacheService,
	minPerRoom int,
	logger *zap.Logger,
) *RosterService {
	if minPerRoom < 1 {
		minPerRoom = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		teachers:    teachers,
		grades:      grades,
		exams:       exams,
		assignments: assignments,
		cache:       cache,
		minPerRoom:  minPerRoom,
		logger:      logger,
	}
}

// TeacherRoster returns one teacher's duties within a dataset with quota
// context from the teacher's grade.
func (s *RosterService) TeacherRoster(ctx context.Context, teacherID string, q dto.RosterQuery) (*dto.TeacherRosterResponse, bool, error) {
	cacheKey := rosterCacheKey(q.Semester, q.SessionType, "teacher", teacherID)
	var cached dto.TeacherRosterResponse
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		return nil, false, err
	}

	grades, err := s.gradeIndex(ctx)
	if err != nil {
		return nil, false, err
	}
	grade := grades[teacher.GradeCode]

	duties, err := s.assignments.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, false, err
	}

	resp := &dto.TeacherRosterResponse{
		TeacherID:   teacher.ID,
		TeacherName: teacher.FullName,
		GradeCode:   teacher.GradeCode,
		QuotaMax:    grade.MaxSurveillances,
		QuotaMin:    grade.MinSurveillances,
		Duties:      []dto.DutyEntry{},
	}
	for _, a := range duties {
		if a.Semester != q.Semester || a.SessionType != q.SessionType {
			continue
		}
		resp.Duties = append(resp.Duties, dto.DutyEntry{
			Date:          a.Date,
			StartTime:     a.StartTime,
			EndTime:       a.EndTime,
			RoomCode:      a.RoomCode,
			IsResponsible: a.IsResponsible,
		})
	}
	resp.DutyCount = len(resp.Duties)

	s.store(ctx, cacheKey, resp)
	return resp, false, nil
}

// SessionRoster returns the supervisors of one session with room layout and
// demand context.
func (s *RosterService) SessionRoster(ctx context.Context, key models.SessionKey) (*dto.SessionRosterResponse, bool, error) {
	cacheKey := rosterCacheKey(key.Semester, key.SessionType, "session", key.Date, key.StartTime)
	var cached dto.SessionRosterResponse
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	rooms, err := s.exams.ListByFilter(ctx, models.ExamRoomFilter{
		Semester:    key.Semester,
		SessionType: key.SessionType,
		Date:        key.Date,
	})
	if err != nil {
		return nil, false, err
	}

	var roomCodes []string
	for _, room := range rooms {
		if room.StartTime != key.StartTime {
			continue
		}
		if key.EndTime == "" {
			key.EndTime = room.EndTime
		}
		roomCodes = append(roomCodes, room.RoomCode)
	}
	if len(roomCodes) == 0 {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound,
			fmt.Sprintf("no exam session on %s at %s for dataset %s", key.Date, key.StartTime, DatasetKey(key.Semester, key.SessionType)))
	}
	sort.Strings(roomCodes)

	details, err := s.assignments.ListBySession(ctx, key)
	if err != nil {
		return nil, false, err
	}

	resp := &dto.SessionRosterResponse{
		Date:        key.Date,
		StartTime:   key.StartTime,
		EndTime:     key.EndTime,
		Semester:    key.Semester,
		SessionType: key.SessionType,
		Rooms:       roomCodes,
		Required:    len(roomCodes) * s.minPerRoom,
		Assigned:    len(details),
		Supervisors: []dto.SessionSupervisor{},
	}
	for _, d := range details {
		resp.Supervisors = append(resp.Supervisors, dto.SessionSupervisor{
			TeacherID:     d.TeacherID,
			TeacherName:   d.TeacherName,
			TeacherCode:   d.TeacherCode,
			GradeCode:     d.GradeCode,
			RoomCode:      d.RoomCode,
			IsResponsible: d.IsResponsible,
		})
	}

	s.store(ctx, cacheKey, resp)
	return resp, false, nil
}

// Sessions lists every derived session of a dataset with assignment counts.
func (s *RosterService) Sessions(ctx context.Context, q dto.RosterQuery) ([]dto.SessionSummary, bool, error) {
	cacheKey := rosterCacheKey(q.Semester, q.SessionType, "sessions")
	var cached []dto.SessionSummary
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	rooms, err := s.exams.ListByFilter(ctx, models.ExamRoomFilter{Semester: q.Semester, SessionType: q.SessionType})
	if err != nil {
		return nil, false, err
	}
	sessions, err := GroupSessions(rooms, s.minPerRoom)
	if err != nil {
		return nil, false, err
	}

	assigned, err := s.assignments.ListByScope(ctx, q.Semester, q.SessionType)
	if err != nil {
		return nil, false, err
	}
	perSession := make(map[string]int)
	for _, a := range assigned {
		perSession[a.SessionKey().String()]++
	}

	summaries := make([]dto.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		codes := make([]string, 0, len(sess.Rooms))
		for _, room := range sess.Rooms {
			codes = append(codes, room.RoomCode)
		}
		summaries = append(summaries, dto.SessionSummary{
			Date:      sess.Key.Date,
			StartTime: sess.Key.StartTime,
			EndTime:   sess.Key.EndTime,
			Rooms:     codes,
			Required:  sess.Required,
			Assigned:  perSession[sess.Key.String()],
		})
	}

	s.store(ctx, cacheKey, summaries)
	return summaries, false, nil
}

// Workload reports the duty count of every participating teacher against its
// grade quota, sorted by heaviest load first.
func (s *RosterService) Workload(ctx context.Context, q dto.RosterQuery) ([]dto.WorkloadRow, bool, error) {
	cacheKey := rosterCacheKey(q.Semester, q.SessionType, "workload")
	var cached []dto.WorkloadRow
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	teachers, err := s.teachers.ListParticipating(ctx)
	if err != nil {
		return nil, false, err
	}
	grades, err := s.gradeIndex(ctx)
	if err != nil {
		return nil, false, err
	}
	assigned, err := s.assignments.ListByScope(ctx, q.Semester, q.SessionType)
	if err != nil {
		return nil, false, err
	}
	perTeacher := make(map[string]int)
	for _, a := range assigned {
		perTeacher[a.TeacherID]++
	}

	rows := make([]dto.WorkloadRow, 0, len(teachers))
	for _, t := range teachers {
		rows = append(rows, dto.WorkloadRow{
			TeacherID:   t.ID,
			TeacherName: t.FullName,
			GradeCode:   t.GradeCode,
			QuotaMax:    grades[t.GradeCode].MaxSurveillances,
			DutyCount:   perTeacher[t.ID],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DutyCount != rows[j].DutyCount {
			return rows[i].DutyCount > rows[j].DutyCount
		}
		return rows[i].TeacherID < rows[j].TeacherID
	})

	s.store(ctx, cacheKey, rows)
	return rows, false, nil
}

func (s *RosterService) gradeIndex(ctx context.Context) (map[string]models.Grade, error) {
	grades, err := s.grades.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load grades: %w", err)
	}
	index := make(map[string]models.Grade, len(grades))
	for _, g := range grades {
		index[g.Code] = g
	}
	return index, nil
}

func (s *RosterService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, 0); err != nil && s.logger != nil {
		s.logger.Warn("cache roster payload", zap.String("key", key), zap.Error(err))
	}
}
