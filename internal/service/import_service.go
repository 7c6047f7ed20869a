package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/examena/surveillance-api/internal/dto"
	"github.com/examena/surveillance-api/internal/models"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
)

// ImportTeacherRepository persists imported teachers and grades.
type ImportTeacherRepository interface {
	Upsert(ctx context.Context, teacher *models.Teacher) error
	FindByCode(ctx context.Context, code string) (*models.Teacher, error)
}

// ImportGradeRepository persists imported grade quota rows.
type ImportGradeRepository interface {
	Upsert(ctx context.Context, grade *models.Grade) error
	FindByCode(ctx context.Context, code string) (*models.Grade, error)
}

// ImportExamRepository persists the imported exam calendar.
type ImportExamRepository interface {
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, rooms []models.ExamRoom) error
	DeleteByScope(ctx context.Context, exec sqlx.ExtContext, semester, sessionType string) (int64, error)
}

// ImportPreferenceRepository persists imported preferences.
type ImportPreferenceRepository interface {
	ReplaceForTeacher(ctx context.Context, exec sqlx.ExtContext, teacherID string, prefs []models.Preference) error
}

// ImportTxBeginner opens transactions for atomic calendar swaps.
type ImportTxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// ImportService ingests the three spreadsheet inputs of the planning flow:
// the teacher directory, the exam calendar and teacher preferences. Rows are
// validated individually so one bad cell never poisons the whole workbook.
type ImportService struct {
	teachers    ImportTeacherRepository
	grades      ImportGradeRepository
	exams       ImportExamRepository
	preferences ImportPreferenceRepository
	tx          ImportTxBeginner
	maxRows     int
	logger      *zap.Logger
}

// NewImportService constructs an import service.
func NewImportService(
	teachers ImportTeacherRepository,
	grades ImportGradeRepository,
	exams ImportExamRepository,
	preferences ImportPreferenceRepository,
	tx ImportTxBeginner,
	maxRows int,
	logger *zap.Logger,
) *ImportService {
	if maxRows <= 0 {
		maxRows = 5000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		teachers:    teachers,
		grades:      grades,
		exams:       exams,
		preferences: preferences,
		tx:          tx,
		maxRows:     maxRows,
		logger:      logger,
	}
}

// readSheet opens the first sheet of a workbook and returns its rows.
func (s *ImportService) readSheet(reader io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "cannot parse workbook")
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", http.StatusBadRequest, "cannot read worksheet")
	}
	if len(rows) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workbook has no data rows below the header")
	}
	if len(rows)-1 > s.maxRows {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("workbook exceeds the %d row limit", s.maxRows))
	}
	return rows, nil
}

// headerIndex maps normalized header names to column positions.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")
		if key != "" {
			index[key] = i
		}
	}
	return index
}

func cell(row []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ImportTeachers ingests the teacher directory workbook. Expected columns:
// code, full_name, grade_code and an optional participates flag. Existing
// teachers are matched by code and updated in place.
func (s *ImportService) ImportTeachers(ctx context.Context, reader io.Reader) (*dto.ImportSummary, error) {
	rows, err := s.readSheet(reader)
	if err != nil {
		return nil, err
	}
	index := headerIndex(rows[0])
	for _, required := range []string{"code", "full_name", "grade_code"} {
		if _, ok := index[required]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing column %q in teacher workbook", required))
		}
	}

	summary := &dto.ImportSummary{Sheet: "teachers", Total: len(rows) - 1}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		code := cell(row, index, "code")
		name := cell(row, index, "full_name")
		gradeCode := cell(row, index, "grade_code")
		if code == "" && name == "" && gradeCode == "" {
			summary.Skipped++
			continue
		}
		if code == "" || name == "" || gradeCode == "" {
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: "code, full_name and grade_code are required"})
			continue
		}
		if _, err := s.grades.FindByCode(ctx, gradeCode); err != nil {
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: fmt.Sprintf("unknown grade %q", gradeCode)})
			continue
		}

		participates := true
		if raw := cell(row, index, "participates"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: fmt.Sprintf("invalid participates value %q", raw)})
				continue
			}
			participates = parsed
		}

		teacher := models.Teacher{Code: code, FullName: name, GradeCode: gradeCode, Participates: participates}
		if err := s.teachers.Upsert(ctx, &teacher); err != nil {
			return nil, err
		}
		summary.Imported++
	}

	s.logger.Info("teacher import finished", zap.Int("imported", summary.Imported), zap.Int("errors", len(summary.Errors)))
	return summary, nil
}

// ImportGrades ingests the grade quota workbook. Expected columns: code,
// display_name, rank, max_surveillances and optional min_surveillances.
func (s *ImportService) ImportGrades(ctx context.Context, reader io.Reader) (*dto.ImportSummary, error) {
	rows, err := s.readSheet(reader)
	if err != nil {
		return nil, err
	}
	index := headerIndex(rows[0])
	for _, required := range []string{"code", "rank", "max_surveillances"} {
		if _, ok := index[required]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing column %q in grade workbook", required))
		}
	}

	summary := &dto.ImportSummary{Sheet: "grades", Total: len(rows) - 1}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		code := cell(row, index, "code")
		if code == "" {
			summary.Skipped++
			continue
		}
		rank, err := strconv.Atoi(cell(row, index, "rank"))
		if err != nil || rank < 1 {
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: "rank must be a positive integer"})
			continue
		}
		maxS, err := strconv.Atoi(cell(row, index, "max_surveillances"))
		if err != nil || maxS < 0 {
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: "max_surveillances must be a non-negative integer"})
			continue
		}
		minS := 0
		if raw := cell(row, index, "min_surveillances"); raw != "" {
			minS, err = strconv.Atoi(raw)
			if err != nil || minS < 0 || minS > maxS {
				summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: "min_surveillances must be between 0 and max_surveillances"})
				continue
			}
		}

		grade := models.Grade{
			Code:             code,
			DisplayName:      cell(row, index, "display_name"),
			Rank:             rank,
			MaxSurveillances: maxS,
			MinSurveillances: minS,
		}
		if err := s.grades.Upsert(ctx, &grade); err != nil {
			return nil, err
		}
		summary.Imported++
	}

	s.logger.Info("grade import finished", zap.Int("imported", summary.Imported), zap.Int("errors", len(summary.Errors)))
	return summary, nil
}

// ImportExamCalendar ingests the exam calendar workbook for one dataset and
// atomically replaces the stored calendar of that dataset. Expected columns:
// date, start_time, end_time, room_code and optional exam_type.
func (s *ImportService) ImportExamCalendar(ctx context.Context, semester, sessionType string, reader io.Reader) (*dto.ImportSummary, error) {
	if semester == "" || (sessionType != models.SessionPrincipal && sessionType != models.SessionMakeup) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester and a valid session_type are required")
	}
	rows, err := s.readSheet(reader)
	if err != nil {
		return nil, err
	}
	index := headerIndex(rows[0])
	for _, required := range []string{"date", "start_time", "end_time", "room_code"} {
		if _, ok := index[required]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing column %q in exam calendar workbook", required))
		}
	}

	summary := &dto.ImportSummary{Sheet: "exam_calendar", Total: len(rows) - 1}
	var rooms []models.ExamRoom
	seen := make(map[string]int)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		date := cell(row, index, "date")
		start := cell(row, index, "start_time")
		end := cell(row, index, "end_time")
		roomCode := cell(row, index, "room_code")
		if date == "" && start == "" && end == "" && roomCode == "" {
			summary.Skipped++
			continue
		}
		if roomCode == "" {
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: "room_code is required"})
			continue
		}
		if _, err := models.ParseDate(date); err != nil {
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date)})
			continue
		}
		startMin, err := models.ParseClock(start)
		if err != nil {
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: fmt.Sprintf("invalid start_time %q, expected HH:MM", start)})
			continue
		}
		endMin, err := models.ParseClock(end)
		if err != nil {
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: fmt.Sprintf("invalid end_time %q, expected HH:MM", end)})
			continue
		}
		if endMin <= startMin {
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: "end_time must be after start_time"})
			continue
		}
		slotRoom := date + "|" + start + "|" + roomCode
		if first, dup := seen[slotRoom]; dup {
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: fmt.Sprintf("duplicate of row %d: room %s already occupied on %s at %s", first, roomCode, date, start)})
			continue
		}
		seen[slotRoom] = i + 1

		rooms = append(rooms, models.ExamRoom{
			Date:        date,
			StartTime:   start,
			EndTime:     end,
			Semester:    semester,
			SessionType: sessionType,
			RoomCode:    roomCode,
			ExamType:    cell(row, index, "exam_type"),
		})
		summary.Imported++
	}

	if len(rooms) > 0 {
		tx, err := s.tx.BeginTxx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin calendar transaction: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()
		if _, err := s.exams.DeleteByScope(ctx, tx, semester, sessionType); err != nil {
			return nil, err
		}
		if err := s.exams.BulkInsert(ctx, tx, rooms); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit calendar transaction: %w", err)
		}
	}

	s.logger.Info("exam calendar import finished",
		zap.String("dataset", DatasetKey(semester, sessionType)),
		zap.Int("imported", summary.Imported),
		zap.Int("errors", len(summary.Errors)),
	)
	return summary, nil
}

// ImportPreferences ingests the preference workbook for one dataset.
// Expected columns: teacher_code plus any of date, weekday, slot_code; empty
// cells are wildcards. All preferences of a teacher are replaced at once.
func (s *ImportService) ImportPreferences(ctx context.Context, semester, sessionType string, reader io.Reader) (*dto.ImportSummary, error) {
	if semester == "" || (sessionType != models.SessionPrincipal && sessionType != models.SessionMakeup) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester and a valid session_type are required")
	}
	rows, err := s.readSheet(reader)
	if err != nil {
		return nil, err
	}
	index := headerIndex(rows[0])
	if _, ok := index["teacher_code"]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing column \"teacher_code\" in preference workbook")
	}

	summary := &dto.ImportSummary{Sheet: "preferences", Total: len(rows) - 1}
	byTeacher := make(map[string][]models.Preference)
	order := make([]string, 0)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		code := cell(row, index, "teacher_code")
		if code == "" {
			summary.Skipped++
			continue
		}
		teacher, err := s.teachers.FindByCode(ctx, code)
		if err != nil {
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: fmt.Sprintf("unknown teacher code %q", code)})
			continue
		}

		pref := models.Preference{
			TeacherID:   teacher.ID,
			Semester:    semester,
			SessionType: sessionType,
		}
		if date := cell(row, index, "date"); date != "" {
			if _, err := models.ParseDate(date); err != nil {
				summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: fmt.Sprintf("invalid date %q", date)})
				continue
			}
			pref.Date = date
		}
		if weekday := cell(row, index, "weekday"); weekday != "" {
			day, err := parseWeekday(weekday)
			if err != nil {
				summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: err.Error()})
				continue
			}
			pref.Weekday = day
		}
		if slot := cell(row, index, "slot_code"); slot != "" {
			slot = strings.ToUpper(slot)
			switch slot {
			case "S1", "S2", "S3", "S4":
				pref.SlotCode = slot
			default:
				summary.Errors = append(summary.Errors, dto.ImportRowError{Row: i + 1, Message: fmt.Sprintf("invalid slot_code %q", slot)})
				continue
			}
		}

		if _, ok := byTeacher[teacher.ID]; !ok {
			order = append(order, teacher.ID)
		}
		byTeacher[teacher.ID] = append(byTeacher[teacher.ID], pref)
		summary.Imported++
	}

	if len(byTeacher) > 0 {
		tx, err := s.tx.BeginTxx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin preference transaction: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()
		for _, teacherID := range order {
			if err := s.preferences.ReplaceForTeacher(ctx, tx, teacherID, byTeacher[teacherID]); err != nil {
				return nil, err
			}
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit preference transaction: %w", err)
		}
	}

	s.logger.Info("preference import finished",
		zap.String("dataset", DatasetKey(semester, sessionType)),
		zap.Int("imported", summary.Imported),
		zap.Int("errors", len(summary.Errors)),
	)
	return summary, nil
}

var weekdayNames = map[string]int{
	"monday": 1, "tuesday": 2, "wednesday": 3, "thursday": 4,
	"friday": 5, "saturday": 6, "sunday": 7,
}

// parseWeekday accepts an English day name or an ISO number 1..7.
func parseWeekday(raw string) (int, error) {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if day, ok := weekdayNames[lowered]; ok {
		return day, nil
	}
	if n, err := strconv.Atoi(lowered); err == nil && n >= 1 && n <= 7 {
		return n, nil
	}
	return 0, fmt.Errorf("invalid weekday %q", raw)
}
