package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/examena/surveillance-api/internal/models"
)

// AssignmentRepository manages persistence for surveillance assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// BeginTxx opens a transaction for solve persistence and manual edits.
func (r *AssignmentRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

const assignmentColumns = "id, teacher_id, exam_date, start_time, end_time, session_type, semester, room_code, is_responsible, created_at"

// ListByScope returns every assignment of one exam period ordered by slot.
func (r *AssignmentRepository) ListByScope(ctx context.Context, semester, sessionType string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE semester = $1 AND session_type = $2 ORDER BY exam_date ASC, start_time ASC, room_code ASC, teacher_id ASC", assignmentColumns)
	var rows []models.Assignment
	if err := r.db.SelectContext(ctx, &rows, query, semester, sessionType); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return rows, nil
}

// ListByTeacher returns one teacher's roster.
func (r *AssignmentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE teacher_id = $1 ORDER BY exam_date ASC, start_time ASC", assignmentColumns)
	var rows []models.Assignment
	if err := r.db.SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, fmt.Errorf("list assignments for teacher %s: %w", teacherID, err)
	}
	return rows, nil
}

// ListByTeacherAndDate returns a teacher's assignments for one date, the
// working set of the overlap check.
func (r *AssignmentRepository) ListByTeacherAndDate(ctx context.Context, teacherID, date string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE teacher_id = $1 AND exam_date = $2 ORDER BY start_time ASC", assignmentColumns)
	var rows []models.Assignment
	if err := r.db.SelectContext(ctx, &rows, query, teacherID, date); err != nil {
		return nil, fmt.Errorf("list assignments for teacher %s on %s: %w", teacherID, date, err)
	}
	return rows, nil
}

// ListBySession returns the teachers assigned to one derived session,
// enriched with display fields for roster payloads.
func (r *AssignmentRepository) ListBySession(ctx context.Context, key models.SessionKey) ([]models.AssignmentDetail, error) {
	query := `SELECT a.id, a.teacher_id, a.exam_date, a.start_time, a.end_time, a.session_type, a.semester, a.room_code, a.is_responsible, a.created_at,
			t.full_name AS teacher_name, t.code AS teacher_code, t.grade_code AS teacher_grade
		FROM assignments a
		JOIN teachers t ON t.id = a.teacher_id
		WHERE a.exam_date = $1 AND a.start_time = $2 AND a.end_time = $3 AND a.session_type = $4 AND a.semester = $5
		ORDER BY a.room_code ASC, t.full_name ASC`
	var rows []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &rows, query, key.Date, key.StartTime, key.EndTime, key.SessionType, key.Semester); err != nil {
		return nil, fmt.Errorf("list assignments for session %s: %w", key, err)
	}
	return rows, nil
}

// Insert stores one assignment inside the caller's transaction.
func (r *AssignmentRepository) Insert(ctx context.Context, exec sqlx.ExtContext, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, teacher_id, exam_date, start_time, end_time, session_type, semester, room_code, is_responsible, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := exec.ExecContext(ctx, query, a.ID, a.TeacherID, a.Date, a.StartTime, a.EndTime, a.SessionType, a.Semester, a.RoomCode, a.IsResponsible, a.CreatedAt); err != nil {
		return fmt.Errorf("insert assignment for teacher %s: %w", a.TeacherID, err)
	}
	return nil
}

// BulkInsert stores a full solve result inside the caller's transaction.
func (r *AssignmentRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, rows []models.Assignment) error {
	for i := range rows {
		if err := r.Insert(ctx, exec, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes one (teacher, session) pair, reporting whether it existed.
func (r *AssignmentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, teacherID string, key models.SessionKey) (bool, error) {
	const query = `DELETE FROM assignments
		WHERE teacher_id = $1 AND exam_date = $2 AND start_time = $3 AND end_time = $4 AND session_type = $5 AND semester = $6`
	result, err := exec.ExecContext(ctx, query, teacherID, key.Date, key.StartTime, key.EndTime, key.SessionType, key.Semester)
	if err != nil {
		return false, fmt.Errorf("delete assignment for teacher %s: %w", teacherID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete assignment for teacher %s: %w", teacherID, err)
	}
	return affected > 0, nil
}

// DeleteByScope clears every assignment of one exam period and returns the
// removed row count, the reset operation of the wire contract.
func (r *AssignmentRepository) DeleteByScope(ctx context.Context, exec sqlx.ExtContext, semester, sessionType string) (int64, error) {
	const query = `DELETE FROM assignments WHERE semester = $1 AND session_type = $2`
	result, err := exec.ExecContext(ctx, query, semester, sessionType)
	if err != nil {
		return 0, fmt.Errorf("reset assignments: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset assignments: %w", err)
	}
	return affected, nil
}

// SetResponsible flips the responsible flag to exactly one teacher of a
// session inside the caller's transaction.
func (r *AssignmentRepository) SetResponsible(ctx context.Context, exec sqlx.ExtContext, key models.SessionKey, teacherID string) error {
	const clear = `UPDATE assignments SET is_responsible = FALSE
		WHERE exam_date = $1 AND start_time = $2 AND end_time = $3 AND session_type = $4 AND semester = $5`
	if _, err := exec.ExecContext(ctx, clear, key.Date, key.StartTime, key.EndTime, key.SessionType, key.Semester); err != nil {
		return fmt.Errorf("clear responsible for session %s: %w", key, err)
	}
	if teacherID == "" {
		return nil
	}
	const set = `UPDATE assignments SET is_responsible = TRUE
		WHERE teacher_id = $1 AND exam_date = $2 AND start_time = $3 AND end_time = $4 AND session_type = $5 AND semester = $6`
	if _, err := exec.ExecContext(ctx, set, teacherID, key.Date, key.StartTime, key.EndTime, key.SessionType, key.Semester); err != nil {
		return fmt.Errorf("set responsible for session %s: %w", key, err)
	}
	return nil
}
