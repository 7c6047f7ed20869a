package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/examena/surveillance-api/internal/models"
)

// ExamRoomRepository manages persistence for imported exam calendar rows.
type ExamRoomRepository struct {
	db *sqlx.DB
}

// NewExamRoomRepository constructs an ExamRoomRepository.
func NewExamRoomRepository(db *sqlx.DB) *ExamRoomRepository {
	return &ExamRoomRepository{db: db}
}

const examRoomColumns = "id, exam_date, start_time, end_time, semester, session_type, room_code, exam_type, created_at"

// ListByFilter returns exam rooms scoped to an exam period, ordered by slot.
func (r *ExamRoomRepository) ListByFilter(ctx context.Context, filter models.ExamRoomFilter) ([]models.ExamRoom, error) {
	base := "FROM exam_rooms WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.SessionType != "" {
		conditions = append(conditions, fmt.Sprintf("session_type = $%d", len(args)+1))
		args = append(args, filter.SessionType)
	}
	if filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("exam_date = $%d", len(args)+1))
		args = append(args, filter.Date)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY exam_date ASC, start_time ASC, room_code ASC", examRoomColumns, base)
	var rooms []models.ExamRoom
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("list exam rooms: %w", err)
	}
	return rooms, nil
}

// ListBySlot returns the rooms open at one (date, start time) slot, used to
// resolve the target session of a manual add.
func (r *ExamRoomRepository) ListBySlot(ctx context.Context, date, startTime string) ([]models.ExamRoom, error) {
	query := fmt.Sprintf("SELECT %s FROM exam_rooms WHERE exam_date = $1 AND start_time = $2 ORDER BY room_code ASC", examRoomColumns)
	var rooms []models.ExamRoom
	if err := r.db.SelectContext(ctx, &rooms, query, date, startTime); err != nil {
		return nil, fmt.Errorf("list exam rooms for slot %s %s: %w", date, startTime, err)
	}
	return rooms, nil
}

// BulkInsert stores imported exam rows inside the caller's transaction.
func (r *ExamRoomRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, rooms []models.ExamRoom) error {
	const query = `INSERT INTO exam_rooms (id, exam_date, start_time, end_time, semester, session_type, room_code, exam_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	now := time.Now().UTC()
	for i := range rooms {
		if rooms[i].ID == "" {
			rooms[i].ID = uuid.NewString()
		}
		if rooms[i].CreatedAt.IsZero() {
			rooms[i].CreatedAt = now
		}
		room := rooms[i]
		if _, err := exec.ExecContext(ctx, query, room.ID, room.Date, room.StartTime, room.EndTime, room.Semester, room.SessionType, room.RoomCode, room.ExamType, room.CreatedAt); err != nil {
			return fmt.Errorf("insert exam room %s %s %s: %w", room.Date, room.StartTime, room.RoomCode, err)
		}
	}
	return nil
}

// DeleteByScope clears the exam calendar for one exam period before a fresh
// import.
func (r *ExamRoomRepository) DeleteByScope(ctx context.Context, exec sqlx.ExtContext, semester, sessionType string) (int64, error) {
	const query = `DELETE FROM exam_rooms WHERE semester = $1 AND session_type = $2`
	result, err := exec.ExecContext(ctx, query, semester, sessionType)
	if err != nil {
		return 0, fmt.Errorf("delete exam rooms: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete exam rooms: %w", err)
	}
	return affected, nil
}
