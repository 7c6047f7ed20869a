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

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = "id, code, full_name, grade_code, participates, created_at, updated_at"

// List returns teachers matching filters along with total count.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	base := "FROM teachers WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Participates != nil {
		conditions = append(conditions, fmt.Sprintf("participates = $%d", len(args)+1))
		args = append(args, *filter.Participates)
	}
	if filter.GradeCode != "" {
		conditions = append(conditions, fmt.Sprintf("grade_code = $%d", len(args)+1))
		args = append(args, filter.GradeCode)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY full_name ASC LIMIT %d OFFSET %d", teacherColumns, base, size, offset)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}

	return teachers, total, nil
}

// ListParticipating returns every teacher available for surveillance duty.
func (r *TeacherRepository) ListParticipating(ctx context.Context) ([]models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE participates = TRUE ORDER BY id ASC", teacherColumns)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list participating teachers: %w", err)
	}
	return teachers, nil
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByCode fetches a teacher by institutional code.
func (r *TeacherRepository) FindByCode(ctx context.Context, code string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE code = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, code); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Upsert inserts or refreshes a teacher row keyed by institutional code.
func (r *TeacherRepository) Upsert(ctx context.Context, teacher *models.Teacher) error {
	now := time.Now().UTC()
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now

	const query = `INSERT INTO teachers (id, code, full_name, grade_code, participates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO UPDATE SET full_name = EXCLUDED.full_name, grade_code = EXCLUDED.grade_code, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, teacher.ID, teacher.Code, teacher.FullName, teacher.GradeCode, teacher.Participates, teacher.CreatedAt, teacher.UpdatedAt); err != nil {
		return fmt.Errorf("upsert teacher %s: %w", teacher.Code, err)
	}
	return nil
}

// SetParticipation toggles the only mutable teacher field.
func (r *TeacherRepository) SetParticipation(ctx context.Context, id string, participates bool) error {
	const query = `UPDATE teachers SET participates = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, participates, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set participation for teacher %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set participation for teacher %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("teacher %s not found", id)
	}
	return nil
}
