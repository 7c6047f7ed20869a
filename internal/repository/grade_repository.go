package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/examena/surveillance-api/internal/models"
)

// GradeRepository manages persistence for grade quota settings.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeColumns = "code, display_name, rank, max_surveillances, min_surveillances, created_at, updated_at"

// List returns every grade ordered by seniority rank.
func (r *GradeRepository) List(ctx context.Context) ([]models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades ORDER BY rank ASC", gradeColumns)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// FindByCode fetches one grade.
func (r *GradeRepository) FindByCode(ctx context.Context, code string) (*models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE code = $1", gradeColumns)
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, code); err != nil {
		return nil, err
	}
	return &grade, nil
}

// Upsert stores a grade's quota configuration. Changing quotas makes the
// dataset eligible for a re-solve but never triggers one.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now

	const query = `INSERT INTO grades (code, display_name, rank, max_surveillances, min_surveillances, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO UPDATE SET display_name = EXCLUDED.display_name, rank = EXCLUDED.rank,
			max_surveillances = EXCLUDED.max_surveillances, min_surveillances = EXCLUDED.min_surveillances,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, grade.Code, grade.DisplayName, grade.Rank, grade.MaxSurveillances, grade.MinSurveillances, grade.CreatedAt, grade.UpdatedAt); err != nil {
		return fmt.Errorf("upsert grade %s: %w", grade.Code, err)
	}
	return nil
}
