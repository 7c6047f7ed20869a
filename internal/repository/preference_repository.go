package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/examena/surveillance-api/internal/models"
)

// PreferenceRepository manages persistence for teacher availability wishes.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs a PreferenceRepository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

const preferenceColumns = "id, teacher_id, pref_date, weekday, slot_code, semester, session_type, created_at"

// ListByScope returns every preference stated for one exam period.
func (r *PreferenceRepository) ListByScope(ctx context.Context, semester, sessionType string) ([]models.Preference, error) {
	query := fmt.Sprintf("SELECT %s FROM preferences WHERE semester = $1 AND session_type = $2 ORDER BY teacher_id ASC, pref_date ASC", preferenceColumns)
	var prefs []models.Preference
	if err := r.db.SelectContext(ctx, &prefs, query, semester, sessionType); err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return prefs, nil
}

// ListByTeacher returns one teacher's stated preferences.
func (r *PreferenceRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Preference, error) {
	query := fmt.Sprintf("SELECT %s FROM preferences WHERE teacher_id = $1 ORDER BY pref_date ASC, slot_code ASC", preferenceColumns)
	var prefs []models.Preference
	if err := r.db.SelectContext(ctx, &prefs, query, teacherID); err != nil {
		return nil, fmt.Errorf("list preferences for teacher %s: %w", teacherID, err)
	}
	return prefs, nil
}

// ReplaceForTeacher swaps a teacher's preference set atomically.
func (r *PreferenceRepository) ReplaceForTeacher(ctx context.Context, exec sqlx.ExtContext, teacherID string, prefs []models.Preference) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM preferences WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("clear preferences for teacher %s: %w", teacherID, err)
	}
	const query = `INSERT INTO preferences (id, teacher_id, pref_date, weekday, slot_code, semester, session_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	now := time.Now().UTC()
	for i := range prefs {
		if prefs[i].ID == "" {
			prefs[i].ID = uuid.NewString()
		}
		if prefs[i].CreatedAt.IsZero() {
			prefs[i].CreatedAt = now
		}
		p := prefs[i]
		if _, err := exec.ExecContext(ctx, query, p.ID, teacherID, p.Date, p.Weekday, p.SlotCode, p.Semester, p.SessionType, p.CreatedAt); err != nil {
			return fmt.Errorf("insert preference for teacher %s: %w", teacherID, err)
		}
	}
	return nil
}
