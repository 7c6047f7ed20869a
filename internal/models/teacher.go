package models

import "time"

// Teacher represents an instructor eligible for surveillance duty.
// Records are owned by the import layer; the engine only ever reads them,
// except for the participation flag which an administrator may toggle.
type Teacher struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	FullName     string    `db:"full_name" json:"full_name"`
	GradeCode    string    `db:"grade_code" json:"grade_code"`
	Participates bool      `db:"participates" json:"participates"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search       string
	GradeCode    string
	Participates *bool
	Page         int
	PageSize     int
}
