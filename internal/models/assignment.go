package models

import "time"

// Assignment binds one teacher to one room of one surveillance session.
// A teacher appears at most once per session, and exactly one assignment per
// non-empty session carries the responsible flag.
type Assignment struct {
	ID            string    `db:"id" json:"id"`
	TeacherID     string    `db:"teacher_id" json:"teacher_id"`
	Date          string    `db:"exam_date" json:"date"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	SessionType   string    `db:"session_type" json:"session_type"`
	Semester      string    `db:"semester" json:"semester"`
	RoomCode      string    `db:"room_code" json:"room_code"`
	IsResponsible bool      `db:"is_responsible" json:"is_responsible"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// SessionKey returns the derived session this assignment belongs to.
func (a Assignment) SessionKey() SessionKey {
	return SessionKey{
		Date:        a.Date,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		SessionType: a.SessionType,
		Semester:    a.Semester,
	}
}

// AssignmentDetail enriches an assignment with teacher display fields for
// roster payloads.
type AssignmentDetail struct {
	Assignment
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	TeacherCode string `db:"teacher_code" json:"teacher_code"`
	GradeCode   string `db:"teacher_grade" json:"grade_code"`
}
