package models

import "time"

// Preference (a "voeu") is a teacher's stated availability for one day and
// slot. It is a soft signal: the solver rewards respecting it and the
// diagnostics report violations, but a preference never blocks an assignment.
type Preference struct {
	ID          string    `db:"id" json:"id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	Date        string    `db:"pref_date" json:"date"`
	Weekday     int       `db:"weekday" json:"weekday"`
	SlotCode    string    `db:"slot_code" json:"slot_code"`
	Semester    string    `db:"semester" json:"semester"`
	SessionType string    `db:"session_type" json:"session_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Matches reports whether the preference covers the given session key.
func (p Preference) Matches(key SessionKey) bool {
	if p.Semester != "" && p.Semester != key.Semester {
		return false
	}
	if p.SessionType != "" && p.SessionType != key.SessionType {
		return false
	}
	if p.Date != "" && p.Date != key.Date {
		return false
	}
	if p.Weekday != 0 {
		day, err := ParseDate(key.Date)
		if err != nil {
			return false
		}
		// Weekday is ISO numbered, Monday=1 through Sunday=7.
		iso := int(day.Weekday())
		if iso == 0 {
			iso = 7
		}
		if iso != p.Weekday {
			return false
		}
	}
	if p.SlotCode != "" && p.SlotCode != SlotCode(key.StartTime) {
		return false
	}
	return true
}
