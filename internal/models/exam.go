package models

import "time"

// Session types distinguish the principal exam wave from the makeup wave.
const (
	SessionPrincipal = "principal"
	SessionMakeup    = "makeup"
)

// ExamRoom is one room occupied during one exam slot. The import layer
// produces one row per room per slot; surveillance sessions are derived by
// grouping rows sharing the same slot key.
type ExamRoom struct {
	ID          string    `db:"id" json:"id"`
	Date        string    `db:"exam_date" json:"date"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	Semester    string    `db:"semester" json:"semester"`
	SessionType string    `db:"session_type" json:"session_type"`
	RoomCode    string    `db:"room_code" json:"room_code"`
	ExamType    string    `db:"exam_type" json:"exam_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ExamRoomFilter scopes exam room queries to one exam period.
type ExamRoomFilter struct {
	Semester    string
	SessionType string
	Date        string
}
