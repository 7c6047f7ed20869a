package dto

// EditRequest identifies one teacher/session pair for a manual roster edit.
// The session is resolved from the exam calendar by date and start time;
// end_time is only needed when two sessions of the dataset share that slot.
type EditRequest struct {
	TeacherID   string `json:"teacher_id" validate:"required"`
	Date        string `json:"date" validate:"required"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time"`
	Semester    string `json:"semester" validate:"required"`
	SessionType string `json:"session_type" validate:"required,oneof=principal makeup"`
	RoomCode    string `json:"room_code"`
}

// EditResponse reports the state of the session after an edit.
type EditResponse struct {
	TeacherID     string   `json:"teacher_id"`
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	RoomCode      string   `json:"room_code,omitempty"`
	ResponsibleID string   `json:"responsible_id,omitempty"`
	Supervisors   int      `json:"supervisors"`
	Warnings      []string `json:"warnings,omitempty"`
}
