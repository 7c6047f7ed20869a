package dto

// RosterQuery filters roster lookups by dataset.
type RosterQuery struct {
	Semester    string `form:"semester" validate:"required"`
	SessionType string `form:"session_type" validate:"required,oneof=principal makeup"`
}

// DutyEntry is one supervision duty on a teacher roster.
type DutyEntry struct {
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	RoomCode      string `json:"room_code"`
	IsResponsible bool   `json:"is_responsible"`
}

// TeacherRosterResponse is the full duty list of one teacher with quota context.
type TeacherRosterResponse struct {
	TeacherID   string      `json:"teacher_id"`
	TeacherName string      `json:"teacher_name"`
	GradeCode   string      `json:"grade_code"`
	QuotaMax    int         `json:"quota_max"`
	QuotaMin    int         `json:"quota_min"`
	DutyCount   int         `json:"duty_count"`
	Duties      []DutyEntry `json:"duties"`
}

// SessionSupervisor is one supervisor on a session roster.
type SessionSupervisor struct {
	TeacherID     string `json:"teacher_id"`
	TeacherName   string `json:"teacher_name"`
	TeacherCode   string `json:"teacher_code"`
	GradeCode     string `json:"grade_code"`
	RoomCode      string `json:"room_code"`
	IsResponsible bool   `json:"is_responsible"`
}

// SessionRosterResponse lists the supervisors of one exam session.
type SessionRosterResponse struct {
	Date        string              `json:"date"`
	StartTime   string              `json:"start_time"`
	EndTime     string              `json:"end_time"`
	Semester    string              `json:"semester"`
	SessionType string              `json:"session_type"`
	Rooms       []string            `json:"rooms"`
	Required    int                 `json:"required"`
	Assigned    int                 `json:"assigned"`
	Supervisors []SessionSupervisor `json:"supervisors"`
}

// SessionSummary is one session in the dataset session listing.
type SessionSummary struct {
	Date      string   `json:"date"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Rooms     []string `json:"rooms"`
	Required  int      `json:"required"`
	Assigned  int      `json:"assigned"`
}

// WorkloadRow summarises one teacher's load for the workload report.
type WorkloadRow struct {
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	GradeCode   string `json:"grade_code"`
	QuotaMax    int    `json:"quota_max"`
	DutyCount   int    `json:"duty_count"`
}
