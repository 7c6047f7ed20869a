package dto

// ImportRowError pinpoints one rejected spreadsheet row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportSummary reports the outcome of a spreadsheet import.
type ImportSummary struct {
	Sheet    string           `json:"sheet"`
	Total    int              `json:"total"`
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// PreferenceRequest declares one availability wish of a teacher. Empty fields
// act as wildcards.
type PreferenceRequest struct {
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Weekday  string `json:"weekday" validate:"omitempty,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	SlotCode string `json:"slot_code" validate:"omitempty,oneof=S1 S2 S3 S4"`
}

// ReplacePreferencesRequest swaps a teacher's preference set for one dataset.
type ReplacePreferencesRequest struct {
	Semester    string              `json:"semester" validate:"required"`
	SessionType string              `json:"session_type" validate:"required,oneof=principal makeup"`
	Preferences []PreferenceRequest `json:"preferences" validate:"dive"`
}
