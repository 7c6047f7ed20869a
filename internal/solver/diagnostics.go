package solver

import (
	"fmt"
	"sort"
)

// Marker prefixes of the rendered warnings channel. Consumers classify lines
// by prefix instead of structured fields, so these are part of the wire
// contract and must stay stable.
const (
	MarkerSection = "### "
	MarkerItem    = "- "
	MarkerWarning = "WARNING: "
	MarkerError   = "ERROR: "
)

// GradeLoad summarises quota consumption for one grade.
type GradeLoad struct {
	Code         string  `json:"code"`
	Teachers     int     `json:"teachers"`
	Assigned     int     `json:"assigned"`
	QuotaTotal   int     `json:"quota_total"`
	UsagePercent float64 `json:"usage_percent"`
}

// PreferenceViolation enumerates one assignment that went against a stated
// preference set.
type PreferenceViolation struct {
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	Date        string `json:"date"`
	SlotCode    string `json:"slot_code"`
}

// PreferenceStats aggregates preference satisfaction.
type PreferenceStats struct {
	Respected  int                   `json:"respected"`
	Violated   int                   `json:"violated"`
	Violations []PreferenceViolation `json:"violations,omitempty"`
}

// Cause is one ranked probable reason for infeasibility or partial coverage,
// with a suggested remediation.
type Cause struct {
	Message     string `json:"message"`
	Remediation string `json:"remediation"`
}

// Report is the structured diagnostic record computed after every solve or
// edit batch. The warnings channel of the wire contract is rendered from it,
// so tests assert on the structure rather than on strings.
type Report struct {
	TotalSessions int `json:"total_sessions"`
	TotalRooms    int `json:"total_rooms"`
	RequiredSlots int `json:"required_slots"`
	AssignedSlots int `json:"assigned_slots"`
	RelaxedRooms  int `json:"relaxed_rooms"`

	UncoveredSessions  []string `json:"uncovered_sessions,omitempty"`
	UnresolvedSessions []string `json:"unresolved_sessions,omitempty"`

	GradeLoads  []GradeLoad     `json:"grade_loads"`
	Preferences PreferenceStats `json:"preferences"`
	Causes      []Cause         `json:"causes,omitempty"`
}

// AddCause appends a ranked probable cause.
func (r *Report) AddCause(message, remediation string) {
	r.Causes = append(r.Causes, Cause{Message: message, Remediation: remediation})
}

// Render flattens the report into the ordered line sequence of the wire
// contract: section headers, list items, warnings and errors, each with its
// fixed marker prefix.
func (r *Report) Render() []string {
	lines := []string{
		MarkerSection + "Coverage",
		fmt.Sprintf("%ssessions: %d, rooms: %d", MarkerItem, r.TotalSessions, r.TotalRooms),
		fmt.Sprintf("%ssupervisor slots: %d/%d assigned", MarkerItem, r.AssignedSlots, r.RequiredSlots),
	}
	if r.RelaxedRooms > 0 {
		lines = append(lines, fmt.Sprintf("%s%d room(s) relaxed to a single supervisor", MarkerWarning, r.RelaxedRooms))
	}
	for _, key := range r.UncoveredSessions {
		lines = append(lines, fmt.Sprintf("%ssession %s is under-staffed", MarkerWarning, key))
	}
	for _, key := range r.UnresolvedSessions {
		lines = append(lines, fmt.Sprintf("%ssession %s has no supervisor, no responsible could be designated", MarkerWarning, key))
	}

	lines = append(lines, MarkerSection+"Quota usage per grade")
	loads := make([]GradeLoad, len(r.GradeLoads))
	copy(loads, r.GradeLoads)
	sort.Slice(loads, func(i, j int) bool { return loads[i].Code < loads[j].Code })
	for _, load := range loads {
		lines = append(lines, fmt.Sprintf("%sgrade %s: %d teacher(s), %d/%d slots used (%.1f%%)",
			MarkerItem, load.Code, load.Teachers, load.Assigned, load.QuotaTotal, load.UsagePercent))
	}

	lines = append(lines, MarkerSection+"Preferences")
	lines = append(lines, fmt.Sprintf("%srespected: %d, violated: %d", MarkerItem, r.Preferences.Respected, r.Preferences.Violated))
	for _, v := range r.Preferences.Violations {
		lines = append(lines, fmt.Sprintf("%s%s assigned outside stated preferences on %s (%s)",
			MarkerWarning, v.TeacherName, v.Date, v.SlotCode))
	}

	if len(r.Causes) > 0 {
		lines = append(lines, MarkerSection+"Probable causes")
		for _, cause := range r.Causes {
			lines = append(lines, MarkerError+cause.Message)
			if cause.Remediation != "" {
				lines = append(lines, MarkerItem+"suggestion: "+cause.Remediation)
			}
		}
	}

	return lines
}
