package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SessionKey identifies a surveillance session: one date and time range in
// one session type and semester, spanning every room examined in that slot.
type SessionKey struct {
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	SessionType string `json:"session_type"`
	Semester    string `json:"semester"`
}

// String renders the key in a stable pipe-delimited form, used for map keys
// and cache keys.
func (k SessionKey) String() string {
	return strings.Join([]string{k.Date, k.StartTime, k.EndTime, k.SessionType, k.Semester}, "|")
}

// SurveillanceSession is the derived unit of work for the solver: a slot key
// plus the rooms open during it. It is recomputed from exam rooms on every
// solve or query and never persisted on its own.
type SurveillanceSession struct {
	Key   SessionKey `json:"key"`
	Rooms []ExamRoom `json:"rooms"`

	// Required is the supervisor demand: minimum per room summed over rooms,
	// accounting for any single-supervisor relaxation applied by the solver.
	Required int `json:"required"`
}

// ParseDate validates a YYYY-MM-DD date string.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", raw)
	}
	return t, nil
}

// ParseClock converts an HH:MM clock string into minutes since midnight.
func ParseClock(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", raw)
	}
	return h*60 + m, nil
}

// RangesOverlap reports whether two [start, end) minute ranges intersect.
func RangesOverlap(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}

// Overlaps reports whether two session keys occupy intersecting time ranges
// on the same date. Malformed clock values are treated as overlapping so a
// bad row can never silently pass the no-overlap invariant.
func (k SessionKey) Overlaps(other SessionKey) bool {
	if k.Date != other.Date {
		return false
	}
	startA, errA := ParseClock(k.StartTime)
	endA, errB := ParseClock(k.EndTime)
	startB, errC := ParseClock(other.StartTime)
	endB, errD := ParseClock(other.EndTime)
	if errA != nil || errB != nil || errC != nil || errD != nil {
		return true
	}
	return RangesOverlap(startA, endA, startB, endB)
}

// SlotCode maps a start time onto one of the four canonical daily slots used
// by preference records (S1 morning early, S2 morning late, S3 afternoon
// early, S4 afternoon late).
func SlotCode(startTime string) string {
	minutes, err := ParseClock(startTime)
	if err != nil {
		return ""
	}
	switch {
	case minutes < 10*60:
		return "S1"
	case minutes < 12*60:
		return "S2"
	case minutes < 15*60:
		return "S3"
	default:
		return "S4"
	}
}
