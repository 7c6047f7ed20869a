package solver

import (
	"time"

	"github.com/examena/surveillance-api/internal/models"
)

// Assignment is one (teacher, session, room) decision produced by a strategy.
// The responsible flag is derived afterwards by the selector, not here.
type Assignment struct {
	TeacherID string
	Session   models.SessionKey
	RoomCode  string
	Preferred bool
}

// Result is the shared output shape of the three strategies. Infeasibility is
// a structured negative result, never an error: Success=false always comes
// with a populated Report explaining the binding cause.
type Result struct {
	Success    bool
	Suboptimal bool
	Message    string
	Policy     Policy

	Assignments []Assignment
	Objective   float64
	Bound       float64
	WallTime    time.Duration
	Report      *Report
}

// Gap returns the relative optimality gap of the result.
func (r *Result) Gap() float64 {
	if r.Bound <= 0 {
		return 0
	}
	gap := (r.Bound - r.Objective) / r.Bound
	if gap < 0 {
		return 0
	}
	return gap
}
