package solver

import (
	"fmt"
	"math"
	"time"
)

// Strategy is the common solve contract. Every implementation honors the
// model's time budget, returns its best incumbent when the budget runs out,
// and reports diagnostics through the same Result shape so callers stay
// policy-agnostic.
type Strategy interface {
	Policy() Policy
	Solve(m *Model) *Result
}

// ForPolicy returns the strategy registered for a policy.
func ForPolicy(p Policy) (Strategy, error) {
	switch p {
	case PolicyEqualQuota:
		return &equalQuotaStrategy{}, nil
	case PolicyWeighted:
		return &weightedStrategy{}, nil
	case PolicyStrictMax:
		return &strictMaxStrategy{}, nil
	default:
		return nil, fmt.Errorf("no strategy registered for policy %q", p)
	}
}

func noCeiling(int) int { return math.MaxInt32 }

// maxParallelSessions is the largest number of pairwise non-overlapping
// sessions, an upper bound on any single teacher's feasible load. Classic
// interval scheduling by earliest end time.
func maxParallelSessions(m *Model) int {
	count := 0
	lastEnd := map[string]int{}
	// sessions are already sorted by date then start; greedily take every
	// session starting at or after the previous accepted end on its date.
	for si := range m.sessions {
		s := &m.sessions[si]
		if end, ok := lastEnd[s.Key.Date]; !ok || s.startMin >= end {
			lastEnd[s.Key.Date] = s.endMin
			count++
		}
	}
	return count
}

// finish stamps timing and optimality metadata shared by every strategy.
func finish(res *Result, started time.Time, deadline time.Time, m *Model) *Result {
	res.WallTime = time.Since(started)
	res.Bound = idealBound
	if res.Success && res.Gap() > m.Opts.RelativeGapLimit && !time.Now().Before(deadline) {
		res.Suboptimal = true
	}
	return res
}
