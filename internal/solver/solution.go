package solver

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/examena/surveillance-api/internal/models"
)

// solution is the mutable search state shared by the three strategies: room
// rosters per session plus per-teacher bookkeeping to keep the no-overlap and
// single-appearance invariants cheap to check.
type solution struct {
	m          *Model
	roomAssign [][][]int // session -> room -> teacher indices
	inSession  []map[int]bool
	counts     []int
	relaxed    [][]bool
}

func newSolution(m *Model) *solution {
	s := &solution{
		m:          m,
		roomAssign: make([][][]int, len(m.sessions)),
		inSession:  make([]map[int]bool, len(m.Teachers)),
		counts:     make([]int, len(m.Teachers)),
		relaxed:    make([][]bool, len(m.sessions)),
	}
	for si := range m.sessions {
		s.roomAssign[si] = make([][]int, len(m.sessions[si].Rooms))
		s.relaxed[si] = make([]bool, len(m.sessions[si].Rooms))
	}
	for ti := range m.Teachers {
		s.inSession[ti] = make(map[int]bool)
	}
	return s
}

// canTake checks the hard constraints every policy shares: the teacher is not
// already in the session and holds no time-overlapping assignment that day.
func (s *solution) canTake(ti, si int) bool {
	if s.inSession[ti][si] {
		return false
	}
	for _, other := range s.m.overlaps[si] {
		if s.inSession[ti][other] {
			return false
		}
	}
	return true
}

func (s *solution) assign(ti, si, ri int) {
	s.roomAssign[si][ri] = append(s.roomAssign[si][ri], ti)
	s.inSession[ti][si] = true
	s.counts[ti]++
}

func (s *solution) unassign(ti, si, ri int) bool {
	room := s.roomAssign[si][ri]
	for i, existing := range room {
		if existing == ti {
			s.roomAssign[si][ri] = append(room[:i], room[i+1:]...)
			delete(s.inSession[ti], si)
			s.counts[ti]--
			return true
		}
	}
	return false
}

// evalStats aggregates every objective ingredient in one pass.
type evalStats struct {
	assignedSlots int
	missingSlots  int
	relaxedRooms  int
	respected     int
	violated      int
	overshoot     int
	balancePen    float64
}

func (s *solution) evaluate() evalStats {
	var st evalStats
	for si := range s.roomAssign {
		for ri, room := range s.roomAssign[si] {
			st.assignedSlots += len(room)
			need := s.m.sessions[si].Rooms[ri].Need
			if s.relaxed[si][ri] {
				st.relaxedRooms++
				need = 1
			}
			if len(room) < need {
				st.missingSlots += need - len(room)
			}
			for _, ti := range room {
				t := &s.m.Teachers[ti]
				if !t.HasPreferences() {
					continue
				}
				if t.Prefers(si) {
					st.respected++
				} else {
					st.violated++
				}
			}
		}
	}

	for ti := range s.m.Teachers {
		if over := s.counts[ti] - s.m.Teachers[ti].QuotaMax; over > 0 {
			st.overshoot += over
		}
	}

	// Load variance within each grade, the V2 balance term.
	byGrade := make(map[string][]int)
	gradeOrder := make([]string, 0)
	for ti := range s.m.Teachers {
		code := s.m.Teachers[ti].GradeCode
		if _, seen := byGrade[code]; !seen {
			gradeOrder = append(gradeOrder, code)
		}
		byGrade[code] = append(byGrade[code], s.counts[ti])
	}
	sort.Strings(gradeOrder)
	for _, code := range gradeOrder {
		loads := byGrade[code]
		if len(loads) < 2 {
			continue
		}
		var sum float64
		for _, n := range loads {
			sum += float64(n)
		}
		mean := sum / float64(len(loads))
		var variance float64
		for _, n := range loads {
			variance += (float64(n) - mean) * (float64(n) - mean)
		}
		st.balancePen += math.Sqrt(variance / float64(len(loads)))
	}

	return st
}

// idealBound is the best objective value any solution could reach: full
// coverage, every preference respected, no relaxation, perfect balance.
const idealBound = 100.0

func (s *solution) objective(policy Policy) float64 {
	st := s.evaluate()
	w := s.m.Opts.PreferenceWeight
	switch policy {
	case PolicyEqualQuota:
		return idealBound - w*float64(st.violated)
	case PolicyStrictMax:
		return idealBound -
			4*float64(st.missingSlots) -
			2*float64(st.relaxedRooms) -
			w*float64(st.violated) -
			2*st.balancePen
	default: // weighted
		return idealBound -
			4*float64(st.missingSlots) -
			2*float64(st.relaxedRooms) -
			3*float64(st.overshoot) -
			w*float64(st.violated) -
			2*st.balancePen
	}
}

// greedyFill walks sessions chronologically and staffs each room up to its
// demand. ceiling bounds a teacher's total count (math.MaxInt32 disables the
// bound); rng, when non-nil, jitters candidate scores for multi-start runs.
// Rooms left short are relaxed to one supervisor when the option allows it.
func (s *solution) greedyFill(rng *rand.Rand, ceiling func(ti int) int) {
	for si := range s.m.sessions {
		for ri := range s.m.sessions[si].Rooms {
			need := s.m.sessions[si].Rooms[ri].Need
			for len(s.roomAssign[si][ri]) < need {
				ti, ok := s.bestCandidate(rng, si, ceiling)
				if !ok {
					break
				}
				s.assign(ti, si, ri)
			}
			if len(s.roomAssign[si][ri]) == 1 && need > 1 && s.m.Opts.AllowSingle {
				s.relaxed[si][ri] = true
			}
		}
	}
}

// bestCandidate scores every eligible teacher for a session and returns the
// best one: preference matches first, then the lowest quota usage ratio, ties
// broken by teacher ID for determinism.
func (s *solution) bestCandidate(rng *rand.Rand, si int, ceiling func(ti int) int) (int, bool) {
	best := -1
	bestScore := math.Inf(-1)
	for ti := range s.m.Teachers {
		if s.counts[ti] >= ceiling(ti) {
			continue
		}
		if !s.canTake(ti, si) {
			continue
		}
		t := &s.m.Teachers[ti]
		score := 0.0
		if t.Prefers(si) {
			score += 10 * s.m.Opts.PreferenceWeight
		} else if t.HasPreferences() {
			score -= 2 * s.m.Opts.PreferenceWeight
		}
		quota := t.QuotaMax
		if quota < 1 {
			quota = 1
		}
		score -= 5 * float64(s.counts[ti]) / float64(quota)
		if rng != nil {
			score += rng.Float64() * 0.5
		}
		if score > bestScore {
			bestScore = score
			best = ti
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// improve runs a local search of transfer and swap moves until the deadline,
// the gap limit, or a stall. It returns the number of accepted moves.
func (s *solution) improve(rng *rand.Rand, policy Policy, deadline time.Time, ceiling func(ti int) int, allowTransfers bool) int {
	type slotRef struct{ si, ri int }
	var slots []slotRef
	for si := range s.roomAssign {
		for ri := range s.roomAssign[si] {
			slots = append(slots, slotRef{si, ri})
		}
	}
	if len(slots) == 0 || len(s.m.Teachers) < 2 {
		return 0
	}

	current := s.objective(policy)
	accepted := 0
	stall := 0
	maxStall := 2000

	for stall < maxStall {
		if accepted%64 == 0 || stall%256 == 0 {
			if time.Now().After(deadline) {
				break
			}
			if gap := (idealBound - current) / idealBound; gap <= s.m.Opts.RelativeGapLimit {
				break
			}
		}

		ref := slots[rng.Intn(len(slots))]
		room := s.roomAssign[ref.si][ref.ri]
		if len(room) == 0 {
			stall++
			continue
		}
		ti := room[rng.Intn(len(room))]

		improvedMove := false
		if allowTransfers {
			uj := rng.Intn(len(s.m.Teachers))
			if uj != ti && s.counts[uj] < ceiling(uj) && s.canTake(uj, ref.si) {
				s.unassign(ti, ref.si, ref.ri)
				s.assign(uj, ref.si, ref.ri)
				if next := s.objective(policy); next > current {
					current = next
					improvedMove = true
				} else {
					s.unassign(uj, ref.si, ref.ri)
					s.assign(ti, ref.si, ref.ri)
				}
			}
		} else {
			// Count-preserving swap, the only legal move under V1 equality.
			other := slots[rng.Intn(len(slots))]
			otherRoom := s.roomAssign[other.si][other.ri]
			if len(otherRoom) > 0 && (other.si != ref.si || other.ri != ref.ri) {
				uj := otherRoom[rng.Intn(len(otherRoom))]
				if uj != ti && s.swapFeasible(ti, ref.si, uj, other.si) {
					s.unassign(ti, ref.si, ref.ri)
					s.unassign(uj, other.si, other.ri)
					s.assign(uj, ref.si, ref.ri)
					s.assign(ti, other.si, other.ri)
					if next := s.objective(policy); next > current {
						current = next
						improvedMove = true
					} else {
						s.unassign(uj, ref.si, ref.ri)
						s.unassign(ti, other.si, other.ri)
						s.assign(ti, ref.si, ref.ri)
						s.assign(uj, other.si, other.ri)
					}
				}
			}
		}

		if improvedMove {
			accepted++
			stall = 0
		} else {
			stall++
		}
	}
	return accepted
}

// swapFeasible checks that ti can move into sj and uj into si once both have
// vacated their current seats.
func (s *solution) swapFeasible(ti, si, uj, sj int) bool {
	if s.inSession[ti][sj] || s.inSession[uj][si] {
		return false
	}
	for _, other := range s.m.overlaps[sj] {
		if other != si && s.inSession[ti][other] {
			return false
		}
	}
	for _, other := range s.m.overlaps[si] {
		if other != sj && s.inSession[uj][other] {
			return false
		}
	}
	return true
}

// export converts the search state into the shared result shape, ordered by
// session then teacher for stable output.
func (s *solution) export() []Assignment {
	var out []Assignment
	for si := range s.roomAssign {
		for ri, room := range s.roomAssign[si] {
			sorted := make([]int, len(room))
			copy(sorted, room)
			sort.Ints(sorted)
			for _, ti := range sorted {
				t := &s.m.Teachers[ti]
				out = append(out, Assignment{
					TeacherID: t.ID,
					Session:   s.m.sessions[si].Key,
					RoomCode:  s.m.sessions[si].Rooms[ri].Code,
					Preferred: t.Prefers(si),
				})
			}
		}
	}
	return out
}

// buildReport assembles the structured diagnostics shared by every policy.
func (s *solution) buildReport() *Report {
	st := s.evaluate()
	report := &Report{
		TotalSessions: len(s.m.sessions),
		TotalRooms:    s.m.totalRooms,
		RequiredSlots: s.m.totalRequired,
		AssignedSlots: st.assignedSlots,
		RelaxedRooms:  st.relaxedRooms,
		Preferences:   PreferenceStats{Respected: st.respected, Violated: st.violated},
	}

	for si := range s.roomAssign {
		sessionTotal := 0
		short := false
		for ri, room := range s.roomAssign[si] {
			sessionTotal += len(room)
			need := s.m.sessions[si].Rooms[ri].Need
			if s.relaxed[si][ri] {
				need = 1
			}
			if len(room) < need {
				short = true
			}
			for _, ti := range room {
				t := &s.m.Teachers[ti]
				if t.HasPreferences() && !t.Prefers(si) {
					report.Preferences.Violations = append(report.Preferences.Violations, PreferenceViolation{
						TeacherID:   t.ID,
						TeacherName: t.Name,
						Date:        s.m.sessions[si].Key.Date,
						SlotCode:    models.SlotCode(s.m.sessions[si].Key.StartTime),
					})
				}
			}
		}
		if short {
			report.UncoveredSessions = append(report.UncoveredSessions, s.m.sessions[si].Key.String())
		}
		if sessionTotal == 0 && len(s.m.sessions[si].Rooms) > 0 {
			report.UnresolvedSessions = append(report.UnresolvedSessions, s.m.sessions[si].Key.String())
		}
	}

	type gradeAgg struct {
		teachers int
		assigned int
		quota    int
	}
	grades := make(map[string]*gradeAgg)
	for ti := range s.m.Teachers {
		t := &s.m.Teachers[ti]
		agg := grades[t.GradeCode]
		if agg == nil {
			agg = &gradeAgg{}
			grades[t.GradeCode] = agg
		}
		agg.teachers++
		agg.assigned += s.counts[ti]
		agg.quota += t.QuotaMax
	}
	codes := make([]string, 0, len(grades))
	for code := range grades {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		agg := grades[code]
		usage := 0.0
		if agg.quota > 0 {
			usage = 100 * float64(agg.assigned) / float64(agg.quota)
		}
		report.GradeLoads = append(report.GradeLoads, GradeLoad{
			Code:         code,
			Teachers:     agg.teachers,
			Assigned:     agg.assigned,
			QuotaTotal:   agg.quota,
			UsagePercent: usage,
		})
	}

	return report
}
