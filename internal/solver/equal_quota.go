package solver

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// equalQuotaStrategy (V1) assigns every teacher exactly the nominal count of
// its grade. Preference satisfaction is the sole objective; the equality
// constraint itself is hard, so a jointly infeasible instance yields
// Success=false with the binding grade named in the diagnostics.
type equalQuotaStrategy struct{}

func (s *equalQuotaStrategy) Policy() Policy { return PolicyEqualQuota }

func (s *equalQuotaStrategy) Solve(m *Model) *Result {
	started := time.Now()
	deadline := started.Add(m.Opts.TimeBudget)
	res := &Result{Policy: PolicyEqualQuota}

	sol := newSolution(m)

	if cause := s.checkArithmetic(m); cause != nil {
		res.Report = sol.buildReport()
		res.Report.Causes = cause
		res.Message = "equal-quota constraints are jointly infeasible with coverage needs"
		return finish(res, started, deadline, m)
	}

	exact := func(ti int) int { return m.Teachers[ti].QuotaMax }
	sol.greedyFill(nil, exact)

	// Coverage done; teachers still below their exact quota absorb extra
	// seats on top of already-covered rooms. Sessions have no upper capacity,
	// only the overlap constraint limits placement.
	for ti := range m.Teachers {
		for sol.counts[ti] < exact(ti) {
			placed := false
			for si := range m.sessions {
				if !sol.canTake(ti, si) {
					continue
				}
				ri := smallestRoom(sol, si)
				sol.assign(ti, si, ri)
				placed = true
				break
			}
			if !placed {
				break
			}
		}
	}

	report := sol.buildReport()
	shortfall := false
	for ti := range m.Teachers {
		if sol.counts[ti] != exact(ti) {
			shortfall = true
			t := &m.Teachers[ti]
			report.AddCause(
				fmt.Sprintf("teacher %s (grade %s) can only hold %d of the %d required surveillances without overlapping", t.Name, t.GradeCode, sol.counts[ti], exact(ti)),
				fmt.Sprintf("lower max_surveillances for grade %s or spread exam sessions over more slots", t.GradeCode),
			)
		}
	}
	if st := sol.evaluate(); st.missingSlots > 0 {
		shortfall = true
		report.AddCause(
			fmt.Sprintf("%d supervisor slot(s) remain unstaffed under the equality constraint", st.missingSlots),
			"raise grade quotas, add participating teachers, or switch to the weighted policy",
		)
	}
	if shortfall {
		res.Report = report
		res.Message = "equal-quota constraints are jointly infeasible with coverage needs"
		return finish(res, started, deadline, m)
	}

	rng := rand.New(rand.NewSource(m.Opts.Seed))
	sol.improve(rng, PolicyEqualQuota, deadline, exact, false)

	res.Success = true
	res.Assignments = sol.export()
	res.Objective = sol.objective(PolicyEqualQuota)
	res.Report = sol.buildReport()
	res.Message = "equal-quota roster generated"
	return finish(res, started, deadline, m)
}

// checkArithmetic catches infeasibility that needs no search: total exact
// slots below demand, or a quota no schedule can physically hold.
func (s *equalQuotaStrategy) checkArithmetic(m *Model) []Cause {
	var causes []Cause

	total := 0
	byGrade := map[string]struct{ teachers, quota int }{}
	for ti := range m.Teachers {
		t := &m.Teachers[ti]
		total += t.QuotaMax
		agg := byGrade[t.GradeCode]
		agg.teachers++
		agg.quota = t.QuotaMax
		byGrade[t.GradeCode] = agg
	}

	if total < m.totalRequired {
		causes = append(causes, Cause{
			Message:     fmt.Sprintf("total teacher-slots under equal quotas (%d) cannot cover the %d required supervisor slots", total, m.totalRequired),
			Remediation: "raise per-grade max_surveillances, add participating teachers, or enable the single-supervisor relaxation",
		})
		codes := make([]string, 0, len(byGrade))
		for code := range byGrade {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			agg := byGrade[code]
			causes = append(causes, Cause{
				Message:     fmt.Sprintf("grade %s contributes %d teacher(s) x %d = %d slots", code, agg.teachers, agg.quota, agg.teachers*agg.quota),
				Remediation: fmt.Sprintf("raise max_surveillances for grade %s", code),
			})
		}
	}

	maxLoad := maxParallelSessions(m)
	for ti := range m.Teachers {
		t := &m.Teachers[ti]
		if t.QuotaMax > maxLoad {
			causes = append(causes, Cause{
				Message:     fmt.Sprintf("grade %s requires exactly %d surveillances but only %d non-overlapping sessions exist", t.GradeCode, t.QuotaMax, maxLoad),
				Remediation: fmt.Sprintf("lower max_surveillances for grade %s below %d", t.GradeCode, maxLoad+1),
			})
			break
		}
	}

	return causes
}

// smallestRoom picks the least loaded room of a session for overflow seats.
func smallestRoom(sol *solution, si int) int {
	best := 0
	for ri := range sol.roomAssign[si] {
		if len(sol.roomAssign[si][ri]) < len(sol.roomAssign[si][best]) {
			best = ri
		}
	}
	return best
}
