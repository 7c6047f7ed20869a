package solver

import (
	"fmt"
	"math/rand"
	"time"
)

// strictMaxStrategy (V3) treats each grade's max_surveillances as a hard per
// teacher ceiling. Coverage and preference satisfaction are optimized below
// that ceiling; when capacity runs out the result stays successful but
// reports the shortfall, it never borrows capacity beyond a quota.
type strictMaxStrategy struct{}

func (s *strictMaxStrategy) Policy() Policy { return PolicyStrictMax }

func (s *strictMaxStrategy) Solve(m *Model) *Result {
	started := time.Now()
	deadline := started.Add(m.Opts.TimeBudget)
	res := &Result{Policy: PolicyStrictMax, Success: true}

	ceiling := func(ti int) int { return m.Teachers[ti].QuotaMax }

	sol := newSolution(m)
	sol.greedyFill(nil, ceiling)

	rng := rand.New(rand.NewSource(m.Opts.Seed))
	sol.improve(rng, PolicyStrictMax, deadline, ceiling, true)

	res.Assignments = sol.export()
	res.Objective = sol.objective(PolicyStrictMax)
	res.Report = sol.buildReport()

	if st := sol.evaluate(); st.missingSlots > 0 {
		capacity := 0
		for ti := range m.Teachers {
			capacity += m.Teachers[ti].QuotaMax
		}
		if capacity < m.totalRequired {
			res.Report.AddCause(
				fmt.Sprintf("total quota capacity (%d) is below the %d required supervisor slots", capacity, m.totalRequired),
				"raise per-grade max_surveillances or add participating teachers",
			)
		} else {
			res.Report.AddCause(
				fmt.Sprintf("%d supervisor slot(s) could not be staffed within the quota ceilings", st.missingSlots),
				"enable the single-supervisor relaxation or rebalance grade quotas",
			)
		}
		res.Message = "roster generated with partial coverage under strict quotas"
	} else {
		res.Message = "strict-quota roster generated"
	}
	return finish(res, started, deadline, m)
}
