package solver

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// weightedStrategy (V2) is the default policy: quota is a soft ceiling and
// the objective blends coverage, preference satisfaction, within-grade load
// balance and relaxation count. It never fails outright; when full coverage
// is impossible it returns the best partial roster with warnings.
//
// The search is a multi-start local search: each worker seeds a greedy
// construction with its own jitter and improves it until the shared deadline,
// then the best incumbent wins. Parallelism is internal; callers only see one
// blocking call.
type weightedStrategy struct{}

func (s *weightedStrategy) Policy() Policy { return PolicyWeighted }

func (s *weightedStrategy) Solve(m *Model) *Result {
	started := time.Now()
	deadline := started.Add(m.Opts.TimeBudget)
	res := &Result{Policy: PolicyWeighted, Success: true}

	workers := m.Opts.Workers
	solutions := make([]*solution, workers)
	objectives := make([]float64, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(m.Opts.Seed + int64(w)))
			sol := newSolution(m)
			if w == 0 {
				// Worker zero keeps the deterministic greedy baseline.
				sol.greedyFill(nil, noCeiling)
			} else {
				sol.greedyFill(rng, noCeiling)
			}
			sol.improve(rng, PolicyWeighted, deadline, noCeiling, true)
			solutions[w] = sol
			objectives[w] = sol.objective(PolicyWeighted)
		}(w)
	}
	wg.Wait()

	best := 0
	for w := 1; w < workers; w++ {
		if objectives[w] > objectives[best] {
			best = w
		}
	}
	sol := solutions[best]

	res.Assignments = sol.export()
	res.Objective = objectives[best]
	res.Report = sol.buildReport()

	if st := sol.evaluate(); st.missingSlots > 0 {
		res.Report.AddCause(
			fmt.Sprintf("%d supervisor slot(s) could not be staffed without overlaps", st.missingSlots),
			"add participating teachers, enable the single-supervisor relaxation, or spread exam sessions",
		)
		res.Message = "roster generated with partial coverage"
	} else {
		res.Message = "weighted roster generated"
	}
	return finish(res, started, deadline, m)
}
