package service

// ResponsibleCandidate is one assigned teacher considered for session lead.
type ResponsibleCandidate struct {
	TeacherID string
	GradeRank int
}

// SelectResponsible deterministically picks the session lead from an assigned
// teacher set. A teacher already carrying the flag keeps it as long as they
// stay assigned, which makes incremental edits idempotent; otherwise the most
// senior grade rank wins, ties broken by teacher ID ascending. An empty set
// yields no selection; the session stays unresolved and is surfaced by the
// diagnostics, not here.
func SelectResponsible(candidates []ResponsibleCandidate, prior string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	if prior != "" {
		for _, c := range candidates {
			if c.TeacherID == prior {
				return prior, true
			}
		}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.GradeRank < best.GradeRank || (c.GradeRank == best.GradeRank && c.TeacherID < best.TeacherID) {
			best = c
		}
	}
	return best.TeacherID, true
}
