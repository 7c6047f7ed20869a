package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRenderMarkers(t *testing.T) {
	r := &Report{
		TotalSessions: 2,
		TotalRooms:    3,
		RequiredSlots: 6,
		AssignedSlots: 5,
		RelaxedRooms:  1,
		UncoveredSessions: []string{
			"2025-06-02|08:00|10:00|principal|S1",
		},
		GradeLoads: []GradeLoad{
			{Code: "PR", Teachers: 2, Assigned: 3, QuotaTotal: 4, UsagePercent: 75},
			{Code: "MC", Teachers: 1, Assigned: 2, QuotaTotal: 3, UsagePercent: 66.7},
		},
		Preferences: PreferenceStats{
			Respected: 4,
			Violated:  1,
			Violations: []PreferenceViolation{
				{TeacherID: "t1", TeacherName: "Teacher t1", Date: "2025-06-02", SlotCode: "S1"},
			},
		},
	}
	r.AddCause("not enough capacity", "add teachers")

	lines := r.Render()
	require.NotEmpty(t, lines)
	assert.Equal(t, "### Coverage", lines[0])

	for _, line := range lines {
		ok := strings.HasPrefix(line, MarkerSection) ||
			strings.HasPrefix(line, MarkerItem) ||
			strings.HasPrefix(line, MarkerWarning) ||
			strings.HasPrefix(line, MarkerError)
		assert.True(t, ok, "line %q carries no known marker", line)
	}

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "- supervisor slots: 5/6 assigned")
	assert.Contains(t, joined, "WARNING: 1 room(s) relaxed to a single supervisor")
	assert.Contains(t, joined, "WARNING: session 2025-06-02|08:00|10:00|principal|S1 is under-staffed")
	assert.Contains(t, joined, "WARNING: Teacher t1 assigned outside stated preferences on 2025-06-02 (S1)")
	assert.Contains(t, joined, "ERROR: not enough capacity")
	assert.Contains(t, joined, "- suggestion: add teachers")
}

func TestReportRenderSortsGradeLoads(t *testing.T) {
	r := &Report{
		GradeLoads: []GradeLoad{
			{Code: "PR", Teachers: 1, Assigned: 1, QuotaTotal: 2, UsagePercent: 50},
			{Code: "MA", Teachers: 1, Assigned: 1, QuotaTotal: 2, UsagePercent: 50},
		},
	}

	lines := r.Render()
	maIdx, prIdx := -1, -1
	for i, line := range lines {
		if strings.Contains(line, "grade MA:") {
			maIdx = i
		}
		if strings.Contains(line, "grade PR:") {
			prIdx = i
		}
	}
	require.NotEqual(t, -1, maIdx)
	require.NotEqual(t, -1, prIdx)
	assert.Less(t, maIdx, prIdx)
}

func TestReportRenderOmitsEmptySections(t *testing.T) {
	r := &Report{}
	lines := r.Render()

	joined := strings.Join(lines, "\n")
	assert.NotContains(t, joined, MarkerError)
	assert.NotContains(t, joined, "Probable causes")
	assert.NotContains(t, joined, "WARNING: ")
}
