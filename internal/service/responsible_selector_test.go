package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectResponsiblePicksMostSeniorGrade(t *testing.T) {
	lead, ok := SelectResponsible([]ResponsibleCandidate{
		{TeacherID: "t3", GradeRank: 3},
		{TeacherID: "t1", GradeRank: 1},
		{TeacherID: "t2", GradeRank: 2},
	}, "")
	require.True(t, ok)
	assert.Equal(t, "t1", lead)
}

func TestSelectResponsibleBreaksTiesByTeacherID(t *testing.T) {
	lead, ok := SelectResponsible([]ResponsibleCandidate{
		{TeacherID: "t9", GradeRank: 1},
		{TeacherID: "t2", GradeRank: 1},
	}, "")
	require.True(t, ok)
	assert.Equal(t, "t2", lead)
}

func TestSelectResponsibleKeepsPriorWhileStillAssigned(t *testing.T) {
	candidates := []ResponsibleCandidate{
		{TeacherID: "t1", GradeRank: 1},
		{TeacherID: "t5", GradeRank: 4},
	}

	lead, ok := SelectResponsible(candidates, "t5")
	require.True(t, ok)
	assert.Equal(t, "t5", lead)
}

func TestSelectResponsibleDropsDepartedPrior(t *testing.T) {
	candidates := []ResponsibleCandidate{
		{TeacherID: "t2", GradeRank: 2},
		{TeacherID: "t3", GradeRank: 3},
	}

	lead, ok := SelectResponsible(candidates, "gone")
	require.True(t, ok)
	assert.Equal(t, "t2", lead)
}

func TestSelectResponsibleEmptySet(t *testing.T) {
	lead, ok := SelectResponsible(nil, "t1")
	assert.False(t, ok)
	assert.Empty(t, lead)
}
