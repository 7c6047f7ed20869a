package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/examena/surveillance-api/pkg/errors"
)

func TestDatasetKey(t *testing.T) {
	assert.Equal(t, "S1/principal", DatasetKey("S1", "principal"))
}

func TestAcquireSolveRejectsConcurrentSolve(t *testing.T) {
	locks := newDatasetLocks()

	require.NoError(t, locks.acquireSolve("S1/principal"))
	defer locks.releaseSolve("S1/principal")

	err := locks.acquireSolve("S1/principal")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, "BUSY"))
}

func TestSolvesOnDistinctDatasetsDoNotInterfere(t *testing.T) {
	locks := newDatasetLocks()

	require.NoError(t, locks.acquireSolve("S1/principal"))
	defer locks.releaseSolve("S1/principal")

	require.NoError(t, locks.acquireSolve("S1/makeup"))
	locks.releaseSolve("S1/makeup")
}

func TestLockEditFailsFastDuringSolve(t *testing.T) {
	locks := newDatasetLocks()

	require.NoError(t, locks.acquireSolve("S1/principal"))

	unlock, err := locks.lockEdit("S1/principal")
	require.Error(t, err)
	assert.Nil(t, unlock)
	assert.True(t, appErrors.Is(err, "BUSY"))

	locks.releaseSolve("S1/principal")

	unlock, err = locks.lockEdit("S1/principal")
	require.NoError(t, err)
	unlock()
}

func TestLockEditSerializesEdits(t *testing.T) {
	locks := newDatasetLocks()

	unlock, err := locks.lockEdit("S1/principal")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		second, err := locks.lockEdit("S1/principal")
		assert.NoError(t, err)
		second()
	}()

	unlock()
	<-done
}

func TestSolveAfterReleaseSucceeds(t *testing.T) {
	locks := newDatasetLocks()

	require.NoError(t, locks.acquireSolve("S1/principal"))
	locks.releaseSolve("S1/principal")
	require.NoError(t, locks.acquireSolve("S1/principal"))
	locks.releaseSolve("S1/principal")
}
