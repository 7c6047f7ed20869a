package service

import (
	"fmt"
	"sync"

	appErrors "github.com/examena/surveillance-api/pkg/errors"
)

// DatasetKey names one independently lockable dataset: the assignments of
// one semester and session type.
func DatasetKey(semester, sessionType string) string {
	return fmt.Sprintf("%s/%s", semester, sessionType)
}

// datasetLocks serializes mutations per dataset. A solve owns its dataset
// exclusively for its whole duration; manual edits are short, serialized
// through the edit mutex, and fail fast with Busy instead of queueing behind
// an in-flight solve. Read-only queries never touch these locks.
type datasetLocks struct {
	mu      sync.Mutex
	solving map[string]bool
	edits   map[string]*sync.Mutex
}

func newDatasetLocks() *datasetLocks {
	return &datasetLocks{
		solving: make(map[string]bool),
		edits:   make(map[string]*sync.Mutex),
	}
}

func (d *datasetLocks) editMutex(key string) *sync.Mutex {
	editMu := d.edits[key]
	if editMu == nil {
		editMu = &sync.Mutex{}
		d.edits[key] = editMu
	}
	return editMu
}

// acquireSolve claims the dataset for a solve, failing fast when one is
// already running. It waits for any in-flight edit to finish, then holds the
// edit mutex for the whole solve so no mutation can interleave.
func (d *datasetLocks) acquireSolve(key string) error {
	d.mu.Lock()
	if d.solving[key] {
		d.mu.Unlock()
		return appErrors.Clone(appErrors.ErrBusy, fmt.Sprintf("a solve is already running for dataset %s", key))
	}
	d.solving[key] = true
	editMu := d.editMutex(key)
	d.mu.Unlock()

	editMu.Lock()
	return nil
}

func (d *datasetLocks) releaseSolve(key string) {
	d.mu.Lock()
	editMu := d.editMutex(key)
	delete(d.solving, key)
	d.mu.Unlock()
	editMu.Unlock()
}

// lockEdit serializes one manual edit against the dataset, failing fast with
// Busy when a solve is in flight. The returned unlock must be called exactly
// once.
func (d *datasetLocks) lockEdit(key string) (func(), error) {
	d.mu.Lock()
	if d.solving[key] {
		d.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrBusy, fmt.Sprintf("a solve is running for dataset %s, retry later", key))
	}
	editMu := d.editMutex(key)
	d.mu.Unlock()

	editMu.Lock()

	// A solve may have claimed the dataset while this edit waited on the
	// mutex; surface Busy rather than mutating mid-solve state.
	d.mu.Lock()
	solving := d.solving[key]
	d.mu.Unlock()
	if solving {
		editMu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrBusy, fmt.Sprintf("a solve is running for dataset %s, retry later", key))
	}

	return editMu.Unlock, nil
}
