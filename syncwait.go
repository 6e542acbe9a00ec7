package flock

import (
	"github.com/RaiyanJahangir/flock/internal/glocal"
)

// SyncWait blocks the calling goroutine until t completes, outside of any
// task or worker context — the bridge a plain goroutine (main, a test, an
// external caller) uses to pull a result out of the cooperative runtime.
//
// If the calling goroutine is itself a worker of t's pool, SyncWait refuses
// immediately with ErrSyncWaitFromWorker rather than risking the deadlock
// of a single-worker pool blocking on its own ability to run t's
// continuation: the resolution spec.md's Open Question on this subject
// offers as an alternative to documenting the hazard and leaving it to the
// caller.
func SyncWait[T any](t *Task[T]) (T, error) {
	var zero T

	if origin, ok := glocal.Get(); ok {
		if origin.Owner == t.sched.pool {
			return zero, ErrSyncWaitFromWorker
		}
	}

	t.Start()

	resumed := make(chan struct{})
	if !t.setContinuation(func() { close(resumed) }) {
		<-resumed
	}

	t.mu.Lock()
	result, err := t.result, t.err
	t.mu.Unlock()
	return result, err
}
