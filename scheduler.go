package flock

// Scheduler is a lightweight handle onto a Pool, the posting surface the
// cooperative task runtime (Task, SleepFor, GoDetached) uses to resume
// suspended work on a worker goroutine rather than inline. It is a thin
// value type deliberately cheap to copy and pass around.
type Scheduler struct {
	pool *Pool
}

// NewScheduler wraps p for use by the cooperative task runtime.
func NewScheduler(p *Pool) Scheduler {
	return Scheduler{pool: p}
}

// Post submits fn to the underlying pool. Errors from Submit (only possible
// after the pool has begun shutting down) are swallowed here by design: a
// continuation that can no longer be posted has nowhere useful to report
// the failure, and the caller of Schedule is already blocked waiting for
// it — Close draining the pool after this point would otherwise have no
// path to unblock that waiter. Scheduler.Post is therefore a best-effort
// resume primitive, not a general submission API; callers that need
// Submit's error should call it on the Pool directly.
func (s Scheduler) Post(fn func()) {
	_ = s.pool.Submit(fn)
}

// Schedule blocks the calling goroutine until a closure posted through this
// Scheduler's Post has run on a worker — the same post-and-wait pattern
// SleepFor, Await and SyncWait use with their own posted closures.
func (s Scheduler) Schedule() {
	done := make(chan struct{})
	s.Post(func() {
		close(done)
	})
	<-done
}
