package flock

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// Context carries the Scheduler a running Task body should use to suspend
// itself — via Await on another Task, or via SleepFor — so that every
// resumption in a call chain keeps bouncing through the same pool.
type Context struct {
	sched Scheduler
}

// Scheduler returns the Scheduler this Context resumes through.
func (c *Context) Scheduler() Scheduler {
	return c.sched
}

// Task is a single-result unit of cooperative work, Go's realization of the
// spec's stackless coroutine: a goroutine stands in for the coroutine frame,
// a done channel stands in for the frame's suspended/resumed state, and a
// registered continuation stands in for the compiler-generated resumption
// point a real coroutine would jump to.
type Task[T any] struct {
	id    uuid.UUID
	sched Scheduler
	fn    func(*Context) (T, error)

	mu      sync.Mutex
	started bool
	done    chan struct{}
	result  T
	err     error
	cont    func()
}

// NewTask builds a Task that will run fn on its own goroutine, with a
// Context bound to sched, once Start is called. The task does not begin
// running at construction time, matching the spec's initially-suspended
// coroutine.
func NewTask[T any](sched Scheduler, fn func(*Context) (T, error)) *Task[T] {
	return &Task[T]{
		id:    uuid.New(),
		sched: sched,
		fn:    fn,
		done:  make(chan struct{}),
	}
}

// Start launches the task body on a dedicated goroutine. Calling Start more
// than once is a no-op; only the first call has any effect, matching a
// coroutine that can only be resumed from its initial suspension once.
func (t *Task[T]) Start() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	go t.run()
}

func (t *Task[T]) run() {
	ctx := &Context{sched: t.sched}

	result, err := t.invoke(ctx)

	t.mu.Lock()
	t.result = result
	t.err = err
	cont := t.cont
	close(t.done)
	t.mu.Unlock()

	// The continuation, if one is already registered, is bounced through
	// the scheduler rather than called inline: this is the trampoline that
	// stands in for symmetric transfer, keeping a long chain of
	// Task-awaits-Task from growing as a literal call stack on this
	// goroutine.
	if cont != nil {
		t.sched.Post(cont)
	}
}

func (t *Task[T]) invoke(ctx *Context) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %w", ErrTaskFailure, &PanicError{Value: r, Stack: string(debug.Stack())})
		}
	}()
	return t.fn(ctx)
}

// setContinuation registers cont to run once the task completes, returning
// true if the task was already done when called — in which case cont is
// never invoked and the caller should read the result directly instead of
// waiting on it, matching await_ready.
func (t *Task[T]) setContinuation(cont func()) (alreadyDone bool) {
	t.mu.Lock()
	select {
	case <-t.done:
		t.mu.Unlock()
		return true
	default:
	}
	t.cont = cont
	t.mu.Unlock()
	return false
}

// Await suspends the calling task until t completes, then returns its
// result or error. If t is already done, Await returns immediately without
// involving the scheduler at all — the Go realization of await_ready
// short-circuiting a coroutine's suspension.
func Await[T any](ctx *Context, t *Task[T]) (T, error) {
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
