// Package group provides structured concurrency for goroutines that feed
// work into a flock pool. Where flock.Pool owns a bounded set of workers and
// answers "how many things execute at once", Group answers "how do I launch
// a batch of producers and learn how they all turned out" — it is the
// load-generation and fan-out half of submitting to a pool, not a second
// execution engine.
package group

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/RaiyanJahangir/flock"
)

// Group manages a collection of goroutines with structured concurrency:
// panic recovery, cancellation propagation, and pluggable error handling.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	config Config

	errors    []error
	errorsMux sync.RWMutex
	failOnce  sync.Once
	firstErr  atomic.Value // used in FailFast

	running   int64
	completed int64
	failed    int64
}

// Stats reports how many of the group's goroutines are running, have
// completed, and have failed (returned a non-nil error or panicked).
type Stats struct {
	Running   int64
	Completed int64
	Failed    int64
}

// New creates a new Group with the given options.
func New(opts ...Option) *Group {
	return NewWithContext(context.Background(), opts...)
}

// NewWithContext creates a new Group with a parent context.
func NewWithContext(ctx context.Context, opts ...Option) *Group {
	config := BuildConfig(opts)

	if ctx == nil {
		ctx = context.Background()
	}

	groupCtx, cancel := context.WithCancel(ctx)

	return &Group{
		ctx:    groupCtx,
		cancel: cancel,
		config: config,
		errors: make([]error, 0),
	}
}

// NewForPool creates a Group whose context is cancelled when the given pool
// stops accepting work, so producers that are blocked handing off to the
// pool unwind instead of leaking. This is the usual way to drive a burst of
// concurrent submitters against a pool in a benchmark or integration test.
func NewForPool(p *flock.Pool, opts ...Option) *Group {
	g := New(opts...)
	// The watcher is not a member: Wait must not block on the pool closing.
	go func() {
		select {
		case <-p.Done():
			g.Stop()
		case <-g.ctx.Done():
		}
	}()
	return g
}

// Go runs fn in a new goroutine with panic recovery.
func (g *Group) Go(fn func(context.Context) error) {
	atomic.AddInt64(&g.running, 1)
	g.wg.Add(1)

	go func() {
		defer func() {
			atomic.AddInt64(&g.running, -1)
			atomic.AddInt64(&g.completed, 1)
			g.wg.Done()
		}()

		defer func() {
			if r := recover(); r != nil {
				atomic.AddInt64(&g.failed, 1)
				g.handleError(&PanicError{Value: r, Stack: string(debug.Stack())})
			}
		}()

		if err := fn(g.ctx); err != nil {
			atomic.AddInt64(&g.failed, 1)
			g.handleError(err)
		}
	}()
}

// GoSafe runs fn in a new goroutine, ignoring its return value. The
// goroutine is tracked like any other member, so Wait blocks until it
// returns.
func (g *Group) GoSafe(fn func(context.Context)) {
	g.Go(func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
}

// GoSubmit submits task to pool from a tracked goroutine: a submission
// rejected with flock.ErrSubmitAfterShutdown is handled like any other
// member error, so a caller driving a burst of concurrent submitters can
// Wait() once and learn whether any of them raced the pool's shutdown.
func (g *Group) GoSubmit(p *flock.Pool, task func()) {
	g.Go(func(context.Context) error {
		return p.Submit(task)
	})
}

// Wait blocks until every launched goroutine has returned, then reports
// errors according to the Group's configured ErrorMode.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.Stop()

	switch g.config.errorMode {
	case IgnoreErrors:
		return nil

	case FailFast:
		if v := g.firstErr.Load(); v != nil {
			return v.(error)
		}
		return nil

	case CollectAll:
		g.errorsMux.RLock()
		collected := make([]error, len(g.errors))
		copy(collected, g.errors)
		g.errorsMux.RUnlock()

		if len(collected) > 0 {
			return AggregateError{Errors: collected}
		}
		return nil

	default:
		return nil
	}
}

// Stop cancels the group's context, signaling all member goroutines to stop.
func (g *Group) Stop() {
	g.cancel()
}

// Stats returns a snapshot of the group's goroutine counts.
func (g *Group) Stats() Stats {
	return Stats{
		Running:   atomic.LoadInt64(&g.running),
		Completed: atomic.LoadInt64(&g.completed),
		Failed:    atomic.LoadInt64(&g.failed),
	}
}

func (g *Group) handleError(err error) {
	switch g.config.errorMode {
	case IgnoreErrors:
		return

	case FailFast:
		if g.firstErr.Load() == nil {
			if g.firstErr.CompareAndSwap(nil, err) {
				g.failOnce.Do(g.cancel)
			}
		}

	case CollectAll:
		g.errorsMux.Lock()
		g.errors = append(g.errors, err)
		g.errorsMux.Unlock()
	}
}
