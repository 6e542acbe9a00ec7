// Package flock provides a unified task execution pool with four
// interchangeable scheduling disciplines, plus a small cooperative task
// runtime layered on top of it.
//
// Every pool mode is reached through the same Submit surface; the mode
// chosen at construction only changes how submitted tasks are queued and
// picked up, never how a caller hands them in.
//
// # Pool Modes
//
//   - ClassicFixed: a fixed number of workers draining one global FIFO.
//   - WorkStealingFixed: a fixed number of workers, each with its own
//     deque; idle workers steal from busy peers.
//   - ElasticGlobal: ClassicFixed's global FIFO with a worker count that
//     grows under load and decays back to a floor once idle.
//   - WorkStealingElastic: WorkStealingFixed's per-worker deques with the
//     same elastic worker count.
//
// # Quick Start
//
//	pool, err := flock.NewFixed(8, flock.WorkStealingFixed)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	for i := 0; i < 100; i++ {
//	    i := i
//	    if err := pool.Submit(func() {
//	        fmt.Printf("task %d executed\n", i)
//	    }); err != nil {
//	        log.Printf("submit failed: %v", err)
//	    }
//	}
//
// Elastic pools take a floor, a ceiling, and an idle timeout instead of a
// fixed worker count:
//
//	pool, err := flock.NewElasticWorkStealing(2, 16, 500*time.Millisecond)
//
// # Ambient Configuration
//
// Every constructor accepts functional options for logging and metrics:
//
//	pool, err := flock.NewFixed(8, flock.ClassicFixed,
//	    flock.WithLogger(myLogger),
//	    flock.WithMetrics(prometheus.DefaultRegisterer),
//	)
//
// # Cooperative Task Runtime
//
// Task[T] layers single-result, awaitable work on top of a Pool via a
// Scheduler handle:
//
//	sched := flock.NewScheduler(pool)
//	t := flock.NewTask(sched, func(ctx *flock.Context) (int, error) {
//	    flock.SleepFor(10*time.Millisecond, ctx.Scheduler())
//	    return 42, nil
//	})
//	result, err := flock.SyncWait(t)
//
// Tasks awaiting other tasks use Await, passing their own Context. Like
// SyncWait, Await blocks the awaiting goroutine until a pool worker has run
// the awaited task's posted continuation; the awaiting code then continues
// on its own goroutine:
//
//	outer := flock.NewTask(sched, func(ctx *flock.Context) (int, error) {
//	    inner := flock.NewTask(sched, func(*flock.Context) (int, error) {
//	        return 1, nil
//	    })
//	    v, err := flock.Await(ctx, inner)
//	    return v + 1, err
//	})
//
// GoDetached launches fire-and-forget work that has no caller left to
// report failure to; an error or panic there escalates to a fatal log.
//
// # Error Handling
//
// Submit returns ErrSubmitAfterShutdown once Close has begun draining a
// pool. A panic inside a submitted task is recovered, logged, and
// discarded — one bad task never brings the pool down. A panic or error
// inside a Task body is captured and surfaced through Await/SyncWait's
// error return instead. SyncWait refuses with ErrSyncWaitFromWorker when
// called from a goroutine that is itself one of the task's own pool's
// workers, rather than risking a pool deadlocking on its own continuation.
package flock
