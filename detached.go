package flock

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

// GoDetached launches fn immediately on its own goroutine, with no initial
// suspension and no continuation slot for anything to await — a
// fire-and-forget task. An error return, or a panic inside fn, is treated
// as unrecoverable: it is logged at Fatal through sched's pool's logger,
// which zap follows with a process exit, the direct analogue of the spec's
// "calls the runtime's abort primitive" for an error a detached task has no
// caller left to report to.
func GoDetached(sched Scheduler, fn func(*Context) error) {
	go func() {
		ctx := &Context{sched: sched}
		logger := sched.pool.logger

		defer func() {
			if r := recover(); r != nil {
				logger.Fatal("flock: detached task panicked",
					zap.Any("value", r),
					zap.String("stack", string(debug.Stack())),
				)
			}
		}()

		if err := fn(ctx); err != nil {
			logger.Fatal("flock: detached task failed", zap.Error(fmt.Errorf("detached task: %w", err)))
		}
	}()
}
