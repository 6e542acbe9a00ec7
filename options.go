package flock

import (
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/RaiyanJahangir/flock/internal/timerwheel"
)

// Option configures ambient concerns (logging, metrics) on a Pool without
// disturbing the spec's positional constructor signatures.
type Option func(*Pool)

// WithLogger attaches a logger used for worker lifecycle events, swallowed
// task panics, and detached-task failures. Defaults to a production zap
// logger if not set.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics registers the pool's Prometheus instruments against reg.
// If not set, the instruments are still updated but not registered
// anywhere. Stats reports the worker and queue counts the gauges mirror;
// it does not report the counters.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Pool) {
		p.metricsReg = reg
	}
}

// WithSleepWheel routes every SleepFor call on this pool's Scheduler
// through w instead of spawning a dedicated timer goroutine per call.
// Intended for workloads issuing many concurrent short sleeps; a pool
// without this option falls back to one time.AfterFunc per SleepFor.
func WithSleepWheel(w *timerwheel.Wheel) Option {
	return func(p *Pool) {
		p.sleepWheel = w
	}
}

// WithRateLimit caps Submit to tasksPerSecond, with burst as the token
// bucket's initial capacity. A submitter that exceeds the limit blocks
// inside Submit until a token is available rather than being rejected,
// matching a backpressure-by-blocking admission policy.
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(p *Pool) {
		if tasksPerSecond > 0 && burst > 0 {
			p.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}
