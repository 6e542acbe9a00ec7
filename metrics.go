package flock

import "github.com/prometheus/client_golang/prometheus"

// metrics bundles the Prometheus instruments a Pool updates as it runs.
// All instruments are labeled with the pool's kind so metrics from pools of
// different modes sharing a registerer don't collide.
type metrics struct {
	activeThreads prometheus.Gauge
	idleThreads   prometheus.Gauge
	queuedTasks   prometheus.Gauge
	submitted     prometheus.Counter
	completed     prometheus.Counter
	rejected      prometheus.Counter
	panics        prometheus.Counter
}

func newMetricsFor(p *Pool) *metrics {
	return newMetrics(p.metricsReg, p.kind)
}

func newMetrics(reg prometheus.Registerer, kind Kind) *metrics {
	labels := prometheus.Labels{"kind": kind.String()}
	m := &metrics{
		activeThreads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "flock",
			Name:        "active_threads",
			Help:        "Number of currently running pool workers.",
			ConstLabels: labels,
		}),
		idleThreads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "flock",
			Name:        "idle_threads",
			Help:        "Number of pool workers currently parked waiting for work.",
			ConstLabels: labels,
		}),
		queuedTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "flock",
			Name:        "queued_tasks",
			Help:        "Number of tasks currently queued but not yet executing.",
			ConstLabels: labels,
		}),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flock",
			Name:        "submitted_total",
			Help:        "Total number of tasks accepted by Submit.",
			ConstLabels: labels,
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flock",
			Name:        "completed_total",
			Help:        "Total number of tasks that finished executing.",
			ConstLabels: labels,
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flock",
			Name:        "rejected_total",
			Help:        "Total number of submissions rejected after shutdown.",
			ConstLabels: labels,
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flock",
			Name:        "task_panics_total",
			Help:        "Total number of submitted tasks that panicked.",
			ConstLabels: labels,
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.activeThreads, m.idleThreads, m.queuedTasks,
			m.submitted, m.completed, m.rejected, m.panics,
		} {
			_ = reg.Register(c)
		}
	}

	return m
}
