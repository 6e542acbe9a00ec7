package flock

// Stats is a point-in-time snapshot of a pool's worker and queue counts.
// Values are read under the relevant mutex but the overall snapshot is not
// atomic across fields, matching the spec's own "may be slightly
// inconsistent during concurrent operations" allowance.
type Stats struct {
	Kind          Kind
	ActiveThreads int
	IdleThreads   int
	QueuedTasks   int64
	MinThreads    int
	MaxThreads    int
}

// Stats returns a snapshot of the pool's current worker and queue counts.
func (p *Pool) Stats() Stats {
	if p.kind.isGlobal() {
		p.global.mu.Lock()
		s := Stats{
			Kind:          p.kind,
			ActiveThreads: p.activeThreads,
			IdleThreads:   p.idleThreads,
			QueuedTasks:   int64(p.global.lenLocked()),
			MinThreads:    p.minThreads,
			MaxThreads:    p.maxThreads,
		}
		p.global.mu.Unlock()
		p.publishGauges(s)
		return s
	}

	p.wsMu.Lock()
	s := Stats{
		Kind:          p.kind,
		ActiveThreads: p.wsActiveThreads,
		IdleThreads:   p.wsIdleThreads,
		QueuedTasks:   p.queuedTasks.Load(),
		MinThreads:    p.wsMinThreads,
		MaxThreads:    p.wsMaxThreads,
	}
	p.wsMu.Unlock()
	p.publishGauges(s)
	return s
}

func (p *Pool) publishGauges(s Stats) {
	p.metrics.activeThreads.Set(float64(s.ActiveThreads))
	p.metrics.idleThreads.Set(float64(s.IdleThreads))
	p.metrics.queuedTasks.Set(float64(s.QueuedTasks))
}
