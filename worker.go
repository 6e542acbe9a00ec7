package flock

import (
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/RaiyanJahangir/flock/internal/glocal"
)

// runTask executes task outside of any pool-owned lock, recovering and
// logging (but never propagating) a panic — one bad task must not kill the
// pool.
func (p *Pool) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.panics.Inc()
			pe := &PanicError{Value: r, Stack: string(debug.Stack())}
			p.logger.Warn("flock: task panicked", zap.Error(pe))
		}
		p.metrics.completed.Inc()
	}()
	task()
}

// condWaitTimeout waits on c for at most d, returning true if the wait
// timed out rather than being woken by a real Signal/Broadcast.
// sync.Cond has no native timeout; this is the standard Go idiom for
// adding one: an AfterFunc locks c.L and broadcasts after d, and
// timer.Stop's return value tells us whether that fire is what woke us (a
// genuine notify racing the same instant is the one ambiguity the spec's
// own Open Question on this subject accepts rather than eliminates).
// Caller must hold c.L.
func condWaitTimeout(c *sync.Cond, d time.Duration) bool {
	timer := time.AfterFunc(d, func() {
		c.L.Lock()
		c.Broadcast()
		c.L.Unlock()
	})
	c.Wait()
	return !timer.Stop()
}

// runGlobalFixed is the Global-Fixed worker loop (ClassicFixed).
func (p *Pool) runGlobalFixed(id int) {
	defer p.wg.Done()
	glocal.Set(p, id)
	defer glocal.Clear()

	g := p.global
	for {
		g.mu.Lock()
		for !p.stop.Load() && g.lenLocked() == 0 {
			g.cond.Wait()
		}
		if p.stop.Load() && g.lenLocked() == 0 {
			p.activeThreads--
			g.mu.Unlock()
			return
		}
		task := g.popLocked()
		g.mu.Unlock()

		p.runTask(task)
	}
}

// runGlobalElastic is the Global-Elastic worker loop (ElasticGlobal).
func (p *Pool) runGlobalElastic(id int) {
	defer p.wg.Done()
	glocal.Set(p, id)
	defer glocal.Clear()
	p.logger.Debug("flock: elastic worker spawned", zap.Int("id", id), zap.String("kind", p.kind.String()))

	g := p.global
	for {
		g.mu.Lock()

		if p.stop.Load() && g.lenLocked() == 0 {
			p.activeThreads--
			g.mu.Unlock()
			return
		}

		if g.lenLocked() == 0 {
			p.idleThreads++
			timedOut := condWaitTimeout(g.cond, p.idleTimeout)
			p.idleThreads--

			if p.stop.Load() && g.lenLocked() == 0 {
				p.activeThreads--
				g.mu.Unlock()
				return
			}

			if timedOut && g.lenLocked() == 0 && p.activeThreads > p.minThreads {
				p.activeThreads--
				g.mu.Unlock()
				p.logger.Debug("flock: elastic worker retired on idle timeout", zap.Int("id", id))
				return
			}

			if g.lenLocked() == 0 {
				g.mu.Unlock()
				continue
			}
		}

		task := g.popLocked()
		g.mu.Unlock()

		p.runTask(task)
	}
}

// steal probes peers of worker id in deterministic order
// (id+1, id+2, ...) mod N, try-locking each one so a stuck victim never
// blocks a thief.
func (p *Pool) steal(id int) func() {
	n := len(p.queues)
	for i := 1; i < n; i++ {
		idx := (id + i) % n
		if task := p.queues[idx].TryPopBack(); task != nil {
			return task
		}
	}
	return nil
}

// runWSFixed is the Work-Stealing-Fixed worker loop (WorkStealingFixed).
func (p *Pool) runWSFixed(id int) {
	glocal.Set(p, id)
	defer glocal.Clear()

	own := p.queues[id]
	for {
		if p.stop.Load() && p.queuedTasks.Load() == 0 {
			p.wsMu.Lock()
			p.slots[id].running = false
			p.wsActiveThreads--
			p.wsMu.Unlock()
			return
		}

		if task := own.PopFront(); task != nil {
			p.queuedTasks.Add(-1)
			p.runTask(task)
			continue
		}

		if task := p.steal(id); task != nil {
			p.queuedTasks.Add(-1)
			p.runTask(task)
			continue
		}

		p.wsMu.Lock()
		for !p.stop.Load() && p.queuedTasks.Load() == 0 {
			p.wsCond.Wait()
		}
		p.wsMu.Unlock()
	}
}

// runWSElasticSlot is the Work-Stealing-Elastic worker loop
// (WorkStealingElastic), running on slot id.
func (p *Pool) runWSElasticSlot(id int) {
	glocal.Set(p, id)
	defer glocal.Clear()
	p.logger.Debug("flock: elastic worker spawned", zap.Int("slot", id), zap.String("kind", p.kind.String()))

	own := p.queues[id]
	for {
		if p.stop.Load() && p.queuedTasks.Load() == 0 {
			p.wsMu.Lock()
			p.slots[id].running = false
			p.wsActiveThreads--
			p.wsMu.Unlock()
			return
		}

		if task := own.PopFront(); task != nil {
			p.queuedTasks.Add(-1)
			p.runTask(task)
			continue
		}

		if task := p.steal(id); task != nil {
			p.queuedTasks.Add(-1)
			p.runTask(task)
			continue
		}

		p.wsMu.Lock()

		for !p.stop.Load() && p.queuedTasks.Load() == 0 {
			p.wsIdleThreads++
			timedOut := condWaitTimeout(p.wsCond, p.wsIdleTimeout)
			p.wsIdleThreads--

			if timedOut && p.queuedTasks.Load() == 0 && p.wsActiveThreads > p.wsMinThreads {
				p.slots[id].running = false
				p.wsActiveThreads--
				p.wsMu.Unlock()
				p.logger.Debug("flock: elastic worker retired on idle timeout", zap.Int("slot", id))
				return
			}
		}

		if p.stop.Load() && p.queuedTasks.Load() == 0 {
			p.slots[id].running = false
			p.wsActiveThreads--
			p.wsMu.Unlock()
			return
		}

		p.wsMu.Unlock()
	}
}
