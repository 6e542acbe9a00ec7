package flock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/RaiyanJahangir/flock/internal/glocal"
	"github.com/RaiyanJahangir/flock/internal/timerwheel"
)

// workerSlot is a WorkStealingElastic worker slot: a reusable pair of
// (running flag, join handle) at a fixed index in a vector sized to the
// configured maximum. A slot with running=false has either never been
// spawned or has already been joined; running=true means it owns exactly
// one live worker goroutine.
type workerSlot struct {
	running bool
	done    chan struct{}
}

// Pool is the unified task execution pool: a bounded set of worker
// goroutines draining one of two queueing disciplines (a single global
// FIFO, or per-worker stealing deques), selected at construction and fixed
// for the pool's lifetime.
type Pool struct {
	kind      Kind
	stop      atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	logger      *zap.Logger
	metricsReg  prometheus.Registerer
	metrics     *metrics
	sleepWheel  *timerwheel.Wheel
	rateLimiter *rate.Limiter

	// global-queue modes (ClassicFixed, ElasticGlobal)
	global          *globalQueue
	minThreads      int
	maxThreads      int
	activeThreads   int // protected by global.mu
	idleThreads     int // protected by global.mu
	idleTimeout     time.Duration
	globalWorkerSeq int64 // atomic, ids for elastically spawned global workers

	// work-stealing modes (WorkStealingFixed, WorkStealingElastic)
	wsMu            sync.Mutex
	wsCond          *sync.Cond
	queues          []*workerQueue
	slots           []*workerSlot
	rr              atomic.Uint64
	queuedTasks     atomic.Int64
	wsMinThreads    int
	wsMaxThreads    int
	wsActiveThreads int // protected by wsMu
	wsIdleThreads   int // protected by wsMu
	wsIdleTimeout   time.Duration
}

func newPoolShell(kind Kind, opts []Option) *Pool {
	p := &Pool{
		kind:   kind,
		done:   make(chan struct{}),
		logger: defaultLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFixed constructs a pool with a fixed number of workers. kind must be
// ClassicFixed or WorkStealingFixed; n must be at least 1.
func NewFixed(n int, kind Kind, opts ...Option) (*Pool, error) {
	if kind != ClassicFixed && kind != WorkStealingFixed {
		return nil, newConfigError("NewFixed requires ClassicFixed or WorkStealingFixed, got %s", kind)
	}
	if n < 1 {
		return nil, newConfigError("NewFixed requires n >= 1, got %d", n)
	}

	p := newPoolShell(kind, opts)
	p.metrics = newMetricsFor(p)

	switch kind {
	case ClassicFixed:
		p.global = newGlobalQueue()
		p.minThreads = n
		p.maxThreads = n
		p.activeThreads = n
		for i := 0; i < n; i++ {
			p.wg.Add(1)
			go p.runGlobalFixed(i)
		}

	case WorkStealingFixed:
		p.queues = make([]*workerQueue, n)
		p.slots = make([]*workerSlot, n)
		p.wsCond = sync.NewCond(&p.wsMu)
		p.wsMinThreads = n
		p.wsMaxThreads = n
		p.wsActiveThreads = n
		for i := 0; i < n; i++ {
			p.queues[i] = newWorkerQueue()
			p.slots[i] = &workerSlot{running: true, done: make(chan struct{})}
			p.wg.Add(1)
			go p.runWSFixedSlot(i)
		}
	}

	return p, nil
}

// NewElasticGlobal constructs a pool backed by a single global FIFO whose
// worker count grows additively between min and max and decays back to min
// after idleTimeout of inactivity.
func NewElasticGlobal(min, max int, idleTimeout time.Duration, opts ...Option) (*Pool, error) {
	if min < 1 || min > max {
		return nil, newConfigError("NewElasticGlobal requires 1 <= min <= max, got min=%d max=%d", min, max)
	}

	p := newPoolShell(ElasticGlobal, opts)
	p.global = newGlobalQueue()
	p.minThreads = min
	p.maxThreads = max
	p.idleTimeout = idleTimeout
	p.metrics = newMetricsFor(p)

	p.activeThreads = min
	for i := 0; i < min; i++ {
		p.wg.Add(1)
		go p.runGlobalElastic(p.nextGlobalWorkerID())
	}

	return p, nil
}

// NewElasticWorkStealing constructs a pool of per-worker stealing deques
// whose worker count grows additively between min and max and decays back
// to min after idleTimeout of inactivity. Queue and slot vectors are sized
// to max and never resized; retired workers release their slot for reuse
// but their queue remains stealable by live peers.
func NewElasticWorkStealing(min, max int, idleTimeout time.Duration, opts ...Option) (*Pool, error) {
	if min < 1 || min > max {
		return nil, newConfigError("NewElasticWorkStealing requires 1 <= min <= max, got min=%d max=%d", min, max)
	}

	p := newPoolShell(WorkStealingElastic, opts)
	p.wsCond = sync.NewCond(&p.wsMu)
	p.wsMinThreads = min
	p.wsMaxThreads = max
	p.wsIdleTimeout = idleTimeout
	p.metrics = newMetricsFor(p)

	p.queues = make([]*workerQueue, max)
	p.slots = make([]*workerSlot, max)
	for i := 0; i < max; i++ {
		p.queues[i] = newWorkerQueue()
		p.slots[i] = &workerSlot{}
	}

	p.wsActiveThreads = min
	for i := 0; i < min; i++ {
		p.slots[i].running = true
		p.spawnWSElasticSlot(i)
	}

	return p, nil
}

func (p *Pool) nextGlobalWorkerID() int {
	return int(atomic.AddInt64(&p.globalWorkerSeq, 1))
}

// Submit enqueues task for execution. A nil task is a silent no-op. Once
// the pool has begun shutting down, Submit fails with
// ErrSubmitAfterShutdown instead of queuing the task.
func (p *Pool) Submit(task func()) error {
	if task == nil {
		return nil
	}

	if p.rateLimiter != nil {
		if err := p.rateLimiter.Wait(context.Background()); err != nil {
			return err
		}
	}

	var err error
	if p.kind.isGlobal() {
		err = p.submitGlobal(task)
	} else {
		err = p.submitWS(task)
	}

	if err != nil {
		p.metrics.rejected.Inc()
		return err
	}
	p.metrics.submitted.Inc()
	return nil
}

func (p *Pool) submitGlobal(task func()) error {
	p.global.mu.Lock()
	defer p.global.mu.Unlock()

	if p.stop.Load() {
		return ErrSubmitAfterShutdown
	}

	p.global.pushLocked(task)

	if p.kind == ElasticGlobal && p.idleThreads == 0 && p.activeThreads < p.maxThreads {
		p.activeThreads++
		p.wg.Add(1)
		go p.runGlobalElastic(p.nextGlobalWorkerID())
	}

	return nil
}

func (p *Pool) submitWS(task func()) error {
	p.wsMu.Lock()
	defer p.wsMu.Unlock()

	if p.stop.Load() {
		return ErrSubmitAfterShutdown
	}

	if origin, ok := glocal.Get(); ok && origin.Owner == p {
		p.queues[origin.Index].PushFront(task)
	} else {
		idx := int(p.rr.Add(1) % uint64(len(p.queues)))
		p.queues[idx].PushBack(task)
	}
	p.queuedTasks.Add(1)

	if p.kind == WorkStealingElastic && p.wsIdleThreads == 0 && p.wsActiveThreads < p.wsMaxThreads {
		if slot := p.firstFreeSlotLocked(); slot >= 0 {
			p.slots[slot].running = true
			p.wsActiveThreads++
			p.spawnWSElasticSlot(slot)
		}
	}

	p.wsCond.Signal()
	return nil
}

func (p *Pool) firstFreeSlotLocked() int {
	for i, s := range p.slots {
		if !s.running {
			return i
		}
	}
	return -1
}

// spawnWSElasticSlot starts a worker on slot idx, first joining whatever
// handle previously occupied the slot so its OS resources are released
// before the new one attaches.
func (p *Pool) spawnWSElasticSlot(idx int) {
	s := p.slots[idx]
	if s.done != nil {
		<-s.done
	}
	s.done = make(chan struct{})
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(s.done)
		p.runWSElasticSlot(idx)
	}()
}

func (p *Pool) runWSFixedSlot(idx int) {
	defer p.wg.Done()
	defer close(p.slots[idx].done)
	p.runWSFixed(idx)
}

// Close stops the pool: sets stop, wakes every waiting worker, and blocks
// until all of them have drained their queues and exited. Safe to call
// more than once; only the first call does anything.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.stop.Store(true)
		close(p.done)

		if p.global != nil {
			p.global.mu.Lock()
			p.global.cond.Broadcast()
			p.global.mu.Unlock()
		}
		if p.wsCond != nil {
			p.wsMu.Lock()
			p.wsCond.Broadcast()
			p.wsMu.Unlock()
		}

		p.wg.Wait()
	})
}

// Done returns a channel that is closed once Close has been called, before
// the drain-and-join has necessarily finished. Useful for goroutines (such
// as group.NewForPool's watcher) that want to stop producing without
// racing Submit's own error return.
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// Kind reports the pool's scheduling discipline.
func (p *Pool) Kind() Kind {
	return p.kind
}
