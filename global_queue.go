package flock

import (
	"sync"

	"github.com/eapache/queue"
)

// globalQueue is the single FIFO shared by all workers in the
// global-queue modes (C2), protected by a mutex/condvar pair. Backed by
// eapache/queue's ring buffer, which grows by doubling and never shrinks —
// a good fit for a queue whose depth tracks burstiness rather than growing
// unbounded.
type globalQueue struct {
	mu   sync.Mutex
	cond *sync.Cond
	q    *queue.Queue
}

func newGlobalQueue() *globalQueue {
	g := &globalQueue{q: queue.New()}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// pushLocked enqueues task and signals one waiter. Caller must hold mu.
func (g *globalQueue) pushLocked(task func()) {
	g.q.Add(task)
	g.cond.Signal()
}

// popLocked dequeues the oldest task. Caller must hold mu and have already
// verified the queue is non-empty.
func (g *globalQueue) popLocked() func() {
	return g.q.Remove().(func())
}

func (g *globalQueue) lenLocked() int {
	return g.q.Length()
}
