// Package glocal emulates thread-local storage on top of goroutines.
//
// The pool's submit routing needs to know, without any explicit parameter
// threaded through user task bodies, whether the calling goroutine is one
// of its own workers. Go has no goroutine-local storage, so this package
// parses the calling goroutine's numeric id out of runtime.Stack — the same
// technique long used by third-party goroutine-local-storage packages
// (jtolds/gls, petermattis/goid) — and keys a map on it.
package glocal

import (
	"bytes"
	"strconv"
	"sync"
)

// Origin identifies which pool and worker index own the calling goroutine.
type Origin struct {
	Owner interface{} // *flock.Pool, held as interface{} to avoid an import cycle
	Index int
}

var (
	mu      sync.RWMutex
	origins = make(map[uint64]Origin)
)

// goroutineID parses the numeric id out of this goroutine's stack header,
// e.g. "goroutine 18 [running]:". Set, Clear and Get all call it, and Get
// sits on Submit's work-stealing path, so it is kept allocation-light but
// is not lock-free; a worker pool's submit rate does not approach the
// frequency this would matter at.
func goroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtimeStack(buf)
	buf = buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(buf, []byte(prefix)) {
		return 0
	}
	buf = buf[len(prefix):]
	end := bytes.IndexByte(buf, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(buf[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Set associates the calling goroutine with owner/index. Called once when a
// worker loop starts.
func Set(owner interface{}, index int) {
	id := goroutineID()
	if id == 0 {
		return
	}
	mu.Lock()
	origins[id] = Origin{Owner: owner, Index: index}
	mu.Unlock()
}

// Clear removes the calling goroutine's association. Called when a worker
// loop exits, so a retired-and-later-reused OS-level goroutine slot (the Go
// runtime recycles the underlying machinery, not the goroutine itself, but
// the id space is finite and does eventually wrap) never reports a stale
// owner.
func Clear() {
	id := goroutineID()
	if id == 0 {
		return
	}
	mu.Lock()
	delete(origins, id)
	mu.Unlock()
}

// Get returns the Origin associated with the calling goroutine, if any.
func Get() (Origin, bool) {
	id := goroutineID()
	if id == 0 {
		return Origin{}, false
	}
	mu.RLock()
	o, ok := origins[id]
	mu.RUnlock()
	return o, ok
}
