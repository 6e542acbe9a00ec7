package flock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// Construction / boundary cases
// ============================================================================

func TestNewFixed_ZeroWorkers(t *testing.T) {
	if _, err := NewFixed(0, ClassicFixed); err == nil {
		t.Error("expected an error for n=0, got nil")
	}
}

func TestNewFixed_WrongKind(t *testing.T) {
	if _, err := NewFixed(4, ElasticGlobal); err == nil {
		t.Error("expected an error for a non-fixed kind, got nil")
	}
}

func TestNewElasticGlobal_MinGreaterThanMax(t *testing.T) {
	if _, err := NewElasticGlobal(8, 2, time.Second); err == nil {
		t.Error("expected an error for min > max, got nil")
	}
}

func TestNewElasticWorkStealing_MinGreaterThanMax(t *testing.T) {
	if _, err := NewElasticWorkStealing(8, 2, time.Second); err == nil {
		t.Error("expected an error for min > max, got nil")
	}
}

func TestSubmit_NilTaskIsNoOp(t *testing.T) {
	pool, err := NewFixed(2, ClassicFixed)
	if err != nil {
		t.Fatalf("NewFixed() error = %v", err)
	}
	defer pool.Close()

	if err := pool.Submit(nil); err != nil {
		t.Errorf("Submit(nil) error = %v, want nil", err)
	}
}

func TestSubmit_AfterClose(t *testing.T) {
	pool, err := NewFixed(2, ClassicFixed)
	if err != nil {
		t.Fatalf("NewFixed() error = %v", err)
	}
	pool.Close()

	if err := pool.Submit(func() {}); err != ErrSubmitAfterShutdown {
		t.Errorf("Submit after Close error = %v, want ErrSubmitAfterShutdown", err)
	}
}

// ============================================================================
// S1: ClassicFixed drains every submitted task exactly once
// ============================================================================

func TestClassicFixed_DrainsAllTasks(t *testing.T) {
	pool, err := NewFixed(4, ClassicFixed)
	if err != nil {
		t.Fatalf("NewFixed() error = %v", err)
	}
	defer pool.Close()

	const n = 300
	var counter int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		if err := pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
			wg.Done()
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	wg.Wait()
	if got := atomic.LoadInt64(&counter); got != n {
		t.Errorf("counter = %d, want %d", got, n)
	}
}

// ============================================================================
// S2: WorkStealingFixed drains work submitted from nested worker tasks too
// ============================================================================

func TestWorkStealingFixed_NestedSubmitDrains(t *testing.T) {
	pool, err := NewFixed(24, WorkStealingFixed)
	if err != nil {
		t.Fatalf("NewFixed() error = %v", err)
	}
	defer pool.Close()

	const outer = 24
	const inner = 12
	var counter int64
	var wg sync.WaitGroup
	wg.Add(outer * inner)

	for i := 0; i < outer; i++ {
		if err := pool.Submit(func() {
			for j := 0; j < inner; j++ {
				if err := pool.Submit(func() {
					atomic.AddInt64(&counter, 1)
					wg.Done()
				}); err != nil {
					t.Errorf("nested Submit() error = %v", err)
					wg.Done()
				}
			}
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	wg.Wait()
	if got := atomic.LoadInt64(&counter); got != outer*inner {
		t.Errorf("counter = %d, want %d", got, outer*inner)
	}
}

// ============================================================================
// S3: ElasticGlobal grows under a burst and reports sane bounds
// ============================================================================

func TestElasticGlobal_BurstAndDrain(t *testing.T) {
	pool, err := NewElasticGlobal(2, 8, 80*time.Millisecond)
	if err != nil {
		t.Fatalf("NewElasticGlobal() error = %v", err)
	}
	defer pool.Close()

	const n = 260
	var counter int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		if err := pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
			wg.Done()
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	wg.Wait()
	if got := atomic.LoadInt64(&counter); got != n {
		t.Errorf("counter = %d, want %d", got, n)
	}

	stats := pool.Stats()
	if stats.ActiveThreads < stats.MinThreads || stats.ActiveThreads > stats.MaxThreads {
		t.Errorf("ActiveThreads = %d, want between %d and %d", stats.ActiveThreads, stats.MinThreads, stats.MaxThreads)
	}

	// After idling past idleTimeout the pool should decay back to its floor.
	time.Sleep(400 * time.Millisecond)
	stats = pool.Stats()
	if stats.ActiveThreads != stats.MinThreads {
		t.Errorf("ActiveThreads after idling = %d, want %d", stats.ActiveThreads, stats.MinThreads)
	}
}

// ============================================================================
// WorkStealingElastic: same burst/decay shape over per-worker deques
// ============================================================================

func TestWorkStealingElastic_BurstAndDrain(t *testing.T) {
	pool, err := NewElasticWorkStealing(2, 8, 80*time.Millisecond)
	if err != nil {
		t.Fatalf("NewElasticWorkStealing() error = %v", err)
	}
	defer pool.Close()

	const n = 260
	var counter int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		if err := pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
			wg.Done()
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	wg.Wait()
	if got := atomic.LoadInt64(&counter); got != n {
		t.Errorf("counter = %d, want %d", got, n)
	}

	time.Sleep(400 * time.Millisecond)
	stats := pool.Stats()
	if stats.ActiveThreads != stats.MinThreads {
		t.Errorf("ActiveThreads after idling = %d, want %d", stats.ActiveThreads, stats.MinThreads)
	}
}

// ============================================================================
// Panic isolation: one bad task must not kill the pool or its peers
// ============================================================================

func TestPool_PanicDoesNotStopTheWorker(t *testing.T) {
	pool, err := NewFixed(2, ClassicFixed, WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("NewFixed() error = %v", err)
	}
	defer pool.Close()

	var wg sync.WaitGroup
	wg.Add(2)

	_ = pool.Submit(func() {
		defer wg.Done()
		panic("boom")
	})
	var ran int32
	_ = pool.Submit(func() {
		defer wg.Done()
		atomic.StoreInt32(&ran, 1)
	})

	wg.Wait()
	if atomic.LoadInt32(&ran) != 1 {
		t.Error("task submitted after a panicking task should still run")
	}
}

// ============================================================================
// Close is idempotent and waits for in-flight drain
// ============================================================================

func TestPool_CloseIsIdempotent(t *testing.T) {
	pool, err := NewFixed(2, WorkStealingFixed)
	if err != nil {
		t.Fatalf("NewFixed() error = %v", err)
	}

	pool.Close()
	pool.Close() // must not panic or block
}

func TestPool_RateLimitCapsThroughput(t *testing.T) {
	pool, err := NewFixed(4, ClassicFixed, WithRateLimit(50, 5))
	if err != nil {
		t.Fatalf("NewFixed() error = %v", err)
	}
	defer pool.Close()

	const n = 20
	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		if err := pool.Submit(func() { wg.Done() }); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	wg.Wait()

	// 20 tasks at 50/s with a burst of 5 takes at least (20-5)/50 seconds.
	if elapsed := time.Since(start); elapsed < 250*time.Millisecond {
		t.Errorf("20 submissions at 50/s burst 5 took %v, want >= 250ms", elapsed)
	}
}

func TestPool_DoneClosesOnClose(t *testing.T) {
	pool, err := NewFixed(1, ClassicFixed)
	if err != nil {
		t.Fatalf("NewFixed() error = %v", err)
	}

	select {
	case <-pool.Done():
		t.Fatal("Done() closed before Close()")
	default:
	}

	pool.Close()

	select {
	case <-pool.Done():
	default:
		t.Fatal("Done() not closed after Close()")
	}
}
