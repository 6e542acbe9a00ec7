package flock

import (
	"errors"
	"testing"
)

func TestSyncWait_ReturnsResult(t *testing.T) {
	sched, _ := newTestScheduler(t, 2)

	task := NewTask(sched, func(*Context) (string, error) { return "ok", nil })

	got, err := SyncWait(task)
	if err != nil {
		t.Fatalf("SyncWait() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want %q", got, "ok")
	}
}

func TestSyncWait_FromPoolWorkerRefuses(t *testing.T) {
	pool, err := NewFixed(1, ClassicFixed)
	if err != nil {
		t.Fatalf("NewFixed() error = %v", err)
	}
	defer pool.Close()
	sched := NewScheduler(pool)

	resultErr := make(chan error, 1)
	_ = pool.Submit(func() {
		inner := NewTask(sched, func(*Context) (int, error) { return 1, nil })
		_, err := SyncWait(inner)
		resultErr <- err
	})

	if err := <-resultErr; !errors.Is(err, ErrSyncWaitFromWorker) {
		t.Errorf("error = %v, want ErrSyncWaitFromWorker", err)
	}
}

func TestSyncWait_FromPlainGoroutineSucceeds(t *testing.T) {
	sched, _ := newTestScheduler(t, 1)

	task := NewTask(sched, func(*Context) (int, error) { return 5, nil })
	got, err := SyncWait(task)
	if err != nil {
		t.Fatalf("SyncWait() error = %v", err)
	}
	if got != 5 {
		t.Errorf("got %d, want 5", got)
	}
}
