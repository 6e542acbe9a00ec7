package flock

import "time"

// SleepFor blocks the calling goroutine for d. After the delay the timer
// posts a wake-up closure through sched, and SleepFor returns only once a
// worker of sched's pool has run that closure. The code after SleepFor
// continues on the calling goroutine; it does not move onto the pool
// worker or the timer goroutine. A non-positive duration returns
// immediately without spawning anything, matching await_ready for a sleep
// that's already expired.
//
// If sched's pool was built with WithSleepWheel, the wait is batched onto
// that wheel's single background goroutine instead of spawning one
// goroutine per call; otherwise each call owns its own timer goroutine.
func SleepFor(d time.Duration, sched Scheduler) {
	if d <= 0 {
		return
	}

	resumed := make(chan struct{})
	fire := func() { sched.Post(func() { close(resumed) }) }

	if w := sched.pool.sleepWheel; w != nil {
		w.After(d, fire)
	} else {
		time.AfterFunc(d, fire)
	}

	<-resumed
}
