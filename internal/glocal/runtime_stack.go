package glocal

import "runtime"

// runtimeStack fills buf with the calling goroutine's stack trace header and
// returns the number of bytes written. Split out of goroutineID so the
// runtime.Stack call site is easy to spot in a profile.
func runtimeStack(buf []byte) int {
	return runtime.Stack(buf, false)
}
