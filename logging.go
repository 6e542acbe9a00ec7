package flock

import "go.uber.org/zap"

// defaultLogger returns a production zap logger. Construction failure
// (extremely rare — it only happens on a broken encoder config) falls back
// to zap.NewNop so a pool never fails to start because of its logger.
func defaultLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
