// File: timer.go
// Title: Performance Timer
// Description: Measures an operation and logs its duration on completion.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with performance timing
// - 2026-10-19 v0.2.0: Duration carried on the entry instead of as fields

package log

import (
	"time"
)

// Timer measures one operation. Completion is logged at debug level,
// failure at warn level.
type Timer struct {
	logger    *Logger
	operation string
	started   time.Time
	fields    Fields
	done      bool
}

// StartTimer creates and starts a timer for operation
func (l *Logger) StartTimer(operation string) *Timer {
	return &Timer{
		logger:    l,
		operation: operation,
		started:   time.Now(),
		fields:    Fields{"operation": operation},
	}
}

// WithField attaches a field to the completion entry
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the time since the timer was started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.started)
}

// IsRunning reports whether neither Stop nor StopWithError was called
func (t *Timer) IsRunning() bool {
	return !t.done
}

// Stop logs "<operation> completed" and returns the elapsed time. Only the
// first call to Stop or StopWithError logs; later calls return zero.
func (t *Timer) Stop() time.Duration {
	return t.finish(LevelDebug, " completed", nil)
}

// StopWithError logs "<operation> failed" together with err
func (t *Timer) StopWithError(err error) time.Duration {
	t.fields["success"] = false
	return t.finish(LevelWarn, " failed", err)
}

func (t *Timer) finish(level Level, suffix string, err error) time.Duration {
	if t.done {
		return 0
	}
	t.done = true

	elapsed := t.Elapsed()
	if t.logger != nil {
		t.logger.logTimed(level, t.operation+suffix, err, elapsed, t.fields)
	}
	return elapsed
}
