// File: timer.go
// Title: Operation Timer
// Description: Measures the duration of an operation, records named
//              checkpoints and logs the result when stopped.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-18 v0.2.0: Checkpoints kept on the timer and reported on stop

package log

import (
	"sync"
	"time"
)

// Timer measures an operation started with Logger.StartTimer
type Timer struct {
	logger      *Logger
	operation   string
	level       Level
	start       time.Time
	fields      Fields
	checkpoints []checkpoint
	stopped     bool
	mu          sync.Mutex
}

type checkpoint struct {
	name    string
	elapsed time.Duration
}

// NewTimer creates a running timer bound to the given logger
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		level:     LevelDebug,
		start:     time.Now(),
		fields:    make(Fields),
	}
}

// WithLevel sets the level used when the timer is stopped successfully
func (t *Timer) WithLevel(level Level) *Timer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.level = level
	return t
}

// WithField adds a field reported when the timer stops
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fields[key] = value
	return t
}

// StartTime returns when the timer was started
func (t *Timer) StartTime() time.Time {
	return t.start
}

// Elapsed returns the duration since the timer was started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Checkpoint records an intermediate duration under the given name
func (t *Timer) Checkpoint(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	elapsed := time.Since(t.start)
	t.checkpoints = append(t.checkpoints, checkpoint{name: name, elapsed: elapsed})
	return elapsed
}

// IsRunning reports whether the timer has not been stopped yet
func (t *Timer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped
}

// Stop stops the timer, logs the duration and returns it
func (t *Timer) Stop() time.Duration {
	return t.finish(nil)
}

// StopWithError stops the timer and logs at error level if err is non-nil
func (t *Timer) StopWithError(err error) time.Duration {
	return t.finish(err)
}

// Cancel stops the timer without logging
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *Timer) finish(err error) time.Duration {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return 0
	}
	t.stopped = true
	elapsed := time.Since(t.start)

	fields := make(Fields, len(t.fields)+len(t.checkpoints)+2)
	for k, v := range t.fields {
		fields[k] = v
	}
	fields["operation"] = t.operation
	fields["duration"] = elapsed
	for _, cp := range t.checkpoints {
		fields["checkpoint_"+cp.name] = cp.elapsed
	}
	level := t.level
	t.mu.Unlock()

	if t.logger == nil {
		return elapsed
	}
	if err != nil {
		t.logger.log(LevelError, "Operation failed", fields, err)
		return elapsed
	}
	t.logger.log(level, "Operation completed", fields, nil)
	return elapsed
}
