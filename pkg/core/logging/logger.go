// ============================================================================
// pascal - Ganzzahl-Interpreter
// ============================================================================
//
// Package:     logging
// Description: Key/value logger used by services, servers and the CLI
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	mdwlog "github.com/msto63/pascal/foundation/core/log"
)

// Logger wraps the foundation logger with a key/value call style
type Logger struct {
	*mdwlog.Logger
	name string
}

// New creates a logger for name using the process-wide defaults
func New(name string) *Logger {
	cfg := Defaults()
	cfg.ServiceName = name
	return &Logger{
		Logger: NewLogger(cfg),
		name:   name,
	}
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// Foundation returns the underlying foundation logger
func (l *Logger) Foundation() *mdwlog.Logger {
	return l.Logger
}

// With returns a logger that adds the given key/value pairs to every entry
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.WithFields(toFields(keysAndValues...)),
		name:   l.name,
	}
}

// WithRunID returns a logger tagged with an evaluation run ID
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		Logger: l.Logger.WithRunID(runID),
		name:   l.name,
	}
}

// Debug logs a debug message with key/value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key/value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key/value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key/value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields converts key-value pairs to mdwlog.Fields. Non-string keys and a
// trailing key without value are dropped.
func toFields(keysAndValues ...interface{}) mdwlog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(mdwlog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
