// Package log provides structured logging for the pascal interpreter.
//
// Package: log
// Title: Structured Logging
// Description: Leveled, structured logging with contextual fields, several
//              output formats and integration with the mdwerror package.
//              Loggers are immutable: every With* call returns a copy, so a
//              component logger can be shared between goroutines.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-19 v0.2.0: Run and component context, deterministic field order
//
// Usage:
//
//	import mdwlog "github.com/msto63/pascal/foundation/core/log"
//
//	logger := mdwlog.New().
//		WithLevel(mdwlog.LevelDebug).
//		WithComponent("evaluator").
//		WithRunID(id)
//
//	logger.Info("program evaluated", mdwlog.Fields{"bindings": 3})
//
//	timer := logger.StartTimer("evaluate")
//	// ... evaluate
//	timer.Stop()
package log
