// ============================================================================
// pascal - Ganzzahl-Interpreter
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating configured loggers
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"sync"

	mdwlog "github.com/msto63/pascal/foundation/core/log"
	"github.com/msto63/pascal/pkg/core/config"
)

var (
	defaultsMu sync.RWMutex
	defaults   = LoggerConfig{Level: "info", Format: "text"}
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format (json, text, console, logfmt)
	Format string

	// Output destination, stderr when nil
	Output io.Writer

	// Additional outputs written alongside Output
	AdditionalOutputs []io.Writer
}

// FromConfig derives logger settings from the application configuration
func FromConfig(cfg *config.Config, serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       cfg.General.LogLevel,
		Format:      cfg.General.LogFormat,
	}
}

// SetDefaults changes the settings used by New and
// installs a matching foundation default logger
func SetDefaults(cfg LoggerConfig) {
	defaultsMu.Lock()
	defaults = cfg
	defaultsMu.Unlock()

	mdwlog.SetDefault(NewLogger(cfg))
}

// Defaults returns the current default settings
func Defaults() LoggerConfig {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaults
}

// NewLogger creates a new foundation logger
func NewLogger(cfg LoggerConfig) *mdwlog.Logger {
	level, err := mdwlog.ParseLevel(cfg.Level)
	if err != nil {
		level = mdwlog.LevelInfo
	}

	format, err := mdwlog.ParseFormat(cfg.Format)
	if err != nil {
		format = mdwlog.FormatJSON
	}

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:  level,
		Format: format,
		Output: output,
		Name:   cfg.ServiceName,
	})
}
