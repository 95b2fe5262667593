// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to pick the log level of an error.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow covers errors caused by user input, such as a program
	// that does not parse
	SeverityLow Severity = iota

	// SeverityMedium is the default for errors without a more specific code
	SeverityMedium

	// SeverityHigh covers infrastructure failures like an unreachable store
	SeverityHigh

	// SeverityCritical means the process cannot continue
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// SeverityFromCode determines the default severity for a code
func SeverityFromCode(code Code) Severity {
	switch code {
	case CodeDatabaseError, CodeServiceInitialization, CodeServiceUnavailable:
		return SeverityHigh
	case CodeSyntax, CodeUndefinedVariable, CodeInvalidInput,
		CodeInvalidFormat, CodeInvalidLength, CodeNotFound:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
