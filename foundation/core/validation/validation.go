// File: validation.go
// Title: Validation Core Types
// Description: Validator interface, structured validation results and the
//              conversion of failed results into mdwerror errors.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial validation framework
// - 2026-10-19 v0.2.0: Reduced to the rules used for request validation

package validation

import (
	"fmt"
	"strings"

	mdwerror "github.com/msto63/pascal/foundation/core/error"
)

// Validation failure codes
const (
	CodeRequired = "VALIDATION_REQUIRED"
	CodeLength   = "VALIDATION_LENGTH"
	CodeRange    = "VALIDATION_RANGE"
	CodeFormat   = "VALIDATION_FORMAT"
)

// Validator validates a single value
type Validator interface {
	Validate(value interface{}) ValidationResult
}

// ValidatorFunc adapts a function to the Validator interface
type ValidatorFunc func(value interface{}) ValidationResult

// Validate implements Validator
func (f ValidatorFunc) Validate(value interface{}) ValidationResult {
	return f(value)
}

// ValidationResult is the outcome of one or more validations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError describes one failed rule
type ValidationError struct {
	Code     string      `json:"code"`
	Field    string      `json:"field,omitempty"`
	Message  string      `json:"message"`
	Value    interface{} `json:"value,omitempty"`
	Expected interface{} `json:"expected,omitempty"`
}

// Valid returns a passing result
func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid returns a failing result with a single error
func Invalid(code, message string, value, expected interface{}) ValidationResult {
	return ValidationResult{
		Errors: []ValidationError{{
			Code:     code,
			Message:  message,
			Value:    value,
			Expected: expected,
		}},
	}
}

// WithField sets the field name on all errors that have none
func (r ValidationResult) WithField(field string) ValidationResult {
	for i := range r.Errors {
		if r.Errors[i].Field == "" {
			r.Errors[i].Field = field
		}
	}
	return r
}

// Combine merges results; the combination is valid only if all are
func Combine(results ...ValidationResult) ValidationResult {
	combined := Valid()
	for _, r := range results {
		if !r.Valid {
			combined.Valid = false
			combined.Errors = append(combined.Errors, r.Errors...)
		}
	}
	return combined
}

// Error returns a summary of all validation errors
func (r ValidationResult) Error() string {
	if r.Valid {
		return ""
	}
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		if e.Field != "" {
			parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
		} else {
			parts[i] = e.Message
		}
	}
	return strings.Join(parts, "; ")
}

// ToError converts a failed result into an mdwerror. The code follows the
// first failing rule: length rules give CodeInvalidLength, format rules
// CodeInvalidFormat, everything else CodeInvalidInput. The first failing
// field and rule are attached as details.
func (r ValidationResult) ToError() error {
	if r.Valid {
		return nil
	}
	err := mdwerror.New(r.Error()).WithCode(mdwerror.CodeInvalidInput)
	if len(r.Errors) > 0 {
		first := r.Errors[0]
		switch first.Code {
		case CodeLength:
			err = err.WithCode(mdwerror.CodeInvalidLength)
		case CodeFormat:
			err = err.WithCode(mdwerror.CodeInvalidFormat)
		}
		err = err.WithDetail("rule", first.Code)
		if first.Field != "" {
			err = err.WithDetail("field", first.Field)
		}
		if first.Value != nil {
			err = err.WithDetail("value", first.Value)
		}
		if first.Expected != nil {
			err = err.WithDetail("expected", first.Expected)
		}
	}
	return err
}
