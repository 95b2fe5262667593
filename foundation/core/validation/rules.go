// File: rules.go
// Title: Validation Rules
// Description: Reusable validators for strings and integers.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19

package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Required fails for nil, empty or whitespace-only strings
func Required() Validator {
	return ValidatorFunc(func(value interface{}) ValidationResult {
		switch v := value.(type) {
		case nil:
			return Invalid(CodeRequired, "value is required", nil, nil)
		case string:
			if strings.TrimSpace(v) == "" {
				return Invalid(CodeRequired, "value is required", v, nil)
			}
		}
		return Valid()
	})
}

// MaxBytes fails for strings longer than max bytes. A max of zero or less
// disables the rule.
func MaxBytes(max int) Validator {
	return ValidatorFunc(func(value interface{}) ValidationResult {
		s, ok := value.(string)
		if !ok {
			return typeMismatch("string", value)
		}
		if max > 0 && len(s) > max {
			return Invalid(CodeLength, fmt.Sprintf("must not exceed %d bytes", max), len(s), max)
		}
		return Valid()
	})
}

// UTF8 fails for strings that are not valid UTF-8
func UTF8() Validator {
	return ValidatorFunc(func(value interface{}) ValidationResult {
		s, ok := value.(string)
		if !ok {
			return typeMismatch("string", value)
		}
		if !utf8.ValidString(s) {
			return Invalid(CodeFormat, "must be valid UTF-8", nil, nil)
		}
		return Valid()
	})
}

// IntRange fails for integers outside [min, max]
func IntRange(min, max int) Validator {
	return ValidatorFunc(func(value interface{}) ValidationResult {
		n, ok := toInt(value)
		if !ok {
			return typeMismatch("integer", value)
		}
		if n < min || n > max {
			return Invalid(CodeRange, fmt.Sprintf("must be between %d and %d", min, max), n, fmt.Sprintf("%d..%d", min, max))
		}
		return Valid()
	})
}

// NonNegative fails for integers below zero
func NonNegative() Validator {
	return ValidatorFunc(func(value interface{}) ValidationResult {
		n, ok := toInt(value)
		if !ok {
			return typeMismatch("integer", value)
		}
		if n < 0 {
			return Invalid(CodeRange, "must not be negative", n, ">= 0")
		}
		return Valid()
	})
}

func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func typeMismatch(expected string, value interface{}) ValidationResult {
	return Invalid(CodeFormat, fmt.Sprintf("expected %s, got %T", expected, value), nil, expected)
}
