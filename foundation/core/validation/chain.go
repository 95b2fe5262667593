// File: chain.go
// Title: Validator Chain Implementation
// Description: Composable validator chains and per-field validation of
//              request structures.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial validator chain implementation
// - 2026-10-19 v0.2.0: Field helper for request validation

package validation

import "fmt"

// ValidatorChain runs validators in order
type ValidatorChain struct {
	validators       []Validator
	name             string
	stopOnFirstError bool
}

// NewValidatorChain creates a new validator chain with an optional name
func NewValidatorChain(name ...string) *ValidatorChain {
	chainName := ""
	if len(name) > 0 {
		chainName = name[0]
	}
	return &ValidatorChain{name: chainName}
}

// Add appends a validator
func (c *ValidatorChain) Add(validator Validator) *ValidatorChain {
	c.validators = append(c.validators, validator)
	return c
}

// StopOnFirstError stops the chain at the first failing validator
func (c *ValidatorChain) StopOnFirstError(stop bool) *ValidatorChain {
	c.stopOnFirstError = stop
	return c
}

// Validate runs the chain against value
func (c *ValidatorChain) Validate(value interface{}) ValidationResult {
	results := make([]ValidationResult, 0, len(c.validators))
	for _, v := range c.validators {
		result := v.Validate(value)
		results = append(results, result)
		if c.stopOnFirstError && !result.Valid {
			break
		}
	}
	return Combine(results...)
}

// Length returns the number of validators
func (c *ValidatorChain) Length() int {
	return len(c.validators)
}

// String returns a description of the chain
func (c *ValidatorChain) String() string {
	name := c.name
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf("ValidatorChain{name: %s, validators: %d, stopOnFirstError: %v}",
		name, len(c.validators), c.stopOnFirstError)
}

// Field validates value with the given validators and tags errors with field
func Field(field string, value interface{}, validators ...Validator) ValidationResult {
	chain := NewValidatorChain(field)
	for _, v := range validators {
		chain.Add(v)
	}
	return chain.Validate(value).WithField(field)
}
