// File: environment.go
// Title: Variable Environment
// Description: The variable table built up by one evaluation.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19

package evaluator

import "sort"

// Environment maps variable names to their current values
type Environment map[string]int32

// Names returns the variable names in sorted order
func (env Environment) Names() []string {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy
func (env Environment) Clone() Environment {
	if env == nil {
		return nil
	}
	out := make(Environment, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}

// Diff returns the names whose value in env is new or differs from prev,
// in sorted order
func (env Environment) Diff(prev Environment) []string {
	var changed []string
	for _, name := range env.Names() {
		old, ok := prev[name]
		if !ok || old != env[name] {
			changed = append(changed, name)
		}
	}
	return changed
}
