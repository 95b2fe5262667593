// Package error provides structured errors for the pascal interpreter.
//
// Package: error
// Title: Structured Error Handling
// Description: Errors carrying a code, a severity, the failing operation and
//              free-form details. Codes map onto HTTP status codes and are
//              the common currency between the engine, the run store and the
//              network surfaces.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-19 v0.2.0: Interpreter codes, errors.As based lookups
//
// Usage:
//
//	import mdwerror "github.com/msto63/pascal/foundation/core/error"
//
//	err := mdwerror.Wrap(cause, "evaluation failed").
//		WithCode(mdwerror.CodeSyntax).
//		WithOperation("engine.Run").
//		WithDetail("line", 3)
//
//	if mdwerror.HasCode(err, mdwerror.CodeSyntax) {
//		// report the position to the user
//	}
package error
