// File: errors.go
// Title: Evaluation Errors
// Description: The closed set of errors an evaluation can end with.
//              Lexical problems have no kind of their own: an illegal token
//              is reported by whichever rule rejects it.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package evaluator

import (
	"fmt"

	"github.com/msto63/pascal/foundation/calc/scanner"
)

// ErrorKind classifies an evaluation error
type ErrorKind int

const (
	// KindUnexpectedToken means a required token was not found
	KindUnexpectedToken ErrorKind = iota + 1

	// KindUninitializedVariable means a variable was read before assignment
	KindUninitializedVariable

	// KindMalformedConstruct means the lookahead cannot start the rule
	// being parsed
	KindMalformedConstruct
)

// String returns the name of the kind
func (k ErrorKind) String() string {
	switch k {
	case KindUnexpectedToken:
		return "UnexpectedToken"
	case KindUninitializedVariable:
		return "UninitializedVariable"
	case KindMalformedConstruct:
		return "MalformedConstruct"
	default:
		return "Unknown"
	}
}

// Constructs named by MalformedConstruct errors
const (
	ConstructAssignment = "assignment"
	ConstructExpression = "expression"
	ConstructTerm       = "term"
	ConstructFactor     = "factor"
)

// Error describes why an evaluation failed. Which fields are set depends
// on Kind:
//
//	KindUnexpectedToken        Expected, Actual
//	KindUninitializedVariable  Name
//	KindMalformedConstruct     Construct, Actual
type Error struct {
	Kind      ErrorKind
	Expected  scanner.Token
	Actual    scanner.Token
	Name      string
	Construct string
	Pos       scanner.Position
}

// Sentinels for errors.Is; they match any error of the same kind.
var (
	ErrUnexpectedToken       = &Error{Kind: KindUnexpectedToken}
	ErrUninitializedVariable = &Error{Kind: KindUninitializedVariable}
	ErrMalformedConstruct    = &Error{Kind: KindMalformedConstruct}
)

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case KindUnexpectedToken:
		return fmt.Sprintf("%s: expected %s, got %s", e.Pos, e.Expected, e.Actual)
	case KindUninitializedVariable:
		return fmt.Sprintf("%s: uninitialized variable %q", e.Pos, e.Name)
	case KindMalformedConstruct:
		return fmt.Sprintf("%s: could not parse %s at %s", e.Pos, e.Construct, e.Actual)
	default:
		return fmt.Sprintf("%s: evaluation failed", e.Pos)
	}
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func unexpectedToken(expected, actual scanner.Token) *Error {
	return &Error{
		Kind:     KindUnexpectedToken,
		Expected: expected,
		Actual:   actual,
		Pos:      actual.Pos,
	}
}

func uninitializedVariable(tok scanner.Token) *Error {
	return &Error{
		Kind: KindUninitializedVariable,
		Name: tok.Text,
		Pos:  tok.Pos,
	}
}

func malformedConstruct(construct string, actual scanner.Token) *Error {
	return &Error{
		Kind:      KindMalformedConstruct,
		Construct: construct,
		Actual:    actual,
		Pos:       actual.Pos,
	}
}
