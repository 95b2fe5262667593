// File: evaluator.go
// Title: Recursive Descent Evaluator
// Description: Parses a program with one token of lookahead and computes
//              values while parsing. Each grammar rule is one method:
//
//              program          := assignment+
//              assignment       := identifier '=' expression ';'
//              expression       := term expression_prime
//              expression_prime := ('+' | '-') term expression_prime | ε
//              term             := factor term_prime
//              term_prime       := '*' factor term_prime | ε
//              factor           := identifier | literal | '(' expression ')'
//                                | '+' factor | '-' factor
//
//              The primed rules fold their operands into a running value,
//              so chains of the same precedence associate to the left.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package evaluator

import (
	"github.com/msto63/pascal/foundation/calc/scanner"
)

// Evaluator runs a single program. It is not safe for concurrent use and
// cannot be reused after Run returns.
type Evaluator struct {
	scanner    *scanner.Scanner
	lookahead  scanner.Token
	env        Environment
	statements int
	trace      func(scanner.Token)
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithTrace registers fn to be called with every token the evaluator reads
func WithTrace(fn func(scanner.Token)) Option {
	return func(e *Evaluator) {
		e.trace = fn
	}
}

// New creates an evaluator for source
func New(source string, opts ...Option) *Evaluator {
	e := &Evaluator{
		scanner: scanner.New(source),
		env:     make(Environment),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run evaluates source and returns the final variable bindings
func Run(source string) (Environment, error) {
	return New(source).Run()
}

// Run evaluates the program and returns the final bindings. On error no
// bindings are returned; the error is always an *Error.
func (e *Evaluator) Run() (Environment, error) {
	e.advance()

	if err := e.program(); err != nil {
		return nil, err
	}
	if err := e.match(scanner.Of(scanner.TokenEOF)); err != nil {
		return nil, err
	}
	return e.env, nil
}

// Statements returns the number of assignments executed so far
func (e *Evaluator) Statements() int {
	return e.statements
}

func (e *Evaluator) program() error {
	if err := e.assignment(); err != nil {
		return err
	}
	for e.lookahead.Kind != scanner.TokenEOF {
		if err := e.assignment(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) assignment() error {
	if e.lookahead.Kind != scanner.TokenIdentifier {
		return malformedConstruct(ConstructAssignment, e.lookahead)
	}
	name := e.lookahead.Text
	e.advance()

	if err := e.match(scanner.Of(scanner.TokenAssign)); err != nil {
		return err
	}
	value, err := e.expression()
	if err != nil {
		return err
	}
	if err := e.match(scanner.Of(scanner.TokenSemicolon)); err != nil {
		return err
	}

	e.env[name] = value
	e.statements++
	return nil
}

func (e *Evaluator) expression() (int32, error) {
	if !startsOperand(e.lookahead.Kind) {
		return 0, malformedConstruct(ConstructExpression, e.lookahead)
	}
	left, err := e.term()
	if err != nil {
		return 0, err
	}
	return e.expressionPrime(left)
}

// expressionPrime ends the chain on any lookahead other than '+' or '-'
func (e *Evaluator) expressionPrime(acc int32) (int32, error) {
	for {
		switch e.lookahead.Kind {
		case scanner.TokenPlus:
			e.advance()
			right, err := e.term()
			if err != nil {
				return 0, err
			}
			acc += right
		case scanner.TokenMinus:
			e.advance()
			right, err := e.term()
			if err != nil {
				return 0, err
			}
			acc -= right
		default:
			return acc, nil
		}
	}
}

func (e *Evaluator) term() (int32, error) {
	if !startsOperand(e.lookahead.Kind) {
		return 0, malformedConstruct(ConstructTerm, e.lookahead)
	}
	left, err := e.factor()
	if err != nil {
		return 0, err
	}
	return e.termPrime(left)
}

// termPrime ends the chain on any lookahead other than '*'
func (e *Evaluator) termPrime(acc int32) (int32, error) {
	for e.lookahead.Kind == scanner.TokenMultiply {
		e.advance()
		right, err := e.factor()
		if err != nil {
			return 0, err
		}
		acc *= right
	}
	return acc, nil
}

func (e *Evaluator) factor() (int32, error) {
	tok := e.lookahead

	switch tok.Kind {
	case scanner.TokenIdentifier:
		value, ok := e.env[tok.Text]
		if !ok {
			return 0, uninitializedVariable(tok)
		}
		e.advance()
		return value, nil

	case scanner.TokenLiteral:
		e.advance()
		return tok.Value, nil

	case scanner.TokenLeftParen:
		e.advance()
		value, err := e.expression()
		if err != nil {
			return 0, err
		}
		if err := e.match(scanner.Of(scanner.TokenRightParen)); err != nil {
			return 0, err
		}
		return value, nil

	case scanner.TokenPlus:
		e.advance()
		return e.factor()

	case scanner.TokenMinus:
		e.advance()
		value, err := e.factor()
		if err != nil {
			return 0, err
		}
		return -value, nil

	default:
		return 0, malformedConstruct(ConstructFactor, tok)
	}
}

// match consumes the lookahead if it equals expected
func (e *Evaluator) match(expected scanner.Token) error {
	if !e.lookahead.Equal(expected) {
		return unexpectedToken(expected, e.lookahead)
	}
	e.advance()
	return nil
}

func (e *Evaluator) advance() {
	e.lookahead = e.scanner.NextToken()
	if e.trace != nil {
		e.trace(e.lookahead)
	}
}

// startsOperand reports whether kind is in FIRST(expression), which equals
// FIRST(term) and FIRST(factor)
func startsOperand(kind scanner.Kind) bool {
	switch kind {
	case scanner.TokenIdentifier, scanner.TokenLiteral, scanner.TokenLeftParen,
		scanner.TokenPlus, scanner.TokenMinus:
		return true
	default:
		return false
	}
}
