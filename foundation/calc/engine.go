// File: engine.go
// Title: Calculation Engine
// Description: Entry point for evaluating programs. Wraps the evaluator with
//              input limits, logging and structured errors so that callers
//              outside the core only deal with mdwerror codes.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial engine implementation

package calc

import (
	"context"
	"errors"
	"time"

	"github.com/msto63/pascal/foundation/calc/evaluator"
	"github.com/msto63/pascal/foundation/calc/scanner"
	mdwerror "github.com/msto63/pascal/foundation/core/error"
	mdwlog "github.com/msto63/pascal/foundation/core/log"
)

// DefaultMaxSourceLength is used when Options.MaxSourceLength is zero
const DefaultMaxSourceLength = 64 * 1024

// Engine evaluates programs. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	logger  *mdwlog.Logger
	options Options
}

// Options configures the engine
type Options struct {
	Logger          *mdwlog.Logger
	MaxSourceLength int
	// TraceTokens logs every consumed token at trace level
	TraceTokens bool
}

// Request is a single evaluation request
type Request struct {
	RunID  string
	Source string
}

// Result is the outcome of a successful evaluation
type Result struct {
	RunID      string
	Bindings   evaluator.Environment
	Statements int
	Duration   time.Duration
}

// New creates a new engine
func New(opts Options) (*Engine, error) {
	if opts.MaxSourceLength < 0 {
		return nil, mdwerror.New("max source length must not be negative").
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("max_source_length", opts.MaxSourceLength)
	}
	if opts.MaxSourceLength == 0 {
		opts.MaxSourceLength = DefaultMaxSourceLength
	}
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}

	return &Engine{
		logger:  opts.Logger.WithComponent("calc-engine"),
		options: opts,
	}, nil
}

// Run evaluates req.Source. Evaluation errors are returned as *mdwerror.Error
// with code CodeSyntax or CodeUndefinedVariable; the *evaluator.Error stays
// reachable with errors.As.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, mdwerror.Wrap(err, "evaluation cancelled").
			WithCode(mdwerror.CodeTimeout).
			WithOperation("calc.Run")
	}
	if len(req.Source) > e.options.MaxSourceLength {
		return nil, mdwerror.New("source exceeds maximum length").
			WithCode(mdwerror.CodeInvalidLength).
			WithOperation("calc.Run").
			WithDetail("length", len(req.Source)).
			WithDetail("max_length", e.options.MaxSourceLength)
	}

	logger := e.logger
	if req.RunID != "" {
		logger = logger.WithRunID(req.RunID)
	}

	var opts []evaluator.Option
	if e.options.TraceTokens && logger.IsLevelEnabled(mdwlog.LevelTrace) {
		opts = append(opts, evaluator.WithTrace(func(tok scanner.Token) {
			logger.Trace("token", mdwlog.Fields{
				"kind":     tok.Kind.String(),
				"lexeme":   tok.Lexeme(),
				"position": tok.Pos.String(),
			})
		}))
	}

	timer := logger.StartTimer("evaluate").WithField("source_length", len(req.Source))
	ev := evaluator.New(req.Source, opts...)
	bindings, err := ev.Run()
	if err != nil {
		wrapped := wrapEvalError(err)
		timer.StopWithError(wrapped)
		return nil, wrapped
	}

	timer.WithField("statements", ev.Statements()).WithField("bindings", len(bindings))
	elapsed := timer.Stop()

	return &Result{
		RunID:      req.RunID,
		Bindings:   bindings,
		Statements: ev.Statements(),
		Duration:   elapsed,
	}, nil
}

// Evaluate is Run without a run ID
func (e *Engine) Evaluate(ctx context.Context, source string) (*Result, error) {
	return e.Run(ctx, Request{Source: source})
}

// Validate reports whether source evaluates without error
func (e *Engine) Validate(ctx context.Context, source string) error {
	_, err := e.Run(ctx, Request{Source: source})
	return err
}

// Tokenize returns the token stream of source, ending with EOF
func (e *Engine) Tokenize(source string) []scanner.Token {
	return scanner.Tokenize(source)
}

// MaxSourceLength returns the effective source length limit
func (e *Engine) MaxSourceLength() int {
	return e.options.MaxSourceLength
}

func wrapEvalError(err error) *mdwerror.Error {
	var evalErr *evaluator.Error
	if !errors.As(err, &evalErr) {
		return mdwerror.Wrap(err, "evaluation failed").
			WithCode(mdwerror.CodeInternal).
			WithOperation("calc.Run")
	}

	code := mdwerror.CodeSyntax
	if evalErr.Kind == evaluator.KindUninitializedVariable {
		code = mdwerror.CodeUndefinedVariable
	}

	wrapped := mdwerror.Wrap(evalErr, "evaluation failed").
		WithCode(code).
		WithOperation("calc.Run").
		WithDetail("kind", evalErr.Kind.String()).
		WithDetail("line", evalErr.Pos.Line).
		WithDetail("column", evalErr.Pos.Column)

	switch evalErr.Kind {
	case evaluator.KindUnexpectedToken:
		wrapped.WithDetail("expected", evalErr.Expected.String()).
			WithDetail("actual", evalErr.Actual.String())
	case evaluator.KindUninitializedVariable:
		wrapped.WithDetail("name", evalErr.Name)
	case evaluator.KindMalformedConstruct:
		wrapped.WithDetail("construct", evalErr.Construct).
			WithDetail("actual", evalErr.Actual.String())
	}
	return wrapped
}
