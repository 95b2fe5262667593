package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/pascal/foundation/calc"
	"github.com/msto63/pascal/foundation/calc/evaluator"
	"github.com/msto63/pascal/foundation/calc/scanner"
	mdwerror "github.com/msto63/pascal/foundation/core/error"
	"github.com/msto63/pascal/internal/pascal/store"
	"github.com/msto63/pascal/pkg/core/config"
	"github.com/msto63/pascal/pkg/core/logging"
)

// Evaluation is the outcome of one Evaluate call
type Evaluation struct {
	RunID      string                `json:"run_id" yaml:"run_id"`
	Source     string                `json:"-" yaml:"-"`
	Success    bool                  `json:"success" yaml:"success"`
	Bindings   evaluator.Environment `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	Statements int                   `json:"statements" yaml:"statements"`
	Duration   time.Duration         `json:"duration" yaml:"duration"`
	Error      *EvalError            `json:"error,omitempty" yaml:"error,omitempty"`
}

// EvalError describes a failed evaluation for clients
type EvalError struct {
	Kind      string `json:"kind" yaml:"kind"`
	Code      string `json:"code" yaml:"code"`
	Message   string `json:"message" yaml:"message"`
	Line      int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column    int    `json:"column,omitempty" yaml:"column,omitempty"`
	Expected  string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual    string `json:"actual,omitempty" yaml:"actual,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Construct string `json:"construct,omitempty" yaml:"construct,omitempty"`
}

// Config holds configuration for the service
type Config struct {
	MaxSourceLength int
	TraceTokens     bool

	HistoryEnabled bool
	HistoryPath    string
	Retention      time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MaxSourceLength: calc.DefaultMaxSourceLength,
		HistoryPath:     store.DefaultSQLiteConfig().Path,
		Retention:       30 * 24 * time.Hour,
	}
}

// ConfigFrom derives the service configuration from the application config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		MaxSourceLength: cfg.Engine.MaxSourceLength,
		TraceTokens:     cfg.Engine.TraceTokens,
		HistoryEnabled:  cfg.History.Enabled,
		HistoryPath:     cfg.History.Path,
		Retention:       cfg.History.Retention.Duration,
	}
}

// Service evaluates programs and keeps a history of runs
type Service struct {
	engine *calc.Engine
	store  store.RunStore
	logger *logging.Logger
	config Config
}

// NewService creates a service. With history enabled runs are kept in a
// SQLite database, otherwise in memory for the lifetime of the process.
func NewService(cfg Config) (*Service, error) {
	var runStore store.RunStore = store.NewMemoryRunStore()
	if cfg.HistoryEnabled {
		sqlite, err := store.NewSQLiteRunStore(store.SQLiteConfig{Path: cfg.HistoryPath})
		if err != nil {
			return nil, mdwerror.Wrap(err, "failed to open run history").
				WithCode(mdwerror.CodeServiceInitialization).
				WithOperation("service.NewService")
		}
		runStore = sqlite
	}
	return NewWithStore(cfg, runStore)
}

// NewWithStore creates a service on an existing store
func NewWithStore(cfg Config, runStore store.RunStore) (*Service, error) {
	logger := logging.New("pascal-service")

	engine, err := calc.New(calc.Options{
		Logger:          logger.Foundation(),
		MaxSourceLength: cfg.MaxSourceLength,
		TraceTokens:     cfg.TraceTokens,
	})
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to create engine").
			WithCode(mdwerror.CodeServiceInitialization).
			WithOperation("service.NewWithStore")
	}

	return &Service{
		engine: engine,
		store:  runStore,
		logger: logger,
		config: cfg,
	}, nil
}

// Evaluate runs source under a new run ID and records the run. The
// returned Evaluation is never nil; the error is the evaluation error.
// Store failures are logged and do not fail the evaluation.
func (s *Service) Evaluate(ctx context.Context, source string) (*Evaluation, error) {
	runID := uuid.New().String()
	started := time.Now()

	result, err := s.engine.Run(ctx, calc.Request{RunID: runID, Source: source})

	eval := &Evaluation{
		RunID:  runID,
		Source: source,
	}
	if err != nil {
		eval.Error = NewEvalError(err)
		eval.Duration = time.Since(started)
	} else {
		eval.Success = true
		eval.Bindings = result.Bindings
		eval.Statements = result.Statements
		eval.Duration = result.Duration
	}

	s.record(ctx, started, eval)
	return eval, err
}

func (s *Service) record(ctx context.Context, started time.Time, eval *Evaluation) {
	run := &store.Run{
		ID:        eval.RunID,
		Timestamp: started,
		Source:    eval.Source,
		Success:   eval.Success,
		Bindings:  eval.Bindings,
		Duration:  eval.Duration,
	}
	if eval.Error != nil {
		run.ErrorKind = eval.Error.Kind
		run.ErrorCode = eval.Error.Code
		run.ErrorMessage = eval.Error.Message
	}

	if err := s.store.Save(context.WithoutCancel(ctx), run); err != nil {
		s.logger.WithRunID(eval.RunID).Warn("Failed to record run", "error", err.Error())
	}
}

// Tokenize returns the token stream of source, ending with EOF
func (s *Service) Tokenize(source string) ([]scanner.Token, error) {
	if err := ValidateSource(source, s.engine.MaxSourceLength()); err != nil {
		return nil, err
	}
	return s.engine.Tokenize(source), nil
}

// History lists recorded runs, newest first
func (s *Service) History(ctx context.Context, filter store.RunFilter) ([]*store.Run, error) {
	return s.store.List(ctx, filter)
}

// Run returns a single recorded run
func (s *Service) Run(ctx context.Context, id string) (*store.Run, error) {
	if err := ValidateRunID(id); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// Stats summarizes the recorded runs
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	return s.store.Stats(ctx)
}

// Prune removes runs older than the retention period. A zero duration
// uses the configured retention.
func (s *Service) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		olderThan = s.config.Retention
	}
	if olderThan <= 0 {
		return 0, nil
	}

	deleted, err := s.store.Prune(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("Pruned run history", "deleted", deleted, "older_than", olderThan.String())
	}
	return deleted, nil
}

// Ping checks the run store
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Engine returns the underlying engine
func (s *Service) Engine() *calc.Engine {
	return s.engine
}

// Close closes the run store
func (s *Service) Close() error {
	return s.store.Close()
}

// NewEvalError converts an engine error into its client representation
func NewEvalError(err error) *EvalError {
	if err == nil {
		return nil
	}

	out := &EvalError{
		Code:    mdwerror.GetCode(err).String(),
		Message: err.Error(),
	}

	var evalErr *evaluator.Error
	if errors.As(err, &evalErr) {
		out.Kind = evalErr.Kind.String()
		out.Message = evalErr.Error()
		out.Line = evalErr.Pos.Line
		out.Column = evalErr.Pos.Column
		switch evalErr.Kind {
		case evaluator.KindUnexpectedToken:
			out.Expected = evalErr.Expected.String()
			out.Actual = evalErr.Actual.String()
		case evaluator.KindUninitializedVariable:
			out.Name = evalErr.Name
		case evaluator.KindMalformedConstruct:
			out.Construct = evalErr.Construct
			out.Actual = evalErr.Actual.String()
		}
		return out
	}

	var mdwErr *mdwerror.Error
	if errors.As(err, &mdwErr) {
		out.Kind = mdwErr.Code().Category()
		out.Message = mdwErr.Message()
	}
	return out
}

// IsEvaluationFailure reports whether err describes a program that failed
// to evaluate, as opposed to a rejected request or a service failure
func IsEvaluationFailure(err error) bool {
	return mdwerror.HasCode(err, mdwerror.CodeSyntax) ||
		mdwerror.HasCode(err, mdwerror.CodeUndefinedVariable)
}
