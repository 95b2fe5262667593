package repl

import (
	"context"
	"strings"

	"github.com/msto63/pascal/foundation/calc"
	"github.com/msto63/pascal/foundation/calc/evaluator"
	"github.com/msto63/pascal/internal/pascal/service"
)

// Evaluator evaluates a complete program
type Evaluator interface {
	Evaluate(ctx context.Context, source string) (*calc.Result, error)
}

// Binding is a variable whose value was introduced or changed by a line
type Binding struct {
	Name  string
	Value int32
}

// Outcome is the result of submitting one line
type Outcome struct {
	Line    string
	Changed []Binding
	Error   *service.EvalError
}

// Session accumulates the lines that evaluated successfully. Every new
// line is evaluated together with all previous lines, so the program as
// a whole always succeeds.
type Session struct {
	eval  Evaluator
	lines []string
	env   evaluator.Environment
}

// NewSession creates an empty session
func NewSession(eval Evaluator) *Session {
	return &Session{eval: eval, env: evaluator.Environment{}}
}

// Submit evaluates the session program extended by line. The line is kept
// only when the whole program succeeds.
func (s *Session) Submit(ctx context.Context, line string) Outcome {
	out := Outcome{Line: line}

	result, err := s.eval.Evaluate(ctx, s.programWith(line))
	if err != nil {
		out.Error = service.NewEvalError(err)
		return out
	}

	for _, name := range result.Bindings.Diff(s.env) {
		out.Changed = append(out.Changed, Binding{Name: name, Value: result.Bindings[name]})
	}
	s.lines = append(s.lines, line)
	s.env = result.Bindings.Clone()
	return out
}

// Reset discards all lines and bindings
func (s *Session) Reset() {
	s.lines = nil
	s.env = evaluator.Environment{}
}

// Program returns the accepted lines as one program
func (s *Session) Program() string {
	return strings.Join(s.lines, "\n")
}

// Lines returns the number of accepted lines
func (s *Session) Lines() int {
	return len(s.lines)
}

// Bindings returns a copy of the current variable table
func (s *Session) Bindings() evaluator.Environment {
	return s.env.Clone()
}

func (s *Session) programWith(line string) string {
	if len(s.lines) == 0 {
		return line
	}
	return s.Program() + "\n" + line
}
