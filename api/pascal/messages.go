package pascal

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// EvaluateRequest asks the service to run a program
type EvaluateRequest struct {
	Source string `json:"source" yaml:"source"`
}

// EvaluateResponse is the outcome of a run
type EvaluateResponse struct {
	RunID      string           `json:"run_id" yaml:"run_id"`
	Success    bool             `json:"success" yaml:"success"`
	Bindings   map[string]int32 `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	Statements int              `json:"statements" yaml:"statements"`
	DurationUs int64            `json:"duration_us" yaml:"duration_us"`
	Error      *ErrorInfo       `json:"error,omitempty" yaml:"error,omitempty"`
}

// ErrorInfo describes a failed evaluation
type ErrorInfo struct {
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

// TokenizeRequest asks for the token stream of a program
type TokenizeRequest struct {
	Source string `json:"source" yaml:"source"`
}

// TokenInfo is one scanned token
type TokenInfo struct {
	Kind   string `json:"kind" yaml:"kind"`
	Lexeme string `json:"lexeme" yaml:"lexeme"`
	Value  int32  `json:"value,omitempty" yaml:"value,omitempty"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// TokenizeResponse holds the token stream, ending with EOF
type TokenizeResponse struct {
	Tokens []TokenInfo `json:"tokens" yaml:"tokens"`
}

// HistoryRequest selects recorded runs
type HistoryRequest struct {
	Limit      int  `json:"limit,omitempty" yaml:"limit,omitempty"`
	Offset     int  `json:"offset,omitempty" yaml:"offset,omitempty"`
	FailedOnly bool `json:"failed_only,omitempty" yaml:"failed_only,omitempty"`
}

// RunInfo is a recorded run
type RunInfo struct {
	ID           string           `json:"id" yaml:"id"`
	Timestamp    string           `json:"timestamp" yaml:"timestamp"`
	Source       string           `json:"source" yaml:"source"`
	Success      bool             `json:"success" yaml:"success"`
	Bindings     map[string]int32 `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	ErrorKind    string           `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	DurationUs   int64            `json:"duration_us" yaml:"duration_us"`
}

// HistoryResponse lists recorded runs, newest first
type HistoryResponse struct {
	Runs []RunInfo `json:"runs" yaml:"runs"`
}

// ToStruct converts a message to a protobuf Struct
func ToStruct(msg interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", msg, err)
	}

	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to convert %T to struct: %w", msg, err)
	}
	return s, nil
}

// FromStruct fills msg from a protobuf Struct. A nil Struct leaves msg
// unchanged. Numbers go through encoding/json so that integral values are
// never written in exponent form.
func FromStruct(s *structpb.Struct, msg interface{}) error {
	if s == nil {
		return nil
	}

	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("failed to encode struct: %w", err)
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to decode %T: %w", msg, err)
	}
	return nil
}
