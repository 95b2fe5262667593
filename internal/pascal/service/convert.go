package service

import (
	"time"

	pb "github.com/msto63/pascal/api/pascal"
	"github.com/msto63/pascal/foundation/calc/scanner"
	"github.com/msto63/pascal/foundation/core/validation"
	"github.com/msto63/pascal/internal/pascal/store"
)

// Response converts an evaluation to its wire representation
func (e *Evaluation) Response() *pb.EvaluateResponse {
	resp := &pb.EvaluateResponse{
		RunID:      e.RunID,
		Success:    e.Success,
		Statements: e.Statements,
		DurationUs: e.Duration.Microseconds(),
	}
	if e.Bindings != nil {
		resp.Bindings = map[string]int32(e.Bindings)
	}
	if e.Error != nil {
		info := pb.ErrorInfo(*e.Error)
		resp.Error = &info
	}
	return resp
}

// TokenInfos converts scanned tokens to their wire representation
func TokenInfos(tokens []scanner.Token) []pb.TokenInfo {
	out := make([]pb.TokenInfo, len(tokens))
	for i, tok := range tokens {
		out[i] = pb.TokenInfo{
			Kind:   tok.Kind.String(),
			Lexeme: tok.Lexeme(),
			Line:   tok.Pos.Line,
			Column: tok.Pos.Column,
		}
		if tok.Kind == scanner.TokenLiteral {
			out[i].Value = tok.Value
		}
	}
	return out
}

// RunInfo converts a recorded run to its wire representation
func RunInfo(run *store.Run) pb.RunInfo {
	return pb.RunInfo{
		ID:           run.ID,
		Timestamp:    run.Timestamp.UTC().Format(time.RFC3339Nano),
		Source:       run.Source,
		Success:      run.Success,
		Bindings:     run.Bindings,
		ErrorKind:    run.ErrorKind,
		ErrorMessage: run.ErrorMessage,
		DurationUs:   run.Duration.Microseconds(),
	}
}

// HistoryFilter converts a history request into a store filter
func HistoryFilter(req pb.HistoryRequest) store.RunFilter {
	filter := store.RunFilter{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.FailedOnly {
		filter.Outcome = store.OutcomeFailed
	}
	return filter
}

// MaxHistoryLimit caps the number of runs returned by one history request
const MaxHistoryLimit = 1000

// ValidateHistoryRequest checks the paging parameters of a history request
func ValidateHistoryRequest(req pb.HistoryRequest) error {
	return validation.Combine(
		validation.Field("limit", req.Limit, validation.IntRange(0, MaxHistoryLimit)),
		validation.Field("offset", req.Offset, validation.NonNegative()),
	).ToError()
}

// ValidateSource rejects sources longer than maxLength bytes or not valid UTF-8
func ValidateSource(source string, maxLength int) error {
	rules := validation.NewValidatorChain("source").
		Add(validation.MaxBytes(maxLength)).
		Add(validation.UTF8()).
		StopOnFirstError(true)
	return validation.Field("source", source, rules).ToError()
}

// ValidateRunID rejects an empty run ID
func ValidateRunID(id string) error {
	return validation.Field("id", id, validation.Required()).ToError()
}
