package service

import (
	"context"
	"testing"
	"time"

	pb "github.com/msto63/pascal/api/pascal"
	mdwerror "github.com/msto63/pascal/foundation/core/error"
	"github.com/msto63/pascal/foundation/calc/scanner"
	"github.com/msto63/pascal/internal/pascal/store"
)

func TestEvaluation_Response(t *testing.T) {
	svc := newTestService(t)

	ok, _ := svc.Evaluate(context.Background(), "x=1; y=x-5;")
	resp := ok.Response()
	if !resp.Success || resp.Bindings["y"] != -4 || resp.Statements != 2 || resp.Error != nil {
		t.Errorf("Response() = %+v", resp)
	}

	failed, _ := svc.Evaluate(context.Background(), "x=1+;")
	resp = failed.Response()
	if resp.Success || resp.Bindings != nil || resp.Error == nil {
		t.Fatalf("Response() = %+v", resp)
	}
	if resp.Error.Kind != "MalformedConstruct" || resp.Error.Construct != "term" {
		t.Errorf("Error = %+v", resp.Error)
	}
}

func TestTokenInfos(t *testing.T) {
	infos := TokenInfos(scanner.Tokenize("x = 10;"))

	want := []pb.TokenInfo{
		{Kind: "IDENTIFIER", Lexeme: "x", Line: 1, Column: 1},
		{Kind: "ASSIGN", Lexeme: "=", Line: 1, Column: 3},
		{Kind: "LITERAL", Lexeme: "10", Value: 10, Line: 1, Column: 5},
		{Kind: "SEMICOLON", Lexeme: ";", Line: 1, Column: 7},
		{Kind: "EOF", Lexeme: "", Line: 1, Column: 8},
	}
	if len(infos) != len(want) {
		t.Fatalf("TokenInfos() = %+v", infos)
	}
	for i := range want {
		if infos[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, infos[i], want[i])
		}
	}
}

func TestRunInfoAndFilter(t *testing.T) {
	ts := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	info := RunInfo(&store.Run{ID: "r", Timestamp: ts, Source: "x=y;", ErrorKind: "UninitializedVariable", Duration: 1500 * time.Nanosecond})

	if info.Timestamp != "2026-10-19T12:00:00Z" || info.DurationUs != 1 || info.Success {
		t.Errorf("RunInfo() = %+v", info)
	}

	filter := HistoryFilter(pb.HistoryRequest{Limit: 5, FailedOnly: true})
	if filter.Limit != 5 || filter.Outcome != store.OutcomeFailed {
		t.Errorf("HistoryFilter() = %+v", filter)
	}
}

func TestValidateHistoryRequest(t *testing.T) {
	tests := []struct {
		name  string
		req   pb.HistoryRequest
		valid bool
	}{
		{"zero", pb.HistoryRequest{}, true},
		{"max limit", pb.HistoryRequest{Limit: MaxHistoryLimit, Offset: 10}, true},
		{"limit too large", pb.HistoryRequest{Limit: MaxHistoryLimit + 1}, false},
		{"negative limit", pb.HistoryRequest{Limit: -1}, false},
		{"negative offset", pb.HistoryRequest{Offset: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHistoryRequest(tt.req)
			if (err == nil) != tt.valid {
				t.Fatalf("err = %v, valid %v", err, tt.valid)
			}
			if err != nil && !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
				t.Errorf("code = %s", mdwerror.GetCode(err))
			}
		})
	}
}

func TestValidateSource(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   mdwerror.Code
	}{
		{"empty", "", ""},
		{"fits", "x = 1;", ""},
		{"too long", "x = 1 + 2 + 3;", mdwerror.CodeInvalidLength},
		{"invalid utf8", "x = \xff;", mdwerror.CodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSource(tt.source, 10)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("ValidateSource() error = %v", err)
				}
				return
			}
			if !mdwerror.HasCode(err, tt.want) {
				t.Errorf("ValidateSource() error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestValidateRunID(t *testing.T) {
	if err := ValidateRunID("2f1c"); err != nil {
		t.Errorf("ValidateRunID() error = %v", err)
	}
	if err := ValidateRunID(" "); !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("ValidateRunID(blank) error = %v", err)
	}
}
