package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	pb "github.com/msto63/pascal/api/pascal"
	"github.com/msto63/pascal/internal/pascal/service"
	"github.com/msto63/pascal/internal/pascal/store"
)

func testEvaluate(t *testing.T) evaluateFunc {
	t.Helper()
	svc, err := service.NewWithStore(service.DefaultConfig(), store.NewMemoryRunStore())
	if err != nil {
		t.Fatalf("NewWithStore: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return localEvaluate(svc)
}

func TestEvaluateInputs_Text(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    string
		wantErr bool
	}{
		{"precedence", "x = 1 + 2 * 3;", "x = 7\n", false},
		{"sorted bindings", "y = 2; x = 1;", "x = 1\ny = 2\n", false},
		{"negation", "x = -5; y = -x;", "x = -5\ny = 5\n", false},
		{"undefined", "x = y;", "Fehler: UninitializedVariable", true},
		{"malformed", "x = 1 +;", "Fehler: MalformedConstruct", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := evaluateInputs(context.Background(), &buf,
				[]input{{Name: "test.pas", Source: tt.source}}, testEvaluate(t), outputText, false)

			if tt.wantErr != errors.Is(err, ErrEvaluationFailed) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !strings.HasPrefix(buf.String(), tt.want) {
					t.Errorf("output = %q, want prefix %q", buf.String(), tt.want)
				}
				return
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestEvaluateInputs_EchoAndMultipleFiles(t *testing.T) {
	var buf bytes.Buffer
	inputs := []input{
		{Name: "a.pas", Source: "x = 1;"},
		{Name: "b.pas", Source: "x = y;"},
	}

	err := evaluateInputs(context.Background(), &buf, inputs, testEvaluate(t), outputText, true)
	if !errors.Is(err, ErrEvaluationFailed) {
		t.Fatalf("err = %v, want ErrEvaluationFailed", err)
	}

	out := buf.String()
	for _, want := range []string{"== a.pas ==", "With text:\nx = 1;\n", "x = 1\n", "== b.pas ==", "Fehler: UninitializedVariable"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEvaluateInputs_Structured(t *testing.T) {
	t.Run("json single", func(t *testing.T) {
		var buf bytes.Buffer
		err := evaluateInputs(context.Background(), &buf,
			[]input{{Name: "a.pas", Source: "x = (1 + 2) * 3;"}}, testEvaluate(t), outputJSON, false)
		if err != nil {
			t.Fatalf("evaluateInputs: %v", err)
		}

		var resp pb.EvaluateResponse
		if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v\n%s", err, buf.String())
		}
		if !resp.Success || resp.Bindings["x"] != 9 || resp.RunID == "" {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("yaml multiple", func(t *testing.T) {
		var buf bytes.Buffer
		inputs := []input{
			{Name: "a.pas", Source: "x = 1;"},
			{Name: "b.pas", Source: "x = ;"},
		}
		err := evaluateInputs(context.Background(), &buf, inputs, testEvaluate(t), outputYAML, false)
		if !errors.Is(err, ErrEvaluationFailed) {
			t.Fatalf("err = %v", err)
		}

		var results []fileResult
		if err := yaml.Unmarshal(buf.Bytes(), &results); err != nil {
			t.Fatalf("invalid yaml: %v\n%s", err, buf.String())
		}
		if len(results) != 2 {
			t.Fatalf("results = %d, want 2", len(results))
		}
		if results[0].File != "a.pas" || !results[0].Result.Success {
			t.Errorf("first = %+v", results[0])
		}
		if results[1].Result.Success || results[1].Result.Error == nil {
			t.Errorf("second = %+v", results[1].Result)
		}
	})
}

func TestEvaluateInputs_SourceTooLong(t *testing.T) {
	cfg := service.DefaultConfig()
	cfg.MaxSourceLength = 8
	svc, err := service.NewWithStore(cfg, store.NewMemoryRunStore())
	if err != nil {
		t.Fatalf("NewWithStore: %v", err)
	}
	defer svc.Close()

	var buf bytes.Buffer
	err = evaluateInputs(context.Background(), &buf,
		[]input{{Name: "long.pas", Source: "x = 1 + 2 + 3;"}}, localEvaluate(svc), outputText, false)
	if err == nil || errors.Is(err, ErrEvaluationFailed) {
		t.Fatalf("err = %v, want a request error", err)
	}
	if !strings.Contains(err.Error(), "long.pas") {
		t.Errorf("error does not name the file: %v", err)
	}
}

func TestReadInputs(t *testing.T) {
	inputs, err := readInputs(strings.NewReader("x = 1;"), nil)
	if err != nil || len(inputs) != 1 || inputs[0].Name != "<stdin>" || inputs[0].Source != "x = 1;" {
		t.Fatalf("stdin: %+v, %v", inputs, err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "prog.pas")
	if err := os.WriteFile(path, []byte("y = 2;"), 0o644); err != nil {
		t.Fatal(err)
	}
	inputs, err = readInputs(nil, []string{path})
	if err != nil || inputs[0].Source != "y = 2;" {
		t.Fatalf("file: %+v, %v", inputs, err)
	}

	if _, err := readInputs(nil, []string{filepath.Join(dir, "missing.pas")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCheckOutputFormat(t *testing.T) {
	for _, f := range []string{outputText, outputJSON, outputYAML} {
		if err := checkOutputFormat(f); err != nil {
			t.Errorf("%s: %v", f, err)
		}
	}
	if err := checkOutputFormat("xml"); err == nil {
		t.Error("xml should be rejected")
	}
}

func TestWriteTokens(t *testing.T) {
	svc, err := service.NewWithStore(service.DefaultConfig(), store.NewMemoryRunStore())
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	tokens, err := svc.Tokenize("x = 007;")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	writeTokens(&buf, service.TokenInfos(tokens))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"1:1      IDENTIFIER   x",
		"1:3      ASSIGN       =",
		"1:5      ILLEGAL      007",
		"1:8      SEMICOLON    ;",
		"1:9      EOF",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if illegalTokens(tokens) != 1 {
		t.Errorf("illegalTokens = %d, want 1", illegalTokens(tokens))
	}
}

func TestWriteRuns(t *testing.T) {
	var buf bytes.Buffer
	writeRuns(&buf, nil)
	if !strings.Contains(buf.String(), "Keine Läufe") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	writeRuns(&buf, []pb.RunInfo{
		{ID: "r1", Timestamp: "2026-10-19T10:00:00Z", Success: true, Bindings: map[string]int32{"y": 2, "x": 1}},
		{ID: "r2", Timestamp: "2026-10-19T10:01:00Z", ErrorKind: "UninitializedVariable"},
	})
	out := buf.String()
	for _, want := range []string{"r1", "OK", "x=1 y=2", "r2", "FEHLER", "UninitializedVariable"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteRun(t *testing.T) {
	var buf bytes.Buffer
	writeRun(&buf, pb.RunInfo{
		ID:         "r1",
		Timestamp:  "2026-10-19T10:00:00Z",
		Source:     "x = 1;\ny = x;\n",
		Success:    true,
		Bindings:   map[string]int32{"x": 1, "y": 1},
		DurationUs: 1500,
	})

	out := buf.String()
	for _, want := range []string{"ID:     r1", "Status: OK", "Dauer:  1.5ms", "  x = 1;\n  y = x;\n", "Ergebnis:\n  x = 1\n  y = 1\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatErrorInfo(t *testing.T) {
	tests := []struct {
		info *pb.ErrorInfo
		want string
	}{
		{nil, "unbekannter Fehler"},
		{&pb.ErrorInfo{Kind: "MalformedConstruct", Message: "malformed term", Line: 1, Column: 7}, "MalformedConstruct (Zeile 1, Spalte 7): malformed term"},
		{&pb.ErrorInfo{Kind: "validation", Message: "source too long"}, "validation: source too long"},
	}

	for _, tt := range tests {
		if got := formatErrorInfo(tt.info); got != tt.want {
			t.Errorf("formatErrorInfo(%+v) = %q, want %q", tt.info, got, tt.want)
		}
	}
}
