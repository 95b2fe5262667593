package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/msto63/pascal/pkg/core/config"
)

func TestNew(t *testing.T) {
	logger := New("test-service")

	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.Name() != "test-service" {
		t.Errorf("Name() = %v, want test-service", logger.Name())
	}
}

func TestNewLogger_WritesConfiguredFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{
		Logger: NewLogger(LoggerConfig{
			ServiceName: "pascal-test",
			Level:       "debug",
			Format:      "json",
			Output:      &buf,
		}),
		name: "pascal-test",
	}

	logger.Debug("evaluated", "bindings", 3, "source", "x = 1;")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["logger"] != "pascal-test" || entry["bindings"] != float64(3) || entry["source"] != "x = 1;" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewLogger_InvalidSettingsFallBack(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: "loud", Format: "xml", Output: &buf})

	logger.Debug("hidden")
	logger.Info("shown")

	out := strings.TrimSpace(buf.String())
	if strings.Count(out, "\n") != 0 || !strings.HasPrefix(out, "{") {
		t.Errorf("expected one JSON line at info level, got %q", out)
	}
}

func TestLogger_WithAndRunID(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{Logger: NewLogger(LoggerConfig{Level: "info", Format: "logfmt", Output: &buf}), name: "svc"}

	base.With("transport", "grpc").WithRunID("abc").Info("request")

	out := buf.String()
	for _, want := range []string{`transport="grpc"`, "run_id=abc", `message="request"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLogger_AdditionalOutputs(t *testing.T) {
	var primary, secondary bytes.Buffer
	logger := NewLogger(LoggerConfig{Format: "text", Output: &primary, AdditionalOutputs: []io.Writer{&secondary}})
	logger.Info("both")

	if primary.Len() == 0 || secondary.Len() == 0 {
		t.Errorf("primary=%q secondary=%q, want both written", primary.String(), secondary.String())
	}
}

func TestToFields(t *testing.T) {
	if fields := toFields(); fields != nil {
		t.Error("toFields() with no args should return nil")
	}

	fields := toFields("key1", "value1", "key2", 42, "orphan")
	if fields["key1"] != "value1" || fields["key2"] != 42 {
		t.Errorf("toFields() = %v", fields)
	}
	if _, ok := fields["orphan"]; ok {
		t.Error("trailing key without value should be dropped")
	}

	if fields := toFields(123, "value"); len(fields) != 0 {
		t.Errorf("non-string key should be skipped, got %v", fields)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.General.LogLevel = "debug"
	cfg.General.LogFormat = "logfmt"

	lc := FromConfig(cfg, "pascal-server")
	if lc.ServiceName != "pascal-server" || lc.Level != "debug" || lc.Format != "logfmt" {
		t.Errorf("FromConfig() = %+v", lc)
	}
}

func TestSetDefaults(t *testing.T) {
	previous := Defaults()
	t.Cleanup(func() { SetDefaults(previous) })

	var buf bytes.Buffer
	SetDefaults(LoggerConfig{Level: "warn", Format: "text", Output: &buf})

	logger := New("cli")
	logger.Info("hidden")
	logger.Warn("shown")

	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("defaults not applied, output %q", out)
	}
}
