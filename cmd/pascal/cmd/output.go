package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	pb "github.com/msto63/pascal/api/pascal"
	mdwerror "github.com/msto63/pascal/foundation/core/error"
)

// Output formats
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// colorOutput enables lipgloss styling of text output
var colorOutput bool

var (
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

func styled(style lipgloss.Style, s string) string {
	if !colorOutput {
		return s
	}
	return style.Render(s)
}

// input is one program to evaluate
type input struct {
	Name   string
	Source string
}

// fileResult pairs an input with its evaluation for structured output
type fileResult struct {
	File   string               `json:"file" yaml:"file"`
	Result *pb.EvaluateResponse `json:"result" yaml:"result"`
}

func checkOutputFormat(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return mdwerror.Newf("unknown output format %q (text, json, yaml)", format).
			WithCode(mdwerror.CodeInvalidInput)
	}
}

// readInputs reads the named files, or stdin when names is empty
func readInputs(stdin io.Reader, names []string) ([]input, error) {
	if len(names) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return []input{{Name: "<stdin>", Source: string(data)}}, nil
	}

	inputs := make([]input, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, mdwerror.Wrap(err, "failed to read program").
				WithCode(mdwerror.CodeNotFound).
				WithDetail("path", name)
		}
		inputs = append(inputs, input{Name: name, Source: string(data)})
	}
	return inputs, nil
}

// writeStructured writes v as indented JSON or as YAML
func writeStructured(w io.Writer, format string, v interface{}) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return checkOutputFormat(format)
	}
}

// writeEvaluation prints bindings sorted by name, or the error
func writeEvaluation(w io.Writer, resp *pb.EvaluateResponse) {
	if !resp.Success {
		fmt.Fprintln(w, styled(errorStyle, "Fehler: "+formatErrorInfo(resp.Error)))
		return
	}

	names := make([]string, 0, len(resp.Bindings))
	for name := range resp.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "%s = %d\n", styled(nameStyle, name), resp.Bindings[name])
	}
}

func formatErrorInfo(info *pb.ErrorInfo) string {
	if info == nil {
		return "unbekannter Fehler"
	}
	if info.Line > 0 {
		return fmt.Sprintf("%s (Zeile %d, Spalte %d): %s", info.Kind, info.Line, info.Column, info.Message)
	}
	return fmt.Sprintf("%s: %s", info.Kind, info.Message)
}

// writeTokens prints one token per line with its position
func writeTokens(w io.Writer, tokens []pb.TokenInfo) {
	for _, tok := range tokens {
		pos := fmt.Sprintf("%d:%d", tok.Line, tok.Column)
		line := fmt.Sprintf("%-8s %-12s %s", pos, tok.Kind, tok.Lexeme)
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// writeRuns prints a table of recorded runs
func writeRuns(w io.Writer, runs []pb.RunInfo) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "Keine Läufe gespeichert.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-19s  %-6s  %s\n", "ID", "ZEIT", "STATUS", "ERGEBNIS")
	for _, run := range runs {
		fmt.Fprintf(w, "%-36s  %-19s  %-6s  %s\n", run.ID, formatTimestamp(run.Timestamp), status(run.Success), summary(run))
	}
}

// writeRun prints a single recorded run in detail
func writeRun(w io.Writer, run pb.RunInfo) {
	fmt.Fprintf(w, "ID:     %s\n", run.ID)
	fmt.Fprintf(w, "Zeit:   %s\n", formatTimestamp(run.Timestamp))
	fmt.Fprintf(w, "Status: %s\n", status(run.Success))
	fmt.Fprintf(w, "Dauer:  %s\n", (time.Duration(run.DurationUs) * time.Microsecond).String())
	fmt.Fprintln(w, "Programm:")
	for _, line := range strings.Split(strings.TrimRight(run.Source, "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintln(w, "Ergebnis:")
	if !run.Success {
		fmt.Fprintf(w, "  %s: %s\n", run.ErrorKind, run.ErrorMessage)
		return
	}
	writeEvaluation(indent{w}, &pb.EvaluateResponse{Success: true, Bindings: run.Bindings})
}

func status(success bool) string {
	if success {
		return "OK"
	}
	return "FEHLER"
}

func summary(run pb.RunInfo) string {
	if !run.Success {
		return run.ErrorKind
	}
	names := make([]string, 0, len(run.Bindings))
	for name := range run.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, run.Bindings[name])
	}
	out := strings.Join(parts, " ")
	if len(out) > 60 {
		out = out[:57] + "..."
	}
	return out
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// indent prefixes every write with two spaces. Writes are whole lines.
type indent struct {
	w io.Writer
}

func (i indent) Write(p []byte) (int, error) {
	if _, err := io.WriteString(i.w, "  "); err != nil {
		return 0, err
	}
	return i.w.Write(p)
}
