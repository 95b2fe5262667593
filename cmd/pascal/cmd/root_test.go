package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with a config pointing into a temp dir
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(dir, "pascal.toml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := "[history]\nenabled = false\npath = \"" + filepath.Join(dir, "history.db") + "\"\n"
		if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath, "--no-color"}, args...))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		runHistory = false
		historyFailed = false
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "run", writeFile(t, dir, "a.pas", "x = 1 + 2 * 3;"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "x = 7\n" {
		t.Errorf("output = %q, want %q", out, "x = 7\n")
	}

	out, err = execute(t, dir, "run", writeFile(t, dir, "b.pas", "x = 1 + ;"))
	if !errors.Is(err, ErrEvaluationFailed) {
		t.Fatalf("err = %v, want ErrEvaluationFailed", err)
	}
	if !strings.Contains(out, "MalformedConstruct") {
		t.Errorf("output = %q", out)
	}
}

func TestRunWithHistory(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "prog.pas", "x = 1; y = x - 5;")

	if _, err := execute(t, dir, "run", "--history", prog); err != nil {
		t.Fatalf("run --history: %v", err)
	}

	out, err := execute(t, dir, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "OK") || !strings.Contains(out, "x=1 y=-4") {
		t.Errorf("history output:\n%s", out)
	}

	out, err = execute(t, dir, "history", "--failed")
	if err != nil {
		t.Fatalf("history --failed: %v", err)
	}
	if !strings.Contains(out, "Keine Läufe") {
		t.Errorf("history --failed output:\n%s", out)
	}
}

func TestTokensCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "tokens", writeFile(t, dir, "t.pas", "y = 0;"))
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	for _, want := range []string{"IDENTIFIER   y", "LITERAL      0", "EOF"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "pascal v") {
		t.Errorf("output = %q", out)
	}
}
