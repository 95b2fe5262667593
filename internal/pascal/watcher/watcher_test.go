package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/msto63/pascal/foundation/calc/evaluator"
	"github.com/msto63/pascal/internal/pascal/service"
	"github.com/msto63/pascal/internal/pascal/store"
)

func newService(t *testing.T) *service.Service {
	t.Helper()
	svc, err := service.NewWithStore(service.DefaultConfig(), store.NewMemoryRunStore())
	if err != nil {
		t.Fatalf("NewWithStore: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func writeProgram(t *testing.T, path, source string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func next(t *testing.T, results <-chan Result) Result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
		return Result{}
	}
}

func startWatcher(t *testing.T, path string, opts Options) <-chan Result {
	t.Helper()
	results := make(chan Result, 16)
	w, err := New(path, newService(t), func(r Result) { results <- r }, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return results
}

func TestWatcher_EvaluatesOnStartAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.pas")
	writeProgram(t, path, "x = 1;")

	results := startWatcher(t, path, Options{Debounce: 20 * time.Millisecond})

	first := next(t, results)
	if first.Err != nil || !first.Evaluation.Success {
		t.Fatalf("initial result: %+v", first)
	}
	if first.Evaluation.Bindings["x"] != 1 {
		t.Errorf("x = %d, want 1", first.Evaluation.Bindings["x"])
	}

	writeProgram(t, path, "x = 1 + 2 * 3;")

	second := next(t, results)
	if second.Err != nil {
		t.Fatalf("after save: %v", second.Err)
	}
	if second.Evaluation.Bindings["x"] != 7 {
		t.Errorf("x = %d, want 7", second.Evaluation.Bindings["x"])
	}
}

func TestWatcher_ReportsEvaluationFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.pas")
	writeProgram(t, path, "x = y;")

	results := startWatcher(t, path, Options{Debounce: 20 * time.Millisecond})

	r := next(t, results)
	if r.Err == nil {
		t.Fatal("expected evaluation error")
	}
	if r.Evaluation == nil || r.Evaluation.Success {
		t.Fatalf("evaluation = %+v", r.Evaluation)
	}
	if r.Evaluation.Error.Kind != evaluator.KindUninitializedVariable.String() {
		t.Errorf("kind = %s", r.Evaluation.Error.Kind)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.pas")
	writeProgram(t, path, "x = 1;")

	results := startWatcher(t, path, Options{Debounce: 20 * time.Millisecond, SkipInitial: true})

	writeProgram(t, filepath.Join(dir, "other.pas"), "y = 2;")

	select {
	case r := <-results:
		t.Fatalf("unexpected result for unrelated file: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}

	writeProgram(t, path, "x = 3;")
	if r := next(t, results); r.Evaluation.Bindings["x"] != 3 {
		t.Errorf("x = %d, want 3", r.Evaluation.Bindings["x"])
	}
}

func TestWatcher_MissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.pas")

	results := startWatcher(t, path, Options{Debounce: 20 * time.Millisecond})

	r := next(t, results)
	if r.Err == nil || r.Evaluation != nil {
		t.Fatalf("missing file result = %+v", r)
	}

	writeProgram(t, path, "z = 0;")
	if r := next(t, results); r.Err != nil || r.Evaluation.Bindings["z"] != 0 {
		t.Errorf("after create: %+v", r)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("prog.pas", nil, func(Result) {}, Options{}); err == nil {
		t.Error("expected error without evaluator")
	}

	w, err := New("prog.pas", newService(t), func(Result) {}, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("Path() = %q, want absolute", w.Path())
	}
	if w.opts.Debounce != DefaultDebounce {
		t.Errorf("Debounce = %v, want %v", w.opts.Debounce, DefaultDebounce)
	}
}
