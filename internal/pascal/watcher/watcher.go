// Package watcher re-evaluates a program file whenever it is saved.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	mdwerror "github.com/msto63/pascal/foundation/core/error"
	"github.com/msto63/pascal/internal/pascal/service"
	"github.com/msto63/pascal/pkg/core/logging"
)

// DefaultDebounce is the quiet period after the last event before the
// file is evaluated again
const DefaultDebounce = 200 * time.Millisecond

// Evaluator evaluates program source
type Evaluator interface {
	Evaluate(ctx context.Context, source string) (*service.Evaluation, error)
}

// Result is delivered to the callback after each evaluation
type Result struct {
	Path       string
	Evaluation *service.Evaluation
	// Err is set when the file could not be read or evaluated. For an
	// evaluation failure Evaluation is set as well.
	Err error
}

// Options configures a Watcher
type Options struct {
	Debounce time.Duration
	// SkipInitial suppresses the evaluation at start
	SkipInitial bool
}

// Watcher watches one program file
type Watcher struct {
	path     string
	eval     Evaluator
	onResult func(Result)
	opts     Options
	logger   *logging.Logger

	mu      sync.Mutex
	running bool
}

// New creates a watcher for path. onResult is called from the watcher
// goroutine, one result at a time.
func New(path string, eval Evaluator, onResult func(Result), opts Options) (*Watcher, error) {
	if eval == nil || onResult == nil {
		return nil, mdwerror.New("evaluator and callback are required").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("watcher.New")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to resolve path").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("path", path)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{
		path:     abs,
		eval:     eval,
		onResult: onResult,
		opts:     opts,
		logger:   logging.New("watcher"),
	}, nil
}

// Path returns the absolute path of the watched file
func (w *Watcher) Path() string {
	return w.path
}

// Run evaluates the file once, then again after every debounced write or
// create event, until ctx is cancelled. The watch is placed on the
// containing directory; events for other files are ignored.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return mdwerror.New("watcher already running").
			WithCode(mdwerror.CodeInternal).
			WithDetail("path", w.path)
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return mdwerror.Wrap(err, "failed to create watcher").
			WithCode(mdwerror.CodeInternal)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return mdwerror.Wrap(err, "failed to watch directory").
			WithCode(mdwerror.CodeNotFound).
			WithDetail("dir", dir)
	}

	w.logger.Info("Started watching", "file", w.path)

	if !w.opts.SkipInitial {
		w.evaluate(ctx)
	}

	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher (context cancelled)", "file", w.path)
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create || event.Op&fsnotify.Write == fsnotify.Write {
				w.logger.Debug("File changed", "file", w.path, "op", event.Op.String())
				timer.Reset(w.opts.Debounce)
			}

		case <-timer.C:
			w.evaluate(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) evaluate(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn("Failed to read program", "file", w.path, "error", err)
		w.onResult(Result{
			Path: w.path,
			Err: mdwerror.Wrap(err, "failed to read program").
				WithCode(mdwerror.CodeNotFound).
				WithDetail("path", w.path),
		})
		return
	}

	eval, err := w.eval.Evaluate(ctx, string(data))
	w.onResult(Result{Path: w.path, Evaluation: eval, Err: err})
}
