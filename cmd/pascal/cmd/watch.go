package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/pascal/internal/pascal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <datei>",
	Short: "Wertet ein Programm bei jeder Änderung neu aus",
	Long: `Überwacht eine Programmdatei und wertet sie nach jedem Speichern neu aus.

Beenden mit Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "Wartezeit nach der letzten Änderung")
}

func runWatch(cmd *cobra.Command, args []string) error {
	svc, err := newService(false)
	if err != nil {
		return err
	}
	defer svc.Close()

	w := cmd.OutOrStdout()
	fw, err := watcher.New(args[0], svc, printWatchResult(w), watcher.Options{Debounce: watchDebounce})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(w, "Überwache %s (Ctrl+C zum Beenden)\n", fw.Path())
	return fw.Run(ctx)
}

func printWatchResult(w io.Writer) func(watcher.Result) {
	return func(r watcher.Result) {
		fmt.Fprintf(w, "\n[%s] %s\n", time.Now().Format("15:04:05"), filepath.Base(r.Path))
		if r.Evaluation == nil {
			fmt.Fprintf(w, "Fehler: %v\n", r.Err)
			return
		}
		writeEvaluation(w, r.Evaluation.Response())
	}
}
