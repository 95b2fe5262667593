package cmd

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/msto63/pascal/foundation/calc"
	"github.com/msto63/pascal/internal/tui/repl"
	"github.com/msto63/pascal/pkg/core/logging"
	"github.com/msto63/pascal/pkg/core/version"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Startet die interaktive Sitzung",
	Long: `Startet eine interaktive Sitzung im Terminal.

Jede eingegebene Zeile wird zusammen mit allen bisherigen Zeilen
ausgewertet. Neue und geänderte Variablen werden angezeigt. Schlägt die
Auswertung fehl, wird die Zeile verworfen.

Tastenkürzel:
  Enter    Zeile auswerten
  Ctrl+R   Sitzung zurücksetzen
  Ctrl+L   Ausgabe leeren
  Esc      Beenden`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	if !stdoutIsTerminal() {
		return errors.New("repl requires a terminal")
	}

	engine, err := calc.New(calc.Options{
		Logger:          logging.New("repl").Foundation(),
		MaxSourceLength: appConfig.Engine.MaxSourceLength,
	})
	if err != nil {
		return err
	}

	return repl.Run(engine, version.CLI)
}

// stdoutIsTerminal reports whether stdout is a character device
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
