package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/msto63/pascal/internal/pascal/service"
	"github.com/msto63/pascal/pkg/core/config"
	"github.com/msto63/pascal/pkg/core/logging"
)

// ErrEvaluationFailed is returned when a program failed to evaluate. The
// failure itself has already been printed.
var ErrEvaluationFailed = errors.New("evaluation failed")

var (
	cfgFile  string
	verbose  bool
	logLevel string
	noColor  bool

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pascal",
	Short: "pascal - Ganzzahl-Interpreter",
	Long: `pascal wertet kleine Programme aus Zuweisungen an Ganzzahl-Variablen aus.

Beispiel:
  x = 1 + 2 * 3;
  y = (x - 5) * -2;

Werte sind vorzeichenbehaftete 32-Bit-Ganzzahlen. Jede Variable muss vor
ihrer Verwendung zugewiesen werden.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: ./configs/pascal.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log-Level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Farbige Ausgabe abschalten")
}

// setup loads the configuration and installs the default logger. Only the
// server logs at the configured level; the other commands stay quiet unless
// asked otherwise.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg

	logCfg := logging.FromConfig(cfg, "pascal")
	if cmd.Name() != "serve" {
		logCfg.Level = "warn"
	}
	switch {
	case logLevel != "":
		logCfg.Level = logLevel
	case verbose:
		logCfg.Level = "debug"
	}
	logging.SetDefaults(logCfg)

	colorOutput = !noColor && env.Str("NO_COLOR") == "" && stdoutIsTerminal()
	return nil
}

// newService creates a local service. Runs are only persisted when
// history is set.
func newService(history bool) (*service.Service, error) {
	cfg := service.ConfigFrom(appConfig)
	cfg.HistoryEnabled = history
	return service.NewService(cfg)
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Fehler: %s: %v\n", msg, err)
}
