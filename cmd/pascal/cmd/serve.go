package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/pascal/internal/pascal/server"
	"github.com/msto63/pascal/pkg/core/logging"
	"github.com/msto63/pascal/pkg/core/version"
)

var (
	serveHost     string
	serveGRPCPort int
	serveHTTPPort int
	serveNoStore  bool
	servePrune    time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Startet den gRPC- und HTTP-Server",
	Long: `Startet den Auswertungsdienst.

Endpunkte:
  gRPC   pascal.v1.PascalService (Standard :9310)
  HTTP   POST /api/v1/eval, POST /api/v1/tokens, GET /api/v1/history,
         GET /api/v1/runs/{id}, GET /api/v1/health (Standard :8310)
  WS     /api/v1/ws

Beenden mit Ctrl+C oder SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host-Adresse (überschreibt die Konfiguration)")
	serveCmd.Flags().IntVar(&serveGRPCPort, "grpc-port", 0, "gRPC-Port (überschreibt die Konfiguration)")
	serveCmd.Flags().IntVar(&serveHTTPPort, "http-port", 0, "HTTP-Port (überschreibt die Konfiguration)")
	serveCmd.Flags().BoolVar(&serveNoStore, "no-history", false, "Läufe nicht dauerhaft speichern")
	serveCmd.Flags().DurationVar(&servePrune, "prune-interval", time.Hour, "Intervall für das Löschen alter Läufe (0 = aus)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveHost != "" {
		appConfig.Server.Host = serveHost
	}
	if serveGRPCPort != 0 {
		appConfig.Server.GRPCPort = serveGRPCPort
	}
	if serveHTTPPort != 0 {
		appConfig.Server.HTTPPort = serveHTTPPort
	}
	cfg := server.ConfigFrom(appConfig)
	if serveNoStore {
		cfg.Service.HistoryEnabled = false
	}

	logger := logging.New("pascal")

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	fmt.Println("pascal - Ganzzahl-Interpreter")
	fmt.Println("=============================")
	fmt.Printf("Version: %s\n", version.Server)
	fmt.Printf("gRPC:    %s\n", appConfig.GRPCAddress())
	fmt.Printf("HTTP:    %s\n", appConfig.HTTPAddress())
	if appConfig.IsDevelopment() {
		fmt.Println("Modus:   Entwicklung")
	}
	fmt.Println()

	if err := srv.StartAsync(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if servePrune > 0 && cfg.Service.HistoryEnabled {
		go pruneLoop(ctx, srv, servePrune, logger)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutting down", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		printError("Server konnte nicht sauber beendet werden", err)
		return err
	}

	fmt.Println("Server beendet.")
	return nil
}

// pruneLoop removes runs older than the configured retention every interval
func pruneLoop(ctx context.Context, srv *server.Server, interval time.Duration, logger *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := srv.Service().Prune(ctx, 0); err != nil {
				logger.Warn("Failed to prune run history", "error", err.Error())
			}
		}
	}
}
