package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	pb "github.com/msto63/pascal/api/pascal"
	"github.com/msto63/pascal/internal/pascal/service"
	coreGrpc "github.com/msto63/pascal/pkg/core/grpc"
)

var (
	historyLimit     int
	historyFailed    bool
	historyOutput    string
	historyRemote    string
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Zeigt gespeicherte Läufe",
	Long: `Listet die gespeicherten Läufe, neueste zuerst.

Läufe werden von "pascal serve" und von "pascal run --history" gespeichert.

Beispiele:
  pascal history --limit 5
  pascal history --failed
  pascal history show <id>
  pascal history prune --older-than 168h`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Zeigt einen gespeicherten Lauf",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Löscht alte Läufe",
	Long: `Löscht Läufe, die älter als --older-than sind.

Ohne --older-than gilt die Aufbewahrungsdauer aus der Konfiguration.`,
	Args: cobra.NoArgs,
	RunE: runHistoryPrune,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Zeigt eine Statistik der gespeicherten Läufe",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyPruneCmd, historyStatsCmd)

	historyCmd.PersistentFlags().StringVarP(&historyOutput, "output", "o", outputText, "Ausgabeformat (text, json, yaml)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximale Anzahl Läufe")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "Nur fehlgeschlagene Läufe")
	historyCmd.Flags().StringVar(&historyRemote, "remote", "", "Historie vom angegebenen Server lesen (host:port)")
	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 0, "Mindestalter der zu löschenden Läufe")
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	if err := checkOutputFormat(historyOutput); err != nil {
		return err
	}

	req := pb.HistoryRequest{Limit: historyLimit, FailedOnly: historyFailed}
	if err := service.ValidateHistoryRequest(req); err != nil {
		return err
	}

	var runs []pb.RunInfo
	if historyRemote != "" {
		resp, err := remoteHistory(cmd.Context(), historyRemote, req)
		if err != nil {
			return err
		}
		runs = resp.Runs
	} else {
		svc, err := newService(true)
		if err != nil {
			return err
		}
		defer svc.Close()

		recorded, err := svc.History(cmd.Context(), service.HistoryFilter(req))
		if err != nil {
			return err
		}
		runs = make([]pb.RunInfo, len(recorded))
		for i, run := range recorded {
			runs[i] = service.RunInfo(run)
		}
	}

	if historyOutput != outputText {
		return writeStructured(cmd.OutOrStdout(), historyOutput, pb.HistoryResponse{Runs: runs})
	}
	writeRuns(cmd.OutOrStdout(), runs)
	return nil
}

func remoteHistory(ctx context.Context, addr string, req pb.HistoryRequest) (*pb.HistoryResponse, error) {
	conn, err := coreGrpc.DialWithTimeout(addr, 5*time.Second)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return pb.NewClient(conn).History(ctx, req)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if err := checkOutputFormat(historyOutput); err != nil {
		return err
	}

	svc, err := newService(true)
	if err != nil {
		return err
	}
	defer svc.Close()

	run, err := svc.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	info := service.RunInfo(run)
	if historyOutput != outputText {
		return writeStructured(cmd.OutOrStdout(), historyOutput, info)
	}
	writeRun(cmd.OutOrStdout(), info)
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	if historyOlderThan < 0 {
		return fmt.Errorf("--older-than must not be negative")
	}

	svc, err := newService(true)
	if err != nil {
		return err
	}
	defer svc.Close()

	deleted, err := svc.Prune(cmd.Context(), historyOlderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d Läufe gelöscht.\n", deleted)
	return nil
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	if err := checkOutputFormat(historyOutput); err != nil {
		return err
	}

	svc, err := newService(true)
	if err != nil {
		return err
	}
	defer svc.Close()

	stats, err := svc.Stats(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if historyOutput != outputText {
		return writeStructured(w, historyOutput, stats)
	}

	fmt.Fprintf(w, "Läufe gesamt:    %d\n", stats.Total)
	fmt.Fprintf(w, "Erfolgreich:     %d\n", stats.Succeeded)
	fmt.Fprintf(w, "Fehlgeschlagen:  %d\n", stats.Failed)
	if !stats.LastRun.IsZero() {
		fmt.Fprintf(w, "Letzter Lauf:    %s\n", stats.LastRun.Local().Format("2006-01-02 15:04:05"))
	}

	kinds := make([]string, 0, len(stats.ByErrorKind))
	for kind := range stats.ByErrorKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "  %-24s %d\n", kind, stats.ByErrorKind[kind])
	}
	return nil
}
