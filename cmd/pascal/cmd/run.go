package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	pb "github.com/msto63/pascal/api/pascal"
	"github.com/msto63/pascal/internal/pascal/service"
	coreGrpc "github.com/msto63/pascal/pkg/core/grpc"
)

var (
	runOutput  string
	runEcho    bool
	runRemote  string
	runHistory bool
	runTimeout time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run [datei...]",
	Short: "Wertet Programme aus",
	Long: `Wertet ein oder mehrere Programme aus und gibt die Variablen sortiert aus.

Ohne Datei wird das Programm von stdin gelesen. Jede Datei ist ein eigenes
Programm. Schlägt eine Auswertung fehl, endet der Befehl mit Status 1.

Beispiele:
  pascal run beispiel.pas
  echo "x = 1 + 2 * 3;" | pascal run
  pascal run --output json a.pas b.pas
  pascal run --remote localhost:9310 beispiel.pas`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runOutput, "output", "o", outputText, "Ausgabeformat (text, json, yaml)")
	runCmd.Flags().BoolVar(&runEcho, "echo", false, "Programmtext vor dem Ergebnis ausgeben")
	runCmd.Flags().StringVar(&runRemote, "remote", "", "Über gRPC auf dem angegebenen Server auswerten (host:port)")
	runCmd.Flags().BoolVar(&runHistory, "history", false, "Lauf in der Historie speichern")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Second, "Timeout für entfernte Auswertung")
}

// evaluateFunc evaluates one program. The error is only set when no
// response could be produced.
type evaluateFunc func(ctx context.Context, source string) (*pb.EvaluateResponse, error)

func runRun(cmd *cobra.Command, args []string) error {
	if err := checkOutputFormat(runOutput); err != nil {
		return err
	}

	inputs, err := readInputs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	evaluate, closeFn, err := newEvaluateFunc()
	if err != nil {
		return err
	}
	defer closeFn()

	return evaluateInputs(cmd.Context(), cmd.OutOrStdout(), inputs, evaluate, runOutput, runEcho)
}

func newEvaluateFunc() (evaluateFunc, func(), error) {
	if runRemote != "" {
		conn, err := coreGrpc.DialWithTimeout(runRemote, runTimeout)
		if err != nil {
			return nil, nil, err
		}
		client := pb.NewClient(conn)
		evaluate := func(ctx context.Context, source string) (*pb.EvaluateResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, runTimeout)
			defer cancel()
			return client.Evaluate(ctx, source)
		}
		return evaluate, func() { conn.Close() }, nil
	}

	svc, err := newService(runHistory)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := svc.Close(); err != nil {
			printError("Historie konnte nicht geschlossen werden", err)
		}
	}
	return localEvaluate(svc), closeFn, nil
}

func localEvaluate(svc *service.Service) evaluateFunc {
	return func(ctx context.Context, source string) (*pb.EvaluateResponse, error) {
		eval, err := svc.Evaluate(ctx, source)
		if err != nil && !service.IsEvaluationFailure(err) {
			return nil, err
		}
		return eval.Response(), nil
	}
}

// evaluateInputs evaluates every input and writes the results. It returns
// ErrEvaluationFailed when at least one program failed.
func evaluateInputs(ctx context.Context, w io.Writer, inputs []input, evaluate evaluateFunc, format string, echo bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]fileResult, 0, len(inputs))
	failed := false

	for _, in := range inputs {
		resp, err := evaluate(ctx, in.Source)
		if err != nil {
			return fmt.Errorf("%s: %w", in.Name, err)
		}
		if !resp.Success {
			failed = true
		}

		if format != outputText {
			results = append(results, fileResult{File: in.Name, Result: resp})
			continue
		}

		if len(inputs) > 1 {
			fmt.Fprintf(w, "== %s ==\n", in.Name)
		}
		if echo {
			fmt.Fprintf(w, "With text:\n%s\n", in.Source)
		}
		writeEvaluation(w, resp)
	}

	if format != outputText {
		var v interface{} = results
		if len(results) == 1 {
			v = results[0].Result
		}
		if err := writeStructured(w, format, v); err != nil {
			return err
		}
	}

	if failed {
		return ErrEvaluationFailed
	}
	return nil
}
