package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	pb "github.com/msto63/pascal/api/pascal"
	"github.com/msto63/pascal/foundation/calc/scanner"
	"github.com/msto63/pascal/internal/pascal/service"
)

var (
	tokensOutput string
	tokensEcho   bool
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [datei]",
	Short: "Zeigt die Token eines Programms",
	Long: `Zerlegt ein Programm in Token und gibt sie mit Zeile und Spalte aus.

Ungültige Zeichen und Zahlen mit führender Null erscheinen als ILLEGAL.
Ohne Datei wird von stdin gelesen.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().StringVarP(&tokensOutput, "output", "o", outputText, "Ausgabeformat (text, json, yaml)")
	tokensCmd.Flags().BoolVar(&tokensEcho, "echo", false, "Programmtext vor den Token ausgeben")
}

func runTokens(cmd *cobra.Command, args []string) error {
	if err := checkOutputFormat(tokensOutput); err != nil {
		return err
	}

	inputs, err := readInputs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	source := inputs[0].Source

	svc, err := newService(false)
	if err != nil {
		return err
	}
	defer svc.Close()

	tokens, err := svc.Tokenize(source)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if tokensOutput != outputText {
		return writeStructured(w, tokensOutput, pb.TokenizeResponse{Tokens: service.TokenInfos(tokens)})
	}

	if tokensEcho {
		fmt.Fprintf(w, "With text:\n%s\n", source)
	}
	writeTokens(w, service.TokenInfos(tokens))
	if n := illegalTokens(tokens); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Hinweis: %d ungültige Token\n", n)
	}
	return nil
}

// illegalTokens counts the tokens the scanner rejected
func illegalTokens(tokens []scanner.Token) int {
	n := 0
	for _, tok := range tokens {
		if tok.Kind == scanner.TokenIllegal {
			n++
		}
	}
	return n
}
