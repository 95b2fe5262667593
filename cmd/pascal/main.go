package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/msto63/pascal/cmd/pascal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, cmd.ErrEvaluationFailed) {
			fmt.Fprintf(os.Stderr, "Fehler: %v\n", err)
		}
		os.Exit(1)
	}
}
