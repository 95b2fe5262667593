package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/pascal/pkg/core/version"
)

var versionOutput string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Zeigt die Version an",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if versionOutput != outputText {
			return writeStructured(cmd.OutOrStdout(), versionOutput, info)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "pascal v%s\n", info.Version)
		fmt.Fprintf(w, "  Engine:     %s\n", version.ComponentVersion("engine"))
		fmt.Fprintf(w, "  Server:     %s (API %s)\n", version.ComponentVersion("server"), info.API)
		fmt.Fprintf(w, "  CLI:        %s\n", version.ComponentVersion("cli"))
		fmt.Fprintf(w, "  Git Commit: %s\n", info.Commit)
		fmt.Fprintf(w, "  Build Date: %s\n", info.BuildDate)
		fmt.Fprintf(w, "  Go Version: %s\n", info.GoVersion)
		fmt.Fprintf(w, "  OS/Arch:    %s\n", info.Platform)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().StringVarP(&versionOutput, "output", "o", outputText, "Ausgabeformat (text, json, yaml)")
}
