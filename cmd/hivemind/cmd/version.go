package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/hivemind/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Zeigt die Version an",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "hivemind v%s\n", info.Version)
		fmt.Fprintf(out, "  Git Commit: %s\n", orUnknown(info.Commit))
		fmt.Fprintf(out, "  Build Date: %s\n", orUnknown(info.BuildDate))
		fmt.Fprintf(out, "  Go Version: %s\n", info.GoVersion)
		fmt.Fprintf(out, "  OS/Arch:    %s\n", info.Platform)
		fmt.Fprintln(out, "  Komponenten:")
		for _, name := range []string{"parser", "executor", "history", "repl"} {
			fmt.Fprintf(out, "    %-9s %s\n", name, version.ComponentVersion(name))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
