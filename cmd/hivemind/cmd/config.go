package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Konfiguration anzeigen",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Wirksame Konfiguration als TOML ausgeben",
	Long: `Gibt die wirksame Konfiguration nach Defaults und
Umgebungsvariablen-Expansion als TOML aus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.General.LogLevel = logLevel
		}

		out := cmd.OutOrStdout()
		if cfg.Source != "" {
			fmt.Fprintf(out, "# Quelle: %s\n", cfg.Source)
		} else {
			fmt.Fprintln(out, "# Quelle: eingebaute Defaults")
		}
		return cfg.WriteTOML(out)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
