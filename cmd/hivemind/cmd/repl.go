// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     cmd
// Description: CLI command for the interactive REPL
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/msto63/hivemind/internal/tui/repl"
	"github.com/msto63/hivemind/pkg/core/version"
)

var (
	replShowHex  bool
	replMaxLines int
)

var replCmd = &cobra.Command{
	Use:     "repl",
	Aliases: []string{"tui", "edit"},
	Short:   "Startet den interaktiven Skript-Editor",
	Long: `Startet den interaktiven hivemind-Editor.

Skripte werden im Editor geschrieben und ausgeführt; das Ergebnis
erscheint im Verlauf darüber:

  - Mehrzeiliger Editor mit Zeilennummern
  - Ausführen oder nur Prüfen
  - Ausgabe wahlweise mit Hex-Escapes

Tastenkuerzel:
  Ctrl+R      Ausführen
  Ctrl+K      Prüfen (ohne Ausführung)
  Ctrl+E      Hex-Escapes umschalten
  Ctrl+N      Editor leeren
  Ctrl+L      Verlauf leeren
  PgUp/PgDn   Scrollen
  Esc/Ctrl+C  Beenden`,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().BoolVar(&replShowHex, "hex", false, "Mit Hex-Escapes starten")
	replCmd.Flags().IntVar(&replMaxLines, "max-lines", 0, "Maximale Ausgabezeilen je Lauf (default: repl.max_output_lines)")
}

func runREPL(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	engine, err := e.newEngine(true)
	if err != nil {
		return err
	}

	cfg := repl.DefaultConfig(engine)
	cfg.ShowHex = replShowHex || e.cfg.REPL.ShowHex
	cfg.MaxOutputLines = e.cfg.REPL.MaxOutputLines
	if replMaxLines > 0 {
		cfg.MaxOutputLines = replMaxLines
	}
	cfg.Version = version.Get().Version

	return repl.Run(cfg)
}
