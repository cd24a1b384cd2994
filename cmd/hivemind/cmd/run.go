// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     cmd
// Description: CLI commands to execute and check scripts
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	hmerror "github.com/msto63/hivemind/foundation/core/error"
	"github.com/msto63/hivemind/internal/hivemind"
	"github.com/msto63/hivemind/internal/hivemind/executor"
	"github.com/msto63/hivemind/internal/hivemind/failure"
	"github.com/msto63/hivemind/internal/hivemind/hexbridge"
)

var (
	runExpr     string
	runName     string
	runInputHex string
	runEscape   bool
	runRaw      bool
	runStats    bool
)

var runCmd = &cobra.Command{
	Use:   "run [datei|-]",
	Short: "Führt ein Skript aus",
	Long: `Führt ein hivemind-Skript aus und gibt den finalen Puffer aus.

Das Skript kommt aus einer Datei, mit -e von der Kommandozeile
oder, ohne Argument, von stdin.

Beispiele:
  hivemind run pipeline.hm
  hivemind run -e 'string hallo
hex'
  echo 'data 48 49' | hivemind run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

var checkCmd = &cobra.Command{
	Use:   "check [datei|-]",
	Short: "Prüft ein Skript ohne es auszuführen",
	Long: `Zerlegt ein Skript und meldet Lexer- und Dispatcher-Fehler,
ohne einen Worker zu starten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)

	runCmd.Flags().StringVarP(&runExpr, "expr", "e", "", "Skripttext direkt angeben")
	runCmd.Flags().StringVar(&runName, "name", "", "Name des Laufs im Verlauf")
	runCmd.Flags().StringVar(&runInputHex, "input-hex", "", "Startpuffer als Hex-Bridge-Text")
	runCmd.Flags().BoolVar(&runEscape, "escape", false, "Steuerzeichen als Hex-Paare ausgeben")
	runCmd.Flags().BoolVar(&runRaw, "raw", false, "Puffer unverändert auf stdout schreiben")
	runCmd.Flags().BoolVar(&runStats, "stats", false, "Schritte und Laufzeit auf stderr ausgeben")

	checkCmd.Flags().StringVarP(&runExpr, "expr", "e", "", "Skripttext direkt angeben")
}

// readSource returns the script text and a name for it
func readSource(args []string, expr string, stdin io.Reader) (string, string, error) {
	if expr != "" {
		return expr, "expr", nil
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", hmerror.Wrap(err, "failed to read stdin").
				WithCode(hmerror.CodeIOError).
				WithOperation("cmd.readSource")
		}
		return string(data), "stdin", nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		code := hmerror.CodeIOError
		if os.IsNotExist(err) {
			code = hmerror.CodeNotFound
		}
		return "", "", hmerror.Wrap(err, "failed to read script").
			WithCode(code).
			WithOperation("cmd.readSource").
			WithDetail("path", args[0])
	}
	return string(data), filepath.Base(args[0]), nil
}

func runRun(cmd *cobra.Command, args []string) error {
	text, name, err := readSource(args, runExpr, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if runName != "" {
		name = runName
	}

	var input []byte
	if runInputHex != "" {
		input, err = hexbridge.Decode(runInputHex)
		if err != nil {
			return err
		}
	}

	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	engine, err := e.newEngine(true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := engine.Run(ctx, text, hivemind.RunOptions{
		SourceName: name,
		Input:      input,
	})
	if runStats && res != nil {
		printStats(cmd.ErrOrStderr(), res)
	}
	if err != nil {
		if fe, ok := failure.As(err); ok {
			e.logger.LogError(fe.Foundation())
		}
		return err
	}

	return writeOutput(cmd.OutOrStdout(), res.Output, runRaw, runEscape)
}

// writeOutput prints the final buffer
func writeOutput(w io.Writer, output []byte, raw, escape bool) error {
	if raw {
		_, err := w.Write(output)
		return err
	}
	var text string
	if escape {
		text = hivemind.RenderEscaped(output, nil)
	} else {
		text = hivemind.Render(output, nil)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func printStats(w io.Writer, res *hivemind.Result) {
	fmt.Fprintf(w, "Lauf:     %s\n", res.RunID)
	fmt.Fprintf(w, "Befehle:  %d\n", res.Script.Len())
	fmt.Fprintf(w, "Dauer:    %s\n", res.Duration)
	if res.Report == nil {
		return
	}
	for _, s := range res.Report.Steps {
		fmt.Fprintf(w, "  %3d %-14s %6d -> %-6d %s%s\n",
			s.Index, s.Kind, s.InputLen, s.OutputLen, s.Duration, timeoutMark(s))
	}
}

func timeoutMark(s executor.Step) string {
	if s.TimedOut {
		return "  [TIMEOUT]"
	}
	return ""
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, _, err := readSource(args, runExpr, cmd.InOrStdin())
	if err != nil {
		return err
	}

	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	engine, err := e.newEngine(false)
	if err != nil {
		return err
	}

	script, err := engine.Parse(text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, c := range script.Commands() {
		fmt.Fprintf(out, "%3d  %s\n", i, c)
	}
	fmt.Fprintf(out, "Gültig: %d Befehle\n", script.Len())
	return nil
}
