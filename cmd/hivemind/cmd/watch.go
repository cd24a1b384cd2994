// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     cmd
// Description: CLI command to re-run a script whenever it changes
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	hmlog "github.com/msto63/hivemind/foundation/core/log"
	"github.com/msto63/hivemind/internal/hivemind"
	"github.com/msto63/hivemind/internal/hivemind/command"
	"github.com/msto63/hivemind/internal/hivemind/failure"
	"github.com/msto63/hivemind/internal/hivemind/scripts"
)

var (
	watchFile     bool
	watchPipeline string
	watchEscape   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <name>",
	Short: "Skript bei jeder Änderung erneut ausführen",
	Long: `Beobachtet ein Skript und führt es nach jeder Änderung aus.

Ohne --file ist <name> ein termite-Skript der Bibliothek; ausgeführt
wird dann die Pipeline "script <name>" oder der mit -e angegebene Text.
Mit --file ist <name> eine hivemind-Skriptdatei, deren Inhalt bei jeder
Änderung neu eingelesen und ausgeführt wird.

Beenden mit Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchFile, "file", false, "<name> ist eine hivemind-Skriptdatei")
	watchCmd.Flags().StringVarP(&watchPipeline, "expr", "e", "", "Auszuführende Pipeline (default: script <name>)")
	watchCmd.Flags().BoolVar(&watchEscape, "escape", false, "Steuerzeichen als Hex-Paare ausgeben")
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	engine, err := e.newEngine(true)
	if err != nil {
		return err
	}

	lib := e.library()
	var w *scripts.Watcher
	if watchFile {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		w, err = lib.WatchFile(abs)
		if err != nil {
			return err
		}
	} else {
		w, err = lib.Watch(args[0])
		if err != nil {
			return err
		}
	}

	pipeline := watchPipeline
	if pipeline == "" && !watchFile {
		pipeline = libraryPipeline(args[0])
	}

	out := cmd.OutOrStdout()
	runOnce := func(ctx context.Context, path string) {
		text := pipeline
		if watchFile {
			data, err := os.ReadFile(path)
			if err != nil {
				printError("Skript nicht lesbar", err)
				return
			}
			text = string(data)
		}

		res, err := engine.Run(ctx, text, hivemind.RunOptions{
			SourceName: args[0],
			Metadata:   map[string]interface{}{"trigger": "watch"},
		})
		if fe, ok := failure.As(err); ok {
			e.logger.LogError(fe.Foundation())
		}

		var output []byte
		if res != nil {
			output = res.Output
		}
		rendered := hivemind.Render(output, err)
		if watchEscape {
			rendered = hivemind.RenderEscaped(output, err)
		}
		fmt.Fprintf(out, "--- %s ---\n%s\n", filepath.Base(path), rendered)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.logger.Info("Watching script", hmlog.Fields{"path": w.Path()})
	fmt.Fprintf(out, "Beobachte %s (Ctrl+C zum Beenden)\n", w.Path())

	// First run with the current content
	runOnce(ctx, w.Path())

	return w.Run(ctx, runOnce)
}

// libraryPipeline is the default pipeline of a watched library script
func libraryPipeline(name string) string {
	return command.RunScript{Path: name}.String()
}
