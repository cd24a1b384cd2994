package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	hmerror "github.com/msto63/hivemind/foundation/core/error"
	"github.com/msto63/hivemind/foundation/utils/stringx"
	"github.com/msto63/hivemind/internal/hivemind/store"
	"github.com/msto63/hivemind/pkg/core/health"
	"github.com/msto63/hivemind/pkg/core/version"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Prüft die Laufzeitumgebung",
	Long: `Prüft, ob termite-worker gefunden wird, ob Skriptverzeichnis
und Fehlerformatierer vorhanden sind, ob das Temp-Verzeichnis
beschreibbar ist und ob sich der Verlauf öffnen lässt.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	engine, err := e.newEngine(false)
	if err != nil {
		return err
	}
	cfg := e.cfg

	registry := health.NewRegistry(cfg.General.Name, version.Platform)
	registry.Register(health.ExecutableCheck("worker", cfg.Worker.Executable))
	registry.Register(health.DirCheck("scripts", cfg.Worker.ScriptRoot, health.StatusDegraded))
	formatter := engine.Executor().ResolveFormatter()
	if !filepath.IsAbs(formatter) && cfg.Worker.WorkDir != "" {
		formatter = filepath.Join(cfg.Worker.WorkDir, formatter)
	}
	registry.Register(health.FileCheck("formatter", formatter, health.StatusDegraded))
	registry.Register(health.WritableDirCheck("temp", stringx.FirstNonBlank(cfg.Worker.TempDir, os.TempDir())))
	if cfg.History.Enabled {
		registry.Register(health.FuncCheck("history", health.StatusDegraded, func(ctx context.Context) error {
			st, err := store.NewSQLiteRunStore(store.SQLiteRunConfig{Path: cfg.History.Path})
			if err != nil {
				return err
			}
			defer st.Close()
			_, err = st.Stats(ctx)
			return err
		}))
	}

	report := registry.CheckWithTimeout(10 * time.Second)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "hivemind %s\n\n", report.Version)
	for _, c := range report.Checks {
		icon := "[+]"
		switch c.Status {
		case health.StatusDegraded, health.StatusUnknown:
			icon = "[~]"
		case health.StatusUnhealthy:
			icon = "[-]"
		}
		fmt.Fprintf(out, "  %s %-10s %s\n", icon, c.Name, c.Message)
	}
	fmt.Fprintln(out)

	switch report.Status {
	case health.StatusHealthy:
		fmt.Fprintln(out, "Alles bereit.")
		return nil
	case health.StatusDegraded:
		fmt.Fprintln(out, "Eingeschränkt nutzbar.")
		return nil
	default:
		return hmerror.New("environment not usable").
			WithCode(hmerror.CodeWorkerUnavailable).
			WithOperation("cmd.runDoctor")
	}
}
