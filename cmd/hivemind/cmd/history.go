package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	hmerror "github.com/msto63/hivemind/foundation/core/error"
	"github.com/msto63/hivemind/foundation/utils/stringx"
	"github.com/msto63/hivemind/internal/hivemind"
	"github.com/msto63/hivemind/internal/hivemind/store"
	"github.com/msto63/hivemind/pkg/core/config"
)

var (
	historyLimit  int
	historyFailed bool
	historyName   string
	historySince  time.Duration
	historyDays   int
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"hist"},
	Short:   "Verlauf der Skriptläufe",
	Long: `Zeigt und verwaltet den Verlauf der Skriptläufe.

Der Verlauf liegt in einer SQLite-Datenbank (history.path) und
speichert Quelltext, Status, Fehlerart und die gekürzte Ausgabe.`,
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Letzte Läufe auflisten",
	RunE:    runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Einen Lauf anzeigen (ID oder eindeutiges Präfix)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Alte Läufe löschen (default: history.retention_days)",
	RunE:  runHistoryPrune,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Statistik über alle Läufe",
	RunE:  runHistoryStats,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
	historyCmd.AddCommand(historyStatsCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximale Anzahl")
	historyListCmd.Flags().BoolVar(&historyFailed, "failed", false, "Nur fehlgeschlagene Läufe")
	historyListCmd.Flags().StringVar(&historyName, "name", "", "Nur Läufe mit diesem Namen")
	historyListCmd.Flags().DurationVar(&historySince, "since", 0, "Nur Läufe der letzten Zeitspanne, z.B. 24h")

	historyPruneCmd.Flags().IntVar(&historyDays, "days", 0, "Läufe älter als N Tage löschen")
}

// withHistory opens the history store and runs fn with it
func withHistory(fn func(ctx context.Context, cfg *config.Config, st store.RunStore) error) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.openHistory()
	if err != nil {
		return err
	}
	if st == nil {
		return hmerror.New("history is disabled, set history.enabled = true").
			WithCode(hmerror.CodeConfigError).
			WithOperation("cmd.withHistory")
	}
	defer st.Close()

	return fn(context.Background(), e.cfg, st)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, cfg *config.Config, st store.RunStore) error {
		filter := store.RunFilter{Limit: historyLimit, SourceName: historyName}
		if historyFailed {
			filter.Status = store.RunStatusFailed
		}
		if historySince > 0 {
			filter.StartTime = time.Now().Add(-historySince)
		}

		runs, err := st.List(ctx, filter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "Keine Läufe gefunden.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tZEIT\tSTATUS\tNAME\tBEFEHLE\tDAUER\tQUELLE")
		for _, r := range runs {
			status := string(r.Status)
			if r.ErrorKind != "" {
				status += " (" + r.ErrorKind + ")"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				shortID(r.ID),
				r.Timestamp.Format("2006-01-02 15:04:05"),
				status,
				stringx.FirstNonBlank(r.SourceName, "-"),
				r.Commands,
				r.Duration.Round(time.Millisecond),
				stringx.Truncate(oneLine(r.Source), 40, "..."),
			)
		}
		return w.Flush()
	})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, cfg *config.Config, st store.RunStore) error {
		r, err := st.Get(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:       %s\n", r.ID)
		fmt.Fprintf(out, "Zeit:     %s\n", r.Timestamp.Format(time.RFC3339))
		fmt.Fprintf(out, "Name:     %s\n", stringx.FirstNonBlank(r.SourceName, "-"))
		fmt.Fprintf(out, "Status:   %s\n", r.Status)
		fmt.Fprintf(out, "Befehle:  %d\n", r.Commands)
		fmt.Fprintf(out, "Timeouts: %d\n", r.Timeouts)
		fmt.Fprintf(out, "Dauer:    %s\n", r.Duration)
		if len(r.Metadata) > 0 {
			keys := make([]string, 0, len(r.Metadata))
			for k := range r.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  %s = %v\n", k, r.Metadata[k])
			}
		}
		fmt.Fprintln(out, "\nQuelle:")
		fmt.Fprintln(out, strings.TrimRight(r.Source, "\n"))

		fmt.Fprintln(out, "\nErgebnis:")
		if r.Status == store.RunStatusFailed {
			fmt.Fprintf(out, "[error: %s]\n", r.ErrorMessage)
			return nil
		}
		fmt.Fprintln(out, hivemind.Render(r.Output, nil))
		return nil
	})
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, cfg *config.Config, st store.RunStore) error {
		days := historyDays
		if days <= 0 {
			days = cfg.History.RetentionDays
		}
		if days <= 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Aufbewahrung unbegrenzt, nichts gelöscht.")
			return nil
		}

		n, err := st.Prune(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d Läufe gelöscht (älter als %d Tage).\n", n, days)
		return nil
	})
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, cfg *config.Config, st store.RunStore) error {
		stats, err := st.Stats(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Läufe:          %d\n", stats.Total)
		fmt.Fprintf(out, "Fehlgeschlagen: %d\n", stats.Failed)
		fmt.Fprintf(out, "Timeouts:       %d\n", stats.Timeouts)

		kinds := make([]string, 0, len(stats.ByKind))
		for k := range stats.ByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(out, "  %-10s %d\n", k, stats.ByKind[k])
		}
		return nil
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
