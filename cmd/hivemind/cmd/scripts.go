package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/msto63/hivemind/foundation/utils/filex"
)

var scriptsForce bool

var scriptsCmd = &cobra.Command{
	Use:     "scripts",
	Aliases: []string{"fs"},
	Short:   "Skriptbibliothek verwalten",
	Long: `Listet, zeigt und speichert die termite-Skripte unterhalb
des konfigurierten Skriptverzeichnisses (worker.script_root).

Pfade außerhalb des Verzeichnisses werden abgewiesen.`,
}

var scriptsListCmd = &cobra.Command{
	Use:     "list [verzeichnis]",
	Aliases: []string{"ls", "dir"},
	Short:   "Skripte und Unterverzeichnisse auflisten",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runScriptsList,
}

var scriptsShowCmd = &cobra.Command{
	Use:     "show <name>",
	Aliases: []string{"cat", "file"},
	Short:   "Skript anzeigen",
	Args:    cobra.ExactArgs(1),
	RunE:    runScriptsShow,
}

var scriptsSaveCmd = &cobra.Command{
	Use:   "save <name> [datei|-]",
	Short: "Skript speichern (Inhalt aus Datei oder stdin)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runScriptsSave,
}

func init() {
	rootCmd.AddCommand(scriptsCmd)
	scriptsCmd.AddCommand(scriptsListCmd)
	scriptsCmd.AddCommand(scriptsShowCmd)
	scriptsCmd.AddCommand(scriptsSaveCmd)

	scriptsSaveCmd.Flags().BoolVarP(&scriptsForce, "force", "f", false, "Vorhandenes Skript überschreiben")
}

func runScriptsList(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	dir := ""
	if len(args) == 1 {
		dir = args[0]
	}
	entries, err := e.library().List(dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "Keine Skripte gefunden.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, en := range entries {
		if en.IsDir {
			fmt.Fprintf(w, "%s/\t-\t%s\n", en.Name, en.ModTime.Format("2006-01-02 15:04"))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", en.Name, filex.FormatSize(en.Size), en.ModTime.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runScriptsShow(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	content, err := e.library().Read(args[0])
	if err != nil {
		return err
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	fmt.Fprint(cmd.OutOrStdout(), content)
	return nil
}

func runScriptsSave(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 2 && args[1] != "-" {
		data, err = os.ReadFile(args[1])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		printError("Inhalt nicht lesbar", err)
		return err
	}

	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	path, err := e.library().Save(args[0], string(data), scriptsForce)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Gespeichert: %s (%s)\n", path, filex.FormatSize(int64(len(data))))
	return nil
}
