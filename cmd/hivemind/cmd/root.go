package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	hmerror "github.com/msto63/hivemind/foundation/core/error"
	hmlog "github.com/msto63/hivemind/foundation/core/log"
	"github.com/msto63/hivemind/internal/hivemind"
	"github.com/msto63/hivemind/internal/hivemind/failure"
	"github.com/msto63/hivemind/internal/hivemind/scripts"
	"github.com/msto63/hivemind/internal/hivemind/store"
	"github.com/msto63/hivemind/pkg/core/config"
	"github.com/msto63/hivemind/pkg/core/logging"
)

var (
	cfgFile  string
	logLevel string
	noHist   bool
)

var rootCmd = &cobra.Command{
	Use:   "hivemind",
	Short: "hivemind - Pipeline-Interpreter für termite-Skripte",
	Long: `hivemind führt Skripte aus, deren Befehle einen Byte-Puffer
nacheinander umformen. Die Ausgabe von Schritt i ist die Eingabe
von Schritt i+1.

Befehle der Skriptsprache:
  run <code>       Inline-Code über termite-worker ausführen
  script <name>    Skript aus dem Skriptverzeichnis ausführen
  string <text>    Text an den Puffer anhängen
  data <hex>       Hex-Bridge-Daten anhängen
  drop             Puffer leeren
  hex              Puffer hexadezimal kodieren
  seed [n]         Zufallsstartwert anhängen

Exit-Status:
  0  Erfolg
  1  Allgemeiner Fehler
  2  Skriptfehler (Lexer, Dispatcher)
  3  Worker-Fehler
  4  Konfigurationsfehler`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: $HIVEMIND_CONFIG oder ./configs/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log-Level überschreiben (trace, debug, info, warn, error, off)")
	rootCmd.PersistentFlags().BoolVar(&noHist, "no-history", false, "Läufe nicht im Verlauf speichern")
}

// ExitStatus maps an error to the process exit status
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	if fe, ok := failure.As(err); ok {
		return fe.Foundation().Code().ExitStatus()
	}
	return hmerror.GetCode(err).ExitStatus()
}

// loadConfig reads --config, then $HIVEMIND_CONFIG and the default paths.
// Without any file the built-in defaults apply.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		if hmerror.HasCode(err, hmerror.CodeMissingConfig) && os.Getenv(config.EnvConfigPath) == "" {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// env bundles what the subcommands share
type env struct {
	cfg     *config.Config
	logger  *hmlog.Logger
	logFile io.Closer
	engine  *hivemind.Engine
}

// newEnv loads the configuration and builds the logger
func newEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.General.LogLevel = logLevel
	}

	e := &env{cfg: cfg}
	lc := logging.LoggerConfig{
		ServiceName: cfg.General.Name,
		Level:       cfg.General.LogLevel,
		Format:      cfg.General.LogFormat,
	}
	if cfg.General.LogFile != "" {
		f, err := logging.OpenLogFile(cfg.General.LogFile)
		if err != nil {
			return nil, hmerror.Wrap(err, "failed to open log file").
				WithCode(hmerror.CodeConfigError).
				WithOperation("cmd.newEnv").
				WithDetail("path", cfg.General.LogFile)
		}
		e.logFile = f
		lc.AdditionalOutputs = []io.Writer{f}
	}
	e.logger = logging.NewLogger(lc)
	hmlog.SetDefault(e.logger)

	e.logger.Debug("Configuration loaded", hmlog.Fields{
		"source":      cfg.Source,
		"environment": cfg.General.Environment,
	})
	return e, nil
}

// openHistory opens the run store when history is enabled
func (e *env) openHistory() (store.RunStore, error) {
	if !e.cfg.History.Enabled {
		return nil, nil
	}
	st, err := store.NewSQLiteRunStore(store.SQLiteRunConfig{Path: e.cfg.History.Path})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// newEngine builds the interpreter; withHistory records runs
func (e *env) newEngine(withHistory bool) (*hivemind.Engine, error) {
	opts := hivemind.OptionsFromConfig(e.cfg, e.logger)
	if withHistory && !noHist {
		st, err := e.openHistory()
		if err != nil {
			e.logger.WarnWithErr("History disabled", err)
		} else if st != nil {
			opts.History = st
		}
	}

	engine, err := hivemind.New(opts)
	if err != nil {
		if opts.History != nil {
			opts.History.Close()
		}
		return nil, err
	}
	e.engine = engine
	return engine, nil
}

// library opens the script library below the configured root
func (e *env) library() *scripts.Library {
	return scripts.New(scripts.Options{
		Root:   e.cfg.Worker.ScriptRoot,
		Ext:    e.cfg.Worker.ScriptExt,
		Logger: e.logger,
	})
}

// Close releases the engine and the log file
func (e *env) Close() {
	if e.engine != nil {
		if err := e.engine.Close(); err != nil {
			e.logger.WarnWithErr("Failed to close engine", err)
		}
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Fehler: %s: %v\n", msg, err)
}
