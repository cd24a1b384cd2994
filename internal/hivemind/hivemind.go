// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     hivemind
// Description: Top-level interpreter: parse, execute, record
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package hivemind

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	hmlog "github.com/msto63/hivemind/foundation/core/log"
	"github.com/msto63/hivemind/internal/hivemind/command"
	"github.com/msto63/hivemind/internal/hivemind/executor"
	"github.com/msto63/hivemind/internal/hivemind/failure"
	"github.com/msto63/hivemind/internal/hivemind/parser"
	"github.com/msto63/hivemind/internal/hivemind/store"
	"github.com/msto63/hivemind/internal/hivemind/worker"
	"github.com/msto63/hivemind/pkg/core/cache"
	"github.com/msto63/hivemind/pkg/core/config"
)

// Options configures an Engine. Zero values select the package defaults of
// the parser and executor.
type Options struct {
	Logger *hmlog.Logger

	// Worker
	Runner         worker.Runner
	Executable     string
	Timeout        time.Duration
	ScriptRoot     string
	ScriptExt      string
	ErrorFormatter string
	TempDir        string
	WorkDir        string
	Env            []string

	// Parser
	MaxInputLength int
	MaxNameLength  int
	DefaultArgs    string
	Clock          func() time.Time

	// Cache of parsed scripts; nil disables caching
	Cache *cache.Config

	// History receives every run; nil disables recording
	History store.RunStore
	// MaxStoredOutput truncates recorded output; 0 stores none
	MaxStoredOutput int
}

// OptionsFromConfig builds engine options from the file configuration.
// History is left nil; the caller opens the store.
func OptionsFromConfig(cfg *config.Config, logger *hmlog.Logger) Options {
	opts := Options{
		Logger:          logger,
		Executable:      cfg.Worker.Executable,
		Timeout:         cfg.Worker.Timeout.Duration,
		ScriptRoot:      cfg.Worker.ScriptRoot,
		ScriptExt:       cfg.Worker.ScriptExt,
		ErrorFormatter:  cfg.Worker.ErrorFormatter,
		TempDir:         cfg.Worker.TempDir,
		WorkDir:         cfg.Worker.WorkDir,
		Env:             cfg.WorkerEnv(),
		MaxInputLength:  cfg.Parser.MaxInputLength,
		MaxNameLength:   cfg.Parser.MaxNameLength,
		DefaultArgs:     cfg.Parser.DefaultArgs,
		MaxStoredOutput: cfg.History.MaxOutputBytes,
	}
	if cfg.Cache.Enabled {
		opts.Cache = &cache.Config{
			MaxItems: cfg.Cache.MaxItems,
			TTL:      cfg.Cache.TTL.Duration,
		}
	}
	return opts
}

// RunOptions describes one run
type RunOptions struct {
	// SourceName labels the run in history, e.g. a script name
	SourceName string
	// Input is the initial buffer; nil starts empty
	Input []byte
	// Metadata is recorded with the run
	Metadata map[string]interface{}
}

// Result is the outcome of Run
type Result struct {
	RunID    string
	Output   []byte
	Script   command.Script
	Report   *executor.Report
	Started  time.Time
	Duration time.Duration
}

// Engine parses and executes scripts
type Engine struct {
	parser   *parser.Parser
	executor *executor.Engine
	cache    *cache.ParsedCache
	history  store.RunStore
	logger   *hmlog.Logger
	options  Options
}

// New creates a new interpreter engine
func New(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = hmlog.GetDefault()
	}
	if opts.Runner == nil {
		opts.Runner = &worker.ProcessRunner{Dir: opts.WorkDir, Env: opts.Env}
	}

	dispatcher := command.NewDispatcher(command.Options{
		DefaultArgs:   opts.DefaultArgs,
		MaxNameLength: opts.MaxNameLength,
		Clock:         opts.Clock,
	})

	exec, err := executor.New(executor.Options{
		Logger:         opts.Logger,
		Runner:         opts.Runner,
		Executable:     opts.Executable,
		Timeout:        opts.Timeout,
		ScriptRoot:     opts.ScriptRoot,
		ScriptExt:      opts.ScriptExt,
		TempDir:        opts.TempDir,
		ErrorFormatter: opts.ErrorFormatter,
	})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		parser: parser.New(parser.Options{
			Logger:         opts.Logger,
			MaxInputLength: opts.MaxInputLength,
			Dispatcher:     dispatcher,
		}),
		executor: exec,
		history:  opts.History,
		logger:   opts.Logger.WithField("component", "hivemind"),
		options:  opts,
	}
	if opts.Cache != nil {
		profile := fmt.Sprintf("args=%q;name=%d;input=%d", opts.DefaultArgs, opts.MaxNameLength, opts.MaxInputLength)
		e.cache = cache.NewParsedCache(*opts.Cache, profile)
	}

	return e, nil
}

// Executor returns the execution engine
func (e *Engine) Executor() *executor.Engine {
	return e.executor
}

// History returns the run store, or nil
func (e *Engine) History() store.RunStore {
	return e.history
}

// CacheStats returns parse cache statistics, or nil without a cache
func (e *Engine) CacheStats() map[string]interface{} {
	if e.cache == nil {
		return nil
	}
	return e.cache.Stats()
}

// Parse turns script text into a script. Scripts without clock seeds are
// served from the cache when one is configured.
func (e *Engine) Parse(text string) (command.Script, error) {
	if e.cache != nil {
		if v, ok := e.cache.Get(text); ok {
			if script, ok := v.(command.Script); ok {
				return script, nil
			}
		}
	}

	script, err := e.parser.Parse(text)
	if err != nil {
		return command.Script{}, err
	}

	if e.cache != nil && script.Deterministic() {
		e.cache.Set(text, script)
	}
	return script, nil
}

// Validate parses text without executing it
func (e *Engine) Validate(text string) error {
	_, err := e.Parse(text)
	return err
}

// Process parses and executes text on an empty buffer and returns the final
// buffer. Errors are *failure.Error.
func (e *Engine) Process(ctx context.Context, text string) ([]byte, error) {
	res, err := e.Run(ctx, text, RunOptions{})
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// Run parses and executes text and records the run in the history store.
// The result is returned on failure too; it then carries the run ID but no
// output.
func (e *Engine) Run(ctx context.Context, text string, ro RunOptions) (*Result, error) {
	res := &Result{Started: time.Now()}

	script, err := e.Parse(text)
	if err != nil {
		res.RunID = uuid.NewString()
		res.Duration = time.Since(res.Started)
		e.record(ctx, text, ro, res, err)
		return res, err
	}
	res.Script = script

	input := ro.Input
	if input == nil {
		input = []byte{}
	}
	output, report, err := e.executor.RunFrom(ctx, script, input)
	res.Report = report
	res.RunID = report.RunID
	res.Duration = time.Since(res.Started)
	if err == nil {
		res.Output = output
	}

	e.record(ctx, text, ro, res, err)
	return res, err
}

// Close releases the cache and the history store
func (e *Engine) Close() error {
	if e.cache != nil {
		e.cache.Close()
	}
	if e.history != nil {
		return e.history.Close()
	}
	return nil
}

// record stores the run; history failures are logged, not returned
func (e *Engine) record(ctx context.Context, text string, ro RunOptions, res *Result, runErr error) {
	if e.history == nil {
		return
	}

	run := &store.Run{
		ID:         res.RunID,
		Timestamp:  res.Started,
		Source:     text,
		SourceName: ro.SourceName,
		Status:     store.RunStatusOK,
		Commands:   res.Script.Len(),
		Duration:   res.Duration,
		Metadata:   ro.Metadata,
	}
	if res.Report != nil {
		run.Timeouts = len(res.Report.Timeouts)
	}
	if runErr != nil {
		run.Status = store.RunStatusFailed
		run.ErrorKind = failure.KindOf(runErr).String()
		run.ErrorMessage = runErr.Error()
	} else if e.options.MaxStoredOutput > 0 {
		out := res.Output
		if len(out) > e.options.MaxStoredOutput {
			out = out[:e.options.MaxStoredOutput]
		}
		run.Output = append([]byte(nil), out...)
	}

	if err := e.history.Record(context.WithoutCancel(ctx), run); err != nil {
		e.logger.Warn("Failed to record run", hmlog.Fields{
			"run_id": res.RunID,
			"error":  err.Error(),
		})
	}
}
