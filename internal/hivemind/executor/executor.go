// File: executor.go
// Title: Pipeline Execution Engine
// Description: Folds a parsed script over one buffer, starting empty. Worker
//              calls go through the failure escalation protocol: a non-zero
//              exit status is rendered by the error formatter script, and a
//              failing formatter is fatal. Timeouts yield empty step output.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial executor implementation
// - 2026-10-18 v0.2.0: Sequential buffer pipeline with worker escalation

package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	hmlog "github.com/msto63/hivemind/foundation/core/log"
	"github.com/msto63/hivemind/internal/hivemind/command"
	"github.com/msto63/hivemind/internal/hivemind/failure"
	"github.com/msto63/hivemind/internal/hivemind/worker"
)

// Defaults for Options
const (
	DefaultScriptRoot     = "hive_scripts"
	DefaultScriptExt      = ".tm"
	DefaultErrorFormatter = "std/spit-error"
)

// Engine executes scripts
type Engine struct {
	runner  worker.Runner
	logger  *hmlog.Logger
	options Options
}

// Options configures executor behavior. All values are fixed at
// construction; the engine reads no process-wide settings.
type Options struct {
	Logger *hmlog.Logger
	// Runner starts workers; nil selects a worker.ProcessRunner
	Runner worker.Runner
	// Executable is the worker binary
	Executable string
	// Timeout bounds each worker invocation
	Timeout time.Duration
	// ScriptRoot is the directory script names are resolved against
	ScriptRoot string
	// ScriptExt is appended to script names without an extension
	ScriptExt string
	// TempDir holds inline code files; empty selects os.TempDir()
	TempDir string
	// ErrorFormatter is the script that renders a failing exit status. It
	// is not resolved against ScriptRoot, so relative paths name a file in
	// the worker's working directory.
	ErrorFormatter string
}

// Step describes one executed command
type Step struct {
	Index     int
	Kind      command.Kind
	InputLen  int
	OutputLen int
	Duration  time.Duration
	// TimedOut is set when a worker timeout emptied the step output
	TimedOut bool
}

// Report describes one script run
type Report struct {
	RunID    string
	Steps    []Step
	Duration time.Duration
	// Timeouts lists the swallowed worker timeouts
	Timeouts []*failure.Error
}

// New creates a new execution engine
func New(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = hmlog.GetDefault()
	}
	if opts.Executable == "" {
		opts.Executable = worker.DefaultExecutable
	}
	if opts.Timeout == 0 {
		opts.Timeout = worker.DefaultTimeout
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("worker timeout must not be negative: %s", opts.Timeout)
	}
	if opts.ScriptRoot == "" {
		opts.ScriptRoot = DefaultScriptRoot
	}
	if opts.ScriptExt == "" {
		opts.ScriptExt = DefaultScriptExt
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.ErrorFormatter == "" {
		opts.ErrorFormatter = DefaultErrorFormatter
	}
	if opts.Runner == nil {
		opts.Runner = worker.NewProcessRunner("")
	}

	e := &Engine{
		runner:  opts.Runner,
		logger:  opts.Logger.WithField("component", "hivemind-executor"),
		options: opts,
	}

	e.logger.Debug("Executor initialized", hmlog.Fields{
		"executable":     opts.Executable,
		"timeout":        opts.Timeout,
		"scriptRoot":     opts.ScriptRoot,
		"errorFormatter": opts.ErrorFormatter,
	})

	return e, nil
}

// Options returns the effective options
func (e *Engine) Options() Options {
	return e.options
}

// ResolveScript maps a script name onto the path handed to the worker.
// Relative names are joined to the script root; names without an extension
// get the script extension.
func (e *Engine) ResolveScript(name string) string {
	path := name
	if filepath.Ext(path) == "" {
		path += e.options.ScriptExt
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.options.ScriptRoot, path)
}

// ResolveFormatter returns the error formatter path handed to the worker.
// Only the script extension is applied.
func (e *Engine) ResolveFormatter() string {
	path := e.options.ErrorFormatter
	if filepath.Ext(path) == "" {
		path += e.options.ScriptExt
	}
	return path
}

// Run executes the script on an empty buffer
func (e *Engine) Run(ctx context.Context, script command.Script) ([]byte, *Report, error) {
	return e.RunFrom(ctx, script, []byte{})
}

// RunFrom executes the script starting from the given buffer. The first
// failing command aborts the run and the partial buffer is discarded.
func (e *Engine) RunFrom(ctx context.Context, script command.Script, initial []byte) ([]byte, *Report, error) {
	r := &run{
		engine: e,
		report: &Report{RunID: uuid.NewString()},
	}
	r.logger = e.logger.WithRequestID(r.report.RunID)

	timer := r.logger.StartTimer("script_run").WithField("commands", script.Len())
	start := time.Now()

	buffer := make([]byte, len(initial))
	copy(buffer, initial)

	for i, cmd := range script.Commands() {
		r.step = Step{Index: i, Kind: cmd.Kind(), InputLen: len(buffer)}
		stepStart := time.Now()

		out, err := cmd.Apply(ctx, r, buffer)
		if err != nil {
			fe, ok := failure.As(err)
			if !ok {
				fe = failure.Internal("command failed", err)
			}
			fe = fe.AtStep(i)
			r.report.Duration = time.Since(start)
			r.logger.LogError(fe.Foundation())
			timer.StopWithError(fe)
			return nil, r.report, fe
		}

		r.step.OutputLen = len(out)
		r.step.Duration = time.Since(stepStart)
		r.report.Steps = append(r.report.Steps, r.step)
		r.logger.Trace("Command applied", hmlog.Fields{
			"index":  i,
			"kind":   cmd.Kind().String(),
			"input":  r.step.InputLen,
			"output": r.step.OutputLen,
		})
		timer.Checkpoint(fmt.Sprintf("%d_%s", i, cmd.Kind()))

		buffer = out
	}

	r.report.Duration = time.Since(start)
	timer.Stop()
	return buffer, r.report, nil
}

// run is the per-run command.Runtime
type run struct {
	engine *Engine
	logger *hmlog.Logger
	report *Report
	step   Step
}

// TempDir implements command.Runtime
func (r *run) TempDir() string {
	return r.engine.options.TempDir
}

// ResolveScript implements command.Runtime
func (r *run) ResolveScript(name string) string {
	return r.engine.ResolveScript(name)
}

// Invoke implements command.Runtime. It runs the worker and escalates a
// non-zero exit status to the error formatter.
func (r *run) Invoke(ctx context.Context, target, args string, input []byte) ([]byte, error) {
	res, err := r.call(ctx, target, args, input)
	if err != nil {
		return r.handleCallError(target, err)
	}
	if res.ExitCode == 0 {
		return res.Stdout, nil
	}

	formatter := r.engine.ResolveFormatter()
	r.logger.Debug("Worker failed, rendering error", hmlog.Fields{
		"target":    target,
		"exit_code": res.ExitCode,
		"formatter": formatter,
	})

	fallback, err := r.call(ctx, formatter, "", []byte{byte(res.ExitCode & 0xFF)})
	if err != nil {
		return r.handleCallError(formatter, err)
	}
	if fallback.ExitCode != 0 {
		return nil, failure.Fallback(target, res.ExitCode, fallback.ExitCode, formatter)
	}
	return nil, failure.Worker(target, res.ExitCode, fallback.Stdout)
}

func (r *run) call(ctx context.Context, target, args string, input []byte) (*worker.Result, error) {
	opts := r.engine.options
	return r.engine.runner.Run(ctx, worker.Invocation{
		Executable: opts.Executable,
		Target:     target,
		Args:       args,
		Input:      input,
		Timeout:    opts.Timeout,
	})
}

// handleCallError swallows timeouts into an empty step output and reports
// every other runner error as internal
func (r *run) handleCallError(target string, err error) ([]byte, error) {
	if errors.Is(err, worker.ErrTimeout) {
		te := failure.Timeout(target, err).AtStep(r.step.Index)
		r.step.TimedOut = true
		r.report.Timeouts = append(r.report.Timeouts, te)
		r.logger.Warn("Worker timed out, step output discarded", hmlog.Fields{
			"target":  target,
			"step":    r.step.Index,
			"timeout": r.engine.options.Timeout,
		})
		return []byte{}, nil
	}
	return nil, failure.Internal(fmt.Sprintf("run worker on %s", target), err)
}
