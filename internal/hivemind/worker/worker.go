// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     worker
// Description: Subprocess boundary to the termite-worker executable
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

// Package worker starts the external worker process. The worker is opaque:
// it gets a target path and an argument string, reads the buffer from stdin
// and answers with stdout and an exit status.
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultExecutable is the worker binary looked up in PATH
const DefaultExecutable = "termite-worker"

// DefaultTimeout bounds one worker invocation
const DefaultTimeout = 5 * time.Second

// ErrTimeout is returned when an invocation exceeds its timeout
var ErrTimeout = errors.New("worker timed out")

// Invocation describes one worker call
type Invocation struct {
	Executable string
	Target     string
	Args       string
	Input      []byte
	Timeout    time.Duration
}

// Result is the outcome of a worker call that ran to completion
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Runner executes worker invocations
type Runner interface {
	Run(ctx context.Context, inv Invocation) (*Result, error)
}

// RunnerFunc adapts a function to the Runner interface
type RunnerFunc func(ctx context.Context, inv Invocation) (*Result, error)

// Run implements Runner
func (f RunnerFunc) Run(ctx context.Context, inv Invocation) (*Result, error) {
	return f(ctx, inv)
}

// ProcessRunner runs the worker as a child process
type ProcessRunner struct {
	// Dir is the working directory of the worker; empty means the current one
	Dir string
	// Env is appended to the inherited environment
	Env []string
}

// NewProcessRunner creates a runner that starts processes in dir
func NewProcessRunner(dir string) *ProcessRunner {
	return &ProcessRunner{Dir: dir}
}

// Run starts the worker and waits for it. A non-zero exit status is not an
// error; it is reported in Result.ExitCode. Exceeding the timeout returns
// ErrTimeout.
func (r *ProcessRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	executable := inv.Executable
	if executable == "" {
		executable = DefaultExecutable
	}

	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, executable, inv.Target, inv.Args)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}
	cmd.Stdin = bytes.NewReader(inv.Input)
	// give the killed process a moment to release its pipes
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %s", ErrTimeout, inv.Timeout, inv.Target)
		}
		return nil, ctxErr
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to start %s: %w", executable, err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &Result{
		ExitCode: exitCode,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: duration,
	}, nil
}
