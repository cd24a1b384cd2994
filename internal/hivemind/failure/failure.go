// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     failure
// Description: Closed taxonomy of interpreter errors
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

// Package failure defines the error kinds the interpreter can produce.
// Callers branch on Kind or Phase instead of inspecting messages.
package failure

import (
	"errors"
	"fmt"
	"strings"

	hmerror "github.com/msto63/hivemind/foundation/core/error"
)

// Kind enumerates every failure the interpreter reports
type Kind int

const (
	// KindLex is a scanning error such as an unclosed quote or bad hex text
	KindLex Kind = iota + 1
	// KindDispatch is a word list that matches no grammar rule
	KindDispatch
	// KindWorker is a failed worker whose error text was rendered by the formatter
	KindWorker
	// KindFallback means the error formatter itself failed
	KindFallback
	// KindTimeout is a worker that exceeded its deadline. The executor
	// swallows it; it only appears in logs and run history.
	KindTimeout
	// KindInternal covers temp file and process start failures
	KindInternal
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindLex:
		return "lex"
	case KindDispatch:
		return "dispatch"
	case KindWorker:
		return "worker"
	case KindFallback:
		return "fallback"
	case KindTimeout:
		return "timeout"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Phase groups kinds by when they occur
type Phase int

const (
	// PhaseParse errors happen before any command runs
	PhaseParse Phase = iota + 1
	// PhaseRun errors abort a running pipeline
	PhaseRun
	// PhaseFatal errors mean the interpreter's own machinery is broken
	PhaseFatal
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseParse:
		return "parse"
	case PhaseRun:
		return "run"
	case PhaseFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Phase returns the phase a kind belongs to
func (k Kind) Phase() Phase {
	switch k {
	case KindLex, KindDispatch:
		return PhaseParse
	case KindWorker, KindTimeout:
		return PhaseRun
	default:
		return PhaseFatal
	}
}

// Code maps the kind onto the foundation error code
func (k Kind) Code() hmerror.Code {
	switch k {
	case KindLex:
		return hmerror.CodeScriptSyntax
	case KindDispatch:
		return hmerror.CodeScriptDispatch
	case KindWorker:
		return hmerror.CodeWorkerFailure
	case KindFallback:
		return hmerror.CodeErrorFormatterFailure
	case KindTimeout:
		return hmerror.CodeWorkerTimeout
	case KindInternal:
		return hmerror.CodeInternal
	default:
		return hmerror.CodeUnknown
	}
}

// Error is the single error type returned by the interpreter
type Error struct {
	Kind    Kind
	Message string

	// Parse-time location, 1-based line and column. Zero when unknown.
	Offset int
	Line   int
	Column int

	// Words is the offending word list of a dispatch error
	Words []string

	// Step is the 0-based index of the failing command, -1 for parse errors
	Step int
	// Target is the worker target of a run-time failure
	Target string
	// ExitCode is the primary worker's exit status
	ExitCode int
	// FallbackExitCode is the error formatter's exit status
	FallbackExitCode int
	// Text is the error formatter's rendered output
	Text []byte

	Cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Line > 0 {
		fmt.Fprintf(&b, " at %d:%d", e.Line, e.Column)
	}
	if e.Step >= 0 && e.Kind.Phase() != PhaseParse {
		fmt.Fprintf(&b, " in command %d", e.Step+1)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Phase returns the phase of the error's kind
func (e *Error) Phase() Phase {
	return e.Kind.Phase()
}

// AtStep returns a copy annotated with the failing command index
func (e *Error) AtStep(step int) *Error {
	c := *e
	c.Step = step
	return &c
}

// Foundation converts the error into a foundation error carrying the
// matching code and details, for LogError and history records.
func (e *Error) Foundation() *hmerror.Error {
	fe := hmerror.Wrap(e, "hivemind "+e.Kind.Phase().String()+" failure").
		WithCode(e.Kind.Code()).
		WithDetail("kind", e.Kind.String())
	if e.Line > 0 {
		fe.WithDetail("line", e.Line).WithDetail("column", e.Column)
	}
	if len(e.Words) > 0 {
		fe.WithDetail("words", strings.Join(e.Words, " "))
	}
	if e.Step >= 0 {
		fe.WithDetail("step", e.Step)
	}
	if e.Target != "" {
		fe.WithDetail("target", e.Target)
	}
	if e.Kind == KindWorker || e.Kind == KindFallback {
		fe.WithDetail("exit_code", e.ExitCode)
	}
	if e.Kind == KindFallback {
		fe.WithDetail("fallback_exit_code", e.FallbackExitCode)
	}
	return fe
}

// Lex creates a lexing error at the given location
func Lex(message string, offset, line, column int) *Error {
	return &Error{Kind: KindLex, Message: message, Offset: offset, Line: line, Column: column, Step: -1}
}

// Dispatch creates a dispatch error for an unmatched word list
func Dispatch(words []string, reason string) *Error {
	msg := fmt.Sprintf("unknown command %s", quoteWords(words))
	if reason != "" {
		msg += " (" + reason + ")"
	}
	w := make([]string, len(words))
	copy(w, words)
	return &Error{Kind: KindDispatch, Message: msg, Words: w, Step: -1}
}

// Worker creates a worker failure carrying the rendered error text
func Worker(target string, exitCode int, text []byte) *Error {
	t := make([]byte, len(text))
	copy(t, text)
	return &Error{
		Kind:     KindWorker,
		Message:  strings.TrimSpace(string(text)),
		Target:   target,
		ExitCode: exitCode,
		Text:     t,
		Step:     -1,
	}
}

// Fallback creates the fatal error for a failing error formatter
func Fallback(target string, exitCode, fallbackExitCode int, formatter string) *Error {
	return &Error{
		Kind:             KindFallback,
		Message:          fmt.Sprintf("return code %d [can't run %q]", fallbackExitCode, formatter),
		Target:           target,
		ExitCode:         exitCode,
		FallbackExitCode: fallbackExitCode,
		Step:             -1,
	}
}

// Timeout creates a timeout record for the given target
func Timeout(target string, cause error) *Error {
	return &Error{Kind: KindTimeout, Message: "worker timed out", Target: target, Cause: cause, Step: -1}
}

// Internal wraps an unexpected failure of the interpreter's own machinery
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause, Step: -1}
}

// As returns the interpreter error in err's chain, if any
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// KindOf returns the kind of err, or 0 if err is not an interpreter error
func KindOf(err error) Kind {
	if fe, ok := As(err); ok {
		return fe.Kind
	}
	return 0
}

// Is reports whether err is an interpreter error of the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func quoteWords(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = fmt.Sprintf("%q", w)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
