// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     repl
// Description: Message types for async operations in the REPL
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package repl

import (
	"time"
)

// Entry is one evaluated script in the transcript
type Entry struct {
	Index    int
	At       time.Time
	Source   string
	RunID    string
	Output   []byte
	Err      error
	Commands int
	Timeouts int
	Duration time.Duration
	// CheckOnly marks a parse-only evaluation
	CheckOnly bool
}

// Message types for tea.Cmd async operations

// runFinishedMsg is sent when a script run returns
type runFinishedMsg struct {
	entry Entry
}

// checkFinishedMsg is sent when a script was parsed without running
type checkFinishedMsg struct {
	entry Entry
}
