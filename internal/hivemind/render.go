// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     hivemind
// Description: Text rendering of run results for terminals and chat
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package hivemind

import (
	"strings"

	"github.com/msto63/hivemind/internal/hivemind/hexbridge"
)

// Placeholders used by Render
const (
	NoOutput = "[no output]"
)

// Render formats a result the way chat front ends show it: the output as
// Latin-1 text, "[no output]" for an empty buffer, "[error: ...]" on failure.
func Render(output []byte, err error) string {
	if err != nil {
		return "[error: " + err.Error() + "]"
	}
	if len(output) == 0 {
		return NoOutput
	}
	return Latin1(output)
}

// RenderEscaped is Render with control bytes shown as hex pairs, so the
// text can be pasted back into a data command
func RenderEscaped(output []byte, err error) string {
	if err != nil || len(output) == 0 {
		return Render(output, err)
	}
	return Latin1(hexbridge.Encode(output))
}

// Latin1 decodes b byte for byte; every byte maps to the rune of the same value
func Latin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
