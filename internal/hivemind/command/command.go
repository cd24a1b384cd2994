// File: command.go
// Title: Pipeline Command Variants
// Description: The closed set of commands a script can contain. Each one
//              transforms the pipeline buffer; RunCode and RunScript
//              delegate to the worker through a Runtime.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial command model
// - 2026-10-18 v0.2.0: Buffer transforms for the pipeline interpreter

package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/msto63/hivemind/internal/hivemind/failure"
	"github.com/msto63/hivemind/internal/hivemind/hexbridge"
)

// Kind identifies a command variant
type Kind int

const (
	KindRunCode Kind = iota + 1
	KindRunScript
	KindAppendString
	KindPushData
	KindDrop
	KindHexEncode
	KindSeed
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindRunCode:
		return "run-code"
	case KindRunScript:
		return "run-script"
	case KindAppendString:
		return "string"
	case KindPushData:
		return "data"
	case KindDrop:
		return "drop"
	case KindHexEncode:
		return "hex"
	case KindSeed:
		return "seed"
	default:
		return "unknown"
	}
}

// Runtime is what side-effecting commands need from the engine
type Runtime interface {
	// Invoke runs the worker against target and applies failure escalation
	Invoke(ctx context.Context, target, args string, input []byte) ([]byte, error)
	// TempDir is where inline code files are written
	TempDir() string
	// ResolveScript maps a script name onto the path handed to the worker
	ResolveScript(name string) string
}

// Command transforms the pipeline buffer. Implementations are immutable and
// never return a slice that aliases their input.
type Command interface {
	Kind() Kind
	Apply(ctx context.Context, rt Runtime, input []byte) ([]byte, error)
	// String returns the command in script syntax
	String() string
}

// RunCode writes Code to a temporary file and runs the worker on it
type RunCode struct {
	Code string
	Args string
}

// Kind implements Command
func (c RunCode) Kind() Kind { return KindRunCode }

// Apply implements Command. The temporary file is removed on every path.
func (c RunCode) Apply(ctx context.Context, rt Runtime, input []byte) ([]byte, error) {
	path := filepath.Join(rt.TempDir(), "hm-"+uuid.NewString()+".tm")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, failure.Internal("create temp file", err)
	}
	defer os.Remove(path)

	if _, err := f.WriteString(c.Code); err != nil {
		f.Close()
		return nil, failure.Internal("write temp file", err)
	}
	if err := f.Close(); err != nil {
		return nil, failure.Internal("close temp file", err)
	}

	return rt.Invoke(ctx, path, c.Args, input)
}

func (c RunCode) String() string {
	if c.Args == "" {
		return "run" + quoteLast(c.Code)
	}
	return "run " + quote(c.Args) + quoteLast(c.Code)
}

// RunScript runs the worker on an existing script file
type RunScript struct {
	Path string
	Args string
}

// Kind implements Command
func (c RunScript) Kind() Kind { return KindRunScript }

// Apply implements Command
func (c RunScript) Apply(ctx context.Context, rt Runtime, input []byte) ([]byte, error) {
	return rt.Invoke(ctx, rt.ResolveScript(c.Path), c.Args, input)
}

func (c RunScript) String() string {
	if c.Args == "" {
		return "script" + quoteLast(c.Path)
	}
	return "script " + quote(c.Args) + quoteLast(c.Path)
}

// AppendString appends Text and a NUL terminator
type AppendString struct {
	Text string
}

// Kind implements Command
func (c AppendString) Kind() Kind { return KindAppendString }

// Apply implements Command
func (c AppendString) Apply(_ context.Context, _ Runtime, input []byte) ([]byte, error) {
	out := make([]byte, 0, len(input)+len(c.Text)+1)
	out = append(out, input...)
	out = append(out, c.Text...)
	return append(out, 0x00), nil
}

func (c AppendString) String() string { return "string" + quoteLast(c.Text) }

// PushData appends already decoded bytes
type PushData struct {
	Data []byte
}

// Kind implements Command
func (c PushData) Kind() Kind { return KindPushData }

// Apply implements Command
func (c PushData) Apply(_ context.Context, _ Runtime, input []byte) ([]byte, error) {
	out := make([]byte, 0, len(input)+len(c.Data))
	out = append(out, input...)
	return append(out, c.Data...), nil
}

func (c PushData) String() string {
	var b strings.Builder
	for _, by := range c.Data {
		fmt.Fprintf(&b, "%02X", by)
	}
	return "data " + quote(b.String())
}

// Drop discards the buffer
type Drop struct{}

// Kind implements Command
func (Drop) Kind() Kind { return KindDrop }

// Apply implements Command
func (Drop) Apply(_ context.Context, _ Runtime, _ []byte) ([]byte, error) {
	return []byte{}, nil
}

func (Drop) String() string { return "drop" }

// HexEncode escapes control bytes of the buffer as hex text
type HexEncode struct{}

// Kind implements Command
func (HexEncode) Kind() Kind { return KindHexEncode }

// Apply implements Command
func (HexEncode) Apply(_ context.Context, _ Runtime, input []byte) ([]byte, error) {
	return hexbridge.Encode(input), nil
}

func (HexEncode) String() string { return "hex" }

// Seed appends a single byte. FromClock marks a value taken from the clock
// at parse time; such scripts are not replayed from cache.
type Seed struct {
	Value     byte
	FromClock bool
}

// Kind implements Command
func (c Seed) Kind() Kind { return KindSeed }

// Apply implements Command
func (c Seed) Apply(_ context.Context, _ Runtime, input []byte) ([]byte, error) {
	out := make([]byte, 0, len(input)+1)
	out = append(out, input...)
	return append(out, c.Value), nil
}

func (c Seed) String() string {
	if c.FromClock {
		return "seed"
	}
	return fmt.Sprintf("seed %d", c.Value)
}

// Script is an ordered, immutable sequence of commands
type Script struct {
	commands []Command
}

// NewScript creates a script from the given commands
func NewScript(commands ...Command) Script {
	c := make([]Command, len(commands))
	copy(c, commands)
	return Script{commands: c}
}

// Len returns the number of commands
func (s Script) Len() int { return len(s.commands) }

// At returns the command at index i
func (s Script) At(i int) Command { return s.commands[i] }

// Commands returns a copy of the command list
func (s Script) Commands() []Command {
	c := make([]Command, len(s.commands))
	copy(c, s.commands)
	return c
}

// Deterministic reports whether replaying the script source yields the
// same commands, i.e. it holds no clock seeded command
func (s Script) Deterministic() bool {
	for _, c := range s.commands {
		if seed, ok := c.(Seed); ok && seed.FromClock {
			return false
		}
	}
	return true
}

// String returns the script in source form, one command per line
func (s Script) String() string {
	lines := make([]string, len(s.commands))
	for i, c := range s.commands {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}

// quote renders a value as a bare word when possible and as a quoted
// literal otherwise. A quoted value cannot end in a backslash.
func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\r\n:\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// quoteLast renders the final word of a command, including its leading
// separator. Values a quoted literal cannot hold use a block literal.
func quoteLast(s string) string {
	q := quote(s)
	if !strings.HasPrefix(q, `"`) || !strings.HasSuffix(s, `\`) {
		return " " + q
	}
	if block, ok := blockLiteral(s); ok {
		return block
	}
	return " " + q
}

// blockLiteral renders s as a ':' block literal if lexing the block yields
// s again: no surrounding or trailing whitespace and no indentation shared
// by every continuation line.
func blockLiteral(s string) (string, bool) {
	if s == "" || s != strings.TrimSpace(s) {
		return "", false
	}
	lines := strings.Split(s, "\n")
	body := lines[1:]
	shared := len(body) > 0
	for i, line := range lines {
		if line != strings.TrimRight(line, " \t\r") {
			return "", false
		}
		if i > 0 && line != "" && line == strings.TrimLeft(line, " \t") {
			shared = false
		}
	}
	if shared {
		return "", false
	}

	var b strings.Builder
	b.WriteString(": ")
	b.WriteString(lines[0])
	for _, line := range body {
		b.WriteString("\n ")
		b.WriteString(line)
	}
	return b.String(), true
}
