// File: grammar.go
// Title: Command Grammar Table
// Description: Maps word lists onto command variants using an ordered
//              table of keyword and arity rules. The first matching rule
//              wins; a single non-keyword word is shorthand for inline code.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial command registry
// - 2026-10-18 v0.2.0: Replaced by the pipeline grammar table

package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/msto63/hivemind/internal/hivemind/failure"
	"github.com/msto63/hivemind/internal/hivemind/hexbridge"
)

// DefaultMaxNameLength bounds script names, in bytes
const DefaultMaxNameLength = 128

// Keywords that open a grammar rule. A lone keyword never falls through to
// the inline code shorthand.
const (
	KeywordRun    = "run"
	KeywordScript = "script"
	KeywordString = "string"
	KeywordData   = "data"
	KeywordHex    = "hex"
	KeywordSeed   = "seed"
	KeywordDrop   = "drop"

	// legacyArgs is the marker word of the older "run args A CODE" and
	// "script PATH args A" forms
	legacyArgs = "args"
)

var keywords = map[string]bool{
	KeywordRun:    true,
	KeywordScript: true,
	KeywordString: true,
	KeywordData:   true,
	KeywordHex:    true,
	KeywordSeed:   true,
	KeywordDrop:   true,
}

// IsKeyword reports whether word opens a grammar rule
func IsKeyword(word string) bool {
	return keywords[word]
}

// Rule is one entry of the grammar table
type Rule struct {
	Name    string
	Keyword string // empty for the shorthand rule
	Arity   int    // number of words including the keyword
	Match   func(words []string) bool
	Build   func(d *Dispatcher, words []string) (Command, error)
}

// Options configures a Dispatcher
type Options struct {
	// DefaultArgs is the argument string of the single word shorthand
	DefaultArgs string
	// MaxNameLength bounds script names; 0 selects DefaultMaxNameLength
	MaxNameLength int
	// Clock supplies the time for seed without a value; nil selects time.Now
	Clock func() time.Time
}

// Dispatcher turns word lists into commands
type Dispatcher struct {
	rules   []Rule
	options Options
}

// NewDispatcher creates a dispatcher with the standard grammar table
func NewDispatcher(opts Options) *Dispatcher {
	if opts.MaxNameLength <= 0 {
		opts.MaxNameLength = DefaultMaxNameLength
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Dispatcher{rules: grammar(), options: opts}
}

// Rules returns a copy of the grammar table in priority order
func (d *Dispatcher) Rules() []Rule {
	r := make([]Rule, len(d.rules))
	copy(r, d.rules)
	return r
}

// Dispatch matches words against the grammar table
func (d *Dispatcher) Dispatch(words []string) (Command, error) {
	for _, rule := range d.rules {
		if len(words) != rule.Arity {
			continue
		}
		if rule.Keyword != "" && words[0] != rule.Keyword {
			continue
		}
		if rule.Match != nil && !rule.Match(words) {
			continue
		}
		return rule.Build(d, words)
	}
	return nil, failure.Dispatch(words, "")
}

func grammar() []Rule {
	return []Rule{
		{
			Name: "run args (legacy)", Keyword: KeywordRun, Arity: 4,
			Match: func(w []string) bool { return w[1] == legacyArgs },
			Build: func(_ *Dispatcher, w []string) (Command, error) {
				return RunCode{Code: w[3], Args: w[2]}, nil
			},
		},
		{
			Name: "run args", Keyword: KeywordRun, Arity: 3,
			Build: func(_ *Dispatcher, w []string) (Command, error) {
				return RunCode{Code: w[2], Args: w[1]}, nil
			},
		},
		{
			Name: "run", Keyword: KeywordRun, Arity: 2,
			Build: func(_ *Dispatcher, w []string) (Command, error) {
				return RunCode{Code: w[1]}, nil
			},
		},
		{
			Name: "script args", Keyword: KeywordScript, Arity: 3,
			Build: func(d *Dispatcher, w []string) (Command, error) {
				return d.runScript(w, w[2], w[1])
			},
		},
		{
			Name: "script args (legacy)", Keyword: KeywordScript, Arity: 4,
			Match: func(w []string) bool { return w[2] == legacyArgs },
			Build: func(d *Dispatcher, w []string) (Command, error) {
				return d.runScript(w, w[1], w[3])
			},
		},
		{
			Name: "script", Keyword: KeywordScript, Arity: 2,
			Build: func(d *Dispatcher, w []string) (Command, error) {
				return d.runScript(w, w[1], "")
			},
		},
		{
			Name: "string", Keyword: KeywordString, Arity: 2,
			Build: func(_ *Dispatcher, w []string) (Command, error) {
				return AppendString{Text: w[1]}, nil
			},
		},
		{
			Name: "data", Keyword: KeywordData, Arity: 2,
			Build: func(_ *Dispatcher, w []string) (Command, error) {
				data, err := hexbridge.Decode(w[1])
				if err != nil {
					return nil, err
				}
				return PushData{Data: data}, nil
			},
		},
		{
			Name: "hex", Keyword: KeywordHex, Arity: 1,
			Build: func(_ *Dispatcher, _ []string) (Command, error) {
				return HexEncode{}, nil
			},
		},
		{
			Name: "seed", Keyword: KeywordSeed, Arity: 2,
			Build: func(_ *Dispatcher, w []string) (Command, error) {
				v, ok := seedValue(w[1])
				if !ok {
					return nil, failure.Dispatch(w, fmt.Sprintf("seed value %q is not an integer", w[1]))
				}
				return Seed{Value: v}, nil
			},
		},
		{
			Name: "seed from clock", Keyword: KeywordSeed, Arity: 1,
			Build: func(d *Dispatcher, _ []string) (Command, error) {
				return Seed{Value: byte(uint64(d.options.Clock().UnixNano()) % 256), FromClock: true}, nil
			},
		},
		{
			Name: "drop", Keyword: KeywordDrop, Arity: 1,
			Build: func(_ *Dispatcher, _ []string) (Command, error) {
				return Drop{}, nil
			},
		},
		{
			Name: "code shorthand", Arity: 1,
			Match: func(w []string) bool { return !IsKeyword(w[0]) },
			Build: func(d *Dispatcher, w []string) (Command, error) {
				return RunCode{Code: w[0], Args: d.options.DefaultArgs}, nil
			},
		},
	}
}

// seedValue reduces a decimal integer of any size modulo 256, rounding
// toward negative infinity for negative values. Surrounding whitespace, a
// sign and single underscores between digits are accepted.
func seedValue(s string) (byte, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}

	r := 0
	afterDigit := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			r = (r*10 + int(c-'0')) % 256
			afterDigit = true
		case c == '_' && afterDigit && i+1 < len(s):
			afterDigit = false
		default:
			return 0, false
		}
	}
	if neg {
		r = (256 - r) % 256
	}
	return byte(r), true
}

func (d *Dispatcher) runScript(words []string, path, args string) (Command, error) {
	if path == "" {
		return nil, failure.Dispatch(words, "empty script name")
	}
	if len(path) > d.options.MaxNameLength {
		return nil, failure.Dispatch(words, fmt.Sprintf("script name exceeds %d bytes", d.options.MaxNameLength))
	}
	return RunScript{Path: path, Args: args}, nil
}
