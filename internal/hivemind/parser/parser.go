// File: parser.go
// Title: Script Parser
// Description: Drives the grouper over a whole script and dispatches every
//              word list into a command. The script is parsed completely
//              before anything runs, so a bad command anywhere rejects the
//              whole script.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial parser implementation
// - 2026-10-18 v0.2.0: Grouper and grammar table based parsing

package parser

import (
	"fmt"

	hmlog "github.com/msto63/hivemind/foundation/core/log"
	"github.com/msto63/hivemind/internal/hivemind/command"
	"github.com/msto63/hivemind/internal/hivemind/failure"
)

// DefaultMaxInputLength bounds the size of a script, in bytes
const DefaultMaxInputLength = 1 << 20

// Parser turns script text into a command.Script
type Parser struct {
	logger     *hmlog.Logger
	dispatcher *command.Dispatcher
	options    Options
}

// Options configures parser behavior
type Options struct {
	Logger         *hmlog.Logger
	MaxInputLength int
	Dispatcher     *command.Dispatcher
}

// New creates a new script parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = hmlog.GetDefault()
	}
	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = command.NewDispatcher(command.Options{})
	}

	return &Parser{
		logger:     opts.Logger.WithField("component", "hivemind-parser"),
		dispatcher: opts.Dispatcher,
		options:    opts,
	}
}

// Parse parses the complete script. Lex and dispatch errors carry the line
// and column of the offending command.
func (p *Parser) Parse(input string) (command.Script, error) {
	if len(input) > p.options.MaxInputLength {
		return command.Script{}, failure.Lex(
			fmt.Sprintf("input exceeds maximum length: %d > %d", len(input), p.options.MaxInputLength), 0, 0, 0)
	}

	p.logger.Debug("Starting script parsing", hmlog.Fields{
		"length": len(input),
	})

	var commands []command.Command
	g := NewGrouper(input)
	for g.Next() {
		stmt := g.Statement()
		cmd, err := p.dispatcher.Dispatch(stmt.Words)
		if err != nil {
			err = locate(err, stmt)
			p.logger.Warn("Script parsing failed", hmlog.Fields{
				"line":  stmt.Line,
				"error": err.Error(),
			})
			return command.Script{}, err
		}
		commands = append(commands, cmd)
	}
	if err := g.Err(); err != nil {
		p.logger.Warn("Script parsing failed", hmlog.Fields{
			"error": err.Error(),
		})
		return command.Script{}, err
	}

	p.logger.Debug("Script parsing completed successfully", hmlog.Fields{
		"commands": len(commands),
	})
	return command.NewScript(commands...), nil
}

// locate attaches the statement position to errors that lack one
func locate(err error, stmt Statement) error {
	fe, ok := failure.As(err)
	if !ok || fe.Line > 0 {
		return err
	}
	c := *fe
	c.Offset = stmt.Position
	c.Line = stmt.Line
	c.Column = stmt.Column
	return &c
}
