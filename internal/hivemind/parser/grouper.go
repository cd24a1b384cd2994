// File: grouper.go
// Title: Command Grouper
// Description: Batches lexer tokens into one word list per command. A
//              newline marker ends the current command; blank lines between
//              commands are skipped and end of input ends the stream.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.2.0: Initial implementation

package parser

// Statement is the word list of one source command
type Statement struct {
	Words    []string
	Position int // Byte offset of the first word
	Line     int // Line of the first word (1-based)
	Column   int // Column of the first word (1-based)
}

// Grouper yields one Statement per source command. It is lazy, finite and
// cannot be restarted; create a new Grouper to scan the text again.
//
//	g := parser.NewGrouper(text)
//	for g.Next() {
//		use(g.Statement())
//	}
//	if err := g.Err(); err != nil { ... }
type Grouper struct {
	lexer   *Lexer
	current Statement
	err     error
	done    bool
}

// NewGrouper creates a grouper over the given script text
func NewGrouper(text string) *Grouper {
	return &Grouper{lexer: NewLexer(text)}
}

// Next advances to the next command. It returns false at end of input or on
// the first lexing error, which is then available from Err.
func (g *Grouper) Next() bool {
	if g.done {
		return false
	}

	stmt, err := g.scan()
	if err != nil {
		g.err = err
		g.done = true
		return false
	}
	if len(stmt.Words) == 0 {
		g.done = true
		return false
	}

	g.current = stmt
	return true
}

// Statement returns the command found by the last successful Next
func (g *Grouper) Statement() Statement {
	return g.current
}

// Words returns the word list found by the last successful Next
func (g *Grouper) Words() []string {
	return g.current.Words
}

// Err returns the lexing error that stopped the grouper, if any
func (g *Grouper) Err() error {
	return g.err
}

// Consumed returns the number of input bytes consumed so far
func (g *Grouper) Consumed() int {
	return g.lexer.Position()
}

// scan collects words until a newline that follows at least one word, or
// until end of input
func (g *Grouper) scan() (Statement, error) {
	var stmt Statement
	for {
		tok, err := g.lexer.NextToken()
		if err != nil {
			return Statement{}, err
		}

		switch tok.Type {
		case TokenEOF:
			return stmt, nil
		case TokenNewline:
			if len(stmt.Words) > 0 {
				return stmt, nil
			}
		default:
			if len(stmt.Words) == 0 {
				stmt.Position, stmt.Line, stmt.Column = tok.Position, tok.Line, tok.Column
			}
			stmt.Words = append(stmt.Words, tok.Value)
		}
	}
}

// NextCommand returns the words of the first command in text and the number
// of bytes it consumed, including its terminating newline and any blank
// lines before it. It returns (nil, 0) when text holds no further command.
func NextCommand(text string) ([]string, int, error) {
	g := NewGrouper(text)
	if !g.Next() {
		return nil, 0, g.Err()
	}
	return g.Words(), g.Consumed(), nil
}

// Commands returns the word lists of every command in text
func Commands(text string) ([][]string, error) {
	var result [][]string
	g := NewGrouper(text)
	for g.Next() {
		result = append(result, g.Words())
	}
	return result, g.Err()
}
