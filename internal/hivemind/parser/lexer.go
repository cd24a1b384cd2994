// File: lexer.go
// Title: Script Lexical Analyzer
// Description: Scans hivemind script text into bare words, quoted literals,
//              indented block literals and newline markers. Works over an
//              explicit cursor and keeps line/column information for error
//              reporting.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial lexer implementation
// - 2026-10-18 v0.2.0: Rewritten for the pipeline script grammar

package parser

import (
	"fmt"
	"strings"

	"github.com/msto63/hivemind/foundation/utils/stringx"
	"github.com/msto63/hivemind/internal/hivemind/failure"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	// TokenEOF marks the end of input
	TokenEOF TokenType = iota
	// TokenWord is a bare word such as run, hex or a code shorthand
	TokenWord
	// TokenString is a "quoted literal"
	TokenString
	// TokenBlock is a literal introduced by ':' and continued by indentation
	TokenBlock
	// TokenNewline terminates a command
	TokenNewline
)

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenWord:
		return "WORD"
	case TokenString:
		return "STRING"
	case TokenBlock:
		return "BLOCK"
	case TokenNewline:
		return "NEWLINE"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token with position information
type Token struct {
	Type     TokenType // Token type
	Value    string    // Decoded token value
	Position int       // Byte offset of the first character
	End      int       // Byte offset just after the token
	Line     int       // Line number (1-based)
	Column   int       // Column number (1-based, in bytes)
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenNewline:
		return "NEWLINE"
	default:
		return fmt.Sprintf("%s(%q)", t.Type, t.Value)
	}
}

// Lexer performs lexical analysis of script text
type Lexer struct {
	input  string // Input string
	pos    int    // Current byte offset
	line   int    // Current line number (1-based)
	column int    // Current column number (1-based)

	// seeked lexers started mid-input; line and column are resolved from
	// the offset only when an error needs them
	seeked bool
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, column: 1}
}

// newLexerAt creates a lexer starting at byte offset pos without scanning
// the text before it
func newLexerAt(input string, pos int) *Lexer {
	l := NewLexer(input)
	if pos <= 0 {
		return l
	}
	if pos > len(input) {
		pos = len(input)
	}
	l.pos = pos
	l.seeked = true
	return l
}

// lineColumn returns the 1-based line and byte column of offset
func lineColumn(input string, offset int) (int, int) {
	before := input[:offset]
	return strings.Count(before, "\n") + 1, offset - strings.LastIndexByte(before, '\n')
}

// Position returns the current byte offset
func (l *Lexer) Position() int {
	return l.pos
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() (Token, error) {
	l.skipHorizontalSpace()

	tok := Token{Position: l.pos, Line: l.line, Column: l.column}
	if l.pos >= len(l.input) {
		tok.Type = TokenEOF
		tok.End = l.pos
		return tok, nil
	}

	switch l.input[l.pos] {
	case '\n':
		l.advance()
		tok.Type = TokenNewline
		tok.Value = "\n"
	case '"':
		value, err := l.readQuoted()
		if err != nil {
			return Token{}, err
		}
		tok.Type = TokenString
		tok.Value = value
	case ':':
		tok.Type = TokenBlock
		tok.Value = l.readBlock()
	default:
		tok.Type = TokenWord
		tok.Value = l.readWord()
	}

	tok.End = l.pos
	return tok, nil
}

// Tokenize returns all tokens up to and including EOF
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// NextWord scans one token of text starting at pos and returns its value
// and the offset just after it. At end of input it returns ("", 0); a
// newline is returned as the value "\n". Each call starts directly at pos,
// so looping over a script costs one pass in total.
func NextWord(text string, pos int) (string, int, error) {
	tok, err := newLexerAt(text, pos).NextToken()
	if err != nil {
		return "", 0, err
	}
	if tok.Type == TokenEOF {
		return "", 0, nil
	}
	return tok.Value, tok.End, nil
}

// advance moves the cursor one byte forward, tracking lines and columns
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

// skipHorizontalSpace skips spaces, tabs and carriage returns
func (l *Lexer) skipHorizontalSpace() {
	for l.pos < len(l.input) && isHorizontalSpace(l.input[l.pos]) {
		l.advance()
	}
}

// readQuoted reads a double-quoted literal. Only \" is an escape sequence;
// every other backslash is kept verbatim.
func (l *Lexer) readQuoted() (string, error) {
	startPos, startLine, startColumn := l.pos, l.line, l.column
	l.advance() // opening quote

	var b strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\\' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '"':
			b.WriteByte('"')
			l.advance()
			l.advance()
		case ch == '"':
			l.advance()
			return b.String(), nil
		default:
			b.WriteByte(ch)
			l.advance()
		}
	}

	if l.seeked {
		startLine, startColumn = lineColumn(l.input, startPos)
	}
	return "", failure.Lex("unclosed quote", startPos, startLine, startColumn)
}

// readBlock reads a block literal after ':'. The block runs up to the first
// newline whose following line does not start with horizontal whitespace;
// that newline is left in the input so it terminates the command.
func (l *Lexer) readBlock() string {
	l.advance() // ':'
	start := l.pos

	end := len(l.input)
	for i := start; i < len(l.input); i++ {
		if l.input[i] != '\n' {
			continue
		}
		if i+1 < len(l.input) && isHorizontalSpace(l.input[i+1]) {
			continue
		}
		end = i
		break
	}

	for l.pos < end {
		l.advance()
	}
	return normalizeBlock(l.input[start:end])
}

// normalizeBlock trims the header line, removes the common indentation of
// the continuation lines and trims the result.
func normalizeBlock(raw string) string {
	lines := stringx.SplitLines(raw)
	if len(lines) == 0 {
		return ""
	}

	header := strings.TrimSpace(lines[0])
	body := stringx.Dedent(lines[1:])
	for i := range body {
		body[i] = strings.TrimRight(body[i], " \t\r")
	}

	joined := header
	if len(body) > 0 {
		joined += "\n" + strings.Join(body, "\n")
	}
	return strings.TrimSpace(joined)
}

// readWord reads a bare word. It ends at whitespace, ':', '\n' or '\r'.
func (l *Lexer) readWord() string {
	start := l.pos
	for l.pos < len(l.input) && !isWordTerminator(l.input[l.pos]) {
		l.advance()
	}
	return l.input[start:l.pos]
}

func isHorizontalSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r'
}

func isWordTerminator(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == ':' || ch == '\n' || ch == '\r'
}
