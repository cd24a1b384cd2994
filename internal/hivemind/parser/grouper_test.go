package parser

import (
	"reflect"
	"testing"

	"github.com/msto63/hivemind/internal/hivemind/failure"
)

func TestCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"single command", "drop", [][]string{{"drop"}}},
		{"newline separated", "string a\nhex\n", [][]string{{"string", "a"}, {"hex"}}},
		{"blank line separated", "string a\n\nhex\n", [][]string{{"string", "a"}, {"hex"}}},
		{"leading and trailing blank lines", "\n\n  \ndrop\n\n\n", [][]string{{"drop"}}},
		{"block command", "run:\n\tLINE1\n\tLINE2\n\n", [][]string{{"run", "LINE1\nLINE2"}}},
		{"block then command", "run:\n\tA\nhex", [][]string{{"run", "A"}, {"hex"}}},
		{"crlf lines", "string a\r\n\r\nhex\r\n", [][]string{{"string", "a"}, {"hex"}}},
		{"empty input", "", nil},
		{"whitespace only", " \t\r\n\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Commands(tt.input)
			if err != nil {
				t.Fatalf("Commands() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Commands() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextCommand(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantWords    []string
		wantConsumed int
	}{
		{"newline included", "string a\nhex", []string{"string", "a"}, 9},
		{"blank lines before are consumed", "\n\ndrop\nhex", []string{"drop"}, 7},
		{"end of input", "drop", []string{"drop"}, 4},
		{"nothing left", "\n\n", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, consumed, err := NextCommand(tt.input)
			if err != nil {
				t.Fatalf("NextCommand() error = %v", err)
			}
			if !reflect.DeepEqual(words, tt.wantWords) || consumed != tt.wantConsumed {
				t.Errorf("NextCommand() = (%q, %d), want (%q, %d)", words, consumed, tt.wantWords, tt.wantConsumed)
			}
		})
	}
}

func TestNextCommand_Advancing(t *testing.T) {
	text := "string a\n\nrun:\n  x\n\ndrop"
	var got [][]string
	for pos := 0; ; {
		words, consumed, err := NextCommand(text[pos:])
		if err != nil {
			t.Fatalf("NextCommand() error = %v", err)
		}
		if consumed == 0 {
			break
		}
		got = append(got, words)
		pos += consumed
	}

	want := [][]string{{"string", "a"}, {"run", "x"}, {"drop"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("commands = %q, want %q", got, want)
	}
}

func TestGrouper_StopsOnLexError(t *testing.T) {
	g := NewGrouper("drop\nstring \"open\nhex")

	if !g.Next() {
		t.Fatal("first command should be returned before the error")
	}
	if g.Next() {
		t.Fatal("Next() should stop at the unclosed quote")
	}
	if !failure.Is(g.Err(), failure.KindLex) {
		t.Errorf("Err() = %v, want a lex failure", g.Err())
	}
	if g.Next() {
		t.Error("Grouper must not restart after an error")
	}
}

func TestGrouper_StatementPosition(t *testing.T) {
	g := NewGrouper("drop\n\n  hex")
	g.Next()
	g.Next()
	stmt := g.Statement()
	if stmt.Line != 3 || stmt.Column != 3 || stmt.Position != 8 {
		t.Errorf("Statement() = %+v, want line 3 column 3 offset 8", stmt)
	}
}
