package parser

import (
	"reflect"
	"strings"
	"testing"

	hmlog "github.com/msto63/hivemind/foundation/core/log"
	"github.com/msto63/hivemind/internal/hivemind/command"
	"github.com/msto63/hivemind/internal/hivemind/failure"
)

func newTestParser() *Parser {
	return New(Options{Logger: hmlog.Discard()})
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []command.Command
	}{
		{
			name:  "block literal run",
			input: "run:\n\tLINE1\n\tLINE2\n\n",
			want:  []command.Command{command.RunCode{Code: "LINE1\nLINE2"}},
		},
		{
			name:  "two commands separated by a blank line",
			input: "string hello\n\ndata \"41 42\"\n",
			want: []command.Command{
				command.AppendString{Text: "hello"},
				command.PushData{Data: []byte("AB")},
			},
		},
		{
			name:  "source order preserved",
			input: "hex\ndrop\nseed 1\n",
			want:  []command.Command{command.HexEncode{}, command.Drop{}, command.Seed{Value: 1}},
		},
		{
			name:  "quoted escape",
			input: `string "a\"b"`,
			want:  []command.Command{command.AppendString{Text: `a"b`}},
		},
		{
			name:  "empty script",
			input: "\n\n",
			want:  nil,
		},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := p.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got := script.Commands()
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParser_DispatchErrorRejectsWholeScript(t *testing.T) {
	script, err := newTestParser().Parse("string ok\nfrobnicate x\nhex\n")
	if err == nil {
		t.Fatal("expected a dispatch error")
	}
	if script.Len() != 0 {
		t.Errorf("Parse() returned %d commands alongside an error", script.Len())
	}

	fe, ok := failure.As(err)
	if !ok || fe.Kind != failure.KindDispatch {
		t.Fatalf("error = %v, want a dispatch failure", err)
	}
	if fe.Phase() != failure.PhaseParse {
		t.Errorf("Phase() = %v, want parse", fe.Phase())
	}
	if fe.Line != 2 || fe.Column != 1 {
		t.Errorf("location = %d:%d, want 2:1", fe.Line, fe.Column)
	}
	if !reflect.DeepEqual(fe.Words, []string{"frobnicate", "x"}) {
		t.Errorf("Words = %q", fe.Words)
	}
}

func TestParser_LexErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
		line    int
	}{
		{"unclosed quote", "hex\nstring \"abc\n", "unclosed quote", 2},
		{"bad hex data", "hex\n\ndata 4\n", "lone hex digit", 3},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.input)
			fe, ok := failure.As(err)
			if !ok || fe.Kind != failure.KindLex {
				t.Fatalf("error = %v, want a lex failure", err)
			}
			if !strings.Contains(fe.Message, tt.wantMsg) || fe.Line != tt.line {
				t.Errorf("error = %v, want %q on line %d", fe, tt.wantMsg, tt.line)
			}
		})
	}
}

func TestParser_MaxInputLength(t *testing.T) {
	p := New(Options{Logger: hmlog.Discard(), MaxInputLength: 8})
	if _, err := p.Parse("string too-long"); err == nil {
		t.Error("expected an error for input over the maximum length")
	}
	if _, err := p.Parse("drop"); err != nil {
		t.Errorf("Parse() error = %v", err)
	}
}

func TestParser_UsesDispatcherOptions(t *testing.T) {
	p := New(Options{
		Logger:     hmlog.Discard(),
		Dispatcher: command.NewDispatcher(command.Options{DefaultArgs: "--quiet"}),
	})
	script, err := p.Parse("echo-code")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := command.RunCode{Code: "echo-code", Args: "--quiet"}
	if !reflect.DeepEqual(script.At(0), want) {
		t.Errorf("At(0) = %#v, want %#v", script.At(0), want)
	}
}

func TestParser_ParsesScriptString(t *testing.T) {
	tests := []struct {
		name string
		cmds []command.Command
	}{
		{"bare words", []command.Command{command.RunCode{Code: "echo-code"}, command.HexEncode{}, command.Drop{}}},
		{"quoted args and code", []command.Command{command.RunCode{Code: "line1\nline2", Args: "-v x"}}},
		{"escaped quote", []command.Command{command.AppendString{Text: `say "hi"`}}},
		{"trailing backslash", []command.Command{command.AppendString{Text: `C:\dir\`}}},
		{"trailing backslash with args", []command.Command{command.RunCode{Code: `echo a b\`, Args: "-v"}}},
		{"multi-line trailing backslash", []command.Command{command.RunScript{Path: "a b\n\n  c\nd\\"}, command.Drop{}}},
		{"data and seed", []command.Command{command.PushData{Data: []byte{0x00, 0xAB}}, command.Seed{Value: 9}}},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := command.NewScript(tt.cmds...).String()
			script, err := p.Parse(source)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", source, err)
			}
			if got := script.Commands(); !reflect.DeepEqual(got, tt.cmds) {
				t.Errorf("Parse(%q) = %#v, want %#v", source, got, tt.cmds)
			}
		})
	}
}
