package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// stubRuntime records worker invocations instead of starting processes
type stubRuntime struct {
	dir      string
	calls    []stubCall
	respond  func(target, args string, input []byte) ([]byte, error)
	seenCode string
}

type stubCall struct {
	target string
	args   string
	input  []byte
}

func (r *stubRuntime) Invoke(_ context.Context, target, args string, input []byte) ([]byte, error) {
	r.calls = append(r.calls, stubCall{target: target, args: args, input: append([]byte(nil), input...)})
	if data, err := os.ReadFile(target); err == nil {
		r.seenCode = string(data)
	}
	if r.respond != nil {
		return r.respond(target, args, input)
	}
	return []byte("ok"), nil
}

func (r *stubRuntime) TempDir() string { return r.dir }

func (r *stubRuntime) ResolveScript(name string) string {
	return filepath.Join("/scripts", name+".tm")
}

func TestPureCommands(t *testing.T) {
	input := []byte{0x01, 'A'}

	tests := []struct {
		name string
		cmd  Command
		want []byte
	}{
		{"append string", AppendString{Text: "hi"}, []byte{0x01, 'A', 'h', 'i', 0x00}},
		{"append empty string", AppendString{}, []byte{0x01, 'A', 0x00}},
		{"push data", PushData{Data: []byte{0xFF, 0x00}}, []byte{0x01, 'A', 0xFF, 0x00}},
		{"drop", Drop{}, []byte{}},
		{"hex encode", HexEncode{}, []byte("01A")},
		{"seed", Seed{Value: 7}, []byte{0x01, 'A', 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.Apply(context.Background(), nil, input)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
			if len(got) > 0 && &got[0] == &input[0] {
				t.Error("Apply() returned a slice aliasing its input")
			}
			if !bytes.Equal(input, []byte{0x01, 'A'}) {
				t.Errorf("Apply() modified its input: %v", input)
			}
		})
	}
}

func TestDrop_AlwaysEmpty(t *testing.T) {
	for _, in := range [][]byte{nil, {}, []byte("anything"), bytes.Repeat([]byte{0}, 1024)} {
		got, _ := Drop{}.Apply(context.Background(), nil, in)
		if len(got) != 0 {
			t.Errorf("Drop.Apply(%d bytes) = %d bytes, want 0", len(in), len(got))
		}
	}
}

func TestRunCode_WritesAndRemovesTempFile(t *testing.T) {
	rt := &stubRuntime{dir: t.TempDir()}

	out, err := RunCode{Code: "echo-code", Args: "-x"}.Apply(context.Background(), rt, []byte("in"))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if string(out) != "ok" {
		t.Errorf("Apply() = %q, want ok", out)
	}
	if len(rt.calls) != 1 {
		t.Fatalf("worker invoked %d times, want 1", len(rt.calls))
	}

	call := rt.calls[0]
	if rt.seenCode != "echo-code" {
		t.Errorf("temp file content = %q, want echo-code", rt.seenCode)
	}
	if call.args != "-x" || string(call.input) != "in" {
		t.Errorf("call = %+v", call)
	}
	if !strings.HasPrefix(filepath.Base(call.target), "hm-") || filepath.Ext(call.target) != ".tm" {
		t.Errorf("temp file name = %q, want hm-<uuid>.tm", call.target)
	}
	if _, err := os.Stat(call.target); !os.IsNotExist(err) {
		t.Errorf("temp file %s still exists after Apply", call.target)
	}
}

func TestRunCode_RemovesTempFileOnFailure(t *testing.T) {
	boom := errors.New("worker failed")
	rt := &stubRuntime{
		dir:     t.TempDir(),
		respond: func(string, string, []byte) ([]byte, error) { return nil, boom },
	}

	_, err := RunCode{Code: "x"}.Apply(context.Background(), rt, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Apply() error = %v, want %v", err, boom)
	}

	entries, _ := os.ReadDir(rt.dir)
	if len(entries) != 0 {
		t.Errorf("temp dir holds %d files after failure, want 0", len(entries))
	}
}

func TestRunCode_TempDirMissing(t *testing.T) {
	rt := &stubRuntime{dir: filepath.Join(t.TempDir(), "missing")}
	_, err := RunCode{Code: "x"}.Apply(context.Background(), rt, nil)
	if err == nil || !strings.Contains(err.Error(), "create temp file") {
		t.Errorf("Apply() error = %v, want internal temp file error", err)
	}
	if len(rt.calls) != 0 {
		t.Error("worker must not run when the temp file cannot be created")
	}
}

func TestRunScript_ResolvesPath(t *testing.T) {
	rt := &stubRuntime{}
	if _, err := (RunScript{Path: "lib/x", Args: "a"}).Apply(context.Background(), rt, nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if rt.calls[0].target != "/scripts/lib/x.tm" || rt.calls[0].args != "a" {
		t.Errorf("call = %+v", rt.calls[0])
	}
}

func TestScript_String(t *testing.T) {
	s := NewScript(
		RunCode{Code: "echo-code"},
		RunCode{Code: "line1\nline2", Args: "-v"},
		RunScript{Path: "std/x"},
		AppendString{Text: `say "hi"`},
		AppendString{Text: `C:\dir\`},
		PushData{Data: []byte{0x00, 0xAB}},
		HexEncode{},
		Seed{Value: 9},
		Drop{},
	)

	want := strings.Join([]string{
		"run echo-code",
		"run -v \"line1\nline2\"",
		"script std/x",
		`string "say \"hi\""`,
		`string: C:\dir\`,
		"data 00AB",
		"hex",
		"seed 9",
		"drop",
	}, "\n")
	if got := s.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestScript_Deterministic(t *testing.T) {
	if !NewScript(Seed{Value: 1}, Drop{}).Deterministic() {
		t.Error("explicit seed should be deterministic")
	}
	if NewScript(Seed{Value: 1, FromClock: true}).Deterministic() {
		t.Error("clock seed should not be deterministic")
	}
}

func TestScript_IsImmutable(t *testing.T) {
	cmds := []Command{Drop{}}
	s := NewScript(cmds...)
	cmds[0] = HexEncode{}

	got := s.Commands()
	got[0] = HexEncode{}
	if s.At(0).Kind() != KindDrop {
		t.Error("Script shares its backing array with callers")
	}
}
