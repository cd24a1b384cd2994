package hivemind

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	hmlog "github.com/msto63/hivemind/foundation/core/log"
	"github.com/msto63/hivemind/internal/hivemind/failure"
	"github.com/msto63/hivemind/internal/hivemind/store"
	"github.com/msto63/hivemind/internal/hivemind/worker"
	"github.com/msto63/hivemind/pkg/core/cache"
	"github.com/msto63/hivemind/pkg/core/config"
)

const formatter = "std/spit-error.tm"

// stubWorker answers by the content of an inline code file or the target path
type stubWorker struct {
	calls   int
	answers map[string]func(inv worker.Invocation) (*worker.Result, error)
}

func (s *stubWorker) Run(_ context.Context, inv worker.Invocation) (*worker.Result, error) {
	s.calls++
	key := inv.Target
	if data, err := os.ReadFile(inv.Target); err == nil {
		key = string(data)
	}
	if answer, ok := s.answers[key]; ok {
		return answer(inv)
	}
	return &worker.Result{Stdout: append([]byte(nil), inv.Input...)}, nil
}

func reply(code int, stdout string) func(worker.Invocation) (*worker.Result, error) {
	return func(worker.Invocation) (*worker.Result, error) {
		return &worker.Result{ExitCode: code, Stdout: []byte(stdout)}, nil
	}
}

func newTestEngine(t *testing.T, sw *stubWorker, mutate func(*Options)) *Engine {
	t.Helper()
	opts := Options{
		Logger:     hmlog.Discard(),
		Runner:     sw,
		ScriptRoot: "hive",
		TempDir:    t.TempDir(),
		Timeout:    time.Second,
	}
	if mutate != nil {
		mutate(&opts)
	}
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestProcess_BlockLiteralEcho(t *testing.T) {
	sw := &stubWorker{answers: map[string]func(worker.Invocation) (*worker.Result, error){
		"echo-code": reply(0, "hi"),
	}}
	e := newTestEngine(t, sw, nil)

	got, err := e.Process(context.Background(), "run:\n\techo-code\n\n")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if string(got) != "hi" {
		t.Errorf("Process() = %q, want hi", got)
	}
	if sw.calls != 1 {
		t.Errorf("worker called %d times, want 1", sw.calls)
	}
}

func TestProcess_PureScripts(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"empty", "", ""},
		{"blank lines", "\n\n\n", ""},
		{"string appends terminator", `string "a b"`, "a b\x00"},
		{"data decodes hex", `data "41 42"`, "AB"},
		{"seed wraps", "seed 257", "\x01"},
		{"negative seed", "seed -1", "\xff"},
		{"seed beyond int64", "seed 99999999999999999999", "\xff"},
		{"drop clears", "string x\ndrop\nstring y", "y\x00"},
		{"hex escapes control bytes", "seed 1\nstring A\nhex", "01A00"},
		{"blank lines between commands", "string a\n\n\nstring b\n", "a\x00b\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw := &stubWorker{}
			got, err := newTestEngine(t, sw, nil).Process(context.Background(), tt.script)
			if err != nil {
				t.Fatalf("Process(%q) error = %v", tt.script, err)
			}
			if string(got) != tt.want {
				t.Errorf("Process(%q) = %q, want %q", tt.script, got, tt.want)
			}
			if sw.calls != 0 {
				t.Errorf("pure script invoked the worker %d times", sw.calls)
			}
		})
	}
}

func TestProcess_ParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		kind   failure.Kind
	}{
		{"unclosed quote", `string "abc`, failure.KindLex},
		{"lone hex digit", "data 4", failure.KindLex},
		{"unknown shape", "string a b c d e", failure.KindDispatch},
		{"keyword alone", "run", failure.KindDispatch},
		{"seed not a number", "seed x", failure.KindDispatch},
		{"late error aborts before execution", "run first\nstring \"open", failure.KindLex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw := &stubWorker{}
			got, err := newTestEngine(t, sw, nil).Process(context.Background(), tt.script)
			if !failure.Is(err, tt.kind) {
				t.Fatalf("Process() error = %v, want kind %s", err, tt.kind)
			}
			if got != nil {
				t.Errorf("Process() output = %q, want nil", got)
			}
			if sw.calls != 0 {
				t.Error("worker invoked although parsing failed")
			}
			fe, _ := failure.As(err)
			if fe.Phase() != failure.PhaseParse {
				t.Errorf("Phase() = %v, want parse", fe.Phase())
			}
		})
	}
}

func TestProcess_WorkerFailureEscalation(t *testing.T) {
	sw := &stubWorker{answers: map[string]func(worker.Invocation) (*worker.Result, error){
		"hive/broken.tm": reply(2, "partial"),
		formatter: func(inv worker.Invocation) (*worker.Result, error) {
			return &worker.Result{Stdout: []byte(fmt.Sprintf("code %d", inv.Input[0]))}, nil
		},
	}}
	e := newTestEngine(t, sw, nil)

	got, err := e.Process(context.Background(), "string in\nscript broken\nstring never")
	if !failure.Is(err, failure.KindWorker) {
		t.Fatalf("Process() error = %v, want worker failure", err)
	}
	if got != nil {
		t.Errorf("partial output leaked: %q", got)
	}
	fe, _ := failure.As(err)
	if string(fe.Text) != "code 2" || fe.ExitCode != 2 || fe.Step != 1 {
		t.Errorf("failure = %+v", fe)
	}
}

func TestProcess_FallbackFailure(t *testing.T) {
	sw := &stubWorker{answers: map[string]func(worker.Invocation) (*worker.Result, error){
		"hive/broken.tm": reply(3, ""),
		formatter:        reply(1, ""),
	}}

	_, err := newTestEngine(t, sw, nil).Process(context.Background(), "script broken")
	if !failure.Is(err, failure.KindFallback) {
		t.Fatalf("Process() error = %v, want fallback failure", err)
	}
	if !strings.Contains(err.Error(), "return code 3") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestProcess_TimeoutYieldsEmptyStep(t *testing.T) {
	sw := &stubWorker{answers: map[string]func(worker.Invocation) (*worker.Result, error){
		"hive/slow.tm": func(worker.Invocation) (*worker.Result, error) {
			return nil, fmt.Errorf("slow: %w", worker.ErrTimeout)
		},
	}}
	e := newTestEngine(t, sw, nil)

	res, err := e.Run(context.Background(), "string a\nscript slow\nstring b", RunOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if string(res.Output) != "b\x00" {
		t.Errorf("Output = %q, want b\\x00", res.Output)
	}
	if len(res.Report.Timeouts) != 1 || !res.Report.Steps[1].TimedOut {
		t.Errorf("timeout not reported: %+v", res.Report)
	}
}

func TestRun_InitialInput(t *testing.T) {
	res, err := newTestEngine(t, &stubWorker{}, nil).Run(context.Background(), "hex", RunOptions{Input: []byte{0x7f}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if string(res.Output) != "7F" {
		t.Errorf("Output = %q, want 7F", res.Output)
	}
}

func TestRun_RecordsHistory(t *testing.T) {
	hist, err := store.NewSQLiteRunStore(store.SQLiteRunConfig{Path: filepath.Join(t.TempDir(), "history.db")})
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	e := newTestEngine(t, &stubWorker{}, func(o *Options) {
		o.History = hist
		o.MaxStoredOutput = 2
	})
	ctx := context.Background()

	ok, err := e.Run(ctx, "string abc", RunOptions{SourceName: "greet", Metadata: map[string]interface{}{"origin": "test"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	bad, err := e.Run(ctx, "bogus a b c d", RunOptions{SourceName: "greet"})
	if err == nil {
		t.Fatal("Run() expected dispatch error")
	}
	if bad.RunID == "" {
		t.Error("failed run has no ID")
	}

	got, err := hist.Get(ctx, ok.RunID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != store.RunStatusOK || string(got.Output) != "ab" || got.Commands != 1 {
		t.Errorf("recorded run = %+v", got)
	}
	if got.Metadata["origin"] != "test" {
		t.Errorf("metadata = %v", got.Metadata)
	}

	failed, err := hist.Get(ctx, bad.RunID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if failed.Status != store.RunStatusFailed || failed.ErrorKind != "dispatch" {
		t.Errorf("failed run = %+v", failed)
	}

	runs, err := hist.List(ctx, store.RunFilter{SourceName: "greet"})
	if err != nil || len(runs) != 2 {
		t.Errorf("List() = %d runs, %v", len(runs), err)
	}
}

func TestParse_Cache(t *testing.T) {
	e := newTestEngine(t, &stubWorker{}, func(o *Options) {
		o.Cache = &cache.Config{MaxItems: 8, TTL: time.Minute}
	})

	for i := 0; i < 3; i++ {
		if err := e.Validate("string a\nhex"); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
	}
	stats := e.CacheStats()
	if stats["parsed_hits"] != int64(2) {
		t.Errorf("parsed_hits = %v, want 2", stats["parsed_hits"])
	}

	clock := int64(0)
	e2 := newTestEngine(t, &stubWorker{}, func(o *Options) {
		o.Cache = &cache.Config{MaxItems: 8, TTL: time.Minute}
		o.Clock = func() time.Time {
			clock++
			return time.Unix(0, clock)
		}
	})
	first, _ := e2.Process(context.Background(), "seed")
	second, _ := e2.Process(context.Background(), "seed")
	if string(first) == string(second) {
		t.Errorf("clock seeded script served from cache: %q == %q", first, second)
	}
}

func TestNew_NegativeTimeout(t *testing.T) {
	if _, err := New(Options{Logger: hmlog.Discard(), Timeout: -time.Second}); err == nil {
		t.Error("New() accepted a negative timeout")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Worker.Env = map[string]string{"B": "2", "A": "1"}
	cfg.Parser.DefaultArgs = "-q"

	opts := OptionsFromConfig(cfg, hmlog.Discard())
	if opts.Executable != "termite-worker" || opts.Timeout != 5*time.Second {
		t.Errorf("worker options = %+v", opts)
	}
	if len(opts.Env) != 2 || opts.Env[0] != "A=1" {
		t.Errorf("Env = %v", opts.Env)
	}
	if opts.Cache == nil || opts.Cache.MaxItems != 256 {
		t.Errorf("Cache = %+v", opts.Cache)
	}
	if opts.DefaultArgs != "-q" {
		t.Errorf("DefaultArgs = %q", opts.DefaultArgs)
	}

	cfg.Cache.Enabled = false
	if OptionsFromConfig(cfg, nil).Cache != nil {
		t.Error("disabled cache still configured")
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		output []byte
		err    error
		want   string
	}{
		{"empty", nil, nil, "[no output]"},
		{"text", []byte("hi"), nil, "hi"},
		{"latin1", []byte{0x48, 0xe9}, nil, "Hé"},
		{"error", nil, errors.New("boom"), "[error: boom]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.output, tt.err); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := RenderEscaped([]byte("a\x00b\n"), nil); got != "a00b\n" {
		t.Errorf("RenderEscaped() = %q", got)
	}
}
