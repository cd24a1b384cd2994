package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	hmlog "github.com/msto63/hivemind/foundation/core/log"
)

func TestLevel_Constants(t *testing.T) {
	if LevelDebug != 0 {
		t.Errorf("LevelDebug = %d, want 0", LevelDebug)
	}
	if LevelInfo != 1 {
		t.Errorf("LevelInfo = %d, want 1", LevelInfo)
	}
	if LevelWarn != 2 {
		t.Errorf("LevelWarn = %d, want 2", LevelWarn)
	}
	if LevelError != 3 {
		t.Errorf("LevelError = %d, want 3", LevelError)
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logger := New("hivemind-scripts")

	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.Name() != "hivemind-scripts" {
		t.Errorf("Name() = %v, want hivemind-scripts", logger.Name())
	}
}

func TestLogger_WithLevel(t *testing.T) {
	var buf bytes.Buffer
	base := Wrap(NewLogger(LoggerConfig{ServiceName: "test", Level: "debug", Output: &buf}), "watch")

	quiet := base.WithLevel(LevelError)
	if quiet.Name() != "watch" {
		t.Errorf("name should be preserved: got %v", quiet.Name())
	}

	quiet.Info("hidden")
	quiet.Error("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry passed an error-level logger: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("error entry missing: %q", out)
	}
}

func TestWrap_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := Wrap(NewLogger(LoggerConfig{ServiceName: "hivemind", Level: "debug", Output: &buf}), "hivemind-watch")

	logger.Info("Script changed", "name", "std/echo", "runs", 3, "orphan")

	out := buf.String()
	for _, want := range []string{"[INFO]", "hivemind:", "Script changed", "component=hivemind-watch", "name=std/echo", "runs=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "orphan") {
		t.Errorf("orphan key leaked into output: %q", out)
	}
}

func TestWrap_NilDiscards(t *testing.T) {
	logger := Wrap(nil, "x")
	logger.Error("nothing happens")
	if logger.IsLevelEnabled(hmlog.LevelFatal) {
		t.Error("nil-wrapped logger should discard everything")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected hmlog.Level
	}{
		{"trace", hmlog.LevelTrace},
		{"debug", hmlog.LevelDebug},
		{"info", hmlog.LevelInfo},
		{"warn", hmlog.LevelWarn},
		{"warning", hmlog.LevelWarn},
		{"error", hmlog.LevelError},
		{"invalid", hmlog.LevelInfo},
		{"", hmlog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected hmlog.Format
	}{
		{"json", hmlog.FormatJSON},
		{"text", hmlog.FormatText},
		{"console", hmlog.FormatConsole},
		{"xml", hmlog.FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseFormat(tt.input); got != tt.expected {
				t.Errorf("parseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("hivemind")

	if cfg.ServiceName != "hivemind" {
		t.Errorf("ServiceName = %v, want hivemind", cfg.ServiceName)
	}
	if cfg.Level != "info" {
		t.Errorf("Level = %v, want info", cfg.Level)
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %v, want text", cfg.Format)
	}
}

func TestNewLogger_JSONAndAdditionalOutputs(t *testing.T) {
	var primary, extra bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName:       "hivemind",
		Level:             "info",
		Format:            "json",
		Output:            &primary,
		AdditionalOutputs: []io.Writer{&extra},
	})
	logger.Debug("filtered")
	logger.Info("kept")

	if strings.Contains(primary.String(), "filtered") {
		t.Error("debug entry should be filtered at info level")
	}
	if !strings.HasPrefix(primary.String(), "{") {
		t.Errorf("json format expected, got %q", primary.String())
	}
	if primary.String() != extra.String() {
		t.Errorf("additional output = %q, want %q", extra.String(), primary.String())
	}
}

func TestNewLogger_Off(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{ServiceName: "hivemind", Level: "OFF", Output: &buf})
	logger.Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("level off should write nothing, got %q", buf.String())
	}
}

func TestOpenLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hivemind.log")

	f, err := OpenLogFile(path)
	if err != nil {
		t.Fatalf("OpenLogFile() error = %v", err)
	}

	var console bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName:       "hivemind",
		Output:            &console,
		AdditionalOutputs: []io.Writer{f},
	})
	logger.Info("to file")
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file = %q, want the entry", data)
	}
	if console.String() != string(data) {
		t.Errorf("console = %q, file = %q", console.String(), data)
	}
}

func TestToFields(t *testing.T) {
	fields := toFields()
	if fields != nil {
		t.Error("toFields() with no args should return nil")
	}

	fields = toFields("key1", "value1", "key2", 42)
	if fields == nil {
		t.Fatal("toFields() returned nil")
	}
	if fields["key1"] != "value1" {
		t.Errorf("fields[key1] = %v, want value1", fields["key1"])
	}
	if fields["key2"] != 42 {
		t.Errorf("fields[key2] = %v, want 42", fields["key2"])
	}

	fields = toFields(123, "value")
	if len(fields) != 0 {
		t.Errorf("Non-string key should be skipped, got %v fields", len(fields))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Wrap(hmlog.Discard(), "benchmark")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
	}
}
