// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating foundation loggers
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	hmlog "github.com/msto63/hivemind/foundation/core/log"
	"github.com/msto63/hivemind/foundation/utils/filex"
)

// LevelOff disables logging entirely when used as LoggerConfig.Level
const LevelOff = "off"

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error, fatal, off)
	Level string

	// Output format: "json", "text" or "console" (default: text)
	Format string

	// Output writer (default: os.Stderr, stdout carries pipeline output)
	Output io.Writer

	// Additional outputs (e.g. a log file)
	AdditionalOutputs []io.Writer

	// Caller adds file:line to every entry
	Caller bool
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "text",
	}
}

// NewLogger creates a new foundation logger
func NewLogger(cfg LoggerConfig) *hmlog.Logger {
	if strings.EqualFold(strings.TrimSpace(cfg.Level), LevelOff) {
		return hmlog.Discard().WithName(cfg.ServiceName)
	}

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return hmlog.NewWithConfig(hmlog.Config{
		Level:      parseLevel(cfg.Level),
		Format:     parseFormat(cfg.Format),
		Output:     output,
		Name:       cfg.ServiceName,
		WithCaller: cfg.Caller,
	})
}

// NewSimpleLogger creates a text logger at info level
func NewSimpleLogger(serviceName string) *hmlog.Logger {
	return NewLogger(DefaultLoggerConfig(serviceName))
}

// OpenLogFile opens path for appending, creating its directory first.
// The caller owns the returned file.
func OpenLogFile(path string) (*os.File, error) {
	if err := filex.EnsureDir(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

// parseLevel converts a string level to hmlog.Level, falling back to info
func parseLevel(level string) hmlog.Level {
	parsed, err := hmlog.ParseLevel(level)
	if err != nil {
		return hmlog.DefaultLevel()
	}
	return parsed
}

// parseFormat converts a string format to hmlog.Format, falling back to text
func parseFormat(format string) hmlog.Format {
	parsed, err := hmlog.ParseFormat(format)
	if err != nil {
		return hmlog.FormatText
	}
	return parsed
}

// Compatibility layer for code using key/value logging

// Logger wraps the foundation logger with key/value log methods
type Logger struct {
	*hmlog.Logger
	name string
}

// New creates a new key/value logger writing text to stderr
func New(name string) *Logger {
	return &Logger{
		Logger: NewSimpleLogger(name),
		name:   name,
	}
}

// Wrap adapts an existing foundation logger. A nil logger discards.
func Wrap(logger *hmlog.Logger, name string) *Logger {
	if logger == nil {
		logger = hmlog.Discard()
	}
	return &Logger{
		Logger: logger.WithField("component", name),
		name:   name,
	}
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// WithLevel returns a new logger at level
func (l *Logger) WithLevel(level Level) *Logger {
	hmLevel := hmlog.LevelInfo
	switch level {
	case LevelDebug:
		hmLevel = hmlog.LevelDebug
	case LevelInfo:
		hmLevel = hmlog.LevelInfo
	case LevelWarn:
		hmLevel = hmlog.LevelWarn
	case LevelError:
		hmLevel = hmlog.LevelError
	}

	return &Logger{
		Logger: l.Logger.WithLevel(hmLevel),
		name:   l.name,
	}
}

// Debug logs a debug message with key/value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key/value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key/value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key/value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields converts key/value pairs to hmlog.Fields. Non-string keys and a
// trailing orphan are dropped.
func toFields(keysAndValues ...interface{}) hmlog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(hmlog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
