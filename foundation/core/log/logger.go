// File: logger.go
// Title: Core Logger Implementation
// Description: Thread-safe structured logger. Loggers are immutable values;
//              With* methods return a configured copy sharing the output.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2026-10-18 v0.2.0: Synchronous writes only, error fields from hivemind errors

package log

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	hmerror "github.com/msto63/hivemind/foundation/core/error"
)

// Logger is a structured logger with persistent context fields
type Logger struct {
	level      Level
	formatter  Formatter
	output     io.Writer
	name       string
	fields     Fields
	requestID  string
	withCaller bool
	callerSkip int
	mu         *sync.Mutex
}

// Config contains the construction options for a Logger
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	Name       string
	WithCaller bool
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:  DefaultLevel(),
		Format: FormatText,
		Output: os.Stderr,
	}
}

var (
	defaultLogger = New()
	defaultMu     sync.RWMutex
)

// New creates a logger with the default configuration
func New() *Logger {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a logger from the given configuration
func NewWithConfig(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}
	return &Logger{
		level:      config.Level,
		formatter:  GetFormatter(config.Format),
		output:     config.Output,
		name:       config.Name,
		fields:     make(Fields),
		withCaller: config.WithCaller,
		callerSkip: 3,
		mu:         &sync.Mutex{},
	}
}

// Discard returns a logger that writes nothing
func Discard() *Logger {
	return NewWithConfig(Config{Level: LevelFatal + 1, Output: io.Discard})
}

// WithLevel returns a copy with a different minimum level
func (l *Logger) WithLevel(level Level) *Logger {
	c := l.clone()
	c.level = level
	return c
}

// WithFormat returns a copy using a different formatter
func (l *Logger) WithFormat(format Format) *Logger {
	c := l.clone()
	c.formatter = GetFormatter(format)
	return c
}

// WithOutput returns a copy writing to a different destination
func (l *Logger) WithOutput(output io.Writer) *Logger {
	c := l.clone()
	c.output = output
	c.mu = &sync.Mutex{}
	return c
}

// WithName returns a copy with the given logger name
func (l *Logger) WithName(name string) *Logger {
	c := l.clone()
	c.name = name
	return c
}

// WithField returns a copy carrying an additional persistent field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	c := l.clone()
	c.fields[key] = value
	return c
}

// WithFields returns a copy carrying additional persistent fields
func (l *Logger) WithFields(fields Fields) *Logger {
	c := l.clone()
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

// WithRequestID returns a copy tagged with a request (run) ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	c := l.clone()
	c.requestID = requestID
	return c
}

// WithCaller returns a copy that records caller information
func (l *Logger) WithCaller(enabled bool) *Logger {
	c := l.clone()
	c.withCaller = enabled
	return c
}

// Trace logs a trace message
func (l *Logger) Trace(message string, fields ...Fields) {
	l.log(LevelTrace, message, mergeFields(fields), nil)
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields ...Fields) {
	l.log(LevelDebug, message, mergeFields(fields), nil)
}

// Info logs an informational message
func (l *Logger) Info(message string, fields ...Fields) {
	l.log(LevelInfo, message, mergeFields(fields), nil)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields ...Fields) {
	l.log(LevelWarn, message, mergeFields(fields), nil)
}

// Error logs an error message
func (l *Logger) Error(message string, fields ...Fields) {
	l.log(LevelError, message, mergeFields(fields), nil)
}

// Fatal logs a fatal message and exits the process
func (l *Logger) Fatal(message string, fields ...Fields) {
	l.log(LevelFatal, message, mergeFields(fields), nil)
	os.Exit(1)
}

// ErrorWithErr logs an error message together with an error value
func (l *Logger) ErrorWithErr(message string, err error, fields ...Fields) {
	l.log(LevelError, message, mergeFields(fields), err)
}

// WarnWithErr logs a warning message together with an error value
func (l *Logger) WarnWithErr(message string, err error, fields ...Fields) {
	l.log(LevelWarn, message, mergeFields(fields), err)
}

// LogError logs an error at a level derived from its severity.
// Structured errors contribute their code, operation and details as fields.
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}

	var hmErr *hmerror.Error
	if !errors.As(err, &hmErr) {
		l.log(LevelError, err.Error(), nil, err)
		return
	}

	fields := Fields{
		"error_code":     string(hmErr.Code()),
		"error_severity": hmErr.Severity().String(),
	}
	if op := hmErr.Operation(); op != "" {
		fields["error_operation"] = op
	}
	for k, v := range hmErr.Details() {
		fields["error_"+k] = v
	}

	level := LevelError
	switch hmErr.Severity() {
	case hmerror.SeverityLow:
		level = LevelInfo
	case hmerror.SeverityMedium:
		level = LevelWarn
	}
	l.log(level, hmErr.Message(), fields, err)
}

// StartTimer starts a timer for the named operation
func (l *Logger) StartTimer(operation string) *Timer {
	return NewTimer(l, operation)
}

// IsLevelEnabled reports whether messages at level would be written
func (l *Logger) IsLevelEnabled(level Level) bool {
	return level.ShouldLog(l.level)
}

// GetLevel returns the minimum level of the logger
func (l *Logger) GetLevel() Level {
	return l.level
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.IsLevelEnabled(level) {
		return
	}

	entry := &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Logger:    l.name,
		RequestID: l.requestID,
		Fields:    l.fields.Merge(fields),
		Error:     err,
	}
	if l.withCaller {
		entry.Caller = l.getCaller()
	}

	data, fmtErr := l.formatter.Format(entry)
	if fmtErr != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.output.Write(data)
}

func (l *Logger) getCaller() *CallerInfo {
	pc, file, line, ok := runtime.Caller(l.callerSkip)
	if !ok {
		return nil
	}
	info := &CallerInfo{File: filepath.Base(file), Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		info.Function = fn.Name()
	}
	return info
}

func (l *Logger) clone() *Logger {
	fields := make(Fields, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return &Logger{
		level:      l.level,
		formatter:  l.formatter,
		output:     l.output,
		name:       l.name,
		fields:     fields,
		requestID:  l.requestID,
		withCaller: l.withCaller,
		callerSkip: l.callerSkip,
		mu:         l.mu,
	}
}

func mergeFields(fields []Fields) Fields {
	switch len(fields) {
	case 0:
		return nil
	case 1:
		return fields[0]
	}
	merged := make(Fields)
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}

// GetDefault returns the process-wide default logger
func GetDefault() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide default logger
func SetDefault(logger *Logger) {
	if logger == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}
