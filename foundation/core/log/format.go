// File: format.go
// Title: Log Output Formatters
// Description: JSON, text and colored console formatters. Fields are always
//              written in sorted key order so log lines are stable.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with multiple formats
// - 2026-10-18 v0.2.0: Logfmt removed, deterministic field order

package log

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format represents different log output formats
type Format int

const (
	// FormatJSON outputs logs in JSON format
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format
	FormatText
	// FormatConsole outputs colored logs for terminal display
	FormatConsole
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	case FormatConsole:
		return "console"
	default:
		return "unknown"
	}
}

// ParseFormat parses a string into a log format
func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	case "console", "color", "colour":
		return FormatConsole, nil
	default:
		return FormatText, &ParseError{Input: format, Type: "format"}
	}
}

// Formatter renders an entry into bytes
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// GetFormatter returns the formatter for the given format
func GetFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatConsole:
		return &ConsoleFormatter{}
	default:
		return &TextFormatter{}
	}
}

// JSONFormatter formats logs as one JSON object per line
type JSONFormatter struct{}

// Format implements Formatter
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Fields)+6)
	for k, v := range entry.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}

	data["timestamp"] = entry.Timestamp.Format(time.RFC3339Nano)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message
	if entry.Logger != "" {
		data["logger"] = entry.Logger
	}
	if entry.RequestID != "" {
		data["request_id"] = entry.RequestID
	}
	if entry.Error != nil {
		data["error"] = entry.Error.Error()
	}
	if entry.Caller != nil {
		data["caller"] = fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line)
	}

	// encoding/json sorts map keys
	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// TextFormatter formats logs as single human readable lines
type TextFormatter struct{}

// Format implements Formatter
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var b strings.Builder
	b.WriteString(entry.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"))
	b.WriteString(" [")
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteString("]")
	if entry.Logger != "" {
		b.WriteString(" ")
		b.WriteString(entry.Logger)
		b.WriteString(":")
	}
	b.WriteString(" ")
	b.WriteString(entry.Message)
	writeFields(&b, entry)
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// ConsoleFormatter formats logs with ANSI colors for terminals
type ConsoleFormatter struct{}

// Format implements Formatter
func (f *ConsoleFormatter) Format(entry *Entry) ([]byte, error) {
	var b strings.Builder
	b.WriteString("\033[90m")
	b.WriteString(entry.Timestamp.Format("15:04:05.000"))
	b.WriteString("\033[0m ")
	b.WriteString(entry.Level.Color())
	b.WriteString(entry.Level.ShortString())
	b.WriteString("\033[0m ")
	if entry.Logger != "" {
		b.WriteString("\033[1m")
		b.WriteString(entry.Logger)
		b.WriteString("\033[0m ")
	}
	b.WriteString(entry.Message)
	writeFields(&b, entry)
	b.WriteString("\n")
	return []byte(b.String()), nil
}

func writeFields(b *strings.Builder, entry *Entry) {
	if entry.RequestID != "" {
		fmt.Fprintf(b, " request_id=%s", entry.RequestID)
	}
	for _, k := range entry.Fields.Keys() {
		fmt.Fprintf(b, " %s=%s", k, formatValue(entry.Fields[k]))
	}
	if entry.Error != nil {
		fmt.Fprintf(b, " error=%q", entry.Error.Error())
	}
	if entry.Caller != nil {
		fmt.Fprintf(b, " caller=%s:%d", entry.Caller.File, entry.Caller.Line)
	}
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		if val == "" || strings.ContainsAny(val, " \t\n\"=") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case error:
		return fmt.Sprintf("%q", val.Error())
	case time.Duration:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
