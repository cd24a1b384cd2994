// Package log provides structured logging for hivemind.
//
// Package: log
// Title: hivemind Structured Logging
// Description: Leveled, structured logging with persistent context fields,
//              request IDs, pluggable formatters and operation timers. Every
//              interpreter component derives its own logger with a
//              "component" field from the one passed in its Options.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2026-10-18 v0.2.0: Async buffering and logfmt output removed, fields sorted
//
// Usage:
//
//	logger := log.NewWithConfig(log.Config{Level: log.LevelDebug, Format: log.FormatText})
//	logger = logger.WithField("component", "hivemind-executor")
//	logger.Info("Command applied", log.Fields{"index": 2, "kind": "string"})
//
//	timer := logger.StartTimer("script_run")
//	defer timer.Stop()
package log
