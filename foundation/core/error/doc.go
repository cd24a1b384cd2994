// Package error provides structured error handling for hivemind.
//
// Package: error
// Title: hivemind Error Handling Framework
// Description: Structured errors with codes, severity, operation and detail
//              metadata. Used by the configuration, history and script
//              library layers, and as the code mapping target for the
//              interpreter's closed failure taxonomy.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-18 v0.2.0: Interpreter codes replace TCOL codes, i18n hooks removed
//
// Usage:
//
//	err := error.Wrap(ioErr, "failed to open history database").
//		WithCode(error.CodeDatabaseError).
//		WithOperation("store.Open").
//		WithDetail("path", path)
//
//	if error.HasCode(err, error.CodeDatabaseError) {
//		// handle storage problems
//	}
package error
