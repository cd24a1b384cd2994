// File: severity.go
// Title: Error Severity Levels
// Description: Severity classification used to pick log levels and to decide
//              whether an error is worth surfacing prominently.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-18 v0.2.0: Mapping for script and worker codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates a caller mistake, e.g. a malformed script
	SeverityLow Severity = iota

	// SeverityMedium indicates a failure with an obvious recovery path
	SeverityMedium

	// SeverityHigh indicates a failing dependency such as the database
	SeverityHigh

	// SeverityCritical indicates a broken error-reporting path
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeErrorFormatterFailure:
		return SeverityCritical

	case CodeDatabaseError, CodeWorkerUnavailable, CodeInternal:
		return SeverityHigh

	case CodeWorkerFailure, CodeWorkerTimeout, CodeIOError, CodeTimeout,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return SeverityMedium

	case CodeScriptSyntax, CodeScriptDispatch, CodeInvalidInput, CodeNotFound,
		CodeValidationFailed, CodeInvalidLength, CodePathOutsideRoot, CodeAlreadyExists:
		return SeverityLow

	default:
		return SeverityMedium
	}
}
