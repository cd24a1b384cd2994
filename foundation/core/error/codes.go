// File: codes.go
// Title: Error Code Definitions
// Description: Standardized error codes for classifying failures across
//              hivemind: script parsing, worker execution, configuration,
//              storage and validation.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-18 v0.2.0: Script and worker codes, HTTP mapping dropped

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown       Code = "UNKNOWN"
	CodeInternal      Code = "INTERNAL"
	CodeNotFound      Code = "NOT_FOUND"
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeTimeout       Code = "TIMEOUT"
	CodeAlreadyExists Code = "ALREADY_EXISTS"

	// Storage
	CodeDatabaseError Code = "DATABASE_ERROR"
	CodeIOError       Code = "IO_ERROR"

	// Script language
	CodeScriptSyntax   Code = "SCRIPT_SYNTAX"
	CodeScriptDispatch Code = "SCRIPT_DISPATCH"

	// Worker process
	CodeWorkerFailure         Code = "WORKER_FAILURE"
	CodeErrorFormatterFailure Code = "ERROR_FORMATTER_FAILURE"
	CodeWorkerTimeout         Code = "WORKER_TIMEOUT"
	CodeWorkerUnavailable     Code = "WORKER_UNAVAILABLE"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Validation
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeInvalidLength    Code = "INVALID_LENGTH"
	CodePathOutsideRoot  Code = "PATH_OUTSIDE_ROOT"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout, CodeAlreadyExists,
		CodeDatabaseError, CodeIOError,
		CodeScriptSyntax, CodeScriptDispatch,
		CodeWorkerFailure, CodeErrorFormatterFailure, CodeWorkerTimeout, CodeWorkerUnavailable,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig,
		CodeValidationFailed, CodeInvalidLength, CodePathOutsideRoot:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeDatabaseError, CodeIOError:
		return "storage"
	case CodeScriptSyntax, CodeScriptDispatch:
		return "script"
	case CodeWorkerFailure, CodeErrorFormatterFailure, CodeWorkerTimeout, CodeWorkerUnavailable:
		return "worker"
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return "configuration"
	case CodeValidationFailed, CodeInvalidLength, CodePathOutsideRoot:
		return "validation"
	default:
		return "generic"
	}
}

// ExitStatus returns the process exit status the CLI uses for this code
func (c Code) ExitStatus() int {
	switch c.Category() {
	case "script":
		return 2
	case "worker":
		return 3
	case "configuration":
		return 4
	default:
		return 1
	}
}
