// File: error_test.go
// Title: Error Module Tests
// Description: Tests for error creation, wrapping, codes and severity.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with comprehensive test coverage
// - 2026-10-18 v0.2.0: Cases for interpreter codes

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	msg := "test error message"
	err := New(msg)

	if err.Error() != msg {
		t.Errorf("Error() = %q, want %q", err.Error(), msg)
	}
	if err.Code() != CodeUnknown {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeUnknown)
	}
	if err.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityMedium)
	}
	if err.Timestamp().IsZero() {
		t.Error("Timestamp() should not be zero")
	}
	if len(err.StackTrace()) == 0 {
		t.Error("StackTrace() should not be empty")
	}
	if !strings.Contains(err.StackTrace()[0].Function, "TestNew") {
		t.Errorf("first frame = %q, want the calling test", err.StackTrace()[0].Function)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
		wantNil bool
		wantMsg string
	}{
		{
			name:    "wrap nil error",
			err:     nil,
			message: "context",
			wantNil: true,
		},
		{
			name:    "wrap standard error",
			err:     errors.New("disk full"),
			message: "failed to save script",
			wantMsg: "failed to save script: disk full",
		},
		{
			name:    "wrap structured error",
			err:     New("locked").WithCode(CodeDatabaseError),
			message: "failed to record run",
			wantMsg: "failed to record run: locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, tt.message)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Wrap() = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got.Error(), tt.wantMsg)
			}
			if !errors.Is(got, tt.err) {
				t.Error("wrapped error should match its cause with errors.Is")
			}
		})
	}
}

func TestWrap_InheritsCodeAndDetails(t *testing.T) {
	inner := New("no such table").
		WithCode(CodeDatabaseError).
		WithDetail("table", "runs")
	outer := Wrap(inner, "history query failed")

	if outer.Code() != CodeDatabaseError {
		t.Errorf("Code() = %v, want %v", outer.Code(), CodeDatabaseError)
	}
	if outer.Severity() != SeverityHigh {
		t.Errorf("Severity() = %v, want %v", outer.Severity(), SeverityHigh)
	}
	if outer.Details()["table"] != "runs" {
		t.Errorf("Details()[table] = %v, want runs", outer.Details()["table"])
	}
}

func TestWithCode_RespectsExplicitSeverity(t *testing.T) {
	err := New("boom").WithSeverity(SeverityLow).WithCode(CodeErrorFormatterFailure)
	if err.Severity() != SeverityLow {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityLow)
	}

	derived := New("boom").WithCode(CodeErrorFormatterFailure)
	if derived.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", derived.Severity(), SeverityCritical)
	}
}

func TestHasCodeAndGetCode(t *testing.T) {
	base := New("unclosed quote").WithCode(CodeScriptSyntax)
	chained := fmt.Errorf("parse: %w", base)

	if !HasCode(chained, CodeScriptSyntax) {
		t.Error("HasCode should find the code through fmt.Errorf wrapping")
	}
	if HasCode(chained, CodeWorkerFailure) {
		t.Error("HasCode reported an unrelated code")
	}
	if GetCode(chained) != CodeScriptSyntax {
		t.Errorf("GetCode() = %v, want %v", GetCode(chained), CodeScriptSyntax)
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("GetCode() on a foreign error should be CodeUnknown")
	}
	if GetSeverity(errors.New("plain")) != SeverityMedium {
		t.Error("GetSeverity() on a foreign error should be SeverityMedium")
	}
}

func TestCode_Category(t *testing.T) {
	tests := []struct {
		code Code
		want string
		exit int
	}{
		{CodeScriptSyntax, "script", 2},
		{CodeScriptDispatch, "script", 2},
		{CodeWorkerFailure, "worker", 3},
		{CodeErrorFormatterFailure, "worker", 3},
		{CodeConfigError, "configuration", 4},
		{CodeDatabaseError, "storage", 1},
		{CodeUnknown, "generic", 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Category(); got != tt.want {
				t.Errorf("Category() = %q, want %q", got, tt.want)
			}
			if got := tt.code.ExitStatus(); got != tt.exit {
				t.Errorf("ExitStatus() = %d, want %d", got, tt.exit)
			}
			if !tt.code.IsValid() {
				t.Errorf("IsValid() = false for %s", tt.code)
			}
		})
	}

	if Code("NOPE").IsValid() {
		t.Error("IsValid() = true for an unknown code")
	}
}

func TestMarshalJSON(t *testing.T) {
	err := Wrap(errors.New("exit status 2"), "worker failed").
		WithCode(CodeWorkerFailure).
		WithOperation("executor.invoke").
		WithDetail("exit_code", 2)

	data, mErr := json.Marshal(err)
	if mErr != nil {
		t.Fatalf("json.Marshal() error = %v", mErr)
	}

	var decoded map[string]interface{}
	if uErr := json.Unmarshal(data, &decoded); uErr != nil {
		t.Fatalf("json.Unmarshal() error = %v", uErr)
	}
	if decoded["code"] != string(CodeWorkerFailure) {
		t.Errorf("code = %v, want %v", decoded["code"], CodeWorkerFailure)
	}
	if decoded["operation"] != "executor.invoke" {
		t.Errorf("operation = %v", decoded["operation"])
	}
	if decoded["cause"] != "exit status 2" {
		t.Errorf("cause = %v", decoded["cause"])
	}
}

func TestString_SortsDetails(t *testing.T) {
	err := New("x").WithDetail("b", 2).WithDetail("a", 1)
	if !strings.Contains(err.String(), "Details: {a=1, b=2}") {
		t.Errorf("String() = %q, want sorted details", err.String())
	}
}
