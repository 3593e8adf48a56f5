// File: error_test.go
// Title: Error Module Tests
// Description: Tests for error creation, wrapping, codes, severity and metadata.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with comprehensive test coverage
// - 2026-10-19 v0.2.0: Chain-aware code lookup and arithmetic code tests

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	msg := "test error message"
	err := New(msg)

	if err == nil {
		t.Fatal("New() returned nil")
	}
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
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		message  string
		wantNil  bool
		wantMsg  string
		wantCode Code
	}{
		{
			name:    "wrap nil error",
			err:     nil,
			message: "wrapper message",
			wantNil: true,
		},
		{
			name:     "wrap standard error",
			err:      errors.New("original error"),
			message:  "wrapper message",
			wantMsg:  "wrapper message: original error",
			wantCode: CodeUnknown,
		},
		{
			name:     "wrap structured error",
			err:      New("denominator is zero").WithCode(CodeDivisionByZero),
			message:  "parse failed",
			wantMsg:  "parse failed: denominator is zero",
			wantCode: CodeDivisionByZero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, tt.message)
			if tt.wantNil {
				if wrapped != nil {
					t.Errorf("Wrap() = %v, want nil", wrapped)
				}
				return
			}
			if wrapped.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", wrapped.Error(), tt.wantMsg)
			}
			if wrapped.Code() != tt.wantCode {
				t.Errorf("Code() = %v, want %v", wrapped.Code(), tt.wantCode)
			}
			if !errors.Is(wrapped, tt.err) {
				t.Error("errors.Is() should find the wrapped cause")
			}
		})
	}
}

func TestWrapInheritsDetails(t *testing.T) {
	inner := New("overflow").WithCode(CodeOverflow).WithDetail("operand", "9223372036854775807")
	outer := Wrap(inner, "evaluate failed")

	if v, ok := outer.Detail("operand"); !ok || v != "9223372036854775807" {
		t.Errorf("Detail(operand) = %v, %v; want inherited value", v, ok)
	}
	if outer.Severity() != SeverityLow {
		t.Errorf("Severity() = %v, want %v", outer.Severity(), SeverityLow)
	}
}

func TestWithCodeSetsSeverity(t *testing.T) {
	err := New("store down").WithCode(CodeStorageError)
	if err.Severity() != SeverityHigh {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityHigh)
	}

	explicit := New("store down").WithSeverity(SeverityCritical).WithCode(CodeStorageError)
	if explicit.Severity() != SeverityCritical {
		t.Errorf("explicit Severity() = %v, want %v", explicit.Severity(), SeverityCritical)
	}
}

func TestDetailsAreCopied(t *testing.T) {
	err := New("x").WithDetails(map[string]interface{}{"a": 1, "b": 2})
	details := err.Details()
	details["a"] = 99

	if v, _ := err.Detail("a"); v != 1 {
		t.Errorf("Details() must return a copy, got a=%v", v)
	}
}

func TestHasCodeThroughChain(t *testing.T) {
	base := New("zero denominator").WithCode(CodeDivisionByZero)
	viaFmt := fmt.Errorf("calculate: %w", base)

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"direct", base, CodeDivisionByZero, true},
		{"through fmt wrap", viaFmt, CodeDivisionByZero, true},
		{"other code", viaFmt, CodeOverflow, false},
		{"standard error", errors.New("plain"), CodeDivisionByZero, false},
		{"nil", nil, CodeDivisionByZero, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCode(tt.err, tt.code); got != tt.want {
				t.Errorf("HasCode() = %v, want %v", got, tt.want)
			}
		})
	}

	if GetCode(viaFmt) != CodeDivisionByZero {
		t.Errorf("GetCode() = %v, want %v", GetCode(viaFmt), CodeDivisionByZero)
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("GetCode() of a standard error should be CodeUnknown")
	}
	if GetSeverity(errors.New("plain")) != SeverityMedium {
		t.Error("GetSeverity() of a standard error should be SeverityMedium")
	}
}

func TestRootCause(t *testing.T) {
	root := errors.New("root")
	err := Wrap(Wrap(root, "middle"), "top")

	if err.RootCause() != root {
		t.Errorf("RootCause() = %v, want %v", err.RootCause(), root)
	}
}

func TestString(t *testing.T) {
	err := New("bad fraction").
		WithCode(CodeParseError).
		WithOperation("rational.parse").
		WithRequestID("req-1").
		WithDetail("input", "3/")

	s := err.String()
	for _, want := range []string{"Error: bad fraction", "Code: PARSE_ERROR", "Operation: rational.parse", "RequestID: req-1", "input=3/"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q in:\n%s", want, s)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	err := Wrap(errors.New("cause"), "message").
		WithCode(CodeOverflow).
		WithOperation("mathx.mul").
		WithDetail("left", 3)

	data, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		t.Fatalf("json.Marshal() error = %v", marshalErr)
	}

	var decoded map[string]interface{}
	if jsonErr := json.Unmarshal(data, &decoded); jsonErr != nil {
		t.Fatalf("json.Unmarshal() error = %v", jsonErr)
	}

	if decoded["code"] != "OVERFLOW" {
		t.Errorf("code = %v, want OVERFLOW", decoded["code"])
	}
	if decoded["operation"] != "mathx.mul" {
		t.Errorf("operation = %v, want mathx.mul", decoded["operation"])
	}
	if decoded["cause"] != "cause" {
		t.Errorf("cause = %v, want cause", decoded["cause"])
	}
}

func TestCodeCatalogue(t *testing.T) {
	tests := []struct {
		code     Code
		category string
		status   int
		severity Severity
	}{
		{CodeDivisionByZero, "arithmetic", http.StatusUnprocessableEntity, SeverityLow},
		{CodeOverflow, "arithmetic", http.StatusUnprocessableEntity, SeverityLow},
		{CodeNonTerminatingDecimal, "arithmetic", http.StatusUnprocessableEntity, SeverityLow},
		{CodeEmptyInput, "arithmetic", http.StatusBadRequest, SeverityLow},
		{CodeInsufficientInputs, "arithmetic", http.StatusBadRequest, SeverityLow},
		{CodeParseError, "parsing", http.StatusBadRequest, SeverityLow},
		{CodeInvalidConfig, "configuration", http.StatusInternalServerError, SeverityHigh},
		{CodeRateLimited, "service", http.StatusTooManyRequests, SeverityLow},
		{CodeStorageError, "service", http.StatusServiceUnavailable, SeverityHigh},
		{CodeServiceUnavailable, "service", http.StatusServiceUnavailable, SeverityCritical},
		{CodeUnknown, "generic", http.StatusInternalServerError, SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			if !tt.code.IsValid() {
				t.Error("IsValid() = false")
			}
			if got := tt.code.Category(); got != tt.category {
				t.Errorf("Category() = %q, want %q", got, tt.category)
			}
			if got := tt.code.HTTPStatus(); got != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.status)
			}
			if got := GetSeverityFromCode(tt.code); got != tt.severity {
				t.Errorf("GetSeverityFromCode() = %v, want %v", got, tt.severity)
			}
		})
	}

	if Code("NOT_A_CODE").IsValid() {
		t.Error("unknown code should not be valid")
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
		alert    bool
	}{
		{SeverityLow, "low", false},
		{SeverityMedium, "medium", false},
		{SeverityHigh, "high", true},
		{SeverityCritical, "critical", true},
		{Severity(42), "unknown", true},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if got := tt.severity.ShouldAlert(); got != tt.alert {
			t.Errorf("%s ShouldAlert() = %v, want %v", tt.want, got, tt.alert)
		}
	}
}
