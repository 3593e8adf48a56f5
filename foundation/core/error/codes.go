// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error code catalogue used across euklid. Codes are stable
//              strings so they can travel over HTTP, WebSocket and gRPC unchanged.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with platform error codes
// - 2026-10-19 v0.2.0: Arithmetic and parsing codes, platform codes removed

package error

import "net/http"

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Arithmetic
	CodeDivisionByZero        Code = "DIVISION_BY_ZERO"
	CodeOverflow              Code = "OVERFLOW"
	CodeEmptyInput            Code = "EMPTY_INPUT"
	CodeInsufficientInputs    Code = "INSUFFICIENT_INPUTS"
	CodeNonTerminatingDecimal Code = "NON_TERMINATING_DECIMAL"

	// Parsing
	CodeParseError    Code = "PARSE_ERROR"
	CodeInvalidFormat Code = "INVALID_FORMAT"

	// Configuration and environment
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Service and storage
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeStorageError       Code = "STORAGE_ERROR"

	// Validation
	CodeValidationFailed Code = "VALIDATION_FAILED"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout,
		CodeDivisionByZero, CodeOverflow, CodeEmptyInput, CodeInsufficientInputs, CodeNonTerminatingDecimal,
		CodeParseError, CodeInvalidFormat,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig,
		CodeServiceUnavailable, CodeRateLimited, CodeStorageError,
		CodeValidationFailed:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeDivisionByZero, CodeOverflow, CodeEmptyInput, CodeInsufficientInputs, CodeNonTerminatingDecimal:
		return "arithmetic"
	case CodeParseError, CodeInvalidFormat:
		return "parsing"
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return "configuration"
	case CodeServiceUnavailable, CodeRateLimited, CodeStorageError:
		return "service"
	case CodeValidationFailed, CodeInvalidInput:
		return "validation"
	default:
		return "generic"
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error code.
// Every arithmetic failure is deterministic in its input, so all of them
// map to a client error.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeValidationFailed, CodeParseError, CodeInvalidFormat,
		CodeEmptyInput, CodeInsufficientInputs:
		return http.StatusBadRequest
	case CodeDivisionByZero, CodeOverflow, CodeNonTerminatingDecimal:
		return http.StatusUnprocessableEntity
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusRequestTimeout
	case CodeServiceUnavailable, CodeStorageError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
