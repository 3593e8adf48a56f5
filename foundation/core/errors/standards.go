// File: standards.go
// Title: Standard Error Constructors
// Description: Module identifiers and convenience constructors for the failures
//              the arithmetic engine and its front ends report.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation of standardized error patterns
// - 2026-10-19 v0.2.0: Arithmetic taxonomy constructors

package errors

import (
	"errors"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
)

// Module identifiers
const (
	ModuleMathx    = "mathx"
	ModuleRational = "rational"
	ModuleConfig   = "config"
	ModuleServer   = "server"
	ModuleStore    = "store"
	ModuleService  = "service"
)

// DivisionByZero creates an error for a zero divisor or zero denominator
func DivisionByZero(module, operation string) *mdwerror.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Message("division by zero").
		Code(mdwerror.CodeDivisionByZero).
		Build()
}

// Overflow creates an error for a result outside the int64 range
func Overflow(module, operation string, operands ...int64) *mdwerror.Error {
	b := NewErrorBuilder(module).
		Operation(operation).
		Message("integer overflow").
		Code(mdwerror.CodeOverflow)
	if len(operands) > 0 {
		b.Detail("operands", operands)
	}
	return b.Build()
}

// EmptyInput creates an error for an empty operand list or blank string
func EmptyInput(module, operation string) *mdwerror.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Message("empty input").
		Code(mdwerror.CodeEmptyInput).
		Build()
}

// InsufficientInputs creates an error for fewer inputs than required
func InsufficientInputs(module, operation string, got, min int) *mdwerror.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Messagef("at least %d inputs required, got %d", min, got).
		Code(mdwerror.CodeInsufficientInputs).
		Detail("got", got).
		Detail("min", min).
		Build()
}

// NonTerminating creates an error for a value without a finite decimal expansion
func NonTerminating(module, operation string, value string) *mdwerror.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Messagef("%s has no terminating decimal expansion", value).
		Code(mdwerror.CodeNonTerminatingDecimal).
		Detail("value", value).
		Build()
}

// ParseFailed wraps a parser failure, keeping the parser's error as cause
func ParseFailed(module, operation string, cause error) *mdwerror.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Message("parse failed").
		Cause(cause).
		Code(mdwerror.CodeParseError).
		Build()
}

// InvalidInput creates an error for invalid input parameters
func InvalidInput(module, operation string, input interface{}, expected string) *mdwerror.Error {
	return NewErrorBuilder(module).
		Operation(operation).
		Messagef("invalid input, expected %s", expected).
		Code(mdwerror.CodeInvalidInput).
		Detail("input", input).
		Detail("expected", expected).
		Build()
}

// ConfigInvalid creates an error for a configuration that failed to load or validate
func ConfigInvalid(path string, cause error) *mdwerror.Error {
	return NewErrorBuilder(ModuleConfig).
		Operation("load").
		Message("invalid configuration").
		Cause(cause).
		Code(mdwerror.CodeInvalidConfig).
		Detail("path", path).
		Build()
}

// StorageFailed creates an error for a history store failure
func StorageFailed(operation string, cause error) *mdwerror.Error {
	return NewErrorBuilder(ModuleStore).
		Operation(operation).
		Messagef("storage %s failed", operation).
		Cause(cause).
		Code(mdwerror.CodeStorageError).
		Build()
}

// RateLimited creates an error for a request rejected by the limiter
func RateLimited(operation string) *mdwerror.Error {
	return NewErrorBuilder(ModuleServer).
		Operation(operation).
		Message("rate limit exceeded").
		Code(mdwerror.CodeRateLimited).
		Build()
}

// ExtractModule returns the module detail of the first structured error in the chain
func ExtractModule(err error) string {
	return extractDetail(err, "module")
}

// ExtractOperation returns the operation detail of the first structured error in the chain
func ExtractOperation(err error) string {
	return extractDetail(err, "operation")
}

func extractDetail(err error, key string) string {
	var mdwErr *mdwerror.Error
	if !errors.As(err, &mdwErr) {
		return ""
	}
	if v, ok := mdwErr.Detail(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
