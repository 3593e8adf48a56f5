// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels for errors. The logger uses the severity to pick the
//              log level; monitoring uses it to decide whether to alert.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with four severity levels
// - 2026-10-19 v0.2.0: Severity mapping for arithmetic and parsing codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates a problem with user input
	SeverityLow Severity = iota

	// SeverityMedium indicates an error that affects a single request
	SeverityMedium

	// SeverityHigh indicates a failure of a service component (storage, transport)
	SeverityHigh

	// SeverityCritical indicates the service cannot operate
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
	case CodeServiceUnavailable:
		return SeverityCritical

	case CodeStorageError, CodeInternal, CodeConfigError, CodeInvalidConfig, CodeMissingConfig:
		return SeverityHigh

	case CodeInvalidInput, CodeNotFound, CodeValidationFailed, CodeParseError, CodeInvalidFormat,
		CodeDivisionByZero, CodeOverflow, CodeEmptyInput, CodeInsufficientInputs,
		CodeNonTerminatingDecimal, CodeRateLimited:
		return SeverityLow

	default:
		return SeverityMedium
	}
}
