// Package errors provides the standard error constructors for euklid modules.
//
// Package: errors
// Title: Standard Error Handling API
// Description: Module identifiers, the fluent ErrorBuilder and one convenience
//              constructor per failure of the error taxonomy (division by zero,
//              overflow, empty input, insufficient inputs, non-terminating decimal,
//              parse errors). Every error carries "module" and "operation" details
//              so front ends and logs can attribute it.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation for cross-module error standardization
// - 2026-10-19 v0.2.0: Constructors for the arithmetic taxonomy, platform modules removed
//
// Usage:
//
//	return errors.DivisionByZero(errors.ModuleRational, "div").
//		WithDetail("divisor", "0/5")
//
//	if errors.ExtractModule(err) == errors.ModuleMathx {
//		// integer utility failure
//	}
package errors
