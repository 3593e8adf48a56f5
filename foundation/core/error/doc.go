// Package error provides structured error handling for the euklid engine and services.
//
// Package: error
// Title: Structured Errors
// Description: This package implements the error type shared by every euklid package:
//              an error carries a code from a closed catalogue, a severity, free-form
//              details and an optional cause. Front ends map the code to a user-facing
//              message; the logger maps the severity to a log level.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-19 v0.2.0: Code catalogue reduced to arithmetic, parsing and service codes;
//                      HasCode and GetCode look through wrapped chains
//
// Usage:
//
//	import mdwerror "github.com/msto63/euklid/foundation/core/error"
//
//	err := mdwerror.New("division by zero").
//		WithCode(mdwerror.CodeDivisionByZero).
//		WithDetail("operand", "0/5")
//
//	if mdwerror.HasCode(err, mdwerror.CodeDivisionByZero) {
//		// show the division hint
//	}
package error
