// Package log provides structured logging for euklid.
//
// Package: log
// Title: Structured Logging Framework
// Description: Leveled structured logging with persistent fields, request IDs,
//              JSON, text and console formats, performance timers and
//              severity-aware logging of structured errors.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-19 v0.2.0: Trimmed to the levels and formats the calculator front ends use
//
// Usage:
//
//	import mdwlog "github.com/msto63/euklid/foundation/core/log"
//
//	logger := mdwlog.New().
//		WithFormat(mdwlog.FormatConsole).
//		WithField("component", "lcd")
//
//	logger.Info("lcd computed", mdwlog.Fields{"lcd": 12, "inputs": 3})
//
//	timer := logger.StartTimer("evaluate")
//	if _, err := rational.Evaluate(expr); err != nil {
//		timer.StopWithError(err)
//	} else {
//		timer.Stop()
//	}
package log
