// File: doc.go
// Title: Package Documentation for mathx
// Description: Package mathx provides overflow-checked int64 arithmetic and the
//              integer number theory the rational engine is built on.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with decimal arithmetic and business functions
// - 2025-01-26 v0.2.0: Enhanced documentation with comprehensive structure and examples
// - 2026-10-19 v0.3.0: Replaced the big.Rat decimal type with checked int64 number theory

// Package mathx provides checked integer arithmetic for exact fraction work.
//
// Every operation either returns an exact result or an error carrying
// mdwerror.CodeOverflow; nothing wraps silently. math.MinInt64 is treated as out
// of range because its magnitude cannot be represented, which keeps negation of
// every accepted value safe.
//
// Number theory:
//
//	g := mathx.GCD(12, -18)              // 6
//	l, err := mathx.LCM(4, 6)            // 12
//	lcd, err := mathx.LCMAll([]int64{4, 6, 8}) // 24
//
// Checked arithmetic:
//
//	p, err := mathx.MulInt64(a, b)       // CodeOverflow instead of wrapping
//	d, err := mathx.Pow10(18)            // 10^18, Pow10(19) overflows
//
// Decimal support:
//
//	places, ok := mathx.TerminatingPlaces(8) // 3, true: 1/8 = 0.125
//	_, ok = mathx.TerminatingPlaces(3)       // false
package mathx
