// File: integer.go
// Title: Integer Number Theory
// Description: GCD, LCM, the LCM fold over a set of integers and the
//              terminating-decimal test for denominators.
// Author: msto63
// Version: v0.3.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.3.0: Initial implementation

package mathx

import (
	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
)

// GCD returns the greatest common divisor of |a| and |b| using Euclid's
// algorithm. GCD(0, 0) is 0; callers dividing by the result must guard that case.
func GCD(a, b int64) int64 {
	x, y := magnitude(a), magnitude(b)
	for y != 0 {
		x, y = y, x%y
	}
	return int64(x)
}

// LCM returns |a*b| / GCD(a, b), or 0 when either argument is 0.
// The product is formed as |a|/g * |b| so only a result that does not fit
// into an int64 fails with CodeOverflow.
func LCM(a, b int64) (int64, error) {
	if !InRange(a) || !InRange(b) {
		return 0, mdwerrors.Overflow(mdwerrors.ModuleMathx, "lcm", a, b)
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	g := GCD(a, b)
	l, err := MulInt64(Abs(a)/g, Abs(b))
	if err != nil {
		return 0, mdwerrors.Overflow(mdwerrors.ModuleMathx, "lcm", a, b)
	}
	return l, nil
}

// LCMAll folds LCM over values from left to right.
// An empty slice fails with CodeEmptyInput.
func LCMAll(values []int64) (int64, error) {
	if len(values) == 0 {
		return 0, mdwerrors.EmptyInput(mdwerrors.ModuleMathx, "lcm_all")
	}
	if !InRange(values[0]) {
		return 0, mdwerrors.Overflow(mdwerrors.ModuleMathx, "lcm_all", values[0])
	}

	acc := Abs(values[0])
	for _, v := range values[1:] {
		next, err := LCM(acc, v)
		if err != nil {
			return 0, err
		}
		acc = next
	}
	return acc, nil
}

// TerminatingPlaces reports whether 1/den has a finite decimal expansion and,
// if so, how many fractional digits it needs: max(twos, fives) for
// den = 2^twos * 5^fives.
func TerminatingPlaces(den int64) (int, bool) {
	if den == 0 || !InRange(den) {
		return 0, false
	}
	d := Abs(den)
	twos, fives := 0, 0
	for d%2 == 0 {
		d /= 2
		twos++
	}
	for d%5 == 0 {
		d /= 5
		fives++
	}
	if d != 1 {
		return 0, false
	}
	if twos > fives {
		return twos, true
	}
	return fives, true
}

func magnitude(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}
