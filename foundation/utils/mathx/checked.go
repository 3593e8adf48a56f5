// File: checked.go
// Title: Overflow-Checked Integer Arithmetic
// Description: Add, subtract, multiply, negate, powers of ten and digit-string
//              parsing on int64 with explicit overflow errors.
// Author: msto63
// Version: v0.3.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.3.0: Initial implementation

package mathx

import (
	"errors"
	"math"
	"strconv"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
)

// MaxPow10 is the largest exponent n for which 10^n fits into an int64
const MaxPow10 = 18

var pow10Table = [MaxPow10 + 1]int64{
	1,
	10,
	100,
	1000,
	10000,
	100000,
	1000000,
	10000000,
	100000000,
	1000000000,
	10000000000,
	100000000000,
	1000000000000,
	10000000000000,
	100000000000000,
	1000000000000000,
	10000000000000000,
	100000000000000000,
	1000000000000000000,
}

// InRange reports whether v can be used as an operand (v != math.MinInt64)
func InRange(v int64) bool {
	return v != math.MinInt64
}

// AddInt64 returns a+b or an overflow error
func AddInt64(a, b int64) (int64, error) {
	if !InRange(a) || !InRange(b) {
		return 0, mdwerrors.Overflow(mdwerrors.ModuleMathx, "add", a, b)
	}
	c := a + b
	if (a > 0 && b > 0 && c < 0) || (a < 0 && b < 0 && c >= 0) || !InRange(c) {
		return 0, mdwerrors.Overflow(mdwerrors.ModuleMathx, "add", a, b)
	}
	return c, nil
}

// SubInt64 returns a-b or an overflow error
func SubInt64(a, b int64) (int64, error) {
	if !InRange(b) {
		return 0, mdwerrors.Overflow(mdwerrors.ModuleMathx, "sub", a, b)
	}
	c, err := AddInt64(a, -b)
	if err != nil {
		return 0, mdwerrors.Overflow(mdwerrors.ModuleMathx, "sub", a, b)
	}
	return c, nil
}

// MulInt64 returns a*b or an overflow error
func MulInt64(a, b int64) (int64, error) {
	if !InRange(a) || !InRange(b) {
		return 0, mdwerrors.Overflow(mdwerrors.ModuleMathx, "mul", a, b)
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if c/b != a || !InRange(c) {
		return 0, mdwerrors.Overflow(mdwerrors.ModuleMathx, "mul", a, b)
	}
	return c, nil
}

// Abs returns |v|. It panics for math.MinInt64; callers check InRange first.
func Abs(v int64) int64 {
	if v == math.MinInt64 {
		panic("mathx: Abs of math.MinInt64")
	}
	if v < 0 {
		return -v
	}
	return v
}

// Pow10 returns 10^n for 0 <= n <= MaxPow10
func Pow10(n int) (int64, error) {
	if n < 0 {
		return 0, mdwerrors.InvalidInput(mdwerrors.ModuleMathx, "pow10", n, "non-negative exponent")
	}
	if n > MaxPow10 {
		return 0, mdwerrors.Overflow(mdwerrors.ModuleMathx, "pow10", int64(n)).
			WithDetail("max_exponent", MaxPow10)
	}
	return pow10Table[n], nil
}

// ParseInt64 parses an optionally signed base-10 digit string.
// Values outside the operand range fail with CodeOverflow, malformed
// text with CodeInvalidFormat.
func ParseInt64(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, mdwerrors.NewErrorBuilder(mdwerrors.ModuleMathx).
				Operation("parse_int").
				Messagef("%s is outside the int64 range", s).
				Code(mdwerror.CodeOverflow).
				Detail("input", s).
				Build()
		}
		return 0, mdwerrors.NewErrorBuilder(mdwerrors.ModuleMathx).
			Operation("parse_int").
			Messagef("%q is not an integer", s).
			Code(mdwerror.CodeInvalidFormat).
			Detail("input", s).
			Build()
	}
	if !InRange(v) {
		return 0, mdwerrors.Overflow(mdwerrors.ModuleMathx, "parse_int", v)
	}
	return v, nil
}
