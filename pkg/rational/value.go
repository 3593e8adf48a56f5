package rational

import (
	"fmt"
	"strconv"

	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
	"github.com/msto63/euklid/foundation/utils/mathx"
)

// Value is an exact fraction in lowest terms with a positive denominator.
// The zero Value is 0/1. Values are immutable and safe to share.
type Value struct {
	num int64
	// denominator minus one, so that Value{} reads as 0/1
	denM1 int64
}

// Zero and One are the additive and multiplicative identities.
var (
	Zero = Value{}
	One  = Value{num: 1}
)

// Make returns numerator/denominator in canonical form. It is the single
// normalization point for every value the package exposes.
func Make(numerator, denominator int64) (Value, error) {
	if denominator == 0 {
		return Value{}, mdwerrors.DivisionByZero(mdwerrors.ModuleRational, "make").
			WithDetail("numerator", numerator)
	}
	if !mathx.InRange(numerator) || !mathx.InRange(denominator) {
		return Value{}, mdwerrors.Overflow(mdwerrors.ModuleRational, "make", numerator, denominator)
	}
	if numerator == 0 {
		return Value{}, nil
	}
	if denominator < 0 {
		numerator, denominator = -numerator, -denominator
	}
	g := mathx.GCD(numerator, denominator)
	return Value{num: numerator / g, denM1: denominator/g - 1}, nil
}

// MustMake is like Make but panics on error. Use it for constants.
func MustMake(numerator, denominator int64) Value {
	v, err := Make(numerator, denominator)
	if err != nil {
		panic(err)
	}
	return v
}

// Int returns n/1.
func Int(n int64) (Value, error) {
	return Make(n, 1)
}

// Num returns the numerator; its sign is the sign of the value.
func (v Value) Num() int64 { return v.num }

// Den returns the denominator, always positive.
func (v Value) Den() int64 { return v.denM1 + 1 }

// Sign returns -1, 0 or +1.
func (v Value) Sign() int {
	switch {
	case v.num < 0:
		return -1
	case v.num > 0:
		return 1
	}
	return 0
}

func (v Value) IsZero() bool    { return v.num == 0 }
func (v Value) IsInteger() bool { return v.denM1 == 0 }

// Neg returns -v. Negation cannot overflow because MinInt64 is never stored.
func (v Value) Neg() Value {
	return Value{num: -v.num, denM1: v.denM1}
}

// Abs returns |v|.
func (v Value) Abs() Value {
	if v.num < 0 {
		return v.Neg()
	}
	return v
}

// Equal reports whether v and w are the same number.
func (v Value) Equal(w Value) bool {
	return v == w
}

// Cmp compares v and w and returns -1, 0 or +1. When the cross products do
// not fit into an int64 the continued fraction expansions are compared.
func (v Value) Cmp(w Value) int {
	if v == w {
		return 0
	}
	if v.Sign() != w.Sign() {
		if v.Sign() < w.Sign() {
			return -1
		}
		return 1
	}
	l, errL := mathx.MulInt64(v.num, w.Den())
	r, errR := mathx.MulInt64(w.num, v.Den())
	if errL == nil && errR == nil {
		switch {
		case l < r:
			return -1
		case l > r:
			return 1
		}
		return 0
	}
	return cmpByContinuedFraction(v, w)
}

// cmpByContinuedFraction compares two values of the same sign without
// forming cross products.
func cmpByContinuedFraction(v, w Value) int {
	sign := 1
	if v.num < 0 {
		sign = -1
		v, w = v.Neg(), w.Neg()
	}
	an, ad := v.num, v.Den()
	bn, bd := w.num, w.Den()
	for {
		qa, qb := an/ad, bn/bd
		if qa != qb {
			if qa < qb {
				return -sign
			}
			return sign
		}
		ra, rb := an%ad, bn%bd
		switch {
		case ra == 0 && rb == 0:
			return 0
		case ra == 0:
			return -sign
		case rb == 0:
			return sign
		}
		// a = q + ra/ad, compare ad/ra with bd/rb with the order reversed
		an, ad, bn, bd = ad, ra, bd, rb
		sign = -sign
	}
}

// String formats v as "num/den", or "num" for integers.
func (v Value) String() string {
	if v.IsInteger() {
		return strconv.FormatInt(v.num, 10)
	}
	return fmt.Sprintf("%d/%d", v.num, v.Den())
}

// Float64 returns the nearest float64. It is meant for display only.
func (v Value) Float64() float64 {
	return float64(v.num) / float64(v.Den())
}

// Ratio returns v as an unreduced pair.
func (v Value) Ratio() Ratio {
	return Ratio{Num: v.num, Den: v.Den()}
}

// MarshalText implements encoding.TextMarshaler using String.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using Parse.
func (v *Value) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
