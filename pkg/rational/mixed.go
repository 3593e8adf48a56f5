package rational

import (
	"strconv"
	"strings"
)

// MixedNumber is the whole-and-fraction view of a Value. It is always derived
// from a Value and never stored as the source of a computation.
type MixedNumber struct {
	Negative bool
	Whole    int64
	// Fraction satisfies 0 <= Num < Den
	Fraction Value
}

// Mixed derives the mixed-number form of v. The sign applies to the whole
// quantity: -7/4 is -(1 3/4).
func (v Value) Mixed() MixedNumber {
	abs := v.Abs()
	den := abs.Den()
	m := MixedNumber{
		Negative: v.num < 0,
		Whole:    abs.num / den,
	}
	// the remainder stays coprime to den, so no reduction is needed
	if rem := abs.num % den; rem != 0 {
		m.Fraction = Value{num: rem, denM1: abs.denM1}
	}
	return m
}

// HasFraction reports whether the fractional part is non-zero.
func (m MixedNumber) HasFraction() bool {
	return !m.Fraction.IsZero()
}

// Value converts m back into a Value.
func (m MixedNumber) Value() (Value, error) {
	whole, err := Int(m.Whole)
	if err != nil {
		return Value{}, err
	}
	v, err := add(whole, m.Fraction)
	if err != nil {
		return Value{}, err
	}
	if m.Negative {
		v = v.Neg()
	}
	return v, nil
}

// String formats m as "whole num/den", "-whole num/den", or just the whole
// part when there is no fraction. A zero whole part is kept: 3/4 is "0 3/4".
func (m MixedNumber) String() string {
	var b strings.Builder
	if m.Negative {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(m.Whole, 10))
	if m.HasFraction() {
		b.WriteByte(' ')
		b.WriteString(m.Fraction.String())
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler using String.
func (m MixedNumber) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using Parse.
func (m *MixedNumber) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = v.Mixed()
	return nil
}
