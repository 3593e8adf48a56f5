package rational

import (
	"math"
	"math/rand"
	"testing"
	"testing/quick"

	"github.com/msto63/euklid/foundation/utils/mathx"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name     string
		num, den int64
		wantNum  int64
		wantDen  int64
		wantKind ErrorKind
	}{
		{"already reduced", 3, 4, 3, 4, KindNone},
		{"reduces", 6, 8, 3, 4, KindNone},
		{"negative denominator", 3, -4, -3, 4, KindNone},
		{"both negative", -6, -8, 3, 4, KindNone},
		{"zero", 0, 7, 0, 1, KindNone},
		{"negative zero denominator sign", 0, -7, 0, 1, KindNone},
		{"integer", 10, 5, 2, 1, KindNone},
		{"max int", math.MaxInt64, math.MaxInt64, 1, 1, KindNone},
		{"zero denominator", 1, 0, 0, 0, KindDivisionByZero},
		{"min int numerator", math.MinInt64, 1, 0, 0, KindOverflow},
		{"min int denominator", 1, math.MinInt64, 0, 0, KindOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Make(tt.num, tt.den)
			if tt.wantKind != KindNone {
				if got := KindOf(err); got != tt.wantKind {
					t.Fatalf("Make(%d, %d) kind = %v, want %v (err %v)", tt.num, tt.den, got, tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Make(%d, %d) unexpected error: %v", tt.num, tt.den, err)
			}
			if v.Num() != tt.wantNum || v.Den() != tt.wantDen {
				t.Errorf("Make(%d, %d) = %d/%d, want %d/%d", tt.num, tt.den, v.Num(), v.Den(), tt.wantNum, tt.wantDen)
			}
		})
	}
}

func TestMakeCanonicalProperty(t *testing.T) {
	f := func(n, d int64) bool {
		if d == 0 || !mathx.InRange(n) || !mathx.InRange(d) {
			return true
		}
		v, err := Make(n, d)
		if err != nil {
			return false
		}
		if v.Den() <= 0 {
			return false
		}
		if v.Num() == 0 {
			return v.Den() == 1
		}
		return mathx.GCD(v.Num(), v.Den()) == 1
	}
	cfg := &quick.Config{MaxCount: 2000, Rand: rand.New(rand.NewSource(1))}
	if err := quick.Check(f, cfg); err != nil {
		t.Error(err)
	}
}

func TestZeroValue(t *testing.T) {
	var v Value
	if v.Num() != 0 || v.Den() != 1 {
		t.Errorf("Value{} = %d/%d, want 0/1", v.Num(), v.Den())
	}
	if !v.Equal(Zero) || v.String() != "0" {
		t.Errorf("Value{} should equal Zero and print as 0, got %q", v.String())
	}
	if !MustMake(0, 5).Equal(v) {
		t.Error("0/5 should equal Value{}")
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{MustMake(3, 4), "3/4"},
		{MustMake(-3, 4), "-3/4"},
		{MustMake(8, 4), "2"},
		{Zero, "0"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCmp(t *testing.T) {
	tests := []struct {
		a, b Value
		want int
	}{
		{MustMake(1, 2), MustMake(1, 3), 1},
		{MustMake(1, 3), MustMake(1, 2), -1},
		{MustMake(2, 4), MustMake(1, 2), 0},
		{MustMake(-1, 2), MustMake(1, 3), -1},
		{MustMake(-1, 2), MustMake(-1, 3), -1},
		{Zero, MustMake(-1, 3), 1},
		// cross products overflow, continued fractions decide
		{MustMake(math.MaxInt64-1, math.MaxInt64), MustMake(math.MaxInt64-2, math.MaxInt64-1), 1},
		{MustMake(-(math.MaxInt64 - 1), math.MaxInt64), MustMake(-(math.MaxInt64 - 2), math.MaxInt64-1), -1},
		{MustMake(math.MaxInt64, 3), MustMake(math.MaxInt64-1, 3), 1},
	}
	for _, tt := range tests {
		if got := tt.a.Cmp(tt.b); got != tt.want {
			t.Errorf("%s.Cmp(%s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestArithmeticMethods(t *testing.T) {
	a, b := MustMake(1, 2), MustMake(1, 3)

	tests := []struct {
		name string
		fn   func() (Value, error)
		want Value
	}{
		{"add", func() (Value, error) { return a.Add(b) }, MustMake(5, 6)},
		{"sub", func() (Value, error) { return a.Sub(b) }, MustMake(1, 6)},
		{"mul", func() (Value, error) { return a.Mul(b) }, MustMake(1, 6)},
		{"div", func() (Value, error) { return a.Div(b) }, MustMake(3, 2)},
		{"div negative", func() (Value, error) { return a.Div(b.Neg()) }, MustMake(-3, 2)},
		{"apply", func() (Value, error) { return a.Apply(Sub, a) }, Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := a.Div(Zero); KindOf(err) != KindDivisionByZero {
		t.Errorf("1/2 ÷ 0 kind = %v, want %v", KindOf(err), KindDivisionByZero)
	}
	big := MustMake(math.MaxInt64, 1)
	if _, err := big.Add(One); KindOf(err) != KindOverflow {
		t.Errorf("MaxInt64 + 1 kind = %v, want %v", KindOf(err), KindOverflow)
	}
}

func TestMixed(t *testing.T) {
	tests := []struct {
		v        Value
		negative bool
		whole    int64
		fraction Value
		text     string
	}{
		{MustMake(3, 4), false, 0, MustMake(3, 4), "0 3/4"},
		{MustMake(5, 4), false, 1, MustMake(1, 4), "1 1/4"},
		{MustMake(-7, 4), true, 1, MustMake(3, 4), "-1 3/4"},
		{MustMake(8, 4), false, 2, Zero, "2"},
		{Zero, false, 0, Zero, "0"},
	}
	for _, tt := range tests {
		m := tt.v.Mixed()
		if m.Negative != tt.negative || m.Whole != tt.whole || !m.Fraction.Equal(tt.fraction) {
			t.Errorf("%s.Mixed() = %+v", tt.v, m)
		}
		if got := m.String(); got != tt.text {
			t.Errorf("%s.Mixed().String() = %q, want %q", tt.v, got, tt.text)
		}
		back, err := m.Value()
		if err != nil || !back.Equal(tt.v) {
			t.Errorf("%s.Mixed().Value() = %s, %v", tt.v, back, err)
		}
	}
}

func TestRatio(t *testing.T) {
	r := Ratio{Num: 6, Den: 8}
	if r.IsReduced() {
		t.Error("6/8 should not be reduced")
	}
	if v, err := r.Value(); err != nil || !v.Equal(MustMake(3, 4)) {
		t.Errorf("Ratio.Value() = %s, %v", v, err)
	}
	if got := (Ratio{Num: 4, Den: 1}).String(); got != "4/1" {
		t.Errorf("Ratio.String() = %q, want 4/1", got)
	}
}

func TestTextMarshaling(t *testing.T) {
	var v Value
	if err := v.UnmarshalText([]byte("2 1/2")); err != nil {
		t.Fatal(err)
	}
	text, _ := v.MarshalText()
	if string(text) != "5/2" {
		t.Errorf("MarshalText() = %q, want 5/2", text)
	}

	var op Operator
	if err := op.UnmarshalText([]byte("÷")); err != nil || op != Div {
		t.Errorf("UnmarshalText(÷) = %v, %v", op, err)
	}
	if err := op.UnmarshalText([]byte("%")); KindOf(err) != KindInvalidInput {
		t.Errorf("UnmarshalText(%%) kind = %v", KindOf(err))
	}
}
