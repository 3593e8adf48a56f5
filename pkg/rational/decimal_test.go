package rational

import (
	"math/rand"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestFromDecimal(t *testing.T) {
	tests := []struct {
		input    string
		fraction Value
		mixed    string
		negative bool
		places   int
	}{
		{"0.75", MustMake(3, 4), "0 3/4", false, 2},
		{"-0.5", MustMake(-1, 2), "-0 1/2", true, 1},
		{"1.25", MustMake(5, 4), "1 1/4", false, 2},
		{".5", MustMake(1, 2), "0 1/2", false, 1},
		{"3", MustMake(3, 1), "3", false, 0},
		{"  2.50 ", MustMake(5, 2), "2 1/2", false, 2},
		{"0.000", Zero, "0", false, 3},
		{"-0.0", Zero, "0", false, 1},
		{"007.125", MustMake(57, 8), "7 1/8", false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			conv, err := FromDecimal(tt.input)
			if err != nil {
				t.Fatalf("FromDecimal(%q) error = %v", tt.input, err)
			}
			if !conv.Fraction.Equal(tt.fraction) {
				t.Errorf("Fraction = %s, want %s", conv.Fraction, tt.fraction)
			}
			if conv.Mixed.String() != tt.mixed {
				t.Errorf("Mixed = %q, want %q", conv.Mixed, tt.mixed)
			}
			if conv.IsNegative != tt.negative {
				t.Errorf("IsNegative = %v, want %v", conv.IsNegative, tt.negative)
			}
			if conv.DecimalPlaces != tt.places {
				t.Errorf("DecimalPlaces = %d, want %d", conv.DecimalPlaces, tt.places)
			}
		})
	}
}

func TestFromDecimalMixedParts(t *testing.T) {
	conv, err := FromDecimal("1.25")
	if err != nil {
		t.Fatal(err)
	}
	if conv.Mixed.Whole != 1 || !conv.Mixed.Fraction.Equal(MustMake(1, 4)) || conv.Mixed.Negative {
		t.Errorf("Mixed = %+v, want whole 1 and fraction 1/4", conv.Mixed)
	}

	neg, err := FromDecimal("-0.5")
	if err != nil {
		t.Fatal(err)
	}
	if neg.Fraction.Num() != -1 || neg.Fraction.Den() != 2 {
		t.Errorf("Fraction = %d/%d, want -1/2", neg.Fraction.Num(), neg.Fraction.Den())
	}
}

// Digit strings with ten or more places must not pass through float64,
// which cannot hold them exactly.
func TestFromDecimalManyPlaces(t *testing.T) {
	tests := []struct {
		input string
		num   int64
		den   int64
	}{
		{"0.1234567891", 1234567891, 10000000000},
		{"0.3333333333333333", 3333333333333333, 10000000000000000},
		{"123456.789012345678", 123456789012345678, 1000000000000},
		{"0.000000000000000001", 1, 1000000000000000000},
		{"9.007199254740993", 9007199254740993, 1000000000000000},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			conv, err := FromDecimal(tt.input)
			if err != nil {
				t.Fatalf("FromDecimal(%q) error = %v", tt.input, err)
			}
			want := MustMake(tt.num, tt.den)
			if !conv.Fraction.Equal(want) {
				t.Errorf("Fraction = %s, want %s", conv.Fraction, want)
			}
			if got := conv.Decimal(); got != strings.TrimLeft(tt.input, " ") {
				t.Errorf("Decimal() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestFromDecimalErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  ErrorKind
	}{
		{"", KindEmptyInput},
		{"   ", KindEmptyInput},
		{"1.2.3", KindParse},
		{"5.", KindParse},
		{".", KindParse},
		{"-", KindParse},
		{"1,5", KindParse},
		{"abc", KindParse},
		{"1e5", KindParse},
		{"Infinity", KindParse},
		{"NaN", KindParse},
		{"+1.5", KindParse},
		{"1/2", KindParse},
		{"0.1234567890123456789", KindOverflow},
		{"99999999999999999999", KindOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := FromDecimal(tt.input)
			if got := KindOf(err); got != tt.kind {
				t.Errorf("FromDecimal(%q) kind = %v, want %v (err %v)", tt.input, got, tt.kind, err)
			}
		})
	}
}

func TestFromDecimalMaxPlaces(t *testing.T) {
	e := NewEngine(Options{MaxDecimalPlaces: 4})
	if _, err := e.FromDecimal("0.1234"); err != nil {
		t.Errorf("four places should be accepted: %v", err)
	}
	if _, err := e.FromDecimal("0.12345"); KindOf(err) != KindOverflow {
		t.Errorf("five places kind = %v, want %v", KindOf(err), KindOverflow)
	}
}

func TestFromDecimalTrace(t *testing.T) {
	conv, err := FromDecimal("0.75")
	if err != nil {
		t.Fatal(err)
	}
	want := []StepKind{StepParse, StepSimplify, StepRender}
	if got := conv.Trace.Kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Kinds() = %v, want %v", got, want)
	}
	if parse := conv.Trace.Step(0); parse.Unreduced != (Ratio{75, 100}) || parse.Text != "0.75" {
		t.Errorf("parse step = %+v", parse)
	}
	if simplify := conv.Trace.Step(1); simplify.Factor != 25 {
		t.Errorf("simplify factor = %d, want 25", simplify.Factor)
	}
	if render := conv.Trace.Step(2); render.Text != "0 3/4" {
		t.Errorf("render text = %q, want 0 3/4", render.Text)
	}
}

func TestToDecimalString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
		kind ErrorKind
	}{
		{MustMake(3, 4), "0.75", KindNone},
		{MustMake(-1, 2), "-0.5", KindNone},
		{MustMake(5, 4), "1.25", KindNone},
		{MustMake(7, 1), "7", KindNone},
		{Zero, "0", KindNone},
		{MustMake(1, 1 << 20), "0.00000095367431640625", KindNone},
		{MustMake(1, 3), "", KindNonTerminatingDecimal},
		{MustMake(7, 12), "", KindNonTerminatingDecimal},
	}

	for _, tt := range tests {
		got, err := ToDecimalString(tt.v)
		if tt.kind != KindNone {
			if KindOf(err) != tt.kind {
				t.Errorf("ToDecimalString(%s) kind = %v, want %v", tt.v, KindOf(err), tt.kind)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ToDecimalString(%s) = %q, %v; want %q", tt.v, got, err, tt.want)
		}
	}
}

func TestFormatDecimalAndApproximate(t *testing.T) {
	if got, _ := FormatDecimal(MustMake(3, 4), 3); got != "0.750" {
		t.Errorf("FormatDecimal(3/4, 3) = %q, want 0.750", got)
	}
	if got, _ := FormatDecimal(MustMake(3, 4), 1); got != "0.75" {
		t.Errorf("FormatDecimal(3/4, 1) = %q, want 0.75", got)
	}
	if got, _ := FormatDecimal(Zero, 2); got != "0.00" {
		t.Errorf("FormatDecimal(0, 2) = %q, want 0.00", got)
	}

	tests := []struct {
		v         Value
		precision int
		want      string
		exact     bool
	}{
		{MustMake(1, 3), 4, "0.3333", false},
		{MustMake(2, 3), 4, "0.6667", false},
		{MustMake(-2, 3), 2, "-0.67", false},
		{MustMake(1, 8), 2, "0.13", false},
		{MustMake(1, 8), 3, "0.125", true},
		{MustMake(-1, 300), 2, "0", false},
		{MustMake(199, 200), 2, "1", false},
	}
	for _, tt := range tests {
		got, exact := Approximate(tt.v, tt.precision)
		if got != tt.want || exact != tt.exact {
			t.Errorf("Approximate(%s, %d) = %q, %v; want %q, %v", tt.v, tt.precision, got, exact, tt.want, tt.exact)
		}
	}
}

// A terminating decimal survives FromDecimal followed by FormatDecimal with
// its own number of places, up to sign and leading zero normalization.
func TestDecimalRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		places := rng.Intn(10)
		whole := rng.Int63n(100000)
		frac := ""
		if places > 0 {
			frac = strconv.FormatInt(rng.Int63n(pow10(places)), 10)
			frac = strings.Repeat("0", places-len(frac)) + frac
		}
		s := strconv.FormatInt(whole, 10)
		if frac != "" {
			s += "." + frac
		}
		if rng.Intn(2) == 0 {
			s = "-" + s
		}

		conv, err := FromDecimal(s)
		if err != nil {
			t.Fatalf("FromDecimal(%q) error = %v", s, err)
		}
		back, err := FormatDecimal(conv.Fraction, conv.DecimalPlaces)
		if err != nil {
			t.Fatalf("FormatDecimal(%s) error = %v", conv.Fraction, err)
		}
		if back != normalizeDecimal(s) {
			t.Errorf("round trip %q -> %s -> %q", s, conv.Fraction, back)
		}

		exact, err := ToDecimalString(conv.Fraction)
		if err != nil {
			t.Fatalf("ToDecimalString(%s) error = %v", conv.Fraction, err)
		}
		if !strings.HasPrefix(normalizeDecimal(s), exact) {
			t.Errorf("ToDecimalString(%s) = %q is not a prefix of %q", conv.Fraction, exact, s)
		}
	}
}

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}

// normalizeDecimal drops the sign of a zero value.
func normalizeDecimal(s string) string {
	if strings.Trim(s, "-0.") == "" {
		return strings.TrimPrefix(s, "-")
	}
	return s
}
