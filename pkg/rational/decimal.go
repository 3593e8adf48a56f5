package rational

import (
	"math/big"
	"regexp"
	"strings"

	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
	"github.com/msto63/euklid/foundation/utils/mathx"
)

var decimalPattern = regexp.MustCompile(`^(-?)(\d*)(?:\.(\d+))?$`)

// DecimalConversion is the result of FromDecimal.
type DecimalConversion struct {
	Input         string      `json:"input" yaml:"input"`
	Fraction      Value       `json:"fraction" yaml:"fraction"`
	Mixed         MixedNumber `json:"mixed" yaml:"mixed"`
	IsNegative    bool        `json:"is_negative" yaml:"is_negative"`
	DecimalPlaces int         `json:"decimal_places" yaml:"decimal_places"`
	Trace         Trace       `json:"trace" yaml:"trace"`
}

// Decimal renders the fraction back with the number of places of the input.
func (c *DecimalConversion) Decimal() string {
	s, err := FormatDecimal(c.Fraction, c.DecimalPlaces)
	if err != nil {
		// unreachable: a parsed decimal always terminates
		return c.Input
	}
	return s
}

// FromDecimal converts a terminating decimal such as "-1.25" or ".5" into a
// fraction. The numerator is built from the digit string itself, never
// through floating point, so inputs with many places convert exactly.
//
// Text is an optional "-", digits, and an optional "." followed by at least
// one digit. More than MaxDecimalPlaces fractional digits, or digits that do
// not fit into an int64, fail with KindOverflow.
func (e *Engine) FromDecimal(text string) (*DecimalConversion, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, mdwerrors.EmptyInput(mdwerrors.ModuleRational, "from_decimal")
	}
	m := decimalPattern.FindStringSubmatch(s)
	if m == nil || (m[2] == "" && m[3] == "") {
		return nil, parseFailure("from_decimal", text, classifyDecimal(s))
	}

	negative := m[1] == "-"
	intDigits, fracDigits := m[2], m[3]
	places := len(fracDigits)
	if places > e.opts.MaxDecimalPlaces {
		return nil, mdwerrors.Overflow(mdwerrors.ModuleRational, "from_decimal").
			WithDetail("decimal_places", places).
			WithDetail("max_decimal_places", e.opts.MaxDecimalPlaces)
	}
	den, err := mathx.Pow10(places)
	if err != nil {
		return nil, err
	}

	digits := strings.TrimLeft(intDigits+fracDigits, "0")
	var num int64
	if digits != "" {
		num, err = mathx.ParseInt64(digits)
		if err != nil {
			return nil, mdwerrors.Overflow(mdwerrors.ModuleRational, "from_decimal").
				WithDetail("input", text)
		}
	}
	if negative {
		num = -num
	}

	raw := Ratio{Num: num, Den: den}
	fraction, err := raw.Value()
	if err != nil {
		return nil, err
	}
	mixed := fraction.Mixed()

	var tb traceBuilder
	tb.add(Step{Kind: StepParse, Text: s, Unreduced: raw, Result: fraction})
	tb.simplify(raw, fraction)
	tb.render(fraction, mixed.String())

	return &DecimalConversion{
		Input:         s,
		Fraction:      fraction,
		Mixed:         mixed,
		IsNegative:    fraction.Sign() < 0,
		DecimalPlaces: places,
		Trace:         tb.build(),
	}, nil
}

func classifyDecimal(s string) string {
	switch {
	case strings.Count(s, ".") > 1:
		return "more than one decimal point"
	case strings.HasSuffix(s, "."):
		return "missing digits after the decimal point"
	case s == "-" || s == "-.":
		return "missing digits"
	case strings.ContainsAny(s, "eE"):
		return "exponent notation is not accepted"
	}
	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if lower == "inf" || lower == "infinity" || lower == "nan" {
		return "value is not finite"
	}
	return "unexpected character"
}

// ToDecimalString renders v exactly, e.g. 5/4 as "1.25" and -1/2 as "-0.5".
// It fails with KindNonTerminatingDecimal when the denominator has a prime
// factor other than 2 or 5.
func ToDecimalString(v Value) (string, error) {
	places, ok := mathx.TerminatingPlaces(v.Den())
	if !ok {
		return "", mdwerrors.NonTerminating(mdwerrors.ModuleRational, "to_decimal", v.String())
	}
	return formatScaled(v, places, false), nil
}

// FormatDecimal is ToDecimalString padded with trailing zeros to at least
// minPlaces fractional digits, so that 3/4 with minPlaces 3 reads "0.750".
func FormatDecimal(v Value, minPlaces int) (string, error) {
	places, ok := mathx.TerminatingPlaces(v.Den())
	if !ok {
		return "", mdwerrors.NonTerminating(mdwerrors.ModuleRational, "format_decimal", v.String())
	}
	if minPlaces > places {
		places = minPlaces
	}
	return formatScaled(v, places, false), nil
}

// IsTerminating reports whether v has a finite decimal expansion.
func IsTerminating(v Value) bool {
	_, ok := mathx.TerminatingPlaces(v.Den())
	return ok
}

// Approximate renders v with at most precision fractional digits, rounding
// half away from zero and dropping trailing zeros. The second result is
// true when the rendering is exact.
func Approximate(v Value, precision int) (string, bool) {
	if precision < 0 {
		precision = 0
	}
	if places, ok := mathx.TerminatingPlaces(v.Den()); ok && places <= precision {
		return formatScaled(v, places, false), true
	}
	return formatScaled(v, precision, true), false
}

// formatScaled writes |v|*10^places as an integer, rounding when round is
// set, and inserts the decimal point. Long division runs on big.Int because
// remainder*10^places exceeds int64 for large denominators.
func formatScaled(v Value, places int, round bool) string {
	num := new(big.Int).Abs(big.NewInt(v.Num()))
	den := big.NewInt(v.Den())
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)

	q, r := new(big.Int).QuoRem(new(big.Int).Mul(num, scale), den, new(big.Int))
	if round && r.Sign() != 0 {
		if new(big.Int).Lsh(r, 1).Cmp(den) >= 0 {
			q.Add(q, big.NewInt(1))
		}
	}

	digits := q.String()
	if len(digits) <= places {
		digits = strings.Repeat("0", places-len(digits)+1) + digits
	}
	intPart, fracPart := digits[:len(digits)-places], digits[len(digits)-places:]
	if round {
		fracPart = strings.TrimRight(fracPart, "0")
	}

	var b strings.Builder
	if v.Sign() < 0 && q.Sign() != 0 {
		b.WriteByte('-')
	}
	b.WriteString(intPart)
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
