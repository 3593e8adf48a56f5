package rational

import (
	"regexp"
	"strconv"
	"strings"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	"github.com/msto63/euklid/foundation/utils/mathx"
)

var (
	mixedPattern    = regexp.MustCompile(`^([+-]?)(\d+) (\d+)/(\d+)$`)
	fractionPattern = regexp.MustCompile(`^([+-]?\d+)/([+-]?\d+)$`)
	integerPattern  = regexp.MustCompile(`^[+-]?\d+$`)
)

// Parse reads an integer ("7"), a simple fraction ("3/4") or a mixed number
// ("2 3/4", one space between whole and fraction) and returns it in
// canonical form. Surrounding whitespace is ignored. The sign of a mixed
// number applies to the whole quantity, so "-2 3/4" is -11/4.
//
// Malformed text fails with a *ParseError (KindParse); a zero denominator
// fails with KindDivisionByZero and still carries the *ParseError.
func Parse(text string) (Value, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Value{}, parseFailure("parse", text, "empty input")
	}

	if m := mixedPattern.FindStringSubmatch(s); m != nil {
		return parseMixed(text, m[1] == "-", m[2], m[3], m[4])
	}
	if m := fractionPattern.FindStringSubmatch(s); m != nil {
		return parseFraction(text, m[1], m[2])
	}
	if integerPattern.MatchString(s) {
		n, err := parseInt(text, s)
		if err != nil {
			return Value{}, err
		}
		return Make(n, 1)
	}
	return Value{}, parseFailure("parse", text, classify(s))
}

// MustParse is like Parse but panics on error.
func MustParse(text string) Value {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseAll parses every text and stops at the first failure.
func ParseAll(texts []string) ([]Value, error) {
	values := make([]Value, len(texts))
	for i, t := range texts {
		v, err := Parse(t)
		if err != nil {
			return nil, mdwerror.Wrap(err, "operand "+strconv.Itoa(i+1)).WithDetail("index", i)
		}
		values[i] = v
	}
	return values, nil
}

func parseMixed(text string, negative bool, wholeDigits, numDigits, denDigits string) (Value, error) {
	whole, err := parseInt(text, wholeDigits)
	if err != nil {
		return Value{}, err
	}
	num, err := parseInt(text, numDigits)
	if err != nil {
		return Value{}, err
	}
	den, err := parseInt(text, denDigits)
	if err != nil {
		return Value{}, err
	}
	if den == 0 {
		return Value{}, zeroDenominator("parse", text)
	}

	scaled, err := mathx.MulInt64(whole, den)
	if err != nil {
		return Value{}, err
	}
	total, err := mathx.AddInt64(scaled, num)
	if err != nil {
		return Value{}, err
	}
	if negative {
		total = -total
	}
	return Make(total, den)
}

func parseFraction(text, numText, denText string) (Value, error) {
	num, err := parseInt(text, numText)
	if err != nil {
		return Value{}, err
	}
	den, err := parseInt(text, denText)
	if err != nil {
		return Value{}, err
	}
	if den == 0 {
		return Value{}, zeroDenominator("parse", text)
	}
	return Make(num, den)
}

func parseInt(text, digits string) (int64, error) {
	n, err := mathx.ParseInt64(digits)
	if err != nil {
		if mdwerror.HasCode(err, mdwerror.CodeOverflow) {
			return 0, mdwerror.Wrap(err, "number out of range").WithDetail("input", text)
		}
		return 0, parseFailure("parse", text, "invalid number "+digits)
	}
	return n, nil
}

// classify explains why s matched none of the accepted forms.
func classify(s string) string {
	switch {
	case strings.Contains(s, "."):
		return "decimal notation is not accepted here, use a fraction"
	case strings.Count(s, "/") > 1:
		return "more than one fraction bar"
	case strings.HasSuffix(s, "/") || strings.HasPrefix(s, "/"):
		return "missing numerator or denominator"
	case strings.Contains(s, "  "), strings.Contains(s, "\t"):
		return "whole part and fraction must be separated by a single space"
	case strings.Contains(s, " ") && !strings.Contains(s, "/"):
		return "missing fraction after whole part"
	}
	return "not a number"
}
