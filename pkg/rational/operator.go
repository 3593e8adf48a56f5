package rational

import (
	"strings"

	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
	"github.com/msto63/euklid/foundation/utils/mathx"
)

// Operator is one of the four arithmetic operations. OpNone marks steps
// that do not combine two operands.
type Operator int

const (
	OpNone Operator = iota
	Add
	Sub
	Mul
	Div
)

// Operators lists the arithmetic operators in display order.
var Operators = []Operator{Add, Sub, Mul, Div}

// Symbol returns the ASCII symbol of op.
func (op Operator) Symbol() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	}
	return ""
}

// Glyph returns the typographic symbol of op used in traces.
func (op Operator) Glyph() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "−"
	case Mul:
		return "×"
	case Div:
		return "÷"
	}
	return ""
}

func (op Operator) String() string {
	switch op {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case Div:
		return "div"
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler.
func (op Operator) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseOperator.
func (op *Operator) UnmarshalText(text []byte) error {
	parsed, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// ParseOperator accepts a symbol (+ - * / x × ÷ −) or a name
// (add, sub, mul, div, plus, minus, times, divide).
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "+", "add", "plus":
		return Add, nil
	case "-", "−", "sub", "minus", "subtract":
		return Sub, nil
	case "*", "x", "×", "·", "mul", "times", "multiply":
		return Mul, nil
	case "/", ":", "÷", "div", "divide":
		return Div, nil
	}
	return OpNone, mdwerrors.InvalidInput(mdwerrors.ModuleRational, "parse_operator", s, "one of + - * /")
}

// combine applies op to a and b using the textbook cross-product formulas and
// returns the unreduced result alongside its normal form.
func combine(a, b Value, op Operator) (Ratio, Value, error) {
	var (
		r   Ratio
		err error
	)
	switch op {
	case Add:
		r, err = crossSum(a, b, mathx.AddInt64)
	case Sub:
		r, err = crossSum(a, b, mathx.SubInt64)
	case Mul:
		r, err = product(a.num, b.num, a.Den(), b.Den())
	case Div:
		if b.IsZero() {
			return Ratio{}, Value{}, mdwerrors.DivisionByZero(mdwerrors.ModuleRational, "div").
				WithDetail("dividend", a.String())
		}
		r, err = product(a.num, b.Den(), a.Den(), b.num)
	default:
		return Ratio{}, Value{}, mdwerrors.InvalidInput(mdwerrors.ModuleRational, "combine", op.String(), "add, sub, mul or div")
	}
	if err != nil {
		return Ratio{}, Value{}, mdwerrors.Overflow(mdwerrors.ModuleRational, op.String()).
			WithDetail("left", a.String()).
			WithDetail("right", b.String())
	}
	v, err := r.Value()
	if err != nil {
		return Ratio{}, Value{}, err
	}
	return r, v, nil
}

// crossSum computes (a.num*b.den ± b.num*a.den) / (a.den*b.den).
func crossSum(a, b Value, sum func(x, y int64) (int64, error)) (Ratio, error) {
	ad, err := mathx.MulInt64(a.num, b.Den())
	if err != nil {
		return Ratio{}, err
	}
	bc, err := mathx.MulInt64(b.num, a.Den())
	if err != nil {
		return Ratio{}, err
	}
	num, err := sum(ad, bc)
	if err != nil {
		return Ratio{}, err
	}
	den, err := mathx.MulInt64(a.Den(), b.Den())
	if err != nil {
		return Ratio{}, err
	}
	return Ratio{Num: num, Den: den}, nil
}

// product computes (n1*n2) / (d1*d2) with the sign moved to the numerator.
func product(n1, n2, d1, d2 int64) (Ratio, error) {
	num, err := mathx.MulInt64(n1, n2)
	if err != nil {
		return Ratio{}, err
	}
	den, err := mathx.MulInt64(d1, d2)
	if err != nil {
		return Ratio{}, err
	}
	if den < 0 {
		num, den = -num, -den
	}
	return Ratio{Num: num, Den: den}, nil
}

func add(a, b Value) (Value, error) {
	_, v, err := combine(a, b, Add)
	return v, err
}

// Add returns v+w.
func (v Value) Add(w Value) (Value, error) { return add(v, w) }

// Sub returns v-w.
func (v Value) Sub(w Value) (Value, error) {
	_, r, err := combine(v, w, Sub)
	return r, err
}

// Mul returns v*w.
func (v Value) Mul(w Value) (Value, error) {
	_, r, err := combine(v, w, Mul)
	return r, err
}

// Div returns v/w. Dividing by zero fails with KindDivisionByZero.
func (v Value) Div(w Value) (Value, error) {
	_, r, err := combine(v, w, Div)
	return r, err
}

// Apply returns v op w.
func (v Value) Apply(op Operator, w Value) (Value, error) {
	_, r, err := combine(v, w, op)
	return r, err
}
