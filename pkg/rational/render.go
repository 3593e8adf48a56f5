package rational

import (
	"fmt"
	"strconv"
)

// Describe renders s as one human-readable line, e.g.
//
//	1/2 + 1/4 = (1·4 + 1·2)/(2·4) = 6/8
//	6/8 ÷ 2/2 = 3/4
//	1/4 × 6/6 = 6/24
func (s Step) Describe() string {
	switch s.Kind {
	case StepParse:
		return fmt.Sprintf("read %q as %s", s.Text, s.Unreduced)
	case StepCombine:
		if len(s.Operands) != 2 {
			break
		}
		return fmt.Sprintf("%s %s %s = %s = %s",
			s.Operands[0], s.Operator.Glyph(), s.Operands[1],
			formula(s.Operands[0], s.Operands[1], s.Operator), s.Unreduced)
	case StepSimplify:
		if s.Factor <= 1 {
			return fmt.Sprintf("%s is in lowest terms", s.Unreduced)
		}
		return fmt.Sprintf("%s ÷ %d/%d = %s", s.Unreduced, s.Factor, s.Factor, s.Result)
	case StepScale:
		if len(s.Operands) != 1 {
			break
		}
		return fmt.Sprintf("%s × %d/%d = %s", s.Operands[0].Ratio(), s.Factor, s.Factor, s.Unreduced)
	case StepRender:
		return fmt.Sprintf("%s = %s", s.Result, s.Text)
	}
	return s.Kind.String()
}

func formula(l, r Value, op Operator) string {
	a, b := l.Num(), l.Den()
	c, d := r.Num(), r.Den()
	switch op {
	case Add, Sub:
		return fmt.Sprintf("(%s·%d %s %s·%d)/(%d·%d)", paren(a), d, op.Glyph(), paren(c), b, b, d)
	case Mul:
		return fmt.Sprintf("(%s·%s)/(%d·%d)", paren(a), paren(c), b, d)
	case Div:
		return fmt.Sprintf("(%s·%d)/(%d·%s)", paren(a), d, b, paren(c))
	}
	return ""
}

func paren(n int64) string {
	if n < 0 {
		return "(" + strconv.FormatInt(n, 10) + ")"
	}
	return strconv.FormatInt(n, 10)
}

// Lines renders every step with Describe, numbered from 1.
func (t Trace) Lines() []string {
	lines := make([]string, len(t.steps))
	for i, s := range t.steps {
		lines[i] = fmt.Sprintf("%d. %s", i+1, s.Describe())
	}
	return lines
}
