package service

import (
	"strconv"
	"strings"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
	"github.com/msto63/euklid/pkg/rational"
)

// ParseExpression splits "a op b op c ..." into operands and operators.
// Operators must stand alone between spaces, so "3/4" is a fraction while
// "3 / 4" divides. Consecutive operand words form one operand, which lets
// mixed numbers like "2 3/4" appear unquoted.
func ParseExpression(expression string) ([]rational.Value, []rational.Operator, error) {
	fields := strings.Fields(expression)
	if len(fields) == 0 {
		return nil, nil, mdwerrors.EmptyInput(mdwerrors.ModuleService, "calculate")
	}

	var (
		operands  []rational.Value
		operators []rational.Operator
		words     []string
	)
	flush := func() error {
		text := strings.Join(words, " ")
		words = words[:0]
		v, err := rational.Parse(text)
		if err != nil {
			return mdwerror.Wrap(err, "operand "+strconv.Itoa(len(operands)+1)).WithDetail("index", len(operands))
		}
		operands = append(operands, v)
		return nil
	}

	for _, field := range fields {
		op, err := rational.ParseOperator(field)
		if err != nil {
			words = append(words, field)
			continue
		}
		if len(words) == 0 {
			return nil, nil, misplacedOperator(expression, field)
		}
		if err := flush(); err != nil {
			return nil, nil, err
		}
		operators = append(operators, op)
	}
	if len(words) == 0 {
		return nil, nil, misplacedOperator(expression, fields[len(fields)-1])
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}
	return operands, operators, nil
}

func misplacedOperator(expression, op string) error {
	return mdwerrors.InvalidInput(mdwerrors.ModuleService, "calculate", expression, "an operand on both sides of "+op)
}

// JoinExpression renders operands and operators as one expression string
func JoinExpression(operands, operators []string) string {
	var b strings.Builder
	for i, operand := range operands {
		if i > 0 {
			b.WriteByte(' ')
			if i-1 < len(operators) {
				b.WriteString(operators[i-1])
				b.WriteByte(' ')
			}
		}
		b.WriteString(strings.TrimSpace(operand))
	}
	return b.String()
}

func parseOperators(symbols []string) ([]rational.Operator, error) {
	ops := make([]rational.Operator, len(symbols))
	for i, sym := range symbols {
		op, err := rational.ParseOperator(sym)
		if err != nil {
			return nil, mdwerror.Wrap(err, "operator "+strconv.Itoa(i+1)).WithDetail("index", i)
		}
		ops[i] = op
	}
	return ops, nil
}

// SplitList splits a list of values typed on one line. Commas or
// semicolons separate entries when present, so mixed numbers survive;
// otherwise every word is an entry.
func SplitList(line string) []string {
	if !strings.ContainsAny(line, ",;") {
		return strings.Fields(line)
	}
	var out []string
	for _, part := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ';' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
