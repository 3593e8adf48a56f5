package rational

import (
	mdwerror "github.com/msto63/euklid/foundation/core/error"
	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
)

// Evaluation is the result of Evaluate.
type Evaluation struct {
	Result Value `json:"result" yaml:"result"`
	// Decimal is Result rounded to the engine precision; DecimalExact is
	// false when digits were cut off.
	Decimal      string `json:"decimal" yaml:"decimal"`
	DecimalExact bool   `json:"decimal_exact" yaml:"decimal_exact"`
	// Mixed is set only when |Result| >= 1.
	Mixed *MixedNumber `json:"mixed,omitempty" yaml:"mixed,omitempty"`
	Trace Trace        `json:"trace" yaml:"trace"`
}

// Evaluate folds operators over operands strictly from left to right:
// ((a op1 b) op2 c) ... There is no operator precedence, so 1/2 - 1/4 - 1/8
// is 1/8 and 1 + 2 * 3 is 9.
//
// operands must not be empty (KindEmptyInput) and operators must have
// exactly len(operands)-1 entries (KindInvalidInput). Each iteration records
// a Combine step with the unreduced cross-product result followed by a
// Simplify step. The final Render step carries the decimal approximation.
func (e *Engine) Evaluate(operands []Value, operators []Operator) (*Evaluation, error) {
	if len(operands) == 0 {
		return nil, mdwerrors.EmptyInput(mdwerrors.ModuleRational, "evaluate")
	}
	if len(operators) != len(operands)-1 {
		return nil, mdwerrors.InvalidInput(mdwerrors.ModuleRational, "evaluate", len(operators), "one operator fewer than operands").
			WithDetail("operands", len(operands))
	}

	var tb traceBuilder
	result := operands[0]
	for i, op := range operators {
		next := operands[i+1]
		raw, combined, err := combine(result, next, op)
		if err != nil {
			return nil, mdwerrors.NewErrorBuilder(mdwerrors.ModuleRational).
				Operation("evaluate").
				Messagef("step %d (%s %s %s)", i+1, result, op.Symbol(), next).
				Cause(err).
				Code(mdwerror.GetCode(err)).
				Detail("step", i+1).
				Build()
		}
		tb.combine(result, next, op, raw, combined)
		tb.simplify(raw, combined)
		result = combined
	}

	decimal, exact := Approximate(result, e.opts.Precision)
	eval := &Evaluation{
		Result:       result,
		Decimal:      decimal,
		DecimalExact: exact,
	}
	if result.Abs().Cmp(One) >= 0 {
		mixed := result.Mixed()
		eval.Mixed = &mixed
	}
	tb.render(result, decimal)
	eval.Trace = tb.build()
	return eval, nil
}

// OperandSet is an explicit group of operands and the operators between
// them, such as the two, three or four fraction inputs of a calculator form.
type OperandSet struct {
	Operands  []Value    `json:"operands" yaml:"operands"`
	Operators []Operator `json:"operators" yaml:"operators"`
}

// NewOperandSet starts a set with its first operand.
func NewOperandSet(first Value) *OperandSet {
	return &OperandSet{Operands: []Value{first}}
}

// Then appends op and operand and returns the set for chaining.
func (s *OperandSet) Then(op Operator, operand Value) *OperandSet {
	s.Operators = append(s.Operators, op)
	s.Operands = append(s.Operands, operand)
	return s
}

// Size returns the number of operands.
func (s *OperandSet) Size() int {
	return len(s.Operands)
}

// Evaluate evaluates the set with the default engine.
func (s *OperandSet) Evaluate() (*Evaluation, error) {
	return Evaluate(s.Operands, s.Operators)
}

// EvaluateWith evaluates the set with e.
func (s *OperandSet) EvaluateWith(e *Engine) (*Evaluation, error) {
	return e.Evaluate(s.Operands, s.Operators)
}
