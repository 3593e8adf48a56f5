package service

import (
	"context"
	"strings"

	"github.com/msto63/euklid/internal/euklid/store"
	"github.com/msto63/euklid/pkg/rational"
)

// ParseResult is a single value in all its display forms
type ParseResult struct {
	RequestID    string               `json:"request_id" yaml:"request_id"`
	Input        string               `json:"input" yaml:"input"`
	Value        rational.Value       `json:"value" yaml:"value"`
	Mixed        rational.MixedNumber `json:"mixed" yaml:"mixed"`
	Decimal      string               `json:"decimal" yaml:"decimal"`
	DecimalExact bool                 `json:"decimal_exact" yaml:"decimal_exact"`
}

// EvaluateResult is the outcome of Calculate and Evaluate
type EvaluateResult struct {
	RequestID    string                `json:"request_id" yaml:"request_id"`
	Expression   string                `json:"expression" yaml:"expression"`
	Operands     []rational.Value      `json:"operands" yaml:"operands"`
	Operators    []rational.Operator   `json:"operators" yaml:"operators"`
	Result       rational.Value        `json:"result" yaml:"result"`
	Decimal      string                `json:"decimal" yaml:"decimal"`
	DecimalExact bool                  `json:"decimal_exact" yaml:"decimal_exact"`
	Mixed        *rational.MixedNumber `json:"mixed,omitempty" yaml:"mixed,omitempty"`
	Trace        rational.Trace        `json:"trace" yaml:"trace"`
	Steps        []string              `json:"steps" yaml:"steps"`
}

// LCDResult is the outcome of LCD and Compare
type LCDResult struct {
	RequestID   string           `json:"request_id" yaml:"request_id"`
	Inputs      []rational.Value `json:"inputs" yaml:"inputs"`
	LCD         int64            `json:"lcd" yaml:"lcd"`
	Equivalents []rational.Ratio `json:"equivalents" yaml:"equivalents"`
	Ascending   []int            `json:"ascending" yaml:"ascending"`
	Sorted      []rational.Value `json:"sorted" yaml:"sorted"`
	Trace       rational.Trace   `json:"trace" yaml:"trace"`
	Steps       []string         `json:"steps" yaml:"steps"`
}

// DecimalResult is the outcome of FromDecimal
type DecimalResult struct {
	RequestID     string               `json:"request_id" yaml:"request_id"`
	Input         string               `json:"input" yaml:"input"`
	Fraction      rational.Value       `json:"fraction" yaml:"fraction"`
	Mixed         rational.MixedNumber `json:"mixed" yaml:"mixed"`
	IsNegative    bool                 `json:"is_negative" yaml:"is_negative"`
	DecimalPlaces int                  `json:"decimal_places" yaml:"decimal_places"`
	Trace         rational.Trace       `json:"trace" yaml:"trace"`
	Steps         []string             `json:"steps" yaml:"steps"`
}

// ToDecimalResult is the outcome of ToDecimal. Exact is false when the
// value does not terminate and Decimal holds a rounded approximation.
type ToDecimalResult struct {
	RequestID string         `json:"request_id" yaml:"request_id"`
	Input     string         `json:"input" yaml:"input"`
	Value     rational.Value `json:"value" yaml:"value"`
	Decimal   string         `json:"decimal" yaml:"decimal"`
	Exact     bool           `json:"exact" yaml:"exact"`
}

// Parse reads one value in integer, fraction or mixed-number notation
func (s *Service) Parse(ctx context.Context, input string) (*ParseResult, error) {
	res := &ParseResult{Input: input}
	id, err := s.track(ctx, store.KindParse, input, func(e *rational.Engine) (outcome, error) {
		v, err := rational.Parse(input)
		if err != nil {
			return outcome{}, err
		}
		res.Value = v
		res.Mixed = v.Mixed()
		res.Decimal, res.DecimalExact = rational.Approximate(v, e.Options().Precision)
		return outcome{result: v.String()}, nil
	})
	if err != nil {
		return nil, err
	}
	res.RequestID = id
	return res, nil
}

// Calculate evaluates an expression such as "1/2 - 1/4 - 1/8" or
// "2 3/4 × 1/3" strictly from left to right.
func (s *Service) Calculate(ctx context.Context, expression string) (*EvaluateResult, error) {
	res := &EvaluateResult{Expression: strings.TrimSpace(expression)}
	id, err := s.track(ctx, store.KindCalculate, res.Expression, func(e *rational.Engine) (outcome, error) {
		operands, operators, err := ParseExpression(expression)
		if err != nil {
			return outcome{}, err
		}
		return s.evaluate(e, res, operands, operators)
	})
	if err != nil {
		return nil, err
	}
	res.RequestID = id
	return res, nil
}

// Evaluate folds operators over operands from left to right. Operators are
// symbols or names accepted by rational.ParseOperator.
func (s *Service) Evaluate(ctx context.Context, operands, operators []string) (*EvaluateResult, error) {
	res := &EvaluateResult{Expression: JoinExpression(operands, operators)}
	id, err := s.track(ctx, store.KindEvaluate, res.Expression, func(e *rational.Engine) (outcome, error) {
		values, err := rational.ParseAll(operands)
		if err != nil {
			return outcome{}, err
		}
		ops, err := parseOperators(operators)
		if err != nil {
			return outcome{}, err
		}
		return s.evaluate(e, res, values, ops)
	})
	if err != nil {
		return nil, err
	}
	res.RequestID = id
	return res, nil
}

func (s *Service) evaluate(e *rational.Engine, res *EvaluateResult, operands []rational.Value, operators []rational.Operator) (outcome, error) {
	eval, err := e.Evaluate(operands, operators)
	if err != nil {
		return outcome{}, err
	}
	res.Operands = operands
	res.Operators = operators
	res.Result = eval.Result
	res.Decimal = eval.Decimal
	res.DecimalExact = eval.DecimalExact
	res.Mixed = eval.Mixed
	res.Trace = eval.Trace
	res.Steps = eval.Trace.Lines()
	return outcome{
		result:   eval.Result.String(),
		metadata: map[string]interface{}{"operands": len(operands), "decimal": eval.Decimal},
	}, nil
}

// LCD finds the least common denominator of at least two values
func (s *Service) LCD(ctx context.Context, inputs []string) (*LCDResult, error) {
	return s.lcd(ctx, store.KindLCD, inputs)
}

// Compare orders at least two values by writing them over their least
// common denominator. The result lists the values in ascending order.
func (s *Service) Compare(ctx context.Context, inputs []string) (*LCDResult, error) {
	return s.lcd(ctx, store.KindCompare, inputs)
}

func (s *Service) lcd(ctx context.Context, kind store.Kind, inputs []string) (*LCDResult, error) {
	res := &LCDResult{}
	id, err := s.track(ctx, kind, strings.Join(inputs, ", "), func(e *rational.Engine) (outcome, error) {
		values, err := rational.ParseAll(inputs)
		if err != nil {
			return outcome{}, err
		}
		lcd, err := e.ComputeLCD(values)
		if err != nil {
			return outcome{}, err
		}
		res.Inputs = lcd.Inputs
		res.LCD = lcd.LCD
		res.Equivalents = lcd.Equivalents
		res.Ascending = lcd.Ascending()
		res.Sorted = lcd.Sorted()
		res.Trace = lcd.Trace
		res.Steps = lcd.Trace.Lines()

		result := lcd.Ordering()
		if kind == store.KindLCD {
			result = joinRatios(lcd.Equivalents)
		}
		return outcome{
			result:   result,
			metadata: map[string]interface{}{"lcd": lcd.LCD, "inputs": len(values)},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	res.RequestID = id
	return res, nil
}

// FromDecimal converts a terminating decimal into a fraction
func (s *Service) FromDecimal(ctx context.Context, input string) (*DecimalResult, error) {
	res := &DecimalResult{Input: input}
	id, err := s.track(ctx, store.KindDecimal, input, func(e *rational.Engine) (outcome, error) {
		conv, err := e.FromDecimal(input)
		if err != nil {
			return outcome{}, err
		}
		res.Fraction = conv.Fraction
		res.Mixed = conv.Mixed
		res.IsNegative = conv.IsNegative
		res.DecimalPlaces = conv.DecimalPlaces
		res.Trace = conv.Trace
		res.Steps = conv.Trace.Lines()
		return outcome{
			result:   conv.Fraction.String(),
			metadata: map[string]interface{}{"decimal_places": conv.DecimalPlaces},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	res.RequestID = id
	return res, nil
}

// ToDecimal writes a value as an exact decimal. A value without a finite
// expansion fails with rational.KindNonTerminatingDecimal unless approximate
// is set, in which case it is rounded to the engine precision.
func (s *Service) ToDecimal(ctx context.Context, input string, approximate bool) (*ToDecimalResult, error) {
	res := &ToDecimalResult{Input: input}
	id, err := s.track(ctx, store.KindToDecimal, input, func(e *rational.Engine) (outcome, error) {
		v, err := rational.Parse(input)
		if err != nil {
			return outcome{}, err
		}
		res.Value = v
		dec, err := rational.ToDecimalString(v)
		switch {
		case err == nil:
			res.Decimal, res.Exact = dec, true
		case approximate && rational.KindOf(err) == rational.KindNonTerminatingDecimal:
			res.Decimal, res.Exact = rational.Approximate(v, e.Options().Precision)
		default:
			return outcome{}, err
		}
		return outcome{
			result:   res.Decimal,
			metadata: map[string]interface{}{"exact": res.Exact},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	res.RequestID = id
	return res, nil
}


func joinRatios(ratios []rational.Ratio) string {
	parts := make([]string, len(ratios))
	for i, r := range ratios {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
