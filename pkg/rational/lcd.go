package rational

import (
	"sort"
	"strings"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
	"github.com/msto63/euklid/foundation/utils/mathx"
)

// LCDResult is the result of ComputeLCD.
//
// Equivalents[i] is Inputs[i] written over LCD. They are deliberately not
// reduced: 1/2 over 4 stays 2/4.
type LCDResult struct {
	LCD         int64   `json:"lcd" yaml:"lcd"`
	Inputs      []Value `json:"inputs" yaml:"inputs"`
	Equivalents []Ratio `json:"equivalents" yaml:"equivalents"`
	Trace       Trace   `json:"trace" yaml:"trace"`
}

// ComputeLCD returns the least common denominator of at least two inputs
// and each input re-expressed over it, in input order. Fewer than two
// inputs fail with KindInsufficientInputs; an LCD beyond int64 fails with
// KindOverflow.
func (e *Engine) ComputeLCD(inputs []Value) (*LCDResult, error) {
	if len(inputs) < 2 {
		return nil, mdwerrors.InsufficientInputs(mdwerrors.ModuleRational, "lcd", len(inputs), 2)
	}

	dens := make([]int64, len(inputs))
	for i, v := range inputs {
		dens[i] = v.Den()
	}
	lcd, err := mathx.LCMAll(dens)
	if err != nil {
		return nil, mdwerrors.NewErrorBuilder(mdwerrors.ModuleRational).
			Operation("lcd").
			Message("common denominator out of range").
			Cause(err).
			Code(mdwerror.GetCode(err)).
			Detail("denominators", dens).
			Build()
	}

	var tb traceBuilder
	equivalents := make([]Ratio, len(inputs))
	for i, v := range inputs {
		multiplier := lcd / v.Den()
		num, err := mathx.MulInt64(v.Num(), multiplier)
		if err != nil {
			return nil, mdwerrors.Overflow(mdwerrors.ModuleRational, "lcd", v.Num(), multiplier).
				WithDetail("input", v.String())
		}
		equivalents[i] = Ratio{Num: num, Den: lcd}
		tb.scale(v, multiplier, equivalents[i])
	}

	return &LCDResult{
		LCD:         lcd,
		Inputs:      append([]Value(nil), inputs...),
		Equivalents: equivalents,
		Trace:       tb.build(),
	}, nil
}

// Ascending returns the indices of the inputs ordered from smallest to
// largest. Over a common denominator this only compares numerators; ties
// keep their input order.
func (r *LCDResult) Ascending() []int {
	idx := make([]int, len(r.Equivalents))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return r.Equivalents[idx[a]].Num < r.Equivalents[idx[b]].Num
	})
	return idx
}

// Sorted returns the inputs in ascending order.
func (r *LCDResult) Sorted() []Value {
	out := make([]Value, 0, len(r.Inputs))
	for _, i := range r.Ascending() {
		out = append(out, r.Inputs[i])
	}
	return out
}

// Ordering writes the inputs in ascending order as a chain such as
// "1/3 < 1/2 = 1/2".
func (r *LCDResult) Ordering() string {
	return FormatAscending(r.Sorted())
}

// FormatAscending chains values that are already in ascending order with
// " < ", or " = " between equal neighbours.
func FormatAscending(sorted []Value) string {
	var b strings.Builder
	for i, v := range sorted {
		if i > 0 {
			if sorted[i-1].Equal(v) {
				b.WriteString(" = ")
			} else {
				b.WriteString(" < ")
			}
		}
		b.WriteString(v.String())
	}
	return b.String()
}
