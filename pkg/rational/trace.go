package rational

import (
	"encoding/json"
	"fmt"
)

// StepKind identifies what a Step records.
type StepKind int

const (
	// StepParse records text turned into a value
	StepParse StepKind = iota
	// StepCombine records one operator applied to the running result
	StepCombine
	// StepSimplify records reduction to lowest terms
	StepSimplify
	// StepScale records a fraction re-expressed over a common denominator
	StepScale
	// StepRender records a value turned into a display form
	StepRender
)

func (k StepKind) String() string {
	switch k {
	case StepParse:
		return "parse"
	case StepCombine:
		return "combine"
	case StepSimplify:
		return "simplify"
	case StepScale:
		return "scale"
	case StepRender:
		return "render"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k StepKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *StepKind) UnmarshalText(text []byte) error {
	for c := StepParse; c <= StepRender; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown step kind %q", text)
}

// Step is one action of a computation.
//
// Unreduced holds the raw result before normalization for Combine and
// Simplify steps, and the scaled fraction for Scale steps. Factor is the
// divisor used by Simplify and the multiplier used by Scale. Text carries the
// input of Parse steps and the produced string of Render steps.
type Step struct {
	Kind      StepKind `json:"kind" yaml:"kind"`
	Operands  []Value  `json:"operands,omitempty" yaml:"operands,omitempty"`
	Operator  Operator `json:"operator,omitempty" yaml:"operator,omitempty"`
	Unreduced Ratio    `json:"unreduced" yaml:"unreduced"`
	Factor    int64    `json:"factor,omitempty" yaml:"factor,omitempty"`
	Result    Value    `json:"result" yaml:"result"`
	Text      string   `json:"text,omitempty" yaml:"text,omitempty"`
}

func (s Step) clone() Step {
	if s.Operands != nil {
		s.Operands = append([]Value(nil), s.Operands...)
	}
	return s
}

// Trace is the ordered, read-only record of one call. A Trace is complete
// when the call returns; accessors hand out copies.
type Trace struct {
	steps []Step
}

// Len returns the number of steps.
func (t Trace) Len() int { return len(t.steps) }

// Step returns a copy of step i.
func (t Trace) Step(i int) Step { return t.steps[i].clone() }

// Steps returns a copy of all steps.
func (t Trace) Steps() []Step {
	out := make([]Step, len(t.steps))
	for i, s := range t.steps {
		out[i] = s.clone()
	}
	return out
}

// Kinds returns the kind of every step, in order.
func (t Trace) Kinds() []StepKind {
	out := make([]StepKind, len(t.steps))
	for i, s := range t.steps {
		out[i] = s.Kind
	}
	return out
}

// MarshalJSON encodes the trace as its list of steps.
func (t Trace) MarshalJSON() ([]byte, error) {
	if t.steps == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.steps)
}

// UnmarshalJSON decodes a list of steps, as produced by a remote engine.
func (t *Trace) UnmarshalJSON(data []byte) error {
	var steps []Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return err
	}
	t.steps = steps
	return nil
}

// MarshalYAML encodes the trace as its list of steps.
func (t Trace) MarshalYAML() (interface{}, error) {
	return t.Steps(), nil
}

// traceBuilder is append-only; build hands its steps to a Trace and the
// builder must not be used afterwards.
type traceBuilder struct {
	steps []Step
}

func (b *traceBuilder) add(s Step) {
	b.steps = append(b.steps, s.clone())
}

func (b *traceBuilder) parse(text string, result Value) {
	b.add(Step{Kind: StepParse, Text: text, Result: result, Unreduced: result.Ratio()})
}

func (b *traceBuilder) combine(left, right Value, op Operator, raw Ratio, result Value) {
	b.add(Step{Kind: StepCombine, Operands: []Value{left, right}, Operator: op, Unreduced: raw, Result: result})
}

func (b *traceBuilder) simplify(raw Ratio, result Value) {
	factor := int64(1)
	if result.Num() != 0 {
		factor = raw.Num / result.Num()
	} else if raw.Den != 0 {
		factor = raw.Den
	}
	if factor < 0 {
		factor = -factor
	}
	b.add(Step{Kind: StepSimplify, Unreduced: raw, Factor: factor, Result: result})
}

func (b *traceBuilder) scale(input Value, multiplier int64, scaled Ratio) {
	b.add(Step{Kind: StepScale, Operands: []Value{input}, Factor: multiplier, Unreduced: scaled, Result: input})
}

func (b *traceBuilder) render(v Value, text string) {
	b.add(Step{Kind: StepRender, Operands: []Value{v}, Result: v, Unreduced: v.Ratio(), Text: text})
}

func (b *traceBuilder) build() Trace {
	t := Trace{steps: b.steps}
	b.steps = nil
	return t
}
