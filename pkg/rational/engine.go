package rational

import (
	"github.com/msto63/euklid/foundation/utils/mathx"
)

const (
	// DefaultMaxDecimalPlaces is the longest fractional part FromDecimal accepts.
	DefaultMaxDecimalPlaces = mathx.MaxPow10
	// DefaultPrecision is the number of fractional digits of decimal approximations.
	DefaultPrecision = 10
	// MaxPrecision bounds Options.Precision.
	MaxPrecision = 40
)

// Options configures an Engine. Zero fields take the defaults.
type Options struct {
	// MaxDecimalPlaces is capped at 18, the largest power of ten an int64 holds.
	MaxDecimalPlaces int `json:"max_decimal_places" yaml:"max_decimal_places"`
	Precision        int `json:"precision" yaml:"precision"`
}

// DefaultOptions returns the options used by the package-level functions.
func DefaultOptions() Options {
	return Options{
		MaxDecimalPlaces: DefaultMaxDecimalPlaces,
		Precision:        DefaultPrecision,
	}
}

func (o Options) normalized() Options {
	if o.MaxDecimalPlaces <= 0 || o.MaxDecimalPlaces > mathx.MaxPow10 {
		o.MaxDecimalPlaces = DefaultMaxDecimalPlaces
	}
	if o.Precision <= 0 {
		o.Precision = DefaultPrecision
	}
	if o.Precision > MaxPrecision {
		o.Precision = MaxPrecision
	}
	return o
}

// Engine runs evaluations and conversions with fixed limits. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine returns an Engine using opts, with out-of-range fields replaced
// by their defaults.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.normalized()}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

var defaultEngine = NewEngine(DefaultOptions())

// Evaluate runs Engine.Evaluate with the default options.
func Evaluate(operands []Value, operators []Operator) (*Evaluation, error) {
	return defaultEngine.Evaluate(operands, operators)
}

// ComputeLCD runs Engine.ComputeLCD with the default options.
func ComputeLCD(inputs []Value) (*LCDResult, error) {
	return defaultEngine.ComputeLCD(inputs)
}

// FromDecimal runs Engine.FromDecimal with the default options.
func FromDecimal(text string) (*DecimalConversion, error) {
	return defaultEngine.FromDecimal(text)
}
