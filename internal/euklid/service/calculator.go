package service

import (
	"context"

	"github.com/msto63/euklid/internal/euklid/store"
	"github.com/msto63/euklid/pkg/rational"
)

// Calculator is the operation set shared by the local service and remote
// clients. Front ends depend on it rather than on *Service.
type Calculator interface {
	Parse(ctx context.Context, input string) (*ParseResult, error)
	Calculate(ctx context.Context, expression string) (*EvaluateResult, error)
	Evaluate(ctx context.Context, operands, operators []string) (*EvaluateResult, error)
	LCD(ctx context.Context, inputs []string) (*LCDResult, error)
	Compare(ctx context.Context, inputs []string) (*LCDResult, error)
	FromDecimal(ctx context.Context, input string) (*DecimalResult, error)
	ToDecimal(ctx context.Context, input string, approximate bool) (*ToDecimalResult, error)
}

// Presenter localizes errors and labels for display
type Presenter interface {
	Explain(locale string, err error) *Problem
	Label(locale, key string) string
	StepTitle(locale string, kind rational.StepKind) string
}

// HistoryReader lists recorded calculations
type HistoryReader interface {
	History(ctx context.Context, filter store.Filter) ([]*store.Record, error)
}

var (
	_ Calculator    = (*Service)(nil)
	_ Presenter     = (*Service)(nil)
	_ HistoryReader = (*Service)(nil)
)
