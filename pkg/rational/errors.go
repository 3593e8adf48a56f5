package rational

import (
	"errors"
	"fmt"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
)

// ErrorKind classifies engine failures for callers that map them to messages.
type ErrorKind string

const (
	KindNone                  ErrorKind = ""
	KindParse                 ErrorKind = "parse"
	KindDivisionByZero        ErrorKind = "division_by_zero"
	KindEmptyInput            ErrorKind = "empty_input"
	KindInsufficientInputs    ErrorKind = "insufficient_inputs"
	KindOverflow              ErrorKind = "overflow"
	KindNonTerminatingDecimal ErrorKind = "non_terminating_decimal"
	KindInvalidInput          ErrorKind = "invalid_input"
	KindUnknown               ErrorKind = "unknown"
)

// KindOf returns the kind of err. Codes are checked from the outside in, so a
// zero denominator literal reports KindDivisionByZero even though it also
// carries a *ParseError.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	switch mdwerror.GetCode(err) {
	case mdwerror.CodeDivisionByZero:
		return KindDivisionByZero
	case mdwerror.CodeOverflow:
		return KindOverflow
	case mdwerror.CodeEmptyInput:
		return KindEmptyInput
	case mdwerror.CodeInsufficientInputs:
		return KindInsufficientInputs
	case mdwerror.CodeNonTerminatingDecimal:
		return KindNonTerminatingDecimal
	case mdwerror.CodeParseError, mdwerror.CodeInvalidFormat:
		return KindParse
	case mdwerror.CodeInvalidInput:
		return KindInvalidInput
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return KindParse
	}
	return KindUnknown
}

// ParseError reports malformed numeric text. Reason is meant to be shown to
// the user next to the original input.
type ParseError struct {
	Reason string
	Input  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

func parseFailure(op, input, reason string) error {
	return mdwerrors.ParseFailed(mdwerrors.ModuleRational, op, &ParseError{Reason: reason, Input: input}).
		WithDetail("input", input)
}

func zeroDenominator(op, input string) error {
	return mdwerrors.NewErrorBuilder(mdwerrors.ModuleRational).
		Operation(op).
		Message("denominator is zero").
		Cause(&ParseError{Reason: "denominator is zero", Input: input}).
		Code(mdwerror.CodeDivisionByZero).
		Detail("input", input).
		Build()
}
