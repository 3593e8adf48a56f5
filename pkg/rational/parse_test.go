package rational

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		want     Value
		wantKind ErrorKind
	}{
		{"7", MustMake(7, 1), KindNone},
		{"-7", MustMake(-7, 1), KindNone},
		{"  3/4  ", MustMake(3, 4), KindNone},
		{"6/8", MustMake(3, 4), KindNone},
		{"-3/4", MustMake(-3, 4), KindNone},
		{"3/-4", MustMake(-3, 4), KindNone},
		{"2 3/4", MustMake(11, 4), KindNone},
		{"-2 3/4", MustMake(-11, 4), KindNone},
		{"0 1/2", MustMake(1, 2), KindNone},
		{"1 5/4", MustMake(9, 4), KindNone},
		{"0", Zero, KindNone},

		{"3/0", Value{}, KindDivisionByZero},
		{"1 1/0", Value{}, KindDivisionByZero},
		{"abc", Value{}, KindParse},
		{"", Value{}, KindParse},
		{"   ", Value{}, KindParse},
		{"0.5", Value{}, KindParse},
		{"1/2/3", Value{}, KindParse},
		{"3/", Value{}, KindParse},
		{"/4", Value{}, KindParse},
		{"2  3/4", Value{}, KindParse},
		{"2 -3/4", Value{}, KindParse},
		{"2 3", Value{}, KindParse},
		{"1e3", Value{}, KindParse},
		{"99999999999999999999", Value{}, KindOverflow},
		{"9223372036854775807 1/2", Value{}, KindOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantKind != KindNone {
				if kind := KindOf(err); kind != tt.wantKind {
					t.Fatalf("Parse(%q) kind = %v, want %v (err %v)", tt.input, kind, tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseErrorCarriesInput(t *testing.T) {
	_, err := Parse("abc")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("errors.As(*ParseError) failed for %v", err)
	}
	if pe.Input != "abc" || pe.Reason == "" {
		t.Errorf("ParseError = %+v", pe)
	}

	_, err = Parse("3/0")
	if !errors.As(err, &pe) {
		t.Fatalf("zero denominator should still carry a *ParseError: %v", err)
	}
	if pe.Input != "3/0" {
		t.Errorf("ParseError.Input = %q, want 3/0", pe.Input)
	}

	_, err = Parse("0.5")
	if !errors.As(err, &pe) || pe.Reason != "decimal notation is not accepted here, use a fraction" {
		t.Errorf("decimal input reason = %+v", pe)
	}
}

func TestParseAll(t *testing.T) {
	values, err := ParseAll([]string{"1/2", "3", "1 1/4"})
	if err != nil {
		t.Fatal(err)
	}
	if len(values) != 3 || !values[2].Equal(MustMake(5, 4)) {
		t.Errorf("ParseAll() = %v", values)
	}

	_, err = ParseAll([]string{"1/2", "x"})
	if KindOf(err) != KindParse {
		t.Errorf("ParseAll() kind = %v, want %v", KindOf(err), KindParse)
	}
}

func TestParseOperator(t *testing.T) {
	tests := map[string]Operator{
		"+": Add, "add": Add, "-": Sub, "−": Sub, "*": Mul, "x": Mul, "×": Mul,
		"/": Div, "÷": Div, "DIV": Div,
	}
	for in, want := range tests {
		got, err := ParseOperator(in)
		if err != nil || got != want {
			t.Errorf("ParseOperator(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseOperator("^"); KindOf(err) != KindInvalidInput {
		t.Errorf("ParseOperator(^) kind = %v", KindOf(err))
	}
}
