package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var exactFlag bool

var calcCmd = &cobra.Command{
	Use:     "calc <expression>",
	Aliases: []string{"c"},
	Short:   "Evaluate an expression left to right",
	Long: `Evaluate an expression strictly from left to right, without operator
precedence. Operators must stand alone: 3/4 is a fraction, 3 / 4 divides.

Operators: + - * / and the glyphs × ÷ :

Examples:
  euklid calc "1/2 + 3/4"
  euklid calc 2 3/4 x 1/3
  euklid calc --steps "5/6 - 1/4 ÷ 2"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return calculate(cmd.Context(), func(ctx context.Context, s *session) (interface{}, error) {
			return s.calc.Calculate(ctx, strings.Join(args, " "))
		})
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <operand> [<operator> <operand>]...",
	Short: "Evaluate operands and operators given as separate arguments",
	Long: `Evaluate operands and operators given as separate arguments, so mixed
numbers need quotes but no operator spacing rules apply.

Example:
  euklid evaluate "2 3/4" + 1/4 × 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		operands, operators := splitOperands(args)
		return calculate(cmd.Context(), func(ctx context.Context, s *session) (interface{}, error) {
			return s.calc.Evaluate(ctx, operands, operators)
		})
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <value>",
	Short: "Show a value as reduced fraction, mixed number and decimal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return calculate(cmd.Context(), func(ctx context.Context, s *session) (interface{}, error) {
			return s.calc.Parse(ctx, strings.Join(args, " "))
		})
	},
}

var lcdCmd = &cobra.Command{
	Use:   "lcd <value> <value>...",
	Short: "Least common denominator and equivalent fractions",
	Long: `Compute the least common denominator of two or more values and show
each value expanded to it.

Example:
  euklid lcd 1/4 1/6 "1 1/3"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return calculate(cmd.Context(), func(ctx context.Context, s *session) (interface{}, error) {
			return s.calc.LCD(ctx, args)
		})
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <value> <value>...",
	Short: "Order values over their common denominator",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return calculate(cmd.Context(), func(ctx context.Context, s *session) (interface{}, error) {
			return s.calc.Compare(ctx, args)
		})
	},
}

var decimalCmd = &cobra.Command{
	Use:   "decimal <decimal>",
	Short: "Convert a decimal such as 0.375 to a fraction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return calculate(cmd.Context(), func(ctx context.Context, s *session) (interface{}, error) {
			return s.calc.FromDecimal(ctx, args[0])
		})
	},
}

var toDecimalCmd = &cobra.Command{
	Use:   "todecimal <value>",
	Short: "Write a value as a decimal",
	Long: `Write a value as a decimal. Values without a finite expansion, such as
1/3, are rounded to the configured precision unless --exact is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return calculate(cmd.Context(), func(ctx context.Context, s *session) (interface{}, error) {
			return s.calc.ToDecimal(ctx, strings.Join(args, " "), !exactFlag)
		})
	},
}

func init() {
	toDecimalCmd.Flags().BoolVar(&exactFlag, "exact", false, "fail instead of rounding a non-terminating decimal")

	rootCmd.AddCommand(calcCmd, evaluateCmd, parseCmd, lcdCmd, compareCmd, decimalCmd, toDecimalCmd)
}

// calculate runs one calculation in a fresh session and prints the answer
func calculate(ctx context.Context, fn func(context.Context, *session) (interface{}, error)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return withSession(func(s *session) error {
		ctx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()
		return s.show(fn(ctx, s))
	})
}

// splitOperands reads alternating operand and operator arguments
func splitOperands(args []string) (operands, operators []string) {
	for i, arg := range args {
		if i%2 == 0 {
			operands = append(operands, arg)
		} else {
			operators = append(operators, arg)
		}
	}
	return operands, operators
}
