// Package rational is an exact fraction engine.
//
// Values are int64 fractions kept in lowest terms with a positive
// denominator; every arithmetic step is overflow checked and fails with
// KindOverflow instead of wrapping. On top of Value the package offers
//
//   - Parse for integers, fractions and mixed numbers ("7", "-3/4", "2 3/4"),
//   - Evaluate, a strict left-to-right fold of + - × ÷ with a step trace,
//   - ComputeLCD, the least common denominator of N fractions with each
//     fraction re-expressed over it,
//   - FromDecimal and ToDecimalString, exact conversion between terminating
//     decimals and fractions.
//
// All functions are pure and safe for concurrent use. Errors are
// *mdwerror.Error values; KindOf classifies them and errors.As with a
// *ParseError recovers the rejected text.
package rational
