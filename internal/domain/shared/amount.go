package shared

import "github.com/shopspring/decimal"

// Epsilon is the tolerance used when comparing monetary amounts.
var Epsilon = decimal.RequireFromString("0.01")

var half = decimal.RequireFromString("0.5")

// RoundAmount rounds to the nearest whole unit, halves going toward positive
// infinity (2.5 -> 3, -2.5 -> -2). Only invoice headers and settlement shares
// are rounded; line subtotals keep full precision.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// WithinEpsilon reports whether |a-b| < Epsilon
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Epsilon)
}
