// Package money holds the monetary rounding policy: every arithmetic result
// is rounded once to 2 decimal places, half away from zero. The same rule is
// applied everywhere cost basis and P&L are computed so repeated partial
// exits never drift by more than one cent per operation.
package money

import "github.com/shopspring/decimal"

// Round2 rounds v to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Mul multiplies a by b and rounds the product to 2 decimal places.
func Mul(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}
