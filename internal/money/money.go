// Package money provides helpers for fixed-point monetary arithmetic.
// All ledger and pricing math is done on decimal values at full precision;
// rounding to two decimal places happens only at output boundaries.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Zero is the zero monetary amount.
var Zero = decimal.Zero

// FromFloat converts an API-supplied float into a decimal amount.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// FromString parses a stored NUMERIC column value.
func FromString(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// Percent returns pct percent of amount, unrounded.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// PercentFloat returns pct percent of amount for a float percentage.
func PercentFloat(amount decimal.Decimal, pct float64) decimal.Decimal {
	return Percent(amount, decimal.NewFromFloat(pct))
}

// Round2 rounds to two decimal places using half-up rounding. Intended only
// for display and persisted per-member amounts, never intermediate math.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Float renders an amount as a float for JSON responses, rounded to two
// decimal places.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
