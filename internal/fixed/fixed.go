// Package fixed centralizes the rounding and truncation rules for money
// and share quantities. All ledger state is decimal; nothing downstream
// does float arithmetic on balances, so there is no drift across tens of
// thousands of simulated days.
package fixed

import "github.com/shopspring/decimal"

var (
	// Penny is the minimum currency unit. Amounts below a penny are not
	// deposited.
	Penny = decimal.New(1, -2)

	// ShareIncrement is the minimum tradable share quantity. Every buy
	// and sell is truncated to a multiple of it.
	ShareIncrement = decimal.New(1, -2)

	// MinTradeShares is the dust threshold for value-denominated trades:
	// below this many shares the trade is skipped outright.
	MinTradeShares = decimal.New(1, -1)
)

// RoundTo snaps d to the nearest multiple of unit, half away from zero.
func RoundTo(d, unit decimal.Decimal) decimal.Decimal {
	return d.DivRound(unit, 0).Mul(unit)
}

// TruncateTo snaps d toward zero to a multiple of unit.
func TruncateTo(d, unit decimal.Decimal) decimal.Decimal {
	return d.Sub(d.Mod(unit))
}

// FromFloat converts an external float (config input, strategy weight)
// into the exact decimal domain.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// ToFloat leaves the exact domain; only reporting output should use it.
func ToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
