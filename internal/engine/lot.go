package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot is one purchased block of shares. Quantity only shrinks, via
// partial sale; a lot that reaches zero is removed from its position.
type Lot struct {
	Ticker        string
	PurchaseTime  time.Time
	PurchasePrice decimal.Decimal
	Quantity      decimal.Decimal
}

// longTermHolding reports whether a lot bought at purchase qualifies as
// long-term when sold at sale: held strictly more than one calendar year.
func longTermHolding(purchase, sale time.Time) bool {
	return sale.After(purchase.AddDate(1, 0, 0))
}
