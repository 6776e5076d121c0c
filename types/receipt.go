package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt records the tax outcome of one sale: how much of the realized
// gain (or loss) was long-term versus short-term, and the market value
// of the position that remains. Receipts are retained for reporting and
// never re-processed.
type Receipt struct {
	Ticker        string
	Time          time.Time
	LongTermGain  decimal.Decimal
	ShortTermGain decimal.Decimal
	Balance       decimal.Decimal
}
