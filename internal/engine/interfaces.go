package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"allocsim/types"
)

// MarketView is the restricted read-only facade a strategy sees: the
// current simulated time and price/series data visible up to it, never
// past it. *Broker satisfies it.
type MarketView interface {
	Now() time.Time
	PriceAt(ticker string, t time.Time) (decimal.Decimal, error)
	History(ticker string) []types.Candle
	AuxValue(name string) (decimal.Decimal, bool)
}

// Predictor produces a target allocation for the current day. It may
// keep internal state across calls but must not mutate broker or
// account state. A nil distribution means "no opinion today". A non-nil
// result must be normalized to sum to 1.0.
type Predictor interface {
	Name() string
	Allocate(view MarketView) (*types.Distribution, error)
}
