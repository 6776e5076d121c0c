package engine

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"allocsim/types"
)

// PriceModel turns a daily candle into the single price a trade executes
// at. Models holding a *rand.Rand draw from the simulation's seeded
// source, so runs stay reproducible.
type PriceModel interface {
	Name() string
	Price(c types.Candle) decimal.Decimal
}

// ClosePrice executes at the daily close.
type ClosePrice struct{}

func (ClosePrice) Name() string                         { return "close" }
func (ClosePrice) Price(c types.Candle) decimal.Decimal { return c.Close }

// OpenPrice executes at the daily open.
type OpenPrice struct{}

func (OpenPrice) Name() string                         { return "open" }
func (OpenPrice) Price(c types.Candle) decimal.Decimal { return c.Open }

// AdjustedClosePrice executes at the dividend-adjusted close. It must
// not be combined with a broker that already pre-adjusted its series;
// NewBroker rejects that pairing.
type AdjustedClosePrice struct{}

func (AdjustedClosePrice) Name() string                         { return "adjclose" }
func (AdjustedClosePrice) Price(c types.Candle) decimal.Decimal { return c.AdjClose }

// RandomInRange executes somewhere uniformly between the daily low and
// high, simulating intraday execution uncertainty.
type RandomInRange struct {
	Rng *rand.Rand
}

func (RandomInRange) Name() string { return "random-low-high" }

func (m RandomInRange) Price(c types.Candle) decimal.Decimal {
	return uniformBetween(m.Rng, c.Low, c.High)
}

// RandomOpenClose executes somewhere uniformly between the daily open
// and close, a tighter uncertainty band than RandomInRange.
type RandomOpenClose struct {
	Rng *rand.Rand
}

func (RandomOpenClose) Name() string { return "random-open-close" }

func (m RandomOpenClose) Price(c types.Candle) decimal.Decimal {
	lo, hi := c.Open, c.Close
	if hi.LessThan(lo) {
		lo, hi = hi, lo
	}
	return uniformBetween(m.Rng, lo, hi)
}

func uniformBetween(rng *rand.Rand, lo, hi decimal.Decimal) decimal.Decimal {
	span := hi.Sub(lo)
	if span.IsZero() {
		return lo
	}
	u := decimal.NewFromFloat(rng.Float64())
	return lo.Add(span.Mul(u))
}
