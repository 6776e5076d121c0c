package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"allocsim/types"
)

var ErrFutureQuote = errors.New("price requested for a future timestamp")
var ErrUnknownTicker = errors.New("no price series for ticker")
var ErrDoubleAdjust = errors.New("adjusted-close model combined with pre-adjusted series")

// Aux series naming: dividends live under "<ticker>-dividends", the
// interest rate series under "interest-rates".
const (
	DividendSuffix     = "-dividends"
	InterestRateSeries = "interest-rates"
)

// Broker owns everything price- and time-shaped for one simulation
// configuration: the guide calendar, the per-asset candle series and aux
// series, the price model and slippage, the simulated clock, and the
// open accounts. It is the only source of "current price" and "current
// time" downstream.
type Broker struct {
	guide  *types.Series
	series map[string]*types.Series
	aux    map[string]*types.ValueSeries

	model    PriceModel
	slip     Slippage
	adjusted bool

	now      time.Time
	accounts []*Account
}

// NewBroker wires a broker from pre-loaded data. With adjustPrices set,
// every candle series is rescaled by its AdjClose/Close ratio at load
// time; combining that with the adjusted-close price model would adjust
// twice and is rejected.
func NewBroker(guide *types.Series, model PriceModel, slip Slippage, adjustPrices bool) (*Broker, error) {
	if guide == nil || guide.Len() == 0 {
		return nil, errors.New("broker needs a non-empty guide series")
	}
	if adjustPrices {
		if _, ok := model.(AdjustedClosePrice); ok {
			return nil, ErrDoubleAdjust
		}
	}
	return &Broker{
		guide:    guide,
		series:   make(map[string]*types.Series),
		aux:      make(map[string]*types.ValueSeries),
		model:    model,
		slip:     slip,
		adjusted: adjustPrices,
		now:      guide.Time(0),
	}, nil
}

// AddSeries registers an asset's candle series, applying the price
// adjustment when the broker is configured for it.
func (b *Broker) AddSeries(s *types.Series) {
	if b.adjusted {
		s = adjustSeries(s)
	}
	b.series[s.Ticker] = s
}

// AddAux registers an auxiliary value series under its synthetic name.
func (b *Broker) AddAux(vs *types.ValueSeries) {
	b.aux[vs.Name] = vs
}

func (b *Broker) Guide() *types.Series { return b.guide }

// adjustSeries rescales OHLC by the dividend-adjustment ratio. The input
// series is left untouched so it can be shared across runs.
func adjustSeries(s *types.Series) *types.Series {
	out := &types.Series{Ticker: s.Ticker, Candles: make([]types.Candle, len(s.Candles))}
	for i, c := range s.Candles {
		ratio := decimal.New(1, 0)
		if !c.Close.IsZero() && !c.AdjClose.IsZero() {
			ratio = c.AdjClose.Div(c.Close)
		}
		adj := c
		adj.Open = c.Open.Mul(ratio)
		adj.High = c.High.Mul(ratio)
		adj.Low = c.Low.Mul(ratio)
		adj.Close = c.AdjClose
		out.Candles[i] = adj
	}
	return out
}

// OpenAccount opens a fresh account funded with principal.
func (b *Broker) OpenAccount(id string, kind types.AccountKind, principal decimal.Decimal, reinvestDividends bool) *Account {
	a := newAccount(id, kind, b, principal, reinvestDividends)
	b.accounts = append(b.accounts, a)
	return a
}

func (b *Broker) Accounts() []*Account { return b.accounts }

// Reset rewinds the clock and drops all accounts, leaving the broker
// equivalent to a freshly constructed one over the same data. Repeated
// strategy evaluations reuse one broker this way without re-loading
// series.
func (b *Broker) Reset() {
	b.now = b.guide.Time(0)
	b.accounts = nil
}

func (b *Broker) Now() time.Time { return b.now }

// setTime advances the simulated clock. Only the simulation loop calls it.
func (b *Broker) setTime(t time.Time) { b.now = t }

// PriceAt quotes ticker at time t using the configured price model.
// Asking for a time after the current clock is a lookahead bug and fails
// loudly.
func (b *Broker) PriceAt(ticker string, t time.Time) (decimal.Decimal, error) {
	if t.After(b.now) {
		return decimal.Zero, fmt.Errorf("%s at %s with clock at %s: %w",
			ticker, t.Format("2006-01-02"), b.now.Format("2006-01-02"), ErrFutureQuote)
	}
	s, ok := b.series[ticker]
	if !ok {
		return decimal.Zero, fmt.Errorf("%q: %w", ticker, ErrUnknownTicker)
	}
	i, err := s.IndexAtOrBefore(t)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s at %s: %w", ticker, t.Format("2006-01-02"), err)
	}
	return b.model.Price(s.Candles[i]), nil
}

// QuotePrice is the model price at the current clock, before slippage.
func (b *Broker) QuotePrice(ticker string) (decimal.Decimal, error) {
	return b.PriceAt(ticker, b.now)
}

// BuyPrice is the current quote degraded by buy-side slippage.
func (b *Broker) BuyPrice(ticker string) (decimal.Decimal, error) {
	p, err := b.QuotePrice(ticker)
	if err != nil {
		return decimal.Zero, err
	}
	return b.slip.Buy(p), nil
}

// SellPrice is the current quote degraded by sell-side slippage.
func (b *Broker) SellPrice(ticker string) (decimal.Decimal, error) {
	p, err := b.QuotePrice(ticker)
	if err != nil {
		return decimal.Zero, err
	}
	return b.slip.Sell(p), nil
}

// Dividends returns the dividend event series for a ticker, nil when the
// asset has none (an expected condition).
func (b *Broker) Dividends(ticker string) *types.ValueSeries {
	return b.aux[ticker+DividendSuffix]
}

// InterestRates returns the annual interest rate series, nil when none
// was loaded.
func (b *Broker) InterestRates() *types.ValueSeries {
	return b.aux[InterestRateSeries]
}

// History returns the candles for ticker up to and including the current
// clock, so strategies cannot see forward.
func (b *Broker) History(ticker string) []types.Candle {
	s, ok := b.series[ticker]
	if !ok {
		return nil
	}
	i, err := s.IndexAtOrBefore(b.now)
	if err != nil {
		return nil
	}
	return s.Candles[:i+1]
}

// AuxValue returns the most recent value of a named aux series at or
// before the current clock.
func (b *Broker) AuxValue(name string) (decimal.Decimal, bool) {
	vs, ok := b.aux[name]
	if !ok {
		return decimal.Zero, false
	}
	v, err := vs.ValueAtOrBefore(b.now)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
