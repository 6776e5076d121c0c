// Package momentum implements a single-asset selection predictor: each
// day it puts the full weight on the asset with the best trailing
// return, or on cash when every asset is down. "Select one asset" is
// just a distribution with one weight set to 1.0, so it flows through
// the same rebalancing path as any other strategy.
package momentum

import (
	"github.com/shopspring/decimal"

	"allocsim/internal/engine"
	"allocsim/types"
)

type Predictor struct {
	tickers  []string
	lookback int
}

// New builds a momentum predictor over the given asset universe with a
// trailing window of lookback trading days.
func New(tickers []string, lookback int) *Predictor {
	if lookback < 1 {
		lookback = 1
	}
	return &Predictor{tickers: tickers, lookback: lookback}
}

func (p *Predictor) Name() string { return "momentum" }

func (p *Predictor) Allocate(view engine.MarketView) (*types.Distribution, error) {
	best := ""
	bestReturn := decimal.Zero

	for _, ticker := range p.tickers {
		history := view.History(ticker)
		if len(history) <= p.lookback {
			continue
		}
		then := history[len(history)-1-p.lookback].Close
		now := history[len(history)-1].Close
		if then.IsZero() {
			continue
		}
		ret := now.Sub(then).Div(then)
		if ret.GreaterThan(bestReturn) {
			best = ticker
			bestReturn = ret
		}
	}

	d := types.NewDistribution("momentum")
	if best == "" {
		d.Set(types.CashTicker, decimal.New(1, 0))
	} else {
		d.Set(best, decimal.New(1, 0))
	}
	return d, nil
}
