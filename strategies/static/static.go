// Package static implements the simplest predictor: a fixed target
// allocation, requested every day.
package static

import (
	"fmt"

	"github.com/shopspring/decimal"

	"allocsim/internal/engine"
	"allocsim/types"
)

type Predictor struct {
	target *types.Distribution
}

// New builds a constant-allocation predictor from ticker weights. The
// weights are normalized once so the target always sums to 1.0.
func New(weights map[string]float64) (*Predictor, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("static predictor needs at least one weight")
	}
	d := types.NewDistribution("static")
	for ticker, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("static predictor: negative weight %f for %s", w, ticker)
		}
		d.Set(ticker, decimal.NewFromFloat(w))
	}
	if d.Sum().IsZero() {
		return nil, fmt.Errorf("static predictor: weights sum to zero")
	}
	d.Normalize()
	return &Predictor{target: d}, nil
}

func (p *Predictor) Name() string { return "static" }

func (p *Predictor) Allocate(engine.MarketView) (*types.Distribution, error) {
	return p.target.Copy(), nil
}
