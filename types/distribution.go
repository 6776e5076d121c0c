package types

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CashTicker is the synthetic slot a Distribution uses for uninvested cash.
const CashTicker = "cash"

// Distribution is a named weight vector over asset tickers, one slot of
// which may be CashTicker. It represents either a strategy's target
// allocation or an account's realized allocation. Values handed out by
// strategies are fresh copies; nothing in the engine retains or reuses a
// caller's buffer.
type Distribution struct {
	Name    string
	Weights map[string]decimal.Decimal
}

func NewDistribution(name string) *Distribution {
	return &Distribution{
		Name:    name,
		Weights: make(map[string]decimal.Decimal),
	}
}

func (d *Distribution) Set(ticker string, weight decimal.Decimal) {
	d.Weights[ticker] = weight
}

func (d *Distribution) Weight(ticker string) decimal.Decimal {
	return d.Weights[ticker] // zero value is decimal.Zero
}

// Tickers returns the tickers carrying a weight, sorted, so iteration
// order is stable across runs.
func (d *Distribution) Tickers() []string {
	out := make([]string, 0, len(d.Weights))
	for t := range d.Weights {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (d *Distribution) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, w := range d.Weights {
		sum = sum.Add(w)
	}
	return sum
}

// SumsToOne reports whether the weights total 1.0 within eps.
func (d *Distribution) SumsToOne(eps decimal.Decimal) bool {
	return d.Sum().Sub(decimal.New(1, 0)).Abs().LessThanOrEqual(eps)
}

// Normalize rescales the weights in place so they sum to 1.0. A no-op
// when the current sum is zero.
func (d *Distribution) Normalize() {
	sum := d.Sum()
	if sum.IsZero() {
		return
	}
	for t, w := range d.Weights {
		d.Weights[t] = w.Div(sum)
	}
}

// Distance is the largest absolute per-ticker weight difference between
// two distributions, taken over the union of their tickers.
func (d *Distribution) Distance(other *Distribution) decimal.Decimal {
	max := decimal.Zero
	seen := make(map[string]bool, len(d.Weights))
	for t, w := range d.Weights {
		seen[t] = true
		diff := w.Sub(other.Weight(t)).Abs()
		if diff.GreaterThan(max) {
			max = diff
		}
	}
	for t, w := range other.Weights {
		if seen[t] {
			continue
		}
		if w.Abs().GreaterThan(max) {
			max = w.Abs()
		}
	}
	return max
}

// Copy returns an independent distribution with the same weights.
func (d *Distribution) Copy() *Distribution {
	out := NewDistribution(d.Name)
	for t, w := range d.Weights {
		out.Weights[t] = w
	}
	return out
}

func (d *Distribution) String() string {
	var b strings.Builder
	b.WriteString(d.Name)
	b.WriteString("{")
	for i, t := range d.Tickers() {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(t)
		b.WriteString(":")
		b.WriteString(d.Weights[t].StringFixed(4))
	}
	b.WriteString("}")
	return b.String()
}
