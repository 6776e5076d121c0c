package engine

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"allocsim/types"
)

var ErrSellExceedsPosition = errors.New("sell quantity exceeds held shares")

// Position holds all lots of one asset inside one account, ordered by
// purchase time. The cached share count always equals the sum of lot
// quantities.
type Position struct {
	Ticker string
	lots   []*Lot
	shares decimal.Decimal
}

func NewPosition(ticker string) *Position {
	return &Position{Ticker: ticker}
}

func (p *Position) NumShares() decimal.Decimal { return p.shares }

func (p *Position) NumLots() int { return len(p.lots) }

// Lots returns a copy of the lot list for inspection.
func (p *Position) Lots() []Lot {
	out := make([]Lot, len(p.lots))
	for i, l := range p.lots {
		out[i] = *l
	}
	return out
}

func (p *Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return p.shares.Mul(price)
}

// Add appends a newly purchased lot. Lots arrive in purchase order, so
// the list stays sorted oldest first.
func (p *Position) Add(l Lot) {
	cp := l
	p.lots = append(p.lots, &cp)
	p.shares = p.shares.Add(l.Quantity)
}

// Sub consumes qty shares for a sale executed at saleTime/salePrice and
// returns the tax receipt. Lot selection is a two-phase tax-minimization
// policy:
//
//  1. oldest to newest, consuming only lots that are long-term relative
//     to the sale date, stopping at the first lot that is not;
//  2. if quantity remains, newest to oldest (LIFO) through the
//     short-term lots.
//
// Long-term lots realize gains into the long-term accumulator, short-term
// into the short-term one. Callers must never request more than
// NumShares(); doing so returns ErrSellExceedsPosition with the position
// untouched.
func (p *Position) Sub(qty decimal.Decimal, saleTime time.Time, salePrice decimal.Decimal) (types.Receipt, error) {
	if qty.GreaterThan(p.shares) {
		return types.Receipt{}, ErrSellExceedsPosition
	}

	remaining := qty
	longGain := decimal.Zero
	shortGain := decimal.Zero

	// Phase 1: drain long-term lots oldest first.
	firstShort := len(p.lots)
	for i, l := range p.lots {
		if !longTermHolding(l.PurchaseTime, saleTime) {
			firstShort = i
			break
		}
		if remaining.IsZero() {
			firstShort = i
			break
		}
		take := decimal.Min(remaining, l.Quantity)
		longGain = longGain.Add(salePrice.Sub(l.PurchasePrice).Mul(take))
		l.Quantity = l.Quantity.Sub(take)
		remaining = remaining.Sub(take)
	}

	// Phase 2: drain short-term lots newest first.
	for i := len(p.lots) - 1; i >= firstShort && remaining.GreaterThan(decimal.Zero); i-- {
		l := p.lots[i]
		take := decimal.Min(remaining, l.Quantity)
		shortGain = shortGain.Add(salePrice.Sub(l.PurchasePrice).Mul(take))
		l.Quantity = l.Quantity.Sub(take)
		remaining = remaining.Sub(take)
	}

	if !remaining.IsZero() {
		// qty was covered by the share-count check, so every unit must
		// have found a lot.
		panic("position: lots and cached share count disagree")
	}

	p.shares = p.shares.Sub(qty)
	p.compact()

	return types.Receipt{
		Ticker:        p.Ticker,
		Time:          saleTime,
		LongTermGain:  longGain,
		ShortTermGain: shortGain,
		Balance:       p.MarketValue(salePrice),
	}, nil
}

// compact drops fully consumed lots, preserving order.
func (p *Position) compact() {
	kept := p.lots[:0]
	for _, l := range p.lots {
		if l.Quantity.GreaterThan(decimal.Zero) {
			kept = append(kept, l)
		}
	}
	p.lots = kept
}
