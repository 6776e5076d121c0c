package engine

import "github.com/shopspring/decimal"

// Slippage degrades a quoted price in the direction unfavorable to the
// trader: buys fill above the quote, sells below it.
type Slippage struct {
	BuyFrac   decimal.Decimal
	BuyConst  decimal.Decimal
	SellFrac  decimal.Decimal
	SellConst decimal.Decimal
}

// NoSlippage fills at the quoted price exactly.
func NoSlippage() Slippage { return Slippage{} }

func (s Slippage) Buy(price decimal.Decimal) decimal.Decimal {
	one := decimal.New(1, 0)
	return price.Mul(one.Add(s.BuyFrac)).Add(s.BuyConst)
}

func (s Slippage) Sell(price decimal.Decimal) decimal.Decimal {
	one := decimal.New(1, 0)
	return price.Mul(one.Sub(s.SellFrac)).Sub(s.SellConst)
}
