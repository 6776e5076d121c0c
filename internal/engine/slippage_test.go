package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSlippageDirection(t *testing.T) {
	s := Slippage{
		BuyFrac:   decimal.RequireFromString("0.001"),
		BuyConst:  decimal.RequireFromString("0.05"),
		SellFrac:  decimal.RequireFromString("0.002"),
		SellConst: decimal.RequireFromString("0.03"),
	}
	quote := decimal.RequireFromString("100")

	buy := s.Buy(quote)
	if want := decimal.RequireFromString("100.15"); !buy.Equal(want) {
		t.Errorf("Buy(100) = %s, want %s", buy, want)
	}
	sell := s.Sell(quote)
	if want := decimal.RequireFromString("99.77"); !sell.Equal(want) {
		t.Errorf("Sell(100) = %s, want %s", sell, want)
	}

	// Slippage is always unfavorable: buys above the quote, sells below.
	if !buy.GreaterThan(quote) {
		t.Errorf("buy price %s not above quote %s", buy, quote)
	}
	if !sell.LessThan(quote) {
		t.Errorf("sell price %s not below quote %s", sell, quote)
	}
}

func TestNoSlippage(t *testing.T) {
	quote := decimal.RequireFromString("42.42")
	s := NoSlippage()
	if !s.Buy(quote).Equal(quote) || !s.Sell(quote).Equal(quote) {
		t.Errorf("NoSlippage must fill at the quote, got buy=%s sell=%s", s.Buy(quote), s.Sell(quote))
	}
}
