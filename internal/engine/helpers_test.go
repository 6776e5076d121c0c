package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"allocsim/types"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// businessDays generates n consecutive weekday dates starting at start.
func businessDays(start string, n int) []time.Time {
	t := mustDate(start)
	out := make([]time.Time, 0, n)
	for len(out) < n {
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, t)
		}
		t = t.AddDate(0, 0, 1)
	}
	return out
}

func flatCandle(ticker string, ts time.Time, price decimal.Decimal) types.Candle {
	return types.Candle{
		Ticker:    ticker,
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
		AdjClose:  price,
		Interval:  types.Day,
		Timestamp: ts,
	}
}

// flatSeries builds a candle series with the same price every day.
func flatSeries(ticker string, price string, days []time.Time) *types.Series {
	p := decimal.RequireFromString(price)
	candles := make([]types.Candle, len(days))
	for i, d := range days {
		candles[i] = flatCandle(ticker, d, p)
	}
	return types.NewSeries(ticker, candles)
}

// testBroker wires a broker over flat-priced series, clock at the first
// guide day.
func testBroker(days []time.Time, prices map[string]string) *Broker {
	var guide *types.Series
	series := make([]*types.Series, 0, len(prices))
	for ticker, price := range prices {
		s := flatSeries(ticker, price, days)
		series = append(series, s)
		if guide == nil {
			guide = s
		}
	}
	b, err := NewBroker(guide, ClosePrice{}, NoSlippage(), false)
	if err != nil {
		panic(err)
	}
	for _, s := range series {
		b.AddSeries(s)
	}
	return b
}
