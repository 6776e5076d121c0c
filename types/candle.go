package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one daily OHLC record for an asset. AdjClose carries the
// dividend/split-adjusted close used by the adjusted price model; for
// assets without adjustment data it equals Close.
type Candle struct {
	AssetId   int             `json:"id"`
	Ticker    string          `json:"ticker"`
	Open      decimal.Decimal `json:"open"`
	Close     decimal.Decimal `json:"close"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	AdjClose  decimal.Decimal `json:"adjClose"`
	Volume    decimal.Decimal `json:"volume"`
	Interval  Interval        `json:"interval"`
	Timestamp time.Time       `json:"timestamp"`
}
