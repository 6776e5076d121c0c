package types

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var ErrEmptySeries = errors.New("series has no entries")
var ErrBeforeSeries = errors.New("timestamp precedes first series entry")

// Series is an ordered run of daily candles for one asset. The guide
// series that defines the simulated trading calendar is a Series too.
type Series struct {
	Ticker  string
	Candles []Candle
}

func NewSeries(ticker string, candles []Candle) *Series {
	return &Series{Ticker: ticker, Candles: candles}
}

func (s *Series) Len() int { return len(s.Candles) }

func (s *Series) Time(i int) time.Time { return s.Candles[i].Timestamp }

// IndexAtOrBefore returns the index of the last candle whose timestamp
// is at or before t.
func (s *Series) IndexAtOrBefore(t time.Time) (int, error) {
	if len(s.Candles) == 0 {
		return 0, ErrEmptySeries
	}
	i := sort.Search(len(s.Candles), func(i int) bool {
		return s.Candles[i].Timestamp.After(t)
	})
	if i == 0 {
		return 0, ErrBeforeSeries
	}
	return i - 1, nil
}

// ClosestIndex returns the index of the candle whose timestamp is
// nearest to t, breaking ties toward the earlier candle.
func (s *Series) ClosestIndex(t time.Time) (int, error) {
	if len(s.Candles) == 0 {
		return 0, ErrEmptySeries
	}
	i, err := s.IndexAtOrBefore(t)
	if err != nil {
		return 0, nil // everything is after t, the first entry is closest
	}
	if i+1 >= len(s.Candles) {
		return i, nil
	}
	before := t.Sub(s.Candles[i].Timestamp)
	after := s.Candles[i+1].Timestamp.Sub(t)
	if after < before {
		return i + 1, nil
	}
	return i, nil
}

// ValueSeries is an ordered run of (time, value) pairs. Dividend events,
// interest rates and the simulation's output return series all use it.
type ValueSeries struct {
	Name   string
	Times  []time.Time
	Values []decimal.Decimal
}

func NewValueSeries(name string) *ValueSeries {
	return &ValueSeries{Name: name}
}

func (vs *ValueSeries) Len() int { return len(vs.Times) }

func (vs *ValueSeries) Append(t time.Time, v decimal.Decimal) {
	vs.Times = append(vs.Times, t)
	vs.Values = append(vs.Values, v)
}

func (vs *ValueSeries) IndexAtOrBefore(t time.Time) (int, error) {
	if len(vs.Times) == 0 {
		return 0, ErrEmptySeries
	}
	i := sort.Search(len(vs.Times), func(i int) bool {
		return vs.Times[i].After(t)
	})
	if i == 0 {
		return 0, ErrBeforeSeries
	}
	return i - 1, nil
}

// ClosestIndex returns the index of the entry nearest to t, breaking
// ties toward the earlier entry.
func (vs *ValueSeries) ClosestIndex(t time.Time) (int, error) {
	if len(vs.Times) == 0 {
		return 0, ErrEmptySeries
	}
	i, err := vs.IndexAtOrBefore(t)
	if err != nil {
		return 0, nil
	}
	if i+1 >= len(vs.Times) {
		return i, nil
	}
	before := t.Sub(vs.Times[i])
	after := vs.Times[i+1].Sub(t)
	if after < before {
		return i + 1, nil
	}
	return i, nil
}

// ValueAtOrBefore is a lookup convenience for sparse series such as
// interest rates, where "the most recent published value" is wanted.
func (vs *ValueSeries) ValueAtOrBefore(t time.Time) (decimal.Decimal, error) {
	i, err := vs.IndexAtOrBefore(t)
	if err != nil {
		return decimal.Zero, err
	}
	return vs.Values[i], nil
}

// Normalize divides every value by the first one so the series starts
// at 1.0. A no-op on an empty series or a zero first value.
func (vs *ValueSeries) Normalize() {
	if len(vs.Values) == 0 || vs.Values[0].IsZero() {
		return
	}
	first := vs.Values[0]
	for i := range vs.Values {
		vs.Values[i] = vs.Values[i].Div(first)
	}
}
