package repository

import (
	"context"
	"fmt"
	"time"

	"allocsim/types"
)

// GetCandles loads the daily candles for an asset over [start, end] into
// an in-memory series, ordered by timestamp. The simulation core only
// ever sees these in-memory series; this is the whole data boundary.
func (db *Database) GetCandles(ctx context.Context, asset *types.Asset, start, end time.Time) (*types.Series, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT open, high, low, close, adj_close, volume, bucket
		 FROM daily_candles
		 WHERE asset_id = $1 AND bucket BETWEEN $2 AND $3
		 ORDER BY bucket`, asset.Id, start, end)
	if err != nil {
		return nil, fmt.Errorf("query candles for %s: %w", asset.Ticker, err)
	}
	defer rows.Close()

	var candles []types.Candle
	for rows.Next() {
		c := types.Candle{
			AssetId:  asset.Id,
			Ticker:   asset.Ticker,
			Interval: types.Day,
		}
		if err := rows.Scan(&c.Open, &c.High, &c.Low, &c.Close, &c.AdjClose, &c.Volume, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scan candle for %s: %w", asset.Ticker, err)
		}
		if c.AdjClose.IsZero() {
			c.AdjClose = c.Close
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%s %s to %s: %w",
			asset.Ticker, start.Format("2006-01-02"), end.Format("2006-01-02"), ErrNoCandles)
	}
	return types.NewSeries(asset.Ticker, candles), nil
}
