package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"allocsim/internal/engine"
	"allocsim/types"
)

// GetDividends loads an asset's per-share dividend events as a value
// series named "<ticker>-dividends". An asset with no dividend rows is
// an expected condition and yields ErrNoSeries; callers typically skip
// registering the series in that case.
func (db *Database) GetDividends(ctx context.Context, asset *types.Asset) (*types.ValueSeries, error) {
	return db.loadValueSeries(ctx,
		asset.Ticker+engine.DividendSuffix,
		`SELECT ex_date, amount FROM dividends
		 WHERE asset_id = $1 ORDER BY ex_date`, asset.Id)
}

// GetInterestRates loads the annual interest rate series (percentages,
// e.g. 3.0 for 3%) under the synthetic "interest-rates" name.
func (db *Database) GetInterestRates(ctx context.Context) (*types.ValueSeries, error) {
	return db.loadValueSeries(ctx,
		engine.InterestRateSeries,
		`SELECT published_at, annual_rate FROM interest_rates ORDER BY published_at`)
}

func (db *Database) loadValueSeries(ctx context.Context, name, query string, args ...any) (*types.ValueSeries, error) {
	rows, err := db.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	vs := types.NewValueSeries(name)
	for rows.Next() {
		var t time.Time
		var v decimal.Decimal
		if err := rows.Scan(&t, &v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		vs.Append(t, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if vs.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoSeries)
	}
	return vs, nil
}
