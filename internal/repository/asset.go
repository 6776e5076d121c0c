package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"allocsim/types"
)

// GetAssetByTicker retrieves a types.Asset by its ticker.
func (db *Database) GetAssetByTicker(ctx context.Context, ticker string) (*types.Asset, error) {
	var a types.Asset
	err := db.conn.QueryRow(ctx,
		`SELECT id, ticker, name, type, created_at, modified_at
		 FROM assets WHERE ticker = $1`, ticker).
		Scan(&a.Id, &a.Ticker, &a.Name, &a.Type, &a.CreatedAt, &a.ModifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ticker %s: %w", ticker, ErrAssetNotFound)
		}
		return nil, err
	}
	return &a, nil
}
