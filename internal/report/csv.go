package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"allocsim/internal/engine"
	"allocsim/types"
)

// WriteSeriesCSVFile writes a return series to a CSV file at the given path.
func WriteSeriesCSVFile(path string, vs *types.ValueSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create series file: %w", err)
	}
	defer f.Close()

	return writeSeriesCSV(f, vs)
}

// writeSeriesCSV writes a series to any io.Writer as CSV. Pass os.Stdout
// for debugging, or a file.
func writeSeriesCSV(w io.Writer, vs *types.ValueSeries) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"time", "value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < vs.Len(); i++ {
		record := []string{
			vs.Times[i].Format(time.RFC3339),
			vs.Values[i].String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteHoldingsCSVFile writes the per-period holdings snapshots, one row
// per (period, ticker) pair.
func WriteHoldingsCSVFile(path string, holdings []engine.HoldingsSnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create holdings file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write([]string{"time", "ticker", "weight"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, snap := range holdings {
		for _, ticker := range snap.Holdings.Tickers() {
			record := []string{
				snap.Time.Format(time.RFC3339),
				ticker,
				snap.Holdings.Weight(ticker).String(),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("write record: %w", err)
			}
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
