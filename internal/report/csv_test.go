package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"allocsim/internal/engine"
	"allocsim/types"
)

func TestWriteSeriesCSV(t *testing.T) {
	vs := returnSeries("2024-01-02", "1", "1.05")

	var buf bytes.Buffer
	if err := writeSeriesCSV(&buf, vs); err != nil {
		t.Fatalf("writeSeriesCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(rows))
	}
	if rows[0][0] != "time" || rows[0][1] != "value" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][1] != "1.05" {
		t.Errorf("second value = %s, want 1.05", rows[2][1])
	}
}

func TestWriteHoldingsCSVFile(t *testing.T) {
	d := types.NewDistribution("holdings")
	d.Set("VTI", decimal.RequireFromString("0.6"))
	d.Set(types.CashTicker, decimal.RequireFromString("0.4"))
	holdings := []engine.HoldingsSnapshot{{Time: day("2024-01-31"), Holdings: d}}

	path := t.TempDir() + "/holdings.csv"
	if err := WriteHoldingsCSVFile(path, holdings); err != nil {
		t.Fatalf("WriteHoldingsCSVFile: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus one per ticker", len(rows))
	}
	// Tickers come out in the distribution's sorted order.
	if rows[1][1] != "VTI" || rows[2][1] != "cash" {
		t.Errorf("ticker order = %s, %s", rows[1][1], rows[2][1])
	}
}
