package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"allocsim/types"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func returnSeries(start string, values ...string) *types.ValueSeries {
	vs := types.NewValueSeries("daily-returns")
	t := day(start)
	for _, v := range values {
		vs.Append(t, decimal.RequireFromString(v))
		t = t.AddDate(0, 0, 1)
	}
	return vs
}

func TestGenerateBasics(t *testing.T) {
	daily := returnSeries("2024-01-02", "1", "1.01", "1.02", "0.99", "1.05")
	ledger := []types.Transaction{
		{Kind: types.TxOpen, Flow: types.InFlow, Amount: decimal.NewFromInt(10000)},
		{Kind: types.TxBuy, Flow: types.Internal, Amount: decimal.NewFromInt(5000)},
		{Kind: types.TxSell, Flow: types.Internal, Amount: decimal.NewFromInt(2000)},
		{Kind: types.TxDeposit, Flow: types.Internal, Amount: decimal.RequireFromString("50"), Memo: "dividend VTI 0.5/share"},
		{Kind: types.TxDeposit, Flow: types.Internal, Amount: decimal.RequireFromString("24.66"), Memo: "interest 3% annual"},
		{Kind: types.TxDeposit, Flow: types.InFlow, Amount: decimal.NewFromInt(1000), Memo: "external top-up"},
	}

	r := Generate(daily, ledger, decimal.Zero)

	if !r.StartDate.Equal(day("2024-01-02")) {
		t.Errorf("StartDate = %s", r.StartDate)
	}
	if r.TotalPeriod != 4*24*time.Hour {
		t.Errorf("TotalPeriod = %s, want 96h", r.TotalPeriod)
	}
	if !r.FinalReturn.Equal(decimal.RequireFromString("1.05")) {
		t.Errorf("FinalReturn = %s, want 1.05", r.FinalReturn)
	}
	if r.TotalTrades != 2 {
		t.Errorf("TotalTrades = %d, want 2", r.TotalTrades)
	}

	// Internal deposits split by memo; the external deposit counts as neither.
	if !r.DividendIncome.Equal(decimal.RequireFromString("50")) {
		t.Errorf("DividendIncome = %s, want 50", r.DividendIncome)
	}
	if !r.InterestIncome.Equal(decimal.RequireFromString("24.66")) {
		t.Errorf("InterestIncome = %s, want 24.66", r.InterestIncome)
	}

	if !r.CAGR.GreaterThan(decimal.Zero) {
		t.Errorf("CAGR = %s, want positive for a rising series", r.CAGR)
	}
}

func TestGenerateDrawdown(t *testing.T) {
	// Peak at 1.2, trough at 0.9: drawdown 25%, lasting two days.
	daily := returnSeries("2024-01-02", "1", "1.2", "1.0", "0.9", "1.3")

	r := Generate(daily, nil, decimal.Zero)

	if !r.MaxDrawdownPercent.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("MaxDrawdownPercent = %s, want 0.25", r.MaxDrawdownPercent)
	}
	if r.MaxDrawdownDays != 2*24*time.Hour {
		t.Errorf("MaxDrawdownDays = %s, want 48h", r.MaxDrawdownDays)
	}
}

func TestGenerateFlatSeriesHasZeroSharpe(t *testing.T) {
	daily := returnSeries("2024-01-02", "1", "1", "1", "1")
	r := Generate(daily, nil, decimal.Zero)
	if !r.SharpeRatio.IsZero() {
		t.Errorf("SharpeRatio = %s, want 0 for zero volatility", r.SharpeRatio)
	}
	if !r.MaxDrawdownPercent.IsZero() {
		t.Errorf("MaxDrawdownPercent = %s, want 0", r.MaxDrawdownPercent)
	}
}

func TestGenerateCompletesBeforeReturning(t *testing.T) {
	// Every concurrently computed field must be written before Generate
	// hands the report back.
	daily := returnSeries("2024-01-02", "1", "1.1", "1.05", "1.2")
	ledger := []types.Transaction{
		{Kind: types.TxBuy, Flow: types.Internal, Amount: decimal.NewFromInt(5000)},
		{Kind: types.TxDeposit, Flow: types.Internal, Amount: decimal.NewFromInt(50), Memo: "dividend VTI 0.5/share"},
	}

	for i := 0; i < 200; i++ {
		r := Generate(daily, ledger, decimal.Zero)
		if r.CAGR.IsZero() {
			t.Fatal("CAGR missing from returned report")
		}
		if r.MaxDrawdownPercent.IsZero() {
			t.Fatal("MaxDrawdownPercent missing from returned report")
		}
		if r.SharpeRatio.IsZero() {
			t.Fatal("SharpeRatio missing from returned report")
		}
		if r.TotalTrades != 1 || !r.DividendIncome.Equal(decimal.NewFromInt(50)) {
			t.Fatal("ledger totals missing from returned report")
		}
	}
}

func TestGenerateEmptySeries(t *testing.T) {
	r := Generate(types.NewValueSeries("empty"), nil, decimal.Zero)
	if r.TotalTrades != 0 || !r.FinalReturn.IsZero() {
		t.Errorf("empty series must produce a zero report, got %+v", r)
	}
}
