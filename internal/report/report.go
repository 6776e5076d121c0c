// Package report summarizes a finished run from its normalized return
// series and ledger. Everything here is presentational; ledger math
// stays in the engine.
package report

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"allocsim/internal/fixed"
	"allocsim/types"
)

type Report struct {
	StartDate   time.Time
	TotalPeriod time.Duration
	TotalTrades int

	FinalReturn decimal.Decimal
	CAGR        decimal.Decimal

	MaxDrawdownPercent decimal.Decimal
	MaxDrawdownDays    time.Duration

	SharpeRatio decimal.Decimal

	DividendIncome decimal.Decimal
	InterestIncome decimal.Decimal
}

// Generate computes the run summary. The independent metrics are
// computed concurrently; each writes a disjoint set of fields.
func Generate(daily *types.ValueSeries, ledger []types.Transaction, riskFreeRate decimal.Decimal) *Report {
	r := &Report{}
	if daily.Len() == 0 {
		return r
	}
	r.StartDate = daily.Times[0]
	r.TotalPeriod = daily.Times[daily.Len()-1].Sub(daily.Times[0])
	r.FinalReturn = daily.Values[daily.Len()-1]

	// Done must fire after the field assignment, or Wait can return
	// before the write lands.
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		r.CAGR = calcCAGR(daily)
	}()
	go func() {
		defer wg.Done()
		r.MaxDrawdownPercent, r.MaxDrawdownDays = calcDrawdown(daily)
	}()
	go func() {
		defer wg.Done()
		r.SharpeRatio = calcSharpe(daily, riskFreeRate)
	}()
	go func() {
		defer wg.Done()
		r.TotalTrades, r.DividendIncome, r.InterestIncome = calcLedgerTotals(ledger)
	}()
	wg.Wait()

	return r
}

func calcCAGR(daily *types.ValueSeries) decimal.Decimal {
	days := daily.Times[daily.Len()-1].Sub(daily.Times[0]).Hours() / 24
	if days <= 0 {
		return decimal.Zero
	}
	final := fixed.ToFloat(daily.Values[daily.Len()-1])
	if final <= 0 {
		return decimal.Zero
	}
	cagr := math.Pow(final, 365.25/days) - 1
	return decimal.NewFromFloat(cagr)
}

func calcDrawdown(daily *types.ValueSeries) (decimal.Decimal, time.Duration) {
	maxDD := decimal.Zero
	var maxDDDur time.Duration
	peak := daily.Values[0]
	peakTime := daily.Times[0]

	for i := 1; i < daily.Len(); i++ {
		v := daily.Values[i]
		if v.GreaterThan(peak) {
			peak = v
			peakTime = daily.Times[i]
			continue
		}
		dd := peak.Sub(v).Div(peak)
		if dd.GreaterThan(maxDD) {
			maxDD = dd
		}
		if dur := daily.Times[i].Sub(peakTime); dur > maxDDDur {
			maxDDDur = dur
		}
	}
	return maxDD, maxDDDur
}

func calcSharpe(daily *types.ValueSeries, riskFreeRate decimal.Decimal) decimal.Decimal {
	if daily.Len() < 3 {
		return decimal.Zero
	}

	rets := make([]float64, 0, daily.Len()-1)
	for i := 1; i < daily.Len(); i++ {
		prev := fixed.ToFloat(daily.Values[i-1])
		cur := fixed.ToFloat(daily.Values[i])
		if prev == 0 {
			continue
		}
		rets = append(rets, cur/prev-1)
	}
	if len(rets) < 2 {
		return decimal.Zero
	}

	mean := 0.0
	for _, x := range rets {
		mean += x
	}
	mean /= float64(len(rets))

	variance := 0.0
	for _, x := range rets {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(rets) - 1)
	std := math.Sqrt(variance)
	if std == 0 {
		return decimal.Zero
	}

	// Annualize against a 252-trading-day year.
	dailyRF := fixed.ToFloat(riskFreeRate) / 252
	sharpe := (mean - dailyRF) / std * math.Sqrt(252)
	return decimal.NewFromFloat(sharpe)
}

func calcLedgerTotals(ledger []types.Transaction) (int, decimal.Decimal, decimal.Decimal) {
	trades := 0
	dividends := decimal.Zero
	interest := decimal.Zero
	for _, tx := range ledger {
		switch tx.Kind {
		case types.TxBuy, types.TxSell:
			trades++
		case types.TxDeposit:
			if tx.Flow != types.Internal {
				continue
			}
			if isDividendMemo(tx.Memo) {
				dividends = dividends.Add(tx.Amount)
			} else {
				interest = interest.Add(tx.Amount)
			}
		}
	}
	return trades, dividends, interest
}

func isDividendMemo(memo string) bool {
	return strings.HasPrefix(memo, "dividend")
}

func Print(r *Report) {
	fmt.Println("===== Simulation Report =====")
	fmt.Printf("Start Date:          %s\n", r.StartDate.Format("2006-01-02"))
	fmt.Printf("Total Period:        %d days\n", int(r.TotalPeriod/(24*time.Hour)))
	fmt.Printf("Total Trades:        %d\n", r.TotalTrades)

	fmt.Println("\n-- Performance --")
	fmt.Printf("Final Return:        %s\n", r.FinalReturn.StringFixed(4))
	fmt.Printf("CAGR:                %s\n", r.CAGR.StringFixed(4))
	fmt.Printf("Max Drawdown %%:      %s\n", r.MaxDrawdownPercent.StringFixed(4))
	fmt.Printf("Max Drawdown Days:   %d\n", int(r.MaxDrawdownDays/(24*time.Hour)))
	fmt.Printf("Sharpe Ratio:        %s\n", r.SharpeRatio.StringFixed(4))

	fmt.Println("\n-- Income --")
	fmt.Printf("Dividends:           %s\n", r.DividendIncome.StringFixed(2))
	fmt.Printf("Interest:            %s\n", r.InterestIncome.StringFixed(2))

	fmt.Println("=============================")
}
