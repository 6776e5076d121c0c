package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"allocsim/internal/fixed"
)

// EndOfDay runs the account's daily business in order: pay any dividends
// that came due, snapshot total value, and accumulate the day's cash
// balance for the month's interest accrual. On the last day of a month
// it then runs the end-of-month business.
func (a *Account) EndOfDay(ti TimeInfo) error {
	if err := a.payDividends(); err != nil {
		return err
	}

	total, err := a.TotalValue()
	if err != nil {
		return err
	}
	a.valueHistory.Append(ti.Time, total)

	if ti.BusinessDay {
		a.monthCashSum = a.monthCashSum.Add(a.cash)
		a.monthBusinessDays++
	}

	if ti.LastDayOfMonth {
		if err := a.endOfMonth(); err != nil {
			return err
		}
	}
	return nil
}

// endOfMonth pays interest on the month's average cash balance and
// resets the monthly accumulator.
func (a *Account) endOfMonth() error {
	_, err := a.payInterest()
	a.monthCashSum = decimal.Zero
	a.monthBusinessDays = 0
	return err
}

// payDividends pays each held position's dividend if this month's
// dividend date has come due and has not already been paid. An asset
// with no dividend series is an expected condition, not an error. With
// reinvestment enabled the deposit is immediately spent re-buying the
// same asset; amounts too small to buy a minimum increment stay in cash.
func (a *Account) payDividends() error {
	now := a.broker.Now()
	for _, ticker := range a.Tickers() {
		divs := a.broker.Dividends(ticker)
		if divs == nil {
			continue
		}
		i, err := divs.IndexAtOrBefore(now)
		if err != nil {
			continue // no dividend event yet
		}
		evTime := divs.Times[i]
		if evTime.Month() != now.Month() || evTime.Year() != now.Year() {
			continue // no event this month
		}
		if last, ok := a.lastDivPaid[ticker]; ok && !last.Before(evTime) {
			continue // this event was already paid
		}

		perShare := divs.Values[i]
		amount := fixed.RoundTo(a.NumShares(ticker).Mul(perShare), fixed.Penny)
		if amount.LessThan(fixed.Penny) {
			a.lastDivPaid[ticker] = evTime
			continue
		}

		a.depositInternal(amount, fmt.Sprintf("dividend %s %s/share", ticker, perShare))
		a.lastDivPaid[ticker] = evTime

		if a.reinvestDividends {
			if _, err := a.BuyValue(ticker, amount, "dividend reinvestment "+ticker); err != nil {
				return err
			}
		}
	}
	return nil
}

// payInterest deposits one month of interest on the average daily cash
// balance. It reports applied=false for the expected skip conditions: a
// non-positive cash sum for the month, no interest-rate series, no rate
// published yet, or an amount under a penny.
func (a *Account) payInterest() (bool, error) {
	if a.monthCashSum.LessThanOrEqual(decimal.Zero) || a.monthBusinessDays == 0 {
		return false, nil
	}
	rates := a.broker.InterestRates()
	if rates == nil {
		return false, nil
	}
	annualPct, err := rates.ValueAtOrBefore(a.broker.Now())
	if err != nil {
		return false, nil // series starts after the current date
	}

	monthly, err := monthlyRate(annualPct)
	if err != nil {
		return false, err
	}

	avgCash := a.monthCashSum.Div(decimal.NewFromInt(int64(a.monthBusinessDays)))
	interest := fixed.RoundTo(avgCash.Mul(monthly), fixed.Penny)
	if interest.LessThan(fixed.Penny) {
		return false, nil
	}

	a.depositInternal(interest, fmt.Sprintf("interest %s%% annual", annualPct))
	return true, nil
}

// monthlyRate converts an annual percentage rate to the equivalent
// monthly compounding rate: (1+r)^(1/12) - 1.
func monthlyRate(annualPct decimal.Decimal) (decimal.Decimal, error) {
	one := decimal.New(1, 0)
	base := one.Add(annualPct.Div(decimal.New(100, 0)))
	twelfth := one.Div(decimal.New(12, 0))
	grown, err := base.PowWithPrecision(twelfth, 12)
	if err != nil {
		return decimal.Zero, fmt.Errorf("annual to monthly rate: %w", err)
	}
	return grown.Sub(one), nil
}
