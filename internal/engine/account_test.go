package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allocsim/types"
)

func TestAccountOpenRecordsPrincipal(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	b := testBroker(days, map[string]string{"VTI": "100"})
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	assert.True(t, a.Cash().Equal(decimal.NewFromInt(10000)))
	require.Len(t, a.Ledger(), 1)
	tx := a.Ledger()[0]
	assert.Equal(t, types.TxOpen, tx.Kind)
	assert.Equal(t, types.InFlow, tx.Flow)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(10000)))
}

func TestAccountBuySellConservesCash(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	b := testBroker(days, map[string]string{"VTI": "100"})
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	ok, err := a.BuyShares("VTI", decimal.RequireFromString("25.5"), "test buy")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, a.Cash().Equal(decimal.RequireFromString("7450")), "cash = %s", a.Cash())
	assert.True(t, a.NumShares("VTI").Equal(decimal.RequireFromString("25.5")))

	ok, err = a.SellShares("VTI", decimal.RequireFromString("25.5"), "test sell")
	require.NoError(t, err)
	require.True(t, ok)

	// Flat prices and no slippage: selling everything restores the cash.
	assert.True(t, a.Cash().Equal(decimal.NewFromInt(10000)), "cash = %s", a.Cash())
	assert.True(t, a.NumShares("VTI").IsZero())

	// Every cash movement left a ledger row with the post-event balance.
	ledger := a.Ledger()
	require.Len(t, ledger, 3)
	assert.True(t, ledger[1].Balance.Equal(decimal.RequireFromString("7450")))
	assert.True(t, ledger[2].Balance.Equal(decimal.NewFromInt(10000)))
}

func TestAccountBuyTruncatesToIncrement(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	b := testBroker(days, map[string]string{"VTI": "100"})
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	// 3.456 truncates to 3.45 shares.
	ok, err := a.BuyShares("VTI", decimal.RequireFromString("3.456"), "odd quantity")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, a.NumShares("VTI").Equal(decimal.RequireFromString("3.45")))

	// Below one increment the trade is a silent no-op.
	before := a.Cash()
	ok, err = a.BuyShares("VTI", decimal.RequireFromString("0.005"), "dust")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, a.Cash().Equal(before))
}

func TestAccountInsufficientCash(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	b := testBroker(days, map[string]string{"VTI": "100"})
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(100), false)

	_, err := a.BuyShares("VTI", decimal.NewFromInt(2), "over budget")
	require.ErrorIs(t, err, ErrInsufficientCash)
	assert.True(t, a.Cash().Equal(decimal.NewFromInt(100)), "failed buy must not move cash")

	err = a.Withdraw(decimal.NewFromInt(200), "over balance")
	require.ErrorIs(t, err, ErrInsufficientCash)
}

func TestAccountSellExceedsPosition(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	b := testBroker(days, map[string]string{"VTI": "100"})
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	_, err := a.SellShares("VTI", decimal.NewFromInt(1), "nothing held")
	require.ErrorIs(t, err, ErrSellExceedsPosition)

	_, err = a.BuyShares("VTI", decimal.NewFromInt(5), "small lot")
	require.NoError(t, err)
	_, err = a.SellShares("VTI", decimal.NewFromInt(6), "too many")
	require.ErrorIs(t, err, ErrSellExceedsPosition)
}

func TestAccountValueTradesSkipDust(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	b := testBroker(days, map[string]string{"VTI": "100"})
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	// 5 dollars at 100/share is 0.05 shares, under the 0.1 dust floor.
	ok, err := a.BuyValue("VTI", decimal.NewFromInt(5), "dust")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.BuyValue("VTI", decimal.NewFromInt(500), "real trade")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, a.NumShares("VTI").Equal(decimal.NewFromInt(5)))

	// SellValue clamps to the held quantity instead of failing.
	ok, err = a.SellValue("VTI", decimal.NewFromInt(100000), "everything and more")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, a.NumShares("VTI").IsZero())
}

// steppingModel returns a different price on every quote, the way the
// random models do. Trades that quote more than once per order show up
// as a mismatch between sizing and execution price.
type steppingModel struct {
	prices []string
	calls  int
}

func (m *steppingModel) Name() string { return "stepping" }

func (m *steppingModel) Price(types.Candle) decimal.Decimal {
	p := decimal.RequireFromString(m.prices[m.calls%len(m.prices)])
	m.calls++
	return p
}

func steppingBroker(days []time.Time, prices ...string) *Broker {
	guide := flatSeries("VTI", "100", days)
	b, err := NewBroker(guide, &steppingModel{prices: prices}, NoSlippage(), false)
	if err != nil {
		panic(err)
	}
	b.AddSeries(guide)
	return b
}

func TestAccountBuyValueQuotesOnce(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	// A second quote inside the same order would come back at 110 and
	// bill more cash than the account holds.
	b := steppingBroker(days, "100", "110")
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	ok, err := a.BuyValue("VTI", decimal.NewFromInt(10000), "all in")
	require.NoError(t, err)
	require.True(t, ok)

	// Sized at 100/share and billed at 100/share: 100 shares, cash empty.
	assert.True(t, a.NumShares("VTI").Equal(decimal.NewFromInt(100)), "shares = %s", a.NumShares("VTI"))
	assert.True(t, a.Cash().IsZero(), "cash = %s", a.Cash())
}

func TestAccountSellValueQuotesOnce(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	b := steppingBroker(days, "100", "90")
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	ok, err := a.BuyShares("VTI", decimal.NewFromInt(50), "initial buy")
	require.NoError(t, err)
	require.True(t, ok)
	cashAfterBuy := a.Cash()

	ok, err = a.SellValue("VTI", decimal.NewFromInt(900), "partial exit")
	require.NoError(t, err)
	require.True(t, ok)

	// Sized at 90/share (the second draw): 10 shares, proceeds priced at
	// the same 90, not a fresh draw.
	assert.True(t, a.NumShares("VTI").Equal(decimal.NewFromInt(40)), "shares = %s", a.NumShares("VTI"))
	assert.True(t, a.Cash().Equal(cashAfterBuy.Add(decimal.NewFromInt(900))), "cash = %s", a.Cash())
}

func TestAccountRebalanceVolatileQuotes(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	// Rebalancing into both assets with wildly different draws per quote
	// must never overdraw: each order executes at its own sizing price.
	b := steppingBroker(days, "100", "117", "93", "104", "111", "88")
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	target := types.NewDistribution("all-in")
	target.Set("VTI", decimal.NewFromInt(1))

	require.NoError(t, a.Rebalance(target))
	assert.True(t, a.Cash().GreaterThanOrEqual(decimal.Zero), "cash = %s", a.Cash())
}

func TestAccountRebalanceFromCash(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	b := testBroker(days, map[string]string{"VTI": "10", "BND": "20"})
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	target := types.NewDistribution("60-40")
	target.Set("VTI", decimal.RequireFromString("0.6"))
	target.Set("BND", decimal.RequireFromString("0.4"))

	require.NoError(t, a.Rebalance(target))

	// Flat prices divide evenly, so convergence is exact.
	assert.True(t, a.NumShares("VTI").Equal(decimal.NewFromInt(600)), "VTI = %s", a.NumShares("VTI"))
	assert.True(t, a.NumShares("BND").Equal(decimal.NewFromInt(200)), "BND = %s", a.NumShares("BND"))
	assert.True(t, a.Cash().IsZero(), "cash = %s", a.Cash())

	dist, err := a.CurrentDistribution()
	require.NoError(t, err)
	assert.True(t, dist.Distance(target).LessThanOrEqual(decimal.RequireFromString("0.01")),
		"distance = %s", dist.Distance(target))
}

func TestAccountRebalanceSellsOverweight(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	b := testBroker(days, map[string]string{"VTI": "10", "BND": "20"})
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	allIn := types.NewDistribution("all-vti")
	allIn.Set("VTI", decimal.NewFromInt(1))
	require.NoError(t, a.Rebalance(allIn))
	require.True(t, a.NumShares("VTI").Equal(decimal.NewFromInt(1000)))

	split := types.NewDistribution("50-50")
	split.Set("VTI", decimal.RequireFromString("0.5"))
	split.Set("BND", decimal.RequireFromString("0.5"))
	require.NoError(t, a.Rebalance(split))

	assert.True(t, a.NumShares("VTI").Equal(decimal.NewFromInt(500)), "VTI = %s", a.NumShares("VTI"))
	assert.True(t, a.NumShares("BND").Equal(decimal.NewFromInt(250)), "BND = %s", a.NumShares("BND"))

	dist, err := a.CurrentDistribution()
	require.NoError(t, err)
	assert.True(t, dist.Distance(split).LessThanOrEqual(decimal.RequireFromString("0.01")))
}

func TestAccountRebalanceRejectsBadTarget(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	b := testBroker(days, map[string]string{"VTI": "10"})
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	bad := types.NewDistribution("bad")
	bad.Set("VTI", decimal.RequireFromString("0.7"))
	require.ErrorIs(t, a.Rebalance(bad), ErrBadTarget)
}

func TestAccountRebalanceRespectsCashSlot(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	b := testBroker(days, map[string]string{"VTI": "10"})
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	target := types.NewDistribution("half-cash")
	target.Set("VTI", decimal.RequireFromString("0.5"))
	target.Set(types.CashTicker, decimal.RequireFromString("0.5"))
	require.NoError(t, a.Rebalance(target))

	assert.True(t, a.NumShares("VTI").Equal(decimal.NewFromInt(500)))
	assert.True(t, a.Cash().Equal(decimal.NewFromInt(5000)), "cash = %s", a.Cash())
}

func TestAccountLiquidate(t *testing.T) {
	days := businessDays("2024-03-04", 5)
	b := testBroker(days, map[string]string{"VTI": "10", "BND": "20"})
	a := b.OpenAccount("acct", types.Taxable, decimal.NewFromInt(10000), false)

	split := types.NewDistribution("50-50")
	split.Set("VTI", decimal.RequireFromString("0.5"))
	split.Set("BND", decimal.RequireFromString("0.5"))
	require.NoError(t, a.Rebalance(split))
	require.NoError(t, a.Liquidate("end of test"))

	assert.Empty(t, a.Tickers())
	assert.True(t, a.Cash().Equal(decimal.NewFromInt(10000)), "cash = %s", a.Cash())
	assert.NotEmpty(t, a.Receipts())
}
