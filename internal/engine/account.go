package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"allocsim/internal/fixed"
	"allocsim/internal/id"
	"allocsim/types"
)

var ErrInsufficientCash = errors.New("operation would drive cash balance negative")
var ErrBadTarget = errors.New("target distribution does not sum to 1.0")

// targetSumEps is how far a target distribution's weights may stray from
// summing to exactly 1.0 before Rebalance treats it as a caller bug.
var targetSumEps = decimal.New(1, -6)

// Account is one simulated brokerage account: a cash balance, a map of
// positions, and an append-only transaction ledger. Cash only changes
// through a recorded transaction, and never goes negative; a request
// that would take it negative is a caller bug and aborts the run.
type Account struct {
	id     string
	kind   types.AccountKind
	broker *Broker

	cash      decimal.Decimal
	principal decimal.Decimal
	positions map[string]*Position
	ledger    []types.Transaction
	receipts  []types.Receipt

	reinvestDividends bool
	lastDivPaid       map[string]time.Time
	valueHistory      *types.ValueSeries

	// Running sums for the end-of-month interest accrual. The business
	// day count comes from the guide series itself, so the average-cash
	// denominator always matches the calendar source.
	monthCashSum      decimal.Decimal
	monthBusinessDays int
}

func newAccount(id string, kind types.AccountKind, broker *Broker, principal decimal.Decimal, reinvest bool) *Account {
	a := &Account{
		id:                id,
		kind:              kind,
		broker:            broker,
		reinvestDividends: reinvest,
		principal:         principal,
	}
	a.reset()
	return a
}

// reset restores the account to its just-opened state.
func (a *Account) reset() {
	a.cash = decimal.Zero
	a.positions = make(map[string]*Position)
	a.ledger = nil
	a.receipts = nil
	a.lastDivPaid = make(map[string]time.Time)
	a.valueHistory = types.NewValueSeries(a.id + "-value")
	a.monthCashSum = decimal.Zero
	a.monthBusinessDays = 0

	a.cash = a.principal
	a.record(types.TxOpen, types.InFlow, a.principal, "account opened")
}

func (a *Account) Id() string                 { return a.id }
func (a *Account) Kind() types.AccountKind    { return a.kind }
func (a *Account) Cash() decimal.Decimal      { return a.cash }
func (a *Account) Principal() decimal.Decimal { return a.principal }

func (a *Account) Ledger() []types.Transaction      { return a.ledger }
func (a *Account) Receipts() []types.Receipt        { return a.receipts }
func (a *Account) ValueHistory() *types.ValueSeries { return a.valueHistory }

// NumShares returns the held share count for a ticker, zero when the
// position does not exist.
func (a *Account) NumShares(ticker string) decimal.Decimal {
	if p, ok := a.positions[ticker]; ok {
		return p.NumShares()
	}
	return decimal.Zero
}

// Tickers lists held positions in stable order.
func (a *Account) Tickers() []string {
	out := make([]string, 0, len(a.positions))
	for t := range a.positions {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (a *Account) record(kind types.TxKind, flow types.Flow, amount decimal.Decimal, memo string) {
	a.ledger = append(a.ledger, types.Transaction{
		Id:      id.New(),
		Kind:    kind,
		Flow:    flow,
		Time:    a.broker.Now(),
		Amount:  amount,
		Balance: a.cash,
		Memo:    memo,
	})
}

// Deposit adds external cash to the account.
func (a *Account) Deposit(amount decimal.Decimal, memo string) {
	a.cash = a.cash.Add(amount)
	a.record(types.TxDeposit, types.InFlow, amount, memo)
}

// depositInternal credits cash that never left the account's world, such
// as dividends and interest.
func (a *Account) depositInternal(amount decimal.Decimal, memo string) {
	a.cash = a.cash.Add(amount)
	a.record(types.TxDeposit, types.Internal, amount, memo)
}

// Withdraw removes external cash. Overdrawing is a caller bug.
func (a *Account) Withdraw(amount decimal.Decimal, memo string) error {
	if amount.GreaterThan(a.cash) {
		return fmt.Errorf("withdraw %s with balance %s: %w", amount, a.cash, ErrInsufficientCash)
	}
	a.cash = a.cash.Sub(amount)
	a.record(types.TxWithdraw, types.OutFlow, amount, memo)
	return nil
}

// BuyShares buys qty shares of ticker at the broker's current buy price.
// The quantity is truncated to the minimum tradable increment; a request
// that truncates to zero is a no-op and reports executed=false. Spending
// more cash than the account holds is a caller bug.
func (a *Account) BuyShares(ticker string, qty decimal.Decimal, memo string) (bool, error) {
	price, err := a.broker.BuyPrice(ticker)
	if err != nil {
		return false, err
	}
	return a.buySharesAt(ticker, qty, price, memo)
}

// buySharesAt executes a buy at an already-resolved price. Every trade
// quotes the broker exactly once; under random price models a second
// quote would draw a different price, and the execution price would no
// longer match the price the caller sized the order with.
func (a *Account) buySharesAt(ticker string, qty, price decimal.Decimal, memo string) (bool, error) {
	qty = fixed.TruncateTo(qty, fixed.ShareIncrement)
	if qty.LessThanOrEqual(decimal.Zero) {
		return false, nil
	}
	cost := fixed.RoundTo(price.Mul(qty), fixed.Penny)
	if cost.GreaterThan(a.cash) {
		return false, fmt.Errorf("buy %s %s for %s with balance %s: %w",
			qty, ticker, cost, a.cash, ErrInsufficientCash)
	}

	pos, ok := a.positions[ticker]
	if !ok {
		pos = NewPosition(ticker)
		a.positions[ticker] = pos
	}
	pos.Add(Lot{
		Ticker:        ticker,
		PurchaseTime:  a.broker.Now(),
		PurchasePrice: price,
		Quantity:      qty,
	})

	a.cash = a.cash.Sub(cost)
	a.record(types.TxBuy, types.Internal, cost, memo)
	return true, nil
}

// SellShares sells qty shares of ticker at the broker's current sell
// price, consuming lots per the position's two-phase matching. Truncates
// like BuyShares; selling more than held is a caller bug.
func (a *Account) SellShares(ticker string, qty decimal.Decimal, memo string) (bool, error) {
	price, err := a.broker.SellPrice(ticker)
	if err != nil {
		return false, err
	}
	return a.sellSharesAt(ticker, qty, price, memo)
}

// sellSharesAt executes a sale at an already-resolved price, so proceeds
// are computed from the same price the order was sized with.
func (a *Account) sellSharesAt(ticker string, qty, price decimal.Decimal, memo string) (bool, error) {
	qty = fixed.TruncateTo(qty, fixed.ShareIncrement)
	if qty.LessThanOrEqual(decimal.Zero) {
		return false, nil
	}

	pos, ok := a.positions[ticker]
	if !ok {
		return false, fmt.Errorf("sell %s %s: no position: %w", qty, ticker, ErrSellExceedsPosition)
	}

	receipt, err := pos.Sub(qty, a.broker.Now(), price)
	if err != nil {
		return false, fmt.Errorf("sell %s %s: %w", qty, ticker, err)
	}
	a.receipts = append(a.receipts, receipt)
	if pos.NumShares().IsZero() {
		delete(a.positions, ticker)
	}

	proceeds := fixed.RoundTo(price.Mul(qty), fixed.Penny)
	a.cash = a.cash.Add(proceeds)
	a.record(types.TxSell, types.Internal, proceeds, memo)
	return true, nil
}

// BuyValue buys roughly value worth of ticker. Trades below the dust
// threshold are skipped rather than executed. The sizing quote is also
// the execution quote, so the cost can never exceed value.
func (a *Account) BuyValue(ticker string, value decimal.Decimal, memo string) (bool, error) {
	price, err := a.broker.BuyPrice(ticker)
	if err != nil {
		return false, err
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return false, fmt.Errorf("buy %s: non-positive price %s", ticker, price)
	}
	qty := fixed.TruncateTo(value.Div(price), fixed.ShareIncrement)
	if qty.LessThan(fixed.MinTradeShares) {
		return false, nil
	}
	return a.buySharesAt(ticker, qty, price, memo)
}

// SellValue sells roughly value worth of ticker, with the same dust
// threshold and single-quote contract as BuyValue.
func (a *Account) SellValue(ticker string, value decimal.Decimal, memo string) (bool, error) {
	price, err := a.broker.SellPrice(ticker)
	if err != nil {
		return false, err
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return false, fmt.Errorf("sell %s: non-positive price %s", ticker, price)
	}
	qty := fixed.TruncateTo(value.Div(price), fixed.ShareIncrement)
	if qty.LessThan(fixed.MinTradeShares) {
		return false, nil
	}
	if held := a.NumShares(ticker); qty.GreaterThan(held) {
		qty = held
	}
	return a.sellSharesAt(ticker, qty, price, memo)
}

// TotalValue is cash plus the quoted market value of every position.
func (a *Account) TotalValue() (decimal.Decimal, error) {
	total := a.cash
	for _, t := range a.Tickers() {
		price, err := a.broker.QuotePrice(t)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(a.positions[t].MarketValue(price))
	}
	return total, nil
}

// CurrentDistribution reports the account's realized allocation,
// including the synthetic cash slot.
func (a *Account) CurrentDistribution() (*types.Distribution, error) {
	total, err := a.TotalValue()
	if err != nil {
		return nil, err
	}
	d := types.NewDistribution(a.id + "-holdings")
	if total.IsZero() {
		d.Set(types.CashTicker, decimal.New(1, 0))
		return d, nil
	}
	d.Set(types.CashTicker, a.cash.Div(total))
	for _, t := range a.Tickers() {
		price, err := a.broker.QuotePrice(t)
		if err != nil {
			return nil, err
		}
		d.Set(t, a.positions[t].MarketValue(price).Div(total))
	}
	return d, nil
}

// Rebalance moves the account toward the target distribution with
// minimal trading: first sell every position over its target value, then
// buy toward every position under target with the cash that frees up.
// Target values are computed once against the pre-trade total, so trades
// inside one pass do not shift each other's targets. Convergence is
// best-effort; slippage and increment rounding leave a residual.
func (a *Account) Rebalance(target *types.Distribution) error {
	if !target.SumsToOne(targetSumEps) {
		return fmt.Errorf("%w: %s sums to %s", ErrBadTarget, target.Name, target.Sum())
	}

	total, err := a.TotalValue()
	if err != nil {
		return err
	}

	// Sell phase: held positions above target.
	for _, t := range a.Tickers() {
		targetVal := total.Mul(target.Weight(t))
		price, err := a.broker.QuotePrice(t)
		if err != nil {
			return err
		}
		curVal := a.positions[t].MarketValue(price)
		if curVal.GreaterThan(targetVal) {
			if _, err := a.SellValue(t, curVal.Sub(targetVal), "rebalance: reduce "+t); err != nil {
				return err
			}
		}
	}

	// Buy phase: targets above current holdings, capped by free cash.
	for _, t := range target.Tickers() {
		if t == types.CashTicker {
			continue
		}
		targetVal := total.Mul(target.Weight(t))
		price, err := a.broker.QuotePrice(t)
		if err != nil {
			return err
		}
		curVal := decimal.Zero
		if pos, ok := a.positions[t]; ok {
			curVal = pos.MarketValue(price)
		}
		if targetVal.LessThanOrEqual(curVal) {
			continue
		}
		want := targetVal.Sub(curVal)
		// Spending is bounded by a penny-truncated slice of free cash so
		// price rounding can never overdraw.
		budget := fixed.TruncateTo(decimal.Min(want, a.cash), fixed.Penny)
		if budget.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if _, err := a.BuyValue(t, budget, "rebalance: increase "+t); err != nil {
			return err
		}
	}
	return nil
}

// Liquidate sells every position entirely.
func (a *Account) Liquidate(memo string) error {
	for _, t := range a.Tickers() {
		if _, err := a.SellShares(t, a.NumShares(t), memo); err != nil {
			return err
		}
	}
	return nil
}
