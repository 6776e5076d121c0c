package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type TxKind string

// Flow classifies where a transaction's money comes from or goes to:
// into the account from outside, out of the account, or moved between
// cash and positions inside it (buys, sells, dividends, interest).
type Flow string

const (
	TxOpen     TxKind = "OPEN"
	TxDeposit  TxKind = "DEPOSIT"
	TxWithdraw TxKind = "WITHDRAW"
	TxBuy      TxKind = "BUY"
	TxSell     TxKind = "SELL"

	InFlow   Flow = "IN"
	OutFlow  Flow = "OUT"
	Internal Flow = "INTERNAL"
)

// Transaction is one immutable ledger row. Balance is the account's cash
// balance immediately after the event. The ledger is append-only.
type Transaction struct {
	Id      string
	Kind    TxKind
	Flow    Flow
	Time    time.Time
	Amount  decimal.Decimal
	Balance decimal.Decimal
	Memo    string
}
