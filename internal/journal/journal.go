// Package journal persists a finished run's audit trail: the full
// transaction ledger, the sale receipts, and the daily value snapshots.
package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"allocsim/types"
)

// ValueSnapshot is one (day, total account value) observation.
type ValueSnapshot struct {
	Time  time.Time
	Value decimal.Decimal
}

type Journal interface {
	RecordTransaction(tx types.Transaction) error
	RecordReceipt(r types.Receipt) error
	RecordValue(v ValueSnapshot) error
	Close() error
}

// WriteRun dumps a whole simulation's audit trail into a journal.
func WriteRun(j Journal, ledger []types.Transaction, receipts []types.Receipt, history *types.ValueSeries) error {
	for _, tx := range ledger {
		if err := j.RecordTransaction(tx); err != nil {
			return err
		}
	}
	for _, r := range receipts {
		if err := j.RecordReceipt(r); err != nil {
			return err
		}
	}
	for i := 0; i < history.Len(); i++ {
		v := ValueSnapshot{Time: history.Times[i], Value: history.Values[i]}
		if err := j.RecordValue(v); err != nil {
			return err
		}
	}
	return nil
}
