package journal

import (
	"encoding/csv"
	"os"
	"time"

	"allocsim/types"
)

// CSVJournal writes the audit trail as two CSV files, for quick
// inspection without a SQLite client.
type CSVJournal struct {
	txs    *csv.Writer
	values *csv.Writer
	tf, vf *os.File
}

func NewCSV(transactionsPath, valuesPath string) (*CSVJournal, error) {
	tf, err := os.Create(transactionsPath)
	if err != nil {
		return nil, err
	}
	vf, err := os.Create(valuesPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	vw := csv.NewWriter(vf)

	if err := tw.Write([]string{"tx_id", "kind", "flow", "time", "amount", "balance", "memo"}); err != nil {
		tf.Close()
		vf.Close()
		return nil, err
	}
	if err := vw.Write([]string{"time", "value"}); err != nil {
		tf.Close()
		vf.Close()
		return nil, err
	}

	return &CSVJournal{txs: tw, values: vw, tf: tf, vf: vf}, nil
}

func (j *CSVJournal) RecordTransaction(tx types.Transaction) error {
	return j.txs.Write([]string{
		tx.Id,
		string(tx.Kind),
		string(tx.Flow),
		tx.Time.Format(time.RFC3339),
		tx.Amount.String(),
		tx.Balance.String(),
		tx.Memo,
	})
}

// RecordReceipt is a no-op for the CSV journal; receipts only go to
// SQLite where the tax report can query them.
func (j *CSVJournal) RecordReceipt(types.Receipt) error { return nil }

func (j *CSVJournal) RecordValue(v ValueSnapshot) error {
	return j.values.Write([]string{
		v.Time.Format(time.RFC3339),
		v.Value.String(),
	})
}

func (j *CSVJournal) Close() error {
	j.txs.Flush()
	if err := j.txs.Error(); err != nil {
		return err
	}
	j.values.Flush()
	if err := j.values.Error(); err != nil {
		return err
	}
	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.vf.Close()
}
