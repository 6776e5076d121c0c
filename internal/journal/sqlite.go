package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"allocsim/types"
)

// SQLiteJournal persists the audit trail in a SQLite file. Money columns
// are stored as exact decimal strings, not REAL.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTransaction(tx types.Transaction) error {
	_, err := j.db.Exec(`
		INSERT INTO transactions
		(tx_id, kind, flow, time, amount, balance, memo)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.Id, string(tx.Kind), string(tx.Flow), tx.Time,
		tx.Amount.String(), tx.Balance.String(), tx.Memo,
	)
	return err
}

func (j *SQLiteJournal) RecordReceipt(r types.Receipt) error {
	_, err := j.db.Exec(`
		INSERT INTO receipts
		(ticker, time, long_term_gain, short_term_gain, balance)
		VALUES (?, ?, ?, ?, ?)`,
		r.Ticker, r.Time, r.LongTermGain.String(), r.ShortTermGain.String(), r.Balance.String(),
	)
	return err
}

func (j *SQLiteJournal) RecordValue(v ValueSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO account_values (time, value) VALUES (?, ?)`,
		v.Time, v.Value.String(),
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
