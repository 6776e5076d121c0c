package journal

const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	tx_id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	flow TEXT NOT NULL,
	time DATETIME NOT NULL,
	amount TEXT NOT NULL,
	balance TEXT NOT NULL,
	memo TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS receipts (
	ticker TEXT NOT NULL,
	time DATETIME NOT NULL,
	long_term_gain TEXT NOT NULL,
	short_term_gain TEXT NOT NULL,
	balance TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS account_values (
	time DATETIME NOT NULL,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_time ON transactions(time);
CREATE INDEX IF NOT EXISTS idx_account_values_time ON account_values(time);
`
