package payment

import "database/sql"

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS hobex_transactions (
		id               TEXT PRIMARY KEY,
		terminal_id      TEXT NOT NULL REFERENCES payment_terminals(id) ON DELETE CASCADE,
		reference        TEXT NOT NULL,
		transaction_id   TEXT NOT NULL,
		transaction_date DATETIME NOT NULL,
		transaction_type INTEGER NOT NULL DEFAULT 1,
		amount           REAL NOT NULL,
		currency         TEXT NOT NULL DEFAULT 'EUR',
		tid              TEXT NOT NULL,
		url              TEXT,
		message          TEXT,
		response_code    TEXT,
		response_text    TEXT,
		response         TEXT,
		state            TEXT NOT NULL DEFAULT 'pending',
		created_at       DATETIME NOT NULL,
		updated_at       DATETIME NOT NULL,
		UNIQUE (transaction_id, tid)
	);
	CREATE INDEX IF NOT EXISTS hobex_transactions_terminal_idx
		ON hobex_transactions (terminal_id, transaction_date DESC);`

// NewSQLiteRepository returns a transaction repository backed by SQLite. The
// database serialises writers, so Apply needs no row lock.
func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqlRepo{db: db, schema: sqliteSchema}
}
