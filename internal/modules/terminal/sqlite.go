package terminal

import "database/sql"

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS payment_terminals (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		kind        TEXT NOT NULL DEFAULT 'none',
		tid         TEXT,
		mode        TEXT NOT NULL DEFAULT 'production',
		api_address TEXT NOT NULL DEFAULT '',
		api_user    TEXT,
		api_pass    TEXT,
		auth_token  TEXT,
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	);`

// NewSQLiteRepository returns a terminal repository backed by an embedded
// SQLite database, for single-till installs and tests.
func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqlRepo{db: db, schema: sqliteSchema}
}
