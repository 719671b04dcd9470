package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgemunganga/hobex-pos/internal/database"
	"github.com/google/uuid"
)

type sqlRepo struct {
	db     *sql.DB
	schema string
	// appended to the row read inside Apply
	lockClause string
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS hobex_transactions (
		id               UUID PRIMARY KEY,
		terminal_id      UUID NOT NULL REFERENCES payment_terminals(id) ON DELETE CASCADE,
		reference        TEXT NOT NULL,
		transaction_id   TEXT NOT NULL,
		transaction_date TIMESTAMPTZ NOT NULL,
		transaction_type INTEGER NOT NULL DEFAULT 1,
		amount           DOUBLE PRECISION NOT NULL,
		currency         TEXT NOT NULL DEFAULT 'EUR',
		tid              TEXT NOT NULL,
		url              TEXT,
		message          TEXT,
		response_code    TEXT,
		response_text    TEXT,
		response         TEXT,
		state            TEXT NOT NULL DEFAULT 'pending',
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		CONSTRAINT hobex_transactions_tid_uniq UNIQUE (transaction_id, tid)
	);
	CREATE INDEX IF NOT EXISTS hobex_transactions_terminal_idx
		ON hobex_transactions (terminal_id, transaction_date DESC);`

// NewPostgresRepository returns a transaction repository backed by PostgreSQL.
// Rows read for an update are locked until the unit of work commits.
func NewPostgresRepository(db *sql.DB) Repository {
	return &sqlRepo{db: db, schema: postgresSchema, lockClause: " FOR UPDATE"}
}

func (r *sqlRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, r.schema)
	return err
}

func (r *sqlRepo) Create(ctx context.Context, t *Transaction) error {
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	if t.TransactionDate.IsZero() {
		t.TransactionDate = now
	}

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hobex_transactions
			  (id, terminal_id, reference, transaction_id, transaction_date, transaction_type,
			   amount, currency, tid, url, message, response_code, response_text, response,
			   state, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			t.ID, t.TerminalID, t.Reference, t.TransactionID, t.TransactionDate, t.TransactionType,
			t.Amount, t.Currency, t.TID, database.NilIfEmpty(t.URL), database.NilIfEmpty(t.Message),
			database.NilIfEmpty(t.ResponseCode), database.NilIfEmpty(t.ResponseText),
			database.NilIfEmpty(t.Response), t.State, t.CreatedAt, t.UpdatedAt)
		return err
	})
	if database.IsUniqueViolation(err) {
		return ErrDuplicateTransaction
	}
	return err
}

func (r *sqlRepo) Get(ctx context.Context, tid, transactionID string) (*Transaction, error) {
	t, err := scan(r.db.QueryRowContext(ctx, selectSQL+" WHERE tid=$1 AND transaction_id=$2", tid, transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *sqlRepo) ListByTerminal(ctx context.Context, terminalID string) ([]*Transaction, error) {
	if _, err := uuid.Parse(terminalID); err != nil {
		return []*Transaction{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		selectSQL+" WHERE terminal_id=$1 ORDER BY transaction_date DESC", terminalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []*Transaction{}
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *sqlRepo) Apply(ctx context.Context, tid, transactionID string, fn func(t *Transaction) error) (*Transaction, error) {
	var out *Transaction
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		t, err := scan(tx.QueryRowContext(ctx,
			selectSQL+" WHERE tid=$1 AND transaction_id=$2"+r.lockClause, tid, transactionID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}

		t.UpdatedAt = time.Now().UTC()
		_, err = tx.ExecContext(ctx, `
			UPDATE hobex_transactions
			SET message=$1, response_code=$2, response_text=$3, response=$4, state=$5, updated_at=$6
			WHERE id=$7`,
			database.NilIfEmpty(t.Message), database.NilIfEmpty(t.ResponseCode),
			database.NilIfEmpty(t.ResponseText), database.NilIfEmpty(t.Response),
			t.State, t.UpdatedAt, t.ID)
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ── Scanner ───────────────────────────────────────────────────────────────────

const selectSQL = `
	SELECT id, terminal_id, reference, transaction_id, transaction_date, transaction_type,
	       amount, currency, tid, url, message, response_code, response_text, response,
	       state, created_at, updated_at
	FROM hobex_transactions`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scan(row rowScanner) (*Transaction, error) {
	t := &Transaction{}
	var url, message, code, text, response sql.NullString
	err := row.Scan(
		&t.ID, &t.TerminalID, &t.Reference, &t.TransactionID, &t.TransactionDate, &t.TransactionType,
		&t.Amount, &t.Currency, &t.TID, &url, &message, &code, &text, &response,
		&t.State, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.URL = url.String
	t.Message = message.String
	t.ResponseCode = code.String
	t.ResponseText = text.String
	t.Response = response.String
	return t, nil
}
