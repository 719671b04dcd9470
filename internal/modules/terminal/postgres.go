package terminal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgemunganga/hobex-pos/internal/database"
	"github.com/google/uuid"
)

type sqlRepo struct {
	db     *sql.DB
	schema string
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS payment_terminals (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		kind        TEXT NOT NULL DEFAULT 'none',
		tid         TEXT,
		mode        TEXT NOT NULL DEFAULT 'production',
		api_address TEXT NOT NULL DEFAULT '',
		api_user    TEXT,
		api_pass    TEXT,
		auth_token  TEXT,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	);`

// NewPostgresRepository returns a terminal repository backed by PostgreSQL.
func NewPostgresRepository(db *sql.DB) Repository {
	return &sqlRepo{db: db, schema: postgresSchema}
}

func (r *sqlRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, r.schema)
	return err
}

func (r *sqlRepo) Create(ctx context.Context, t *Terminal) error {
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_terminals
		  (id, name, kind, tid, mode, api_address, api_user, api_pass, auth_token, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		t.ID, t.Name, t.Kind, database.NilIfEmpty(t.TID), t.Mode, t.APIAddress,
		database.NilIfEmpty(t.User), database.NilIfEmpty(t.Password), database.NilIfEmpty(t.Token),
		t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *sqlRepo) GetByID(ctx context.Context, id string) (*Terminal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	t, err := r.scan(r.db.QueryRowContext(ctx, selectSQL+" WHERE id=$1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *sqlRepo) List(ctx context.Context) ([]*Terminal, error) {
	rows, err := r.db.QueryContext(ctx, selectSQL+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanRows(rows)
}

func (r *sqlRepo) ListHobexWithCredentials(ctx context.Context) ([]*Terminal, error) {
	rows, err := r.db.QueryContext(ctx, selectSQL+`
		WHERE kind=$1 AND api_user IS NOT NULL AND api_user <> ''
		  AND api_pass IS NOT NULL AND api_pass <> ''
		ORDER BY name`, KindHobex)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanRows(rows)
}

func (r *sqlRepo) Update(ctx context.Context, t *Terminal) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_terminals
		SET name=$1, kind=$2, tid=$3, mode=$4, api_address=$5, api_user=$6, api_pass=$7,
		    auth_token=$8, updated_at=$9
		WHERE id=$10`,
		t.Name, t.Kind, database.NilIfEmpty(t.TID), t.Mode, t.APIAddress,
		database.NilIfEmpty(t.User), database.NilIfEmpty(t.Password), database.NilIfEmpty(t.Token),
		t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *sqlRepo) UpdateToken(ctx context.Context, id string, token string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_terminals SET auth_token=$1, updated_at=$2 WHERE id=$3`,
		database.NilIfEmpty(token), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// ── Scanner ───────────────────────────────────────────────────────────────────

const selectSQL = `
	SELECT id, name, kind, tid, mode, api_address, api_user, api_pass, auth_token,
	       created_at, updated_at
	FROM payment_terminals`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *sqlRepo) scan(row rowScanner) (*Terminal, error) {
	t := &Terminal{}
	var tid, user, pass, token sql.NullString
	err := row.Scan(
		&t.ID, &t.Name, &t.Kind, &tid, &t.Mode, &t.APIAddress,
		&user, &pass, &token, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.TID = tid.String
	t.User = user.String
	t.Password = pass.String
	t.Token = token.String
	return t, nil
}

func (r *sqlRepo) scanRows(rows *sql.Rows) ([]*Terminal, error) {
	terminals := []*Terminal{}
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		terminals = append(terminals, t)
	}
	return terminals, rows.Err()
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
