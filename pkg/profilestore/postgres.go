package profilestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultTable = "splitkit_user_profiles"

// Postgres persists profiles in a single table: one row per user with the
// profile stored as JSONB. The pool's lifecycle belongs to the host.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithTable overrides the default table name.
func WithTable(table string) PostgresOption {
	return func(p *Postgres) {
		if table != "" {
			p.table = table
		}
	}
}

// NewPostgres creates a profile store on top of an existing pgx pool.
func NewPostgres(pool *pgxpool.Pool, opts ...PostgresOption) *Postgres {
	store := &Postgres{pool: pool, table: defaultTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// EnsureTable creates the backing table when it does not exist yet.
// Convenient for hosts that do not manage the schema through migrations.
func (p *Postgres) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		user_id TEXT PRIMARY KEY,
		profile JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, p.table)
	if _, err := p.pool.Exec(ctx, query); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

// Lookup returns the stored profile for the user, or nil when none exists.
func (p *Postgres) Lookup(ctx context.Context, userID string) (map[string]any, error) {
	query := fmt.Sprintf(`SELECT profile FROM %s WHERE user_id = $1`, p.table)

	var raw []byte
	err := p.pool.QueryRow(ctx, query, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrLookupFailed, err)
	}

	var profile map[string]any
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, errors.Join(ErrLookupFailed, err)
	}
	return profile, nil
}

// Save upserts the profile, replacing any previous one for the same user.
func (p *Postgres) Save(ctx context.Context, profile map[string]any) error {
	userID, err := profileUserID(profile)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (user_id, profile, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET profile = $2, updated_at = now()`, p.table)
	if _, err := p.pool.Exec(ctx, query, userID, raw); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}
