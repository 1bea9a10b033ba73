package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Postgres is a Store backed by the cache_entries table. It gives all
// replicas a shared cache without adding another infrastructure dependency.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a PostgreSQL-backed cache store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Get returns the value for key, or ErrMiss if absent or expired.
// Expired rows are treated as misses immediately; PurgeExpired removes
// them physically.
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `
		SELECT value FROM cache_entries
		WHERE cache_key = $1 AND expires_at > NOW()`

	var value []byte
	err := p.db.QueryRowContext(ctx, q, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set upserts the value under key with the given ttl.
func (p *Postgres) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache: ttl must be positive, got %v", ttl)
	}

	const q = `
		INSERT INTO cache_entries (cache_key, value, expires_at)
		VALUES ($1, $2, NOW() + $3 * INTERVAL '1 second')
		ON CONFLICT (cache_key)
		DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`

	_, err := p.db.ExecContext(ctx, q, key, value, ttl.Seconds())
	return err
}

// Delete removes key.
func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_key = $1`, key)
	return err
}

// Ping checks database reachability.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// PurgeExpired deletes expired rows and returns how many were removed.
// Intended to be called periodically from a background worker.
func (p *Postgres) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
