package history

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed transaction store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) ListByAddress(ctx context.Context, address string, limit int) ([]Transaction, error) {
	const q = `
		SELECT id, tx_hash, sender, recipient, amount::TEXT, denom, memo, timestamp
		FROM transactions
		WHERE sender = $1 OR recipient = $1
		ORDER BY timestamp DESC
		LIMIT $2`

	rows, err := p.db.QueryContext(ctx, q, strings.ToLower(address), clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.TxHash, &tx.Sender, &tx.Recipient,
			&tx.Amount, &tx.Denom, &tx.Memo, &tx.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (p *PostgresStore) ListActiveAddresses(ctx context.Context, since time.Time, limit int) ([]string, error) {
	const q = `
		SELECT DISTINCT addr FROM (
			SELECT sender AS addr FROM transactions WHERE timestamp >= $1
			UNION
			SELECT recipient AS addr FROM transactions WHERE timestamp >= $1
		) active
		LIMIT $2`

	if limit <= 0 {
		limit = MaxQueryLimit
	}

	rows, err := p.db.QueryContext(ctx, q, since, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Record(ctx context.Context, tx *Transaction) error {
	const q = `
		INSERT INTO transactions (tx_hash, sender, recipient, amount, denom, memo, timestamp)
		VALUES ($1, $2, $3, $4::NUMERIC, $5, $6, $7)
		ON CONFLICT (tx_hash) DO NOTHING
		RETURNING id`

	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now()
	}
	if tx.Amount == "" {
		tx.Amount = "0"
	}

	err := p.db.QueryRowContext(ctx, q,
		tx.TxHash,
		strings.ToLower(tx.Sender),
		strings.ToLower(tx.Recipient),
		tx.Amount,
		tx.Denom,
		tx.Memo,
		tx.Timestamp,
	).Scan(&tx.ID)
	if err == sql.ErrNoRows {
		// Duplicate hash, already recorded
		return nil
	}
	return err
}
