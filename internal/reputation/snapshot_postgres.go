package reputation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PostgresSnapshotStore implements SnapshotStore backed by PostgreSQL.
type PostgresSnapshotStore struct {
	db *sql.DB
}

// NewPostgresSnapshotStore creates a PostgreSQL-backed snapshot store.
func NewPostgresSnapshotStore(db *sql.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db}
}

func (p *PostgresSnapshotStore) Save(ctx context.Context, snap *Snapshot) error {
	const q = `
		INSERT INTO reputation_snapshots
			(address, score, risk_tier, color_code, trust_indicators, warning_flags,
			 transaction_count, account_age_days)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at`

	indicators, flags, err := marshalLists(snap)
	if err != nil {
		return err
	}

	return p.db.QueryRowContext(ctx, q,
		strings.ToLower(snap.Address),
		snap.Score,
		string(snap.RiskTier),
		string(snap.ColorCode),
		indicators,
		flags,
		snap.TransactionCount,
		snap.AccountAgeDays,
	).Scan(&snap.ID, &snap.CreatedAt)
}

func (p *PostgresSnapshotStore) SaveBatch(ctx context.Context, snaps []*Snapshot) error {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reputation_snapshots
			(address, score, risk_tier, color_code, trust_indicators, warning_flags,
			 transaction_count, account_age_days)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range snaps {
		indicators, flags, err := marshalLists(s)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx, strings.ToLower(s.Address),
			s.Score, string(s.RiskTier), string(s.ColorCode),
			indicators, flags,
			s.TransactionCount, s.AccountAgeDays)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (p *PostgresSnapshotStore) Query(ctx context.Context, q HistoryQuery) ([]*Snapshot, error) {
	query := `
		SELECT id, address, score, risk_tier, color_code,
			   trust_indicators, warning_flags,
			   transaction_count, account_age_days, created_at
		FROM reputation_snapshots
		WHERE address = $1`

	args := []interface{}{strings.ToLower(q.Address)}
	argIdx := 2

	if !q.From.IsZero() {
		query += " AND created_at >= $" + strconv.Itoa(argIdx)
		args = append(args, q.From)
		argIdx++
	}
	if !q.To.IsZero() {
		query += " AND created_at <= $" + strconv.Itoa(argIdx)
		args = append(args, q.To)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	limit := q.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query += " LIMIT $" + strconv.Itoa(argIdx)
	args = append(args, limit)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanSnapshots(rows)
}

func (p *PostgresSnapshotStore) Latest(ctx context.Context, address string) (*Snapshot, error) {
	const q = `
		SELECT id, address, score, risk_tier, color_code,
			   trust_indicators, warning_flags,
			   transaction_count, account_age_days, created_at
		FROM reputation_snapshots
		WHERE address = $1
		ORDER BY created_at DESC
		LIMIT 1`

	row := p.db.QueryRowContext(ctx, q, strings.ToLower(address))
	s, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	s := &Snapshot{}
	var tier, color string
	var indicators, flags []byte
	err := row.Scan(&s.ID, &s.Address, &s.Score, &tier, &color,
		&indicators, &flags,
		&s.TransactionCount, &s.AccountAgeDays, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.RiskTier = RiskTier(tier)
	s.ColorCode = ColorCode(color)
	if err := json.Unmarshal(indicators, &s.TrustIndicators); err != nil {
		return nil, fmt.Errorf("decode trust_indicators: %w", err)
	}
	if err := json.Unmarshal(flags, &s.WarningFlags); err != nil {
		return nil, fmt.Errorf("decode warning_flags: %w", err)
	}
	return s, nil
}

func scanSnapshots(rows *sql.Rows) ([]*Snapshot, error) {
	var out []*Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func marshalLists(s *Snapshot) ([]byte, []byte, error) {
	indicators := s.TrustIndicators
	if indicators == nil {
		indicators = []string{}
	}
	flags := s.WarningFlags
	if flags == nil {
		flags = []string{}
	}
	ib, err := json.Marshal(indicators)
	if err != nil {
		return nil, nil, err
	}
	fb, err := json.Marshal(flags)
	if err != nil {
		return nil, nil, err
	}
	return ib, fb, nil
}
