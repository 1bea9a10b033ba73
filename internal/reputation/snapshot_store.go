package reputation

import (
	"context"
)

// SnapshotStore persists point-in-time reputation snapshots so score
// changes for an address can be replayed later.
type SnapshotStore interface {
	// Save records one snapshot, assigning its ID.
	Save(ctx context.Context, snap *Snapshot) error

	// SaveBatch records a worker sweep's snapshots in one call.
	SaveBatch(ctx context.Context, snaps []*Snapshot) error

	// Query returns snapshots for q.Address within [q.From, q.To],
	// newest first, capped at q.Limit.
	Query(ctx context.Context, q HistoryQuery) ([]*Snapshot, error)

	// Latest returns the newest snapshot for an address, or nil when
	// the address has never been snapshotted.
	Latest(ctx context.Context, address string) (*Snapshot, error)
}
