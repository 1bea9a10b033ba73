package reputation

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

const defaultHistoryLimit = 100

// MemorySnapshotStore keeps snapshots in memory, bucketed per address.
// Used for development and tests when no DATABASE_URL is configured.
type MemorySnapshotStore struct {
	mu     sync.RWMutex
	byAddr map[string][]*Snapshot
	lastID int
}

// NewMemorySnapshotStore creates an empty in-memory snapshot store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{byAddr: make(map[string][]*Snapshot)}
}

func (m *MemorySnapshotStore) Save(_ context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastID++
	snap.ID = m.lastID
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
	addr := strings.ToLower(snap.Address)
	m.byAddr[addr] = append(m.byAddr[addr], snap)
	return nil
}

func (m *MemorySnapshotStore) SaveBatch(ctx context.Context, snaps []*Snapshot) error {
	for _, s := range snaps {
		if err := m.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemorySnapshotStore) Query(_ context.Context, q HistoryQuery) ([]*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*Snapshot
	for _, s := range m.byAddr[strings.ToLower(q.Address)] {
		if !q.From.IsZero() && s.CreatedAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && s.CreatedAt.After(q.To) {
			continue
		}
		results = append(results, s)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	limit := q.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemorySnapshotStore) Latest(_ context.Context, address string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *Snapshot
	for _, s := range m.byAddr[strings.ToLower(address)] {
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	return latest, nil
}
