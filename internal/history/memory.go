package history

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements Store in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	txns   []Transaction
	hashes map[string]bool
	nextID int64
}

// NewMemoryStore creates an in-memory transaction store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hashes: make(map[string]bool),
		nextID: 1,
	}
}

func (m *MemoryStore) ListByAddress(_ context.Context, address string, limit int) ([]Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	addr := strings.ToLower(address)
	var results []Transaction
	for _, tx := range m.txns {
		if strings.ToLower(tx.Sender) == addr || strings.ToLower(tx.Recipient) == addr {
			results = append(results, tx)
		}
	}

	// Sort by timestamp descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})

	limit = clampLimit(limit)
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (m *MemoryStore) ListActiveAddresses(_ context.Context, since time.Time, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	add := func(addr string) {
		addr = strings.ToLower(addr)
		if !seen[addr] {
			seen[addr] = true
			out = append(out, addr)
		}
	}

	for _, tx := range m.txns {
		if tx.Timestamp.Before(since) {
			continue
		}
		add(tx.Sender)
		add(tx.Recipient)
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Record(_ context.Context, tx *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.TxHash != "" && m.hashes[tx.TxHash] {
		return nil
	}

	tx.ID = m.nextID
	m.nextID++
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now()
	}
	m.txns = append(m.txns, *tx)
	if tx.TxHash != "" {
		m.hashes[tx.TxHash] = true
	}
	return nil
}
