// Package history provides access to on-chain transaction history used as
// the raw input for reputation scoring.
package history

import (
	"context"
	"time"
)

// MaxQueryLimit caps how many transactions a single lookup returns.
const MaxQueryLimit = 1000

// Transaction is a single transfer involving an address.
type Transaction struct {
	ID        int64     `json:"id"`
	TxHash    string    `json:"tx_hash"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Amount    string    `json:"amount"`
	Denom     string    `json:"denom"`
	Memo      string    `json:"memo,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Counterparty returns the other side of the transaction relative to addr.
func (t *Transaction) Counterparty(addr string) string {
	if t.Sender == addr {
		return t.Recipient
	}
	return t.Sender
}

// Store is the persistence interface for transaction history.
type Store interface {
	// ListByAddress returns transactions where the address is sender or
	// recipient, newest first. limit is capped at MaxQueryLimit; a
	// non-positive limit means MaxQueryLimit.
	ListByAddress(ctx context.Context, address string, limit int) ([]Transaction, error)

	// ListActiveAddresses returns distinct addresses that transacted since
	// the given time, for background snapshot refreshes.
	ListActiveAddresses(ctx context.Context, since time.Time, limit int) ([]string, error)

	// Record persists a transaction. Duplicate tx hashes are ignored.
	Record(ctx context.Context, tx *Transaction) error
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
