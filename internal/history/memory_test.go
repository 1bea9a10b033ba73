package history

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func seed(t *testing.T, store Store, txns ...Transaction) {
	t.Helper()
	ctx := context.Background()
	for i := range txns {
		if err := store.Record(ctx, &txns[i]); err != nil {
			t.Fatalf("seed transaction %d: %v", i, err)
		}
	}
}

func TestMemoryListByAddress(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	seed(t, store,
		Transaction{TxHash: "h1", Sender: "vindex1alice", Recipient: "vindex1carol", Timestamp: now.Add(-3 * time.Hour)},
		Transaction{TxHash: "h2", Sender: "vindex1dave", Recipient: "vindex1alice", Timestamp: now.Add(-1 * time.Hour)},
		Transaction{TxHash: "h3", Sender: "vindex1alice", Recipient: "vindex1dave", Timestamp: now.Add(-2 * time.Hour)},
		Transaction{TxHash: "h4", Sender: "vindex1carol", Recipient: "vindex1dave", Timestamp: now},
	)

	got, err := store.ListByAddress(context.Background(), "vindex1alice", 0)
	if err != nil {
		t.Fatalf("ListByAddress failed: %v", err)
	}

	// Both sent and received, newest first
	if len(got) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Fatal("expected newest-first ordering")
		}
	}
	if got[0].TxHash != "h2" {
		t.Fatalf("expected newest tx h2 first, got %s", got[0].TxHash)
	}
}

func TestMemoryListByAddress_LimitCapped(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	for i := 0; i < MaxQueryLimit+50; i++ {
		seed(t, store, Transaction{
			TxHash:    fmt.Sprintf("h%d", i),
			Sender:    "vindex1alice",
			Recipient: "vindex1carol",
			Timestamp: now.Add(-time.Duration(i) * time.Minute),
		})
	}

	got, err := store.ListByAddress(context.Background(), "vindex1alice", 0)
	if err != nil {
		t.Fatalf("ListByAddress failed: %v", err)
	}
	if len(got) != MaxQueryLimit {
		t.Fatalf("expected limit cap of %d, got %d", MaxQueryLimit, len(got))
	}

	// An explicit limit above the cap is also clamped
	got, _ = store.ListByAddress(context.Background(), "vindex1alice", MaxQueryLimit*2)
	if len(got) != MaxQueryLimit {
		t.Fatalf("expected clamped limit %d, got %d", MaxQueryLimit, len(got))
	}
}

func TestMemoryRecord_DuplicateHash(t *testing.T) {
	store := NewMemoryStore()

	seed(t, store,
		Transaction{TxHash: "dup", Sender: "vindex1alice", Recipient: "vindex1carol"},
		Transaction{TxHash: "dup", Sender: "vindex1alice", Recipient: "vindex1carol"},
	)

	got, _ := store.ListByAddress(context.Background(), "vindex1alice", 0)
	if len(got) != 1 {
		t.Fatalf("expected duplicate hash to be ignored, got %d transactions", len(got))
	}
}

func TestMemoryListActiveAddresses(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	seed(t, store,
		Transaction{TxHash: "h1", Sender: "vindex1alice", Recipient: "vindex1carol", Timestamp: now},
		Transaction{TxHash: "h2", Sender: "vindex1dave", Recipient: "vindex1alice", Timestamp: now.Add(-48 * time.Hour)},
	)

	got, err := store.ListActiveAddresses(context.Background(), now.Add(-time.Hour), 0)
	if err != nil {
		t.Fatalf("ListActiveAddresses failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 recently active addresses, got %d", len(got))
	}
}

func TestCounterparty(t *testing.T) {
	tx := Transaction{Sender: "vindex1alice", Recipient: "vindex1carol"}

	if got := tx.Counterparty("vindex1alice"); got != "vindex1carol" {
		t.Errorf("expected recipient as counterparty, got %s", got)
	}
	if got := tx.Counterparty("vindex1carol"); got != "vindex1alice" {
		t.Errorf("expected sender as counterparty, got %s", got)
	}
}
