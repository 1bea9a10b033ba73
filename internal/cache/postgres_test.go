package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vindexchain/ai-module/internal/testutil"
)

func TestPostgresGetSetDelete(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgres(db)
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss for absent key, got %v", err)
	}

	if err := store.Set(ctx, "k", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "value" {
		t.Fatalf("expected %q, got %q", "value", got)
	}

	// Upsert replaces the value
	if err := store.Set(ctx, "k", []byte("replaced"), time.Minute); err != nil {
		t.Fatalf("Set (upsert) failed: %v", err)
	}
	got, _ = store.Get(ctx, "k")
	if string(got) != "replaced" {
		t.Fatalf("expected upserted value, got %q", got)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after delete, got %v", err)
	}
}

func TestPostgresExpiry(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgres(db)
	ctx := context.Background()

	if err := store.Set(ctx, "short", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(1500 * time.Millisecond)

	if _, err := store.Get(ctx, "short"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss for expired key, got %v", err)
	}

	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged row, got %d", purged)
	}
}

func TestPostgresRejectsNonPositiveTTL(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgres(db)
	if err := store.Set(context.Background(), "k", []byte("v"), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
