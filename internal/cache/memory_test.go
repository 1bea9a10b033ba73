package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()
	defer m.Stop()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss for absent key, got %v", err)
	}

	if err := m.Set(ctx, "k", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "value" {
		t.Fatalf("expected %q, got %q", "value", got)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	defer m.Stop()
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }

	if err := m.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Advance past the TTL
	now = now.Add(2 * time.Hour)

	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss for expired key, got %v", err)
	}
}

func TestMemoryRejectsNonPositiveTTL(t *testing.T) {
	m := NewMemory()
	defer m.Stop()

	if err := m.Set(context.Background(), "k", []byte("v"), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
	if err := m.Set(context.Background(), "k", []byte("v"), -time.Second); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	defer m.Stop()
	ctx := context.Background()

	if err := m.Delete(ctx, "absent"); err != nil {
		t.Fatalf("deleting absent key should not error: %v", err)
	}

	_ = m.Set(ctx, "k", []byte("v"), time.Minute)
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after delete, got %v", err)
	}
}

func TestMemoryValueIsolation(t *testing.T) {
	m := NewMemory()
	defer m.Stop()
	ctx := context.Background()

	src := []byte("original")
	_ = m.Set(ctx, "k", src, time.Minute)
	src[0] = 'X'

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("stored value mutated by caller: %q", got)
	}

	// Mutating the returned slice must not affect the stored copy either
	got[0] = 'Y'
	again, _ := m.Get(ctx, "k")
	if string(again) != "original" {
		t.Fatalf("stored value mutated by reader: %q", again)
	}
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemory()
	defer m.Stop()
	ctx := context.Background()

	_ = m.Set(ctx, "k", []byte("first"), time.Minute)
	_ = m.Set(ctx, "k", []byte("second"), time.Minute)

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected overwritten value, got %q", got)
	}
}
