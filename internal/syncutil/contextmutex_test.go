package syncutil

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLockUnlock(t *testing.T) {
	m := NewContextShardedMutex()

	unlock, err := m.LockContext(context.Background(), "reputation:vindex1acdefg23")
	if err != nil {
		t.Fatalf("LockContext: %v", err)
	}
	unlock()
}

func TestMutualExclusion(t *testing.T) {
	m := NewContextShardedMutex()
	ctx := context.Background()

	const n = 100
	counter := 0
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			unlock, err := m.LockContext(ctx, "reputation:shared")
			if err != nil {
				t.Errorf("LockContext: %v", err)
				return
			}
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != n {
		t.Fatalf("counter = %d, want %d", counter, n)
	}
}

func TestCancelledWaiterGetsError(t *testing.T) {
	m := NewContextShardedMutex()

	unlock, err := m.LockContext(context.Background(), "held")
	if err != nil {
		t.Fatalf("LockContext: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := m.LockContext(ctx, "held"); err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestDistinctKeysUsuallyIndependent(t *testing.T) {
	m := NewContextShardedMutex()
	ctx := context.Background()

	unlock1, err := m.LockContext(ctx, "reputation:vindex1acdefg23")
	if err != nil {
		t.Fatalf("LockContext: %v", err)
	}
	defer unlock1()

	timeoutCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	unlock2, err := m.LockContext(timeoutCtx, "reputation:vindex1peer042")
	if err != nil {
		// The two keys collided on a shard. Legal, just not what this
		// test wants to exercise.
		t.Skip("keys hashed to the same shard")
	}
	unlock2()
}

func TestUnlockHandsOffToWaiter(t *testing.T) {
	m := NewContextShardedMutex()
	ctx := context.Background()

	unlock, err := m.LockContext(ctx, "relay")
	if err != nil {
		t.Fatalf("LockContext: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		u, err := m.LockContext(ctx, "relay")
		if err != nil {
			return
		}
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("waiter acquired the lock while it was held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the lock after release")
	}
}
