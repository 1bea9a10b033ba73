package circuitbreaker

import (
	"sync"
	"testing"
	"time"
)

func TestClosedCircuitAllows(t *testing.T) {
	b := New(3, 100*time.Millisecond)
	if !b.Allow("history") {
		t.Fatal("closed circuit must allow")
	}
}

func TestCircuitOpensAtThreshold(t *testing.T) {
	b := New(3, 100*time.Millisecond)

	b.RecordFailure("history")
	b.RecordFailure("history")
	if !b.Allow("history") {
		t.Fatal("two failures must not trip a threshold of three")
	}

	b.RecordFailure("history")
	if b.Allow("history") {
		t.Fatal("third failure should have opened the circuit")
	}
	if got := b.State("history"); got != StateOpen {
		t.Fatalf("state = %v, want %v", got, StateOpen)
	}
}

func TestOpenCircuitProbesAfterCooldown(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure("history")
	b.RecordFailure("history")
	if b.Allow("history") {
		t.Fatal("circuit should be open")
	}

	time.Sleep(60 * time.Millisecond)

	if !b.Allow("history") {
		t.Fatal("cooldown elapsed, probe should be allowed")
	}
	if got := b.State("history"); got != StateHalfOpen {
		t.Fatalf("state = %v, want %v", got, StateHalfOpen)
	}
	if b.Allow("history") {
		t.Fatal("only one probe is allowed while half-open")
	}
}

func TestProbeSuccessClosesCircuit(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure("history")
	b.RecordFailure("history")
	time.Sleep(60 * time.Millisecond)
	b.Allow("history")

	b.RecordSuccess("history")
	if got := b.State("history"); got != StateClosed {
		t.Fatalf("state = %v, want %v", got, StateClosed)
	}
	if !b.Allow("history") {
		t.Fatal("recovered circuit must allow")
	}
}

func TestProbeFailureReopensCircuit(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure("history")
	b.RecordFailure("history")
	time.Sleep(60 * time.Millisecond)
	b.Allow("history")

	b.RecordFailure("history")
	if got := b.State("history"); got != StateOpen {
		t.Fatalf("state = %v, want %v", got, StateOpen)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := New(3, 100*time.Millisecond)

	b.RecordFailure("history")
	b.RecordFailure("history")
	b.RecordSuccess("history")

	b.RecordFailure("history")
	if !b.Allow("history") {
		t.Fatal("counter was reset, one failure must not trip")
	}
}

func TestKeysTripIndependently(t *testing.T) {
	b := New(2, 100*time.Millisecond)

	b.RecordFailure("history")
	b.RecordFailure("history")

	if b.Allow("history") {
		t.Fatal("history circuit should be open")
	}
	if !b.Allow("cache") {
		t.Fatal("cache circuit must be unaffected")
	}
}

func TestUnknownKeyStartsClosed(t *testing.T) {
	b := New(2, 100*time.Millisecond)
	if got := b.State("never-seen"); got != StateClosed {
		t.Fatalf("state = %v, want %v", got, StateClosed)
	}
}

func TestTransitionCallbackFires(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	var mu sync.Mutex
	var transitions []struct{ from, to State }
	b.OnTransition(func(key string, from, to State) {
		mu.Lock()
		transitions = append(transitions, struct{ from, to State }{from, to})
		mu.Unlock()
	})

	b.RecordFailure("history")
	b.RecordFailure("history")

	// The callback runs on its own goroutine.
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != 1 {
		t.Fatalf("got %d transitions, want 1", len(transitions))
	}
	if transitions[0].from != StateClosed || transitions[0].to != StateOpen {
		t.Fatalf("transition %v to %v, want closed to open", transitions[0].from, transitions[0].to)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half_open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
