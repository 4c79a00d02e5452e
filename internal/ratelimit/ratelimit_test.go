package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestReserveDrainsBurstThenRefills(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := New(2)
	l.now = func() time.Time { return now }
	l.lastFill = now

	for i := 0; i < 2; i++ {
		if _, ok := l.reserve(); !ok {
			t.Fatalf("token %d: expected burst of 2 tokens", i)
		}
	}
	wait, ok := l.reserve()
	if ok {
		t.Fatal("expected empty bucket")
	}
	if wait != 500*time.Millisecond {
		t.Errorf("wait = %v, want 500ms at 2 rps", wait)
	}

	now = now.Add(500 * time.Millisecond)
	if _, ok := l.reserve(); !ok {
		t.Fatal("expected one token after 500ms at 2 rps")
	}
}

func TestWaitReturnsImmediatelyWithTokens(t *testing.T) {
	l := New(5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// a full bucket never consults ctx
	for i := 0; i < 5; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if err := l.Wait(ctx); err != context.Canceled {
		t.Fatalf("Wait() = %v, want canceled once the bucket is empty", err)
	}
}

func TestNewClampsRate(t *testing.T) {
	l := New(0)
	if l.rate != 1 || l.burst != 1 {
		t.Errorf("rate=%v burst=%v, want 1/1", l.rate, l.burst)
	}

	l = New(0.5)
	if l.burst != 1 {
		t.Errorf("burst=%v, want 1 for fractional rate", l.burst)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	l := New(0.01)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err != context.DeadlineExceeded {
		t.Fatalf("Wait() = %v, want deadline exceeded", err)
	}
}
