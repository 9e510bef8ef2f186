package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryFixedWindow(t *testing.T) {
	lim := NewMemory()
	base := time.Now()
	lim.now = func() time.Time { return base }
	ctx := context.Background()

	const max = 3
	window := time.Minute

	for i := 0; i < max; i++ {
		d, err := lim.Attempt(ctx, "login:1.2.3.4", max, window)
		if err != nil {
			t.Fatalf("Attempt: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("attempt %d rejected inside the window", i+1)
		}
		if d.Remaining != max-i-1 {
			t.Fatalf("attempt %d: remaining = %d, want %d", i+1, d.Remaining, max-i-1)
		}
	}

	d, err := lim.Attempt(ctx, "login:1.2.3.4", max, window)
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if d.Allowed {
		t.Fatal("attempt beyond max allowed")
	}
	if d.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", d.Remaining)
	}
	if !d.ResetAt.Equal(base.Add(window)) {
		t.Fatalf("resetAt = %v, want %v", d.ResetAt, base.Add(window))
	}
}

func TestMemoryWindowReset(t *testing.T) {
	lim := NewMemory()
	base := time.Now()
	lim.now = func() time.Time { return base }
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _ = lim.Attempt(ctx, "k", 3, time.Minute)
	}

	// First attempt after resetAt starts a fresh window regardless of the
	// exhausted prior state.
	lim.now = func() time.Time { return base.Add(time.Minute) }
	d, err := lim.Attempt(ctx, "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if !d.Allowed {
		t.Fatal("fresh window rejected")
	}
	if d.Remaining != 2 {
		t.Fatalf("remaining = %d, want 2", d.Remaining)
	}
}

func TestMemoryKeysAreIndependent(t *testing.T) {
	lim := NewMemory()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = lim.Attempt(ctx, "login:a", 3, time.Minute)
	}
	d, err := lim.Attempt(ctx, "login:b", 3, time.Minute)
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if !d.Allowed || d.Remaining != 2 {
		t.Fatalf("unrelated key throttled: %+v", d)
	}
}

func TestMemoryConcurrentFirstAttempt(t *testing.T) {
	lim := NewMemory()
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	allowed := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := lim.Attempt(ctx, "k", 5, time.Minute)
			if err != nil {
				t.Errorf("Attempt: %v", err)
				return
			}
			allowed <- d.Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	if count != 5 {
		t.Fatalf("allowed %d of %d concurrent attempts, want 5", count, n)
	}
}
