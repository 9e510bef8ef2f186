package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// Memory is a per-process fixed-window limiter. Suitable for single-instance
// deployments only; multiple instances each count independently.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

var _ Limiter = (*Memory)(nil)

// NewMemory returns an empty in-process limiter.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*entry), now: time.Now}
}

// Attempt counts one attempt under the mutex, closing the check-then-increment
// race between concurrent requests on the same key.
func (m *Memory) Attempt(ctx context.Context, key string, max int, window time.Duration) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	current, ok := m.entries[key]
	if !ok || !now.Before(current.resetAt) {
		resetAt := now.Add(window)
		m.entries[key] = &entry{count: 1, resetAt: resetAt}
		return Decision{Allowed: true, Remaining: max - 1, ResetAt: resetAt}, nil
	}
	if current.count >= max {
		return Decision{Allowed: false, Remaining: 0, ResetAt: current.resetAt}, nil
	}
	current.count++
	return Decision{Allowed: true, Remaining: max - current.count, ResetAt: current.resetAt}, nil
}
