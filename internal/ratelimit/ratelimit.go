// Package ratelimit implements fixed-window counting for login throttling.
// The limiter is identity-agnostic: callers supply the key (for example
// "login:<client-ip>").
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single attempt.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter counts attempts per key inside fixed windows. The first attempt
// after ResetAt always starts a fresh window regardless of prior state.
// Implementations must make the check-and-increment atomic per key.
type Limiter interface {
	Attempt(ctx context.Context, key string, max int, window time.Duration) (Decision, error)
}
