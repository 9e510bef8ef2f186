package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window limiter backed by a shared atomic counter, for
// multi-instance deployments where per-process counters would drift.
type Redis struct {
	client *redis.Client
}

var _ Limiter = (*Redis)(nil)

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Attempt runs INCR plus a first-hit PEXPIRE in one pipeline; INCR is atomic
// on the server, so concurrent attempts on the same key never both observe
// an empty window.
func (r *Redis) Attempt(ctx context.Context, key string, max int, window time.Duration) (Decision, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("ratelimit: redis attempt: %w", err)
	}

	count := int(incr.Val())
	resetAt := time.Now().Add(window)
	if d := ttl.Val(); d > 0 {
		resetAt = time.Now().Add(d)
	}
	if count > max {
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	return Decision{Allowed: true, Remaining: max - count, ResetAt: resetAt}, nil
}
