package auth

import (
	"context"
	"time"
)

// Store describes persistence for admin accounts. Implementations must make
// RecordLoginFailure atomic per account: two concurrent failed attempts may
// never under-count.
type Store interface {
	Create(ctx context.Context, u *AdminUser) error
	FindByUsername(ctx context.Context, username string) (*AdminUser, error)
	Count(ctx context.Context) (int, error)

	// RecordLoginSuccess resets the failure counter and lockout window and
	// stamps the last login time.
	RecordLoginSuccess(ctx context.Context, id string, at time.Time) error

	// RecordLoginFailure increments the failure counter; when the counter
	// reaches threshold the account locks until lockedUntil and the counter
	// resets to zero. Reports whether this call locked the account.
	RecordLoginFailure(ctx context.Context, id string, threshold int, lockedUntil time.Time) (bool, error)

	UpdatePassword(ctx context.Context, id, saltHex, hashHex string) error
}
