package auth

import "time"

// AdminUser is an administrator account. Credentials are immutable except on
// password change; the lockout fields are mutated only by the login flow.
type AdminUser struct {
	ID                  string
	Username            string
	PasswordSalt        string
	PasswordHash        string
	IsActive            bool
	FailedLoginAttempts int
	LockoutUntil        *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time
}

// Locked reports whether the account is inside a lockout window. Expiry is
// evaluated lazily against now; there is no unlock step.
func (u *AdminUser) Locked(now time.Time) bool {
	return u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}
