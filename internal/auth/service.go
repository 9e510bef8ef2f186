package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vitrina.dev/internal/ids"
	"vitrina.dev/internal/obs"
)

const (
	// LockoutThreshold is the number of consecutive failures that locks an
	// account; the counter resets to zero at the moment of locking.
	LockoutThreshold = 5

	// LockoutDuration is the length of the lockout window.
	LockoutDuration = 15 * time.Minute

	minPasswordLength = 8
)

// Service implements the login flow and the account lockout state machine.
// Rate limiting happens upstream in the HTTP layer; the service never sees a
// request that was already throttled.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService builds the login service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Login authenticates a username/password pair.
//
// Failure modes are deliberately coarse: unknown username, wrong password and
// disabled account all return ErrInvalidCredentials; a locked account returns
// ErrAccountLocked with no unlock time. Store failures surface as wrapped
// errors for the caller to map to a 5xx.
func (s *Service) Login(ctx context.Context, username, password string) (*AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if user.Locked(now) {
		// Rejected on the lockout check alone: no counter mutation.
		return nil, ErrAccountLocked
	}

	ok, err := VerifyPassword(password, user.PasswordSalt, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		locked, err := s.store.RecordLoginFailure(ctx, user.ID, LockoutThreshold, now.Add(LockoutDuration))
		if err != nil {
			return nil, fmt.Errorf("record failed login: %w", err)
		}
		if locked {
			obs.ObserveLockout()
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.store.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	return user, nil
}

// Bootstrap creates the very first admin account. It refuses to run once any
// account exists.
func (s *Service) Bootstrap(ctx context.Context, username, password string) (*AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyExists
	}
	cred, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &AdminUser{
		ID:           ids.New(),
		Username:     username,
		PasswordSalt: cred.Salt,
		PasswordHash: cred.Hash,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password and replaces the credential
// with a freshly salted hash.
func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	if len(next) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("find account: %w", err)
	}
	ok, err := VerifyPassword(current, user.PasswordSalt, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}
	cred, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, user.ID, cred.Salt, cred.Hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
