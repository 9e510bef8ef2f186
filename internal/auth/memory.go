package auth

import (
	"context"
	"sync"
	"time"

	"vitrina.dev/internal/ids"
)

// MemoryStore is an in-process Store for tests and single-instance
// development runs. The mutex serializes the read-modify-write on the
// lockout counters.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*AdminUser // keyed by username
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*AdminUser)}
}

func (m *MemoryStore) Create(ctx context.Context, u *AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return ErrAlreadyExists
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	clone := *u
	m.users[u.Username] = &clone
	return nil
}

func (m *MemoryStore) FindByUsername(ctx context.Context, username string) (*AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *MemoryStore) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byID(id)
	if u == nil {
		return ErrNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockoutUntil = nil
	stamp := at
	u.LastLoginAt = &stamp
	return nil
}

func (m *MemoryStore) RecordLoginFailure(ctx context.Context, id string, threshold int, lockedUntil time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byID(id)
	if u == nil {
		return false, ErrNotFound
	}
	if u.FailedLoginAttempts+1 >= threshold {
		u.FailedLoginAttempts = 0
		until := lockedUntil
		u.LockoutUntil = &until
		return true, nil
	}
	u.FailedLoginAttempts++
	return false, nil
}

func (m *MemoryStore) UpdatePassword(ctx context.Context, id, saltHex, hashHex string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byID(id)
	if u == nil {
		return ErrNotFound
	}
	u.PasswordSalt = saltHex
	u.PasswordHash = hashHex
	return nil
}

// byID is called with the mutex held.
func (m *MemoryStore) byID(id string) *AdminUser {
	for _, u := range m.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}
