package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"vitrina.dev/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store on PostgreSQL. The lockout counter update is a
// single conditional UPDATE, so concurrent failed attempts are serialized by
// row-level locking in the database rather than in this process.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps an open database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const adminUserColumns = `id, username, password_salt, password_hash, is_active,
	failed_login_attempts, lockout_until, last_login_at, created_at`

func (s *PGStore) Create(ctx context.Context, u *AdminUser) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into admin_users(id, username, password_salt, password_hash, is_active, created_at)
		 values($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Username, u.PasswordSalt, u.PasswordHash, u.IsActive, u.CreatedAt,
	)
	return err
}

func (s *PGStore) FindByUsername(ctx context.Context, username string) (*AdminUser, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+adminUserColumns+` from admin_users where username=$1`, username,
	)
	var (
		u            AdminUser
		lockoutUntil sql.NullTime
		lastLoginAt  sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordSalt, &u.PasswordHash, &u.IsActive,
		&u.FailedLoginAttempts, &lockoutUntil, &lastLoginAt, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if lockoutUntil.Valid {
		u.LockoutUntil = &lockoutUntil.Time
	}
	if lastLoginAt.Valid {
		u.LastLoginAt = &lastLoginAt.Time
	}
	return &u, nil
}

func (s *PGStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `select count(*) from admin_users`).Scan(&count)
	return count, err
}

func (s *PGStore) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`update admin_users
		    set failed_login_attempts = 0, lockout_until = null, last_login_at = $2
		  where id = $1`,
		id, at,
	)
	return err
}

func (s *PGStore) RecordLoginFailure(ctx context.Context, id string, threshold int, lockedUntil time.Time) (bool, error) {
	// The counter resets to zero at the moment of locking, so a returned
	// zero means this attempt tripped the threshold.
	row := s.db.QueryRowContext(ctx,
		`update admin_users
		    set failed_login_attempts = case when failed_login_attempts + 1 >= $2 then 0
		                                     else failed_login_attempts + 1 end,
		        lockout_until = case when failed_login_attempts + 1 >= $2 then $3
		                             else lockout_until end
		  where id = $1
		  returning failed_login_attempts`,
		id, threshold, lockedUntil,
	)
	var remaining int
	if err := row.Scan(&remaining); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return remaining == 0, nil
}

func (s *PGStore) UpdatePassword(ctx context.Context, id, saltHex, hashHex string) error {
	res, err := s.db.ExecContext(ctx,
		`update admin_users set password_salt = $2, password_hash = $3 where id = $1`,
		id, saltHex, hashHex,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
