package auth

import "errors"

var (
	// ErrInvalidCredentials covers wrong password, unknown username and
	// disabled accounts alike, so callers cannot enumerate usernames.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrAccountLocked is the only failure mode distinguishable from bad
	// credentials, and it carries no unlock timestamp.
	ErrAccountLocked = errors.New("auth: account temporarily locked")

	// ErrInvalidToken covers malformed, forged and expired session tokens.
	ErrInvalidToken = errors.New("auth: invalid token")

	ErrNotFound      = errors.New("auth: not found")
	ErrAlreadyExists = errors.New("auth: already exists")
	ErrInvalidInput  = errors.New("auth: invalid input")
)
