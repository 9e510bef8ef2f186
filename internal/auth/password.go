package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// scrypt work factors are shared by hashing and verification; changing them
// invalidates every stored credential.
const (
	scryptN    = 16384
	scryptR    = 8
	scryptP    = 1
	keyLength  = 64
	saltLength = 16
)

// Credential is a derived password verifier plus its salt, both hex encoded
// for storage.
type Credential struct {
	Salt string
	Hash string
}

// HashPassword derives a credential from plaintext using a fresh random salt.
func HashPassword(password string) (Credential, error) {
	if password == "" {
		return Credential{}, fmt.Errorf("%w: password is empty", ErrInvalidInput)
	}
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return Credential{}, fmt.Errorf("generate salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return Credential{}, fmt.Errorf("derive key: %w", err)
	}
	return Credential{
		Salt: hex.EncodeToString(salt),
		Hash: hex.EncodeToString(key),
	}, nil
}

// VerifyPassword recomputes the verifier with the stored salt and compares it
// to the stored hash in constant time. A mismatch returns (false, nil); a
// non-nil error means the stored record is unreadable or the KDF failed,
// which is never the same thing as a wrong password.
func VerifyPassword(password, saltHex, hashHex string) (bool, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	stored, err := hex.DecodeString(hashHex)
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return false, fmt.Errorf("derive key: %w", err)
	}
	if len(key) != len(stored) {
		return false, nil
	}
	return subtle.ConstantTimeCompare(key, stored) == 1, nil
}
