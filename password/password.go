// Package password hashes and verifies user credentials with adaptive,
// salted one-way functions. The salt and cost parameters travel inside the
// stored hash, so nothing else needs to be persisted.
package password

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCorruptCredential is returned when a stored hash cannot be parsed.
// A wrong password is never an error; Verify reports it as false.
var ErrCorruptCredential = errors.New("stored credential hash is unreadable")

// Hasher produces and checks password hashes of one scheme.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, storedHash string) (bool, error)
}

// Scheme names accepted by NewHasher.
const (
	SchemeBcrypt   = "bcrypt"
	SchemeArgon2id = "argon2id"
)

// NewHasher returns the hasher used for new credentials.
func NewHasher(scheme string, bcryptCost int) (Hasher, error) {
	switch strings.ToLower(scheme) {
	case SchemeBcrypt, "":
		return NewBcryptHasher(bcryptCost)
	case SchemeArgon2id:
		return NewArgon2idHasher(DefaultArgon2Params), nil
	default:
		return nil, fmt.Errorf("unsupported password scheme %q", scheme)
	}
}

// Verify compares plaintext with storedHash, picking the scheme from the
// hash prefix. Hashes written by either scheme stay verifiable after the
// configured scheme changes.
func Verify(plaintext, storedHash string) (bool, error) {
	switch {
	case strings.HasPrefix(storedHash, argon2idPrefix):
		return NewArgon2idHasher(DefaultArgon2Params).Verify(plaintext, storedHash)
	case isBcryptHash(storedHash):
		return bcryptHasher{}.Verify(plaintext, storedHash)
	default:
		return false, ErrCorruptCredential
	}
}
