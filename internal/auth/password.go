package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// ErrBadCredentials covers every credential failure mode. Hashing faults and
// mismatches are indistinguishable to the caller; verification fails closed.
var ErrBadCredentials = errors.New("invalid credentials")

// HashPassword derives a salted one-way hash for storage. Plaintext is never
// persisted or logged.
func HashPassword(plain string) (string, error) {
	if len(plain) < minPasswordLength {
		return "", errors.New("password too short")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a stored hash with a login attempt. bcrypt performs
// the comparison in constant time; any internal error maps to
// ErrBadCredentials rather than surfacing a distinguishable fault.
func CheckPassword(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return ErrBadCredentials
	}
	return nil
}
