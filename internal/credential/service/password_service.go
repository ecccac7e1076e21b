// Package service provides Argon2id password hashing for operator credentials.
package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/nodelock/internal/errors"
)

// PasswordService hashes and verifies operator passwords.
type PasswordService interface {
	// HashPassword returns the Argon2id PHC string for password.
	HashPassword(password string) (string, error)

	// VerifyPassword reports whether candidate matches storedHash in constant time.
	// A malformed hash never matches.
	VerifyPassword(candidate, storedHash string) bool
}

// passwordService implements PasswordService using go-pwdhash.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordService creates a PasswordService with the interactive Argon2id policy,
// tuned for a login prompt rather than a background job.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyInteractive),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &passwordService{
		hasher: hasher,
	}
}

// HashPassword hashes a plain text password using Argon2id.
func (s *passwordService) HashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hash, nil
}

// VerifyPassword performs a constant-time comparison between a password and its hash.
func (s *passwordService) VerifyPassword(candidate, storedHash string) bool {
	ok, err := s.hasher.Verify([]byte(candidate), storedHash)
	if err != nil {
		return false
	}
	return ok
}
