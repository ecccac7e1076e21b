// Package domain defines the operator credentials that gate access after the license check.
package domain

import (
	"strings"
	"time"
)

// Credentials is a stored operator account.
type Credentials struct {
	Username       string     // Normalized (trimmed, lowercase)
	PasswordHash   string     // Argon2id PHC string
	FailedAttempts int        // Consecutive failed authentications
	LockedUntil    *time.Time // Time until which the account is locked (nil if not locked)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLocked reports whether the account is locked at now.
func (c *Credentials) IsLocked(now time.Time) bool {
	return c.LockedUntil != nil && now.Before(*c.LockedUntil)
}

// RegisterFailure counts a failed authentication and locks the account for
// lockoutDuration once maxAttempts consecutive failures are reached.
// Returns true when this failure locked the account.
func (c *Credentials) RegisterFailure(now time.Time, maxAttempts int, lockoutDuration time.Duration) bool {
	c.FailedAttempts++
	c.UpdatedAt = now
	if maxAttempts > 0 && c.FailedAttempts >= maxAttempts {
		lockedUntil := now.Add(lockoutDuration)
		c.LockedUntil = &lockedUntil
		c.FailedAttempts = 0
		return true
	}
	return false
}

// ResetFailures clears the failure counter and any lock.
func (c *Credentials) ResetFailures(now time.Time) {
	c.FailedAttempts = 0
	c.LockedUntil = nil
	c.UpdatedAt = now
}

// NormalizeUsername trims and lowercases a username so lookups are case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// InitializeInput contains the parameters for seeding the credential store.
type InitializeInput struct {
	Username string
	Password string
}

// ChangePasswordInput contains the parameters for replacing a password.
type ChangePasswordInput struct {
	Username        string
	CurrentPassword string
	NewPassword     string
}
