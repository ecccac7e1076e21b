// Package domain defines the node-locked license record and the reasons a license can be refused.
//
// A License binds a hardware fingerprint to an issue date and an optional
// expiration date. It carries an HMAC signature over its canonical encoding,
// so any field change after signing is detected at verification time.
package domain

import (
	"time"

	"github.com/google/uuid"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
)

// License is a signed grant for one machine.
type License struct {
	ID          uuid.UUID                  // Unique identifier (UUIDv7)
	Fingerprint hardwareDomain.Fingerprint // Machine the license is bound to
	IssuedAt    time.Time                  // UTC, second precision
	ExpiresAt   *time.Time                 // UTC, second precision (nil if the license never expires)
	Signature   []byte                     // HMAC-SHA256 over the canonical encoding
}

// IsExpired reports whether the license expired strictly before now.
// A license expiring exactly at now is still valid.
func (l *License) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// BoundTo reports whether the license belongs to the machine with fingerprint fp.
func (l *License) BoundTo(fp hardwareDomain.Fingerprint) bool {
	return l.Fingerprint.Equal(fp)
}

// IssueInput contains the parameters for issuing a license.
type IssueInput struct {
	Fingerprint hardwareDomain.Fingerprint
	ExpiresAt   *time.Time // nil issues a non-expiring license
}

// NormalizeTime converts t to UTC with second precision, the resolution a
// license records.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
