// Package domain defines the hardware fingerprint a license is bound to.
package domain

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/allisson/nodelock/internal/errors"
)

// FingerprintSize is the length of a Fingerprint in bytes.
const FingerprintSize = sha256.Size

// fingerprintPrefix domain-separates the hash from other uses of the platform UUID.
const fingerprintPrefix = "nodelock-hwid-v1:"

// Fingerprint is a one-way digest of the platform hardware identifier.
// The raw identifier is never stored; only this digest is.
type Fingerprint [FingerprintSize]byte

var (
	// ErrHardwareQuery indicates the platform identifier could not be determined.
	// A license cannot be verified without it.
	ErrHardwareQuery = errors.New("hardware query failed")

	// ErrInvalidFingerprint indicates a fingerprint string is not 64 hex characters.
	ErrInvalidFingerprint = errors.Wrap(errors.ErrInvalidInput, "invalid fingerprint")
)

// NewFingerprint hashes a canonical platform identifier into a Fingerprint.
func NewFingerprint(platformID string) Fingerprint {
	return Fingerprint(sha256.Sum256([]byte(fingerprintPrefix + platformID)))
}

// ParseFingerprint decodes the hex form produced by String.
func ParseFingerprint(s string) (Fingerprint, error) {
	var fp Fingerprint
	if len(s) != hex.EncodedLen(FingerprintSize) {
		return fp, fmt.Errorf("%w: expected %d hex characters, got %d",
			ErrInvalidFingerprint, hex.EncodedLen(FingerprintSize), len(s))
	}
	if _, err := hex.Decode(fp[:], []byte(s)); err != nil {
		return Fingerprint{}, fmt.Errorf("%w: %v", ErrInvalidFingerprint, err)
	}
	return fp, nil
}

// String returns the lowercase hex encoding.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// IsZero reports whether f is the zero value.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// Equal compares two fingerprints in constant time.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return subtle.ConstantTimeCompare(f[:], other[:]) == 1
}

// MarshalText implements encoding.TextMarshaler.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fingerprint) UnmarshalText(text []byte) error {
	parsed, err := ParseFingerprint(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
