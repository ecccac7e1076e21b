// Package service provides the cryptographic signature over license records.
package service

import (
	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
)

// Signer computes and checks license signatures.
type Signer interface {
	// Sign returns the 32-byte HMAC-SHA256 tag over the canonical encoding of license.
	// The Signature field itself is not covered.
	Sign(license *licenseDomain.License) ([]byte, error)

	// Verify recomputes the tag and compares it in constant time.
	// Returns licenseDomain.ErrSignatureInvalid on mismatch.
	Verify(license *licenseDomain.License) error

	// Close zeroes the signing key. The Signer must not be used afterwards.
	Close()
}
