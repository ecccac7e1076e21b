package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	cryptoDomain "github.com/allisson/nodelock/internal/crypto/domain"
	cryptoService "github.com/allisson/nodelock/internal/crypto/service"
	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
)

// SigningKeyPurpose is the HKDF info used to derive the HMAC key from LICENSE_SIGNING_KEY.
// Changing it invalidates every issued license.
const SigningKeyPurpose = "nodelock-license-signing-v1"

// canonicalVersion prefixes the signed bytes so the encoding can evolve.
const canonicalVersion byte = 1

// canonicalSize is version(1) + id(16) + fingerprint(32) + issued_at(8) + has_expiry(1) + expires_at(8).
const canonicalSize = 1 + 16 + 32 + 8 + 1 + 8

type licenseSigner struct {
	key []byte
}

// NewLicenseSigner creates a Signer keyed with an HKDF-SHA256 subkey of secret.
func NewLicenseSigner(deriver cryptoService.KeyDeriver, secret []byte) (Signer, error) {
	key, err := deriver.DeriveSubkey(secret, SigningKeyPurpose)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	return &licenseSigner{key: key}, nil
}

// canonicalize encodes the signed fields at fixed offsets.
// Timestamps are Unix seconds; a missing expiry encodes as has_expiry=0 and eight zero bytes.
func canonicalize(license *licenseDomain.License) []byte {
	buf := make([]byte, 0, canonicalSize)
	buf = append(buf, canonicalVersion)
	buf = append(buf, license.ID[:]...)
	buf = append(buf, license.Fingerprint[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(license.IssuedAt.Unix()))

	if license.ExpiresAt != nil {
		buf = append(buf, 1)
		buf = binary.BigEndian.AppendUint64(buf, uint64(license.ExpiresAt.Unix()))
	} else {
		buf = append(buf, 0)
		buf = binary.BigEndian.AppendUint64(buf, 0)
	}

	return buf
}

// Sign generates the HMAC-SHA256 signature for license.
func (s *licenseSigner) Sign(license *licenseDomain.License) ([]byte, error) {
	if license == nil {
		return nil, errors.New("license must not be nil")
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(canonicalize(license))
	return mac.Sum(nil), nil
}

// Verify checks if the license signature is valid.
// Timestamps finer than a second are not covered by the signature, so a
// record carrying them is rejected.
func (s *licenseSigner) Verify(license *licenseDomain.License) error {
	expected, err := s.Sign(license)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !isNormalized(license.IssuedAt) || (license.ExpiresAt != nil && !isNormalized(*license.ExpiresAt)) {
		return licenseDomain.ErrSignatureInvalid
	}

	if !hmac.Equal(license.Signature, expected) {
		return licenseDomain.ErrSignatureInvalid
	}
	return nil
}

func isNormalized(t time.Time) bool {
	return t.Equal(licenseDomain.NormalizeTime(t))
}

// Close zeroes the signing key.
func (s *licenseSigner) Close() {
	cryptoDomain.Zero(s.key)
}
