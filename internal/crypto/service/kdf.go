package service

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/scrypt"

	cryptoDomain "github.com/allisson/nodelock/internal/crypto/domain"
)

// scrypt work factor. Changing any of these makes existing license files unreadable.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// keyDeriver implements KeyDeriver with scrypt for passphrases and HKDF-SHA256 for subkeys.
type keyDeriver struct {
	n, r, p int
}

// NewKeyDeriver creates a KeyDeriver with the production scrypt parameters.
func NewKeyDeriver() KeyDeriver {
	return &keyDeriver{n: scryptN, r: scryptR, p: scryptP}
}

// DeriveStoreKey stretches passphrase with scrypt. The salt is fixed per
// installation, so the same passphrase always yields the same key.
func (k *keyDeriver) DeriveStoreKey(passphrase, salt []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("passphrase must not be empty")
	}
	if len(salt) == 0 {
		return nil, cryptoDomain.ErrKDFSaltNotSet
	}

	key, err := scrypt.Key(passphrase, salt, k.n, k.r, k.p, cryptoDomain.KeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive store key: %w", err)
	}
	return key, nil
}

// DeriveSubkey expands secret with HKDF-SHA256 using purpose as the info
// parameter, so keys for different purposes are independent.
func (k *keyDeriver) DeriveSubkey(secret []byte, purpose string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("secret must not be empty")
	}

	reader := hkdf.New(sha256.New, secret, nil, []byte(purpose))
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive subkey: %w", err)
	}
	return key, nil
}
