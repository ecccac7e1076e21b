// Package service provides the cryptographic primitives behind the license
// store and the credential store: AEAD ciphers, key derivation and KMS access.
package service

import (
	cryptoDomain "github.com/allisson/nodelock/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and a fresh random nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt opens ciphertext with the nonce and AAD used at encryption.
	// Returns cryptoDomain.ErrDecryptionFailed for any authentication failure.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// NonceSize returns the nonce length in bytes.
	NonceSize() int
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyDeriver turns operator secrets into fixed-size symmetric keys.
type KeyDeriver interface {
	// DeriveStoreKey stretches a passphrase into a KeySize key with a slow KDF.
	DeriveStoreKey(passphrase, salt []byte) ([]byte, error)

	// DeriveSubkey derives an independent KeySize key for the given purpose.
	DeriveSubkey(secret []byte, purpose string) ([]byte, error)
}
