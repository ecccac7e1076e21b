package domain

import "fmt"

// Algorithm represents the AEAD algorithm protecting stored records.
//
// Both algorithms use a 256-bit key, a 12-byte random nonce and a 16-byte
// authentication tag, so a corrupted or foreign ciphertext always fails to open.
type Algorithm string

const (
	// AESGCM is AES-256 in Galois/Counter Mode. Default; hardware accelerated on most desktops.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305, for hosts without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the size in bytes of every symmetric key handled by the application.
const KeySize = 32

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", fmt.Errorf("%w: %q (valid options: aes-gcm, chacha20-poly1305)", ErrUnsupportedAlgorithm, s)
	}
}
