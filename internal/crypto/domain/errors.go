package domain

import (
	"github.com/allisson/nodelock/internal/errors"
)

// Cryptographic operation errors.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a ciphertext could not be opened.
	//
	// Wrong key, tampered ciphertext, wrong nonce and wrong additional data all
	// collapse into this error so the cause is never disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrSigningKeyNotSet indicates LICENSE_SIGNING_KEY is empty.
	ErrSigningKeyNotSet = errors.Wrap(errors.ErrMisconfigured, "LICENSE_SIGNING_KEY is not set")

	// ErrEncryptionKeyNotSet indicates LICENSE_ENCRYPTION_KEY is empty.
	ErrEncryptionKeyNotSet = errors.Wrap(errors.ErrMisconfigured, "LICENSE_ENCRYPTION_KEY is not set")

	// ErrSecretTooShort indicates a license secret has fewer than MinSecretLength bytes.
	ErrSecretTooShort = errors.Wrap(errors.ErrMisconfigured, "license secret is too short")

	// ErrInsecureSecret indicates a license secret is a well-known placeholder value.
	ErrInsecureSecret = errors.Wrap(errors.ErrMisconfigured, "license secret is a placeholder value")

	// ErrKDFSaltNotSet indicates LICENSE_KDF_SALT is empty.
	ErrKDFSaltNotSet = errors.Wrap(errors.ErrMisconfigured, "LICENSE_KDF_SALT is not set")

	// ErrInvalidKMSCiphertext indicates a KMS-wrapped secret is not valid base64.
	ErrInvalidKMSCiphertext = errors.Wrap(errors.ErrMisconfigured, "invalid KMS ciphertext")
)
