package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/allisson/nodelock/internal/config"
)

// MinSecretLength is the minimum length in bytes of each license secret.
const MinSecretLength = 16

// placeholderSecrets are values that ship in sample configs and tutorials.
// They are refused even when long enough.
var placeholderSecrets = map[string]struct{}{
	"changeme":                     {},
	"change-me":                    {},
	"secret":                       {},
	"password":                     {},
	"your-secure-private-key":      {},
	"your-encryption-key":          {},
	"your-secure-encryption-key":   {},
	"replace-with-a-random-secret": {},
}

// LicenseSecrets holds the operator secrets that protect license records.
//
// SigningKey authenticates records (HMAC). EncryptionKey is the passphrase the
// license store key is derived from. KDFSalt is the fixed derivation salt.
// None of them depend on the machine, so a license stays readable after
// hardware or OS changes.
type LicenseSecrets struct {
	SigningKey    []byte
	EncryptionKey []byte
	KDFSalt       []byte
}

// Close zeroes the secret material.
func (s *LicenseSecrets) Close() {
	if s == nil {
		return
	}
	Zero(s.SigningKey)
	Zero(s.EncryptionKey)
}

// LoadLicenseSecrets reads the license secrets from configuration.
//
// When cfg.KMSKeyURI is set, LICENSE_SIGNING_KEY and LICENSE_ENCRYPTION_KEY are
// expected to be base64-encoded KMS ciphertexts and are unwrapped with the keeper.
// Missing, short or placeholder secrets are configuration errors: there is no
// fallback value.
func LoadLicenseSecrets(
	ctx context.Context,
	cfg *config.Config,
	kmsService KMSService,
	logger *slog.Logger,
) (*LicenseSecrets, error) {
	if cfg.LicenseKDFSalt == "" {
		return nil, ErrKDFSaltNotSet
	}
	if cfg.LicenseSigningKey == "" {
		return nil, ErrSigningKeyNotSet
	}
	if cfg.LicenseEncryptionKey == "" {
		return nil, ErrEncryptionKeyNotSet
	}

	signingKey := []byte(cfg.LicenseSigningKey)
	encryptionKey := []byte(cfg.LicenseEncryptionKey)

	if cfg.KMSKeyURI != "" {
		logger.Debug("unwrapping license secrets with KMS", slog.String("kms_provider", cfg.KMSProvider))

		var err error
		signingKey, encryptionKey, err = unwrapSecrets(ctx, kmsService, cfg.KMSKeyURI, signingKey, encryptionKey)
		if err != nil {
			return nil, err
		}
	}

	secrets := &LicenseSecrets{
		SigningKey:    signingKey,
		EncryptionKey: encryptionKey,
		KDFSalt:       []byte(cfg.LicenseKDFSalt),
	}

	if err := checkSecret("LICENSE_SIGNING_KEY", signingKey); err != nil {
		secrets.Close()
		return nil, err
	}
	if err := checkSecret("LICENSE_ENCRYPTION_KEY", encryptionKey); err != nil {
		secrets.Close()
		return nil, err
	}

	return secrets, nil
}

func unwrapSecrets(
	ctx context.Context,
	kmsService KMSService,
	keyURI string,
	wrappedSigning, wrappedEncryption []byte,
) (signingKey, encryptionKey []byte, err error) {
	keeper, err := kmsService.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	signingKey, err = unwrapSecret(ctx, keeper, "LICENSE_SIGNING_KEY", wrappedSigning)
	if err != nil {
		return nil, nil, err
	}

	encryptionKey, err = unwrapSecret(ctx, keeper, "LICENSE_ENCRYPTION_KEY", wrappedEncryption)
	if err != nil {
		Zero(signingKey)
		return nil, nil, err
	}

	return signingKey, encryptionKey, nil
}

func unwrapSecret(ctx context.Context, keeper KMSKeeper, name string, wrapped []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(wrapped))
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrInvalidKMSCiphertext, name, err)
	}

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt %s with KMS: %w", name, err)
	}

	return plaintext, nil
}

func checkSecret(name string, secret []byte) error {
	if _, ok := placeholderSecrets[strings.ToLower(strings.TrimSpace(string(secret)))]; ok {
		return fmt.Errorf("%w: %s", ErrInsecureSecret, name)
	}
	if len(secret) < MinSecretLength {
		return fmt.Errorf("%w: %s must be at least %d bytes, got %d", ErrSecretTooShort, name, MinSecretLength, len(secret))
	}
	return nil
}
