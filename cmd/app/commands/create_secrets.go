package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"

	cryptoDomain "github.com/allisson/nodelock/internal/crypto/domain"
)

// generatedSecretSize is the number of random bytes behind each generated secret.
const generatedSecretSize = 32

// kmsProviders maps KMS key URI schemes to KMS_PROVIDER values.
var kmsProviders = map[string]string{
	"base64key":     "localsecrets",
	"gcpkms":        "gcpkms",
	"awskms":        "awskms",
	"azurekeyvault": "azurekeyvault",
	"hashivault":    "hashivault",
}

// RunCreateSecrets generates a license signing key, a license encryption
// passphrase and a KDF salt, and prints them as environment variables.
// Key material is zeroed from memory after encoding.
//
// When kmsKeyURI is set, both secrets are encrypted with the KMS key and printed
// as base64 ciphertexts. For local development use kmsKeyURI="base64key://...".
//
// Output format:
//   - LICENSE_SIGNING_KEY="<hex or base64-encoded-kms-ciphertext>"
//   - LICENSE_ENCRYPTION_KEY="<hex or base64-encoded-kms-ciphertext>"
//   - LICENSE_KDF_SALT="<hex>"
func RunCreateSecrets(
	ctx context.Context,
	kmsService cryptoDomain.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
) error {
	var kmsProvider string
	if kmsKeyURI != "" {
		scheme, _, found := strings.Cut(kmsKeyURI, "://")
		provider, ok := kmsProviders[scheme]
		if !found || !ok {
			return fmt.Errorf(
				"unsupported KMS key URI: %q (expected base64key://, gcpkms://, awskms://, azurekeyvault:// or hashivault://)",
				kmsKeyURI,
			)
		}
		kmsProvider = provider
	}

	signingKey, err := randomHex(generatedSecretSize)
	if err != nil {
		return fmt.Errorf("failed to generate signing key: %w", err)
	}
	defer cryptoDomain.Zero(signingKey)

	encryptionKey, err := randomHex(generatedSecretSize)
	if err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}
	defer cryptoDomain.Zero(encryptionKey)

	salt, err := randomHex(16)
	if err != nil {
		return fmt.Errorf("failed to generate KDF salt: %w", err)
	}

	signingValue := string(signingKey)
	encryptionValue := string(encryptionKey)

	if kmsKeyURI != "" {
		keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
		if err != nil {
			return fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
			}
		}()

		signingValue, err = wrapSecret(ctx, keeper, signingKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt signing key with KMS: %w", err)
		}
		encryptionValue, err = wrapSecret(ctx, keeper, encryptionKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt encryption key with KMS: %w", err)
		}
	}

	_, _ = fmt.Fprintln(writer, "# License Secrets")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer, "# Changing any of them makes installed licenses unreadable")
	_, _ = fmt.Fprintln(writer)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}
	_, _ = fmt.Fprintf(writer, "LICENSE_SIGNING_KEY=\"%s\"\n", signingValue)
	_, _ = fmt.Fprintf(writer, "LICENSE_ENCRYPTION_KEY=\"%s\"\n", encryptionValue)
	_, _ = fmt.Fprintf(writer, "LICENSE_KDF_SALT=\"%s\"\n", salt)

	logger.Info("license secrets generated", slog.Bool("kms", kmsKeyURI != ""))
	return nil
}

// randomHex returns n random bytes, hex encoded.
func randomHex(n int) ([]byte, error) {
	raw := make([]byte, n)
	defer cryptoDomain.Zero(raw)

	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	encoded := make([]byte, hex.EncodedLen(n))
	hex.Encode(encoded, raw)
	return encoded, nil
}

func wrapSecret(ctx context.Context, keeper cryptoDomain.KMSKeeper, secret []byte) (string, error) {
	ciphertext, err := keeper.Encrypt(ctx, secret)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
