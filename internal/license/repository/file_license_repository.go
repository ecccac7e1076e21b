// Package repository persists license records as encrypted files.
package repository

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/nodelock/internal/crypto/service"
	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
)

// licenseAAD binds ciphertexts to this record type and format version.
var licenseAAD = []byte("nodelock/license/v1")

// fieldSeparator splits the hex nonce from the hex ciphertext in the license file.
const fieldSeparator = ":"

// licenseFile is the JSON plaintext sealed inside the license file.
type licenseFile struct {
	ID          uuid.UUID                  `json:"id"`
	Fingerprint hardwareDomain.Fingerprint `json:"fingerprint"`
	IssuedAt    time.Time                  `json:"issued_at"`
	ExpiresAt   *time.Time                 `json:"expires_at"`
	Signature   string                     `json:"signature"`
}

// FileLicenseRepository stores a single license at a fixed path.
//
// The file holds "<hex nonce>:<hex ciphertext>". Any file that cannot be
// decoded, decrypted or parsed loads as ErrLicenseUnreadable.
type FileLicenseRepository struct {
	path   string
	cipher cryptoService.AEAD
	logger *slog.Logger
}

// NewFileLicenseRepository creates a repository for the license file at path.
func NewFileLicenseRepository(path string, cipher cryptoService.AEAD, logger *slog.Logger) *FileLicenseRepository {
	return &FileLicenseRepository{
		path:   path,
		cipher: cipher,
		logger: logger,
	}
}

// Path returns the license file location.
func (r *FileLicenseRepository) Path() string {
	return r.path
}

// Save encrypts license and atomically replaces the license file.
func (r *FileLicenseRepository) Save(ctx context.Context, license *licenseDomain.License) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if license == nil {
		return errors.New("license must not be nil")
	}

	plaintext, err := json.Marshal(licenseFile{
		ID:          license.ID,
		Fingerprint: license.Fingerprint,
		IssuedAt:    license.IssuedAt.UTC(),
		ExpiresAt:   utcPtr(license.ExpiresAt),
		Signature:   hex.EncodeToString(license.Signature),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal license: %w", err)
	}

	ciphertext, nonce, err := r.cipher.Encrypt(plaintext, licenseAAD)
	if err != nil {
		return fmt.Errorf("failed to encrypt license: %w", err)
	}

	content := hex.EncodeToString(nonce) + fieldSeparator + hex.EncodeToString(ciphertext)
	if err := writeFileAtomic(r.path, []byte(content)); err != nil {
		return fmt.Errorf("failed to write license file: %w", err)
	}

	r.logger.Debug("license saved", slog.String("path", r.path), slog.String("license_id", license.ID.String()))
	return nil
}

// Load reads and decrypts the license file.
//
// Returns licenseDomain.ErrLicenseNotFound when no file exists and
// licenseDomain.ErrLicenseUnreadable (which wraps ErrLicenseNotFound) for
// damaged or foreign content.
func (r *FileLicenseRepository) Load(ctx context.Context) (*licenseDomain.License, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, licenseDomain.ErrLicenseNotFound
		}
		return nil, unreadable("read failed: %v", err)
	}

	nonceHex, ciphertextHex, ok := strings.Cut(string(content), fieldSeparator)
	if !ok {
		return nil, unreadable("missing field separator")
	}

	nonce, err := decodeLowerHex(nonceHex)
	if err != nil {
		return nil, unreadable("nonce: %v", err)
	}
	ciphertext, err := decodeLowerHex(ciphertextHex)
	if err != nil {
		return nil, unreadable("ciphertext: %v", err)
	}

	plaintext, err := r.cipher.Decrypt(ciphertext, nonce, licenseAAD)
	if err != nil {
		return nil, unreadable("%v", err)
	}

	var record licenseFile
	if err := json.Unmarshal(plaintext, &record); err != nil {
		return nil, unreadable("decode: %v", err)
	}

	signature, err := hex.DecodeString(record.Signature)
	if err != nil {
		return nil, unreadable("signature: %v", err)
	}

	return &licenseDomain.License{
		ID:          record.ID,
		Fingerprint: record.Fingerprint,
		IssuedAt:    record.IssuedAt.UTC(),
		ExpiresAt:   utcPtr(record.ExpiresAt),
		Signature:   signature,
	}, nil
}

// Delete removes the license file. Deleting a missing file is not an error.
func (r *FileLicenseRepository) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove license file: %w", err)
	}
	return nil
}

func unreadable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", licenseDomain.ErrLicenseUnreadable, fmt.Sprintf(format, args...))
}

// decodeLowerHex accepts only the lowercase hex Save writes, so every byte of
// the file has exactly one valid value.
func decodeLowerHex(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return nil, fmt.Errorf("invalid hex character at offset %d", i)
		}
	}
	return hex.DecodeString(s)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// writeFileAtomic writes data to a temporary file in the target directory and
// renames it over path, so readers never observe a partial license.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".license-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
