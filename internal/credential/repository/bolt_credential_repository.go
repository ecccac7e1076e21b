// Package repository persists operator credentials in an encrypted bbolt key-value file.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"

	credentialDomain "github.com/allisson/nodelock/internal/credential/domain"
	cryptoService "github.com/allisson/nodelock/internal/crypto/service"
)

const bucketCredentials = "credentials"

// credentialsRecord is the JSON plaintext sealed in each bucket value.
type credentialsRecord struct {
	PasswordHash   string     `json:"password_hash"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BoltCredentialRepository stores one encrypted record per username.
//
// Values are nonce || ciphertext. The username is the additional data, so a
// record copied under another key fails to decrypt.
type BoltCredentialRepository struct {
	db     *bbolt.DB
	cipher cryptoService.AEAD
}

// OpenBoltCredentialRepository opens (creating if needed) the credential store at path.
// bbolt holds an exclusive file lock; a second process waits up to lockTimeout
// and then gets ErrStoreBusy.
func OpenBoltCredentialRepository(
	path string,
	cipher cryptoService.AEAD,
	lockTimeout time.Duration,
) (*BoltCredentialRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credential store directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: lockTimeout})
	if err != nil {
		if errors.Is(err, bolterrors.ErrTimeout) {
			return nil, credentialDomain.ErrStoreBusy
		}
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCredentials))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}

	return &BoltCredentialRepository{db: db, cipher: cipher}, nil
}

// Close releases the file lock.
func (r *BoltCredentialRepository) Close() error {
	return r.db.Close()
}

// Create stores new credentials. Returns ErrCredentialsAlreadyExist if the username is taken.
func (r *BoltCredentialRepository) Create(ctx context.Context, creds *credentialDomain.Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketCredentials))
		if b.Get([]byte(creds.Username)) != nil {
			return credentialDomain.ErrCredentialsAlreadyExist
		}
		return r.put(b, creds)
	})
}

// Update replaces existing credentials. Returns ErrCredentialsNotFound if the username is unknown.
func (r *BoltCredentialRepository) Update(ctx context.Context, creds *credentialDomain.Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketCredentials))
		if b.Get([]byte(creds.Username)) == nil {
			return credentialDomain.ErrCredentialsNotFound
		}
		return r.put(b, creds)
	})
}

// Get returns the credentials for username. Returns ErrCredentialsNotFound if unknown.
func (r *BoltCredentialRepository) Get(ctx context.Context, username string) (*credentialDomain.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var creds *credentialDomain.Credentials
	err := r.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket([]byte(bucketCredentials)).Get([]byte(username))
		if value == nil {
			return credentialDomain.ErrCredentialsNotFound
		}

		var err error
		creds, err = r.decode(username, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return creds, nil
}

// Count returns the number of stored accounts.
func (r *BoltCredentialRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int
	err := r.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(bucketCredentials)).Stats().KeyN
		return nil
	})
	return n, err
}

func (r *BoltCredentialRepository) put(b *bbolt.Bucket, creds *credentialDomain.Credentials) error {
	plaintext, err := json.Marshal(credentialsRecord{
		PasswordHash:   creds.PasswordHash,
		FailedAttempts: creds.FailedAttempts,
		LockedUntil:    creds.LockedUntil,
		CreatedAt:      creds.CreatedAt,
		UpdatedAt:      creds.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	ciphertext, nonce, err := r.cipher.Encrypt(plaintext, []byte(creds.Username))
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	value := make([]byte, 0, len(nonce)+len(ciphertext))
	value = append(value, nonce...)
	value = append(value, ciphertext...)
	return b.Put([]byte(creds.Username), value)
}

// decode opens a bucket value. The value slice is only valid inside the
// transaction, so nothing returned aliases it.
func (r *BoltCredentialRepository) decode(username string, value []byte) (*credentialDomain.Credentials, error) {
	nonceSize := r.cipher.NonceSize()
	if len(value) < nonceSize {
		return nil, credentialDomain.ErrCredentialsCorrupted
	}

	plaintext, err := r.cipher.Decrypt(value[nonceSize:], value[:nonceSize], []byte(username))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", credentialDomain.ErrCredentialsCorrupted, err)
	}

	var record credentialsRecord
	if err := json.Unmarshal(plaintext, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", credentialDomain.ErrCredentialsCorrupted, err)
	}

	return &credentialDomain.Credentials{
		Username:       username,
		PasswordHash:   record.PasswordHash,
		FailedAttempts: record.FailedAttempts,
		LockedUntil:    record.LockedUntil,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}, nil
}
