package domain

import (
	"github.com/allisson/nodelock/internal/errors"
)

// Credential errors.
var (
	// ErrCredentialsNotFound indicates no account exists for the username.
	ErrCredentialsNotFound = errors.Wrap(errors.ErrNotFound, "credentials not found")

	// ErrCredentialsAlreadyExist indicates the account was already initialized.
	ErrCredentialsAlreadyExist = errors.Wrap(errors.ErrConflict, "credentials already exist")

	// ErrInvalidCredentials indicates the username or password is wrong.
	// Unknown usernames and wrong passwords are not distinguished.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrCredentialsLocked indicates too many failed attempts locked the account.
	ErrCredentialsLocked = errors.Wrap(errors.ErrForbidden, "account temporarily locked")

	// ErrCredentialsCorrupted indicates a stored record could not be decrypted or decoded.
	ErrCredentialsCorrupted = errors.New("credential record corrupted")

	// ErrStoreBusy indicates another process holds the credential store.
	ErrStoreBusy = errors.New("credential store is in use by another process")
)
