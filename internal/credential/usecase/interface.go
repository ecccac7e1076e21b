// Package usecase implements the operator credential gate.
package usecase

import (
	"context"

	credentialDomain "github.com/allisson/nodelock/internal/credential/domain"
)

// CredentialRepository defines persistence operations for operator credentials.
type CredentialRepository interface {
	// Create stores new credentials. Returns ErrCredentialsAlreadyExist if the username is taken.
	Create(ctx context.Context, creds *credentialDomain.Credentials) error

	// Update replaces existing credentials. Returns ErrCredentialsNotFound if unknown.
	Update(ctx context.Context, creds *credentialDomain.Credentials) error

	// Get retrieves credentials by normalized username. Returns ErrCredentialsNotFound if unknown.
	Get(ctx context.Context, username string) (*credentialDomain.Credentials, error)

	// Count returns the number of stored accounts.
	Count(ctx context.Context) (int, error)
}

// CredentialUseCase defines the operator account workflows.
type CredentialUseCase interface {
	// Initialize creates the first account. The password must satisfy the
	// password strength policy. Returns ErrCredentialsAlreadyExist if the
	// username is taken.
	Initialize(ctx context.Context, input credentialDomain.InitializeInput) error

	// IsInitialized reports whether at least one account exists.
	IsInitialized(ctx context.Context) (bool, error)

	// Authenticate checks username and password.
	//
	// Unknown usernames and wrong passwords both return ErrInvalidCredentials.
	// After too many consecutive failures the account is locked and
	// ErrCredentialsLocked is returned until the lock expires.
	Authenticate(ctx context.Context, username, password string) (*credentialDomain.Credentials, error)

	// ChangePassword replaces the password after verifying the current one.
	// A wrong current password counts as a failed authentication.
	ChangePassword(ctx context.Context, input credentialDomain.ChangePasswordInput) error
}
