package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	validation "github.com/jellydator/validation"

	credentialDomain "github.com/allisson/nodelock/internal/credential/domain"
	credentialService "github.com/allisson/nodelock/internal/credential/service"
	customValidation "github.com/allisson/nodelock/internal/validation"
)

// LockoutPolicy configures account lockout. A MaxAttempts of zero disables lockout.
type LockoutPolicy struct {
	MaxAttempts int
	Duration    time.Duration
}

// credentialUseCase implements CredentialUseCase.
type credentialUseCase struct {
	credentialRepo  CredentialRepository
	passwordService credentialService.PasswordService
	lockout         LockoutPolicy
	now             func() time.Time
	logger          *slog.Logger
}

// NewCredentialUseCase creates a CredentialUseCase. A nil clock defaults to time.Now.
func NewCredentialUseCase(
	credentialRepo CredentialRepository,
	passwordService credentialService.PasswordService,
	lockout LockoutPolicy,
	now func() time.Time,
	logger *slog.Logger,
) CredentialUseCase {
	if now == nil {
		now = time.Now
	}
	return &credentialUseCase{
		credentialRepo:  credentialRepo,
		passwordService: passwordService,
		lockout:         lockout,
		now:             now,
		logger:          logger,
	}
}

// Initialize validates input, hashes the password and stores the account.
func (c *credentialUseCase) Initialize(ctx context.Context, input credentialDomain.InitializeInput) error {
	input.Username = credentialDomain.NormalizeUsername(input.Username)

	err := validation.ValidateStruct(&input,
		validation.Field(&input.Username, validation.Required, customValidation.Username),
		validation.Field(&input.Password,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			customValidation.DefaultPasswordStrength,
		),
	)
	if err != nil {
		return customValidation.WrapValidationError(err)
	}

	hash, err := c.passwordService.HashPassword(input.Password)
	if err != nil {
		return err
	}

	now := c.now().UTC()
	creds := &credentialDomain.Credentials{
		Username:     input.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := c.credentialRepo.Create(ctx, creds); err != nil {
		return err
	}

	c.logger.Info("credentials initialized", slog.String("username", creds.Username))
	return nil
}

// IsInitialized reports whether the credential store holds any account.
func (c *credentialUseCase) IsInitialized(ctx context.Context) (bool, error) {
	n, err := c.credentialRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Authenticate verifies a username and password against the stored hash.
func (c *credentialUseCase) Authenticate(
	ctx context.Context,
	username, password string,
) (*credentialDomain.Credentials, error) {
	creds, err := c.credentialRepo.Get(ctx, credentialDomain.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, credentialDomain.ErrCredentialsNotFound) {
			return nil, credentialDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := c.checkPassword(ctx, creds, password); err != nil {
		return nil, err
	}

	if creds.FailedAttempts > 0 || creds.LockedUntil != nil {
		creds.ResetFailures(c.now().UTC())
		if err := c.credentialRepo.Update(ctx, creds); err != nil {
			return nil, err
		}
	}

	c.logger.Info("operator authenticated", slog.String("username", creds.Username))
	return creds, nil
}

// ChangePassword verifies the current password and stores a hash of the new one.
func (c *credentialUseCase) ChangePassword(ctx context.Context, input credentialDomain.ChangePasswordInput) error {
	input.Username = credentialDomain.NormalizeUsername(input.Username)

	err := validation.ValidateStruct(&input,
		validation.Field(&input.Username, validation.Required, customValidation.NotBlank),
		validation.Field(&input.CurrentPassword, validation.Required),
		validation.Field(&input.NewPassword,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			customValidation.DefaultPasswordStrength,
			validation.NotIn(input.CurrentPassword).Error("must differ from the current password"),
		),
	)
	if err != nil {
		return customValidation.WrapValidationError(err)
	}

	creds, err := c.credentialRepo.Get(ctx, input.Username)
	if err != nil {
		if errors.Is(err, credentialDomain.ErrCredentialsNotFound) {
			return credentialDomain.ErrInvalidCredentials
		}
		return err
	}

	if err := c.checkPassword(ctx, creds, input.CurrentPassword); err != nil {
		return err
	}

	hash, err := c.passwordService.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	creds.PasswordHash = hash
	creds.ResetFailures(c.now().UTC())
	if err := c.credentialRepo.Update(ctx, creds); err != nil {
		return err
	}

	c.logger.Info("password changed", slog.String("username", creds.Username))
	return nil
}

// checkPassword enforces the lockout and verifies password, recording failures.
func (c *credentialUseCase) checkPassword(
	ctx context.Context,
	creds *credentialDomain.Credentials,
	password string,
) error {
	now := c.now().UTC()
	if creds.IsLocked(now) {
		c.logger.Warn("authentication refused for locked account",
			slog.String("username", creds.Username),
			slog.Time("locked_until", *creds.LockedUntil),
		)
		return credentialDomain.ErrCredentialsLocked
	}

	if c.passwordService.VerifyPassword(password, creds.PasswordHash) {
		return nil
	}

	locked := creds.RegisterFailure(now, c.lockout.MaxAttempts, c.lockout.Duration)
	if err := c.credentialRepo.Update(ctx, creds); err != nil {
		return err
	}

	if locked {
		c.logger.Warn("account locked after repeated failures",
			slog.String("username", creds.Username),
			slog.Duration("lockout", c.lockout.Duration),
		)
		return credentialDomain.ErrCredentialsLocked
	}

	c.logger.Warn("authentication failed",
		slog.String("username", creds.Username),
		slog.Int("failed_attempts", creds.FailedAttempts),
	)
	return credentialDomain.ErrInvalidCredentials
}
