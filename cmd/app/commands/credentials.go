package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	credentialDomain "github.com/allisson/nodelock/internal/credential/domain"
	credentialUseCase "github.com/allisson/nodelock/internal/credential/usecase"
)

var (
	// ErrNotInitialized indicates no operator account exists yet.
	ErrNotInitialized = errors.New("no operator account exists, run init-credentials first")

	// ErrTooManyAttempts indicates an interactive login used up its attempts.
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	// ErrPasswordMismatch indicates the password confirmation did not match.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// LoginPolicy controls interactive login prompting.
type LoginPolicy struct {
	// MaxAttempts is the number of prompts before giving up.
	MaxAttempts int
	// Interval is the minimum delay between attempts. Zero disables pacing.
	Interval time.Duration
}

// RunInitCredentials creates the operator account, prompting for the password twice.
func RunInitCredentials(
	ctx context.Context,
	useCase credentialUseCase.CredentialUseCase,
	logger *slog.Logger,
	username string,
	io IOTuple,
) error {
	reader := bufio.NewReader(io.Reader)

	password, err := promptNewPassword(reader, io, "Password: ")
	if err != nil {
		return err
	}

	if err := useCase.Initialize(ctx, credentialDomain.InitializeInput{
		Username: username,
		Password: password,
	}); err != nil {
		return fmt.Errorf("failed to create operator account: %w", err)
	}

	_, _ = fmt.Fprintf(io.Writer, "\nOperator account %q created successfully!\n", username)
	logger.Info("operator account created", slog.String("username", username))
	return nil
}

// RunChangePassword replaces the operator password after checking the current one.
func RunChangePassword(
	ctx context.Context,
	useCase credentialUseCase.CredentialUseCase,
	logger *slog.Logger,
	username string,
	io IOTuple,
) error {
	reader := bufio.NewReader(io.Reader)

	current, err := promptSecret(reader, io, "Current password: ")
	if err != nil {
		return err
	}

	password, err := promptNewPassword(reader, io, "New password: ")
	if err != nil {
		return err
	}

	if err := useCase.ChangePassword(ctx, credentialDomain.ChangePasswordInput{
		Username:        username,
		CurrentPassword: current,
		NewPassword:     password,
	}); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	_, _ = fmt.Fprintln(io.Writer, "\nPassword changed successfully!")
	logger.Info("operator password changed", slog.String("username", username))
	return nil
}

// RunLogin prompts for username and password until authentication succeeds,
// the account is locked or the attempts of policy are used up.
// Attempts are paced by a rate limiter.
func RunLogin(
	ctx context.Context,
	useCase credentialUseCase.CredentialUseCase,
	logger *slog.Logger,
	policy LoginPolicy,
	io IOTuple,
) (*credentialDomain.Credentials, error) {
	initialized, err := useCase.IsInitialized(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	if !initialized {
		return nil, ErrNotInitialized
	}

	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	limit := rate.Inf
	if policy.Interval > 0 {
		limit = rate.Every(policy.Interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	reader := bufio.NewReader(io.Reader)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		username, err := prompt(reader, io.Writer, "Username: ")
		if err != nil {
			return nil, err
		}
		password, err := promptSecret(reader, io, "Password: ")
		if err != nil {
			return nil, err
		}

		creds, err := useCase.Authenticate(ctx, username, password)
		switch {
		case err == nil:
			_, _ = fmt.Fprintf(io.Writer, "\nWelcome, %s!\n", creds.Username)
			return creds, nil
		case errors.Is(err, credentialDomain.ErrCredentialsLocked):
			_, _ = fmt.Fprintln(io.Writer, "Account temporarily locked. Try again later.")
			return nil, err
		case errors.Is(err, credentialDomain.ErrInvalidCredentials):
			_, _ = fmt.Fprintln(io.Writer, "Invalid username or password.")
			logger.Warn("login failed", slog.Int("attempt", attempt), slog.Int("max_attempts", maxAttempts))
		default:
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	return nil, ErrTooManyAttempts
}

// promptNewPassword asks for a password and its confirmation.
func promptNewPassword(reader *bufio.Reader, io IOTuple, label string) (string, error) {
	password, err := promptSecret(reader, io, label)
	if err != nil {
		return "", err
	}

	confirmation, err := promptSecret(reader, io, "Confirm password: ")
	if err != nil {
		return "", err
	}

	if password != confirmation {
		return "", ErrPasswordMismatch
	}
	return password, nil
}
