package usecase

import (
	"context"
	"errors"
	"time"

	credentialDomain "github.com/allisson/nodelock/internal/credential/domain"
	"github.com/allisson/nodelock/internal/metrics"
)

const metricsDomain = "credential"

// credentialUseCaseWithMetrics decorates CredentialUseCase with metrics instrumentation.
type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics recording.
func NewCredentialUseCaseWithMetrics(useCase CredentialUseCase, m metrics.BusinessMetrics) CredentialUseCase {
	return &credentialUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *credentialUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, status string) {
	c.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	c.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// authStatus labels an authentication outcome.
func authStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, credentialDomain.ErrCredentialsLocked):
		return "locked"
	case errors.Is(err, credentialDomain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}

// Initialize records metrics for account creation.
func (c *credentialUseCaseWithMetrics) Initialize(ctx context.Context, input credentialDomain.InitializeInput) error {
	start := time.Now()
	err := c.next.Initialize(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}
	c.record(ctx, "credentials_initialize", start, status)

	return err
}

// IsInitialized is not instrumented.
func (c *credentialUseCaseWithMetrics) IsInitialized(ctx context.Context) (bool, error) {
	return c.next.IsInitialized(ctx)
}

// Authenticate records metrics labelled with the authentication outcome.
func (c *credentialUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	username, password string,
) (*credentialDomain.Credentials, error) {
	start := time.Now()
	creds, err := c.next.Authenticate(ctx, username, password)

	c.record(ctx, "credentials_authenticate", start, authStatus(err))

	return creds, err
}

// ChangePassword records metrics labelled with the authentication outcome.
func (c *credentialUseCaseWithMetrics) ChangePassword(
	ctx context.Context,
	input credentialDomain.ChangePasswordInput,
) error {
	start := time.Now()
	err := c.next.ChangePassword(ctx, input)

	c.record(ctx, "credentials_change_password", start, authStatus(err))

	return err
}
