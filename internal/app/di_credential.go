package app

import (
	"fmt"
	"time"

	credentialRepository "github.com/allisson/nodelock/internal/credential/repository"
	credentialService "github.com/allisson/nodelock/internal/credential/service"
	credentialUseCase "github.com/allisson/nodelock/internal/credential/usecase"
)

// credentialStoreLockTimeout bounds how long we wait for another process holding the store.
const credentialStoreLockTimeout = 2 * time.Second

// PasswordService returns the password hashing service.
func (c *Container) PasswordService() credentialService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = credentialService.NewPasswordService()
	})
	return c.passwordService
}

// CredentialRepository returns the credential store, opening it on first access.
// The store stays locked by this process until Shutdown.
func (c *Container) CredentialRepository() (credentialUseCase.CredentialRepository, error) {
	var err error
	c.credentialRepositoryInit.Do(func() {
		c.credentialRepository, err = c.initCredentialRepository()
		if err != nil {
			c.initErrors["credentialRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialRepository"]; exists {
		return nil, storedErr
	}
	return c.credentialRepository, nil
}

// CredentialUseCase returns the credential use case.
func (c *Container) CredentialUseCase() (credentialUseCase.CredentialUseCase, error) {
	var err error
	c.credentialUseCaseInit.Do(func() {
		c.credentialUseCase, err = c.initCredentialUseCase()
		if err != nil {
			c.initErrors["credentialUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.credentialUseCase, nil
}

// initCredentialRepository opens the bbolt credential store.
func (c *Container) initCredentialRepository() (*credentialRepository.BoltCredentialRepository, error) {
	cipher, err := c.credentialCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to create credential cipher: %w", err)
	}

	repo, err := credentialRepository.OpenBoltCredentialRepository(
		c.config.CredentialsPath(),
		cipher,
		credentialStoreLockTimeout,
	)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// initCredentialUseCase creates the credential use case with all its dependencies.
func (c *Container) initCredentialUseCase() (credentialUseCase.CredentialUseCase, error) {
	credentialRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for credential use case: %w", err)
	}

	lockout := credentialUseCase.LockoutPolicy{
		MaxAttempts: c.config.LockoutMaxAttempts,
		Duration:    c.config.LockoutDuration,
	}

	baseUseCase := credentialUseCase.NewCredentialUseCase(
		credentialRepo,
		c.PasswordService(),
		lockout,
		nil,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for credential use case: %w", err)
		}
		return credentialUseCase.NewCredentialUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
