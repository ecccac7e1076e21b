// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/nodelock/internal/config"
	credentialRepository "github.com/allisson/nodelock/internal/credential/repository"
	credentialService "github.com/allisson/nodelock/internal/credential/service"
	credentialUseCase "github.com/allisson/nodelock/internal/credential/usecase"
	cryptoDomain "github.com/allisson/nodelock/internal/crypto/domain"
	cryptoService "github.com/allisson/nodelock/internal/crypto/service"
	hardwareService "github.com/allisson/nodelock/internal/hardware/service"
	licenseService "github.com/allisson/nodelock/internal/license/service"
	licenseUseCase "github.com/allisson/nodelock/internal/license/usecase"
	"github.com/allisson/nodelock/internal/metrics"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Crypto
	kmsService     cryptoDomain.KMSService
	aeadManager    cryptoService.AEADManager
	keyDeriver     cryptoService.KeyDeriver
	licenseSecrets *cryptoDomain.LicenseSecrets
	storeKey       []byte

	// Hardware
	hardwareIdentity hardwareService.Identity

	// License
	licenseSigner     licenseService.Signer
	licenseRepository licenseUseCase.LicenseRepository
	verifierUseCase   licenseUseCase.VerifierUseCase
	issuerUseCase     licenseUseCase.IssuerUseCase

	// Credential
	passwordService      credentialService.PasswordService
	credentialRepository *credentialRepository.BoltCredentialRepository
	credentialUseCase    credentialUseCase.CredentialUseCase

	// Initialization flags and mutex for thread-safety
	mu                       sync.Mutex
	loggerInit               sync.Once
	metricsProviderInit      sync.Once
	businessMetricsInit      sync.Once
	kmsServiceInit           sync.Once
	aeadManagerInit          sync.Once
	keyDeriverInit           sync.Once
	licenseSecretsInit       sync.Once
	storeKeyInit             sync.Once
	hardwareIdentityInit     sync.Once
	licenseSignerInit        sync.Once
	licenseRepositoryInit    sync.Once
	verifierUseCaseInit      sync.Once
	issuerUseCaseInit        sync.Once
	passwordServiceInit      sync.Once
	credentialRepositoryInit sync.Once
	credentialUseCaseInit    sync.Once
	initErrors               map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MetricsProvider returns the metrics provider.
// Returns nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// A no-op implementation is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// The textfile must be written while the provider can still collect.
	if c.metricsProvider != nil {
		if c.config.MetricsTextfile != "" {
			if err := c.metricsProvider.WriteTextfile(c.config.MetricsTextfile); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics textfile: %w", err))
			}
		}
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
		c.metricsProvider = nil
	}

	// Release the credential store file lock
	if c.credentialRepository != nil {
		if err := c.credentialRepository.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("credential store close: %w", err))
		}
		c.credentialRepository = nil
	}

	if c.licenseSigner != nil {
		c.licenseSigner.Close()
	}
	cryptoDomain.Zero(c.storeKey)
	c.licenseSecrets.Close()

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
// Logs go to stderr so command output on stdout stays machine readable.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initMetricsProvider creates the OpenTelemetry meter provider when metrics are enabled.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	if !c.config.MetricsEnabled {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}
