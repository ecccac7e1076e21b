package app

import (
	"fmt"

	hardwareService "github.com/allisson/nodelock/internal/hardware/service"
	licenseRepository "github.com/allisson/nodelock/internal/license/repository"
	licenseService "github.com/allisson/nodelock/internal/license/service"
	licenseUseCase "github.com/allisson/nodelock/internal/license/usecase"
)

// HardwareIdentity returns the local machine identity.
func (c *Container) HardwareIdentity() (hardwareService.Identity, error) {
	var err error
	c.hardwareIdentityInit.Do(func() {
		c.hardwareIdentity, err = c.initHardwareIdentity()
		if err != nil {
			c.initErrors["hardwareIdentity"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["hardwareIdentity"]; exists {
		return nil, storedErr
	}
	return c.hardwareIdentity, nil
}

// LicenseSigner returns the license signer.
func (c *Container) LicenseSigner() (licenseService.Signer, error) {
	var err error
	c.licenseSignerInit.Do(func() {
		c.licenseSigner, err = c.initLicenseSigner()
		if err != nil {
			c.initErrors["licenseSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["licenseSigner"]; exists {
		return nil, storedErr
	}
	return c.licenseSigner, nil
}

// LicenseRepository returns the license file repository.
func (c *Container) LicenseRepository() (licenseUseCase.LicenseRepository, error) {
	var err error
	c.licenseRepositoryInit.Do(func() {
		c.licenseRepository, err = c.initLicenseRepository()
		if err != nil {
			c.initErrors["licenseRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["licenseRepository"]; exists {
		return nil, storedErr
	}
	return c.licenseRepository, nil
}

// VerifierUseCase returns the license verifier use case.
func (c *Container) VerifierUseCase() (licenseUseCase.VerifierUseCase, error) {
	var err error
	c.verifierUseCaseInit.Do(func() {
		c.verifierUseCase, err = c.initVerifierUseCase()
		if err != nil {
			c.initErrors["verifierUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["verifierUseCase"]; exists {
		return nil, storedErr
	}
	return c.verifierUseCase, nil
}

// IssuerUseCase returns the license issuer use case.
func (c *Container) IssuerUseCase() (licenseUseCase.IssuerUseCase, error) {
	var err error
	c.issuerUseCaseInit.Do(func() {
		c.issuerUseCase, err = c.initIssuerUseCase()
		if err != nil {
			c.initErrors["issuerUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["issuerUseCase"]; exists {
		return nil, storedErr
	}
	return c.issuerUseCase, nil
}

// initHardwareIdentity selects the platform identifier source from configuration.
func (c *Container) initHardwareIdentity() (hardwareService.Identity, error) {
	source, err := hardwareService.NewSource(c.config.HardwareSource, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create hardware source: %w", err)
	}
	return hardwareService.NewIdentity(source, c.config.HardwareQueryTimeout, c.Logger()), nil
}

// initLicenseSigner derives the signing key from the license signing secret.
func (c *Container) initLicenseSigner() (licenseService.Signer, error) {
	secrets, err := c.LicenseSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to get license secrets for license signer: %w", err)
	}

	signer, err := licenseService.NewLicenseSigner(c.KeyDeriver(), secrets.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create license signer: %w", err)
	}
	return signer, nil
}

// initLicenseRepository creates the encrypted license file repository.
func (c *Container) initLicenseRepository() (licenseUseCase.LicenseRepository, error) {
	cipher, err := c.licenseCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to create license cipher: %w", err)
	}
	return licenseRepository.NewFileLicenseRepository(c.config.LicensePath(), cipher, c.Logger()), nil
}

// initVerifierUseCase creates the verifier use case with all its dependencies.
func (c *Container) initVerifierUseCase() (licenseUseCase.VerifierUseCase, error) {
	licenseRepo, err := c.LicenseRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get license repository for verifier use case: %w", err)
	}

	signer, err := c.LicenseSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get license signer for verifier use case: %w", err)
	}

	identity, err := c.HardwareIdentity()
	if err != nil {
		return nil, fmt.Errorf("failed to get hardware identity for verifier use case: %w", err)
	}

	baseUseCase := licenseUseCase.NewVerifierUseCase(licenseRepo, signer, identity, nil, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for verifier use case: %w", err)
		}
		return licenseUseCase.NewVerifierUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initIssuerUseCase creates the issuer use case with all its dependencies.
func (c *Container) initIssuerUseCase() (licenseUseCase.IssuerUseCase, error) {
	licenseRepo, err := c.LicenseRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get license repository for issuer use case: %w", err)
	}

	signer, err := c.LicenseSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get license signer for issuer use case: %w", err)
	}

	identity, err := c.HardwareIdentity()
	if err != nil {
		return nil, fmt.Errorf("failed to get hardware identity for issuer use case: %w", err)
	}

	verifier, err := c.VerifierUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get verifier use case for issuer use case: %w", err)
	}

	baseUseCase := licenseUseCase.NewIssuerUseCase(licenseRepo, signer, identity, verifier, nil, c.Logger())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for issuer use case: %w", err)
		}
		return licenseUseCase.NewIssuerUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
