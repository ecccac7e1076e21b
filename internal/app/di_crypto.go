package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/nodelock/internal/crypto/domain"
	cryptoService "github.com/allisson/nodelock/internal/crypto/service"
)

// credentialStoreKeyPurpose separates the credential store key from the license store key.
const credentialStoreKeyPurpose = "nodelock-credential-store-v1"

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoDomain.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyDeriver returns the key derivation service.
func (c *Container) KeyDeriver() cryptoService.KeyDeriver {
	c.keyDeriverInit.Do(func() {
		c.keyDeriver = cryptoService.NewKeyDeriver()
	})
	return c.keyDeriver
}

// LicenseSecrets returns the license secrets loaded from environment variables.
func (c *Container) LicenseSecrets() (*cryptoDomain.LicenseSecrets, error) {
	var err error
	c.licenseSecretsInit.Do(func() {
		c.licenseSecrets, err = c.initLicenseSecrets()
		if err != nil {
			c.initErrors["licenseSecrets"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["licenseSecrets"]; exists {
		return nil, storedErr
	}
	return c.licenseSecrets, nil
}

// StoreKey returns the key derived from the license encryption passphrase.
func (c *Container) StoreKey() ([]byte, error) {
	var err error
	c.storeKeyInit.Do(func() {
		c.storeKey, err = c.initStoreKey()
		if err != nil {
			c.initErrors["storeKey"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["storeKey"]; exists {
		return nil, storedErr
	}
	return c.storeKey, nil
}

// initLicenseSecrets loads and validates the license secrets, unwrapping them with KMS when configured.
func (c *Container) initLicenseSecrets() (*cryptoDomain.LicenseSecrets, error) {
	secrets, err := cryptoDomain.LoadLicenseSecrets(context.Background(), c.config, c.KMSService(), c.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to load license secrets: %w", err)
	}
	return secrets, nil
}

// initStoreKey stretches the license encryption passphrase with the configured salt.
func (c *Container) initStoreKey() ([]byte, error) {
	secrets, err := c.LicenseSecrets()
	if err != nil {
		return nil, err
	}

	key, err := c.KeyDeriver().DeriveStoreKey(secrets.EncryptionKey, secrets.KDFSalt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive store key: %w", err)
	}
	return key, nil
}

// licenseCipher creates the AEAD protecting the license file.
func (c *Container) licenseCipher() (cryptoService.AEAD, error) {
	alg, err := cryptoDomain.ParseAlgorithm(c.config.LicenseCipher)
	if err != nil {
		return nil, err
	}

	storeKey, err := c.StoreKey()
	if err != nil {
		return nil, err
	}

	return c.AEADManager().CreateCipher(storeKey, alg)
}

// credentialCipher creates the AEAD protecting credential records with an
// HKDF subkey of the store key.
func (c *Container) credentialCipher() (cryptoService.AEAD, error) {
	alg, err := cryptoDomain.ParseAlgorithm(c.config.LicenseCipher)
	if err != nil {
		return nil, err
	}

	storeKey, err := c.StoreKey()
	if err != nil {
		return nil, err
	}

	subkey, err := c.KeyDeriver().DeriveSubkey(storeKey, credentialStoreKeyPurpose)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(subkey)

	return c.AEADManager().CreateCipher(subkey, alg)
}
