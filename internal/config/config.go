// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// appDirName is the per-user directory that holds the license and credential files.
const appDirName = "aadhar-app"

// Config holds all application configuration.
type Config struct {
	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// DataDir is the per-user application data directory.
	DataDir string
	// LicenseFileName is the name of the encrypted license file inside DataDir.
	LicenseFileName string

	// LicenseSigningKey authenticates license records. Required, no default.
	LicenseSigningKey string
	// LicenseEncryptionKey is the passphrase the license store key is derived from. Required, no default.
	LicenseEncryptionKey string
	// LicenseKDFSalt is the fixed salt for the license store key derivation.
	LicenseKDFSalt string
	// LicenseCipher is the AEAD algorithm protecting the license file ("aes-gcm" or "chacha20-poly1305").
	LicenseCipher string

	// KMSProvider is the KMS provider (e.g., "localsecrets", "gcpkms", "awskms", "hashivault").
	KMSProvider string
	// KMSKeyURI is the KMS key URI. When set, license secrets are base64 KMS ciphertexts.
	KMSKeyURI string

	// HardwareSource selects the platform identifier strategy ("auto", "linux", "darwin", "windows").
	HardwareSource string
	// HardwareQueryTimeout bounds platform identifier commands.
	HardwareQueryTimeout time.Duration

	// CredentialsFileName is the name of the credential store inside DataDir.
	CredentialsFileName string
	// LockoutMaxAttempts is the number of failed logins before the account is locked.
	LockoutMaxAttempts int
	// LockoutDuration is how long an account stays locked.
	LockoutDuration time.Duration
	// LoginMaxAttempts is the number of prompts offered by an interactive login.
	LoginMaxAttempts int
	// LoginAttemptInterval paces interactive login attempts.
	LoginAttemptInterval time.Duration

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsTextfile is where metrics are written in Prometheus text format on exit.
	MetricsTextfile string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	loadDotEnv()

	dataDir := env.GetString("APP_DATA_DIR", defaultDataDir())

	return &Config{
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		DataDir:         dataDir,
		LicenseFileName: env.GetString("LICENSE_FILE_NAME", "license.dat"),

		// Secrets have no fallback: an empty value is reported when the secrets are loaded.
		LicenseSigningKey:    env.GetString("LICENSE_SIGNING_KEY", ""),
		LicenseEncryptionKey: env.GetString("LICENSE_ENCRYPTION_KEY", ""),
		LicenseKDFSalt:       env.GetString("LICENSE_KDF_SALT", "nodelock-license-store-v1"),
		LicenseCipher:        env.GetString("LICENSE_CIPHER", "aes-gcm"),

		KMSProvider: env.GetString("KMS_PROVIDER", ""),
		KMSKeyURI:   env.GetString("KMS_KEY_URI", ""),

		HardwareSource:       env.GetString("HARDWARE_SOURCE", "auto"),
		HardwareQueryTimeout: env.GetDuration("HARDWARE_QUERY_TIMEOUT_SECONDS", 10, time.Second),

		CredentialsFileName:  env.GetString("CREDENTIALS_FILE_NAME", "credentials.db"),
		LockoutMaxAttempts:   env.GetInt("LOCKOUT_MAX_ATTEMPTS", 5),
		LockoutDuration:      env.GetDuration("LOCKOUT_DURATION_MINUTES", 15, time.Minute),
		LoginMaxAttempts:     env.GetInt("LOGIN_MAX_ATTEMPTS", 3),
		LoginAttemptInterval: env.GetDuration("LOGIN_ATTEMPT_INTERVAL_SECONDS", 1, time.Second),

		MetricsEnabled:   env.GetBool("METRICS_ENABLED", false),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "nodelock"),
		MetricsTextfile:  env.GetString("METRICS_TEXTFILE", filepath.Join(dataDir, "metrics.prom")),
	}
}

// LicensePath returns the absolute path of the license file.
func (c *Config) LicensePath() string {
	return filepath.Join(c.DataDir, c.LicenseFileName)
}

// CredentialsPath returns the absolute path of the credential store.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.DataDir, c.CredentialsFileName)
}

// defaultDataDir resolves the per-user application data directory,
// falling back to ~/.aadhar-app when the platform config dir is unknown.
func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, appDirName)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "."+appDirName)
	}
	return filepath.Join(os.TempDir(), appDirName)
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
