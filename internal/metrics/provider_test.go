package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Run("Success_CreateProviderWithNamespace", func(t *testing.T) {
		provider, err := NewProvider("test_app")

		require.NoError(t, err)
		assert.NotNil(t, provider)
		assert.NotNil(t, provider.meterProvider)
		assert.NotNil(t, provider.exporter)
		assert.NotNil(t, provider.registry)
	})

	t.Run("Success_CreateProviderWithEmptyNamespace", func(t *testing.T) {
		provider, err := NewProvider("")

		require.NoError(t, err)
		assert.NotNil(t, provider)
	})
}

func TestProvider_MeterProvider(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	assert.NotNil(t, provider.MeterProvider())
}

func TestProvider_Gatherer(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	business, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	business.RecordOperation(ctx, "license", "license_verify", "denied")
	business.RecordOperation(ctx, "license", "license_verify", "denied")
	business.RecordOperation(ctx, "license", "license_verify", "allowed")
	expiresAt := time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)
	business.RecordLicenseExpiry(ctx, &expiresAt)

	families, err := provider.Gatherer().Gather()
	require.NoError(t, err)

	var denied, allowed, expiry float64
	var sawCounter, sawGauge bool
	for _, family := range families {
		name := family.GetName()
		for _, m := range family.GetMetric() {
			labels := map[string]string{}
			for _, label := range m.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}

			switch {
			case strings.Contains(name, "test_app_operations"):
				sawCounter = true
				if labels["operation"] != "license_verify" {
					continue
				}
				switch labels["status"] {
				case "denied":
					denied = m.GetCounter().GetValue()
				case "allowed":
					allowed = m.GetCounter().GetValue()
				}
			case strings.Contains(name, "test_app_license_expiry"):
				sawGauge = true
				expiry = m.GetGauge().GetValue()
			}
		}
	}

	require.True(t, sawCounter, "operation counter must be exported")
	require.True(t, sawGauge, "license expiry gauge must be exported")
	assert.Equal(t, float64(2), denied)
	assert.Equal(t, float64(1), allowed)
	assert.Equal(t, float64(expiresAt.Unix()), expiry)
}

func TestProvider_WriteTextfile(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "metrics.prom")
	require.NoError(t, provider.WriteTextfile(path))

	_, err = os.Stat(path)
	assert.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be renamed")
}

func TestProvider_Shutdown(t *testing.T) {
	t.Run("Success_ShutdownProvider", func(t *testing.T) {
		provider, err := NewProvider("test_app")
		require.NoError(t, err)

		err = provider.Shutdown(context.Background())
		assert.NoError(t, err)
	})

	t.Run("Success_ShutdownNilProvider", func(t *testing.T) {
		provider := &Provider{meterProvider: nil}

		err := provider.Shutdown(context.Background())
		assert.NoError(t, err)
	})
}
