package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
	licenseMocks "github.com/allisson/nodelock/internal/license/usecase/mocks"
)

const (
	testLicensePath  = "/var/lib/aadhar-app/license.dat"
	testRemoteOutput = "/tmp/customer-license.dat"
)

func newTestLicense(fingerprint hardwareDomain.Fingerprint, expiresAt *time.Time) *licenseDomain.License {
	return &licenseDomain.License{
		ID:          uuid.Must(uuid.NewV7()),
		Fingerprint: fingerprint,
		IssuedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		ExpiresAt:   expiresAt,
		Signature:   []byte("signature"),
	}
}

func TestRunIssueLicense(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	expiresAt := time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("local-machine-with-flag", func(t *testing.T) {
		identity := &licenseMocks.MockIdentity{}
		issuer := &licenseMocks.MockIssuerUseCase{}
		license := newTestLicense(localFingerprint, &expiresAt)

		identity.On("Fingerprint", ctx).Return(localFingerprint, nil)
		issuer.On("Install", ctx, mock.MatchedBy(func(input licenseDomain.IssueInput) bool {
			return input.Fingerprint == localFingerprint &&
				input.ExpiresAt != nil && input.ExpiresAt.Equal(expiresAt)
		})).Return(license, nil)

		var out bytes.Buffer
		err := RunIssueLicense(ctx, issuer, identity, logger, testLicensePath, "", "", "2030-06-15", "text",
			IOTuple{Reader: strings.NewReader(""), Writer: &out})
		require.NoError(t, err)
		require.Contains(t, out.String(), "License installed successfully!")
		require.Contains(t, out.String(), license.ID.String())
		require.Contains(t, out.String(), "2030-06-15T00:00:00Z")
		require.Contains(t, out.String(), testLicensePath)

		identity.AssertExpectations(t)
		issuer.AssertExpectations(t)
	})

	t.Run("remote-fingerprint-skips-hardware", func(t *testing.T) {
		identity := &licenseMocks.MockIdentity{}
		issuer := &licenseMocks.MockIssuerUseCase{}
		license := newTestLicense(remoteFingerprint, nil)

		issuer.On("Install", ctx, licenseDomain.IssueInput{Fingerprint: remoteFingerprint}).Return(license, nil)

		var out bytes.Buffer
		err := RunIssueLicense(ctx, issuer, identity, logger, testRemoteOutput, testRemoteOutput,
			strings.ToUpper(remoteFingerprint.String()), "never", "json",
			IOTuple{Reader: strings.NewReader(""), Writer: &out})
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, testRemoteOutput, result["path"])
		issued := result["license"].(map[string]any)
		require.Equal(t, remoteFingerprint.String(), issued["fingerprint"])
		require.Nil(t, issued["expires_at"])
		require.NotContains(t, issued, "signature")

		identity.AssertNotCalled(t, "Fingerprint", mock.Anything)
		issuer.AssertExpectations(t)
	})

	t.Run("prompts-for-expiration", func(t *testing.T) {
		identity := &licenseMocks.MockIdentity{}
		issuer := &licenseMocks.MockIssuerUseCase{}
		license := newTestLicense(localFingerprint, &expiresAt)

		identity.On("Fingerprint", ctx).Return(localFingerprint, nil)
		issuer.On("Install", ctx, mock.AnythingOfType("domain.IssueInput")).Return(license, nil)

		var out bytes.Buffer
		err := RunIssueLicense(ctx, issuer, identity, logger, testLicensePath, "", "", "", "text",
			IOTuple{Reader: strings.NewReader("2030-06-15\n"), Writer: &out})
		require.NoError(t, err)
		require.Contains(t, out.String(), "Enter expiration date")
		issuer.AssertExpectations(t)
	})

	t.Run("empty-prompt-answer", func(t *testing.T) {
		identity := &licenseMocks.MockIdentity{}
		issuer := &licenseMocks.MockIssuerUseCase{}
		identity.On("Fingerprint", ctx).Return(localFingerprint, nil)

		err := RunIssueLicense(ctx, issuer, identity, logger, testLicensePath, "", "", "", "text",
			IOTuple{Reader: strings.NewReader("\n"), Writer: &bytes.Buffer{}})
		require.Error(t, err)
		require.Contains(t, err.Error(), "expiration date is required")
		issuer.AssertNotCalled(t, "Install", mock.Anything, mock.Anything)
	})

	t.Run("invalid-fingerprint", func(t *testing.T) {
		err := RunIssueLicense(ctx, nil, nil, logger, testLicensePath, "", "abc", "never", "text",
			IOTuple{Reader: strings.NewReader(""), Writer: &bytes.Buffer{}})
		require.ErrorIs(t, err, hardwareDomain.ErrInvalidFingerprint)
	})

	t.Run("invalid-expiration", func(t *testing.T) {
		err := RunIssueLicense(ctx, nil, nil, logger, testRemoteOutput, testRemoteOutput, remoteFingerprint.String(), "soon", "text",
			IOTuple{Reader: strings.NewReader(""), Writer: &bytes.Buffer{}})
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid expiration")
	})

	t.Run("install-error", func(t *testing.T) {
		issuer := &licenseMocks.MockIssuerUseCase{}
		issuer.On("Install", ctx, mock.AnythingOfType("domain.IssueInput")).
			Return(nil, errors.New("disk full"))

		err := RunIssueLicense(ctx, issuer, nil, logger, testRemoteOutput, testRemoteOutput, remoteFingerprint.String(), "never", "text",
			IOTuple{Reader: strings.NewReader(""), Writer: &bytes.Buffer{}})
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to install license")
	})

	t.Run("remote-fingerprint-without-output", func(t *testing.T) {
		identity := &licenseMocks.MockIdentity{}
		issuer := &licenseMocks.MockIssuerUseCase{}
		identity.On("Fingerprint", ctx).Return(localFingerprint, nil)

		err := RunIssueLicense(ctx, issuer, identity, logger, testLicensePath, "",
			remoteFingerprint.String(), "never", "text",
			IOTuple{Reader: strings.NewReader(""), Writer: &bytes.Buffer{}})
		require.ErrorIs(t, err, ErrOutputRequired)
		issuer.AssertNotCalled(t, "Install", mock.Anything, mock.Anything)
	})

	t.Run("remote-fingerprint-without-output-hardware-unavailable", func(t *testing.T) {
		identity := &licenseMocks.MockIdentity{}
		issuer := &licenseMocks.MockIssuerUseCase{}
		identity.On("Fingerprint", ctx).Return(hardwareDomain.Fingerprint{}, hardwareDomain.ErrHardwareQuery)

		err := RunIssueLicense(ctx, issuer, identity, logger, testLicensePath, "",
			remoteFingerprint.String(), "never", "text",
			IOTuple{Reader: strings.NewReader(""), Writer: &bytes.Buffer{}})
		require.ErrorIs(t, err, ErrOutputRequired)
		issuer.AssertNotCalled(t, "Install", mock.Anything, mock.Anything)
	})

	t.Run("local-fingerprint-given-without-output", func(t *testing.T) {
		identity := &licenseMocks.MockIdentity{}
		issuer := &licenseMocks.MockIssuerUseCase{}
		license := newTestLicense(localFingerprint, nil)

		identity.On("Fingerprint", ctx).Return(localFingerprint, nil)
		issuer.On("Install", ctx, licenseDomain.IssueInput{Fingerprint: localFingerprint}).Return(license, nil)

		err := RunIssueLicense(ctx, issuer, identity, logger, testLicensePath, "",
			localFingerprint.String(), "never", "text",
			IOTuple{Reader: strings.NewReader(""), Writer: &bytes.Buffer{}})
		require.NoError(t, err)
		issuer.AssertExpectations(t)
	})
}
