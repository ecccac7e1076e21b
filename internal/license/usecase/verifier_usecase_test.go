package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
	"github.com/allisson/nodelock/internal/license/usecase/mocks"
)

func TestVerifierUseCase_IssuedLicenseVerifies(t *testing.T) {
	for name, expiresAt := range map[string]*time.Time{
		"expiring":     timePtr(time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)),
		"non-expiring": nil,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.onLocalMachine()

			issued, err := f.issuer.Install(context.Background(), licenseDomain.IssueInput{
				Fingerprint: localFingerprint,
				ExpiresAt:   expiresAt,
			})
			require.NoError(t, err)

			license, err := f.verifier.Check(context.Background())
			require.NoError(t, err)
			assert.Equal(t, issued, license)
			assert.True(t, f.verifier.Verify(context.Background()))
		})
	}
}

func TestVerifierUseCase_TamperedFieldsDeny(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(l *licenseDomain.License)
	}{
		{name: "fingerprint", tamper: func(l *licenseDomain.License) { l.Fingerprint = remoteFingerprint }},
		{name: "issued at", tamper: func(l *licenseDomain.License) { l.IssuedAt = l.IssuedAt.Add(time.Hour) }},
		{name: "expires at", tamper: func(l *licenseDomain.License) { l.ExpiresAt = timePtr(l.ExpiresAt.AddDate(10, 0, 0)) }},
		{name: "expiry dropped", tamper: func(l *licenseDomain.License) { l.ExpiresAt = nil }},
		{name: "id", tamper: func(l *licenseDomain.License) { l.ID = uuid.Must(uuid.NewV7()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			license, err := f.issuer.Issue(context.Background(), licenseDomain.IssueInput{
				Fingerprint: localFingerprint,
				ExpiresAt:   timePtr(f.now.Add(30 * 24 * time.Hour)),
			})
			require.NoError(t, err)

			tt.tamper(license)
			require.NoError(t, f.repo.Save(context.Background(), license))

			_, err = f.verifier.Check(context.Background())
			assert.ErrorIs(t, err, licenseDomain.ErrSignatureInvalid)
			assert.False(t, f.verifier.Verify(context.Background()))
		})
	}
}

func TestVerifierUseCase_SignatureCheckedBeforeHardware(t *testing.T) {
	f := newFixture(t)

	license, err := f.issuer.Issue(context.Background(), licenseDomain.IssueInput{Fingerprint: localFingerprint})
	require.NoError(t, err)
	license.Signature[0] ^= 0xff
	require.NoError(t, f.repo.Save(context.Background(), license))

	_, err = f.verifier.Check(context.Background())
	assert.ErrorIs(t, err, licenseDomain.ErrSignatureInvalid)
	f.identity.AssertNotCalled(t, "Fingerprint", mock.Anything)
}

func TestVerifierUseCase_ExpiryBoundaries(t *testing.T) {
	expiresAt := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{name: "one second in the past", now: expiresAt.Add(time.Second), wantErr: licenseDomain.ErrLicenseExpired},
		{name: "exactly at expiry", now: expiresAt, wantErr: nil},
		{name: "one second in the future", now: expiresAt.Add(-time.Second), wantErr: nil},
		{name: "long expired", now: expiresAt.AddDate(1, 0, 0), wantErr: licenseDomain.ErrLicenseExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.onLocalMachine()

			_, err := f.issuer.Install(context.Background(), licenseDomain.IssueInput{
				Fingerprint: localFingerprint,
				ExpiresAt:   &expiresAt,
			})
			require.NoError(t, err)

			f.now = tt.now
			_, err = f.verifier.Check(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, f.verifier.Verify(context.Background()))
			} else {
				assert.NoError(t, err)
				assert.True(t, f.verifier.Verify(context.Background()))
			}
		})
	}
}

func TestVerifierUseCase_NonExpiringNeverExpires(t *testing.T) {
	f := newFixture(t)
	f.onLocalMachine()

	_, err := f.issuer.Install(context.Background(), licenseDomain.IssueInput{Fingerprint: localFingerprint})
	require.NoError(t, err)

	f.now = f.now.AddDate(100, 0, 0)
	assert.True(t, f.verifier.Verify(context.Background()))
}

func TestVerifierUseCase_OtherMachineDenied(t *testing.T) {
	f := newFixture(t)
	f.onLocalMachine()

	license, err := f.issuer.Install(context.Background(), licenseDomain.IssueInput{Fingerprint: remoteFingerprint})
	require.NoError(t, err)
	require.NoError(t, f.signer.Verify(license), "signature is valid")

	_, err = f.verifier.Check(context.Background())
	assert.ErrorIs(t, err, licenseDomain.ErrFingerprintMismatch)
	assert.False(t, f.verifier.Verify(context.Background()))
}

func TestVerifierUseCase_MissingLicense(t *testing.T) {
	f := newFixture(t)

	license, err := f.verifier.Check(context.Background())
	assert.Nil(t, license)
	assert.ErrorIs(t, err, licenseDomain.ErrLicenseNotFound)
	assert.False(t, f.verifier.Verify(context.Background()))
	f.identity.AssertNotCalled(t, "Fingerprint", mock.Anything)
}

func TestVerifierUseCase_CorruptedLicense(t *testing.T) {
	f := newFixture(t)
	f.onLocalMachine()

	_, err := f.issuer.Install(context.Background(), licenseDomain.IssueInput{Fingerprint: localFingerprint})
	require.NoError(t, err)

	content, err := os.ReadFile(f.repo.Path())
	require.NoError(t, err)
	content[len(content)-1] ^= 0x01
	require.NoError(t, os.WriteFile(f.repo.Path(), content, 0o600))

	_, err = f.verifier.Check(context.Background())
	assert.ErrorIs(t, err, licenseDomain.ErrLicenseUnreadable)
	assert.False(t, f.verifier.Verify(context.Background()))
}

func TestVerifierUseCase_HardwareQueryFailure(t *testing.T) {
	f := newFixture(t)

	license, err := f.issuer.Issue(context.Background(), licenseDomain.IssueInput{Fingerprint: localFingerprint})
	require.NoError(t, err)
	require.NoError(t, f.repo.Save(context.Background(), license))

	f.identity.On("Fingerprint", mock.Anything).
		Return(hardwareDomain.Fingerprint{}, fmt.Errorf("%w: dmidecode: exit status 1", hardwareDomain.ErrHardwareQuery))

	_, err = f.verifier.Check(context.Background())
	assert.ErrorIs(t, err, hardwareDomain.ErrHardwareQuery)
	assert.False(t, f.verifier.Verify(context.Background()))
}

func TestVerifierUseCase_RepositoryError(t *testing.T) {
	repo := &mocks.MockLicenseRepository{}
	repo.On("Load", mock.Anything).Return(nil, errors.New("disk on fire"))

	verifier := NewVerifierUseCase(repo, newFixture(t).signer, &mocks.MockIdentity{}, nil, newTestLogger())
	assert.False(t, verifier.Verify(context.Background()))
	repo.AssertExpectations(t)
}

type panickingRepository struct {
	LicenseRepository
}

func (panickingRepository) Load(ctx context.Context) (*licenseDomain.License, error) {
	panic("unexpected nil map")
}

func TestVerifierUseCase_VerifyRecoversPanic(t *testing.T) {
	verifier := NewVerifierUseCase(panickingRepository{}, newFixture(t).signer, &mocks.MockIdentity{}, nil, newTestLogger())

	assert.NotPanics(t, func() {
		assert.False(t, verifier.Verify(context.Background()))
	})
}

func TestVerifierUseCase_Evaluate(t *testing.T) {
	ctx := context.Background()
	hardwareErr := fmt.Errorf("%w: ioreg: not found", hardwareDomain.ErrHardwareQuery)

	t.Run("Valid", func(t *testing.T) {
		f := newFixture(t)
		license, err := f.issuer.Issue(ctx, licenseDomain.IssueInput{Fingerprint: localFingerprint})
		require.NoError(t, err)

		assert.NoError(t, f.verifier.Evaluate(ctx, license, localFingerprint, nil))
		f.identity.AssertNotCalled(t, "Fingerprint", mock.Anything)
	})

	t.Run("NoLicense", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.verifier.Evaluate(ctx, nil, localFingerprint, nil), licenseDomain.ErrLicenseNotFound)
	})

	t.Run("SignatureCheckedBeforeHardware", func(t *testing.T) {
		f := newFixture(t)
		license, err := f.issuer.Issue(ctx, licenseDomain.IssueInput{Fingerprint: localFingerprint})
		require.NoError(t, err)
		license.IssuedAt = license.IssuedAt.Add(time.Hour)

		err = f.verifier.Evaluate(ctx, license, hardwareDomain.Fingerprint{}, hardwareErr)
		assert.ErrorIs(t, err, licenseDomain.ErrSignatureInvalid)
	})

	t.Run("HardwareError", func(t *testing.T) {
		f := newFixture(t)
		license, err := f.issuer.Issue(ctx, licenseDomain.IssueInput{Fingerprint: localFingerprint})
		require.NoError(t, err)

		err = f.verifier.Evaluate(ctx, license, hardwareDomain.Fingerprint{}, hardwareErr)
		assert.ErrorIs(t, err, hardwareDomain.ErrHardwareQuery)
	})

	t.Run("OtherMachine", func(t *testing.T) {
		f := newFixture(t)
		license, err := f.issuer.Issue(ctx, licenseDomain.IssueInput{Fingerprint: remoteFingerprint})
		require.NoError(t, err)

		assert.ErrorIs(t, f.verifier.Evaluate(ctx, license, localFingerprint, nil), licenseDomain.ErrFingerprintMismatch)
	})

	t.Run("Expired", func(t *testing.T) {
		f := newFixture(t)
		license, err := f.issuer.Issue(ctx, licenseDomain.IssueInput{
			Fingerprint: localFingerprint,
			ExpiresAt:   timePtr(f.now.Add(time.Hour)),
		})
		require.NoError(t, err)

		f.now = f.now.Add(time.Hour + time.Second)
		assert.ErrorIs(t, f.verifier.Evaluate(ctx, license, localFingerprint, nil), licenseDomain.ErrLicenseExpired)
	})
}
