package usecase

import (
	"crypto/rand"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/nodelock/internal/crypto/domain"
	cryptoService "github.com/allisson/nodelock/internal/crypto/service"
	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
	licenseRepository "github.com/allisson/nodelock/internal/license/repository"
	licenseService "github.com/allisson/nodelock/internal/license/service"
	"github.com/allisson/nodelock/internal/license/usecase/mocks"
)

var (
	localFingerprint  = hardwareDomain.NewFingerprint("4c4c4544-0042-3510-8052-b4c04f4a4e32")
	remoteFingerprint = hardwareDomain.NewFingerprint("9a1e1f7c-5d3b-4a8e-9c2f-0e7d6b5a4c3b")
)

// fixture wires real signer and file store with a mocked hardware identity and a settable clock.
type fixture struct {
	repo     *licenseRepository.FileLicenseRepository
	signer   licenseService.Signer
	identity *mocks.MockIdentity
	now      time.Time
	verifier VerifierUseCase
	issuer   IssuerUseCase
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cipher, err := cryptoService.NewAEADManager().CreateCipher(randomBytes(t, cryptoDomain.KeySize), cryptoDomain.AESGCM)
	require.NoError(t, err)

	signer, err := licenseService.NewLicenseSigner(cryptoService.NewKeyDeriver(), randomBytes(t, 32))
	require.NoError(t, err)

	f := &fixture{
		repo:     licenseRepository.NewFileLicenseRepository(filepath.Join(t.TempDir(), "license.dat"), cipher, newTestLogger()),
		signer:   signer,
		identity: &mocks.MockIdentity{},
		now:      time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.verifier = NewVerifierUseCase(f.repo, f.signer, f.identity, clock, newTestLogger())
	f.issuer = NewIssuerUseCase(f.repo, f.signer, f.identity, f.verifier, clock, newTestLogger())
	return f
}

func (f *fixture) onLocalMachine() {
	f.identity.On("Fingerprint", mock.Anything).Return(localFingerprint, nil)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
