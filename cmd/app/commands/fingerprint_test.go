package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
	licenseMocks "github.com/allisson/nodelock/internal/license/usecase/mocks"
)

var (
	localFingerprint  = hardwareDomain.NewFingerprint("4c4c4544-0042-3510-8052-b4c04f4a4e32")
	remoteFingerprint = hardwareDomain.NewFingerprint("9a1e1f7c-5d3b-4a8e-9c2f-0e7d6b5a4c3b")
)

func TestRunFingerprint(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("success-text", func(t *testing.T) {
		identity := &licenseMocks.MockIdentity{}
		identity.On("Fingerprint", ctx).Return(localFingerprint, nil)

		var out bytes.Buffer
		err := RunFingerprint(ctx, identity, logger, &out, "text")
		require.NoError(t, err)
		require.Equal(t, localFingerprint.String()+"\n", out.String())
		identity.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		identity := &licenseMocks.MockIdentity{}
		identity.On("Fingerprint", ctx).Return(localFingerprint, nil)

		var out bytes.Buffer
		err := RunFingerprint(ctx, identity, logger, &out, "json")
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, localFingerprint.String(), result["fingerprint"])
	})

	t.Run("hardware-error", func(t *testing.T) {
		identity := &licenseMocks.MockIdentity{}
		identity.On("Fingerprint", ctx).
			Return(hardwareDomain.Fingerprint{}, fmt.Errorf("%w: dmidecode not found", hardwareDomain.ErrHardwareQuery))

		err := RunFingerprint(ctx, identity, logger, &bytes.Buffer{}, "text")
		require.ErrorIs(t, err, hardwareDomain.ErrHardwareQuery)
	})

	t.Run("invalid-format", func(t *testing.T) {
		err := RunFingerprint(ctx, nil, logger, &bytes.Buffer{}, "xml")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid format")
	})
}
