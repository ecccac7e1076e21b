package commands

import (
	"context"
	"fmt"
	"log/slog"

	credentialUseCase "github.com/allisson/nodelock/internal/credential/usecase"
	licenseUseCase "github.com/allisson/nodelock/internal/license/usecase"
)

// CredentialUseCaseFactory opens the credential store on demand.
type CredentialUseCaseFactory func() (credentialUseCase.CredentialUseCase, error)

// RunStart is the application startup gate. The license is verified first and
// a denied license ends the process without prompting. The credential store is
// opened only after the license passes, then the operator logs in.
func RunStart(
	ctx context.Context,
	verifier licenseUseCase.VerifierUseCase,
	credentials CredentialUseCaseFactory,
	logger *slog.Logger,
	policy LoginPolicy,
	io IOTuple,
) error {
	if !verifier.Verify(ctx) {
		_, _ = fmt.Fprintln(io.Writer, "License verification failed. Please contact support.")
		return ErrLicenseDenied
	}

	useCase, err := credentials()
	if err != nil {
		return err
	}

	creds, err := RunLogin(ctx, useCase, logger, policy, io)
	if err != nil {
		return err
	}

	logger.Info("operator session started", slog.String("username", creds.Username))
	return nil
}
