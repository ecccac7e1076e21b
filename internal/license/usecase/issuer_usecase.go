package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
	hardwareService "github.com/allisson/nodelock/internal/hardware/service"
	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
	licenseService "github.com/allisson/nodelock/internal/license/service"
	customValidation "github.com/allisson/nodelock/internal/validation"
)

// issuerUseCase implements IssuerUseCase.
type issuerUseCase struct {
	licenseRepo LicenseRepository
	signer      licenseService.Signer
	identity    hardwareService.Identity
	verifier    VerifierUseCase
	now         func() time.Time
	logger      *slog.Logger
}

// NewIssuerUseCase creates an IssuerUseCase. A nil clock defaults to time.Now.
func NewIssuerUseCase(
	licenseRepo LicenseRepository,
	signer licenseService.Signer,
	identity hardwareService.Identity,
	verifier VerifierUseCase,
	now func() time.Time,
	logger *slog.Logger,
) IssuerUseCase {
	if now == nil {
		now = time.Now
	}
	return &issuerUseCase{
		licenseRepo: licenseRepo,
		signer:      signer,
		identity:    identity,
		verifier:    verifier,
		now:         now,
		logger:      logger,
	}
}

func (i *issuerUseCase) validateInput(input *licenseDomain.IssueInput, now time.Time) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Fingerprint, validation.By(func(value interface{}) error {
			fp, ok := value.(hardwareDomain.Fingerprint)
			if !ok || fp.IsZero() {
				return validation.NewError("validation_fingerprint_required", "is required")
			}
			return nil
		})),
		validation.Field(&input.ExpiresAt, validation.By(func(value interface{}) error {
			expiresAt, ok := value.(*time.Time)
			if !ok || expiresAt == nil {
				return nil
			}
			if !licenseDomain.NormalizeTime(*expiresAt).After(now) {
				return validation.NewError("validation_expires_at_future", "must be in the future")
			}
			return nil
		})),
	)
	return customValidation.WrapValidationError(err)
}

// Issue builds and signs a license for input.Fingerprint.
func (i *issuerUseCase) Issue(
	ctx context.Context,
	input licenseDomain.IssueInput,
) (*licenseDomain.License, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := licenseDomain.NormalizeTime(i.now())
	if err := i.validateInput(&input, now); err != nil {
		return nil, err
	}

	license := &licenseDomain.License{
		ID:          uuid.Must(uuid.NewV7()),
		Fingerprint: input.Fingerprint,
		IssuedAt:    now,
	}
	if input.ExpiresAt != nil {
		expiresAt := licenseDomain.NormalizeTime(*input.ExpiresAt)
		license.ExpiresAt = &expiresAt
	}

	signature, err := i.signer.Sign(license)
	if err != nil {
		return nil, fmt.Errorf("failed to sign license: %w", err)
	}
	license.Signature = signature

	i.logger.Info("license issued",
		slog.String("license_id", license.ID.String()),
		slog.String("fingerprint", license.Fingerprint.String()),
		slog.Bool("expires", license.ExpiresAt != nil),
	)
	return license, nil
}

// Install issues a license and writes it to the license store. A license for
// another machine is saved as is; one for this machine must pass verification.
// When it does not, the previously installed license is put back.
func (i *issuerUseCase) Install(
	ctx context.Context,
	input licenseDomain.IssueInput,
) (*licenseDomain.License, error) {
	license, err := i.Issue(ctx, input)
	if err != nil {
		return nil, err
	}

	previous, err := i.licenseRepo.Load(ctx)
	if err != nil {
		if !errors.Is(err, licenseDomain.ErrLicenseNotFound) {
			return nil, err
		}
		previous = nil
	}

	if err := i.licenseRepo.Save(ctx, license); err != nil {
		return nil, err
	}

	local, err := i.identity.Fingerprint(ctx)
	if err != nil {
		if errors.Is(err, hardwareDomain.ErrHardwareQuery) {
			i.logger.Warn("license saved without local verification", slog.Any("error", err))
			return license, nil
		}
		i.restore(ctx, previous)
		return nil, err
	}
	if !license.BoundTo(local) {
		return license, nil
	}

	installed, err := i.verifier.Check(ctx)
	if err == nil && installed.ID != license.ID {
		err = fmt.Errorf("installed license %s does not match issued license %s", installed.ID, license.ID)
	}
	if err != nil {
		i.restore(ctx, previous)
		return nil, fmt.Errorf("installed license failed verification: %w", err)
	}
	return license, nil
}

// restore puts previous back as the installed license, or removes the license
// file when nothing readable was installed before.
func (i *issuerUseCase) restore(ctx context.Context, previous *licenseDomain.License) {
	var err error
	if previous != nil {
		err = i.licenseRepo.Save(ctx, previous)
	} else {
		err = i.licenseRepo.Delete(ctx)
	}
	if err != nil {
		i.logger.Error("failed to restore previous license", slog.Any("error", err))
		return
	}
	i.logger.Warn("rejected license rolled back", slog.Bool("previous_restored", previous != nil))
}
