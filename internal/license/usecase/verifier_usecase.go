package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
	hardwareService "github.com/allisson/nodelock/internal/hardware/service"
	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
	licenseService "github.com/allisson/nodelock/internal/license/service"
)

// verifierUseCase implements VerifierUseCase.
type verifierUseCase struct {
	licenseRepo LicenseRepository
	signer      licenseService.Signer
	identity    hardwareService.Identity
	now         func() time.Time
	logger      *slog.Logger
}

// NewVerifierUseCase creates a VerifierUseCase. A nil clock defaults to time.Now.
func NewVerifierUseCase(
	licenseRepo LicenseRepository,
	signer licenseService.Signer,
	identity hardwareService.Identity,
	now func() time.Time,
	logger *slog.Logger,
) VerifierUseCase {
	if now == nil {
		now = time.Now
	}
	return &verifierUseCase{
		licenseRepo: licenseRepo,
		signer:      signer,
		identity:    identity,
		now:         now,
		logger:      logger,
	}
}

// Check loads the installed license and verifies, in order, its signature,
// its hardware binding and its expiration date.
func (v *verifierUseCase) Check(ctx context.Context) (*licenseDomain.License, error) {
	license, err := v.licenseRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	if err := v.signer.Verify(license); err != nil {
		return nil, err
	}

	fingerprint, err := v.identity.Fingerprint(ctx)
	if err != nil {
		return nil, err
	}
	if err := v.checkBinding(license, fingerprint); err != nil {
		return nil, err
	}

	return license, nil
}

// Evaluate verifies the signature of license, then its binding to local and
// its expiration date. hardwareErr is reported in place of the binding check.
func (v *verifierUseCase) Evaluate(
	ctx context.Context,
	license *licenseDomain.License,
	local hardwareDomain.Fingerprint,
	hardwareErr error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if license == nil {
		return licenseDomain.ErrLicenseNotFound
	}
	if err := v.signer.Verify(license); err != nil {
		return err
	}
	if hardwareErr != nil {
		return hardwareErr
	}
	return v.checkBinding(license, local)
}

func (v *verifierUseCase) checkBinding(license *licenseDomain.License, local hardwareDomain.Fingerprint) error {
	if !license.BoundTo(local) {
		return licenseDomain.ErrFingerprintMismatch
	}
	if license.IsExpired(v.now()) {
		return licenseDomain.ErrLicenseExpired
	}
	return nil
}

// Verify returns true only when Check succeeds.
func (v *verifierUseCase) Verify(ctx context.Context) (allowed bool) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("license verification panicked", slog.String("panic", fmt.Sprint(r)))
			allowed = false
		}
	}()

	license, err := v.Check(ctx)
	if err != nil {
		v.logger.Warn("license denied",
			slog.String("reason", licenseDomain.DenialReason(err)),
			slog.Any("error", err),
		)
		return false
	}

	attrs := []any{slog.String("license_id", license.ID.String())}
	if license.ExpiresAt != nil {
		attrs = append(attrs, slog.Time("expires_at", *license.ExpiresAt))
	}
	v.logger.Info("license verified", attrs...)
	return true
}
