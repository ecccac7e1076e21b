// Package usecase defines the license issuance and verification workflows.
package usecase

import (
	"context"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
)

// LicenseRepository defines persistence operations for the installed license.
type LicenseRepository interface {
	// Save replaces the installed license.
	Save(ctx context.Context, license *licenseDomain.License) error

	// Load returns the installed license. Returns ErrLicenseNotFound if none is
	// installed and ErrLicenseUnreadable if the stored file is damaged.
	Load(ctx context.Context) (*licenseDomain.License, error)

	// Delete removes the installed license.
	Delete(ctx context.Context) error
}

// IssuerUseCase creates signed licenses.
type IssuerUseCase interface {
	// Issue validates input and returns a signed license. Nothing is persisted.
	Issue(ctx context.Context, input licenseDomain.IssueInput) (*licenseDomain.License, error)

	// Install issues a license and saves it as the installed license. When the
	// license targets this machine, the saved file is verified before returning.
	Install(ctx context.Context, input licenseDomain.IssueInput) (*licenseDomain.License, error)
}

// VerifierUseCase is the startup license gate.
type VerifierUseCase interface {
	// Check runs every verification step and returns the loaded license, or the
	// first error that denies it: ErrLicenseNotFound, ErrSignatureInvalid,
	// ErrHardwareQuery, ErrFingerprintMismatch or ErrLicenseExpired.
	Check(ctx context.Context) (*licenseDomain.License, error)

	// Evaluate applies the checks that follow the load to an already loaded
	// license and the outcome of an already run hardware query, in the same
	// order as Check.
	Evaluate(
		ctx context.Context,
		license *licenseDomain.License,
		local hardwareDomain.Fingerprint,
		hardwareErr error,
	) error

	// Verify reports whether the application may start. It never panics and
	// treats every failure as a denial.
	Verify(ctx context.Context) bool
}
