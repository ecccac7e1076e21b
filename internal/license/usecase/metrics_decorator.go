package usecase

import (
	"context"
	"time"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
	"github.com/allisson/nodelock/internal/metrics"
)

const metricsDomain = "license"

// verifierUseCaseWithMetrics decorates VerifierUseCase with metrics instrumentation.
type verifierUseCaseWithMetrics struct {
	next    VerifierUseCase
	metrics metrics.BusinessMetrics
}

// NewVerifierUseCaseWithMetrics wraps a VerifierUseCase with metrics recording.
func NewVerifierUseCaseWithMetrics(useCase VerifierUseCase, m metrics.BusinessMetrics) VerifierUseCase {
	return &verifierUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Check records the outcome of a check labelled with its denial reason, and the
// expiration of a license that passed.
func (v *verifierUseCaseWithMetrics) Check(ctx context.Context) (*licenseDomain.License, error) {
	start := time.Now()
	license, err := v.next.Check(ctx)

	status := licenseDomain.DenialReason(err)
	v.metrics.RecordOperation(ctx, metricsDomain, "license_check", status)
	v.metrics.RecordDuration(ctx, metricsDomain, "license_check", time.Since(start), status)
	if err == nil {
		v.metrics.RecordLicenseExpiry(ctx, license.ExpiresAt)
	}

	return license, err
}

// Evaluate records the outcome of an evaluation labelled with its denial reason.
func (v *verifierUseCaseWithMetrics) Evaluate(
	ctx context.Context,
	license *licenseDomain.License,
	local hardwareDomain.Fingerprint,
	hardwareErr error,
) error {
	start := time.Now()
	err := v.next.Evaluate(ctx, license, local, hardwareErr)

	status := licenseDomain.DenialReason(err)
	v.metrics.RecordOperation(ctx, metricsDomain, "license_evaluate", status)
	v.metrics.RecordDuration(ctx, metricsDomain, "license_evaluate", time.Since(start), status)

	return err
}

// Verify records whether startup was allowed.
func (v *verifierUseCaseWithMetrics) Verify(ctx context.Context) bool {
	start := time.Now()
	allowed := v.next.Verify(ctx)

	status := "allowed"
	if !allowed {
		status = "denied"
	}

	v.metrics.RecordOperation(ctx, metricsDomain, "license_verify", status)
	v.metrics.RecordDuration(ctx, metricsDomain, "license_verify", time.Since(start), status)

	return allowed
}

// issuerUseCaseWithMetrics decorates IssuerUseCase with metrics instrumentation.
type issuerUseCaseWithMetrics struct {
	next    IssuerUseCase
	metrics metrics.BusinessMetrics
}

// NewIssuerUseCaseWithMetrics wraps an IssuerUseCase with metrics recording.
func NewIssuerUseCaseWithMetrics(useCase IssuerUseCase, m metrics.BusinessMetrics) IssuerUseCase {
	return &issuerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for license issuance.
func (i *issuerUseCaseWithMetrics) Issue(
	ctx context.Context,
	input licenseDomain.IssueInput,
) (*licenseDomain.License, error) {
	start := time.Now()
	license, err := i.next.Issue(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, metricsDomain, "license_issue", status)
	i.metrics.RecordDuration(ctx, metricsDomain, "license_issue", time.Since(start), status)

	return license, err
}

// Install records metrics for license installation.
func (i *issuerUseCaseWithMetrics) Install(
	ctx context.Context,
	input licenseDomain.IssueInput,
) (*licenseDomain.License, error) {
	start := time.Now()
	license, err := i.next.Install(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, metricsDomain, "license_install", status)
	i.metrics.RecordDuration(ctx, metricsDomain, "license_install", time.Since(start), status)

	return license, err
}
