package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
	hardwareService "github.com/allisson/nodelock/internal/hardware/service"
	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
	licenseUseCase "github.com/allisson/nodelock/internal/license/usecase"
)

// LicenseStatus is the diagnostic view printed by the license-status command.
type LicenseStatus struct {
	LicensePath      string
	LocalFingerprint *hardwareDomain.Fingerprint
	HardwareError    error
	License          *licenseDomain.License
	LoadError        error
	CheckError       error
}

// RunLicenseStatus reports the local fingerprint, the installed license and
// the verification outcome. The hardware query and the license load run
// concurrently and the verdict is evaluated from their results. Unlike
// verify-license this command never fails on a denied license.
func RunLicenseStatus(
	ctx context.Context,
	identity hardwareService.Identity,
	licenseRepo licenseUseCase.LicenseRepository,
	verifier licenseUseCase.VerifierUseCase,
	logger *slog.Logger,
	writer io.Writer,
	licensePath string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	status := &LicenseStatus{LicensePath: licensePath}

	// Each goroutine records its own failure; neither cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		fingerprint, err := identity.Fingerprint(ctx)
		if err != nil {
			status.HardwareError = err
			return nil
		}
		status.LocalFingerprint = &fingerprint
		return nil
	})
	g.Go(func() error {
		status.License, status.LoadError = licenseRepo.Load(ctx)
		return nil
	})
	_ = g.Wait()

	if status.LoadError != nil {
		status.CheckError = status.LoadError
	} else {
		var local hardwareDomain.Fingerprint
		if status.LocalFingerprint != nil {
			local = *status.LocalFingerprint
		}
		status.CheckError = verifier.Evaluate(ctx, status.License, local, status.HardwareError)
	}

	logger.Debug("license status gathered",
		slog.String("reason", licenseDomain.DenialReason(status.CheckError)),
		slog.Bool("hardware_ok", status.HardwareError == nil),
		slog.Bool("license_loaded", status.LoadError == nil),
	)

	if format == "json" {
		return writeJSON(writer, newLicenseStatusJSON(status))
	}

	outputStatusText(writer, status)
	return nil
}

func newLicenseStatusJSON(status *LicenseStatus) map[string]any {
	result := map[string]any{
		"license_path": status.LicensePath,
		"valid":        status.CheckError == nil,
		"reason":       licenseDomain.DenialReason(status.CheckError),
		"license":      newLicenseJSON(status.License),
	}
	if status.LocalFingerprint != nil {
		result["local_fingerprint"] = status.LocalFingerprint.String()
	} else {
		result["hardware_error"] = status.HardwareError.Error()
	}
	if status.License != nil && status.LocalFingerprint != nil {
		result["bound_to_this_machine"] = status.License.BoundTo(*status.LocalFingerprint)
	}
	return result
}

// outputStatusText outputs the license status in human-readable text format.
func outputStatusText(writer io.Writer, status *LicenseStatus) {
	_, _ = fmt.Fprintf(writer, "License Status\n")
	_, _ = fmt.Fprintf(writer, "==============\n\n")

	_, _ = fmt.Fprintf(writer, "License File: %s\n", status.LicensePath)
	if status.LocalFingerprint != nil {
		_, _ = fmt.Fprintf(writer, "This Machine: %s\n\n", status.LocalFingerprint)
	} else {
		_, _ = fmt.Fprintf(writer, "This Machine: unavailable (%v)\n\n", status.HardwareError)
	}

	if status.License != nil {
		writeLicenseText(writer, status.License)
		if status.LocalFingerprint != nil {
			_, _ = fmt.Fprintf(writer, "Bound Here:   %t\n", status.License.BoundTo(*status.LocalFingerprint))
		}
		_, _ = fmt.Fprintln(writer)
	} else {
		_, _ = fmt.Fprintf(writer, "License: %s\n\n", describeDenial(status.LoadError))
	}

	if status.CheckError != nil {
		_, _ = fmt.Fprintf(writer, "Status: DENIED (%s)\n", licenseDomain.DenialReason(status.CheckError))
		return
	}
	_, _ = fmt.Fprintf(writer, "Status: VALID\n")
}
