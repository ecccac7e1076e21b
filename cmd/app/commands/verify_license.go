package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
	licenseUseCase "github.com/allisson/nodelock/internal/license/usecase"
)

// ErrLicenseDenied is returned by commands that refuse to continue without a valid license.
var ErrLicenseDenied = errors.New("license verification failed")

// RunVerifyLicense checks the installed license and prints the result.
// Returns ErrLicenseDenied when the license is missing or invalid so the
// process exits with a non-zero status.
func RunVerifyLicense(
	ctx context.Context,
	verifier licenseUseCase.VerifierUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	license, checkErr := verifier.Check(ctx)
	reason := licenseDomain.DenialReason(checkErr)

	logger.Info("license checked", slog.String("reason", reason))

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"valid":   checkErr == nil,
			"reason":  reason,
			"license": newLicenseJSON(license),
		}); err != nil {
			return err
		}
	} else {
		outputVerifyText(writer, license, checkErr)
	}

	if checkErr != nil {
		return fmt.Errorf("%w: %s", ErrLicenseDenied, reason)
	}
	return nil
}

// outputVerifyText outputs the verification result in human-readable text format.
func outputVerifyText(writer io.Writer, license *licenseDomain.License, checkErr error) {
	if checkErr != nil {
		_, _ = fmt.Fprintf(writer, "License verification failed: %s\n", describeDenial(checkErr))
		_, _ = fmt.Fprintln(writer, "Please contact support to obtain a valid license.")
		return
	}

	_, _ = fmt.Fprintln(writer, "License is valid.")
	writeLicenseText(writer, license)
}

// describeDenial turns a verification error into an operator-facing message.
func describeDenial(err error) string {
	switch licenseDomain.DenialReason(err) {
	case licenseDomain.ReasonNotFound:
		return "no license is installed"
	case licenseDomain.ReasonUnreadable:
		return "the license file is damaged or was written with different secrets"
	case licenseDomain.ReasonSignatureInvalid:
		return "the license has been tampered with"
	case licenseDomain.ReasonFingerprintMismatch:
		return "the license was issued for a different machine"
	case licenseDomain.ReasonExpired:
		return "the license has expired"
	case licenseDomain.ReasonHardwareQuery:
		return "the machine identifier could not be read"
	default:
		return "internal error"
	}
}
