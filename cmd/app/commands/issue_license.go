package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	hardwareDomain "github.com/allisson/nodelock/internal/hardware/domain"
	hardwareService "github.com/allisson/nodelock/internal/hardware/service"
	licenseDomain "github.com/allisson/nodelock/internal/license/domain"
	licenseUseCase "github.com/allisson/nodelock/internal/license/usecase"
)

// ErrOutputRequired is returned when a license for another machine would
// replace the license installed on this one.
var ErrOutputRequired = errors.New("--output is required when issuing a license for another machine")

// RunIssueLicense issues a signed license and writes it to licensePath.
//
// When fingerprintHex is empty the license is bound to this machine and
// verified right after it is written. A license for another machine is only
// written when output names an explicit destination. When expires is empty
// the operator is prompted for it; "never" must be typed explicitly for a
// perpetual license.
//
// Requirements: LICENSE_SIGNING_KEY and LICENSE_ENCRYPTION_KEY must be set.
func RunIssueLicense(
	ctx context.Context,
	issuer licenseUseCase.IssuerUseCase,
	identity hardwareService.Identity,
	logger *slog.Logger,
	licensePath string,
	output string,
	fingerprintHex string,
	expires string,
	format string,
	io IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	var fingerprint hardwareDomain.Fingerprint
	var err error
	if fingerprintHex != "" {
		fingerprint, err = hardwareDomain.ParseFingerprint(strings.ToLower(strings.TrimSpace(fingerprintHex)))
		if err != nil {
			return err
		}
		if output == "" {
			local, err := identity.Fingerprint(ctx)
			if err != nil || !local.Equal(fingerprint) {
				return ErrOutputRequired
			}
		}
	} else {
		fingerprint, err = identity.Fingerprint(ctx)
		if err != nil {
			return fmt.Errorf("failed to read machine fingerprint: %w", err)
		}
	}

	if expires == "" {
		reader := bufio.NewReader(io.Reader)
		expires, err = prompt(reader, io.Writer, "Enter expiration date (YYYY-MM-DD, or 'never'): ")
		if err != nil {
			return err
		}
		if strings.TrimSpace(expires) == "" {
			return fmt.Errorf("expiration date is required")
		}
	}

	expiresAt, err := parseExpiry(expires)
	if err != nil {
		return err
	}

	logger.Info("issuing license",
		slog.String("fingerprint", fingerprint.String()),
		slog.String("expires_at", formatExpiry(expiresAt)),
		slog.String("path", licensePath),
	)

	license, err := issuer.Install(ctx, licenseDomain.IssueInput{
		Fingerprint: fingerprint,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to install license: %w", err)
	}

	if format == "json" {
		return writeJSON(io.Writer, map[string]any{
			"license": newLicenseJSON(license),
			"path":    licensePath,
		})
	}

	_, _ = fmt.Fprintln(io.Writer, "\nLicense installed successfully!")
	writeLicenseText(io.Writer, license)
	_, _ = fmt.Fprintf(io.Writer, "License File: %s\n", licensePath)
	return nil
}
