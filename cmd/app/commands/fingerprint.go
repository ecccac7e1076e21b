package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	hardwareService "github.com/allisson/nodelock/internal/hardware/service"
)

// RunFingerprint prints the fingerprint of this machine so a license can be
// issued for it elsewhere.
func RunFingerprint(
	ctx context.Context,
	identity hardwareService.Identity,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	fingerprint, err := identity.Fingerprint(ctx)
	if err != nil {
		return fmt.Errorf("failed to read machine fingerprint: %w", err)
	}

	logger.Debug("machine fingerprint computed", slog.String("fingerprint", fingerprint.String()))

	if format == "json" {
		return writeJSON(writer, map[string]string{"fingerprint": fingerprint.String()})
	}

	_, _ = fmt.Fprintln(writer, fingerprint.String())
	return nil
}
