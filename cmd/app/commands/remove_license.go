package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	licenseUseCase "github.com/allisson/nodelock/internal/license/usecase"
)

// RunRemoveLicense deletes the installed license file. The application is
// denied at the next start until a new license is issued.
func RunRemoveLicense(
	ctx context.Context,
	licenseRepo licenseUseCase.LicenseRepository,
	logger *slog.Logger,
	writer io.Writer,
	licensePath string,
) error {
	if err := licenseRepo.Delete(ctx); err != nil {
		return fmt.Errorf("failed to remove license: %w", err)
	}

	logger.Info("license removed", slog.String("path", licensePath))

	_, _ = fmt.Fprintf(writer, "License removed: %s\n", licensePath)
	return nil
}
