package main

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/allisson/nodelock/cmd/app/commands"
	"github.com/allisson/nodelock/internal/app"
	"github.com/allisson/nodelock/internal/config"
)

// shutdownContainer releases container resources and logs any errors.
func shutdownContainer(ctx context.Context, container *app.Container) {
	if err := container.Shutdown(ctx); err != nil {
		container.Logger().Error("failed to shutdown container", slog.Any("error", err))
	}
}

func getLicenseCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "fingerprint",
			Usage: "Print the hardware fingerprint of this machine",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer shutdownContainer(ctx, container)

				identity, err := container.HardwareIdentity()
				if err != nil {
					return err
				}

				return commands.RunFingerprint(
					ctx,
					identity,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "create-secrets",
			Usage: "Generate the license signing key, encryption passphrase and KDF salt",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "Encrypt the secrets with this KMS key (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer shutdownContainer(ctx, container)

				return commands.RunCreateSecrets(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "issue-license",
			Usage: "Issue a signed license and write it to the license file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "expires",
					Aliases: []string{"e"},
					Value:   "",
					Usage:   "Expiration date (YYYY-MM-DD) or 'never'; prompted when omitted",
				},
				&cli.StringFlag{
					Name:  "fingerprint",
					Value: "",
					Usage: "Fingerprint of the target machine (defaults to this machine)",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   "",
					Usage:   "License file path (defaults to the configured license file)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if output := cmd.String("output"); output != "" {
					cfg.DataDir = filepath.Dir(output)
					cfg.LicenseFileName = filepath.Base(output)
				}
				container := app.NewContainer(cfg)
				defer shutdownContainer(ctx, container)

				issuer, err := container.IssuerUseCase()
				if err != nil {
					return err
				}
				identity, err := container.HardwareIdentity()
				if err != nil {
					return err
				}

				return commands.RunIssueLicense(
					ctx,
					issuer,
					identity,
					container.Logger(),
					cfg.LicensePath(),
					cmd.String("output"),
					cmd.String("fingerprint"),
					cmd.String("expires"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "verify-license",
			Usage: "Verify the installed license; exits with status 1 when it is not valid",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer shutdownContainer(ctx, container)

				verifier, err := container.VerifierUseCase()
				if err != nil {
					return err
				}

				return commands.RunVerifyLicense(
					ctx,
					verifier,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "license-status",
			Usage: "Show the machine fingerprint, the installed license and why it is accepted or denied",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer shutdownContainer(ctx, container)

				verifier, err := container.VerifierUseCase()
				if err != nil {
					return err
				}
				identity, err := container.HardwareIdentity()
				if err != nil {
					return err
				}
				licenseRepo, err := container.LicenseRepository()
				if err != nil {
					return err
				}

				return commands.RunLicenseStatus(
					ctx,
					identity,
					licenseRepo,
					verifier,
					container.Logger(),
					commands.DefaultIO().Writer,
					cfg.LicensePath(),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "remove-license",
			Usage: "Delete the installed license file",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer shutdownContainer(ctx, container)

				licenseRepo, err := container.LicenseRepository()
				if err != nil {
					return err
				}

				return commands.RunRemoveLicense(
					ctx,
					licenseRepo,
					container.Logger(),
					commands.DefaultIO().Writer,
					cfg.LicensePath(),
				)
			},
		},
	}
}
