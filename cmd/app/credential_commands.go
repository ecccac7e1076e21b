package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/nodelock/cmd/app/commands"
	"github.com/allisson/nodelock/internal/app"
	"github.com/allisson/nodelock/internal/config"
)

func loginPolicy(cfg *config.Config) commands.LoginPolicy {
	return commands.LoginPolicy{
		MaxAttempts: cfg.LoginMaxAttempts,
		Interval:    cfg.LoginAttemptInterval,
	}
}

func getCredentialCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "init-credentials",
			Usage: "Create the operator account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Operator username",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer shutdownContainer(ctx, container)

				useCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunInitCredentials(
					ctx,
					useCase,
					container.Logger(),
					cmd.String("username"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "change-password",
			Usage: "Change the operator password",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Operator username",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer shutdownContainer(ctx, container)

				useCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				return commands.RunChangePassword(
					ctx,
					useCase,
					container.Logger(),
					cmd.String("username"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "login",
			Usage: "Log in as the operator",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer shutdownContainer(ctx, container)

				useCase, err := container.CredentialUseCase()
				if err != nil {
					return err
				}

				_, err = commands.RunLogin(
					ctx,
					useCase,
					container.Logger(),
					loginPolicy(cfg),
					commands.DefaultIO(),
				)
				return err
			},
		},
		{
			Name:  "start",
			Usage: "Verify the license, then log in as the operator",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer shutdownContainer(ctx, container)

				verifier, err := container.VerifierUseCase()
				if err != nil {
					return err
				}

				return commands.RunStart(
					ctx,
					verifier,
					container.CredentialUseCase,
					container.Logger(),
					loginPolicy(cfg),
					commands.DefaultIO(),
				)
			},
		},
	}
}
