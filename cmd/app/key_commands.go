package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/assetvault/cmd/app/commands"
	"github.com/allisson/assetvault/internal/app"
	"github.com/allisson/assetvault/internal/config"
)

// keyFlags are shared by the master key commands.
func keyFlags(idUsage string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "id",
			Aliases: []string{"i"},
			Usage:   idUsage,
		},
		&cli.StringFlag{
			Name:  "kms-provider",
			Usage: "KMS provider (localsecrets, gcpkms, awskms, azurekeyvault, hashivault)",
		},
		&cli.StringFlag{
			Name:  "kms-key-uri",
			Usage: "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...); omit for a plaintext key",
		},
	}
}

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate a new master key for envelope encryption",
			Flags: keyFlags("Master key ID (e.g., prod-master-key-2026)"),
			Action: withContainer(
				func(ctx context.Context, cmd *cli.Command, _ *config.Config, container *app.Container) error {
					return commands.RunCreateMasterKey(
						ctx,
						container.KMSService(),
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("id"),
						cmd.String("kms-provider"),
						cmd.String("kms-key-uri"),
					)
				},
			),
		},
		{
			Name:  "rotate-master-key",
			Usage: "Generate a new active master key and keep the existing ones for decryption",
			Flags: keyFlags("New master key ID"),
			Action: withContainer(
				func(ctx context.Context, cmd *cli.Command, cfg *config.Config, container *app.Container) error {
					// Without flags the configured KMS wraps the new key too.
					kmsProvider, kmsKeyURI := cmd.String("kms-provider"), cmd.String("kms-key-uri")
					if kmsKeyURI == "" {
						kmsProvider, kmsKeyURI = cfg.KMSProvider, cfg.KMSKeyURI
					}

					return commands.RunRotateMasterKey(
						ctx,
						container.KMSService(),
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("id"),
						kmsProvider,
						kmsKeyURI,
						cfg.MasterKeys,
						cfg.ActiveMasterKeyID,
					)
				},
			),
		},
	}
}
