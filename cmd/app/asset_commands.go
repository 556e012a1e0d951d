package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/assetvault/cmd/app/commands"
	"github.com/allisson/assetvault/internal/app"
	"github.com/allisson/assetvault/internal/config"
)

func getAssetCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "delete-asset",
			Usage: "Delete an asset record and its encrypted blob",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "content-id",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Content identifier (e.g., nillion://assets/<asset-id>)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: withContainer(
				func(ctx context.Context, cmd *cli.Command, _ *config.Config, container *app.Container) error {
					assetUseCase, err := container.AssetUseCase()
					if err != nil {
						return err
					}
					return commands.RunDeleteAsset(
						ctx,
						assetUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("content-id"),
						cmd.String("format"),
					)
				},
			),
		},
		{
			Name:  "process-uploads",
			Usage: "Retry pending blob uploads once and exit",
			Action: withContainer(
				func(ctx context.Context, _ *cli.Command, _ *config.Config, container *app.Container) error {
					outboxUseCase, err := container.OutboxUseCase()
					if err != nil {
						return err
					}
					return commands.RunProcessUploads(ctx, outboxUseCase, container.Logger(), commands.DefaultIO().Writer)
				},
			),
		},
	}
}
