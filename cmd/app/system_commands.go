package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/assetvault/cmd/app/commands"
	"github.com/allisson/assetvault/internal/app"
	"github.com/allisson/assetvault/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server and the upload retry worker",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: withContainer(
				func(_ context.Context, _ *cli.Command, cfg *config.Config, container *app.Container) error {
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				},
			),
		},
	}
}
