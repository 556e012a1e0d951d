package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/assetvault/internal/app"
	"github.com/allisson/assetvault/internal/config"
)

func getCommands(version string) []*cli.Command {
	var cmds []*cli.Command
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getKeyCommands()...)
	return append(cmds, getAssetCommands()...)
}

// withContainer loads configuration, builds a container for the command and
// shuts it down once run returns.
func withContainer(
	run func(ctx context.Context, cmd *cli.Command, cfg *config.Config, container *app.Container) error,
) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := config.Load()
		container := app.NewContainer(cfg)
		defer func() { _ = container.Shutdown(ctx) }()

		return run(ctx, cmd, cfg, container)
	}
}
