package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/roleguard/cmd/app/commands"
	"github.com/allisson/roleguard/internal/access/repository"
	"github.com/allisson/roleguard/internal/app"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
				cfg := container.Config()
				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			}),
		},
		{
			Name:  "seed",
			Usage: "Load a subject and resource catalog",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "catalog",
					Aliases: []string{"c"},
					Usage:   "YAML catalog file (defaults to CATALOG_PATH or the built-in catalog)",
				},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
				catalog, err := container.Catalog()
				if path := cmd.String("catalog"); path != "" {
					catalog, err = repository.LoadCatalog(path)
				}
				if err != nil {
					return err
				}

				seeder, err := container.CatalogSeeder()
				if err != nil {
					return err
				}

				return commands.RunSeedCatalog(
					ctx,
					seeder,
					catalog,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			}),
		},
	}
}
