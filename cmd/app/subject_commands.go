package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/roleguard/cmd/app/commands"
	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/app"
)

func getSubjectCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-subject",
			Usage: "Create a subject account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Login e-mail",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Display name",
				},
				&cli.StringFlag{
					Name:    "role",
					Aliases: []string{"r"},
					Value:   string(domain.RoleUser),
					Usage:   "Role: admin, moderator, user or service_provider",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Password (omit to be prompted)",
				},
				&cli.BoolFlag{
					Name:    "active",
					Aliases: []string{"a"},
					Value:   true,
					Usage:   "Whether the subject can access anything",
				},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
				subjects, err := container.SubjectUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateSubject(
					ctx,
					subjects,
					container.Logger(),
					domain.CreateSubjectInput{
						Email:       cmd.String("email"),
						DisplayName: cmd.String("name"),
						Password:    cmd.String("password"),
						Role:        cmd.String("role"),
						IsActive:    cmd.Bool("active"),
					},
					cmd.String("format"),
					commands.DefaultIO(),
				)
			}),
		},
		{
			Name:  "list-subjects",
			Usage: "List subject accounts",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "query",
					Aliases: []string{"q"},
					Usage:   "Match display name or e-mail",
				},
				&cli.StringFlag{
					Name:    "role",
					Aliases: []string{"r"},
					Usage:   "Only subjects with this role",
				},
				&cli.StringFlag{
					Name:    "status",
					Aliases: []string{"s"},
					Value:   string(domain.StatusAll),
					Usage:   "all, active or inactive",
				},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
				subjects, err := container.SubjectUseCase()
				if err != nil {
					return err
				}

				return commands.RunListSubjects(
					ctx,
					subjects,
					domain.SubjectFilter{
						Query:  cmd.String("query"),
						Role:   domain.Role(cmd.String("role")),
						Status: domain.StatusFilter(cmd.String("status")),
					},
					cmd.String("format"),
					commands.DefaultIO(),
				)
			}),
		},
		{
			Name:  "set-role",
			Usage: "Change the role of a subject",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Subject ID",
				},
				&cli.StringFlag{
					Name:     "role",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Role: admin, moderator, user or service_provider",
				},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
				subjects, err := container.SubjectUseCase()
				if err != nil {
					return err
				}

				return commands.RunSetRole(
					ctx,
					subjects,
					container.Logger(),
					cmd.String("id"),
					cmd.String("role"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			}),
		},
		{
			Name:  "set-status",
			Usage: "Activate or deactivate a subject",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Subject ID",
				},
				&cli.BoolFlag{
					Name:     "active",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "true to activate, false to deactivate",
				},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
				subjects, err := container.SubjectUseCase()
				if err != nil {
					return err
				}

				return commands.RunSetStatus(
					ctx,
					subjects,
					container.Logger(),
					cmd.String("id"),
					cmd.Bool("active"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			}),
		},
		{
			Name:  "issue-code",
			Usage: "Issue a one-time authorization code for a subject",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Subject ID",
				},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
				provider, err := container.LocalProvider()
				if err != nil {
					return err
				}

				return commands.RunIssueCode(
					ctx,
					provider,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("format"),
				)
			}),
		},
	}
}
