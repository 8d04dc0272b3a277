package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/roleguard/cmd/app/commands"
	"github.com/allisson/roleguard/internal/access/domain"
	"github.com/allisson/roleguard/internal/app"
)

func getSessionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "login",
			Usage: "Start the client session",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "code",
					Aliases: []string{"c"},
					Usage:   "One-time authorization code",
				},
				&cli.StringFlag{
					Name:    "email",
					Aliases: []string{"e"},
					Usage:   "E-mail for password login (local provider only)",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Password (omit to be prompted)",
				},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
				sessions, err := container.SessionManager()
				if err != nil {
					return err
				}

				provider, err := container.IdentityProvider()
				if err != nil {
					return err
				}

				var authorizer commands.PasswordAuthorizer
				if container.Config().IdentityRemoteURL == "" {
					local, err := container.LocalProvider()
					if err != nil {
						return err
					}
					authorizer = local
				}

				return commands.RunLogin(
					ctx,
					sessions,
					provider,
					authorizer,
					commands.LoginInput{
						Code:     cmd.String("code"),
						Email:    cmd.String("email"),
						Password: cmd.String("password"),
					},
					cmd.String("format"),
					commands.DefaultIO(),
				)
			}),
		},
		{
			Name:  "logout",
			Usage: "End the client session and revoke its token",
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
				sessions, err := container.SessionManager()
				if err != nil {
					return err
				}

				return commands.RunLogout(
					ctx,
					sessions,
					tokenRevoker(container),
					container.Logger(),
					commands.DefaultIO().Writer,
				)
			}),
		},
		{
			Name:  "whoami",
			Usage: "Show the subject of the client session",
			Flags: []cli.Flag{formatFlag()},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
				sessions, err := container.SessionManager()
				if err != nil {
					return err
				}

				return commands.RunWhoami(ctx, sessions, commands.DefaultIO().Writer, cmd.String("format"))
			}),
		},
		{
			Name:  "check",
			Usage: "Decide whether the session subject may access resources",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:     "resource",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Resource ID, repeatable (e.g. /admin)",
				},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
				sessions, err := container.SessionManager()
				if err != nil {
					return err
				}
				resources, err := container.ResourceUseCase()
				if err != nil {
					return err
				}

				return commands.RunCheck(
					ctx,
					sessions,
					resources,
					commands.DefaultIO().Writer,
					cmd.StringSlice("resource"),
					cmd.String("format"),
				)
			}),
		},
		{
			Name:  "resources",
			Usage: "List the resources the session subject may see",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "type",
					Aliases: []string{"t"},
					Usage:   "Only resources of this type",
				},
				&cli.StringFlag{
					Name:    "query",
					Aliases: []string{"q"},
					Usage:   "Match the title",
				},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, container *app.Container) error {
				sessions, err := container.SessionManager()
				if err != nil {
					return err
				}
				resources, err := container.ResourceUseCase()
				if err != nil {
					return err
				}

				return commands.RunListResources(
					ctx,
					sessions,
					resources,
					commands.DefaultIO().Writer,
					domain.ResourceFilter{
						Type:  domain.ResourceType(cmd.String("type")),
						Query: cmd.String("query"),
					},
					cmd.String("format"),
				)
			}),
		},
	}
}

// tokenRevoker returns the identity provider when it can revoke tokens.
func tokenRevoker(container *app.Container) commands.TokenRevoker {
	provider, err := container.IdentityProvider()
	if err != nil {
		return nil
	}
	revoker, ok := provider.(commands.TokenRevoker)
	if !ok {
		return nil
	}
	return revoker
}
