// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("BIOTUNE_CONFIG"),
		},
	}
}

// setupCommand creates the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create a config file if missing, initialize the database and run migrations",
		Action: r.Setup,
	}
}

// serveCommand runs the OAuth server and the sync scheduler together.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the linking flow and sync every linked account once a minute",
		Action: r.Serve,
	}
}

// syncCommand runs a single tick.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync every linked account once and print the outcomes",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Sync,
	}
}

// linksCommand inspects and prunes stored links.
func linksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "links",
		Usage: "Manage linked accounts",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List linked accounts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, json or txt (default: table)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the export to a file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "reveal",
						Usage: "Print credentials unmasked",
					},
				},
				Action: r.LinksList,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete a linked account",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "id",
						Usage:    "Link ID to delete",
						Required: true,
					},
				},
				Action: r.LinksDelete,
			},
			{
				Name:  "authorize",
				Usage: "Print the Spotify authorization URL that links a GitHub account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "GitHub username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Usage:    "GitHub access token with the user scope",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the URL in the default browser",
					},
				},
				Action: r.LinksAuthorize,
			},
		},
	}
}

// stateCommand encodes and decodes OAuth state parameters.
func stateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Encrypt or decrypt OAuth state parameters",
		Commands: []*cli.Command{
			{
				Name:  "encrypt",
				Usage: "Encrypt a GitHub identity into a state parameter",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "GitHub username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Usage:    "GitHub access token",
						Required: true,
					},
				},
				Action: r.StateEncrypt,
			},
			{
				Name:  "decrypt",
				Usage: "Decrypt a state parameter",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "state"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reveal",
						Usage: "Print the access token unmasked",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.StateDecrypt,
			},
		},
	}
}
