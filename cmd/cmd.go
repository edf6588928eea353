// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port and PORT)",
			},
			&cli.StringSliceFlag{
				Name:  "origin",
				Usage: "Allowed CORS origin, repeatable. Any origin is allowed when unset",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand prepares the database and config file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create the database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "status",
						Usage: "Only print migration status",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
		},
	}
}

// catalogCommand queries the catalog workflows directly
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Query the music catalog",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Maximum number of tracks (1-50)",
						Value:   20,
					},
				}, append(outputFlags(), exportFlags()...)...),
				Action: r.CatalogSearch,
			},
			{
				Name:  "releases",
				Usage: "Collect tracks from new-release albums",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Maximum number of tracks",
						Value:   20,
					},
					&cli.BoolFlag{
						Name:  "report",
						Usage: "Also list skipped albums and tracks",
					},
				}, append(outputFlags(), exportFlags()...)...),
				Action: r.CatalogReleases,
			},
			{
				Name:  "track",
				Usage: "Look up one playable track by ID",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags:  outputFlags(),
				Action: r.CatalogTrack,
			},
		},
	}
}

// tuiCommand launches the terminal browser
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse search results and new releases in the terminal",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of tracks per list",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/audiobox-tui.log",
			},
		},
		Action: r.TUI,
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "export",
			Aliases: []string{"o"},
			Usage:   "Also write the tracks to this file",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Export format: csv, md or txt (default: from the file extension)",
		},
	}
}
