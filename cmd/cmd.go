// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, generateCommand, playlistCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles the Spotify user authorization lifecycle.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify authorization commands",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify in the browser",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show current authorization state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored Spotify session",
				Action: r.AuthLogout,
			},
		},
	}
}

// generateCommand runs the mood-to-playlist pipeline.
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate a track list from a mood",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "mood",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of songs to request",
				Value:   10,
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Save the result as a Spotify playlist",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Playlist name (defaults to config)",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Playlist description (defaults to config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Generate,
	}
}

// playlistCommand manages the local playlist history.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Generated playlist history",
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "List previously generated playlists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistHistory,
			},
			{
				Name:  "show",
				Usage: "Show one generated playlist with its tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:  "export",
				Usage: "Export a generated playlist to csv, markdown, txt or json",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, txt, json",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to stdout)",
					},
				},
				Action: r.PlaylistExport,
			},
			{
				Name:  "delete",
				Usage: "Delete a generated playlist from history",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.PlaylistDelete,
			},
		},
	}
}

// tuiCommand launches the interactive terminal UI.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive mood-to-playlist interface",
		Action: r.TUI,
	}
}
