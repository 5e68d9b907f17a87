// submodule cmd contains command definitions
package main

import (
	"net/http"
	"time"

	"github.com/desertthunder/spotboard/internal/tasks"
	"github.com/urfave/cli/v3"
)

// globalFlags are accepted before any subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "Path to a .env file with SPOTBOARD_* overrides",
			Value: ".env",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
		&cli.BoolFlag{
			Name:  "reauth",
			Usage: "Log in again and retry once when the token is missing or expired",
		},
	}
}

func timeRangeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "time-range",
		Aliases: []string{"t"},
		Usage:   "Listening window: short (4 weeks), medium (6 months) or long (years)",
		Value:   "medium",
	}
}

func limitFlag(value int) cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum number of items to return",
		Value:   value,
	}
}

// outputFlags select how a view is rendered or exported.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, markdown, csv or json",
			Value:   "text",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON (same as --format json)",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Write to a file instead of stdout",
		},
		&cli.StringFlag{
			Name:  "export-dir",
			Usage: "Write a Markdown export with the cover image into this directory",
		},
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}

// setupCommand handles first-run configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the token store",
		Action: r.Setup,
		Commands: []*cli.Command{
			{
				Name:   "rollback",
				Usage:  "Roll back the latest token database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Log in through the browser (implicit grant) and store the token",
				Action: r.AuthLogin,
			},
			{
				Name:  "token",
				Usage: "Store a token from a redirect URL or its fragment",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "fragment",
						Usage: "Redirect fragment, e.g. access_token=...&token_type=Bearer",
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "Full redirect URL including the #fragment",
					},
				},
				Action: r.AuthToken,
			},
			{
				Name:  "status",
				Usage: "Show the logged in user",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored token",
				Action: r.AuthLogout,
			},
		},
	}
}

// topCommand groups the listening history views.
func topCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "top",
		Usage: "Your most played tracks, artists and albums",
		Commands: []*cli.Command{
			{
				Name:   "tracks",
				Usage:  "Top tracks",
				Flags:  withFlags([]cli.Flag{timeRangeFlag(), limitFlag(50)}, outputFlags()),
				Action: r.TopTracks,
			},
			{
				Name:   "artists",
				Usage:  "Top artists",
				Flags:  withFlags([]cli.Flag{timeRangeFlag(), limitFlag(50)}, outputFlags()),
				Action: r.TopArtists,
			},
			{
				Name:   "albums",
				Usage:  "Albums ranked by how many of your top tracks they hold",
				Flags:  withFlags([]cli.Flag{timeRangeFlag(), limitFlag(tasks.MaxRankedAlbums)}, outputFlags()),
				Action: r.TopAlbums,
			},
		},
	}
}

// searchCommand searches the catalog.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the Spotify catalog",
		Commands: []*cli.Command{
			{
				Name:      "tracks",
				Usage:     "Search tracks",
				ArgsUsage: "<query>",
				Flags:     withFlags([]cli.Flag{limitFlag(20)}, outputFlags()),
				Action:    r.SearchTracks,
			},
			{
				Name:      "playlists",
				Usage:     "Search playlists",
				ArgsUsage: "<query>",
				Flags:     withFlags([]cli.Flag{limitFlag(20)}, outputFlags()),
				Action:    r.SearchPlaylists,
			},
		},
	}
}

func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "recommend",
		Usage:     "Tracks recommended from up to 5 seed tracks",
		ArgsUsage: "<track-id>...",
		Flags:     withFlags([]cli.Flag{limitFlag(20)}, outputFlags()),
		Action:    r.Recommend,
	}
}

func featuresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "features",
		Usage:     "Audio features of tracks",
		ArgsUsage: "<track-id>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Width of each bar",
				Value: 20,
			},
		},
		Action: r.Features,
	}
}

func likeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "like",
		Usage:     "Save a track to your library",
		ArgsUsage: "<track-id>",
		Action:    r.Like,
	}
}

func followCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "follow",
		Usage:     "Follow a playlist",
		ArgsUsage: "<playlist-id>",
		Action:    r.Follow,
	}
}

func previewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Aliases:   []string{"play"},
		Usage:     "Play the audio preview of a track, artist, album or playlist",
		ArgsUsage: "<track|artist|album|playlist> <id>",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "duration",
				Usage: "How long to play before stopping",
				Value: 30 * time.Second,
			},
		},
		Action: r.Preview,
	}
}

// apiCommand handles direct Web API calls
func apiCommand(r *Runner) *cli.Command {
	dataFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "JSON body to send",
		}
	}
	prettyFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		}
	}

	return &cli.Command{
		Name:  "api",
		Usage: "Direct authenticated calls to the Spotify Web API",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "GET a path, e.g. /me/player/recently-played",
				ArgsUsage: "<path>",
				Flags:     []cli.Flag{prettyFlag()},
				Action:    r.APIRequest(http.MethodGet),
			},
			{
				Name:      "post",
				Usage:     "POST a JSON body",
				ArgsUsage: "<path>",
				Flags:     []cli.Flag{dataFlag(), prettyFlag()},
				Action:    r.APIRequest(http.MethodPost),
			},
			{
				Name:      "put",
				Usage:     "PUT a JSON body",
				ArgsUsage: "<path>",
				Flags:     []cli.Flag{dataFlag(), prettyFlag()},
				Action:    r.APIRequest(http.MethodPut),
			},
			{
				Name:      "delete",
				Usage:     "DELETE a path",
				ArgsUsage: "<path>",
				Flags:     []cli.Flag{dataFlag(), prettyFlag()},
				Action:    r.APIRequest(http.MethodDelete),
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"dashboard", "ui"},
		Usage:   "Launch the interactive dashboard",
		Flags: []cli.Flag{
			timeRangeFlag(),
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where logs go while the dashboard owns the terminal",
				Value: "./tmp/spotboard-tui.log",
			},
		},
		Action: r.TUI,
	}
}
