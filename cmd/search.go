package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotboard/internal/formatter"
	"github.com/urfave/cli/v3"
)

// SearchTracks searches the catalog for tracks matching the arguments.
func (r *Runner) SearchTracks(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")

	return r.withReauth(ctx, func() error {
		d, err := r.dashboard(ctx, "")
		if err != nil {
			return err
		}

		r.logger.Info("searching tracks", "query", query)
		tracks, err := d.SearchTracks(ctx, query, cmd.Int("limit"))
		if err != nil {
			return err
		}

		title := fmt.Sprintf("Tracks matching %q", query)
		return r.emit(cmd, formatter.TracksTable(title, tracks), tracks, "")
	})
}

// SearchPlaylists searches the catalog for playlists matching the arguments.
func (r *Runner) SearchPlaylists(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")

	return r.withReauth(ctx, func() error {
		d, err := r.dashboard(ctx, "")
		if err != nil {
			return err
		}

		r.logger.Info("searching playlists", "query", query)
		playlists, err := d.SearchPlaylists(ctx, query, cmd.Int("limit"))
		if err != nil {
			return err
		}

		cover := ""
		if len(playlists) > 0 {
			cover = playlists[0].ImageURL
		}
		title := fmt.Sprintf("Playlists matching %q", query)
		return r.emit(cmd, formatter.PlaylistsTable(title, playlists), playlists, cover)
	})
}
