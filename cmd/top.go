package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotboard/internal/formatter"
	"github.com/desertthunder/spotboard/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TopTracks prints the user's most played tracks for the selected time range.
func (r *Runner) TopTracks(ctx context.Context, cmd *cli.Command) error {
	return r.withReauth(ctx, func() error {
		d, err := r.dashboard(ctx, cmd.String("time-range"))
		if err != nil {
			return err
		}

		r.logger.Infof("fetching top tracks (%s)", d.TimeRange())
		tracks, err := d.TopTracks(ctx, cmd.Int("limit"))
		if err != nil {
			return err
		}

		cover := ""
		if len(tracks) > 0 {
			cover = tracks[0].Album.ImageURL
		}
		title := fmt.Sprintf("Top Tracks (%s)", d.TimeRange())
		return r.emit(cmd, formatter.TracksTable(title, tracks), tracks, cover)
	})
}

// TopArtists prints the user's most played artists.
func (r *Runner) TopArtists(ctx context.Context, cmd *cli.Command) error {
	return r.withReauth(ctx, func() error {
		d, err := r.dashboard(ctx, cmd.String("time-range"))
		if err != nil {
			return err
		}

		r.logger.Infof("fetching top artists (%s)", d.TimeRange())
		artists, err := d.TopArtists(ctx, cmd.Int("limit"))
		if err != nil {
			return err
		}

		cover := ""
		if len(artists) > 0 {
			cover = artists[0].ImageURL
		}
		title := fmt.Sprintf("Top Artists (%s)", d.TimeRange())
		return r.emit(cmd, formatter.ArtistsTable(title, artists), artists, cover)
	})
}

// TopAlbums ranks albums by how many of the user's top tracks they contain, reporting progress on stderr.
func (r *Runner) TopAlbums(ctx context.Context, cmd *cli.Command) error {
	return r.withReauth(ctx, func() error {
		d, err := r.dashboard(ctx, cmd.String("time-range"))
		if err != nil {
			return err
		}

		progress := make(chan tasks.ProgressUpdate, 32)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range progress {
				if update.Err != nil {
					r.logger.Warn(update.Message, "phase", update.Phase, "error", update.Err)
					continue
				}
				r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
			}
		}()

		r.logger.Infof("ranking top albums (%s)", d.TimeRange())
		scores, err := d.TopAlbums(ctx, progress)
		close(progress)
		<-done
		if err != nil {
			return err
		}

		if limit := cmd.Int("limit"); limit > 0 && limit < len(scores) {
			scores = scores[:limit]
		}

		cover := ""
		if len(scores) > 0 {
			cover = scores[0].Album.ImageURL
		}
		title := fmt.Sprintf("Top Albums (%s)", d.TimeRange())
		return r.emit(cmd, formatter.AlbumsTable(title, scores), scores, cover)
	})
}

// emit writes a view in the format selected by --format/--json, to stdout or to --out.
//
// --export-dir writes a Markdown directory with the cover image instead.
func (r *Runner) emit(cmd *cli.Command, t formatter.Table, data any, coverURL string) error {
	if dir := cmd.String("export-dir"); dir != "" {
		result, err := formatter.WriteMarkdownExport(t, dir, coverURL)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %s to %s\n", t.Title, result.Directory)
		for _, f := range result.Files {
			r.writePlain("  %s\n", f)
		}
		return nil
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		format = formatter.JSON
	}

	if out := cmd.String("out"); out != "" {
		if format == formatter.JSON {
			return r.writeJSONFile(out, data)
		}
		path, err := formatter.WriteExport(t, format, out)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %d rows to %s\n", t.Len(), path)
	}

	if format == formatter.JSON {
		return r.writeJSON(data, true)
	}

	rendered, err := formatter.Render(t, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(rendered); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !strings.HasSuffix(string(rendered), "\n") {
		r.writePlain("\n")
	}
	return nil
}
