package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotboard/internal/formatter"
	"github.com/desertthunder/spotboard/internal/models"
	"github.com/desertthunder/spotboard/internal/shared"
	"github.com/urfave/cli/v3"
)

// Like saves a track to the user's library.
func (r *Runner) Like(ctx context.Context, cmd *cli.Command) error {
	trackID := cmd.Args().First()
	if trackID == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	return r.withReauth(ctx, func() error {
		d, err := r.dashboard(ctx, "")
		if err != nil {
			return err
		}
		if err := d.LikeTrack(ctx, trackID); err != nil {
			return err
		}
		return r.writePlain("✓ Saved track %s to your library\n", trackID)
	})
}

// Follow follows a playlist.
func (r *Runner) Follow(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.Args().First()
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	return r.withReauth(ctx, func() error {
		d, err := r.dashboard(ctx, "")
		if err != nil {
			return err
		}
		if err := d.FollowPlaylist(ctx, playlistID); err != nil {
			return err
		}
		return r.writePlain("✓ Following playlist %s\n", playlistID)
	})
}

// Recommend lists tracks seeded by the given track ids.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	seeds := cmd.Args().Slice()
	if len(seeds) == 0 {
		return fmt.Errorf("%w: at least one seed track id", shared.ErrMissingArgument)
	}

	return r.withReauth(ctx, func() error {
		d, err := r.dashboard(ctx, "")
		if err != nil {
			return err
		}

		tracks, err := d.Recommendations(ctx, seeds, cmd.Int("limit"))
		if err != nil {
			return err
		}
		return r.emit(cmd, formatter.TracksTable("Recommendations", tracks), tracks, "")
	})
}

// Features prints the audio feature bars of the given tracks.
func (r *Runner) Features(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one track id", shared.ErrMissingArgument)
	}

	tracks := make([]models.Track, len(ids))
	for i, id := range ids {
		tracks[i] = models.Track{ID: id}
	}

	return r.withReauth(ctx, func() error {
		d, err := r.dashboard(ctx, "")
		if err != nil {
			return err
		}

		features, err := d.Features(ctx, models.FeatureSet{}, tracks, nil)
		if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(features, true)
		}

		for _, id := range ids {
			r.writePlainHeader(id)
			f, ok := features.Get(id)
			if !ok {
				r.writePlain("No audio features available\n\n")
				continue
			}
			r.writePlain("%s\n", formatter.FeatureBars(f, cmd.Int("width")))
		}
		return nil
	})
}

func (r *Runner) writeJSONFile(path string, data any) error {
	out, err := shared.MarshalJSON(data, true)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return r.writePlain("✓ Wrote %s\n", path)
}
