package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotboard/internal/playback"
	"github.com/desertthunder/spotboard/internal/shared"
	"github.com/desertthunder/spotboard/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Preview plays the 30 second preview of a track, artist, album or playlist until it ends or is interrupted.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 2 {
		return fmt.Errorf("%w: usage: spotboard preview <track|artist|album|playlist> <id>", shared.ErrMissingArgument)
	}

	kind, err := tasks.ParsePreviewKind(args.Get(0))
	if err != nil {
		return err
	}
	id := args.Get(1)

	out, err := playback.NewOutput(r.config.Playback, r.logger)
	if err != nil {
		return err
	}
	player := playback.NewCoordinator(out, r.logger)
	defer player.Close()

	return r.withReauth(ctx, func() error {
		d, err := r.dashboard(ctx, "")
		if err != nil {
			return err
		}

		resolve, err := tasks.PreviewFor(d.Catalog(), kind, id)
		if err != nil {
			return err
		}

		if err := player.Play(ctx, id, resolve); err != nil {
			return err
		}

		if player.State().Status != playback.Playing {
			return r.writePlain("No preview available for %s %s\n", kind, id)
		}

		duration := cmd.Duration("duration")
		r.writePlain("▶ Playing %s preview for %s (ctrl+c to stop)\n", kind, duration)

		timer := time.NewTimer(duration)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}

		return player.Stop()
	})
}
