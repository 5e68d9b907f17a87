package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotboard/internal/playback"
	"github.com/desertthunder/spotboard/internal/shared"
	"github.com/desertthunder/spotboard/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	r.SetLogger(fileLogger)

	return r.withReauth(ctx, func() error {
		// verify the token before taking over the terminal
		svc, err := r.service(ctx)
		if err != nil {
			return err
		}
		if _, err := svc.UserProfile(ctx); err != nil {
			return err
		}

		d, err := r.dashboard(ctx, cmd.String("time-range"))
		if err != nil {
			return err
		}

		out, err := playback.NewOutput(r.config.Playback, r.logger)
		if err != nil {
			return err
		}
		player := playback.NewCoordinator(out, r.logger)
		defer player.Close()

		model := ui.NewModel(ctx, d, player)
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	})
}
