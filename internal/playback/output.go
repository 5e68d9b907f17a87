package playback

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotboard/internal/shared"
)

// Output is the audio output handle. Implementations are only driven by a [Coordinator].
type Output interface {
	Play(url string) error
	Stop() error
	Close() error
}

// SilentOutput logs what would be played. Used when no player is configured.
type SilentOutput struct {
	logger *log.Logger
}

// NewSilentOutput creates a [SilentOutput].
func NewSilentOutput(logger *log.Logger) *SilentOutput {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SilentOutput{logger: logger}
}

func (o *SilentOutput) Play(url string) error {
	o.logger.Info("preview (no player configured)", "url", url)
	return nil
}

func (o *SilentOutput) Stop() error  { return nil }
func (o *SilentOutput) Close() error { return nil }

// NewOutput builds the output selected by cfg.Player.
func NewOutput(cfg shared.PlaybackConfig, logger *log.Logger) (Output, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Player)) {
	case "", "none":
		return NewSilentOutput(logger), nil
	case "mpv":
		path := cfg.MpvPath
		if path == "" {
			path = "mpv"
		}
		resolved, err := exec.LookPath(path)
		if err != nil {
			return nil, fmt.Errorf("%w: mpv not found at %q: %v", shared.ErrInvalidConfig, path, err)
		}
		return NewMpvOutput(resolved, cfg.SocketPath, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown player %q", shared.ErrInvalidConfig, cfg.Player)
	}
}
