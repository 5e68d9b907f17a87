package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotboard/internal/auth"
	"github.com/desertthunder/spotboard/internal/services"
	"github.com/desertthunder/spotboard/internal/shared"
	"github.com/desertthunder/spotboard/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The token store and the Spotify client are created on first use.
type Runner struct {
	config      *shared.Config
	configPath  string
	store       auth.PersistentStore
	spotify     *services.SpotifyService
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	reauth      bool
	openBrowser func(url string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Store       auth.PersistentStore
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	OpenBrowser func(url string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		store:       opts.Store,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: opts.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, topCommand, searchCommand, recommendCommand, featuresCommand,
		likeCommand, followCommand, previewCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads config.toml (when present) and the .env overrides ahead of every command.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	r.reauth = cmd.Bool("reauth")

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
	}

	if err := shared.ApplyEnv(r.config, cmd.String("env")); err != nil {
		return ctx, err
	}

	return ctx, nil
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the token store.
func (r *Runner) Close() error {
	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	return err
}

func (r *Runner) tokenStore() (auth.PersistentStore, error) {
	if r.store != nil {
		return r.store, nil
	}

	store, err := auth.NewStore(r.config.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}
	r.store = store
	return store, nil
}

// service returns an authenticated Spotify client using the persisted token.
func (r *Runner) service(ctx context.Context) (*services.SpotifyService, error) {
	if r.spotify != nil && r.spotify.Authenticated() {
		return r.spotify, nil
	}

	store, err := r.tokenStore()
	if err != nil {
		return nil, err
	}

	res, err := auth.Resolve(ctx, "", store)
	if err != nil {
		return nil, err
	}

	api := r.config.API
	svc := services.NewSpotifyService(services.SpotifyOpts{
		BaseURL:      api.BaseURL,
		HTTPClient:   r.httpClient,
		RateLimit:    api.RateLimit,
		MaxRetries:   api.MaxRetries,
		RetryBackoff: api.RetryBackoff(),
		Market:       r.config.Credentials.Spotify.Market,
		Logger:       r.logger,
	})
	if err := svc.Authenticate(ctx, res.Token); err != nil {
		return nil, err
	}

	r.logger.Debug("spotify client ready", "token_source", res.Source)
	r.spotify = svc
	return svc, nil
}

// dashboard builds a [tasks.Dashboard] over the authenticated client for the given time range.
func (r *Runner) dashboard(ctx context.Context, timeRange string) (*tasks.Dashboard, error) {
	tr, err := services.ParseTimeRange(timeRange)
	if err != nil {
		return nil, err
	}

	svc, err := r.service(ctx)
	if err != nil {
		return nil, err
	}

	return tasks.NewDashboard(svc, tasks.DashboardOpts{
		PageSize:    r.config.API.PageSize,
		Concurrency: r.config.API.Concurrency,
		TimeRange:   tr,
		Logger:      r.logger,
	}), nil
}

// withReauth runs fn and, when the token is missing or expired and --reauth is set, logs in once and retries.
func (r *Runner) withReauth(ctx context.Context, fn func() error) error {
	err := fn()
	if !shared.IsUnauthenticated(err) {
		return err
	}

	if !r.reauth {
		return fmt.Errorf("%w (run `spotboard auth login` or pass --reauth)", err)
	}

	r.writePlainln("⚠ Authentication token missing or expired. Starting login...")
	if err := r.login(ctx); err != nil {
		return fmt.Errorf("reauthorization failed: %w", err)
	}

	r.spotify = nil
	r.writePlain("✓ Logged in. Retrying...\n\n")
	return fn()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
