package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Token       TokenConfig       `toml:"token"`
	Server      ServerConfig      `toml:"server"`
	API         APIConfig         `toml:"api"`
	Playback    PlaybackConfig    `toml:"playback"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the Spotify app settings used for the implicit grant login.
//
// The implicit grant never sees a client secret, so none is configured.
type SpotifyConfig struct {
	ClientID    string   `toml:"client_id"`
	RedirectURI string   `toml:"redirect_uri"`
	Market      string   `toml:"market"`
	Scopes      []string `toml:"scopes"`
}

// TokenConfig selects the durable store for the bearer token.
type TokenConfig struct {
	Backend string `toml:"backend"` // sqlite or bolt
	Path    string `toml:"path"`
}

// ServerConfig contains settings for the local login callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// APIConfig tunes the Spotify Web API client.
type APIConfig struct {
	BaseURL        string  `toml:"base_url"`
	RateLimit      float64 `toml:"rate_limit"`
	MaxRetries     int     `toml:"max_retries"`
	RetryBackoffMS int     `toml:"retry_backoff_ms"`
	PageSize       int     `toml:"page_size"`
	Concurrency    int     `toml:"concurrency"`
}

// RetryBackoff returns the base retry backoff as a [time.Duration].
func (c APIConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// PlaybackConfig selects the audio output used for previews.
type PlaybackConfig struct {
	Player     string `toml:"player"` // mpv or none
	MpvPath    string `toml:"mpv_path"`
	SocketPath string `toml:"socket_path"`
}

// Addr returns the host:port the callback server listens on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads the given dotenv files (missing files are ignored) and overrides config values
// with any SPOTBOARD_* variables present in the environment.
func ApplyEnv(config *Config, files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, f, err)
		}
	}

	overrides := map[string]*string{
		"SPOTBOARD_CLIENT_ID":     &config.Credentials.Spotify.ClientID,
		"SPOTBOARD_REDIRECT_URI":  &config.Credentials.Spotify.RedirectURI,
		"SPOTBOARD_MARKET":        &config.Credentials.Spotify.Market,
		"SPOTBOARD_TOKEN_BACKEND": &config.Token.Backend,
		"SPOTBOARD_TOKEN_PATH":    &config.Token.Path,
		"SPOTBOARD_PLAYER":        &config.Playback.Player,
		"SPOTBOARD_API_BASE_URL":  &config.API.BaseURL,
	}
	for key, target := range overrides {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*target = v
		}
	}

	return nil
}

// Validate reports configuration problems that would make login impossible.
func (c *Config) Validate() error {
	spotify := c.Credentials.Spotify
	if spotify.ClientID == "" || spotify.ClientID == "your_spotify_client_id" {
		return fmt.Errorf("%w: credentials.spotify.client_id must be set", ErrMissingCredentials)
	}
	if spotify.RedirectURI == "" {
		return fmt.Errorf("%w: credentials.spotify.redirect_uri must be set", ErrInvalidConfig)
	}
	switch c.Token.Backend {
	case "sqlite", "bolt":
	default:
		return fmt.Errorf("%w: unknown token backend %q", ErrInvalidConfig, c.Token.Backend)
	}
	return nil
}
