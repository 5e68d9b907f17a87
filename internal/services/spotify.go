// Spotify Web API client
//
// Response types follow https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotboard/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyBaseURL    = "https://api.spotify.com/v1"
	defaultMarket     = "US"
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
)

// SpotifyOpts configures a [SpotifyService]. Zero values fall back to defaults.
type SpotifyOpts struct {
	BaseURL      string
	HTTPClient   *http.Client // base client wrapped by the bearer transport
	RateLimit    float64      // requests per second; <= 0 disables limiting
	MaxRetries   int
	RetryBackoff time.Duration
	Market       string
	Logger       *log.Logger
}

// SpotifyService talks to the Spotify Web API with an implicit grant bearer token.
//
// There is no refresh: a 401 is reported as [shared.ErrTokenExpired] and the caller decides whether to log in again.
type SpotifyService struct {
	baseURL     string
	base        *http.Client
	httpClient  *http.Client
	token       string
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	market      string
	logger      *log.Logger
}

// NewSpotifyService creates an unauthenticated client; call [SpotifyService.Authenticate] before making requests.
func NewSpotifyService(opts SpotifyOpts) *SpotifyService {
	s := &SpotifyService{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		base:        opts.HTTPClient,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		maxRetries:  opts.MaxRetries,
		baseBackoff: opts.RetryBackoff,
		market:      opts.Market,
		logger:      opts.Logger,
	}

	if s.baseURL == "" {
		s.baseURL = spotifyBaseURL
	}
	if s.base == nil {
		s.base = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	if s.maxRetries <= 0 {
		s.maxRetries = defaultMaxRetries
	}
	if s.baseBackoff <= 0 {
		s.baseBackoff = defaultBackoff
	}
	if s.market == "" {
		s.market = defaultMarket
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	return s
}

// Authenticate installs the bearer token. Requests made afterwards carry it through an [oauth2.Transport].
func (s *SpotifyService) Authenticate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty access token", shared.ErrNotAuthenticated)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	clientCtx := context.WithValue(ctx, oauth2.HTTPClient, s.base)

	s.token = token
	s.httpClient = oauth2.NewClient(clientCtx, src)
	s.httpClient.Timeout = s.base.Timeout
	return nil
}

// Authenticated reports whether a token has been installed.
func (s *SpotifyService) Authenticated() bool {
	return s.httpClient != nil
}

// Market returns the market used for preview relinking and artist top tracks.
func (s *SpotifyService) Market() string {
	return s.market
}

// apiError is the error envelope returned by the Web API.
type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// resolveURL accepts absolute next-page URLs from the API as well as endpoints relative to the base URL.
func (s *SpotifyService) resolveURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return s.baseURL + endpoint
}

// send builds and performs one request (with retries) and returns the raw response.
func (s *SpotifyService) send(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	if !s.Authenticated() {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := s.resolveURL(endpoint)
	newRequest := func() (*http.Request, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}

	return s.doRequestWithRetry(ctx, newRequest)
}

// doRequest performs an authenticated request against the API and decodes the JSON response into result.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = data
	}

	resp, err := s.send(ctx, method, endpoint, payload)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(method, endpoint, resp.StatusCode, data)
	}

	if result == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// statusError maps a non-2xx response onto the error taxonomy.
func statusError(method, endpoint string, status int, body []byte) error {
	message := http.StatusText(status)
	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	if status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, message)
	}
	return fmt.Errorf("%w: %s %s: status %d: %s", shared.ErrAPIRequest, method, endpoint, status, message)
}

// Page fetches one listing page into out, which is normally a *[Paging].
//
// Search responses wrap the page in an object keyed by type ("tracks", "playlists"); key unwraps it.
func (s *SpotifyService) Page(ctx context.Context, ref, key string, out any) error {
	if key == "" {
		return s.doRequest(ctx, http.MethodGet, ref, nil, out)
	}

	var envelope map[string]json.RawMessage
	if err := s.doRequest(ctx, http.MethodGet, ref, nil, &envelope); err != nil {
		return err
	}

	raw, ok := envelope[key]
	if !ok {
		return fmt.Errorf("%w: response has no %q listing", shared.ErrAPIRequest, key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: failed to decode %s listing: %v", shared.ErrAPIRequest, key, err)
	}
	return nil
}
