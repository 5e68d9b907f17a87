package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotboard/internal/models"
	"github.com/desertthunder/spotboard/internal/services"
	"github.com/desertthunder/spotboard/internal/shared"
)

// DashboardOpts configures a [Dashboard].
type DashboardOpts struct {
	PageSize    int
	Concurrency int
	TimeRange   services.TimeRange
	Logger      *log.Logger
}

// Dashboard is the view-facing facade over the Spotify API.
type Dashboard struct {
	api    Spotify
	opts   DashboardOpts
	logger *log.Logger
}

// NewDashboard creates a [Dashboard] over api.
func NewDashboard(api Spotify, opts DashboardOpts) *Dashboard {
	if opts.PageSize <= 0 {
		opts.PageSize = MaxPageSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.TimeRange == "" {
		opts.TimeRange = services.MediumTerm
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Dashboard{api: api, opts: opts, logger: logger}
}

// WithTimeRange returns a copy of the dashboard using tr for top items.
func (d *Dashboard) WithTimeRange(tr services.TimeRange) *Dashboard {
	opts := d.opts
	opts.TimeRange = tr
	return &Dashboard{api: d.api, opts: opts, logger: d.logger}
}

// TimeRange returns the window used for top items.
func (d *Dashboard) TimeRange() services.TimeRange {
	return d.opts.TimeRange
}

// Catalog exposes the catalog for preview resolution.
func (d *Dashboard) Catalog() Catalog {
	return d.api
}

// degrade turns a read-path failure into a log entry, keeping only authentication failures as errors.
func (d *Dashboard) degrade(what string, err error) error {
	if err == nil {
		return nil
	}
	if shared.IsUnauthenticated(err) || errors.Is(err, context.Canceled) {
		return err
	}
	d.logger.Warn("partial result", "view", what, "error", err)
	return nil
}

// TopTracks returns up to limit of the user's top tracks, ranked from 1.
func (d *Dashboard) TopTracks(ctx context.Context, limit int) ([]models.Track, error) {
	raw, err := FetchUpTo[services.SpotifyTrack](ctx, d.api, services.TopTracksEndpoint(d.opts.TimeRange), "", limit, d.opts.PageSize)
	return services.ToTracks(raw), d.degrade("top tracks", err)
}

// TopArtists returns up to limit of the user's top artists, ranked from 1.
func (d *Dashboard) TopArtists(ctx context.Context, limit int) ([]models.Artist, error) {
	raw, err := FetchUpTo[services.SpotifyArtist](ctx, d.api, services.TopArtistsEndpoint(d.opts.TimeRange), "", limit, d.opts.PageSize)

	artists := make([]models.Artist, 0, len(raw))
	for i, a := range raw {
		artists = append(artists, services.ToArtist(a, i+1))
	}
	return artists, d.degrade("top artists", err)
}

// TopAlbums ranks albums from the user's top 100 tracks.
func (d *Dashboard) TopAlbums(ctx context.Context, progress chan<- ProgressUpdate) ([]models.AlbumScore, error) {
	sendProgress(progress, fetchPagesUpdate(1, 1, "top tracks"))

	tracks, err := d.TopTracks(ctx, MaxRankedTracks)
	if err != nil {
		return []models.AlbumScore{}, err
	}

	// the first authentication failure among the detail fetches is reported instead of an empty ranking
	var (
		once    sync.Once
		authErr error
	)
	base := TrackAlbumFetcher(d.api)
	fetch := func(ctx context.Context, track models.Track) (models.Album, error) {
		album, err := base(ctx, track)
		if shared.IsUnauthenticated(err) {
			once.Do(func() { authErr = err })
		}
		return album, err
	}

	scores := RankAlbums(ctx, tracks, fetch, RankOpts{
		Concurrency: d.opts.Concurrency,
		Logger:      d.logger.With("component", "albums"),
		Progress:    progress,
	})

	if len(scores) == 0 && authErr != nil {
		return scores, authErr
	}
	return scores, nil
}

// SearchTracks returns up to limit tracks matching query.
func (d *Dashboard) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Track{}, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	raw, err := FetchUpTo[services.SpotifyTrack](ctx, d.api, services.SearchEndpoint(query, services.SearchTracks), services.SearchKeyTracks, limit, d.opts.PageSize)
	return services.ToTracks(raw), d.degrade("search tracks", err)
}

// SearchPlaylists returns up to limit playlists matching query.
func (d *Dashboard) SearchPlaylists(ctx context.Context, query string, limit int) ([]models.Playlist, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Playlist{}, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	raw, err := FetchUpTo[*services.SpotifySimplePlaylist](ctx, d.api, services.SearchEndpoint(query, services.SearchPlaylists), services.SearchKeyPlaylists, limit, d.opts.PageSize)

	playlists := make([]models.Playlist, 0, len(raw))
	for _, p := range raw {
		// search can return null entries
		if p == nil || p.ID == "" {
			continue
		}
		playlists = append(playlists, services.ToPlaylist(*p))
	}
	return playlists, d.degrade("search playlists", err)
}

// Recommendations returns tracks seeded by up to five track ids.
func (d *Dashboard) Recommendations(ctx context.Context, seedIDs []string, limit int) ([]models.Track, error) {
	seeds := make([]string, 0, services.MaxSeeds)
	for _, id := range seedIDs {
		if id = strings.TrimSpace(id); id != "" && len(seeds) < services.MaxSeeds {
			seeds = append(seeds, id)
		}
	}
	if len(seeds) == 0 {
		return []models.Track{}, fmt.Errorf("%w: at least one seed track", shared.ErrMissingArgument)
	}

	raw, err := d.api.Recommendations(ctx, seeds, limit)
	return services.ToTracks(raw), d.degrade("recommendations", err)
}

// Features merges audio features for tracks into existing, chunking as needed.
// Chunks that fail are logged and skipped; the merge is never lossy.
func (d *Dashboard) Features(ctx context.Context, existing models.FeatureSet, tracks []models.Track, progress chan<- ProgressUpdate) (models.FeatureSet, error) {
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}

	fetch := ServiceFeatureFetcher(d.api)
	merged := existing.Clone()
	chunks := ChunkIDs(ids, MaxFeatureBatch)
	for i, chunk := range chunks {
		sendProgress(progress, fetchFeaturesUpdate(i+1, len(chunks), len(chunk)))
		next, err := MergeFeatures(ctx, merged, chunk, fetch)
		if err := d.degrade("audio features", err); err != nil {
			return merged, err
		}
		merged = next
		d.logger.Debug("merged audio features", "chunk", i+1, "of", len(chunks), "entries", merged.Len())
	}
	return merged, nil
}

// LikeTrack saves a track to the user's library.
func (d *Dashboard) LikeTrack(ctx context.Context, trackID string) error {
	if trackID == "" {
		return fmt.Errorf("%w: %w: track id", shared.ErrMutationFailed, shared.ErrMissingArgument)
	}
	if err := d.api.SaveTracks(ctx, []string{trackID}); err != nil {
		return fmt.Errorf("%w: like track %s: %w", shared.ErrMutationFailed, trackID, err)
	}
	return nil
}

// FollowPlaylist follows a playlist.
func (d *Dashboard) FollowPlaylist(ctx context.Context, playlistID string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: %w: playlist id", shared.ErrMutationFailed, shared.ErrMissingArgument)
	}
	if err := d.api.FollowPlaylist(ctx, playlistID); err != nil {
		return fmt.Errorf("%w: follow playlist %s: %w", shared.ErrMutationFailed, playlistID, err)
	}
	return nil
}
