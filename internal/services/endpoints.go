package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/spotboard/internal/shared"
)

const (
	// MaxFeatureIDs is the batch ceiling of the audio features endpoint.
	MaxFeatureIDs = 100
	// MaxSeeds is the seed ceiling of the recommendations endpoint.
	MaxSeeds = 5
	// MaxSaveIDs is the batch ceiling of the save tracks endpoint.
	MaxSaveIDs = 50
)

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Track retrieves a single track by ID. The market parameter makes the API return a playable preview where one exists.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	if trackID == "" {
		return nil, fmt.Errorf("%w: empty track id", shared.ErrInvalidInput)
	}

	var track SpotifyTrack
	endpoint := fmt.Sprintf("/tracks/%s?market=%s", url.PathEscape(trackID), url.QueryEscape(s.market))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// AlbumTracks retrieves the first page of an album's tracks. The returned tracks are simplified and carry no album.
func (s *SpotifyService) AlbumTracks(ctx context.Context, albumID string, limit int) ([]SpotifyTrack, error) {
	var page Paging[SpotifyTrack]
	endpoint := fmt.Sprintf("/albums/%s/tracks?limit=%d&market=%s", url.PathEscape(albumID), clampLimit(limit), url.QueryEscape(s.market))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ArtistTopTracks retrieves an artist's top tracks in the configured market.
func (s *SpotifyService) ArtistTopTracks(ctx context.Context, artistID string) ([]SpotifyTrack, error) {
	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}

	endpoint := fmt.Sprintf("/artists/%s/top-tracks?market=%s", url.PathEscape(artistID), url.QueryEscape(s.market))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return response.Tracks, nil
}

// PlaylistTracks retrieves the first page of a playlist's tracks, skipping removed or local items.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]SpotifyTrack, error) {
	var page Paging[SpotifyPlaylistTrack]
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&market=%s", url.PathEscape(playlistID), clampLimit(limit), url.QueryEscape(s.market))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}

	tracks := make([]SpotifyTrack, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Track != nil && item.Track.ID != "" {
			tracks = append(tracks, *item.Track)
		}
	}
	return tracks, nil
}

// AudioFeatures retrieves audio features for up to [MaxFeatureIDs] tracks.
// Tracks without analysis come back as null and are dropped.
func (s *SpotifyService) AudioFeatures(ctx context.Context, trackIDs []string) ([]SpotifyAudioFeatures, error) {
	if len(trackIDs) == 0 {
		return []SpotifyAudioFeatures{}, nil
	}
	if len(trackIDs) > MaxFeatureIDs {
		return nil, fmt.Errorf("%w: maximum %d track IDs allowed, got %d", shared.ErrInvalidInput, MaxFeatureIDs, len(trackIDs))
	}

	var response struct {
		AudioFeatures []*SpotifyAudioFeatures `json:"audio_features"`
	}

	endpoint := "/audio-features?ids=" + url.QueryEscape(strings.Join(trackIDs, ","))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	features := make([]SpotifyAudioFeatures, 0, len(response.AudioFeatures))
	for _, f := range response.AudioFeatures {
		if f != nil {
			features = append(features, *f)
		}
	}
	return features, nil
}

// Recommendations retrieves tracks seeded by up to [MaxSeeds] track ids.
func (s *SpotifyService) Recommendations(ctx context.Context, seedTrackIDs []string, limit int) ([]SpotifyTrack, error) {
	if len(seedTrackIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one seed track is required", shared.ErrMissingArgument)
	}
	if len(seedTrackIDs) > MaxSeeds {
		return nil, fmt.Errorf("%w: maximum %d seeds allowed, got %d", shared.ErrInvalidInput, MaxSeeds, len(seedTrackIDs))
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	v := url.Values{}
	v.Set("seed_tracks", strings.Join(seedTrackIDs, ","))
	v.Set("limit", strconv.Itoa(limit))
	v.Set("market", s.market)

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/recommendations?"+v.Encode(), nil, &response); err != nil {
		return nil, err
	}
	return response.Tracks, nil
}

// SaveTracks adds tracks to the user's library.
func (s *SpotifyService) SaveTracks(ctx context.Context, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrMissingArgument)
	}
	if len(trackIDs) > MaxSaveIDs {
		return fmt.Errorf("%w: maximum %d track IDs allowed", shared.ErrInvalidInput, MaxSaveIDs)
	}

	body := map[string][]string{"ids": trackIDs}
	return s.doRequest(ctx, http.MethodPut, "/me/tracks", body, nil)
}

// FollowPlaylist follows a playlist as the current user.
func (s *SpotifyService) FollowPlaylist(ctx context.Context, playlistID string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: empty playlist id", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s/followers", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPut, endpoint, map[string]bool{"public": true}, nil)
}

// clampLimit keeps page sizes within the API's 1..50 range.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 50:
		return 50
	default:
		return limit
	}
}
