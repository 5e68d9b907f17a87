package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/desertthunder/spotboard/internal/services"
)

// fakeSpotify serves canned listings and catalog lookups.
//
// Listing pages are keyed by call order: the i-th Page call returns pages[i].
type fakeSpotify struct {
	mu sync.Mutex

	pages    [][]any
	pageErrs map[int]error // page index -> error
	refs     []string
	keys     []string

	tracks   map[string]services.SpotifyTrack
	trackErr map[string]error
	detail   int

	artistTop     map[string][]services.SpotifyTrack
	albumTracks   map[string][]services.SpotifyTrack
	playlistItems map[string][]services.SpotifyTrack

	features     map[string]services.SpotifyAudioFeatures
	featureErr   error
	featureCalls [][]string

	recommendations []services.SpotifyTrack
	recErr          error

	saveErr   error
	followErr error
	saved     []string
	followed  []string
}

func (f *fakeSpotify) Page(ctx context.Context, ref, key string, out any) error {
	f.mu.Lock()
	i := len(f.refs)
	f.refs = append(f.refs, ref)
	f.keys = append(f.keys, key)
	f.mu.Unlock()

	if err, ok := f.pageErrs[i]; ok {
		return err
	}
	if i >= len(f.pages) {
		return fmt.Errorf("unexpected page request %d", i)
	}

	page := map[string]any{"items": f.pages[i], "next": nil}
	if i+1 < len(f.pages) {
		page["next"] = fmt.Sprintf("https://api.test/next?page=%d", i+1)
	}

	data, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (f *fakeSpotify) Track(ctx context.Context, trackID string) (*services.SpotifyTrack, error) {
	f.mu.Lock()
	f.detail++
	f.mu.Unlock()

	if err := f.trackErr[trackID]; err != nil {
		return nil, err
	}
	t, ok := f.tracks[trackID]
	if !ok {
		return nil, fmt.Errorf("track %s not found", trackID)
	}
	return &t, nil
}

func (f *fakeSpotify) detailCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detail
}

func (f *fakeSpotify) AlbumTracks(ctx context.Context, albumID string, limit int) ([]services.SpotifyTrack, error) {
	return f.albumTracks[albumID], nil
}

func (f *fakeSpotify) ArtistTopTracks(ctx context.Context, artistID string) ([]services.SpotifyTrack, error) {
	tracks, ok := f.artistTop[artistID]
	if !ok {
		return nil, fmt.Errorf("artist %s not found", artistID)
	}
	return tracks, nil
}

func (f *fakeSpotify) PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]services.SpotifyTrack, error) {
	return f.playlistItems[playlistID], nil
}

func (f *fakeSpotify) AudioFeatures(ctx context.Context, trackIDs []string) ([]services.SpotifyAudioFeatures, error) {
	f.mu.Lock()
	f.featureCalls = append(f.featureCalls, append([]string(nil), trackIDs...))
	f.mu.Unlock()

	if f.featureErr != nil {
		return nil, f.featureErr
	}
	out := make([]services.SpotifyAudioFeatures, 0, len(trackIDs))
	for _, id := range trackIDs {
		if feat, ok := f.features[id]; ok {
			out = append(out, feat)
		}
	}
	return out, nil
}

func (f *fakeSpotify) Recommendations(ctx context.Context, seedTrackIDs []string, limit int) ([]services.SpotifyTrack, error) {
	return f.recommendations, f.recErr
}

func (f *fakeSpotify) SaveTracks(ctx context.Context, trackIDs []string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, trackIDs...)
	return nil
}

func (f *fakeSpotify) FollowPlaylist(ctx context.Context, playlistID string) error {
	if f.followErr != nil {
		return f.followErr
	}
	f.followed = append(f.followed, playlistID)
	return nil
}

// trackItems builds listing items for the given ids.
func trackItems(ids ...string) []any {
	items := make([]any, 0, len(ids))
	for _, id := range ids {
		items = append(items, map[string]any{"id": id, "name": "Track " + id})
	}
	return items
}

// trackOnAlbum builds a track detail on the given album.
func trackOnAlbum(trackID, albumID string) services.SpotifyTrack {
	return services.SpotifyTrack{
		ID:    trackID,
		Name:  "Track " + trackID,
		Album: services.SpotifyAlbum{ID: albumID, Name: "Album " + albumID},
	}
}
