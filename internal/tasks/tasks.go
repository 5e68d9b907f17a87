package tasks

import (
	"context"

	"github.com/desertthunder/spotboard/internal/services"
)

// PageSource fetches one page of a cursor-based listing. ref is either a relative endpoint or an absolute next-page URL.
type PageSource interface {
	Page(ctx context.Context, ref, key string, out any) error
}

// Catalog looks up tracks and the listings previews are resolved from.
type Catalog interface {
	Track(ctx context.Context, trackID string) (*services.SpotifyTrack, error)
	AlbumTracks(ctx context.Context, albumID string, limit int) ([]services.SpotifyTrack, error)
	ArtistTopTracks(ctx context.Context, artistID string) ([]services.SpotifyTrack, error)
	PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]services.SpotifyTrack, error)
}

// FeatureSource batch-fetches audio features.
type FeatureSource interface {
	AudioFeatures(ctx context.Context, trackIDs []string) ([]services.SpotifyAudioFeatures, error)
}

// Recommender returns tracks seeded by other tracks.
type Recommender interface {
	Recommendations(ctx context.Context, seedTrackIDs []string, limit int) ([]services.SpotifyTrack, error)
}

// Library performs the user-initiated writes.
type Library interface {
	SaveTracks(ctx context.Context, trackIDs []string) error
	FollowPlaylist(ctx context.Context, playlistID string) error
}

// Spotify is everything the [Dashboard] needs; [services.SpotifyService] satisfies it.
type Spotify interface {
	PageSource
	Catalog
	FeatureSource
	Recommender
	Library
}

var _ Spotify = (*services.SpotifyService)(nil)

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
