package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotboard/internal/models"
	"github.com/desertthunder/spotboard/internal/services"
	"github.com/desertthunder/spotboard/internal/shared"
)

// PreviewResolver resolves the preview URL for one item. An empty URL means the item has no preview.
type PreviewResolver func(ctx context.Context) (string, error)

// PreviewKind is the kind of item a preview is resolved for.
type PreviewKind string

const (
	KindTrack    PreviewKind = "track"
	KindArtist   PreviewKind = "artist"
	KindAlbum    PreviewKind = "album"
	KindPlaylist PreviewKind = "playlist"
)

// ParsePreviewKind validates a kind name.
func ParsePreviewKind(s string) (PreviewKind, error) {
	switch k := PreviewKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindTrack, KindArtist, KindAlbum, KindPlaylist:
		return k, nil
	default:
		return "", fmt.Errorf("%w: preview kind %q", shared.ErrInvalidArgument, s)
	}
}

// TrackPreview uses the track's known preview URL, falling back to a track detail fetch.
// Search results often lack the URL.
func TrackPreview(catalog Catalog, track models.Track) PreviewResolver {
	return func(ctx context.Context) (string, error) {
		if track.HasPreview() {
			return track.PreviewURL, nil
		}
		detail, err := catalog.Track(ctx, track.ID)
		if err != nil {
			return "", err
		}
		return detail.PreviewURL, nil
	}
}

// ArtistPreview plays the first previewable track among the artist's top tracks.
func ArtistPreview(catalog Catalog, artistID string) PreviewResolver {
	return func(ctx context.Context) (string, error) {
		tracks, err := catalog.ArtistTopTracks(ctx, artistID)
		if err != nil {
			return "", err
		}
		return firstPreview(tracks), nil
	}
}

// AlbumPreview plays the first previewable track on the album.
func AlbumPreview(catalog Catalog, albumID string) PreviewResolver {
	return func(ctx context.Context) (string, error) {
		tracks, err := catalog.AlbumTracks(ctx, albumID, MaxPageSize)
		if err != nil {
			return "", err
		}
		return firstPreview(tracks), nil
	}
}

// PlaylistPreview plays the first previewable track in the playlist.
func PlaylistPreview(catalog Catalog, playlistID string) PreviewResolver {
	return func(ctx context.Context) (string, error) {
		tracks, err := catalog.PlaylistTracks(ctx, playlistID, MaxPageSize)
		if err != nil {
			return "", err
		}
		return firstPreview(tracks), nil
	}
}

// PreviewFor returns the resolver for an item identified only by kind and id.
func PreviewFor(catalog Catalog, kind PreviewKind, id string) (PreviewResolver, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty %s id", shared.ErrMissingArgument, kind)
	}

	switch kind {
	case KindTrack:
		return TrackPreview(catalog, models.Track{ID: id}), nil
	case KindArtist:
		return ArtistPreview(catalog, id), nil
	case KindAlbum:
		return AlbumPreview(catalog, id), nil
	case KindPlaylist:
		return PlaylistPreview(catalog, id), nil
	default:
		return nil, fmt.Errorf("%w: preview kind %q", shared.ErrInvalidArgument, kind)
	}
}

func firstPreview(tracks []services.SpotifyTrack) string {
	for _, t := range tracks {
		if t.PreviewURL != "" {
			return t.PreviewURL
		}
	}
	return ""
}
