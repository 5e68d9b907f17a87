package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotboard/internal/models"
	"github.com/desertthunder/spotboard/internal/shared"
	"github.com/desertthunder/spotboard/internal/tasks"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = artistItem{}
	_ list.Item = albumItem{}
	_ list.Item = playlistItem{}
)

// playable is an item the coordinator can play; id is unique across kinds within a view.
type playable interface {
	list.Item
	id() string
	resolver(catalog tasks.Catalog) tasks.PreviewResolver
	withPlaying(bool) list.Item
}

const playingMark = "▶ "

func mark(title string, playing bool) string {
	if playing {
		return playingMark + title
	}
	return title
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track   models.Track
	playing bool
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string {
	return mark(fmt.Sprintf("%d. %s", i.track.Rank, i.track.Name), i.playing)
}
func (i trackItem) Description() string {
	desc := shared.JoinNames(i.track.Artists)
	if i.track.Album.Name != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album.Name)
	}
	return desc
}
func (i trackItem) id() string { return i.track.ID }
func (i trackItem) resolver(c tasks.Catalog) tasks.PreviewResolver {
	return tasks.TrackPreview(c, i.track)
}
func (i trackItem) withPlaying(p bool) list.Item { i.playing = p; return i }

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	artist  models.Artist
	playing bool
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string {
	return mark(fmt.Sprintf("%d. %s", i.artist.Rank, i.artist.Name), i.playing)
}
func (i artistItem) Description() string {
	desc := fmt.Sprintf("popularity %d", i.artist.Popularity)
	if len(i.artist.Genres) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, shared.JoinNames(i.artist.Genres))
	}
	return desc
}
func (i artistItem) id() string { return i.artist.ID }
func (i artistItem) resolver(c tasks.Catalog) tasks.PreviewResolver {
	return tasks.ArtistPreview(c, i.artist.ID)
}
func (i artistItem) withPlaying(p bool) list.Item { i.playing = p; return i }

// albumItem wraps [models.AlbumScore] to implement [list.Item].
type albumItem struct {
	score   models.AlbumScore
	rank    int
	playing bool
}

func (i albumItem) FilterValue() string { return i.score.Album.Name }
func (i albumItem) Title() string {
	return mark(fmt.Sprintf("%d. %s", i.rank, i.score.Album.Name), i.playing)
}
func (i albumItem) Description() string {
	desc := fmt.Sprintf("score %d", i.score.Score)
	if artists := shared.JoinNames(i.score.Album.Artists); artists != "" {
		desc = fmt.Sprintf("%s • %s", desc, artists)
	}
	return desc
}
func (i albumItem) id() string { return i.score.Album.ID }

// resolver prefers the representative track, whose preview URL is usually already known.
func (i albumItem) resolver(c tasks.Catalog) tasks.PreviewResolver {
	if i.score.Representative.HasPreview() {
		return tasks.TrackPreview(c, i.score.Representative)
	}
	return tasks.AlbumPreview(c, i.score.Album.ID)
}
func (i albumItem) withPlaying(p bool) list.Item { i.playing = p; return i }

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
	playing  bool
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return mark(i.playlist.Name, i.playing) }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks • by %s", i.playlist.TrackCount, i.playlist.Owner)
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}
func (i playlistItem) id() string { return i.playlist.ID }
func (i playlistItem) resolver(c tasks.Catalog) tasks.PreviewResolver {
	return tasks.PlaylistPreview(c, i.playlist.ID)
}
func (i playlistItem) withPlaying(p bool) list.Item { i.playing = p; return i }
