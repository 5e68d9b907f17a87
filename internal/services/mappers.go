package services

import (
	"strings"

	"github.com/desertthunder/spotboard/internal/models"
	"golang.org/x/net/html"
)

func firstImage(images []SpotifyImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func artistNames(artists []SpotifyArtist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}

// ToTrack converts a [SpotifyTrack] at 1-based rank into a [models.Track].
func ToTrack(t SpotifyTrack, rank int) models.Track {
	return models.Track{
		ID:      t.ID,
		Name:    t.Name,
		Artists: artistNames(t.Artists),
		Album: models.AlbumRef{
			ID:       t.Album.ID,
			Name:     t.Album.Name,
			ImageURL: firstImage(t.Album.Images),
		},
		PreviewURL: t.PreviewURL,
		Rank:       rank,
		URI:        t.URI,
		Popularity: t.Popularity,
		DurationMS: t.DurationMS,
	}
}

// ToTracks converts a ranked listing, assigning ranks from 1.
func ToTracks(tracks []SpotifyTrack) []models.Track {
	out := make([]models.Track, 0, len(tracks))
	for i, t := range tracks {
		out = append(out, ToTrack(t, i+1))
	}
	return out
}

// ToAlbum converts a [SpotifyAlbum] into a [models.Album].
func ToAlbum(a SpotifyAlbum) models.Album {
	return models.Album{
		ID:          a.ID,
		Name:        a.Name,
		Artists:     artistNames(a.Artists),
		ImageURL:    firstImage(a.Images),
		ReleaseDate: a.ReleaseDate,
	}
}

// ToArtist converts a [SpotifyArtist] at 1-based rank into a [models.Artist].
func ToArtist(a SpotifyArtist, rank int) models.Artist {
	return models.Artist{
		ID:         a.ID,
		Name:       a.Name,
		Genres:     a.Genres,
		ImageURL:   firstImage(a.Images),
		Popularity: a.Popularity,
		Followers:  a.Followers.Total,
		Rank:       rank,
	}
}

// ToPlaylist converts a [SpotifySimplePlaylist] into a [models.Playlist]. Descriptions arrive as HTML and are reduced to text.
func ToPlaylist(p SpotifySimplePlaylist) models.Playlist {
	owner := p.Owner.DisplayName
	if owner == "" {
		owner = p.Owner.ID
	}
	return models.Playlist{
		ID:          p.ID,
		Name:        p.Name,
		Description: StripHTML(p.Description),
		Owner:       owner,
		TrackCount:  p.Tracks.Total,
		ImageURL:    firstImage(p.Images),
	}
}

// ToUser converts a [SpotifyUser] into a [models.User].
func ToUser(u SpotifyUser) models.User {
	return models.User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Country:     u.Country,
		Product:     u.Product,
	}
}

// ToAudioFeatures keeps the five descriptors shown by the dashboard.
func ToAudioFeatures(f SpotifyAudioFeatures) models.AudioFeatures {
	return models.AudioFeatures{
		ID:               f.ID,
		Acousticness:     f.Acousticness,
		Danceability:     f.Danceability,
		Energy:           f.Energy,
		Instrumentalness: f.Instrumentalness,
		Valence:          f.Valence,
	}
}

// StripHTML returns the text content of an HTML fragment with entities decoded and whitespace collapsed.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}
