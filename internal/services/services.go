// package services implements the Spotify Web API client used by every view
package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/spotboard/internal/shared"
)

// TimeRange selects the window used by personalized top items.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"  // roughly four weeks
	MediumTerm TimeRange = "medium_term" // roughly six months
	LongTerm   TimeRange = "long_term"   // about a year
)

// ParseTimeRange accepts short|medium|long with or without the _term suffix.
func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_term") {
	case "short":
		return ShortTerm, nil
	case "", "medium":
		return MediumTerm, nil
	case "long":
		return LongTerm, nil
	default:
		return "", fmt.Errorf("%w: time range %q (want short, medium or long)", shared.ErrInvalidArgument, s)
	}
}

// Search types and the keys their pages are wrapped under.
const (
	SearchTracks    = "track"
	SearchPlaylists = "playlist"

	SearchKeyTracks    = "tracks"
	SearchKeyPlaylists = "playlists"
)

// TopTracksEndpoint returns the listing endpoint for the user's top tracks.
func TopTracksEndpoint(tr TimeRange) string {
	return "/me/top/tracks?time_range=" + url.QueryEscape(string(tr))
}

// TopArtistsEndpoint returns the listing endpoint for the user's top artists.
func TopArtistsEndpoint(tr TimeRange) string {
	return "/me/top/artists?time_range=" + url.QueryEscape(string(tr))
}

// SearchEndpoint returns the search endpoint for query restricted to one type.
// The page is wrapped under the plural key; see [SpotifyService.Page].
func SearchEndpoint(query, kind string) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("type", kind)
	return "/search?" + v.Encode()
}
