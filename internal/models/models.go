package models

// Track is a track in a ranked source list (top tracks, search results, recommendations).
//
// PreviewURL may be empty; some listings omit it and require a detail fetch.
// Rank is the 1-based position in the source list.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      AlbumRef `json:"album"`
	PreviewURL string   `json:"preview_url,omitempty"`
	Rank       int      `json:"rank"`
	URI        string   `json:"uri,omitempty"`
	Popularity int      `json:"popularity"`
	DurationMS int      `json:"duration_ms"`
}

// HasPreview reports whether the track already carries a preview URL.
func (t Track) HasPreview() bool {
	return t.PreviewURL != ""
}

// AlbumRef is the album reference embedded in a track.
type AlbumRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Album holds album detail used by the top albums view.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	ImageURL    string   `json:"image_url,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
}

// AlbumScore is an album with its accumulated rank score.
//
// Representative is the highest-ranked contributing track; the rest are not retained.
type AlbumScore struct {
	Album          Album `json:"album"`
	Score          int   `json:"score"`
	Representative Track `json:"representative"`
}

// Artist represents a catalog artist.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	Popularity int      `json:"popularity"`
	Followers  int      `json:"followers"`
	Rank       int      `json:"rank"`
}

// Playlist represents a catalog playlist. Description is plain text.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner"`
	TrackCount  int    `json:"track_count"`
	ImageURL    string `json:"image_url,omitempty"`
}

// User is the authenticated user's profile.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`
	Product     string `json:"product,omitempty"`
}

// AudioFeatures holds the five descriptors for one track, each in [0, 1].
type AudioFeatures struct {
	ID               string  `json:"id"`
	Acousticness     float64 `json:"acousticness"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Instrumentalness float64 `json:"instrumentalness"`
	Valence          float64 `json:"valence"`
}

// Metric is a named descriptor value.
type Metric struct {
	Name  string
	Value float64
}

// Metrics returns the descriptors in display order.
func (f AudioFeatures) Metrics() []Metric {
	return []Metric{
		{Name: "Acousticness", Value: f.Acousticness},
		{Name: "Danceability", Value: f.Danceability},
		{Name: "Energy", Value: f.Energy},
		{Name: "Instrumentalness", Value: f.Instrumentalness},
		{Name: "Valence", Value: f.Valence},
	}
}

// FeatureSet maps track ids to their audio features.
type FeatureSet map[string]AudioFeatures

// Get returns the features for id, if present. Safe on a nil set.
func (s FeatureSet) Get(id string) (AudioFeatures, bool) {
	f, ok := s[id]
	return f, ok
}

// Len returns the number of entries.
func (s FeatureSet) Len() int {
	return len(s)
}

// Clone returns a shallow copy; never nil.
func (s FeatureSet) Clone() FeatureSet {
	out := make(FeatureSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
