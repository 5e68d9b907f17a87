package auth

import (
	"fmt"

	"golang.org/x/oauth2"
)

const spotifyAuthURL = "https://accounts.spotify.com/authorize"

// DefaultScopes are requested when the config lists none.
var DefaultScopes = []string{
	"user-top-read",
	"playlist-modify-public",
	"playlist-modify-private",
	"playlist-read-collaborative",
	"playlist-read-private",
	"user-library-modify",
	"user-library-read",
}

// AuthorizeURL builds the implicit grant authorization URL. Spotify redirects to
// redirectURI with the token in the fragment.
func AuthorizeURL(clientID, redirectURI string, scopes []string, state string) (string, error) {
	if clientID == "" {
		return "", fmt.Errorf("missing client_id")
	}
	if redirectURI == "" {
		return "", fmt.Errorf("missing redirect_uri")
	}
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	config := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes:      scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: spotifyAuthURL},
	}

	return config.AuthCodeURL(state, oauth2.SetAuthURLParam("response_type", "token")), nil
}
