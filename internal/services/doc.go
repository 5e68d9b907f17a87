// Package services implements [SpotifyService], the Spotify Web API client behind every dashboard view.
//
// # Authentication
//
// The implicit grant yields a bare access token with no refresh token. [SpotifyService.Authenticate]
// wraps it in an [oauth2.StaticTokenSource] so every request carries the bearer header through an
// [oauth2.Transport]. A 401 response is reported as [shared.ErrTokenExpired].
//
// # Transport
//
// Requests pass through a client-side [rate.Limiter] and are retried with exponential backoff on
// transport errors, 429 and 5xx responses. A Retry-After header overrides the computed delay.
//
// # Listings
//
// Listing endpoints return a [Paging] envelope whose Next field is an absolute URL. [SpotifyService.Page]
// fetches one page for a relative endpoint or an absolute next URL; search responses are unwrapped by key.
// Cursor following lives in the tasks package.
//
// # Error Handling
//
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : the API rejected the token (401)
//   - [shared.ErrAPIRequest] : transport failure or any other non-2xx status
//
// # API Mappings
//
// Wire types (Spotify*) are converted with [ToTrack], [ToAlbum], [ToArtist], [ToPlaylist],
// [ToUser] and [ToAudioFeatures]. Playlist descriptions are reduced from HTML to text.
package services
