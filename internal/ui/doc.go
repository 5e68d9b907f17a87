// Package ui implements the interactive dashboard using bubbletea's Elm architecture.
//
// The dashboard has five tabs:
//  1. [TopTracksView] : the user's top tracks for the selected time range
//  2. [TopArtistsView] : the user's top artists
//  3. [TopAlbumsView] : albums ranked from the top 100 tracks
//  4. [SearchTracksView] : catalog track search
//  5. [SearchPlaylistsView] : catalog playlist search
//
// The [Model] implements the standard Init/Update/View pattern, receiving messages via the Msg union type.
// Album ranking progress and playback state changes flow through channels, so neither the ranking
// workers nor the playback coordinator ever block on the UI.
//
// Previews are played through a [playback.Coordinator]; pressing p on the item that is playing stops it.
// Keyboard navigation uses vim-style bindings with contextual help displayed via charmbracelet/bubbles/help.
package ui
