// Package models defines the domain entities shown by the spotboard dashboard.
//
// The types are transient: each view fetches them through the services package and
// discards them on navigation. Nothing here is persisted except the bearer token,
// which lives in the auth package as a plain string.
//
//   - [Track] : a ranked track with an optional 30 second preview URL
//   - [Album], [AlbumRef] : album metadata, and the slim reference embedded in tracks
//   - [AlbumScore] : an album with the score derived from its tracks' ranks
//   - [Artist], [Playlist], [User] : catalog and profile entities
//   - [AudioFeatures], [FeatureSet] : numeric descriptors keyed by track id
package models
