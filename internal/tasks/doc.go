// Package tasks holds the data-shaping logic the dashboard views consume.
//
// Views never talk to the API directly; they go through [Dashboard], which composes:
//   - [FetchUpTo] : follows cursor-based listings page by page up to a bounded item count
//   - [RankAlbums] : derives top albums from ranked tracks (rank r contributes 101-r)
//   - [MergeFeatures] : batch-fetches audio features and unions them into a [models.FeatureSet]
//   - preview resolvers ([TrackPreview], [ArtistPreview], [AlbumPreview], [PlaylistPreview])
//     that feed the playback coordinator
//
// Each piece depends on a narrow capability interface ([PageSource], [Catalog], [FeatureSource],
// [Recommender], [Library]) so tests can substitute fakes for [services.SpotifyService].
//
// Long-running operations emit [ProgressUpdate] values on an optional channel. Sends never block.
//
// Read paths degrade: partial failures are logged and partial or empty data is returned with a nil
// error, except authentication failures, which are returned so views can ask the user to log in.
// Write paths wrap failures in [shared.ErrMutationFailed].
package tasks
