package tasks

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotboard/internal/models"
	"github.com/desertthunder/spotboard/internal/services"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxRankedTracks caps the ranked input; rank 100 contributes 1 point.
	MaxRankedTracks = 100
	// MaxRankedAlbums caps the ranked output.
	MaxRankedAlbums = 20
)

// AlbumFetcher returns album detail for a track.
type AlbumFetcher func(ctx context.Context, track models.Track) (models.Album, error)

// RankOpts tunes [RankAlbums].
type RankOpts struct {
	Concurrency int // parallel detail fetches; <= 1 is sequential
	Limit       int // output length, at most [MaxRankedAlbums]
	Logger      *log.Logger
	Progress    chan<- ProgressUpdate
}

// RankAlbums derives an album ranking from ranked tracks.
//
// The track at 1-based position r adds 101-r to its album's score. Album detail comes from fetch;
// a failed fetch is logged and that track is skipped. Scores are accumulated in input order only
// after every fetch has settled, so the result does not depend on fetch completion order and ties
// keep first-encounter order. The result is sorted by descending score and truncated.
func RankAlbums(ctx context.Context, tracks []models.Track, fetch AlbumFetcher, opts RankOpts) []models.AlbumScore {
	if len(tracks) > MaxRankedTracks {
		tracks = tracks[:MaxRankedTracks]
	}

	limit := opts.Limit
	if limit <= 0 || limit > MaxRankedAlbums {
		limit = MaxRankedAlbums
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	details := fetchAlbumDetails(ctx, tracks, fetch, opts.Concurrency, logger, opts.Progress)

	sendProgress(opts.Progress, scoreAlbumsUpdate(len(details)))

	index := make(map[string]int)
	scores := make([]models.AlbumScore, 0)
	for i, album := range details {
		if album == nil {
			continue
		}

		rank := i + 1
		pos, seen := index[album.ID]
		if !seen {
			pos = len(scores)
			index[album.ID] = pos
			scores = append(scores, models.AlbumScore{Album: *album, Representative: tracks[i]})
		}
		scores[pos].Score += MaxRankedTracks + 1 - rank
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	if len(scores) > limit {
		scores = scores[:limit]
	}
	return scores
}

// fetchAlbumDetails runs fetch for every track with bounded concurrency and returns the albums by input index.
// Failed or id-less entries are nil.
func fetchAlbumDetails(
	ctx context.Context,
	tracks []models.Track,
	fetch AlbumFetcher,
	concurrency int,
	logger *log.Logger,
	progress chan<- ProgressUpdate,
) []*models.Album {
	details := make([]*models.Album, len(tracks))
	total := len(tracks)

	var g errgroup.Group
	g.SetLimit(max(concurrency, 1))

	var settled atomic.Int32
	for i, track := range tracks {
		g.Go(func() error {
			album, err := fetch(ctx, track)
			step := int(settled.Add(1))

			if err == nil && album.ID == "" {
				err = fmt.Errorf("track %s has no album", track.ID)
			}
			if err != nil {
				logger.Warn("skipping album detail", "track", track.ID, "rank", i+1, "error", err)
				sendProgress(progress, albumSkippedUpdate(step, total, track.ID, err))
				return nil
			}

			details[i] = &album
			sendProgress(progress, albumFetchedUpdate(step, total, album.Name))
			return nil
		})
	}
	_ = g.Wait()

	return details
}

// TrackAlbumFetcher looks up album detail through the track endpoint.
func TrackAlbumFetcher(catalog Catalog) AlbumFetcher {
	return func(ctx context.Context, track models.Track) (models.Album, error) {
		detail, err := catalog.Track(ctx, track.ID)
		if err != nil {
			return models.Album{}, err
		}
		return services.ToAlbum(detail.Album), nil
	}
}
