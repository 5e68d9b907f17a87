package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotboard/internal/models"
	"github.com/desertthunder/spotboard/internal/services"
	"github.com/desertthunder/spotboard/internal/shared"
)

// MaxFeatureBatch is the audio features batch ceiling.
const MaxFeatureBatch = services.MaxFeatureIDs

// FeatureFetcher fetches audio features for one batch of ids.
type FeatureFetcher func(ctx context.Context, ids []string) ([]models.AudioFeatures, error)

// MergeFeatures fetches features for ids and returns a new set holding the union of existing and the fetched entries.
//
// Blank and duplicate ids are dropped, as are ids already present in existing. A batch larger than
// [MaxFeatureBatch] is rejected; use [ChunkIDs]. When the fetch fails existing is returned unchanged
// with the error. Fetched entries without an id are skipped.
func MergeFeatures(ctx context.Context, existing models.FeatureSet, ids []string, fetch FeatureFetcher) (models.FeatureSet, error) {
	batch := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := existing.Get(id); ok {
			continue
		}
		batch = append(batch, id)
	}

	if len(batch) > MaxFeatureBatch {
		return existing, fmt.Errorf("%w: %d ids exceeds batch ceiling of %d", shared.ErrInvalidInput, len(batch), MaxFeatureBatch)
	}
	if len(batch) == 0 {
		return existing.Clone(), nil
	}

	fetched, err := fetch(ctx, batch)
	if err != nil {
		return existing, err
	}

	merged := existing.Clone()
	for _, f := range fetched {
		if f.ID == "" {
			continue
		}
		merged[f.ID] = f
	}
	return merged, nil
}

// ChunkIDs splits ids into consecutive chunks of at most size.
func ChunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = MaxFeatureBatch
	}

	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// ServiceFeatureFetcher adapts a [FeatureSource] into a [FeatureFetcher].
func ServiceFeatureFetcher(src FeatureSource) FeatureFetcher {
	return func(ctx context.Context, ids []string) ([]models.AudioFeatures, error) {
		raw, err := src.AudioFeatures(ctx, ids)
		if err != nil {
			return nil, err
		}

		features := make([]models.AudioFeatures, 0, len(raw))
		for _, f := range raw {
			features = append(features, services.ToAudioFeatures(f))
		}
		return features, nil
	}
}
