package tasks

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/desertthunder/spotboard/internal/models"
	"github.com/desertthunder/spotboard/internal/shared"
)

// recordingFetcher returns features for every requested id and records each batch.
type recordingFetcher struct {
	calls [][]string
	err   error
}

func (r *recordingFetcher) fetch(ctx context.Context, ids []string) ([]models.AudioFeatures, error) {
	r.calls = append(r.calls, append([]string(nil), ids...))
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.AudioFeatures, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.AudioFeatures{ID: id, Energy: 0.5})
	}
	return out, nil
}

func TestMergeFeatures(t *testing.T) {
	ctx := context.Background()

	t.Run("Additive", func(t *testing.T) {
		existing := models.FeatureSet{"a": {ID: "a", Valence: 0.9}}
		r := &recordingFetcher{}

		merged, err := MergeFeatures(ctx, existing, []string{"a", "b", "c"}, r.fetch)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if merged.Len() != 3 {
			t.Fatalf("expected 3 entries, got %d", merged.Len())
		}
		if f, _ := merged.Get("a"); f.Valence != 0.9 {
			t.Errorf("existing entry was replaced: %+v", f)
		}
		if !reflect.DeepEqual(r.calls, [][]string{{"b", "c"}}) {
			t.Errorf("expected only unknown ids fetched, got %v", r.calls)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		r := &recordingFetcher{}
		ids := []string{"a", "b"}

		first, err := MergeFeatures(ctx, nil, ids, r.fetch)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, err := MergeFeatures(ctx, first, ids, r.fetch)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(r.calls) != 1 {
			t.Errorf("expected second merge to skip fetching, got %d calls", len(r.calls))
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("expected identical sets, got %v and %v", first, second)
		}
	})

	t.Run("Failure Keeps Existing", func(t *testing.T) {
		existing := models.FeatureSet{"a": {ID: "a"}}
		r := &recordingFetcher{err: shared.ErrAPIRequest}

		merged, err := MergeFeatures(ctx, existing, []string{"b"}, r.fetch)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if !reflect.DeepEqual(merged, existing) {
			t.Errorf("expected existing unchanged, got %v", merged)
		}
	})

	t.Run("Batch Ceiling", func(t *testing.T) {
		ids := make([]string, MaxFeatureBatch+1)
		for i := range ids {
			ids[i] = fmt.Sprintf("id%d", i)
		}
		r := &recordingFetcher{}

		_, err := MergeFeatures(ctx, nil, ids, r.fetch)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if len(r.calls) != 0 {
			t.Errorf("expected no fetch, got %d", len(r.calls))
		}
	})

	t.Run("Known IDs Do Not Count Toward Ceiling", func(t *testing.T) {
		existing := models.FeatureSet{}
		ids := make([]string, 0, MaxFeatureBatch+10)
		for i := range MaxFeatureBatch + 10 {
			id := fmt.Sprintf("id%d", i)
			ids = append(ids, id)
			if i < 10 {
				existing[id] = models.AudioFeatures{ID: id}
			}
		}

		merged, err := MergeFeatures(ctx, existing, ids, (&recordingFetcher{}).fetch)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if merged.Len() != MaxFeatureBatch+10 {
			t.Errorf("expected %d entries, got %d", MaxFeatureBatch+10, merged.Len())
		}
	})

	t.Run("Does Not Mutate Existing", func(t *testing.T) {
		existing := models.FeatureSet{"a": {ID: "a"}}

		merged, err := MergeFeatures(ctx, existing, []string{"b"}, (&recordingFetcher{}).fetch)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if existing.Len() != 1 {
			t.Errorf("existing was mutated: %v", existing)
		}
		if merged.Len() != 2 {
			t.Errorf("expected 2 entries, got %d", merged.Len())
		}
	})

	t.Run("Blank And Duplicate IDs Dropped", func(t *testing.T) {
		r := &recordingFetcher{}

		if _, err := MergeFeatures(ctx, nil, []string{"", "a", "a", "b", ""}, r.fetch); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(r.calls, [][]string{{"a", "b"}}) {
			t.Errorf("unexpected batch %v", r.calls)
		}
	})

	t.Run("Entries Without ID Skipped", func(t *testing.T) {
		fetch := func(ctx context.Context, ids []string) ([]models.AudioFeatures, error) {
			return []models.AudioFeatures{{ID: ""}, {ID: "a"}}, nil
		}

		merged, err := MergeFeatures(ctx, nil, []string{"a"}, fetch)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := merged.Get(""); ok || merged.Len() != 1 {
			t.Errorf("unexpected set %v", merged)
		}
	})

	t.Run("Nothing To Fetch Returns Non-Nil", func(t *testing.T) {
		merged, err := MergeFeatures(ctx, nil, nil, (&recordingFetcher{}).fetch)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if merged == nil {
			t.Error("expected non-nil set")
		}
	})
}

func TestChunkIDs(t *testing.T) {
	tc := []struct {
		name string
		n    int
		size int
		want []int
	}{
		{name: "empty", n: 0, size: 100, want: []int{}},
		{name: "exact", n: 100, size: 100, want: []int{100}},
		{name: "remainder", n: 150, size: 100, want: []int{100, 50}},
		{name: "default size", n: 101, size: 0, want: []int{100, 1}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]string, tt.n)
			for i := range ids {
				ids[i] = fmt.Sprintf("id%d", i)
			}

			chunks := ChunkIDs(ids, tt.size)
			got := make([]int, 0, len(chunks))
			for _, c := range chunks {
				got = append(got, len(c))
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ChunkIDs() sizes = %v, want %v", got, tt.want)
			}
		})
	}
}
