package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/spotboard/internal/services"
)

func ids(tracks []services.SpotifyTrack) string {
	parts := make([]string, 0, len(tracks))
	for _, t := range tracks {
		parts = append(parts, t.ID)
	}
	return strings.Join(parts, ",")
}

func TestFetchUpTo(t *testing.T) {
	ctx := context.Background()
	threePages := func() *fakeSpotify {
		return &fakeSpotify{pages: [][]any{
			trackItems("a", "b"),
			trackItems("c", "d"),
			trackItems("e", "f"),
		}}
	}

	t.Run("Truncates To Max", func(t *testing.T) {
		src := threePages()

		items, err := FetchUpTo[services.SpotifyTrack](ctx, src, "/me/top/tracks", "", 5, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := ids(items); got != "a,b,c,d,e" {
			t.Errorf("expected a,b,c,d,e in order, got %s", got)
		}
		if len(src.refs) != 3 {
			t.Errorf("expected 3 page requests, got %d", len(src.refs))
		}
	})

	t.Run("Stops Requesting At Max", func(t *testing.T) {
		src := threePages()

		items, err := FetchUpTo[services.SpotifyTrack](ctx, src, "/me/top/tracks", "", 4, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 4 {
			t.Errorf("expected 4 items, got %d", len(items))
		}
		if len(src.refs) != 2 {
			t.Errorf("expected no request after reaching max, got %d requests", len(src.refs))
		}
	})

	t.Run("Fewer Available Than Max", func(t *testing.T) {
		src := threePages()

		items, err := FetchUpTo[services.SpotifyTrack](ctx, src, "/me/top/tracks", "", 100, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 6 {
			t.Errorf("expected all 6 items, got %d", len(items))
		}
	})

	t.Run("Follows Next References", func(t *testing.T) {
		src := threePages()

		FetchUpTo[services.SpotifyTrack](ctx, src, "/me/top/tracks?time_range=short_term", "", 6, 2)

		if !strings.Contains(src.refs[0], "limit=2") || !strings.Contains(src.refs[0], "time_range=short_term") {
			t.Errorf("first request should carry limit and original query, got %s", src.refs[0])
		}
		if src.refs[1] != "https://api.test/next?page=1" || src.refs[2] != "https://api.test/next?page=2" {
			t.Errorf("expected next references to be followed verbatim, got %v", src.refs[1:])
		}
	})

	t.Run("Partial Result On Failure", func(t *testing.T) {
		src := threePages()
		src.pageErrs = map[int]error{1: errors.New("boom")}

		items, err := FetchUpTo[services.SpotifyTrack](ctx, src, "/me/top/tracks", "", 6, 2)
		if err == nil {
			t.Fatal("expected error to be reported")
		}
		if got := ids(items); got != "a,b" {
			t.Errorf("expected first page to be kept, got %s", got)
		}
		if len(src.refs) != 2 {
			t.Errorf("expected loop to stop after failure, got %d requests", len(src.refs))
		}
	})

	t.Run("First Page Failure Is Empty Not Nil", func(t *testing.T) {
		src := threePages()
		src.pageErrs = map[int]error{0: errors.New("boom")}

		items, err := FetchUpTo[services.SpotifyTrack](ctx, src, "/me/top/tracks", "", 6, 2)
		if err == nil {
			t.Fatal("expected error to be reported")
		}
		if items == nil || len(items) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", items)
		}
	})

	t.Run("Non Positive Max", func(t *testing.T) {
		src := threePages()

		items, err := FetchUpTo[services.SpotifyTrack](ctx, src, "/me/top/tracks", "", 0, 2)
		if err != nil || items == nil || len(items) != 0 {
			t.Errorf("expected empty result, got %v err=%v", items, err)
		}
		if len(src.refs) != 0 {
			t.Errorf("expected no requests, got %d", len(src.refs))
		}
	})

	t.Run("Page Size Clamped", func(t *testing.T) {
		src := &fakeSpotify{pages: [][]any{trackItems("a")}}

		FetchUpTo[services.SpotifyTrack](ctx, src, "/search?q=x&type=track", "tracks", 10, 500)

		if !strings.Contains(src.refs[0], "limit=50") {
			t.Errorf("expected page size clamped to 50, got %s", src.refs[0])
		}
		if src.keys[0] != "tracks" {
			t.Errorf("expected key to be passed through, got %q", src.keys[0])
		}
	})

	t.Run("Empty Page Stops", func(t *testing.T) {
		src := &fakeSpotify{pages: [][]any{trackItems("a"), {}, trackItems("b")}}

		items, _ := FetchUpTo[services.SpotifyTrack](ctx, src, "/me/top/tracks", "", 10, 1)
		if len(items) != 1 || len(src.refs) != 2 {
			t.Errorf("expected to stop at empty page, got %d items and %d requests", len(items), len(src.refs))
		}
	})
}
