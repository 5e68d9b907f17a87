package ui

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotboard/internal/models"
	"github.com/desertthunder/spotboard/internal/playback"
	"github.com/desertthunder/spotboard/internal/services"
	"github.com/desertthunder/spotboard/internal/tasks"
	tu "github.com/desertthunder/spotboard/internal/testing"
)

const topTracksJSON = `{"items":[
	{"id":"t1","name":"Windowlicker","artists":[{"id":"a1","name":"Aphex Twin"}],"album":{"id":"al1","name":"Windowlicker EP"},"preview_url":"https://p.scdn.co/t1.mp3"},
	{"id":"t2","name":"Avril 14th","artists":[{"id":"a1","name":"Aphex Twin"}],"album":{"id":"al2","name":"Drukqs"}}
],"next":null}`

const topArtistsJSON = `{"items":[{"id":"a1","name":"Aphex Twin","genres":["idm"],"popularity":70}],"next":null}`

const featuresJSON = `{"audio_features":[{"id":"t1","Energy":0.8,"danceability":0.6,"valence":0.4}]}`

const playlistsJSON = `{"playlists":{"items":[{"id":"pl1","name":"Warp Classics","owner":{"id":"u1","display_name":"warp"},"tracks":{"total":12}}],"next":null}}`

func newTestModel(t *testing.T, handler http.HandlerFunc) (*Model, *tu.FakeOutput) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api := services.NewSpotifyService(services.SpotifyOpts{
		BaseURL:      server.URL,
		HTTPClient:   server.Client(),
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	})
	if err := api.Authenticate(context.Background(), "test_token"); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}

	out := &tu.FakeOutput{}
	player := playback.NewCoordinator(out, nil)
	t.Cleanup(func() { player.Close() })

	dashboard := tasks.NewDashboard(api, tasks.DashboardOpts{TimeRange: services.MediumTerm})
	m := NewModel(context.Background(), dashboard, player)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, out
}

func spotifyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/me/top/tracks":
		w.Write([]byte(topTracksJSON))
	case r.URL.Path == "/me/top/artists":
		w.Write([]byte(topArtistsJSON))
	case r.URL.Path == "/audio-features":
		w.Write([]byte(featuresJSON))
	case r.URL.Path == "/search":
		w.Write([]byte(playlistsJSON))
	case r.URL.Path == "/me/tracks" && r.Method == http.MethodPut:
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// run executes cmd and feeds its message back into the model, returning the follow-up command.
func run(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	_, next := m.Update(msg)
	return next
}

// drain runs cmd, flattening batches, and returns every message produced.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, drain(c)...)
	}
	return msgs
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// featuresHandler answers /audio-features with one entry per requested id.
func featuresHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path != "/audio-features" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var entries []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		entries = append(entries, fmt.Sprintf(`{"id":%q,"energy":0.5}`, id))
	}
	fmt.Fprintf(w, `{"audio_features":[%s]}`, strings.Join(entries, ","))
}

func TestModel(t *testing.T) {
	t.Run("Loads Top Tracks", func(t *testing.T) {
		m, _ := newTestModel(t, spotifyHandler)

		msg := m.load(TopTracksView)()
		_, next := m.Update(msg)

		p := m.panes[TopTracksView]
		if !p.loaded || p.loading {
			t.Fatalf("expected loaded pane, got loaded=%v loading=%v", p.loaded, p.loading)
		}
		if got := len(p.list.Items()); got != 2 {
			t.Fatalf("expected 2 tracks, got %d", got)
		}
		if !strings.Contains(m.View(), "Windowlicker") {
			t.Error("expected track name in view")
		}

		if next == nil {
			t.Fatal("expected features merge command after tracks load")
		}
		for _, msg := range drain(next) {
			if msg, ok := msg.(Msg); ok && msg.kind == MsgFeaturesMerged {
				m.Update(msg)
			}
		}
		if _, ok := m.features.Get("t1"); !ok {
			t.Error("expected features for t1 after merge")
		}
		if !strings.Contains(m.View(), "Energy") {
			t.Error("expected feature bars in view")
		}
	})

	t.Run("Overlapping Feature Merges Keep Both Batches", func(t *testing.T) {
		for _, order := range []string{"first then second", "second then first"} {
			t.Run(order, func(t *testing.T) {
				m, _ := newTestModel(t, featuresHandler)

				first := m.mergeFeatures([]models.Track{{ID: "x"}})
				second := m.mergeFeatures([]models.Track{{ID: "y"}})
				msgs := []tea.Msg{first(), second()}
				if order == "second then first" {
					msgs[0], msgs[1] = msgs[1], msgs[0]
				}
				for _, msg := range msgs {
					m.Update(msg)
				}

				for _, id := range []string{"x", "y"} {
					if _, ok := m.features.Get(id); !ok {
						t.Errorf("expected features for %s, have %d entries", id, m.features.Len())
					}
				}
			})
		}
	})

	t.Run("Drops Superseded Loads", func(t *testing.T) {
		m, _ := newTestModel(t, spotifyHandler)

		stale := m.load(TopTracksView)
		fresh := m.load(TopTracksView)

		m.Update(stale())
		if m.panes[TopTracksView].loaded {
			t.Fatal("expected superseded load to be ignored")
		}

		m.Update(fresh())
		if !m.panes[TopTracksView].loaded {
			t.Error("expected latest load to apply")
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		m, _ := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"status":401,"message":"The access token expired"}}`))
		})

		run(t, m, m.load(TopTracksView))

		if !m.unauthenticated {
			t.Fatal("expected unauthenticated state")
		}
		if !strings.Contains(m.View(), "spotboard auth login") {
			t.Errorf("expected login prompt, got %q", m.View())
		}
	})

	t.Run("Empty Result", func(t *testing.T) {
		m, _ := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items":[],"next":null}`))
		})

		run(t, m, m.load(TopArtistsView))
		m.view = TopArtistsView

		if !strings.Contains(m.View(), "Nothing found.") {
			t.Errorf("expected empty state, got %q", m.View())
		}
	})

	t.Run("Loading Shows Spinner", func(t *testing.T) {
		m, _ := newTestModel(t, spotifyHandler)
		m.load(TopTracksView)

		if !strings.Contains(m.View(), "Loading...") {
			t.Errorf("expected loading text, got %q", m.View())
		}
	})

	t.Run("Tab Loads Next View Once", func(t *testing.T) {
		m, _ := newTestModel(t, spotifyHandler)

		_, cmd := m.Update(keyPress("tab"))
		if m.view != TopArtistsView {
			t.Fatalf("expected artists view, got %v", m.view)
		}
		run(t, m, cmd)

		if got := len(m.panes[TopArtistsView].list.Items()); got != 1 {
			t.Fatalf("expected 1 artist, got %d", got)
		}

		m.Update(keyPress("shift+tab"))
		_, cmd = m.Update(keyPress("tab"))
		if cmd != nil {
			t.Error("expected no reload for an already loaded view")
		}
	})

	t.Run("Play Toggles Preview", func(t *testing.T) {
		m, out := newTestModel(t, spotifyHandler)
		m.Update(m.load(TopTracksView)())

		_, cmd := m.Update(keyPress("p"))
		if msg := cmd(); msg != nil {
			t.Fatalf("expected no failure, got %v", msg)
		}
		if got := out.Current(); got != "https://p.scdn.co/t1.mp3" {
			t.Fatalf("expected preview playing, got %q", got)
		}

		run(t, m, m.waitForPlayback())
		if m.playing.Status != playback.Playing || m.playing.ID != "t1" {
			t.Fatalf("expected t1 playing, got %+v", m.playing)
		}
		item := m.panes[TopTracksView].list.Items()[0].(trackItem)
		if !item.playing {
			t.Error("expected playing mark on t1")
		}
		if !strings.Contains(m.View(), "▶ Windowlicker") {
			t.Error("expected now playing in view")
		}

		_, cmd = m.Update(keyPress("p"))
		cmd()
		if out.Current() != "" {
			t.Error("expected second press to stop playback")
		}
	})

	t.Run("Play Without Preview Is Silent", func(t *testing.T) {
		var lookups atomic.Int32
		m, out := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/tracks/") {
				lookups.Add(1)
				w.Write([]byte(`{"id":"t2","name":"Avril 14th","preview_url":""}`))
				return
			}
			spotifyHandler(w, r)
		})
		m.Update(m.load(TopTracksView)())
		m.panes[TopTracksView].list.Select(1)

		_, cmd := m.Update(keyPress("p"))
		if msg := cmd(); msg != nil {
			t.Fatalf("expected missing preview to be silent, got %v", msg)
		}
		if len(out.Played()) != 0 {
			t.Errorf("expected nothing played, got %v", out.Played())
		}
		if lookups.Load() != 1 {
			t.Errorf("expected one track lookup, got %d", lookups.Load())
		}
		if m.player.State().Status != playback.Idle {
			t.Errorf("expected idle, got %v", m.player.State().Status)
		}
	})

	t.Run("Playback Failure Status", func(t *testing.T) {
		m, _ := newTestModel(t, spotifyHandler)
		m.Update(playbackFailedMsg(context.DeadlineExceeded))

		if !strings.Contains(m.View(), "Preview failed") {
			t.Errorf("expected failure status, got %q", m.View())
		}
	})

	t.Run("Like Track", func(t *testing.T) {
		m, _ := newTestModel(t, spotifyHandler)
		m.Update(m.load(TopTracksView)())

		_, cmd := m.Update(keyPress("l"))
		run(t, m, cmd)

		if !strings.Contains(m.status, "Liked Windowlicker") {
			t.Errorf("expected like confirmation, got %q", m.status)
		}
	})

	t.Run("Like Failure", func(t *testing.T) {
		m, _ := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPut {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			spotifyHandler(w, r)
		})
		m.Update(m.load(TopTracksView)())

		_, cmd := m.Update(keyPress("l"))
		run(t, m, cmd)

		if !strings.Contains(m.status, "Could not like Windowlicker") {
			t.Errorf("expected failure status, got %q", m.status)
		}
	})

	t.Run("Like Ignored Outside Track Views", func(t *testing.T) {
		m, _ := newTestModel(t, spotifyHandler)
		m.view = TopArtistsView
		m.Update(m.load(TopArtistsView)())

		if _, cmd := m.Update(keyPress("l")); cmd != nil {
			t.Error("expected no command when an artist is selected")
		}
	})

	t.Run("Search Playlists", func(t *testing.T) {
		m, _ := newTestModel(t, spotifyHandler)
		m.view = SearchPlaylistsView

		m.Update(keyPress("/"))
		if !m.search.Focused() {
			t.Fatal("expected search input to be focused")
		}
		for _, r := range "warp" {
			m.Update(keyPress(string(r)))
		}
		if got := m.search.Value(); got != "warp" {
			t.Fatalf("expected query warp, got %q", got)
		}

		_, cmd := m.Update(keyPress("enter"))
		if m.search.Focused() {
			t.Error("expected search input to blur on enter")
		}
		run(t, m, cmd)

		items := m.panes[SearchPlaylistsView].list.Items()
		if len(items) != 1 {
			t.Fatalf("expected 1 playlist, got %d", len(items))
		}
		if items[0].(playlistItem).playlist.Name != "Warp Classics" {
			t.Errorf("unexpected playlist %+v", items[0])
		}
	})

	t.Run("Empty Search Does Nothing", func(t *testing.T) {
		m, _ := newTestModel(t, spotifyHandler)
		m.Update(keyPress("/"))
		if m.view != SearchTracksView {
			t.Fatalf("expected search tracks view, got %v", m.view)
		}

		if _, cmd := m.Update(keyPress("enter")); cmd != nil {
			t.Error("expected no load for an empty query")
		}
		if !strings.Contains(m.View(), "Press / to search.") {
			t.Errorf("expected search hint, got %q", m.View())
		}
	})

	t.Run("Time Range Cycles And Reloads", func(t *testing.T) {
		var (
			mu     sync.Mutex
			ranges []string
		)
		m, _ := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/me/top/tracks" {
				mu.Lock()
				ranges = append(ranges, r.URL.Query().Get("time_range"))
				mu.Unlock()
			}
			spotifyHandler(w, r)
		})
		m.Update(m.load(TopTracksView)())

		_, cmd := m.Update(keyPress("t"))
		if m.dashboard.TimeRange() != services.LongTerm {
			t.Fatalf("expected long_term, got %s", m.dashboard.TimeRange())
		}
		m.Update(cmd())

		mu.Lock()
		defer mu.Unlock()
		if len(ranges) != 2 || ranges[1] != "long_term" {
			t.Errorf("expected reload with long_term, got %v", ranges)
		}
	})

	t.Run("Top Albums Progress", func(t *testing.T) {
		m, _ := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/tracks/") {
				id := strings.TrimPrefix(r.URL.Path, "/tracks/")
				w.Write([]byte(`{"id":"` + id + `","name":"x","album":{"id":"al-` + id + `","name":"Album ` + id + `"}}`))
				return
			}
			spotifyHandler(w, r)
		})

		cmd := m.load(TopAlbumsView)
		for range 200 {
			if cmd == nil {
				break
			}
			cmd = run(t, m, cmd)
		}

		p := m.panes[TopAlbumsView]
		if !p.loaded {
			t.Fatal("expected albums to load")
		}
		if m.albumsDone != nil {
			t.Error("expected progress stream to be released")
		}
		if got := len(p.list.Items()); got != 2 {
			t.Errorf("expected 2 albums, got %d", got)
		}
	})

	t.Run("Quit", func(t *testing.T) {
		m, _ := newTestModel(t, spotifyHandler)

		_, cmd := m.Update(keyPress("q"))
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected quit message")
		}
	})
}

func TestViewState(t *testing.T) {
	names := map[ViewState]string{
		TopTracksView:       "Top Tracks",
		TopArtistsView:      "Top Artists",
		TopAlbumsView:       "Top Albums",
		SearchTracksView:    "Search Tracks",
		SearchPlaylistsView: "Search Playlists",
	}
	for v, want := range names {
		if got := v.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", v, got, want)
		}
	}
	if !SearchPlaylistsView.isSearch() || TopAlbumsView.isSearch() {
		t.Error("unexpected isSearch result")
	}
}
