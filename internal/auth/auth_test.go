package auth

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotboard/internal/shared"
)

func TestExtractFromFragment(t *testing.T) {
	tc := []struct {
		name     string
		fragment string
		want     string
		wantOK   bool
	}{
		{name: "token first", fragment: "access_token=abc123&token_type=Bearer", want: "abc123", wantOK: true},
		{name: "empty", fragment: "", wantOK: false},
		{name: "no token", fragment: "foo=bar", wantOK: false},
		{name: "leading hash", fragment: "#token_type=Bearer&access_token=xyz&expires_in=3600", want: "xyz", wantOK: true},
		{name: "percent decoded", fragment: "access_token=a%2Fb%3Dc", want: "a/b=c", wantOK: true},
		{name: "plus kept", fragment: "access_token=a+b", want: "a+b", wantOK: true},
		{name: "empty value", fragment: "access_token=&foo=bar", wantOK: false},
		{name: "items without equals skipped", fragment: "&&junk&access_token=ok", want: "ok", wantOK: true},
		{name: "malformed escape skipped", fragment: "access_token=%zz&access_token=good", want: "good", wantOK: true},
		{name: "only malformed", fragment: "access_token=%", wantOK: false},
		{name: "just a hash", fragment: "#", wantOK: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFromFragment(tt.fragment)
			if ok != tt.wantOK {
				t.Fatalf("ExtractFromFragment(%q) ok = %v, want %v", tt.fragment, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ExtractFromFragment(%q) = %q, want %q", tt.fragment, got, tt.want)
			}
		})
	}
}

func TestExtractFromURL(t *testing.T) {
	t.Run("Redirect URL", func(t *testing.T) {
		got, ok := ExtractFromURL("http://127.0.0.1:3000/callback#access_token=abc&token_type=Bearer")
		if !ok || got != "abc" {
			t.Errorf("expected abc, got %q ok=%v", got, ok)
		}
	})

	t.Run("Query String", func(t *testing.T) {
		got, ok := ExtractFromURL("http://127.0.0.1:3000/callback?access_token=q1")
		if !ok || got != "q1" {
			t.Errorf("expected q1, got %q ok=%v", got, ok)
		}
	})

	t.Run("Error Redirect", func(t *testing.T) {
		if _, ok := ExtractFromURL("http://127.0.0.1:3000/callback#error=access_denied"); ok {
			t.Error("expected no token for error redirect")
		}
	})

	t.Run("Blank", func(t *testing.T) {
		if _, ok := ExtractFromURL("  "); ok {
			t.Error("expected no token for blank input")
		}
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("Fragment Wins And Is Saved", func(t *testing.T) {
		store := NewMemoryStore("old")

		res, err := Resolve(ctx, "access_token=fresh", store)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Token != "fresh" || res.Source != SourceFragment {
			t.Errorf("unexpected resolution: %+v", res)
		}

		saved, _, _ := store.Load(ctx)
		if saved != "fresh" {
			t.Errorf("expected fragment token to be saved, got %q", saved)
		}
	})

	t.Run("Falls Back To Persisted", func(t *testing.T) {
		res, err := Resolve(ctx, "foo=bar", NewMemoryStore("stored"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Token != "stored" || res.Source != SourcePersisted {
			t.Errorf("unexpected resolution: %+v", res)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		_, err := Resolve(ctx, "", NewMemoryStore(""))
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if !shared.IsUnauthenticated(err) {
			t.Error("expected IsUnauthenticated to be true")
		}
	})

	t.Run("Load Failure", func(t *testing.T) {
		_, err := Resolve(ctx, "", failingStore{})
		if err == nil || errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected load error distinct from unauthenticated, got %v", err)
		}
	})

	t.Run("Save Failure Keeps Token", func(t *testing.T) {
		res, err := Resolve(ctx, "access_token=fresh", failingStore{})
		if err == nil {
			t.Fatal("expected save error")
		}
		if res.Token != "fresh" {
			t.Errorf("expected resolution to carry the fragment token, got %+v", res)
		}
	})
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	for _, backend := range []string{"sqlite", "bolt"} {
		t.Run(backend, func(t *testing.T) {
			store, err := NewStore(shared.TokenConfig{Backend: backend, Path: filepath.Join(t.TempDir(), "token.db")})
			if err != nil {
				t.Fatalf("failed to open %s store: %v", backend, err)
			}
			defer store.Close()

			if err := store.Save(ctx, "tok"); err != nil {
				t.Fatalf("failed to save: %v", err)
			}
			res, err := Resolve(ctx, "", store)
			if err != nil || res.Token != "tok" {
				t.Errorf("expected persisted tok, got %+v err=%v", res, err)
			}
		})
	}

	t.Run("Unknown Backend", func(t *testing.T) {
		_, err := NewStore(shared.TokenConfig{Backend: "redis"})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestAuthorizeURL(t *testing.T) {
	t.Run("Implicit Grant", func(t *testing.T) {
		raw, err := AuthorizeURL("client123", "http://127.0.0.1:3000/callback", nil, "state-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("invalid url: %v", err)
		}
		if u.Host != "accounts.spotify.com" {
			t.Errorf("expected spotify accounts host, got %s", u.Host)
		}

		q := u.Query()
		if q.Get("response_type") != "token" {
			t.Errorf("expected response_type=token, got %q", q.Get("response_type"))
		}
		if q.Get("client_id") != "client123" || q.Get("state") != "state-1" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("redirect_uri") != "http://127.0.0.1:3000/callback" {
			t.Errorf("unexpected redirect_uri %q", q.Get("redirect_uri"))
		}
		if q.Get("scope") != strings.Join(DefaultScopes, " ") {
			t.Errorf("expected default scopes, got %q", q.Get("scope"))
		}
	})

	t.Run("Missing Client", func(t *testing.T) {
		if _, err := AuthorizeURL("", "http://127.0.0.1:3000/callback", nil, "s"); err == nil {
			t.Error("expected error for missing client id")
		}
	})
}

type failingStore struct{}

func (failingStore) Load(context.Context) (string, bool, error) { return "", false, errors.New("disk gone") }
func (failingStore) Save(context.Context, string) error         { return errors.New("disk gone") }
func (failingStore) Clear(context.Context) error                { return errors.New("disk gone") }
