package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/desertthunder/spotboard/internal/shared"
)

func TestRaw(t *testing.T) {
	t.Run("JSON Response", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/me/player" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"is_playing":false}`)
		})

		resp, err := srv.Raw(context.Background(), "get", "/me/player", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !resp.OK() || !resp.IsJSON || resp.JSONData == nil {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("Non-JSON Response", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "plain")
		})

		resp, err := srv.Raw(context.Background(), http.MethodGet, "/ping", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.IsJSON || string(resp.Body) != "plain" {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("Error Status Is Returned Not Raised", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":{"status":401}}`)
		})

		resp, err := srv.Raw(context.Background(), http.MethodGet, "/me", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.OK() || resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401 response, got %d", resp.StatusCode)
		}
	})

	t.Run("PUT With Body", func(t *testing.T) {
		srv, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			if r.Method != http.MethodPut || string(body) != `{"ids":["a"]}` {
				t.Errorf("unexpected request %s %s", r.Method, body)
			}
			w.WriteHeader(http.StatusOK)
		})

		resp, err := srv.Raw(context.Background(), http.MethodPut, "/me/tracks", []byte(`{"ids":["a"]}`))
		if err != nil || !resp.OK() {
			t.Errorf("expected ok response, got %+v err=%v", resp, err)
		}
	})

	t.Run("Invalid Input", func(t *testing.T) {
		srv := NewSpotifyService(SpotifyOpts{})

		if _, err := srv.Raw(context.Background(), "PATCH", "/me", nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if _, err := srv.Raw(context.Background(), "PUT", "/me", []byte("{oops")); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if _, err := srv.Raw(context.Background(), "GET", "/me", nil); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
