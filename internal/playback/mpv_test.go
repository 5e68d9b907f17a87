package playback

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/desertthunder/spotboard/internal/shared"
)

// fakeMpv accepts IPC connections and answers each command, preceded by an event line.
func fakeMpv(t *testing.T, reply string) (string, <-chan []any) {
	t.Helper()

	socket := filepath.Join(t.TempDir(), "mpv.sock")
	ln, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	commands := make(chan []any, 8)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			scanner := bufio.NewScanner(conn)
			for scanner.Scan() {
				var cmd mpvCommand
				if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
					continue
				}
				commands <- cmd.Command
				conn.Write([]byte(`{"event":"idle"}` + "\n"))
				resp, _ := json.Marshal(map[string]any{"error": reply, "request_id": cmd.RequestID})
				conn.Write(append(resp, '\n'))
			}
			conn.Close()
		}
	}()

	return socket, commands
}

func TestMpvOutput(t *testing.T) {
	t.Run("Play Sends Loadfile", func(t *testing.T) {
		socket, commands := fakeMpv(t, "success")
		o := NewMpvOutput("mpv", socket, nil)
		o.start = func() error { return nil }

		if err := o.Play("https://p.test/a.mp3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		cmd := <-commands
		if len(cmd) != 3 || cmd[0] != "loadfile" || cmd[1] != "https://p.test/a.mp3" || cmd[2] != "replace" {
			t.Errorf("unexpected command %v", cmd)
		}
	})

	t.Run("Stop Sends Stop", func(t *testing.T) {
		socket, commands := fakeMpv(t, "success")
		o := NewMpvOutput("mpv", socket, nil)

		if err := o.Stop(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cmd := <-commands; len(cmd) != 1 || cmd[0] != "stop" {
			t.Errorf("unexpected command %v", cmd)
		}
	})

	t.Run("Error Reply", func(t *testing.T) {
		socket, _ := fakeMpv(t, "loading failed")
		o := NewMpvOutput("mpv", socket, nil)
		o.start = func() error { return nil }

		if err := o.Play("https://p.test/bad.mp3"); err == nil {
			t.Error("expected error from mpv reply")
		}
	})

	t.Run("Stop Without Process", func(t *testing.T) {
		o := NewMpvOutput("mpv", filepath.Join(t.TempDir(), "missing.sock"), nil)
		if err := o.Stop(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if err := o.Close(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Start Failure", func(t *testing.T) {
		o := NewMpvOutput("mpv", filepath.Join(t.TempDir(), "mpv.sock"), nil)
		boom := errors.New("exec failed")
		o.start = func() error { return boom }

		if err := o.Play("https://p.test/a.mp3"); !errors.Is(err, boom) {
			t.Errorf("expected start error, got %v", err)
		}
	})
}

func TestNewOutput(t *testing.T) {
	t.Run("None", func(t *testing.T) {
		out, err := NewOutput(shared.PlaybackConfig{Player: "none"}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := out.(*SilentOutput); !ok {
			t.Errorf("expected SilentOutput, got %T", out)
		}
	})

	t.Run("Unknown Player", func(t *testing.T) {
		if _, err := NewOutput(shared.PlaybackConfig{Player: "vlc"}, nil); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Missing Binary", func(t *testing.T) {
		cfg := shared.PlaybackConfig{Player: "mpv", MpvPath: filepath.Join(t.TempDir(), "no-such-mpv")}
		if _, err := NewOutput(cfg, nil); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
