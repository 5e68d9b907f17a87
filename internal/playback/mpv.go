package playback

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	socketCheckRetries  = 20
	socketCheckInterval = 100 * time.Millisecond
	socketReadDeadline  = 500 * time.Millisecond
)

type mpvCommand struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id,omitempty"`
}

type mpvResponse struct {
	Error     string `json:"error"`
	Data      any    `json:"data"`
	RequestID int    `json:"request_id"`
	Event     string `json:"event"`
}

// MpvOutput plays previews through an idle mpv process controlled over its JSON IPC socket.
// The process is started on first Play.
type MpvOutput struct {
	mu         sync.Mutex
	mpvPath    string
	socketPath string
	cmd        *exec.Cmd
	logger     *log.Logger

	// start launches the player; replaced in tests.
	start func() error
}

// NewMpvOutput creates an [MpvOutput]. An empty socketPath uses a file in the temp dir.
func NewMpvOutput(mpvPath, socketPath string, logger *log.Logger) *MpvOutput {
	if socketPath == "" {
		socketPath = filepath.Join(os.TempDir(), "spotboard-mpv.sock")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	o := &MpvOutput{mpvPath: mpvPath, socketPath: socketPath, logger: logger}
	o.start = o.startProcess
	return o
}

func (o *MpvOutput) running() bool {
	return o.cmd != nil && o.cmd.Process != nil && o.cmd.ProcessState == nil
}

func (o *MpvOutput) startProcess() error {
	if o.running() {
		return nil
	}

	os.Remove(o.socketPath)
	o.logger.Info("starting mpv", "socket", o.socketPath)
	o.cmd = exec.Command(o.mpvPath,
		"--idle",
		"--input-ipc-server="+o.socketPath,
		"--no-video",
		"--no-config",
		"--no-terminal",
	)
	w := o.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}).Writer()
	o.cmd.Stdout = w
	o.cmd.Stderr = w

	if err := o.cmd.Start(); err != nil {
		o.cmd = nil
		return fmt.Errorf("could not start mpv: %w", err)
	}

	for range socketCheckRetries {
		if _, err := os.Stat(o.socketPath); err == nil {
			return nil
		}
		time.Sleep(socketCheckInterval)
	}

	o.cmd.Process.Kill()
	o.cmd = nil
	return fmt.Errorf("mpv started but socket did not appear at %s", o.socketPath)
}

// send writes cmds to the socket and collects the replies, ignoring event lines.
func (o *MpvOutput) send(cmds ...mpvCommand) ([]mpvResponse, error) {
	conn, err := net.Dial("unix", o.socketPath)
	if err != nil {
		return nil, fmt.Errorf("could not connect to mpv socket: %w", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(socketReadDeadline))

	enc := json.NewEncoder(conn)
	for i, cmd := range cmds {
		cmd.RequestID = i + 1
		if err := enc.Encode(cmd); err != nil {
			return nil, fmt.Errorf("error sending mpv command: %w", err)
		}
	}

	responses := make([]mpvResponse, 0, len(cmds))
	scanner := bufio.NewScanner(conn)
	for len(responses) < len(cmds) && scanner.Scan() {
		var resp mpvResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			o.logger.Warn("could not parse mpv reply", "line", scanner.Text(), "error", err)
			continue
		}
		if resp.Event == "" && resp.RequestID > 0 {
			responses = append(responses, resp)
		}
	}

	for _, resp := range responses {
		if resp.Error != "" && resp.Error != "success" {
			return responses, fmt.Errorf("mpv: %s", resp.Error)
		}
	}
	return responses, nil
}

// Play replaces whatever mpv is playing with url.
func (o *MpvOutput) Play(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.start(); err != nil {
		return err
	}
	_, err := o.send(mpvCommand{Command: []any{"loadfile", url, "replace"}})
	return err
}

// Stop stops playback, leaving mpv idle.
func (o *MpvOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := os.Stat(o.socketPath); err != nil {
		return nil
	}
	_, err := o.send(mpvCommand{Command: []any{"stop"}})
	if err != nil && !o.running() {
		// stale socket from an earlier run
		return nil
	}
	return err
}

// Close terminates mpv and removes its socket.
func (o *MpvOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running() {
		if err := o.cmd.Process.Kill(); err != nil {
			o.logger.Error("error terminating mpv", "error", err)
		}
		o.cmd.Wait()
		o.cmd = nil
	}
	os.Remove(o.socketPath)
	return nil
}
