package playback

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// Status is the coordinator's state machine position.
type Status int

const (
	Idle    Status = iota
	Pending        // preview URL is being resolved
	Playing
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// State is a snapshot of the coordinator. ID is empty when Idle.
type State struct {
	Status Status
	ID     string
}

// Resolver returns the preview URL for the item being played. "" means no preview.
type Resolver = func(ctx context.Context) (string, error)

// Coordinator serializes access to one [Output].
type Coordinator struct {
	mu        sync.Mutex
	out       Output
	state     State
	seq       uint64
	listeners []func(State)
	logger    *log.Logger
}

// NewCoordinator creates a [Coordinator] driving out.
func NewCoordinator(out Output, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Coordinator{out: out, logger: logger}
}

// OnChange registers fn to be called after every state transition.
// fn runs outside the coordinator's lock and may observe transitions out of order; call State for the latest.
func (c *Coordinator) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Play toggles playback of id.
//
// When id is already playing or pending, output stops and the coordinator goes Idle. Otherwise any
// current output stops and resolve runs without holding the lock; its URL is applied only if no newer
// Play or Stop happened meanwhile. An empty URL leaves the coordinator Idle with a nil error.
func (c *Coordinator) Play(ctx context.Context, id string, resolve Resolver) error {
	c.mu.Lock()
	if c.state.Status != Idle && c.state.ID == id {
		err := c.stopLocked()
		c.mu.Unlock()
		c.notify()
		return err
	}

	stopErr := c.stopLocked()
	token := c.seq
	c.state = State{Status: Pending, ID: id}
	c.mu.Unlock()
	c.notify()

	if stopErr != nil {
		c.logger.Warn("failed to stop previous preview", "error", stopErr)
	}

	url, err := resolve(ctx)

	c.mu.Lock()
	if token != c.seq {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded preview", "id", id)
		return nil
	}

	switch {
	case err != nil:
		c.state = State{Status: Idle}
		err = fmt.Errorf("resolve preview for %s: %w", id, err)
	case url == "":
		c.state = State{Status: Idle}
		c.logger.Debug("no preview available", "id", id)
	default:
		if playErr := c.out.Play(url); playErr != nil {
			c.state = State{Status: Idle}
			err = fmt.Errorf("play preview for %s: %w", id, playErr)
		} else {
			c.state = State{Status: Playing, ID: id}
			c.logger.Info("playing preview", "id", id)
		}
	}
	c.mu.Unlock()
	c.notify()

	return err
}

// Stop silences any output and cancels pending resolutions.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	err := c.stopLocked()
	c.mu.Unlock()
	c.notify()
	return err
}

// Close stops playback and releases the output.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stopErr := c.stopLocked()
	if err := c.out.Close(); err != nil {
		return err
	}
	return stopErr
}

// stopLocked invalidates outstanding resolutions and stops output if anything is audible.
func (c *Coordinator) stopLocked() error {
	c.seq++
	wasPlaying := c.state.Status == Playing
	c.state = State{Status: Idle}
	if !wasPlaying {
		return nil
	}
	return c.out.Stop()
}

func (c *Coordinator) notify() {
	c.mu.Lock()
	state := c.state
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}
