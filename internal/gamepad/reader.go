package gamepad

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Frame is what the Reader publishes for one player after a poll.
type Frame struct {
	Player       int          `json:"player"`
	State        State        `json:"state"`
	Transitions  Transitions  `json:"transitions"`
	Capabilities Capabilities `json:"capabilities"`
}

// Opener creates the Device. It runs on the Reader's locked OS thread,
// which some backends (SDL) require for every later call as well.
type Opener func() (Device, error)

type ReaderOptions struct {
	Mode         DeadZone
	PollInterval time.Duration
	Players      int
	RetryOwn     time.Duration
	RetryOther   time.Duration
	Logger       *slog.Logger
}

// request runs on the poll goroutine, which owns the GamePad.
type request struct {
	apply  func(pad *GamePad) bool
	result chan bool
}

// Reader polls every player once per tick and emits frames that changed.
type Reader struct {
	open Opener
	opts ReaderOptions
	log  *slog.Logger

	trackers [MaxPlayerCount]ButtonStateTracker
	frames   [MaxPlayerCount]Frame
	emitted  [MaxPlayerCount]State
	changes   chan Frame
	requests  chan request
	suspended atomic.Bool
	mu        sync.RWMutex
}

func NewReader(open Opener, opts ReaderOptions) *Reader {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 16 * time.Millisecond // ~60Hz
	}
	if opts.Players <= 0 || opts.Players > MaxPlayerCount {
		opts.Players = MaxPlayerCount
	}
	if opts.RetryOwn <= 0 {
		opts.RetryOwn = DefaultDisconnectedRetry
	}
	if opts.RetryOther <= 0 {
		opts.RetryOther = DefaultOtherPlayerRetry
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &Reader{
		open:     open,
		opts:     opts,
		log:      opts.Logger,
		changes:  make(chan Frame, 64),
		requests: make(chan request),
	}
	for p := range r.frames {
		r.frames[p].Player = p
	}
	return r
}

// Changes returns the channel on which changed frames are sent.
func (r *Reader) Changes() <-chan Frame {
	return r.changes
}

// Players returns how many player slots are polled.
func (r *Reader) Players() int {
	return r.opts.Players
}

// ValidPlayer reports whether player is one of the polled slots.
func (r *Reader) ValidPlayer(player int) bool {
	return player >= 0 && player < r.opts.Players
}

// CurrentFrame returns the last frame polled for player.
func (r *Reader) CurrentFrame(player int) Frame {
	if !r.ValidPlayer(player) {
		return Frame{Player: player}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frames[player]
}

// Frames returns the last frame of every polled player.
func (r *Reader) Frames() []Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Frame, r.opts.Players)
	copy(out, r.frames[:r.opts.Players])
	return out
}

// SetVibration runs the request on the poll goroutine and waits for it.
// Vibration is refused while input is suspended.
func (r *Reader) SetVibration(ctx context.Context, player int, left, right float64) bool {
	if !r.ValidPlayer(player) {
		return false
	}
	return r.do(ctx, func(pad *GamePad) bool {
		return !r.suspended.Load() && pad.SetVibration(player, left, right)
	})
}

// Suspend releases the backend and stops polling until Resume. Every player
// reads as disconnected in the meantime. It reports false if input was
// already suspended or ctx ends before the poll goroutine takes the request.
func (r *Reader) Suspend(ctx context.Context) bool {
	return r.do(ctx, func(pad *GamePad) bool {
		if r.suspended.Load() {
			return false
		}
		pad.Suspend()
		r.suspended.Store(true)
		r.log.Info("gamepad input suspended")
		return true
	})
}

// Resume reacquires the backend after Suspend.
func (r *Reader) Resume(ctx context.Context) bool {
	return r.do(ctx, func(pad *GamePad) bool {
		if !r.suspended.Load() {
			return false
		}
		pad.Resume()
		r.suspended.Store(false)
		r.log.Info("gamepad input resumed")
		return true
	})
}

func (r *Reader) Suspended() bool {
	return r.suspended.Load()
}

func (r *Reader) do(ctx context.Context, fn func(pad *GamePad) bool) bool {
	req := request{apply: fn, result: make(chan bool, 1)}
	select {
	case r.requests <- req:
	case <-ctx.Done():
		return false
	}
	select {
	case ok := <-req.result:
		return ok
	case <-ctx.Done():
		return false
	}
}

// Run opens the device and polls until ctx is done. The goroutine calling Run
// is locked to its OS thread for the duration.
func (r *Reader) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	dev, err := r.open()
	if err != nil {
		close(r.changes)
		return fmt.Errorf("open gamepad backend: %w", err)
	}

	pad := New(dev,
		WithLogger(r.log),
		WithRetryIntervals(r.opts.RetryOwn, r.opts.RetryOther),
	)
	defer func() {
		if err := pad.Close(); err != nil {
			r.log.Warn("closing gamepad backend", "error", err)
		}
		close(r.changes)
	}()

	r.log.Info("gamepad reader started",
		"mode", r.opts.Mode, "players", r.opts.Players, "interval", r.opts.PollInterval)

	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-r.requests:
			req.result <- req.apply(pad)
		case <-ticker.C:
			r.pollAll(pad)
		}
	}
}

func (r *Reader) pollAll(pad *GamePad) {
	for p := 0; p < r.opts.Players; p++ {
		r.pollPlayer(pad, p)
	}
}

func (r *Reader) pollPlayer(pad *GamePad, player int) {
	var state State
	if !r.suspended.Load() {
		state = pad.GetState(player, r.opts.Mode)
	}

	r.mu.RLock()
	prev := r.frames[player]
	r.mu.RUnlock()

	caps := prev.Capabilities
	tracker := &r.trackers[player]

	switch {
	case state.Connected && !prev.State.Connected:
		tracker.Reset()
		caps = pad.GetCapabilities(player)
		r.log.Info("gamepad connected", "player", player, "type", caps.Type, "id", caps.ID)
	case !state.Connected && prev.State.Connected:
		caps = Capabilities{}
		r.log.Info("gamepad disconnected", "player", player)
	}

	tracker.Update(state)

	frame := Frame{
		Player:       player,
		State:        state,
		Transitions:  tracker.Transitions,
		Capabilities: caps,
	}

	r.mu.Lock()
	r.frames[player] = frame
	r.mu.Unlock()

	if ComputeDelta(r.emitted[player], state).IsEmpty() && !frame.Transitions.AnyChanged() {
		return
	}
	r.emitted[player] = state
	r.emit(frame)
}

func (r *Reader) emit(f Frame) {
	select {
	case r.changes <- f:
	default:
		// Drop if channel is full to avoid blocking the poll thread
		r.log.Debug("frame dropped", "player", f.Player)
	}
}
