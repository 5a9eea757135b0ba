// Package gamepad normalizes polled controller readings and tracks button
// transitions between polls.
//
// A GamePad owns one Device and is polled on demand:
//
//	pad := gamepad.New(dev)
//	var tracker gamepad.ButtonStateTracker
//	for range ticker.C {
//		state := pad.GetState(0, gamepad.DeadZoneIndependentAxes)
//		tracker.Update(state)
//		if tracker.A == gamepad.Pressed {
//			jump()
//		}
//	}
//
// Failures never surface as errors: a missing controller, a backend error or
// an out-of-range player all produce a zero State.
package gamepad

import (
	"errors"
	"io"
	"log/slog"
	"time"
)

type Option func(*GamePad)

func WithLogger(l *slog.Logger) Option {
	return func(g *GamePad) { g.log = l }
}

// WithRetryIntervals sets how long a disconnected slot is left alone after a
// failed read: own for the slot itself, other for the remaining slots.
func WithRetryIntervals(own, other time.Duration) Option {
	return func(g *GamePad) {
		g.retryOwn = own
		g.retryOther = other
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *GamePad) { g.now = now }
}

// GamePad polls a Device for up to MaxPlayerCount players. It is not safe
// for concurrent use and usually lives on the goroutine that opened the
// device.
type GamePad struct {
	dev    Device
	limits Limits
	log    *slog.Logger

	retryOwn   time.Duration
	retryOther time.Duration
	now        func() time.Time
	throttle   *retryThrottle
}

func New(dev Device, opts ...Option) *GamePad {
	g := &GamePad{
		dev:        dev,
		limits:     dev.Limits(),
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		retryOwn:   DefaultDisconnectedRetry,
		retryOther: DefaultOtherPlayerRetry,
		now:        time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	g.throttle = newRetryThrottle(g.retryOwn, g.retryOther, g.now)
	return g
}

// GetState polls player and normalizes the reading under mode.
func (g *GamePad) GetState(player int, mode DeadZone) State {
	if g.throttle.skip(player) {
		return State{}
	}

	raw, err := g.dev.Poll(player)
	if err != nil {
		g.fail(player, "poll", err)
		return State{}
	}
	g.throttle.markConnected(player)
	return Assemble(raw, g.limits, mode)
}

func (g *GamePad) GetCapabilities(player int) Capabilities {
	if g.throttle.skip(player) {
		return Capabilities{}
	}

	caps, err := g.dev.Capabilities(player)
	if err != nil {
		g.fail(player, "capabilities", err)
		return Capabilities{}
	}
	g.throttle.markConnected(player)
	caps.Connected = true
	return caps
}

// SetVibration sets the motor speeds of player, each clamped to [0, 1]. It
// reports whether the backend accepted the request.
func (g *GamePad) SetVibration(player int, left, right float64) bool {
	if g.throttle.skip(player) {
		return false
	}

	err := g.dev.SetVibration(player, clamp(left, 0, 1), clamp(right, 0, 1))
	if err != nil {
		g.fail(player, "vibration", err)
		return false
	}
	g.throttle.markConnected(player)
	return true
}

// Suspend releases or silences the backend while the application is in the
// background.
func (g *GamePad) Suspend() {
	g.dev.Suspend()
}

func (g *GamePad) Resume() {
	g.dev.Resume()
}

func (g *GamePad) Close() error {
	return g.dev.Close()
}

func (g *GamePad) fail(player int, op string, err error) {
	if errors.Is(err, ErrNotConnected) {
		g.throttle.markDisconnected(player)
		return
	}
	// Other errors do not prove the slot is empty, so it is not throttled.
	g.log.Debug("gamepad backend error", "op", op, "player", player, "error", err)
}
