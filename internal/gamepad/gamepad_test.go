package gamepad

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeDevice serves fixed readings and counts backend calls.
type fakeDevice struct {
	readings  [MaxPlayerCount]*RawReading
	failWith  error
	polls     [MaxPlayerCount]int
	vibration [MaxPlayerCount][2]float64
	suspended bool
	closed    bool
}

func (d *fakeDevice) Poll(player int) (RawReading, error) {
	d.polls[player]++
	if d.failWith != nil {
		return RawReading{}, d.failWith
	}
	if d.readings[player] == nil {
		return RawReading{}, ErrNotConnected
	}
	return *d.readings[player], nil
}

func (d *fakeDevice) SetVibration(player int, left, right float64) error {
	if d.readings[player] == nil {
		return ErrNotConnected
	}
	d.vibration[player] = [2]float64{left, right}
	return nil
}

func (d *fakeDevice) Capabilities(player int) (Capabilities, error) {
	if d.readings[player] == nil {
		return Capabilities{}, ErrNotConnected
	}
	return Capabilities{ID: uint64(100 + player), Type: TypeGamepad}, nil
}

func (d *fakeDevice) Limits() Limits { return XInputLimits }
func (d *fakeDevice) Suspend() { d.suspended = true }
func (d *fakeDevice) Resume() { d.suspended = false }
func (d *fakeDevice) Close() error { d.closed = true; return nil }

func (d *fakeDevice) connect(player int, r RawReading) {
	d.readings[player] = &r
}

func TestGetStateConnected(t *testing.T) {
	dev := &fakeDevice{}
	dev.connect(0, RawReading{Buttons: MaskB, LeftX: 32767, Packet: 9})
	pad := New(dev)

	s := pad.GetState(0, DeadZoneIndependentAxes)
	assert.True(t, s.Connected)
	assert.True(t, s.Buttons.B)
	assert.InDelta(t, 1.0, s.ThumbSticks.LeftX, eps)
	assert.Equal(t, uint32(9), s.Packet)
}

func TestGetStateOutOfRange(t *testing.T) {
	dev := &fakeDevice{}
	pad := New(dev)

	for _, p := range []int{-1, MaxPlayerCount, 99} {
		assert.Equal(t, State{}, pad.GetState(p, DeadZoneCircular))
		assert.Equal(t, Capabilities{}, pad.GetCapabilities(p))
		assert.False(t, pad.SetVibration(p, 1, 1))
	}
}

func TestGetStateZeroFillsOnError(t *testing.T) {
	dev := &fakeDevice{failWith: errors.New("read failed")}
	dev.connect(0, RawReading{Buttons: MaskA, LeftTrigger: 255})
	pad := New(dev)

	assert.Equal(t, State{}, pad.GetState(0, DeadZoneNone))

	// A non-sentinel error does not throttle the slot.
	pad.GetState(0, DeadZoneNone)
	assert.Equal(t, 2, dev.polls[0])
}

func TestGetStateIdempotent(t *testing.T) {
	dev := &fakeDevice{}
	dev.connect(1, RawReading{Buttons: MaskX | MaskDPadDown, RightY: -20000, LeftTrigger: 100, Packet: 3})
	pad := New(dev)

	first := pad.GetState(1, DeadZoneCircular)
	second := pad.GetState(1, DeadZoneCircular)
	assert.Equal(t, first, second)

	dev.readings[1].Packet = 4
	third := pad.GetState(1, DeadZoneCircular)
	assert.GreaterOrEqual(t, third.Packet, second.Packet)
	third.Packet = second.Packet
	assert.Equal(t, second, third)
}

func TestDisconnectedRetryThrottle(t *testing.T) {
	clock := newFakeClock()
	dev := &fakeDevice{}
	pad := New(dev, WithClock(clock.Now), WithRetryIntervals(time.Second, 250*time.Millisecond))

	assert.False(t, pad.GetState(0, DeadZoneIndependentAxes).Connected)
	assert.Equal(t, 1, dev.polls[0])

	// Same slot inside its own window: skipped.
	clock.Advance(500 * time.Millisecond)
	pad.GetState(0, DeadZoneIndependentAxes)
	assert.Equal(t, 1, dev.polls[0])

	// Another slot only waits out the shorter window.
	clock.Advance(400 * time.Millisecond)
	pad.GetState(1, DeadZoneIndependentAxes)
	assert.Equal(t, 1, dev.polls[1])

	// Player 0's own window has passed, but player 1 failed 200ms ago.
	clock.Advance(200 * time.Millisecond)
	pad.GetState(0, DeadZoneIndependentAxes)
	assert.Equal(t, 1, dev.polls[0])

	clock.Advance(100 * time.Millisecond)
	dev.connect(0, RawReading{Buttons: MaskA})
	s := pad.GetState(0, DeadZoneIndependentAxes)
	assert.True(t, s.Connected)
	assert.Equal(t, 2, dev.polls[0])

	// Connected slots are never throttled.
	pad.GetState(0, DeadZoneIndependentAxes)
	pad.GetState(0, DeadZoneIndependentAxes)
	assert.Equal(t, 4, dev.polls[0])
}

func TestGetCapabilities(t *testing.T) {
	dev := &fakeDevice{}
	dev.connect(2, RawReading{})
	pad := New(dev)

	caps := pad.GetCapabilities(2)
	assert.Equal(t, Capabilities{Connected: true, ID: 102, Type: TypeGamepad}, caps)
	assert.Equal(t, Capabilities{}, pad.GetCapabilities(3))
}

func TestSetVibrationClamps(t *testing.T) {
	dev := &fakeDevice{}
	dev.connect(0, RawReading{})
	pad := New(dev)

	require.True(t, pad.SetVibration(0, 1.5, -0.2))
	assert.Equal(t, [2]float64{1, 0}, dev.vibration[0])

	assert.False(t, pad.SetVibration(1, 0.5, 0.5))
}

func TestSuspendResumeClose(t *testing.T) {
	dev := &fakeDevice{}
	pad := New(dev)

	pad.Suspend()
	assert.True(t, dev.suspended)
	pad.Resume()
	assert.False(t, dev.suspended)
	require.NoError(t, pad.Close())
	assert.True(t, dev.closed)
}

func TestNullDevice(t *testing.T) {
	pad := New(NullDevice{})
	for p := 0; p < MaxPlayerCount; p++ {
		assert.Equal(t, State{}, pad.GetState(p, DeadZoneIndependentAxes))
	}
	assert.False(t, pad.SetVibration(0, 1, 1))
}
