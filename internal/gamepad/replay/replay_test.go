package replay

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padview/internal/gamepad"
)

const script = `
loop: false
step: 50ms
players:
  - player: 0
    type: arcade_stick
    frames:
      - hold: 100ms
        buttons: [a, dpad_up]
        left_stick: [40000, -8000]
        right_trigger: 300
      - buttons: [start]
      - hold: 200ms
        disconnected: true
      - hold: 100ms
        right_stick: [0, 32767]
  - player: 2
    frames:
      - left_trigger: 128
`

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newDevice(t *testing.T, src string) (*Device, *clock) {
	t.Helper()
	s, err := Parse([]byte(src))
	require.NoError(t, err)
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(s, slog.Default(), WithClock(c.now)), c
}

func TestReplayTimeline(t *testing.T) {
	d, c := newDevice(t, script)

	raw, err := d.Poll(0)
	require.NoError(t, err)
	assert.Equal(t, gamepad.MaskA|gamepad.MaskDPadUp, raw.Buttons)
	assert.Equal(t, 32767.0, raw.LeftX, "clamped to stick range")
	assert.Equal(t, -8000.0, raw.LeftY)
	assert.Equal(t, 255.0, raw.RightTrigger, "clamped to trigger range")
	assert.Equal(t, uint32(1), raw.Packet)

	// Second frame uses the default step.
	c.advance(100 * time.Millisecond)
	raw, err = d.Poll(0)
	require.NoError(t, err)
	assert.Equal(t, gamepad.MaskStart, raw.Buttons)
	assert.Equal(t, uint32(2), raw.Packet)

	c.advance(50 * time.Millisecond)
	_, err = d.Poll(0)
	assert.ErrorIs(t, err, gamepad.ErrNotConnected)
	_, err = d.Capabilities(0)
	assert.ErrorIs(t, err, gamepad.ErrNotConnected)

	c.advance(200 * time.Millisecond)
	raw, err = d.Poll(0)
	require.NoError(t, err)
	assert.Equal(t, 32767.0, raw.RightY)
	assert.Equal(t, uint32(4), raw.Packet)

	// Without loop the last frame sticks.
	c.advance(time.Hour)
	raw, err = d.Poll(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), raw.Packet)
}

func TestReplayLoop(t *testing.T) {
	d, c := newDevice(t, `
loop: true
players:
  - player: 1
    frames:
      - hold: 100ms
        buttons: [x]
      - hold: 100ms
        buttons: [y]
`)
	c.advance(250 * time.Millisecond)
	raw, err := d.Poll(1)
	require.NoError(t, err)
	assert.Equal(t, gamepad.MaskX, raw.Buttons)
	assert.Equal(t, uint32(3), raw.Packet, "packet keeps counting across cycles")

	c.advance(100 * time.Millisecond)
	raw, err = d.Poll(1)
	require.NoError(t, err)
	assert.Equal(t, gamepad.MaskY, raw.Buttons)
	assert.Equal(t, uint32(4), raw.Packet)
}

func TestReplayDeviceSurface(t *testing.T) {
	d, _ := newDevice(t, script)

	caps, err := d.Capabilities(0)
	require.NoError(t, err)
	assert.Equal(t, gamepad.Capabilities{Connected: true, ID: 0, Type: gamepad.TypeArcadeStick}, caps)

	caps, err = d.Capabilities(2)
	require.NoError(t, err)
	assert.Equal(t, gamepad.TypeUnknown, caps.Type)

	for _, p := range []int{1, 3, -1, 4} {
		_, err := d.Poll(p)
		assert.ErrorIs(t, err, gamepad.ErrNotConnected, "player %d", p)
	}

	require.NoError(t, d.SetVibration(2, 0.5, 1))
	l, r := d.Vibration(2)
	assert.Equal(t, 0.5, l)
	assert.Equal(t, 1.0, r)
	assert.ErrorIs(t, d.SetVibration(1, 1, 1), gamepad.ErrNotConnected)
	for _, p := range []int{-1, gamepad.MaxPlayerCount} {
		l, r := d.Vibration(p)
		assert.Zero(t, l)
		assert.Zero(t, r)
	}

	d.Suspend()
	_, err = d.Poll(2)
	assert.ErrorIs(t, err, gamepad.ErrNotConnected)
	d.Resume()
	_, err = d.Poll(2)
	assert.NoError(t, err)

	assert.Equal(t, gamepad.XInputLimits, d.Limits())
	assert.NoError(t, d.Close())
}

func TestReplayThroughGamePad(t *testing.T) {
	d, _ := newDevice(t, script)
	pad := gamepad.New(d)

	s := pad.GetState(0, gamepad.DeadZoneNone)
	assert.True(t, s.Connected)
	assert.True(t, s.Buttons.A)
	assert.True(t, s.DPad.Up)
	assert.InDelta(t, 1.0, s.ThumbSticks.LeftX, 1e-9)
	assert.InDelta(t, 1.0, s.Triggers.Right, 1e-9)

	s = pad.GetState(2, gamepad.DeadZoneIndependentAxes)
	assert.InDelta(t, float64(128-30)/float64(255-30), s.Triggers.Left, 1e-9)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"no players":   `loop: true`,
		"out of range": "players:\n  - player: 4\n    frames: [{}]",
		"duplicate":    "players:\n  - player: 0\n    frames: [{}]\n  - player: 0\n    frames: [{}]",
		"no frames":    "players:\n  - player: 0",
		"bad button":   "players:\n  - player: 0\n    frames:\n      - buttons: [turbo]",
		"bad type":     "players:\n  - player: 0\n    type: keyboard\n    frames: [{}]",
		"bad yaml":     "players: [",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, s.Step)
	assert.Len(t, s.Players, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	d, err := Open(path, slog.Default())
	require.NoError(t, err)
	_, err = d.Poll(0)
	assert.NoError(t, err)
}
