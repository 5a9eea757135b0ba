// Package replay is a gamepad.Device that plays back scripted readings from a
// YAML file. It stands in for hardware in demos and tests.
//
// A script lists frames per player; each frame is held for its duration:
//
//	loop: true
//	step: 100ms
//	players:
//	  - player: 0
//	    type: gamepad
//	    frames:
//	      - hold: 500ms
//	        buttons: [a, dpad_up]
//	        left_stick: [16000, -8000]
//	        right_trigger: 255
//	      - hold: 1s
//	        disconnected: true
//
// Stick and trigger values are in XInput units.
package replay

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soar/padview/internal/gamepad"
)

const defaultStep = 100 * time.Millisecond

type FrameSpec struct {
	Hold         time.Duration `yaml:"hold"`
	Buttons      []string      `yaml:"buttons"`
	LeftStick    [2]float64    `yaml:"left_stick"`
	RightStick   [2]float64    `yaml:"right_stick"`
	LeftTrigger  float64       `yaml:"left_trigger"`
	RightTrigger float64       `yaml:"right_trigger"`
	Disconnected bool          `yaml:"disconnected"`
}

type PlayerSpec struct {
	Player int                 `yaml:"player"`
	Type   gamepad.GamepadType `yaml:"type"`
	Frames []FrameSpec         `yaml:"frames"`
}

// Script is a parsed and validated replay file.
type Script struct {
	Loop    bool          `yaml:"loop"`
	Step    time.Duration `yaml:"step"`
	Players []PlayerSpec  `yaml:"players"`

	tracks [gamepad.MaxPlayerCount]*track
}

type frame struct {
	reading      gamepad.RawReading
	hold         time.Duration
	disconnected bool
}

type track struct {
	typ    gamepad.GamepadType
	frames []frame
	total  time.Duration
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode replay script: %w", err)
	}
	if err := s.compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) compile() error {
	if s.Step <= 0 {
		s.Step = defaultStep
	}
	if len(s.Players) == 0 {
		return errors.New("replay script has no players")
	}

	limits := gamepad.XInputLimits
	for _, p := range s.Players {
		if p.Player < 0 || p.Player >= gamepad.MaxPlayerCount {
			return fmt.Errorf("player %d out of range [0, %d)", p.Player, gamepad.MaxPlayerCount)
		}
		if s.tracks[p.Player] != nil {
			return fmt.Errorf("player %d listed twice", p.Player)
		}
		if len(p.Frames) == 0 {
			return fmt.Errorf("player %d has no frames", p.Player)
		}

		t := &track{typ: p.Type}
		for i, f := range p.Frames {
			buttons, err := gamepad.ParseButtons(f.Buttons)
			if err != nil {
				return fmt.Errorf("player %d frame %d: %w", p.Player, i, err)
			}
			hold := f.Hold
			if hold <= 0 {
				hold = s.Step
			}
			t.frames = append(t.frames, frame{
				hold:         hold,
				disconnected: f.Disconnected,
				reading: gamepad.RawReading{
					LeftX:        clampAxis(f.LeftStick[0], limits.StickMax),
					LeftY:        clampAxis(f.LeftStick[1], limits.StickMax),
					RightX:       clampAxis(f.RightStick[0], limits.StickMax),
					RightY:       clampAxis(f.RightStick[1], limits.StickMax),
					LeftTrigger:  clampAxis(f.LeftTrigger, limits.TriggerMax),
					RightTrigger: clampAxis(f.RightTrigger, limits.TriggerMax),
					Buttons:      buttons,
				},
			})
			t.total += hold
		}
		s.tracks[p.Player] = t
	}
	return nil
}

func clampAxis(v, limit float64) float64 {
	return max(-limit, min(v, limit))
}

// Device plays a Script against the wall clock, starting when it is created.
type Device struct {
	script    *Script
	log       *slog.Logger
	now       func() time.Time
	start     time.Time
	suspended bool
	vibration [gamepad.MaxPlayerCount][2]float64
}

var _ gamepad.Device = (*Device)(nil)

type Option func(*Device)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Device) { d.now = now }
}

func New(s *Script, logger *slog.Logger, opts ...Option) *Device {
	d := &Device{script: s, log: logger, now: time.Now}
	for _, o := range opts {
		o(d)
	}
	d.start = d.now()
	return d
}

// Open loads the script at path and starts playing it.
func Open(path string, logger *slog.Logger) (*Device, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	logger.Info("replay script loaded", "path", path, "players", len(s.Players), "loop", s.Loop)
	return New(s, logger), nil
}

func (d *Device) Limits() gamepad.Limits {
	return gamepad.XInputLimits
}

// current returns the active frame of player and its ordinal since start.
func (d *Device) current(player int) (frame, uint32, error) {
	if d.suspended || player < 0 || player >= gamepad.MaxPlayerCount {
		return frame{}, 0, gamepad.ErrNotConnected
	}
	t := d.script.tracks[player]
	if t == nil {
		return frame{}, 0, gamepad.ErrNotConnected
	}

	elapsed := max(d.now().Sub(d.start), 0)
	var cycle int64
	if d.script.Loop {
		cycle = int64(elapsed / t.total)
		elapsed %= t.total
	}

	idx := 0
	for ; idx < len(t.frames)-1; idx++ {
		if elapsed < t.frames[idx].hold {
			break
		}
		elapsed -= t.frames[idx].hold
	}
	f := t.frames[idx]
	if f.disconnected {
		return frame{}, 0, gamepad.ErrNotConnected
	}
	return f, uint32(cycle*int64(len(t.frames)) + int64(idx) + 1), nil
}

func (d *Device) Poll(player int) (gamepad.RawReading, error) {
	f, ordinal, err := d.current(player)
	if err != nil {
		return gamepad.RawReading{}, err
	}
	raw := f.reading
	raw.Packet = ordinal
	return raw, nil
}

func (d *Device) SetVibration(player int, left, right float64) error {
	if _, _, err := d.current(player); err != nil {
		return err
	}
	d.vibration[player] = [2]float64{left, right}
	d.log.Debug("replay vibration", "player", player, "left", left, "right", right)
	return nil
}

// Vibration returns the motor speeds last set for player, or zeros for a
// player outside the slot range.
func (d *Device) Vibration(player int) (left, right float64) {
	if player < 0 || player >= gamepad.MaxPlayerCount {
		return 0, 0
	}
	v := d.vibration[player]
	return v[0], v[1]
}

func (d *Device) Capabilities(player int) (gamepad.Capabilities, error) {
	if _, _, err := d.current(player); err != nil {
		return gamepad.Capabilities{}, err
	}
	return gamepad.Capabilities{
		Connected: true,
		ID:        uint64(player),
		Type:      d.script.tracks[player].typ,
	}, nil
}

// Suspend reports every player as disconnected until Resume. Playback time
// keeps running.
func (d *Device) Suspend() {
	d.suspended = true
}

func (d *Device) Resume() {
	d.suspended = false
}

func (d *Device) Close() error {
	return nil
}
