package gamepad

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by a Device when no controller occupies the
// requested player slot.
var ErrNotConnected = errors.New("gamepad not connected")

// RawReading is one sample straight from a backend. Stick axes are in
// backend units with positive Y up; triggers are in [0, Limits.TriggerMax].
type RawReading struct {
	LeftX, LeftY   float64
	RightX, RightY float64
	LeftTrigger    float64
	RightTrigger   float64
	Buttons        ButtonMask
	Packet         uint32
}

// Limits describes a backend's native ranges and recommended thresholds.
type Limits struct {
	StickMax           float64
	LeftStickDeadZone  float64
	RightStickDeadZone float64
	TriggerMax         float64
	TriggerThreshold   float64
}

// XInputLimits are the ranges and thresholds published with XInput. SDL
// reports sticks on the same int16 scale, so its backend reuses them.
var XInputLimits = Limits{
	StickMax:           32767,
	LeftStickDeadZone:  7849,
	RightStickDeadZone: 8689,
	TriggerMax:         255,
	TriggerThreshold:   30,
}

// GamepadType is the device subtype reported in Capabilities.
type GamepadType uint8

const (
	TypeUnknown         GamepadType = 0
	TypeGamepad         GamepadType = 1
	TypeWheel           GamepadType = 2
	TypeArcadeStick     GamepadType = 3
	TypeFlightStick     GamepadType = 4
	TypeDancePad        GamepadType = 5
	TypeGuitar          GamepadType = 6
	TypeGuitarAlternate GamepadType = 7
	TypeDrumKit         GamepadType = 8
	TypeGuitarBass      GamepadType = 11
	TypeArcadePad       GamepadType = 19
)

var gamepadTypeNames = map[GamepadType]string{
	TypeUnknown:         "unknown",
	TypeGamepad:         "gamepad",
	TypeWheel:           "wheel",
	TypeArcadeStick:     "arcade_stick",
	TypeFlightStick:     "flight_stick",
	TypeDancePad:        "dance_pad",
	TypeGuitar:          "guitar",
	TypeGuitarAlternate: "guitar_alternate",
	TypeDrumKit:         "drum_kit",
	TypeGuitarBass:      "guitar_bass",
	TypeArcadePad:       "arcade_pad",
}

func (t GamepadType) String() string {
	if s, ok := gamepadTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("GamepadType(%d)", uint8(t))
}

func (t GamepadType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *GamepadType) UnmarshalText(b []byte) error {
	for k, v := range gamepadTypeNames {
		if v == string(b) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown gamepad type %q", string(b))
}

type Capabilities struct {
	Connected bool        `json:"connected"`
	ID        uint64      `json:"id"`
	Type      GamepadType `json:"type"`
}

// Device is a platform controller API. Implementations may require all calls
// to come from the goroutine that opened them.
type Device interface {
	// Poll returns the current reading for player, or ErrNotConnected.
	Poll(player int) (RawReading, error)
	// SetVibration sets both motor speeds, each in [0, 1].
	SetVibration(player int, left, right float64) error
	Capabilities(player int) (Capabilities, error)
	Limits() Limits
	Suspend()
	Resume()
	Close() error
}

// NullDevice is a Device with no controllers attached.
type NullDevice struct{}

func (NullDevice) Poll(int) (RawReading, error) { return RawReading{}, ErrNotConnected }
func (NullDevice) SetVibration(int, float64, float64) error { return ErrNotConnected }
func (NullDevice) Capabilities(int) (Capabilities, error) { return Capabilities{}, ErrNotConnected }
func (NullDevice) Limits() Limits { return XInputLimits }
func (NullDevice) Suspend() {}
func (NullDevice) Resume() {}
func (NullDevice) Close() error { return nil }
