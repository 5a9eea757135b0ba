package gamepad

import "math"

// MaxPlayerCount is the number of player slots a GamePad exposes.
const MaxPlayerCount = 4

type ButtonsState struct {
	A             bool `json:"a"`
	B             bool `json:"b"`
	X             bool `json:"x"`
	Y             bool `json:"y"`
	LeftStick     bool `json:"leftStick"`
	RightStick    bool `json:"rightStick"`
	LeftShoulder  bool `json:"leftShoulder"`
	RightShoulder bool `json:"rightShoulder"`
	Back          bool `json:"back"`
	Start         bool `json:"start"`
}

type DPadState struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// ThumbSticksState holds both sticks, each axis in [-1, 1]. Positive Y is up.
type ThumbSticksState struct {
	LeftX  float64 `json:"leftX"`
	LeftY  float64 `json:"leftY"`
	RightX float64 `json:"rightX"`
	RightY float64 `json:"rightY"`
}

// TriggersState holds both triggers in [0, 1].
type TriggersState struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// State is one normalized reading of a player slot. The zero value is a
// disconnected pad.
type State struct {
	Connected   bool             `json:"connected"`
	Packet      uint32           `json:"packet"`
	Buttons     ButtonsState     `json:"buttons"`
	DPad        DPadState        `json:"dpad"`
	ThumbSticks ThumbSticksState `json:"thumbSticks"`
	Triggers    TriggersState    `json:"triggers"`
}

// IsViewPressed is an alias for Back on pads that label it View.
func (s State) IsViewPressed() bool { return s.Buttons.Back }

// IsMenuPressed is an alias for Start on pads that label it Menu.
func (s State) IsMenuPressed() bool { return s.Buttons.Start }

type DeltaChanges struct {
	Connected   *bool             `json:"connected,omitempty"`
	Buttons     *ButtonsState     `json:"buttons,omitempty"`
	DPad        *DPadState        `json:"dpad,omitempty"`
	ThumbSticks *ThumbSticksState `json:"thumbSticks,omitempty"`
	Triggers    *TriggersState    `json:"triggers,omitempty"`
}

func (d *DeltaChanges) IsEmpty() bool {
	return d.Connected == nil &&
		d.Buttons == nil &&
		d.DPad == nil &&
		d.ThumbSticks == nil &&
		d.Triggers == nil
}

const analogThreshold = 0.01

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < analogThreshold
}

// ComputeDelta reports the groups of new_ that differ from old. Analog values
// closer than analogThreshold count as equal. The packet number is ignored.
func ComputeDelta(old, new_ State) *DeltaChanges {
	d := &DeltaChanges{}

	if old.Connected != new_.Connected {
		d.Connected = &new_.Connected
	}
	if old.Buttons != new_.Buttons {
		d.Buttons = &new_.Buttons
	}
	if old.DPad != new_.DPad {
		d.DPad = &new_.DPad
	}

	if !floatEqual(old.ThumbSticks.LeftX, new_.ThumbSticks.LeftX) ||
		!floatEqual(old.ThumbSticks.LeftY, new_.ThumbSticks.LeftY) ||
		!floatEqual(old.ThumbSticks.RightX, new_.ThumbSticks.RightX) ||
		!floatEqual(old.ThumbSticks.RightY, new_.ThumbSticks.RightY) {
		d.ThumbSticks = &new_.ThumbSticks
	}

	if !floatEqual(old.Triggers.Left, new_.Triggers.Left) ||
		!floatEqual(old.Triggers.Right, new_.Triggers.Right) {
		d.Triggers = &new_.Triggers
	}

	return d
}
