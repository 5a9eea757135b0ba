package gamepad

import "fmt"

// ButtonState is the transition of one button between two polls.
// Bit 0 is set while the button is down, bit 1 when it changed since the
// previous poll.
type ButtonState uint8

const (
	Up       ButtonState = 0b00
	Held     ButtonState = 0b01
	Released ButtonState = 0b10
	Pressed  ButtonState = 0b11
)

func transition(current, previous bool) ButtonState {
	var down, changed ButtonState
	if current {
		down = 1
	}
	if current != previous {
		changed = 1
	}
	return down | changed<<1
}

// IsDown reports whether the button is down in the current poll.
func (b ButtonState) IsDown() bool { return b&0b01 != 0 }

// Changed reports whether the button went down or up since the previous poll.
func (b ButtonState) Changed() bool { return b&0b10 != 0 }

func (b ButtonState) String() string {
	switch b {
	case Up:
		return "up"
	case Held:
		return "held"
	case Released:
		return "released"
	case Pressed:
		return "pressed"
	default:
		return fmt.Sprintf("ButtonState(%d)", uint8(b))
	}
}

func (b ButtonState) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *ButtonState) UnmarshalText(text []byte) error {
	for _, s := range []ButtonState{Up, Held, Released, Pressed} {
		if s.String() == string(text) {
			*b = s
			return nil
		}
	}
	return fmt.Errorf("unknown button state %q", text)
}

// Transitions holds one ButtonState per tracked button.
type Transitions struct {
	A             ButtonState `json:"a"`
	B             ButtonState `json:"b"`
	X             ButtonState `json:"x"`
	Y             ButtonState `json:"y"`
	LeftStick     ButtonState `json:"leftStick"`
	RightStick    ButtonState `json:"rightStick"`
	LeftShoulder  ButtonState `json:"leftShoulder"`
	RightShoulder ButtonState `json:"rightShoulder"`
	Back          ButtonState `json:"back"`
	Start         ButtonState `json:"start"`
	DPadUp        ButtonState `json:"dpadUp"`
	DPadDown      ButtonState `json:"dpadDown"`
	DPadLeft      ButtonState `json:"dpadLeft"`
	DPadRight     ButtonState `json:"dpadRight"`
}

type trackedButton struct {
	name string
	down func(*State) bool
	code func(*Transitions) *ButtonState
}

var trackedButtons = [...]trackedButton{
	{"a", func(s *State) bool { return s.Buttons.A }, func(t *Transitions) *ButtonState { return &t.A }},
	{"b", func(s *State) bool { return s.Buttons.B }, func(t *Transitions) *ButtonState { return &t.B }},
	{"x", func(s *State) bool { return s.Buttons.X }, func(t *Transitions) *ButtonState { return &t.X }},
	{"y", func(s *State) bool { return s.Buttons.Y }, func(t *Transitions) *ButtonState { return &t.Y }},
	{"left_stick", func(s *State) bool { return s.Buttons.LeftStick }, func(t *Transitions) *ButtonState { return &t.LeftStick }},
	{"right_stick", func(s *State) bool { return s.Buttons.RightStick }, func(t *Transitions) *ButtonState { return &t.RightStick }},
	{"left_shoulder", func(s *State) bool { return s.Buttons.LeftShoulder }, func(t *Transitions) *ButtonState { return &t.LeftShoulder }},
	{"right_shoulder", func(s *State) bool { return s.Buttons.RightShoulder }, func(t *Transitions) *ButtonState { return &t.RightShoulder }},
	{"back", func(s *State) bool { return s.Buttons.Back }, func(t *Transitions) *ButtonState { return &t.Back }},
	{"start", func(s *State) bool { return s.Buttons.Start }, func(t *Transitions) *ButtonState { return &t.Start }},
	{"dpad_up", func(s *State) bool { return s.DPad.Up }, func(t *Transitions) *ButtonState { return &t.DPadUp }},
	{"dpad_down", func(s *State) bool { return s.DPad.Down }, func(t *Transitions) *ButtonState { return &t.DPadDown }},
	{"dpad_left", func(s *State) bool { return s.DPad.Left }, func(t *Transitions) *ButtonState { return &t.DPadLeft }},
	{"dpad_right", func(s *State) bool { return s.DPad.Right }, func(t *Transitions) *ButtonState { return &t.DPadRight }},
}

// Each calls fn for every tracked button in a fixed order.
func (t *Transitions) Each(fn func(name string, st ButtonState)) {
	for _, b := range trackedButtons {
		fn(b.name, *b.code(t))
	}
}

// Names returns the names of buttons currently in state st.
func (t *Transitions) Names(st ButtonState) []string {
	var names []string
	t.Each(func(name string, s ButtonState) {
		if s == st {
			names = append(names, name)
		}
	})
	return names
}

// AnyChanged reports whether some button was pressed or released.
func (t *Transitions) AnyChanged() bool {
	for _, b := range trackedButtons {
		if b.code(t).Changed() {
			return true
		}
	}
	return false
}

// ButtonStateTracker turns consecutive States into per-button transitions.
// It is not safe for concurrent use; keep one tracker per player.
type ButtonStateTracker struct {
	Transitions

	lastState State
}

// Update computes every transition against the retained snapshot and then
// replaces the snapshot with state.
func (t *ButtonStateTracker) Update(state State) {
	for _, b := range trackedButtons {
		*b.code(&t.Transitions) = transition(b.down(&state), b.down(&t.lastState))
	}
	t.lastState = state
}

// Reset clears all transitions and forgets the retained snapshot, so the next
// Update reports every held button as Pressed.
func (t *ButtonStateTracker) Reset() {
	*t = ButtonStateTracker{}
}

// LastState returns the snapshot passed to the most recent Update.
func (t *ButtonStateTracker) LastState() State {
	return t.lastState
}
