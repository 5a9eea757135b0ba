package gamepad

import (
	"fmt"
	"strings"
)

// ButtonMask is a digital button bitmask in XInput layout. Backends that do
// not speak XInput translate into it.
type ButtonMask uint16

const (
	MaskDPadUp        ButtonMask = 0x0001
	MaskDPadDown      ButtonMask = 0x0002
	MaskDPadLeft      ButtonMask = 0x0004
	MaskDPadRight     ButtonMask = 0x0008
	MaskStart         ButtonMask = 0x0010
	MaskBack          ButtonMask = 0x0020
	MaskLeftStick     ButtonMask = 0x0040
	MaskRightStick    ButtonMask = 0x0080
	MaskLeftShoulder  ButtonMask = 0x0100
	MaskRightShoulder ButtonMask = 0x0200
	MaskA             ButtonMask = 0x1000
	MaskB             ButtonMask = 0x2000
	MaskX             ButtonMask = 0x4000
	MaskY             ButtonMask = 0x8000
)

// Has reports whether every bit of b is set in m.
func (m ButtonMask) Has(b ButtonMask) bool {
	return m&b == b
}

var buttonNames = map[string]ButtonMask{
	"a":              MaskA,
	"b":              MaskB,
	"x":              MaskX,
	"y":              MaskY,
	"left_stick":     MaskLeftStick,
	"l3":             MaskLeftStick,
	"right_stick":    MaskRightStick,
	"r3":             MaskRightStick,
	"left_shoulder":  MaskLeftShoulder,
	"lb":             MaskLeftShoulder,
	"right_shoulder": MaskRightShoulder,
	"rb":             MaskRightShoulder,
	"back":           MaskBack,
	"select":         MaskBack,
	"view":           MaskBack,
	"start":          MaskStart,
	"menu":           MaskStart,
	"dpad_up":        MaskDPadUp,
	"up":             MaskDPadUp,
	"dpad_down":      MaskDPadDown,
	"down":           MaskDPadDown,
	"dpad_left":      MaskDPadLeft,
	"left":           MaskDPadLeft,
	"dpad_right":     MaskDPadRight,
	"right":          MaskDPadRight,
}

// ParseButton resolves a button name such as "a", "lb" or "dpad_up".
// Matching is case-insensitive.
func ParseButton(name string) (ButtonMask, error) {
	m, ok := buttonNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown button %q", name)
	}
	return m, nil
}

// ParseButtons ORs the masks of all names together.
func ParseButtons(names []string) (ButtonMask, error) {
	var m ButtonMask
	for _, n := range names {
		b, err := ParseButton(n)
		if err != nil {
			return 0, err
		}
		m |= b
	}
	return m, nil
}
