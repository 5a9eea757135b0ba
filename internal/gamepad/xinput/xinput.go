// Package xinput is a gamepad.Device backed by the Windows XInput API.
package xinput

import "errors"

// ErrUnsupported is returned by Open on platforms without XInput.
var ErrUnsupported = errors.New("xinput is only available on windows")

// XINPUT_DEVTYPE_GAMEPAD. Its subtypes share their numbering with
// gamepad.GamepadType.
const devTypeGamepad = 0x01

type gamepadReport struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

type state struct {
	PacketNumber uint32
	Gamepad      gamepadReport
}

type vibration struct {
	LeftMotorSpeed  uint16
	RightMotorSpeed uint16
}

type capabilities struct {
	Type      uint8
	SubType   uint8
	Flags     uint16
	Gamepad   gamepadReport
	Vibration vibration
}
