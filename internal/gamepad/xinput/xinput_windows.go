//go:build windows

package xinput

import (
	"fmt"
	"log/slog"
	"math"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/soar/padview/internal/gamepad"
)

var (
	xinputDLL          = windows.NewLazySystemDLL("xinput1_4.dll")
	procXInputGetState = xinputDLL.NewProc("XInputGetState")
	procXInputSetState = xinputDLL.NewProc("XInputSetState")
	procXInputGetCaps  = xinputDLL.NewProc("XInputGetCapabilities")
	procXInputEnable   = xinputDLL.NewProc("XInputEnable")
)

type Device struct {
	log *slog.Logger
}

var _ gamepad.Device = (*Device)(nil)

func Open(logger *slog.Logger) (gamepad.Device, error) {
	if err := xinputDLL.Load(); err != nil {
		return nil, fmt.Errorf("load xinput1_4.dll: %w", err)
	}
	logger.Info("XInput initialized")
	return &Device{log: logger}, nil
}

func (d *Device) Limits() gamepad.Limits {
	return gamepad.XInputLimits
}

// result maps an XInput return code to an error.
func result(r uintptr) error {
	switch errno := syscall.Errno(r); errno {
	case windows.ERROR_SUCCESS:
		return nil
	case windows.ERROR_DEVICE_NOT_CONNECTED:
		return gamepad.ErrNotConnected
	default:
		return errno
	}
}

func (d *Device) Poll(player int) (gamepad.RawReading, error) {
	var st state
	r, _, _ := procXInputGetState.Call(uintptr(player), uintptr(unsafe.Pointer(&st)))
	if err := result(r); err != nil {
		return gamepad.RawReading{}, err
	}

	g := st.Gamepad
	return gamepad.RawReading{
		LeftX:        float64(g.ThumbLX),
		LeftY:        float64(g.ThumbLY),
		RightX:       float64(g.ThumbRX),
		RightY:       float64(g.ThumbRY),
		LeftTrigger:  float64(g.LeftTrigger),
		RightTrigger: float64(g.RightTrigger),
		Buttons:      gamepad.ButtonMask(g.Buttons),
		Packet:       st.PacketNumber,
	}, nil
}

func (d *Device) SetVibration(player int, left, right float64) error {
	vib := vibration{
		LeftMotorSpeed:  uint16(math.Round(left * 0xFFFF)),
		RightMotorSpeed: uint16(math.Round(right * 0xFFFF)),
	}
	r, _, _ := procXInputSetState.Call(uintptr(player), uintptr(unsafe.Pointer(&vib)))
	return result(r)
}

func (d *Device) Capabilities(player int) (gamepad.Capabilities, error) {
	var xcaps capabilities
	r, _, _ := procXInputGetCaps.Call(uintptr(player), 0, uintptr(unsafe.Pointer(&xcaps)))
	if err := result(r); err != nil {
		return gamepad.Capabilities{}, err
	}

	caps := gamepad.Capabilities{Connected: true, ID: uint64(player)}
	if xcaps.Type == devTypeGamepad {
		caps.Type = gamepad.GamepadType(xcaps.SubType)
	}
	return caps, nil
}

// Suspend stops XInput from reporting state and silences all motors.
func (d *Device) Suspend() {
	procXInputEnable.Call(0)
}

func (d *Device) Resume() {
	procXInputEnable.Call(1)
}

func (d *Device) Close() error {
	return nil
}
