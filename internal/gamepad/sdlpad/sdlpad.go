// Package sdlpad is a gamepad.Device backed by the SDL3 joystick API.
//
// All calls, including Open and Close, must come from the same OS thread.
package sdlpad

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/jupiterrider/purego-sdl3/sdl"

	"github.com/soar/padview/internal/gamepad"
)

// SDL caps rumble duration; the effect is refreshed by every SetVibration.
const rumbleDurationMS = 0xFFFF

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *gamepad.DeviceMapping
	name     string
	id       sdl.JoystickID
}

type slot struct {
	info   *joystickInfo
	last   gamepad.RawReading
	packet uint32
}

// Device assigns attached joysticks to player slots in arrival order.
type Device struct {
	log       *slog.Logger
	joysticks map[sdl.JoystickID]*joystickInfo
	slots     [gamepad.MaxPlayerCount]slot
}

var _ gamepad.Device = (*Device)(nil)

func Open(logger *slog.Logger) (*Device, error) {
	if !sdl.Init(sdl.InitJoystick) {
		return nil, fmt.Errorf("SDL init failed: %s", sdl.GetError())
	}
	logger.Info("SDL3 joystick subsystem initialized")

	d := &Device{
		log:       logger,
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
	}
	d.scan()
	return d, nil
}

func (d *Device) Limits() gamepad.Limits {
	return gamepad.XInputLimits
}

func (d *Device) Poll(player int) (gamepad.RawReading, error) {
	d.processEvents()

	s, err := d.slot(player)
	if err != nil {
		return gamepad.RawReading{}, err
	}
	js := s.info.joystick
	mapping := s.info.mapping

	var raw gamepad.RawReading
	for _, am := range mapping.Axes {
		am.Apply(&raw, sdl.GetJoystickAxis(js, am.Index))
	}

	numButtons := sdl.GetNumJoystickButtons(js)
	for _, bm := range mapping.Buttons {
		if bm.Index >= numButtons {
			continue
		}
		if sdl.GetJoystickButton(js, bm.Index) {
			raw.Buttons |= bm.Target
		}
	}

	if mapping.HasHat && sdl.GetNumJoystickHats(js) > 0 {
		raw.Buttons |= gamepad.HatMask(sdl.GetJoystickHat(js, 0))
	}

	// SDL has no packet counter; bump ours whenever the sample differs.
	if raw != s.last {
		s.packet++
		s.last = raw
	}
	raw.Packet = s.packet
	return raw, nil
}

func (d *Device) SetVibration(player int, left, right float64) error {
	s, err := d.slot(player)
	if err != nil {
		return err
	}
	low := uint16(math.Round(left * 0xFFFF))
	high := uint16(math.Round(right * 0xFFFF))
	if !sdl.RumbleJoystick(s.info.joystick, low, high, rumbleDurationMS) {
		return fmt.Errorf("rumble %s: %s", s.info.name, sdl.GetError())
	}
	return nil
}

func (d *Device) Capabilities(player int) (gamepad.Capabilities, error) {
	s, err := d.slot(player)
	if err != nil {
		return gamepad.Capabilities{}, err
	}
	return gamepad.Capabilities{
		Connected: true,
		ID:        uint64(s.info.id),
		Type:      s.info.mapping.Type,
	}, nil
}

// Suspend closes every joystick; Resume reopens whatever is attached.
func (d *Device) Suspend() {
	d.closeAll()
}

func (d *Device) Resume() {
	d.scan()
}

func (d *Device) Close() error {
	d.closeAll()
	sdl.Quit()
	return nil
}

func (d *Device) slot(player int) (*slot, error) {
	if player < 0 || player >= gamepad.MaxPlayerCount {
		return nil, gamepad.ErrNotConnected
	}
	s := &d.slots[player]
	if s.info == nil {
		return nil, gamepad.ErrNotConnected
	}
	if !sdl.JoystickConnected(s.info.joystick) {
		d.removeJoystick(s.info.id)
		return nil, gamepad.ErrNotConnected
	}
	return s, nil
}

func (d *Device) scan() {
	for _, id := range sdl.GetJoysticks() {
		d.openJoystick(id)
	}
}

func (d *Device) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			d.openJoystick(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			d.removeJoystick(event.JDevice().Which)
		}
	}
}

func (d *Device) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := d.joysticks[instanceID]; exists {
		return
	}

	free := -1
	for p := range d.slots {
		if d.slots[p].info == nil {
			free = p
			break
		}
	}
	if free < 0 {
		d.log.Warn("no free player slot, ignoring joystick", "id", instanceID)
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		d.log.Warn("failed to open joystick", "id", instanceID, "error", sdl.GetError())
		return
	}

	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	info := &joystickInfo{
		joystick: js,
		mapping:  gamepad.GetMapping(vendorID, productID),
		name:     sdl.GetJoystickName(js),
		id:       sdl.GetJoystickID(js),
	}
	d.joysticks[info.id] = info
	d.slots[free] = slot{info: info}

	d.log.Info("joystick attached",
		"name", info.name,
		"vid", fmt.Sprintf("%04X", vendorID),
		"pid", fmt.Sprintf("%04X", productID),
		"mapping", info.mapping.Name,
		"player", free,
		"axes", sdl.GetNumJoystickAxes(js),
		"buttons", sdl.GetNumJoystickButtons(js),
		"hats", sdl.GetNumJoystickHats(js))
}

func (d *Device) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := d.joysticks[instanceID]
	if !exists {
		return
	}

	d.log.Info("joystick detached", "name", info.name)
	sdl.CloseJoystick(info.joystick)
	delete(d.joysticks, instanceID)

	for p := range d.slots {
		if d.slots[p].info == info {
			d.slots[p] = slot{}
		}
	}
}

func (d *Device) closeAll() {
	for id, info := range d.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(d.joysticks, id)
	}
	d.slots = [gamepad.MaxPlayerCount]slot{}
}
