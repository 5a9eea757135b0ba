package gamepad

import "math"

// AxisTarget names the RawReading field an axis feeds.
type AxisTarget int

const (
	AxisLeftX AxisTarget = iota
	AxisLeftY
	AxisRightX
	AxisRightY
	AxisLeftTrigger
	AxisRightTrigger
)

func (a AxisTarget) IsTrigger() bool {
	return a == AxisLeftTrigger || a == AxisRightTrigger
}

// AxisMapping defines how a raw joystick axis index maps to a reading field.
type AxisMapping struct {
	Index  int32
	Target AxisTarget
	Invert bool
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping defines how a raw joystick button index maps to a mask bit.
type ButtonMapping struct {
	Index  int32
	Target ButtonMask
}

// DeviceMapping holds the complete mapping for a specific device type.
type DeviceMapping struct {
	Name    string
	Type    GamepadType
	Axes    []AxisMapping
	Buttons []ButtonMapping
	HasHat  bool
}

const (
	HatUp    uint8 = 0x01
	HatRight uint8 = 0x02
	HatDown  uint8 = 0x04
	HatLeft  uint8 = 0x08
)

// HatMask converts a joystick hat bitfield to dpad mask bits.
func HatMask(hat uint8) ButtonMask {
	var m ButtonMask
	if hat&HatUp != 0 {
		m |= MaskDPadUp
	}
	if hat&HatRight != 0 {
		m |= MaskDPadRight
	}
	if hat&HatDown != 0 {
		m |= MaskDPadDown
	}
	if hat&HatLeft != 0 {
		m |= MaskDPadLeft
	}
	return m
}

// StickValue converts a raw int16 axis to the symmetric range
// [-StickMax, StickMax], flipping it when invert is set.
func StickValue(raw int16, invert bool) float64 {
	v := math.Max(float64(raw), -math.MaxInt16)
	if invert {
		v = -v
	}
	return v
}

// TriggerValue converts a raw trigger axis in [rawMin, rawMax] to
// [0, XInputLimits.TriggerMax].
func TriggerValue(raw, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	return clamp(v, 0, 1) * XInputLimits.TriggerMax
}

// Built-in mappings for common controllers.

var standardButtons = []ButtonMapping{
	{Index: 0, Target: MaskA},
	{Index: 1, Target: MaskB},
	{Index: 2, Target: MaskX},
	{Index: 3, Target: MaskY},
	{Index: 4, Target: MaskLeftShoulder},
	{Index: 5, Target: MaskRightShoulder},
	{Index: 6, Target: MaskBack},
	{Index: 7, Target: MaskStart},
	{Index: 8, Target: MaskLeftStick},
	{Index: 9, Target: MaskRightStick},
}

var standardAxes = []AxisMapping{
	{Index: 0, Target: AxisLeftX},
	{Index: 1, Target: AxisLeftY, Invert: true},
	{Index: 2, Target: AxisRightX},
	{Index: 3, Target: AxisRightY, Invert: true},
	{Index: 4, Target: AxisLeftTrigger, RawMin: -32768, RawMax: 32767},
	{Index: 5, Target: AxisRightTrigger, RawMin: -32768, RawMax: 32767},
}

var xboxMapping = &DeviceMapping{
	Name:    "xbox",
	Type:    TypeGamepad,
	Axes:    standardAxes,
	Buttons: standardButtons,
	HasHat:  true,
}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Type: TypeGamepad,
	Axes: standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: MaskA}, // Cross
		{Index: 1, Target: MaskB}, // Circle
		{Index: 2, Target: MaskX}, // Square
		{Index: 3, Target: MaskY}, // Triangle
		{Index: 4, Target: MaskBack},
		{Index: 6, Target: MaskStart},
		{Index: 7, Target: MaskLeftStick},
		{Index: 8, Target: MaskRightStick},
		{Index: 9, Target: MaskLeftShoulder},
		{Index: 10, Target: MaskRightShoulder},
	},
	HasHat: true,
}

// Switch Pro triggers are digital and not mapped.
var switchProMapping = &DeviceMapping{
	Name:    "switch_pro",
	Type:    TypeGamepad,
	Axes:    standardAxes[:4],
	Buttons: standardButtons,
	HasHat:  true,
}

var genericMapping = &DeviceMapping{
	Name:    "generic",
	Type:    TypeUnknown,
	Axes:    standardAxes,
	Buttons: standardButtons,
	HasHat:  true,
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the appropriate mapping for a device identified by vendor/product ID.
// Falls back to generic mapping if no specific mapping is found.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	key := deviceKey{VendorID: vendorID, ProductID: productID}
	if m, ok := knownDevices[key]; ok {
		return m
	}
	return genericMapping
}

// Apply stores one raw axis value into r.
func (a AxisMapping) Apply(r *RawReading, raw int16) {
	switch a.Target {
	case AxisLeftX:
		r.LeftX = StickValue(raw, a.Invert)
	case AxisLeftY:
		r.LeftY = StickValue(raw, a.Invert)
	case AxisRightX:
		r.RightX = StickValue(raw, a.Invert)
	case AxisRightY:
		r.RightY = StickValue(raw, a.Invert)
	case AxisLeftTrigger:
		r.LeftTrigger = TriggerValue(raw, a.RawMin, a.RawMax)
	case AxisRightTrigger:
		r.RightTrigger = TriggerValue(raw, a.RawMin, a.RawMax)
	}
}
