package gamepad

import (
	"fmt"
	"math"
	"strings"
)

// DeadZone selects how raw stick values near rest are filtered.
type DeadZone int

const (
	// DeadZoneIndependentAxes filters each axis on its own, giving a square
	// dead region.
	DeadZoneIndependentAxes DeadZone = iota
	// DeadZoneCircular filters the stick magnitude, giving a round dead region
	// and keeping the stick angle.
	DeadZoneCircular
	// DeadZoneNone only rescales. Triggers are not thresholded either.
	DeadZoneNone
)

func (d DeadZone) String() string {
	switch d {
	case DeadZoneIndependentAxes:
		return "independent"
	case DeadZoneCircular:
		return "circular"
	case DeadZoneNone:
		return "none"
	default:
		return fmt.Sprintf("DeadZone(%d)", int(d))
	}
}

// ParseDeadZone accepts "independent", "circular" or "none".
func ParseDeadZone(s string) (DeadZone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "independent", "independent_axes", "":
		return DeadZoneIndependentAxes, nil
	case "circular":
		return DeadZoneCircular, nil
	case "none":
		return DeadZoneNone, nil
	default:
		return 0, fmt.Errorf("unknown deadzone mode %q", s)
	}
}

func (d DeadZone) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DeadZone) UnmarshalText(b []byte) error {
	v, err := ParseDeadZone(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// ApplyLinearDeadZone maps value from [-maxValue, maxValue] to [-1, 1].
// Values with |value| <= deadZoneSize come out as 0; values outside the band
// are shifted toward zero by deadZoneSize so the output is continuous at the
// band edge. Callers must keep maxValue > deadZoneSize >= 0.
func ApplyLinearDeadZone(value, maxValue, deadZoneSize float64) float64 {
	switch {
	case value < -deadZoneSize:
		value += deadZoneSize
	case value > deadZoneSize:
		value -= deadZoneSize
	default:
		return 0
	}

	return clamp(value/(maxValue-deadZoneSize), -1, 1)
}

// ApplyStickDeadZone normalizes one stick under mode. See ApplyLinearDeadZone
// for the preconditions on maxValue and deadZoneSize.
func ApplyStickDeadZone(x, y float64, mode DeadZone, maxValue, deadZoneSize float64) (float64, float64) {
	switch mode {
	case DeadZoneIndependentAxes:
		return ApplyLinearDeadZone(x, maxValue, deadZoneSize),
			ApplyLinearDeadZone(y, maxValue, deadZoneSize)

	case DeadZoneCircular:
		dist := math.Sqrt(x*x + y*y)
		wanted := ApplyLinearDeadZone(dist, maxValue, deadZoneSize)

		// wanted is 0 whenever dist is 0, so this never divides by zero.
		scale := 0.0
		if wanted > 0 {
			scale = wanted / dist
		}
		return clamp(x*scale, -1, 1), clamp(y*scale, -1, 1)

	default: // DeadZoneNone
		return ApplyLinearDeadZone(x, maxValue, 0),
			ApplyLinearDeadZone(y, maxValue, 0)
	}
}
