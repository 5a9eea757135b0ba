package gamepad

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestApplyLinearDeadZoneInsideBand(t *testing.T) {
	const maxValue, dz = 32767.0, 7849.0
	for _, v := range []float64{0, 1, -1, dz, -dz, dz / 2, -dz / 3} {
		assert.Equal(t, 0.0, ApplyLinearDeadZone(v, maxValue, dz), "value %v", v)
	}
}

func TestApplyLinearDeadZoneOutsideBand(t *testing.T) {
	const maxValue, dz = 255.0, 30.0

	prev := 0.0
	for v := dz + 1; v <= maxValue; v++ {
		got := ApplyLinearDeadZone(v, maxValue, dz)
		assert.Greater(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
		assert.Greater(t, got, prev, "not monotonic at %v", v)
		prev = got
	}

	assert.InDelta(t, 1.0, ApplyLinearDeadZone(maxValue, maxValue, dz), eps)
	assert.InDelta(t, -1.0, ApplyLinearDeadZone(-maxValue, maxValue, dz), eps)
}

func TestApplyLinearDeadZoneContinuousAtEdge(t *testing.T) {
	got := ApplyLinearDeadZone(0.24+1e-7, 1, 0.24)
	assert.InDelta(t, 0, got, 1e-6)
}

func TestApplyLinearDeadZoneClamps(t *testing.T) {
	assert.Equal(t, 1.0, ApplyLinearDeadZone(40000, 32767, 0))
	assert.Equal(t, -1.0, ApplyLinearDeadZone(-32768, 32767, 0))
}

func TestApplyLinearDeadZoneZeroThreshold(t *testing.T) {
	assert.InDelta(t, 0.5, ApplyLinearDeadZone(127.5, 255, 0), eps)
	assert.InDelta(t, 1.0/255, ApplyLinearDeadZone(1, 255, 0), eps)
	assert.Equal(t, 0.0, ApplyLinearDeadZone(0, 255, 0))
}

func TestApplyStickDeadZoneSmallInputBothModes(t *testing.T) {
	for _, mode := range []DeadZone{DeadZoneIndependentAxes, DeadZoneCircular} {
		x, y := ApplyStickDeadZone(0.15, 0.15, mode, 1.0, 0.24)
		assert.Equal(t, 0.0, x, mode.String())
		assert.Equal(t, 0.0, y, mode.String())
	}
}

func TestApplyStickDeadZoneCorner(t *testing.T) {
	// Each axis is inside the band, the magnitude is not.
	const d = 0.24
	v := d * 0.9

	x, y := ApplyStickDeadZone(v, v, DeadZoneIndependentAxes, 1, d)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)

	x, y = ApplyStickDeadZone(v, v, DeadZoneCircular, 1, d)
	assert.Greater(t, x, 0.0)
	assert.Greater(t, y, 0.0)
	assert.InDelta(t, x, y, eps)
}

func TestApplyStickDeadZoneCircularOrigin(t *testing.T) {
	for _, dz := range []float64{0, 0.1, 7849} {
		x, y := ApplyStickDeadZone(0, 0, DeadZoneCircular, 32767, dz)
		assert.Equal(t, 0.0, x)
		assert.Equal(t, 0.0, y)
		assert.False(t, math.IsNaN(x) || math.IsNaN(y))
	}
}

func TestApplyStickDeadZoneCircularKeepsDirection(t *testing.T) {
	const maxValue, dz = 32767.0, 7849.0
	inputs := [][2]float64{
		{20000, 0}, {0, -20000}, {12000, 9000}, {-30000, 15000},
		{-32768, -32768}, {32767, 32767}, {9000, -5000},
	}
	for _, in := range inputs {
		x, y := ApplyStickDeadZone(in[0], in[1], DeadZoneCircular, maxValue, dz)
		require.False(t, x == 0 && y == 0, "input %v", in)
		assert.InDelta(t, math.Atan2(in[1], in[0]), math.Atan2(y, x), 1e-6, "input %v", in)
		assert.LessOrEqual(t, math.Hypot(x, y), math.Sqrt2+eps)
	}
}

func TestApplyStickDeadZoneCircularMagnitude(t *testing.T) {
	x, y := ApplyStickDeadZone(0.62, 0, DeadZoneCircular, 1, 0.24)
	assert.InDelta(t, 0.5, x, eps)
	assert.Equal(t, 0.0, y)
}

func TestApplyStickDeadZoneNoneRescalesOnly(t *testing.T) {
	x, y := ApplyStickDeadZone(100, -100, DeadZoneNone, 32767, 7849)
	assert.InDelta(t, 100.0/32767, x, eps)
	assert.InDelta(t, -100.0/32767, y, eps)
}

func TestApplyStickDeadZoneIndependentAxes(t *testing.T) {
	x, y := ApplyStickDeadZone(32767, 100, DeadZoneIndependentAxes, 32767, 7849)
	assert.InDelta(t, 1.0, x, eps)
	assert.Equal(t, 0.0, y)
}

func TestApplyStickDeadZoneAlwaysInRange(t *testing.T) {
	const maxValue, dz = 32767.0, 8689.0
	for _, mode := range []DeadZone{DeadZoneIndependentAxes, DeadZoneCircular, DeadZoneNone} {
		for x := -32768.0; x <= 32767; x += 4096 {
			for y := -32768.0; y <= 32767; y += 4096 {
				ox, oy := ApplyStickDeadZone(x, y, mode, maxValue, dz)
				assert.True(t, ox >= -1 && ox <= 1, "%s x=%v y=%v -> %v", mode, x, y, ox)
				assert.True(t, oy >= -1 && oy <= 1, "%s x=%v y=%v -> %v", mode, x, y, oy)
			}
		}
	}
}

func TestParseDeadZone(t *testing.T) {
	tests := []struct {
		in      string
		want    DeadZone
		wantErr bool
	}{
		{"independent", DeadZoneIndependentAxes, false},
		{"", DeadZoneIndependentAxes, false},
		{"Circular", DeadZoneCircular, false},
		{"none", DeadZoneNone, false},
		{"square", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDeadZone(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
