package pumpsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNPSHrBreakpoints(t *testing.T) {
	tests := []struct {
		flow float64
		want float64
	}{
		{0, 0.5},
		{100, 3.2},
		{200, 6.0},
		{300, 9.1},
		{400, 12.4},
		{480, 16.4}, // rated point
		{550, 15.8},
		{650, 15.0},
		{750, 14.2},
		{850, 14.0},
		{950, 14.4},
		{1050, 15.2},
		{1100, 16.0},
		{1150, 17.5},
		{1200, 19.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NPSHr(tt.flow), 1e-9, "flow %.0f", tt.flow)
	}
}

func TestNPSHrInterpolatesBetweenBreakpoints(t *testing.T) {
	tests := []struct {
		flow float64
		want float64
	}{
		{50, 1.85},         // halfway up the first band
		{150, 4.6},         // 3.2 + 0.5*2.8
		{440, 14.4},        // 12.4 + 40/80*4.0
		{515, 16.1},        // falling band past the rated point
		{1125, 16.75},      // 16.0 + 25/50*1.5
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NPSHr(tt.flow), 1e-9, "flow %.0f", tt.flow)
	}
}

func TestNPSHrOutsideCurve(t *testing.T) {
	assert.InDelta(t, 0.5, NPSHr(-10), 1e-9, "negative flow pins to the first breakpoint")
	assert.InDelta(t, 21.0, NPSHr(1300), 1e-9, "extrapolates at 2 m per 100 m³/h")
	assert.InDelta(t, 20.0, NPSHr(1250), 1e-9)
}

func TestVaporPressure(t *testing.T) {
	// 25 °C = 77 °F; 0.0061*77²/100
	assert.InDelta(t, 0.3616669, VaporPressure(25), 1e-6)
}

func TestNPSHa(t *testing.T) {
	// default operating point: 3 bar, 25 °C, 2 m static head, 0.5 m friction
	assert.InDelta(t, 28.411, NPSHa(3, 25, 2, 0.5), 1e-3)
}

func TestMargin(t *testing.T) {
	n := ComputeNPSH(3, 25, 0, 2, 0.5)
	assert.InDelta(t, n.Available-n.Required, n.Margin(), 1e-9)
	assert.Positive(t, n.Margin(), "idle pump at default conditions has headroom")

	// high flow and low pressure eat the margin
	n = ComputeNPSH(0.5, 25, 1200, 2, 0.5)
	assert.Negative(t, n.Margin())
}
