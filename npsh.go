package pumpsim

// npshrPoint is one breakpoint of the measured NPSHr curve.
type npshrPoint struct {
	flow  float64 // m³/h
	npshr float64 // m
}

// npshrCurve is the 8x15DMX-3 NPSHr curve. Values between breakpoints are
// interpolated linearly, values beyond the last breakpoint extrapolate with
// the slope of extrapolationRise per 100 m³/h.
var npshrCurve = []npshrPoint{
	{0, 0.5},
	{100, 3.2},
	{200, 6.0},
	{300, 9.1},
	{400, 12.4},
	{480, 16.4},
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

const extrapolationRise = 2.0 // m per 100 m³/h beyond the curve

// NPSHr returns the required net positive suction head in metres for the
// given flow in m³/h.
func NPSHr(flow float64) float64 {
	if flow <= 0 {
		return npshrCurve[0].npshr
	}
	for i := 1; i < len(npshrCurve); i++ {
		p0, p1 := npshrCurve[i-1], npshrCurve[i]
		if flow <= p1.flow {
			return p0.npshr + (flow-p0.flow)/(p1.flow-p0.flow)*(p1.npshr-p0.npshr)
		}
	}
	last := npshrCurve[len(npshrCurve)-1]
	return last.npshr + (flow-last.flow)/100*extrapolationRise
}

// VaporPressure approximates the vapor pressure of water in bar for a
// temperature in °C.
func VaporPressure(tempC float64) float64 {
	f := 1.8*tempC + 32
	return 0.0061 * f * f / 100
}

// barToMeters converts bar to metres of water column.
const barToMeters = 10.2

// NPSHa returns the available net positive suction head in metres.
func NPSHa(pressureBar, tempC, staticHead, frictionLoss float64) float64 {
	return pressureBar*barToMeters - VaporPressure(tempC)*barToMeters + staticHead - frictionLoss
}

// NPSH bundles the computed suction head figures for one operating point.
type NPSH struct {
	Available float64
	Required  float64
}

// Margin is the headroom between available and required suction head.
// Negative margins indicate cavitation risk.
func (n NPSH) Margin() float64 {
	return n.Available - n.Required
}

// ComputeNPSH evaluates both curves for the given operating point.
func ComputeNPSH(pressureBar, tempC, flow, staticHead, frictionLoss float64) NPSH {
	return NPSH{
		Available: NPSHa(pressureBar, tempC, staticHead, frictionLoss),
		Required:  NPSHr(flow),
	}
}
