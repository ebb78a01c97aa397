package pumpsim

import "fmt"

// Holding register addresses of the simulated PLC.
const (
	RegPumpControl  uint16 = 1  // 0=stop, 1=start
	RegPumpStatus   uint16 = 2  // 0=stopped, 1=running
	RegTemperature  uint16 = 10 // °C x10
	RegPressure     uint16 = 11 // bar x100
	RegFlow         uint16 = 12 // m³/h x10
	RegStaticHead   uint16 = 13 // m x10
	RegFrictionLoss uint16 = 14 // m x10
	RegPipeDiameter uint16 = 15 // mm
	RegElevation    uint16 = 16 // m x10
)

// BankSize is the number of holding registers the PLC exposes.
const BankSize = 100

// Spec holds the nameplate data of the simulated pump.
type Spec struct {
	Model      string
	RatedFlow  float64 // m³/h
	AORMin     float64 // allowable operating range, m³/h
	AORMax     float64
	PORMin     float64 // preferred operating range, m³/h
	PORMax     float64
	RatedNPSHr float64 // m
}

// Spec8x15DMX3 is the pump the simulator models.
var Spec8x15DMX3 = Spec{
	Model:      "8x15DMX-3",
	RatedFlow:  480,
	AORMin:     100,
	AORMax:     1200,
	PORMin:     200,
	PORMax:     800,
	RatedNPSHr: 16.4,
}

// Param describes an operating parameter and its holding register mapping.
type Param struct {
	Register uint16  // holding register address
	Name     string  // display name
	Unit     string  // engineering unit
	Scale    float64 // raw = engineering value * Scale
	Min      float64 // engineering range accepted from sliders and entries
	Max      float64
	Step     float64 // slider increment
	Default  float64
	Decimals int // display precision
}

// Params lists the adjustable operating parameters in display order.
var Params = []Param{
	{Register: RegTemperature, Name: "Temperature", Unit: "°C", Scale: 10, Min: 0, Max: 100, Step: 0.5, Default: 25.0, Decimals: 1},
	{Register: RegPressure, Name: "Pressure", Unit: "bar", Scale: 100, Min: 0, Max: 10, Step: 0.1, Default: 3.0, Decimals: 2},
	{Register: RegFlow, Name: "Flow Rate", Unit: "m³/h", Scale: 10, Min: 0, Max: 1200, Step: 10, Default: 0.0, Decimals: 1},
	{Register: RegStaticHead, Name: "Static Head", Unit: "m", Scale: 10, Min: 0, Max: 10, Step: 0.1, Default: 2.0, Decimals: 1},
	{Register: RegFrictionLoss, Name: "Friction Losses", Unit: "m", Scale: 10, Min: 0, Max: 5, Step: 0.1, Default: 0.5, Decimals: 1},
	{Register: RegPipeDiameter, Name: "Pipe Diameter", Unit: "mm", Scale: 1, Min: 50, Max: 300, Step: 5, Default: 150, Decimals: 0},
	{Register: RegElevation, Name: "Elevation", Unit: "m", Scale: 10, Min: 0, Max: 10, Step: 0.1, Default: 1.0, Decimals: 1},
}

// ParamByRegister returns the parameter mapped to the given register.
func ParamByRegister(reg uint16) (Param, bool) {
	for _, p := range Params {
		if p.Register == reg {
			return p, true
		}
	}
	return Param{}, false
}

// Raw converts an engineering value to its register representation.
func (p Param) Raw(value float64) uint16 {
	return uint16(value*p.Scale + 0.5)
}

// Value converts a register value back to engineering units.
func (p Param) Value(raw uint16) float64 {
	return float64(raw) / p.Scale
}

// InRange reports whether an engineering value is within the parameter range.
func (p Param) InRange(value float64) bool {
	return value >= p.Min && value <= p.Max
}

// Clamp limits an engineering value to the parameter range.
func (p Param) Clamp(value float64) float64 {
	if value < p.Min {
		return p.Min
	}
	if value > p.Max {
		return p.Max
	}
	return value
}

// Format renders an engineering value with unit, e.g. "25.0 °C".
func (p Param) Format(value float64) string {
	return fmt.Sprintf("%.*f %s", p.Decimals, value, p.Unit)
}

// MonitorRegisters lists all mapped registers in monitor display order.
var MonitorRegisters = []uint16{
	RegPumpControl, RegPumpStatus,
	RegTemperature, RegPressure, RegFlow,
	RegStaticHead, RegFrictionLoss, RegPipeDiameter, RegElevation,
}

// RegisterDescription returns the monitor description of a register.
func RegisterDescription(reg uint16) string {
	switch reg {
	case RegPumpControl:
		return "Pump Control"
	case RegPumpStatus:
		return "Pump Status"
	}
	if p, ok := ParamByRegister(reg); ok {
		return p.Name
	}
	return fmt.Sprintf("Register %d", reg)
}

// FormatRegister renders the raw register content for the monitor view.
func FormatRegister(reg, raw uint16) string {
	switch reg {
	case RegPumpControl:
		if raw == 1 {
			return "1 (Start)"
		}
		return "0 (Stop)"
	case RegPumpStatus:
		if raw == 1 {
			return "1 (Running)"
		}
		return "0 (Stopped)"
	}
	if p, ok := ParamByRegister(reg); ok {
		return p.Format(p.Value(raw))
	}
	return fmt.Sprintf("%d", raw)
}
