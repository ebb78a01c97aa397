package pumpsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamScaling(t *testing.T) {
	temp, ok := ParamByRegister(RegTemperature)
	require.True(t, ok)
	assert.Equal(t, uint16(250), temp.Raw(25.0))
	assert.InDelta(t, 25.0, temp.Value(250), 1e-9)

	pressure, ok := ParamByRegister(RegPressure)
	require.True(t, ok)
	assert.Equal(t, uint16(300), pressure.Raw(3.0))
	assert.Equal(t, uint16(345), pressure.Raw(3.45))

	diameter, ok := ParamByRegister(RegPipeDiameter)
	require.True(t, ok)
	assert.Equal(t, uint16(150), diameter.Raw(150))
}

func TestParamFormat(t *testing.T) {
	temp, _ := ParamByRegister(RegTemperature)
	assert.Equal(t, "25.0 °C", temp.Format(25))

	pressure, _ := ParamByRegister(RegPressure)
	assert.Equal(t, "3.00 bar", pressure.Format(3))

	diameter, _ := ParamByRegister(RegPipeDiameter)
	assert.Equal(t, "150 mm", diameter.Format(150))
}

func TestParamRange(t *testing.T) {
	flow, _ := ParamByRegister(RegFlow)
	assert.True(t, flow.InRange(0))
	assert.True(t, flow.InRange(1200))
	assert.False(t, flow.InRange(1201))
	assert.Equal(t, 1200.0, flow.Clamp(5000))

	diameter, _ := ParamByRegister(RegPipeDiameter)
	assert.Equal(t, 50.0, diameter.Clamp(0))
}

func TestFormatRegister(t *testing.T) {
	assert.Equal(t, "0 (Stop)", FormatRegister(RegPumpControl, 0))
	assert.Equal(t, "1 (Start)", FormatRegister(RegPumpControl, 1))
	assert.Equal(t, "1 (Running)", FormatRegister(RegPumpStatus, 1))
	assert.Equal(t, "25.0 °C", FormatRegister(RegTemperature, 250))
	assert.Equal(t, "3.00 bar", FormatRegister(RegPressure, 300))
	assert.Equal(t, "42", FormatRegister(99, 42))
}

func TestRegisterDescription(t *testing.T) {
	assert.Equal(t, "Pump Control", RegisterDescription(RegPumpControl))
	assert.Equal(t, "Flow Rate", RegisterDescription(RegFlow))
	assert.Equal(t, "Register 99", RegisterDescription(99))
}
