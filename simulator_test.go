package pumpsim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwirdemann/pumpsim/modbus"
)

func newTestSimulator() (*Simulator, *modbus.Bank) {
	bank := modbus.NewBank(BankSize)
	return NewSimulator(bank, Spec8x15DMX3, 500*time.Millisecond, nil), bank
}

func TestNewSimulatorSeedsDefaults(t *testing.T) {
	_, bank := newTestSimulator()

	tests := []struct {
		reg  uint16
		want uint16
	}{
		{RegPumpControl, 0},
		{RegPumpStatus, 0},
		{RegTemperature, 250},
		{RegPressure, 300},
		{RegFlow, 0},
		{RegStaticHead, 20},
		{RegFrictionLoss, 5},
		{RegPipeDiameter, 150},
		{RegElevation, 10},
	}
	for _, tt := range tests {
		value, ok := bank.Get(tt.reg)
		require.True(t, ok)
		assert.Equal(t, tt.want, value, "register %d", tt.reg)
	}
}

func TestSetParamWritesRegister(t *testing.T) {
	sim, bank := newTestSimulator()

	require.NoError(t, sim.SetParam(RegPressure, 4.5))
	value, _ := bank.Get(RegPressure)
	assert.Equal(t, uint16(450), value)
	assert.InDelta(t, 4.5, sim.Param(RegPressure), 1e-9)
}

func TestSetParamRejectsOutOfRange(t *testing.T) {
	sim, bank := newTestSimulator()

	assert.Error(t, sim.SetParam(RegTemperature, 101))
	assert.Error(t, sim.SetParam(RegPipeDiameter, 40))
	assert.Error(t, sim.SetParam(RegPumpStatus, 1), "status is not an adjustable parameter")

	value, _ := bank.Get(RegTemperature)
	assert.Equal(t, uint16(250), value, "rejected writes leave the register alone")
}

func TestStartPumpSettlesFlowInsidePOR(t *testing.T) {
	sim, bank := newTestSimulator()

	sim.StartPump()
	assert.True(t, sim.Running())
	control, _ := bank.Get(RegPumpControl)
	status, _ := bank.Get(RegPumpStatus)
	assert.Equal(t, uint16(1), control)
	assert.Equal(t, uint16(1), status)

	flow := sim.Param(RegFlow)
	assert.GreaterOrEqual(t, flow, 200.0)
	assert.LessOrEqual(t, flow, 600.0)
}

func TestStartPumpKeepsEstablishedFlow(t *testing.T) {
	sim, _ := newTestSimulator()

	require.NoError(t, sim.SetParam(RegFlow, 480))
	sim.StartPump()
	assert.InDelta(t, 480, sim.Param(RegFlow), 1e-9)
}

func TestStopPumpDropsFlowToZero(t *testing.T) {
	sim, bank := newTestSimulator()

	sim.StartPump()
	sim.StopPump()
	assert.False(t, sim.Running())
	flow, _ := bank.Get(RegFlow)
	assert.Equal(t, uint16(0), flow)
}

func TestSyncMirrorsExternalPumpStart(t *testing.T) {
	sim, bank := newTestSimulator()

	// an external Modbus client writes the control register
	bank.Set(RegPumpControl, 1)
	sim.Sync()

	status, _ := bank.Get(RegPumpStatus)
	assert.Equal(t, uint16(1), status, "status follows control")
	flow := sim.Param(RegFlow)
	assert.GreaterOrEqual(t, flow, 200.0)
	assert.LessOrEqual(t, flow, 600.0)
}

func TestSyncMirrorsExternalPumpStop(t *testing.T) {
	sim, bank := newTestSimulator()

	sim.StartPump()
	bank.Set(RegPumpControl, 0)
	sim.Sync()

	assert.False(t, sim.Running())
	flow, _ := bank.Get(RegFlow)
	assert.Equal(t, uint16(0), flow)
}

func TestSyncPicksUpExternalParameterWrites(t *testing.T) {
	sim, bank := newTestSimulator()

	bank.Set(RegTemperature, 300)
	bank.Set(RegPressure, 120)
	sim.Sync()

	snap := sim.Snapshot()
	assert.InDelta(t, 30.0, snap.Values[RegTemperature], 1e-9)
	assert.InDelta(t, 1.2, snap.Values[RegPressure], 1e-9)
}

func TestSyncIsIdempotentWithoutExternalWrites(t *testing.T) {
	sim, _ := newTestSimulator()

	sim.StartPump()
	before := sim.Param(RegFlow)
	sim.Sync()
	sim.Sync()
	assert.InDelta(t, before, sim.Param(RegFlow), 1e-9, "flow is not re-randomized")
	assert.True(t, sim.Running())
}

func TestSnapshotComputesNPSH(t *testing.T) {
	sim, _ := newTestSimulator()

	require.NoError(t, sim.SetParam(RegFlow, 480))
	snap := sim.Snapshot()

	assert.InDelta(t, 16.4, snap.NPSH.Required, 1e-9, "rated NPSHr at rated flow")
	assert.InDelta(t, 28.411, snap.NPSH.Available, 1e-3)
	assert.InDelta(t, snap.NPSH.Available-snap.NPSH.Required, snap.NPSH.Margin(), 1e-9)
}

func TestStartStopLifecycle(t *testing.T) {
	bank := modbus.NewBank(BankSize)
	sim := NewSimulator(bank, Spec8x15DMX3, time.Millisecond, nil)

	sim.Start()
	bank.Set(RegPumpControl, 1)
	assert.Eventually(t, sim.Running, time.Second, 5*time.Millisecond)
	sim.Stop()
}
