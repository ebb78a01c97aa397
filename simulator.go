package pumpsim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rwirdemann/pumpsim/modbus"
)

// Snapshot is a consistent copy of the simulator state for rendering.
type Snapshot struct {
	Raw     map[uint16]uint16  // raw register contents
	Values  map[uint16]float64 // engineering values of the mapped parameters
	Running bool
	NPSH    NPSH
}

// Simulator owns the PLC state. UI writes go through SetParam, StartPump and
// StopPump; external Modbus writes land in the register bank and are picked
// up by the Sync loop, which mirrors the pump status register and applies
// the pump's flow behavior on control transitions.
type Simulator struct {
	bank     *modbus.Bank
	spec     Spec
	logger   modbus.Logger
	interval time.Duration

	mu   sync.Mutex
	raw  map[uint16]uint16 // last seen register values
	quit chan struct{}
}

// NewSimulator creates a Simulator backed by bank and seeds the parameter
// defaults into it. logger may be nil.
func NewSimulator(bank *modbus.Bank, spec Spec, interval time.Duration, logger modbus.Logger) *Simulator {
	s := &Simulator{
		bank:     bank,
		spec:     spec,
		logger:   logger,
		interval: interval,
		raw:      make(map[uint16]uint16),
	}
	for _, p := range Params {
		s.setRaw(p.Register, p.Raw(p.Default))
	}
	s.setRaw(RegPumpControl, 0)
	s.setRaw(RegPumpStatus, 0)
	return s
}

// Start runs the register mirror loop until Stop is called.
func (s *Simulator) Start() {
	s.quit = make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sync()
			case <-s.quit:
				return
			}
		}
	}()
}

// Stop terminates the mirror loop.
func (s *Simulator) Stop() {
	if s.quit != nil {
		close(s.quit)
		s.quit = nil
	}
}

// SetParam sets an operating parameter from the UI and writes its register.
func (s *Simulator) SetParam(reg uint16, value float64) error {
	p, ok := ParamByRegister(reg)
	if !ok {
		return fmt.Errorf("register %d is not mapped to a parameter", reg)
	}
	if !p.InRange(value) {
		return fmt.Errorf("%s %s out of range %g..%g", p.Name, p.Format(value), p.Min, p.Max)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRaw(reg, p.Raw(value))
	return nil
}

// Param returns the current engineering value of a parameter.
func (s *Simulator) Param(reg uint16) float64 {
	p, ok := ParamByRegister(reg)
	if !ok {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return p.Value(s.raw[reg])
}

// Running reports whether the pump status register indicates a running pump.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw[RegPumpStatus] == 1
}

// StartPump starts the pump. A started pump with near-zero flow settles on a
// random flow within the preferred operating range.
func (s *Simulator) StartPump() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRaw(RegPumpControl, 1)
	s.setRaw(RegPumpStatus, 1)
	s.settleFlow()
}

// StopPump stops the pump. Flow drops to zero.
func (s *Simulator) StopPump() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRaw(RegPumpControl, 0)
	s.setRaw(RegPumpStatus, 0)
	s.setRaw(RegFlow, 0)
}

// Sync runs one mirror step: registers changed by external Modbus clients
// are read back, the status register is aligned with the control register
// and control transitions trigger the same flow behavior as the UI buttons.
func (s *Simulator) Sync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	previousControl := s.raw[RegPumpControl]
	for _, reg := range MonitorRegisters {
		if value, ok := s.bank.Get(reg); ok {
			s.raw[reg] = value
		}
	}

	// pump status always follows pump control
	s.setRaw(RegPumpStatus, s.raw[RegPumpControl])

	if previousControl == s.raw[RegPumpControl] {
		return
	}
	if s.raw[RegPumpControl] == 1 {
		s.log("%s: external pump start detected", time.Now().Format(time.DateTime))
		s.settleFlow()
	} else {
		s.log("%s: external pump stop detected", time.Now().Format(time.DateTime))
		s.setRaw(RegFlow, 0)
	}
}

// Snapshot returns a copy of the current state including NPSH figures.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Raw:     make(map[uint16]uint16, len(s.raw)),
		Values:  make(map[uint16]float64, len(Params)),
		Running: s.raw[RegPumpStatus] == 1,
	}
	for reg, value := range s.raw {
		snap.Raw[reg] = value
	}
	for _, p := range Params {
		snap.Values[p.Register] = p.Value(s.raw[p.Register])
	}
	snap.NPSH = ComputeNPSH(
		snap.Values[RegPressure],
		snap.Values[RegTemperature],
		snap.Values[RegFlow],
		snap.Values[RegStaticHead],
		snap.Values[RegFrictionLoss],
	)
	return snap
}

// Spec returns the nameplate data of the simulated pump.
func (s *Simulator) Spec() Spec {
	return s.spec
}

// settleFlow picks a random flow inside the preferred operating range when
// the current flow is effectively zero. Callers must hold s.mu.
func (s *Simulator) settleFlow() {
	if s.raw[RegFlow] >= 100 {
		return
	}
	p, _ := ParamByRegister(RegFlow)
	flow := 200 + rand.Float64()*400 // 200..600 m³/h, inside the POR
	s.setRaw(RegFlow, p.Raw(flow))
}

// setRaw updates the cache and the register bank. Callers must hold s.mu
// unless the simulator is not yet shared.
func (s *Simulator) setRaw(reg, value uint16) {
	s.raw[reg] = value
	s.bank.Set(reg, value)
}

func (s *Simulator) log(format string, args ...any) {
	if s.logger != nil {
		s.logger.Append(fmt.Sprintf(format, args...))
	}
}
