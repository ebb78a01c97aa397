package modbus

import (
	"fmt"
	"time"

	"github.com/simonvetter/modbus"
)

// Logger receives connection and traffic lines for display in a UI log pane.
type Logger interface {
	Append(text string)
}

// Server exposes a register bank as a single Modbus/TCP slave. Protocol
// handling is delegated entirely to the modbus library; this type only maps
// holding register requests onto the bank. Like the PLC it simulates, the
// server answers any unit id.
type Server struct {
	url        string
	timeout    time.Duration
	maxClients uint
	bank       *Bank
	logger     Logger
	server     *modbus.ModbusServer
	running    bool
}

// NewServer creates a Server listening on url (e.g. tcp://0.0.0.0:5502)
// once started. logger may be nil.
func NewServer(url string, timeout time.Duration, maxClients uint, bank *Bank, logger Logger) *Server {
	return &Server{
		url:        url,
		timeout:    timeout,
		maxClients: maxClients,
		bank:       bank,
		logger:     logger,
	}
}

// Start brings up the TCP listener.
func (s *Server) Start() error {
	server, err := modbus.NewServer(&modbus.ServerConfiguration{
		URL:        s.url,
		Timeout:    s.timeout,
		MaxClients: s.maxClients,
	}, s)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	s.server = server
	s.running = true
	s.log("%s: listening on %s", timestamp(), s.url)
	return nil
}

// Stop shuts the listener down and disconnects all clients.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	err := s.server.Stop()
	s.server = nil
	s.running = false
	s.log("%s: server stopped", timestamp())
	return err
}

// Running reports whether the listener is up.
func (s *Server) Running() bool {
	return s.running
}

// URL returns the listen url.
func (s *Server) URL() string {
	return s.url
}

// HandleHoldingRegisters serves function codes 0x03, 0x06 and 0x10 from the
// register bank.
func (s *Server) HandleHoldingRegisters(req *modbus.HoldingRegistersRequest) ([]uint16, error) {
	if req.IsWrite {
		if !s.bank.SetRange(req.Addr, req.Args) {
			return nil, modbus.ErrIllegalDataAddress
		}
		s.log("%s req: %s write hr %d+%d: %v", timestamp(), req.ClientAddr, req.Addr, req.Quantity, req.Args)
	} else {
		s.log("%s req: %s read hr %d+%d", timestamp(), req.ClientAddr, req.Addr, req.Quantity)
	}
	values, ok := s.bank.GetRange(req.Addr, req.Quantity)
	if !ok {
		return nil, modbus.ErrIllegalDataAddress
	}
	return values, nil
}

// HandleCoils rejects coil access, the PLC only exposes holding registers.
func (s *Server) HandleCoils(req *modbus.CoilsRequest) ([]bool, error) {
	return nil, modbus.ErrIllegalFunction
}

// HandleDiscreteInputs rejects discrete input access.
func (s *Server) HandleDiscreteInputs(req *modbus.DiscreteInputsRequest) ([]bool, error) {
	return nil, modbus.ErrIllegalFunction
}

// HandleInputRegisters rejects input register access.
func (s *Server) HandleInputRegisters(req *modbus.InputRegistersRequest) ([]uint16, error) {
	return nil, modbus.ErrIllegalFunction
}

func (s *Server) log(format string, args ...any) {
	if s.logger != nil {
		s.logger.Append(fmt.Sprintf(format, args...))
	}
}

func timestamp() string {
	return time.Now().Format(time.DateTime)
}
