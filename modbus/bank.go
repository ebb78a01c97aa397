package modbus

import "sync"

// Bank is a block of sequential holding registers shared between the Modbus
// server and the simulator. All accessors are safe for concurrent use.
type Bank struct {
	mu   sync.RWMutex
	regs []uint16
}

// NewBank creates a Bank of size zeroed holding registers.
func NewBank(size int) *Bank {
	return &Bank{regs: make([]uint16, size)}
}

// Size returns the number of registers in the bank.
func (b *Bank) Size() int {
	return len(b.regs)
}

// Get returns the value of a single register. The second return value is
// false if the address is outside the bank.
func (b *Bank) Get(address uint16) (uint16, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(address) >= len(b.regs) {
		return 0, false
	}
	return b.regs[address], true
}

// Set writes a single register and reports whether the address was valid.
func (b *Bank) Set(address, value uint16) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(address) >= len(b.regs) {
		return false
	}
	b.regs[address] = value
	return true
}

// GetRange returns a copy of quantity registers starting at address.
func (b *Bank) GetRange(address, quantity uint16) ([]uint16, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(address)+int(quantity) > len(b.regs) {
		return nil, false
	}
	values := make([]uint16, quantity)
	copy(values, b.regs[address:int(address)+int(quantity)])
	return values, true
}

// SetRange writes consecutive registers starting at address.
func (b *Bank) SetRange(address uint16, values []uint16) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(address)+len(values) > len(b.regs) {
		return false
	}
	copy(b.regs[address:], values)
	return true
}
