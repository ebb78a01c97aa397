package modbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankGetSet(t *testing.T) {
	bank := NewBank(100)
	assert.Equal(t, 100, bank.Size())

	assert.True(t, bank.Set(10, 250))
	value, ok := bank.Get(10)
	require.True(t, ok)
	assert.Equal(t, uint16(250), value)

	assert.False(t, bank.Set(100, 1), "address past the end")
	_, ok = bank.Get(100)
	assert.False(t, ok)
}

func TestBankRanges(t *testing.T) {
	bank := NewBank(100)
	require.True(t, bank.SetRange(10, []uint16{250, 300, 0}))

	values, ok := bank.GetRange(10, 3)
	require.True(t, ok)
	assert.Equal(t, []uint16{250, 300, 0}, values)

	_, ok = bank.GetRange(98, 3)
	assert.False(t, ok)
	assert.False(t, bank.SetRange(99, []uint16{1, 2}))
}

func TestBankGetRangeReturnsCopy(t *testing.T) {
	bank := NewBank(10)
	bank.Set(0, 1)
	values, _ := bank.GetRange(0, 1)
	values[0] = 99
	value, _ := bank.Get(0)
	assert.Equal(t, uint16(1), value)
}

func TestBankConcurrentAccess(t *testing.T) {
	bank := NewBank(100)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n uint16) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				bank.Set(n, uint16(j))
				bank.Get(n)
				bank.GetRange(0, 16)
			}
		}(uint16(i))
	}
	wg.Wait()
}
