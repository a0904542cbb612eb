package dcpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLoadAndGet(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Load([]uint16{0x1000, 0x2000, 0x3000}))

	assert.Equal(t, uint16(0x1000), m.Get(0))
	assert.Equal(t, uint16(0x2000), m.Get(1))
	assert.Equal(t, uint16(0x3000), m.Get(2))
	assert.Equal(t, 3, m.Loaded())
}

func TestMemoryLoadAppends(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Load([]uint16{0x1}))
	require.NoError(t, m.Load([]uint16{0x2, 0x3}))

	assert.Equal(t, uint16(0x1), m.Get(0))
	assert.Equal(t, uint16(0x2), m.Get(1))
	assert.Equal(t, uint16(0x3), m.Get(2))
	assert.Equal(t, 3, m.Loaded())
}

func TestMemoryLoadOverflow(t *testing.T) {
	m := NewMemory()
	big := make([]uint16, MemoryCapacity)
	require.NoError(t, m.Load(big))
	assert.Error(t, m.Load([]uint16{0x1}))
}

func TestMemoryHasWordAt(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Load([]uint16{0x1, 0x2}))

	assert.True(t, m.HasWordAt(0))
	assert.True(t, m.HasWordAt(1))
	assert.False(t, m.HasWordAt(2))
}

func TestMemorySetDoesNotExtendLoaded(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Load([]uint16{0x1}))

	m.Set(500, 0xBEEF)
	assert.Equal(t, uint16(0xBEEF), m.Get(500))
	assert.False(t, m.HasWordAt(500))
	assert.Equal(t, 1, m.Loaded())
}
