package dma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memory map[uint16]uint8

func (m memory) Read8(addr uint16) uint8       { return m[addr] }
func (m memory) Write8(addr uint16, val uint8) { m[addr] = val }

type oam struct {
	data [length]uint8
}

func (o *oam) WriteOAM(index uint8, val uint8) {
	o.data[index] = val
}

func TestTransferTakes160Cycles(t *testing.T) {
	src := memory{}
	for i := uint16(0); i < length; i++ {
		src[0xc100+i] = uint8(i) ^ 0x5a
	}
	dst := &oam{}
	d := NewDMA(src, dst)

	d.Write8(AddrDMA, 0xc1)
	assert.Equal(t, uint8(0xc1), d.Read8(AddrDMA))
	require.True(t, d.Active())

	d.Tick(10)
	assert.Equal(t, uint8(9)^0x5a, dst.data[9])
	assert.Zero(t, dst.data[10])

	d.Tick(149)
	assert.True(t, d.Active())
	d.Tick(5)
	assert.False(t, d.Active())
	for i := 0; i < length; i++ {
		assert.Equal(t, uint8(i)^0x5a, dst.data[i], "byte %d", i)
	}
}

func TestRestart(t *testing.T) {
	src := memory{0xc000: 0x11, 0xd000: 0x22}
	dst := &oam{}
	d := NewDMA(src, dst)

	d.Write8(AddrDMA, 0xc0)
	d.Tick(1)
	d.Write8(AddrDMA, 0xd0)
	d.Tick(1)
	assert.Equal(t, uint8(0x22), dst.data[0])
}
