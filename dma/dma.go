package dma

import (
	"github.com/ushitora-anqou/gbemu/bus"
)

const (
	AddrDMA = 0xff46
	length  = 0xa0
)

type OAMWriter interface {
	WriteOAM(index uint8, val uint8)
}

// DMA copies XX00-XX9F into OAM, one byte per machine cycle, after a write
// of XX to FF46.
type DMA struct {
	src    bus.Memory
	oam    OAMWriter
	reg    uint8
	active bool
	source uint16
	index  int
}

func NewDMA(src bus.Memory, oam OAMWriter) *DMA {
	return &DMA{src: src, oam: oam, reg: 0xff}
}

func (d *DMA) MapRegisters(b *bus.Bus) {
	b.MapIO(AddrDMA, AddrDMA, d)
}

func (d *DMA) Active() bool {
	return d.active
}

func (d *DMA) Read8(addr uint16) uint8 {
	return d.reg
}

// Write8 starts a transfer. A transfer already running restarts from the
// new source.
func (d *DMA) Write8(addr uint16, val uint8) {
	d.reg = val
	d.source = uint16(val) << 8
	d.index = 0
	d.active = true
}

func (d *DMA) Tick(cycles uint) {
	for ; cycles > 0 && d.active; cycles-- {
		d.oam.WriteOAM(uint8(d.index), d.src.Read8(d.source+uint16(d.index)))
		d.index++
		if d.index == length {
			d.active = false
		}
	}
}
