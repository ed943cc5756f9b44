package timer

import (
	"github.com/ushitora-anqou/gbemu/bus"
)

const (
	AddrDIV  = 0xff04
	AddrTIMA = 0xff05
	AddrTMA  = 0xff06
	AddrTAC  = 0xff07
)

// Divider bit whose falling edge clocks TIMA, indexed by TAC bits 0-1.
var tacBits = [4]uint{9, 3, 5, 7}

// Timer owns the 16-bit internal divider and the TIMA/TMA/TAC registers.
// DIV is the upper byte of the divider.
type Timer struct {
	irq            bus.Interrupter
	div            uint16
	tima, tma, tac uint8
}

func NewTimer(irq bus.Interrupter) *Timer {
	return &Timer{
		irq: irq,
		div: 0xabcc,
		tac: 0xf8,
	}
}

func (t *Timer) MapRegisters(b *bus.Bus) {
	b.MapIO(AddrDIV, AddrTAC, t)
}

func (t *Timer) DIV() uint8 {
	return uint8(t.div >> 8)
}

func (t *Timer) TIMA() uint8 {
	return t.tima
}

func (t *Timer) TMA() uint8 {
	return t.tma
}

func (t *Timer) TAC() uint8 {
	return t.tac | 0xf8
}

func (t *Timer) Read8(addr uint16) uint8 {
	switch addr {
	case AddrDIV:
		return t.DIV()
	case AddrTIMA:
		return t.TIMA()
	case AddrTMA:
		return t.TMA()
	case AddrTAC:
		return t.TAC()
	}
	return 0xff
}

// Write8 updates a register. Resetting DIV or changing TAC can pull the
// selected divider bit low, which clocks TIMA like a regular falling edge.
func (t *Timer) Write8(addr uint16, val uint8) {
	switch addr {
	case AddrDIV:
		t.setDivider(0)
	case AddrTIMA:
		t.tima = val
	case AddrTMA:
		t.tma = val
	case AddrTAC:
		before := t.signal()
		t.tac = val & 0x07
		if before && !t.signal() {
			t.incTIMA()
		}
	}
}

func (t *Timer) timerEnable() bool {
	return (t.tac>>2)&1 != 0
}

func (t *Timer) signal() bool {
	return t.timerEnable() && (t.div>>tacBits[t.tac&3])&1 != 0
}

func (t *Timer) setDivider(val uint16) {
	before := t.signal()
	t.div = val
	if before && !t.signal() {
		t.incTIMA()
	}
}

func (t *Timer) incTIMA() {
	if t.tima == 0xff {
		t.tima = t.tma
		t.irq.RequestInterrupt(bus.IntTimer)
		return
	}
	t.tima++
}

// Tick advances the divider by ticks dots.
func (t *Timer) Tick(ticks uint) {
	for ; ticks > 0; ticks-- {
		t.setDivider(t.div + 1)
	}
}
