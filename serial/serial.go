package serial

import (
	"io"

	"github.com/ushitora-anqou/gbemu/bus"
	"github.com/ushitora-anqou/gbemu/util"
)

const (
	AddrSB = 0xff01
	AddrSC = 0xff02
)

// Serial is a link port with nothing on the other end. Transfers clocked
// internally finish at once and are echoed to out.
type Serial struct {
	irq    bus.Interrupter
	out    io.Writer
	sb, sc uint8
}

func NewSerial(irq bus.Interrupter, out io.Writer) *Serial {
	return &Serial{irq: irq, out: out}
}

func (s *Serial) MapRegisters(b *bus.Bus) {
	b.MapIO(AddrSB, AddrSC, s)
}

func (s *Serial) Read8(addr uint16) uint8 {
	if addr == AddrSB {
		return s.sb
	}
	return s.sc | 0x7e
}

func (s *Serial) Write8(addr uint16, val uint8) {
	if addr == AddrSB {
		s.sb = val
		return
	}
	s.sc = val & 0x81
	if s.sc != 0x81 {
		return
	}

	if s.out != nil {
		if _, err := s.out.Write([]byte{s.sb}); err != nil {
			util.Logf("serial", "echo failed: %v", err)
		}
	}
	util.Trace("\t<<<SERIAL: 0x%02x>>>", s.sb)
	s.sb = 0xff
	s.sc &^= 0x80
	s.irq.RequestInterrupt(bus.IntSerial)
}
