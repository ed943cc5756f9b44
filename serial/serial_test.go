package serial

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ushitora-anqou/gbemu/bus"
)

type interruptRecorder struct {
	requests []uint8
}

func (r *interruptRecorder) RequestInterrupt(source uint8) {
	r.requests = append(r.requests, source)
}

func TestInternalClockTransfer(t *testing.T) {
	var out bytes.Buffer
	irq := &interruptRecorder{}
	s := NewSerial(irq, &out)

	for _, c := range []byte("ok\n") {
		s.Write8(AddrSB, c)
		s.Write8(AddrSC, 0x81)
	}
	assert.Equal(t, "ok\n", out.String())
	assert.Equal(t, uint8(0xff), s.Read8(AddrSB))
	assert.Equal(t, uint8(0x7f), s.Read8(AddrSC), "transfer flag clears on completion")
	assert.Equal(t, []uint8{bus.IntSerial, bus.IntSerial, bus.IntSerial}, irq.requests)
}

func TestExternalClockWaits(t *testing.T) {
	var out bytes.Buffer
	irq := &interruptRecorder{}
	s := NewSerial(irq, &out)

	s.Write8(AddrSB, 'x')
	s.Write8(AddrSC, 0x80)
	assert.Empty(t, out.String())
	assert.Empty(t, irq.requests)
	assert.Equal(t, uint8('x'), s.Read8(AddrSB))
	assert.Equal(t, uint8(0xfe), s.Read8(AddrSC))
}

func TestNilWriter(t *testing.T) {
	s := NewSerial(&interruptRecorder{}, nil)
	s.Write8(AddrSB, 'x')
	s.Write8(AddrSC, 0x81)
	assert.Equal(t, uint8(0xff), s.Read8(AddrSB))
}
