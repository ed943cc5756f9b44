package joypad

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ushitora-anqou/gbemu/bus"
)

type interruptRecorder struct {
	count int
}

func (r *interruptRecorder) RequestInterrupt(source uint8) {
	if source == bus.IntJoypad {
		r.count++
	}
}

func TestSelectLatch(t *testing.T) {
	j := NewJoypad(&interruptRecorder{})
	j.SetButtons(ButtonA | ButtonDown)
	j.Update()

	table := []struct {
		sel, want uint8
	}{
		{0x30, 0xff}, // nothing selected
		{0x20, 0xe7}, // directions: Down low
		{0x10, 0xde}, // actions: A low
		{0x00, 0xc6}, // both
	}
	for _, entry := range table {
		j.Write8(AddrP1, entry.sel)
		assert.Equal(t, entry.want, j.Read8(AddrP1), "select %02x", entry.sel)
	}
}

func TestInputIsLatchedOnUpdate(t *testing.T) {
	j := NewJoypad(&interruptRecorder{})
	j.Write8(AddrP1, 0x10)

	j.SetButtons(ButtonStart)
	assert.Equal(t, uint8(0xdf), j.Read8(AddrP1))
	j.Update()
	assert.Equal(t, uint8(0xd7), j.Read8(AddrP1))
	assert.Equal(t, ButtonStart, j.Buttons())
}

func TestPressEdgeRaisesInterrupt(t *testing.T) {
	irq := &interruptRecorder{}
	j := NewJoypad(irq)
	j.Write8(AddrP1, 0x20) // directions only

	j.SetButtons(ButtonB)
	j.Update()
	assert.Equal(t, 0, irq.count, "unselected line")

	j.SetButtons(ButtonB | ButtonLeft)
	j.Update()
	assert.Equal(t, 1, irq.count)

	j.Update()
	assert.Equal(t, 1, irq.count, "held buttons do not retrigger")

	j.SetButtons(0)
	j.Update()
	assert.Equal(t, 1, irq.count, "releases do not trigger")
}
