package joypad

import (
	"sync/atomic"

	"github.com/ushitora-anqou/gbemu/bus"
	"github.com/ushitora-anqou/gbemu/constant"
)

const AddrP1 = 0xff00

// Buttons is the set of pressed buttons. The low nibble holds the
// directions and the high nibble the actions, each in P1 bit order.
type Buttons uint8

const (
	ButtonRight  Buttons = 1 << constant.DIR_RIGHT
	ButtonLeft   Buttons = 1 << constant.DIR_LEFT
	ButtonUp     Buttons = 1 << constant.DIR_UP
	ButtonDown   Buttons = 1 << constant.DIR_DOWN
	ButtonA      Buttons = 1 << (4 + constant.ACT_A)
	ButtonB      Buttons = 1 << (4 + constant.ACT_B)
	ButtonSelect Buttons = 1 << (4 + constant.ACT_SELECT)
	ButtonStart  Buttons = 1 << (4 + constant.ACT_START)
)

func (b Buttons) Direction() uint8 {
	return uint8(b) & 0x0f
}

func (b Buttons) Action() uint8 {
	return uint8(b) >> 4
}

// Joypad is the P1 register. The host publishes the pressed set through
// SetButtons from any goroutine; the core picks it up in Update.
type Joypad struct {
	irq                           bus.Interrupter
	selectAction, selectDirection bool

	input   atomic.Uint32
	current Buttons
}

func NewJoypad(irq bus.Interrupter) *Joypad {
	return &Joypad{irq: irq}
}

func (j *Joypad) MapRegisters(b *bus.Bus) {
	b.MapIO(AddrP1, AddrP1, j)
}

func (j *Joypad) SetButtons(b Buttons) {
	j.input.Store(uint32(b))
}

func (j *Joypad) Buttons() Buttons {
	return j.current
}

// Update latches the host's buttons. A button going down on a selected line
// raises the joypad interrupt.
func (j *Joypad) Update() {
	next := Buttons(j.input.Load())
	pressed := next &^ j.current
	j.current = next
	if j.lines(pressed) != 0 {
		j.irq.RequestInterrupt(bus.IntJoypad)
	}
}

// lines returns the selected button lines of b, active high.
func (j *Joypad) lines(b Buttons) uint8 {
	var val uint8
	if j.selectDirection {
		val |= b.Direction()
	}
	if j.selectAction {
		val |= b.Action()
	}
	return val
}

func (j *Joypad) Read8(addr uint16) uint8 {
	val := uint8(0xc0)
	if !j.selectAction {
		val |= 1 << 5
	}
	if !j.selectDirection {
		val |= 1 << 4
	}
	return val | 0x0f&^j.lines(j.current)
}

func (j *Joypad) Write8(addr uint16, val uint8) {
	j.selectAction = (val>>5)&1 == 0
	j.selectDirection = (val>>4)&1 == 0
}
