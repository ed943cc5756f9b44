package cpu

import "math/bits"

const vectorBase = 0x40

// Interrupts holds IE, IF, and the master enable. An EI only sets
// enablePending; the CPU promotes it to ime at the end of the following step.
type Interrupts struct {
	ie, flags     uint8
	ime           bool
	enablePending bool
}

func (i *Interrupts) IE() uint8 {
	return i.ie
}

// IF reads the unused upper bits as 1.
func (i *Interrupts) IF() uint8 {
	return 0xe0 | i.flags
}

func (i *Interrupts) SetIE(val uint8) {
	i.ie = val
}

func (i *Interrupts) SetIF(val uint8) {
	i.flags = val & 0x1f
}

func (i *Interrupts) RequestInterrupt(source uint8) {
	i.flags |= source & 0x1f
}

func (i *Interrupts) IME() bool {
	return i.ime
}

func (i *Interrupts) pending() uint8 {
	return i.ie & i.flags & 0x1f
}

// next returns the highest-priority pending interrupt and its vector.
func (i *Interrupts) next() (bit uint8, vector uint16, ok bool) {
	p := i.pending()
	if p == 0 {
		return 0, 0, false
	}
	n := bits.TrailingZeros8(p)
	return uint8(1) << n, vectorBase + 8*uint16(n), true
}
