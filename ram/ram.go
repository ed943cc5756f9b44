package ram

// RAM is a fixed-size byte array mapped at a base address.
type RAM struct {
	base uint16
	data []uint8
}

func NewRAM(base uint16, size int) *RAM {
	return &RAM{base: base, data: make([]uint8, size)}
}

// NewWorkRAM returns the 8 KiB work RAM at C000-DFFF.
func NewWorkRAM() *RAM {
	return NewRAM(0xc000, 0x2000)
}

// NewHighRAM returns the 127-byte high RAM at FF80-FFFE.
func NewHighRAM() *RAM {
	return NewRAM(0xff80, 0x007f)
}

func (r *RAM) Read8(addr uint16) uint8 {
	return r.data[addr-r.base]
}

func (r *RAM) Write8(addr uint16, val uint8) {
	r.data[addr-r.base] = val
}
