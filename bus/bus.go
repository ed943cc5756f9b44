package bus

import (
	"github.com/ushitora-anqou/gbemu/util"
)

/*
	GENERAL MEMORY MAP
	Thanks to: https://gbdev.gg8.se/wiki/articles/Memory_Map

	0000-3FFF  16KB ROM bank 00 	From cartridge
	4000-7FFF  16KB ROM Bank 01-NN 	From cartridge
	8000-9FFF  8KB Video RAM (VRAM)
	A000-BFFF  8KB External RAM     In cartridge
	C000-DFFF  8KB Work RAM (WRAM)
	E000-FDFF  Echo region, not wired to WRAM here
	FE00-FE9F  Sprite attribute table (OAM)
	FEA0-FEFF  Not Usable
	FF00-FF7F  I/O Registers
	FF80-FFFE  High RAM (HRAM)
	FFFF-FFFF  Interrupts Enable Register (IE)
*/

type Region int

const (
	RegionROM Region = iota
	RegionVRAM
	RegionExtRAM
	RegionWRAM
	RegionEcho
	RegionOAM
	RegionUnusable
	RegionIO
	RegionHRAM
	RegionIE
)

func (r Region) String() string {
	return [...]string{
		"ROM", "VRAM", "ExtRAM", "WRAM", "Echo", "OAM", "Unusable", "IO", "HRAM", "IE",
	}[r]
}

// RegionOf maps every 16-bit address to the component that owns it.
func RegionOf(addr uint16) Region {
	switch {
	case addr <= 0x7fff:
		return RegionROM
	case addr <= 0x9fff:
		return RegionVRAM
	case addr <= 0xbfff:
		return RegionExtRAM
	case addr <= 0xdfff:
		return RegionWRAM
	case addr <= 0xfdff:
		return RegionEcho
	case addr <= 0xfe9f:
		return RegionOAM
	case addr <= 0xfeff:
		return RegionUnusable
	case addr <= 0xff7f:
		return RegionIO
	case addr <= 0xfffe:
		return RegionHRAM
	default:
		return RegionIE
	}
}

// Interrupt request bits, lowest bit has the highest priority.
const (
	IntVBlank uint8 = 1 << iota
	IntLCDStat
	IntTimer
	IntSerial
	IntJoypad
)

const (
	AddrIF = 0xff0f
	AddrIE = 0xffff
)

// Interrupter is implemented by the interrupt controller. Peripherals use it
// to raise request lines.
type Interrupter interface {
	RequestInterrupt(source uint8)
}

// Memory is anything addressable with absolute 16-bit addresses.
type Memory interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)
}

type InterruptRegisters interface {
	IE() uint8
	IF() uint8
	SetIE(val uint8)
	SetIF(val uint8)
}

// Bus routes accesses to their owners. It only holds references to the
// components; every byte of state lives in them.
type Bus struct {
	Cartridge Memory // 0000-7FFF, A000-BFFF
	VRAM      Memory // 8000-9FFF
	WRAM      Memory // C000-DFFF
	OAM       Memory // FE00-FE9F
	HRAM      Memory // FF80-FFFE
	CPU       InterruptRegisters

	io [0x80]Memory
}

func NewBus() *Bus {
	return &Bus{}
}

// MapIO installs dev as the owner of the I/O registers lo..hi (inclusive).
func (b *Bus) MapIO(lo, hi uint16, dev Memory) {
	for addr := lo; addr <= hi; addr++ {
		b.io[addr-0xff00] = dev
	}
}

func (b *Bus) Read8(addr uint16) uint8 {
	switch RegionOf(addr) {
	case RegionROM, RegionExtRAM:
		return b.Cartridge.Read8(addr)
	case RegionVRAM:
		return b.VRAM.Read8(addr)
	case RegionWRAM:
		return b.WRAM.Read8(addr)
	case RegionEcho, RegionUnusable:
		return 0x00
	case RegionOAM:
		return b.OAM.Read8(addr)
	case RegionIO:
		if addr == AddrIF {
			return b.CPU.IF()
		}
		if dev := b.io[addr-0xff00]; dev != nil {
			return dev.Read8(addr)
		}
		util.Trace("\t<<<READ: unmapped I/O 0x%04x>>>", addr)
		return 0xff
	case RegionHRAM:
		return b.HRAM.Read8(addr)
	default: // RegionIE
		return b.CPU.IE()
	}
}

func (b *Bus) Write8(addr uint16, val uint8) {
	switch RegionOf(addr) {
	case RegionROM, RegionExtRAM:
		b.Cartridge.Write8(addr, val)
	case RegionVRAM:
		b.VRAM.Write8(addr, val)
	case RegionWRAM:
		b.WRAM.Write8(addr, val)
	case RegionEcho, RegionUnusable:
		// Ignored
	case RegionOAM:
		b.OAM.Write8(addr, val)
	case RegionIO:
		if addr == AddrIF {
			b.CPU.SetIF(val)
			return
		}
		if dev := b.io[addr-0xff00]; dev != nil {
			dev.Write8(addr, val)
			return
		}
		util.Trace("\t<<<WRITE: unmapped I/O 0x%04x: 0x%02x>>>", addr, val)
	case RegionHRAM:
		b.HRAM.Write8(addr, val)
	default: // RegionIE
		b.CPU.SetIE(val)
	}
}

func (b *Bus) Read16(addr uint16) uint16 {
	lo := uint16(b.Read8(addr))
	hi := uint16(b.Read8(addr + 1))
	return lo | (hi << 8)
}

// Write16 stores the high byte before the low byte.
func (b *Bus) Write16(addr uint16, val uint16) {
	b.Write8(addr+1, uint8(val>>8))
	b.Write8(addr, uint8(val))
}
