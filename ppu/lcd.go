package ppu

import (
	"github.com/ushitora-anqou/gbemu/bus"
	"github.com/ushitora-anqou/gbemu/constant"
	"github.com/ushitora-anqou/gbemu/util"
)

const (
	AddrLCDC = 0xff40
	AddrSTAT = 0xff41
	AddrSCY  = 0xff42
	AddrSCX  = 0xff43
	AddrLY   = 0xff44
	AddrLYC  = 0xff45
	AddrBGP  = 0xff47
	AddrOBP0 = 0xff48
	AddrOBP1 = 0xff49
	AddrWY   = 0xff4a
	AddrWX   = 0xff4b
)

// LCDC bits
const (
	lcdcBGEnable     = 0
	lcdcOBJEnable    = 1
	lcdcOBJSize      = 2
	lcdcBGMap        = 3
	lcdcTileData     = 4
	lcdcWindowEnable = 5
	lcdcWindowMap    = 6
	lcdcEnable       = 7
)

// STAT bits
const (
	statLYCFlag    = 2
	statHBlankInt  = 3
	statVBlankInt  = 4
	statOAMInt     = 5
	statLYCInt     = 6
	statWriteMask  = 0x78
	statUnusedBit7 = 0x80
)

type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeTransfer
)

func (m Mode) String() string {
	return [...]string{"HBlank", "VBlank", "OAMScan", "Transfer"}[m]
}

// Palette maps the four DMG shades to packed ARGB colors.
type Palette [4]uint32

var DefaultPalette = Palette{
	constant.COLOR_WHITE,
	constant.COLOR_LIGHT_GRAY,
	constant.COLOR_DARK_GRAY,
	constant.COLOR_BLACK,
}

type registers struct {
	lcdc, stat, scy, scx, ly, lyc uint8
	bgp, obp0, obp1, wy, wx       uint8
}

// MapRegisters installs the LCD registers on the I/O page. FF46 belongs to
// the DMA unit.
func (ppu *PPU) MapRegisters(b *bus.Bus) {
	b.MapIO(AddrLCDC, AddrLYC, ppu)
	b.MapIO(AddrBGP, AddrWX, ppu)
}

func (ppu *PPU) enabled() bool {
	return util.Bit(ppu.regs.lcdc, lcdcEnable)
}

func (ppu *PPU) lcdcBit(n uint) bool {
	return util.Bit(ppu.regs.lcdc, n)
}

func (ppu *PPU) LCDC() uint8 {
	return ppu.regs.lcdc
}

func (ppu *PPU) LY() uint8 {
	return ppu.regs.ly
}

func (ppu *PPU) STAT() uint8 {
	return statUnusedBit7 | ppu.regs.stat&0x7c | uint8(ppu.mode)
}

func (ppu *PPU) Read8(addr uint16) uint8 {
	switch addr {
	case AddrLCDC:
		return ppu.regs.lcdc
	case AddrSTAT:
		return ppu.STAT()
	case AddrSCY:
		return ppu.regs.scy
	case AddrSCX:
		return ppu.regs.scx
	case AddrLY:
		return ppu.regs.ly
	case AddrLYC:
		return ppu.regs.lyc
	case AddrBGP:
		return ppu.regs.bgp
	case AddrOBP0:
		return ppu.regs.obp0
	case AddrOBP1:
		return ppu.regs.obp1
	case AddrWY:
		return ppu.regs.wy
	case AddrWX:
		return ppu.regs.wx
	}
	return 0xff
}

func (ppu *PPU) Write8(addr uint16, val uint8) {
	switch addr {
	case AddrLCDC:
		was := ppu.enabled()
		ppu.regs.lcdc = val
		switch {
		case was && !ppu.enabled():
			ppu.turnOff()
		case !was && ppu.enabled():
			ppu.turnOn()
		}
	case AddrSTAT:
		ppu.regs.stat = ppu.regs.stat&^statWriteMask | val&statWriteMask
	case AddrSCY:
		ppu.regs.scy = val
	case AddrSCX:
		ppu.regs.scx = val
	case AddrLY:
		// Read only
	case AddrLYC:
		ppu.regs.lyc = val
		if ppu.enabled() {
			ppu.compareLYC()
		}
	case AddrBGP:
		ppu.regs.bgp = val
	case AddrOBP0:
		ppu.regs.obp0 = val
	case AddrOBP1:
		ppu.regs.obp1 = val
	case AddrWY:
		ppu.regs.wy = val
	case AddrWX:
		ppu.regs.wx = val
	}
}

// setMode switches mode and raises the STAT interrupt when the new mode's
// source is enabled.
func (ppu *PPU) setMode(m Mode) {
	ppu.mode = m
	var src uint
	switch m {
	case ModeHBlank:
		src = statHBlankInt
	case ModeVBlank:
		src = statVBlankInt
	case ModeOAMScan:
		src = statOAMInt
	default:
		return
	}
	if util.Bit(ppu.regs.stat, src) {
		ppu.irq.RequestInterrupt(bus.IntLCDStat)
	}
}

func (ppu *PPU) setLY(ly uint8) {
	ppu.regs.ly = ly
	ppu.compareLYC()
}

// compareLYC updates the coincidence flag. The interrupt fires only when the
// flag goes high.
func (ppu *PPU) compareLYC() {
	was := util.Bit(ppu.regs.stat, statLYCFlag)
	eq := ppu.regs.ly == ppu.regs.lyc
	ppu.regs.stat = util.SetBit(ppu.regs.stat, statLYCFlag, eq)
	if eq && !was && util.Bit(ppu.regs.stat, statLYCInt) {
		ppu.irq.RequestInterrupt(bus.IntLCDStat)
	}
}

func (ppu *PPU) resolve(px pixel) uint32 {
	reg := ppu.regs.bgp
	switch px.source {
	case sourceOBP0:
		reg = ppu.regs.obp0
	case sourceOBP1:
		reg = ppu.regs.obp1
	}
	return ppu.palette[(reg>>(2*px.color))&3]
}
