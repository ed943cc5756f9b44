package ppu

import (
	"github.com/ushitora-anqou/gbemu/bus"
	"github.com/ushitora-anqou/gbemu/constant"
	"github.com/ushitora-anqou/gbemu/util"
)

const (
	oamScanTicks = 80
	vramBase     = 0x8000
	oamBase      = 0xfe00
)

// Framebuffer is one frame, row-major, packed ARGB.
type Framebuffer [constant.LCD_WIDTH * constant.LCD_HEIGHT]uint32

type PPU struct {
	irq     bus.Interrupter
	vram    [0x2000]uint8
	oam     [oamSize]uint8
	regs    registers
	palette Palette

	restrictAccess bool

	mode        Mode
	lineTicks   uint
	offTicks    uint
	frame       uint64
	windowLine  uint8
	windowDrawn bool

	objs objectList
	pipe pipeline

	// back is drawn into; front holds the last completed frame until the
	// host swaps it out.
	back, front *Framebuffer
}

func NewPPU(irq bus.Interrupter) *PPU {
	ppu := &PPU{
		irq:            irq,
		palette:        DefaultPalette,
		restrictAccess: true,
		back:           &Framebuffer{},
		front:          &Framebuffer{},
	}
	ppu.regs.lcdc = 0x91
	ppu.regs.bgp = 0xfc
	ppu.turnOn()
	return ppu
}

// SetPalette replaces the four shades. It applies from the next pixel on.
func (ppu *PPU) SetPalette(p Palette) {
	ppu.palette = p
}

// SetAccessRestriction selects whether the CPU is locked out of VRAM in
// mode 3 and of OAM in modes 2 and 3.
func (ppu *PPU) SetAccessRestriction(restrict bool) {
	ppu.restrictAccess = restrict
}

func (ppu *PPU) Mode() Mode {
	return ppu.mode
}

// Frame counts published frames.
func (ppu *PPU) Frame() uint64 {
	return ppu.frame
}

// SwapFramebuffer hands the host the last completed frame in exchange for a
// buffer the PPU will use from now on.
func (ppu *PPU) SwapFramebuffer(fb *Framebuffer) *Framebuffer {
	if fb == nil {
		fb = &Framebuffer{}
	}
	done := ppu.front
	ppu.front = fb
	return done
}

// Tick advances the PPU by the given number of dots.
func (ppu *PPU) Tick(ticks uint) {
	for i := uint(0); i < ticks; i++ {
		ppu.tick()
	}
}

func (ppu *PPU) tick() {
	if !ppu.enabled() {
		ppu.offTicks++
		if ppu.offTicks >= constant.FRAME_TICKS {
			ppu.offTicks = 0
			ppu.blank()
			ppu.publish()
		}
		return
	}

	ppu.lineTicks++
	switch ppu.mode {
	case ModeOAMScan:
		if ppu.lineTicks >= oamScanTicks {
			ppu.setMode(ModeTransfer)
			ppu.startTransfer()
		}

	case ModeTransfer:
		if ppu.transfer() || ppu.lineTicks >= constant.TICKS_PER_LINE {
			ppu.setMode(ModeHBlank)
		}

	case ModeHBlank:
		if ppu.lineTicks < constant.TICKS_PER_LINE {
			return
		}
		ppu.nextLine()
		if ppu.regs.ly == constant.LCD_HEIGHT {
			ppu.setMode(ModeVBlank)
			ppu.irq.RequestInterrupt(bus.IntVBlank)
			ppu.publish()
		} else {
			ppu.startOAMScan()
		}

	case ModeVBlank:
		if ppu.lineTicks < constant.TICKS_PER_LINE {
			return
		}
		ppu.nextLine()
		if ppu.regs.ly == constant.LINES_PER_FRAME {
			ppu.windowLine = 0
			ppu.setLY(0)
			ppu.startOAMScan()
		}
	}
}

func (ppu *PPU) nextLine() {
	if ppu.windowDrawn {
		ppu.windowLine++
		ppu.windowDrawn = false
	}
	ppu.lineTicks = 0
	ppu.setLY(ppu.regs.ly + 1)
}

func (ppu *PPU) startOAMScan() {
	ppu.setMode(ModeOAMScan)
	ppu.objs.scan(&ppu.oam, ppu.regs.ly, ppu.objectHeight())
}

func (ppu *PPU) publish() {
	ppu.back, ppu.front = ppu.front, ppu.back
	ppu.frame++
}

func (ppu *PPU) blank() {
	for i := range ppu.back {
		ppu.back[i] = ppu.palette[0]
	}
}

// turnOff freezes the line counters at LY=0 in mode 0 and blanks the
// output.
func (ppu *PPU) turnOff() {
	ppu.mode = ModeHBlank
	ppu.regs.ly = 0
	ppu.regs.stat = util.SetBit(ppu.regs.stat, statLYCFlag, false)
	ppu.lineTicks = 0
	ppu.offTicks = 0
	ppu.windowLine = 0
	ppu.windowDrawn = false
	ppu.blank()
}

// turnOn restarts the frame at LY=0 in OAM scan.
func (ppu *PPU) turnOn() {
	ppu.lineTicks = 0
	ppu.windowLine = 0
	ppu.windowDrawn = false
	ppu.setLY(0)
	ppu.startOAMScan()
}

func (ppu *PPU) vramAt(addr uint16) uint8 {
	return ppu.vram[addr-vramBase]
}

func (ppu *PPU) vramLocked() bool {
	return ppu.restrictAccess && ppu.enabled() && ppu.mode == ModeTransfer
}

func (ppu *PPU) oamLocked() bool {
	return ppu.restrictAccess && ppu.enabled() &&
		(ppu.mode == ModeOAMScan || ppu.mode == ModeTransfer)
}

// VRAM returns the CPU's view of 8000-9FFF.
func (ppu *PPU) VRAM() bus.Memory {
	return vramPort{ppu}
}

// OAM returns the CPU's view of FE00-FE9F.
func (ppu *PPU) OAM() bus.Memory {
	return oamPort{ppu}
}

// WriteOAM stores a DMA byte. DMA is not subject to the mode lockout.
func (ppu *PPU) WriteOAM(index uint8, val uint8) {
	if int(index) < oamSize {
		ppu.oam[index] = val
	}
}

type vramPort struct {
	ppu *PPU
}

func (v vramPort) Read8(addr uint16) uint8 {
	if v.ppu.vramLocked() {
		return 0xff
	}
	return v.ppu.vram[addr-vramBase]
}

func (v vramPort) Write8(addr uint16, val uint8) {
	if v.ppu.vramLocked() {
		return
	}
	v.ppu.vram[addr-vramBase] = val
}

type oamPort struct {
	ppu *PPU
}

func (o oamPort) Read8(addr uint16) uint8 {
	if o.ppu.oamLocked() {
		return 0xff
	}
	return o.ppu.oam[addr-oamBase]
}

func (o oamPort) Write8(addr uint16, val uint8) {
	if o.ppu.oamLocked() {
		return
	}
	o.ppu.oam[addr-oamBase] = val
}
