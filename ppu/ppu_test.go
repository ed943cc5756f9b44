package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ushitora-anqou/gbemu/bus"
	"github.com/ushitora-anqou/gbemu/constant"
)

type interruptRecorder struct {
	counts map[uint8]int
}

func (r *interruptRecorder) RequestInterrupt(source uint8) {
	r.counts[source]++
}

func newTestPPU() (*PPU, *interruptRecorder) {
	irq := &interruptRecorder{counts: map[uint8]int{}}
	return NewPPU(irq), irq
}

func (ppu *PPU) tickFrame() {
	ppu.Tick(constant.FRAME_TICKS)
}

func TestLineTiming(t *testing.T) {
	ppu, _ := newTestPPU()
	require.Equal(t, ModeOAMScan, ppu.Mode())

	ppu.Tick(79)
	assert.Equal(t, ModeOAMScan, ppu.Mode())
	ppu.Tick(1)
	assert.Equal(t, ModeTransfer, ppu.Mode())

	ppu.Tick(455 - 80)
	assert.Equal(t, ModeHBlank, ppu.Mode())
	assert.Equal(t, uint8(0), ppu.LY())
	ppu.Tick(1)
	assert.Equal(t, uint8(1), ppu.LY())
	assert.Equal(t, ModeOAMScan, ppu.Mode())
}

func TestFrameWrap(t *testing.T) {
	ppu, irq := newTestPPU()

	ppu.Tick(144 * constant.TICKS_PER_LINE)
	assert.Equal(t, uint8(144), ppu.LY())
	assert.Equal(t, ModeVBlank, ppu.Mode())
	assert.Equal(t, uint64(1), ppu.Frame())
	assert.Equal(t, 1, irq.counts[bus.IntVBlank])

	ppu.Tick(10*constant.TICKS_PER_LINE - 1)
	assert.Equal(t, uint8(153), ppu.LY())
	ppu.Tick(1)
	assert.Equal(t, uint8(0), ppu.LY())
	assert.Equal(t, ModeOAMScan, ppu.Mode())
	assert.Equal(t, uint64(1), ppu.Frame(), "one full wrap publishes exactly one frame")

	ppu.tickFrame()
	assert.Equal(t, uint64(2), ppu.Frame())
	assert.Equal(t, 2, irq.counts[bus.IntVBlank])
}

func TestStatInterrupts(t *testing.T) {
	ppu, irq := newTestPPU()
	ppu.Write8(AddrSTAT, 1<<statHBlankInt)
	ppu.Tick(constant.TICKS_PER_LINE)
	assert.Equal(t, 1, irq.counts[bus.IntLCDStat])

	ppu.Write8(AddrSTAT, 1<<statOAMInt)
	ppu.Tick(constant.TICKS_PER_LINE)
	assert.Equal(t, 2, irq.counts[bus.IntLCDStat])
}

func TestLYCCoincidence(t *testing.T) {
	ppu, irq := newTestPPU()
	ppu.Write8(AddrLYC, 5)
	ppu.Write8(AddrSTAT, 1<<statLYCInt)
	assert.Zero(t, ppu.Read8(AddrSTAT)&(1<<statLYCFlag))

	ppu.Tick(5 * constant.TICKS_PER_LINE)
	assert.Equal(t, uint8(5), ppu.LY())
	assert.NotZero(t, ppu.Read8(AddrSTAT)&(1<<statLYCFlag))
	assert.Equal(t, 1, irq.counts[bus.IntLCDStat])

	ppu.Tick(constant.TICKS_PER_LINE)
	assert.Zero(t, ppu.Read8(AddrSTAT)&(1<<statLYCFlag))
}

func TestLYCInterruptOnRisingEdgeOnly(t *testing.T) {
	ppu, irq := newTestPPU()
	ppu.Write8(AddrLYC, 3)
	ppu.Write8(AddrSTAT, 1<<statLYCInt)

	for i := 0; i < 3; i++ {
		ppu.Write8(AddrLYC, 0)
	}
	assert.NotZero(t, ppu.Read8(AddrSTAT)&(1<<statLYCFlag))
	assert.Equal(t, 1, irq.counts[bus.IntLCDStat], "rewriting a matching LYC does not retrigger")

	ppu.Write8(AddrLYC, 3)
	ppu.Write8(AddrLYC, 0)
	assert.Equal(t, 2, irq.counts[bus.IntLCDStat])
}

func TestSTATReadsMode(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.Write8(AddrSTAT, 0xff)
	assert.Equal(t, uint8(0x80|0x78|1<<statLYCFlag|uint8(ModeOAMScan)), ppu.Read8(AddrSTAT))
}

func TestLYIsReadOnly(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.Tick(3 * constant.TICKS_PER_LINE)
	ppu.Write8(AddrLY, 0x42)
	assert.Equal(t, uint8(3), ppu.Read8(AddrLY))
}

func TestObjectScanKeepsTenInOAMOrder(t *testing.T) {
	ppu, _ := newTestPPU()
	for i := 0; i < 11; i++ {
		ppu.oam[i*4] = 16               // covers line 0
		ppu.oam[i*4+1] = uint8(100 - i) // reversed X
	}
	ppu.objs.scan(&ppu.oam, 0, 8)

	require.Equal(t, 10, ppu.objs.count)
	for i := 0; i < 10; i++ {
		assert.Equal(t, i, ppu.objs.objs[i].oamIndex)
	}
	// Drawing priority is smaller X first.
	assert.Equal(t, 9, ppu.objs.byPriority(0).oamIndex)
	assert.Equal(t, 0, ppu.objs.byPriority(9).oamIndex)
}

func TestObjectScanTieBreaksOnOAMIndex(t *testing.T) {
	ppu, _ := newTestPPU()
	for i := 0; i < 3; i++ {
		ppu.oam[i*4] = 16
		ppu.oam[i*4+1] = 40
	}
	ppu.objs.scan(&ppu.oam, 0, 8)
	for i := 0; i < 3; i++ {
		assert.Equal(t, i, ppu.objs.byPriority(i).oamIndex)
	}
}

func TestObjectScanHeight(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.oam[0] = 16 // rows 0-7, or 0-15 when tall
	ppu.objs.scan(&ppu.oam, 8, 8)
	assert.Equal(t, 0, ppu.objs.count)
	ppu.objs.scan(&ppu.oam, 8, 16)
	assert.Equal(t, 1, ppu.objs.count)
}

func TestPixelQueue(t *testing.T) {
	var q pixelQueue
	for i := 0; i < queueCapacity; i++ {
		require.True(t, q.push(pixel{color: uint8(i % 4)}))
	}
	assert.False(t, q.push(pixel{}))
	for i := 0; i < queueCapacity; i++ {
		px, ok := q.pop()
		require.True(t, ok)
		assert.Equal(t, uint8(i%4), px.color)
	}
	_, ok := q.pop()
	assert.False(t, ok)
}

// fillTile writes a tile whose every pixel has the given color index.
func fillTile(ppu *PPU, index int, color uint8) {
	var lo, hi uint8
	if color&1 != 0 {
		lo = 0xff
	}
	if color&2 != 0 {
		hi = 0xff
	}
	for row := 0; row < 8; row++ {
		ppu.vram[index*16+row*2] = lo
		ppu.vram[index*16+row*2+1] = hi
	}
}

func renderFrame(ppu *PPU) *Framebuffer {
	lcdc := ppu.regs.lcdc
	ppu.Write8(AddrLCDC, 0)
	ppu.Write8(AddrLCDC, lcdc|1<<lcdcEnable)
	ppu.Tick(144 * constant.TICKS_PER_LINE)
	return ppu.SwapFramebuffer(nil)
}

func at(fb *Framebuffer, x, y int) uint32 {
	return fb[y*constant.LCD_WIDTH+x]
}

func TestBackgroundRendering(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.Write8(AddrBGP, 0xe4)
	fillTile(ppu, 1, 1)
	ppu.vram[0x1800+1] = 1 // map (1, 0)

	ppu.regs.lcdc = 0x91
	fb := renderFrame(ppu)
	assert.Equal(t, constant.COLOR_WHITE, at(fb, 0, 0))
	assert.Equal(t, constant.COLOR_LIGHT_GRAY, at(fb, 8, 0))
	assert.Equal(t, constant.COLOR_LIGHT_GRAY, at(fb, 15, 7))
	assert.Equal(t, constant.COLOR_WHITE, at(fb, 16, 0))
	assert.Equal(t, constant.COLOR_WHITE, at(fb, 8, 8))
}

func TestBackgroundScroll(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.Write8(AddrBGP, 0xe4)
	fillTile(ppu, 1, 3)
	ppu.vram[0x1800+1] = 1
	ppu.Write8(AddrSCX, 4)
	ppu.Write8(AddrSCY, 2)

	fb := renderFrame(ppu)
	assert.Equal(t, constant.COLOR_WHITE, at(fb, 3, 0))
	assert.Equal(t, constant.COLOR_BLACK, at(fb, 4, 0))
	assert.Equal(t, constant.COLOR_BLACK, at(fb, 11, 5))
	assert.Equal(t, constant.COLOR_WHITE, at(fb, 12, 0))
	assert.Equal(t, constant.COLOR_WHITE, at(fb, 4, 6))
}

func TestSignedTileData(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.Write8(AddrBGP, 0xe4)
	// Tile 0x80 in 8800 addressing lives at 8800.
	for row := 0; row < 8; row++ {
		ppu.vram[0x800+row*2+1] = 0xff
	}
	for i := 0; i < 0x400; i++ {
		ppu.vram[0x1800+i] = 0x80
	}
	ppu.regs.lcdc = 0x81
	fb := renderFrame(ppu)
	assert.Equal(t, constant.COLOR_DARK_GRAY, at(fb, 0, 0))
	assert.Equal(t, constant.COLOR_DARK_GRAY, at(fb, 159, 143))
}

func TestObjectRendering(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.Write8(AddrBGP, 0xe4)
	ppu.Write8(AddrOBP0, 0xe4)
	ppu.Write8(AddrOBP1, 0x00)
	fillTile(ppu, 2, 3)
	ppu.oam[0], ppu.oam[1], ppu.oam[2], ppu.oam[3] = 16, 8, 2, 0
	ppu.oam[4], ppu.oam[5], ppu.oam[6], ppu.oam[7] = 16, 20, 2, 1<<4

	ppu.regs.lcdc = 0x93
	fb := renderFrame(ppu)
	assert.Equal(t, constant.COLOR_BLACK, at(fb, 0, 0))
	assert.Equal(t, constant.COLOR_BLACK, at(fb, 7, 7))
	assert.Equal(t, constant.COLOR_WHITE, at(fb, 8, 0))
	assert.Equal(t, constant.COLOR_WHITE, at(fb, 0, 8))
	assert.Equal(t, constant.COLOR_WHITE, at(fb, 12, 0), "OBP1 maps color 3 to white")
}

func TestObjectBehindBackground(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.Write8(AddrBGP, 0xe4)
	ppu.Write8(AddrOBP0, 0xe4)
	fillTile(ppu, 1, 1)
	fillTile(ppu, 2, 3)
	ppu.vram[0x1800] = 1 // BG tile at (0, 0) is color 1
	ppu.oam[0], ppu.oam[1], ppu.oam[2], ppu.oam[3] = 16, 12, 2, 1<<7

	ppu.regs.lcdc = 0x93
	fb := renderFrame(ppu)
	assert.Equal(t, constant.COLOR_LIGHT_GRAY, at(fb, 4, 0), "BG color 1 covers the object")
	assert.Equal(t, constant.COLOR_BLACK, at(fb, 8, 0), "BG color 0 does not")
}

func TestObjectPriorityBySmallerX(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.Write8(AddrOBP0, 0xe4)
	fillTile(ppu, 2, 1)
	fillTile(ppu, 3, 3)
	ppu.oam[0], ppu.oam[1], ppu.oam[2] = 16, 12, 2 // later X, earlier in OAM
	ppu.oam[4], ppu.oam[5], ppu.oam[6] = 16, 10, 3

	ppu.regs.lcdc = 0x93
	fb := renderFrame(ppu)
	assert.Equal(t, constant.COLOR_BLACK, at(fb, 4, 0), "smaller X wins where they overlap")
	assert.Equal(t, constant.COLOR_LIGHT_GRAY, at(fb, 11, 0))
}

func TestObjectFlip(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.Write8(AddrOBP0, 0xe4)
	// Tile 2: only the leftmost pixel of the top row is set.
	ppu.vram[2*16] = 0x80
	ppu.vram[2*16+1] = 0x80
	ppu.oam[0], ppu.oam[1], ppu.oam[2], ppu.oam[3] = 16, 8, 2, 1<<5|1<<6

	ppu.regs.lcdc = 0x93
	fb := renderFrame(ppu)
	assert.Equal(t, constant.COLOR_BLACK, at(fb, 7, 7))
	assert.Equal(t, constant.COLOR_WHITE, at(fb, 0, 0))
}

func TestWindow(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.Write8(AddrBGP, 0xe4)
	fillTile(ppu, 1, 1)
	for i := 0; i < 0x400; i++ {
		ppu.vram[0x1c00+i] = 1
	}
	ppu.Write8(AddrWY, 10)
	ppu.Write8(AddrWX, 7+80)

	ppu.regs.lcdc = 0x91 | 1<<lcdcWindowEnable | 1<<lcdcWindowMap
	fb := renderFrame(ppu)
	assert.Equal(t, constant.COLOR_WHITE, at(fb, 100, 9))
	assert.Equal(t, constant.COLOR_WHITE, at(fb, 79, 10))
	assert.Equal(t, constant.COLOR_LIGHT_GRAY, at(fb, 80, 10))
	assert.Equal(t, constant.COLOR_LIGHT_GRAY, at(fb, 159, 143))
	assert.Equal(t, uint8(144-10), ppu.windowLine)
}

func TestWindowLineCountsOnlyVisibleLines(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.Write8(AddrWY, 0)
	ppu.Write8(AddrWX, 200) // off screen
	ppu.regs.lcdc = 0x91 | 1<<lcdcWindowEnable
	renderFrame(ppu)
	assert.Equal(t, uint8(0), ppu.windowLine)

	// Hide the window for lines 0-49 by toggling it mid-frame.
	ppu.Write8(AddrWX, 7)
	ppu.Write8(AddrLCDC, 0x91)
	ppu.Tick(10 * constant.TICKS_PER_LINE) // finish the frame
	ppu.Tick(50 * constant.TICKS_PER_LINE)
	assert.Equal(t, uint8(0), ppu.windowLine)
	ppu.Write8(AddrLCDC, 0x91|1<<lcdcWindowEnable)
	ppu.Tick(5 * constant.TICKS_PER_LINE)
	assert.Equal(t, uint8(5), ppu.windowLine)
}

func TestDisplayOff(t *testing.T) {
	ppu, irq := newTestPPU()
	ppu.Tick(20 * constant.TICKS_PER_LINE)
	frames := ppu.Frame()

	ppu.Write8(AddrLCDC, 0x11)
	assert.Equal(t, uint8(0), ppu.LY())
	assert.Equal(t, ModeHBlank, ppu.Mode())

	ppu.Tick(constant.FRAME_TICKS - 1)
	assert.Equal(t, uint8(0), ppu.LY())
	assert.Equal(t, frames, ppu.Frame())
	ppu.Tick(1)
	assert.Equal(t, frames+1, ppu.Frame(), "a blank frame keeps the host paced")
	assert.Zero(t, irq.counts[bus.IntVBlank])

	fb := ppu.SwapFramebuffer(nil)
	for _, c := range fb {
		require.Equal(t, constant.COLOR_WHITE, c)
	}

	ppu.Write8(AddrLCDC, 0x91)
	assert.Equal(t, ModeOAMScan, ppu.Mode())
	ppu.Tick(constant.TICKS_PER_LINE)
	assert.Equal(t, uint8(1), ppu.LY())
}

func TestAccessRestriction(t *testing.T) {
	ppu, _ := newTestPPU()
	vram, oam := ppu.VRAM(), ppu.OAM()
	ppu.vram[0] = 0x12
	ppu.oam[0] = 0x34

	// Mode 2
	assert.Equal(t, uint8(0x12), vram.Read8(0x8000))
	assert.Equal(t, uint8(0xff), oam.Read8(0xfe00))

	ppu.Tick(oamScanTicks)
	require.Equal(t, ModeTransfer, ppu.Mode())
	assert.Equal(t, uint8(0xff), vram.Read8(0x8000))
	vram.Write8(0x8000, 0x99)
	assert.Equal(t, uint8(0x12), ppu.vram[0])

	ppu.WriteOAM(1, 0x56)
	assert.Equal(t, uint8(0x56), ppu.oam[1], "DMA bypasses the lockout")

	ppu.SetAccessRestriction(false)
	assert.Equal(t, uint8(0x12), vram.Read8(0x8000))
	assert.Equal(t, uint8(0x34), oam.Read8(0xfe00))

	ppu.SetAccessRestriction(true)
	ppu.Write8(AddrLCDC, 0)
	assert.Equal(t, uint8(0x34), oam.Read8(0xfe00))
}

func TestCustomPalette(t *testing.T) {
	ppu, _ := newTestPPU()
	ppu.SetPalette(Palette{1, 2, 3, 4})
	ppu.Write8(AddrBGP, 0xe4)
	fb := renderFrame(ppu)
	assert.Equal(t, uint32(1), at(fb, 0, 0))
}
