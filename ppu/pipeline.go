package ppu

import (
	"github.com/ushitora-anqou/gbemu/constant"
)

type fetchState uint8

const (
	fetchTile fetchState = iota
	fetchData0
	fetchData1
	fetchPush
)

type fetchedObject struct {
	obj    *object
	lo, hi uint8
}

// pipeline is the pixel-transfer state of the current line: the fetcher,
// the pixel queue, and the objects merged into the tile being fetched.
type pipeline struct {
	state fetchState
	queue pixelQueue

	pushedX int // next framebuffer column
	discard int // pixels still to drop before pushedX advances
	fetchX  int // offset of the tile being fetched within the source line
	tileX   int // screen column of that tile's first pixel
	window  bool

	tileIndex, row, lo, hi uint8

	objs     [maxFetchedObject]fetchedObject
	objCount int
}

func (ppu *PPU) startTransfer() {
	p := &ppu.pipe
	p.state = fetchTile
	p.queue.reset()
	p.pushedX = 0
	p.discard = int(ppu.regs.scx % 8)
	p.fetchX = 0
	p.tileX = -p.discard
	p.window = false
	p.objCount = 0
}

// transfer advances pixel transfer by one tick and reports whether the line
// is complete.
func (ppu *PPU) transfer() bool {
	p := &ppu.pipe
	if !p.window && ppu.windowStarts() {
		ppu.startWindow()
	}
	if ppu.lineTicks%2 == 0 {
		ppu.fetch()
	}
	ppu.popPixel()
	return p.pushedX >= constant.LCD_WIDTH
}

func (ppu *PPU) windowStarts() bool {
	r := &ppu.regs
	return ppu.lcdcBit(lcdcWindowEnable) && ppu.lcdcBit(lcdcBGEnable) &&
		r.ly >= r.wy && r.wx <= 166 && ppu.pipe.pushedX >= int(r.wx)-7
}

// startWindow flushes the queue and restarts the fetcher at column 0 of the
// window map.
func (ppu *PPU) startWindow() {
	p := &ppu.pipe
	p.queue.reset()
	p.window = true
	p.state = fetchTile
	p.fetchX = 0
	p.discard = 0
	if ppu.regs.wx < 7 {
		p.discard = 7 - int(ppu.regs.wx)
	}
	p.tileX = p.pushedX - p.discard
	ppu.windowDrawn = true
}

func (ppu *PPU) fetch() {
	p := &ppu.pipe
	switch p.state {
	case fetchTile:
		var base uint16 = 0x9800
		var x, y uint8
		if p.window {
			if ppu.lcdcBit(lcdcWindowMap) {
				base = 0x9c00
			}
			x, y = uint8(p.fetchX), ppu.windowLine
		} else {
			if ppu.lcdcBit(lcdcBGMap) {
				base = 0x9c00
			}
			x, y = ppu.regs.scx+uint8(p.fetchX), ppu.regs.ly+ppu.regs.scy
		}
		p.tileIndex = ppu.vramAt(base + uint16(y/8)*32 + uint16(x/8))
		p.row = y % 8
		ppu.loadObjects()
		p.state = fetchData0

	case fetchData0:
		p.lo = ppu.vramAt(ppu.tileDataAddr())
		for i := 0; i < p.objCount; i++ {
			p.objs[i].lo = ppu.vramAt(ppu.objectDataAddr(p.objs[i].obj))
		}
		p.state = fetchData1

	case fetchData1:
		p.hi = ppu.vramAt(ppu.tileDataAddr() + 1)
		for i := 0; i < p.objCount; i++ {
			p.objs[i].hi = ppu.vramAt(ppu.objectDataAddr(p.objs[i].obj) + 1)
		}
		p.state = fetchPush

	case fetchPush:
		if p.queue.len() > 8 {
			return
		}
		ppu.pushTile()
		p.fetchX += 8
		p.tileX += 8
		p.state = fetchTile
	}
}

func (ppu *PPU) tileDataAddr() uint16 {
	p := &ppu.pipe
	if ppu.lcdcBit(lcdcTileData) {
		return 0x8000 + uint16(p.tileIndex)*16 + uint16(p.row)*2
	}
	return uint16(0x9000+int(int8(p.tileIndex))*16) + uint16(p.row)*2
}

func (ppu *PPU) objectHeight() int {
	if ppu.lcdcBit(lcdcOBJSize) {
		return 16
	}
	return 8
}

func (ppu *PPU) objectDataAddr(o *object) uint16 {
	height := ppu.objectHeight()
	row := int(ppu.regs.ly) - o.screenY()
	if o.yFlip() {
		row = height - 1 - row
	}
	tile := o.tileIndex
	if height == 16 {
		tile &= 0xfe
	}
	return 0x8000 + uint16(tile)*16 + uint16(row)*2
}

// loadObjects picks, in drawing priority, up to three line objects that
// overlap the tile being fetched.
func (ppu *PPU) loadObjects() {
	p := &ppu.pipe
	p.objCount = 0
	if !ppu.lcdcBit(lcdcOBJEnable) {
		return
	}
	for i := 0; i < ppu.objs.count && p.objCount < maxFetchedObject; i++ {
		o := ppu.objs.byPriority(i)
		x := o.screenX()
		if x+8 <= p.tileX || x >= p.tileX+8 {
			continue
		}
		p.objs[p.objCount] = fetchedObject{obj: o}
		p.objCount++
	}
}

func (ppu *PPU) pushTile() {
	p := &ppu.pipe
	bgEnable := ppu.lcdcBit(lcdcBGEnable)
	for i := 0; i < 8; i++ {
		bit := uint(7 - i)
		px := pixel{source: sourceBG}
		if bgEnable {
			px.color = (p.lo>>bit)&1 | ((p.hi>>bit)&1)<<1
		}
		p.queue.push(ppu.mergeObjects(px, p.tileX+i))
	}
}

// mergeObjects returns the pixel shown at screen column x: the first
// fetched object with a non-transparent pixel there, unless it sits behind
// a non-zero background color.
func (ppu *PPU) mergeObjects(bg pixel, x int) pixel {
	p := &ppu.pipe
	for i := 0; i < p.objCount; i++ {
		f := &p.objs[i]
		off := x - f.obj.screenX()
		if off < 0 || off >= 8 {
			continue
		}
		if f.obj.xFlip() {
			off = 7 - off
		}
		bit := uint(7 - off)
		color := (f.lo>>bit)&1 | ((f.hi>>bit)&1)<<1
		if color == 0 {
			continue
		}
		if f.obj.behindBG() && bg.color != 0 {
			return bg
		}
		src := sourceOBP0
		if f.obj.paletteNumber() {
			src = sourceOBP1
		}
		return pixel{color: color, source: src}
	}
	return bg
}

func (ppu *PPU) popPixel() {
	p := &ppu.pipe
	if p.queue.len() <= 8 {
		return
	}
	px, _ := p.queue.pop()
	if p.discard > 0 {
		p.discard--
		return
	}
	if p.pushedX >= constant.LCD_WIDTH {
		return
	}
	ppu.back[int(ppu.regs.ly)*constant.LCD_WIDTH+p.pushedX] = ppu.resolve(px)
	p.pushedX++
}
