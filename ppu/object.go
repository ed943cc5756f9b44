package ppu

import (
	"sort"

	"github.com/ushitora-anqou/gbemu/util"
)

const (
	oamSize          = 0xa0
	maxLineObjects   = 10
	maxFetchedObject = 3
)

type object struct {
	oamIndex              int
	y, x, tileIndex, attr uint8
}

func newObject(oam *[oamSize]uint8, index int) object {
	base := index * 4
	return object{
		oamIndex:  index,
		y:         oam[base],
		x:         oam[base+1],
		tileIndex: oam[base+2],
		attr:      oam[base+3],
	}
}

func (o *object) screenY() int {
	return int(o.y) - 16
}

func (o *object) screenX() int {
	return int(o.x) - 8
}

func (o *object) paletteNumber() bool {
	return util.Bit(o.attr, 4)
}

func (o *object) xFlip() bool {
	return util.Bit(o.attr, 5)
}

func (o *object) yFlip() bool {
	return util.Bit(o.attr, 6)
}

// behindBG reports whether BG and window colors 1-3 cover the object.
func (o *object) behindBG() bool {
	return util.Bit(o.attr, 7)
}

// objectList is the set of objects selected for one line, in OAM order.
type objectList struct {
	objs  [maxLineObjects]object
	count int
	// order indexes objs by drawing priority.
	order [maxLineObjects]int
}

func (l *objectList) reset() {
	l.count = 0
}

// scan selects up to ten objects covering line ly, in OAM order, and ranks
// them smaller X first, then OAM index.
func (l *objectList) scan(oam *[oamSize]uint8, ly uint8, height int) {
	l.reset()
	for i := 0; i < oamSize/4 && l.count < maxLineObjects; i++ {
		o := newObject(oam, i)
		top := o.screenY()
		if int(ly) < top || int(ly) >= top+height {
			continue
		}
		l.objs[l.count] = o
		l.order[l.count] = l.count
		l.count++
	}
	sort.Sort(byXAndOAMIndex{l})
}

func (l *objectList) byPriority(i int) *object {
	return &l.objs[l.order[i]]
}

type byXAndOAMIndex struct {
	*objectList
}

func (o byXAndOAMIndex) Len() int {
	return o.count
}
func (o byXAndOAMIndex) Swap(i, j int) {
	o.order[i], o.order[j] = o.order[j], o.order[i]
}
func (o byXAndOAMIndex) Less(i, j int) bool {
	a, b := &o.objs[o.order[i]], &o.objs[o.order[j]]
	return a.x < b.x || (a.x == b.x && a.oamIndex < b.oamIndex)
}
