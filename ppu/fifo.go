package ppu

type source uint8

const (
	sourceBG source = iota
	sourceOBP0
	sourceOBP1
)

// pixel is a 2-bit color index plus the palette it resolves through.
type pixel struct {
	color  uint8
	source source
}

const queueCapacity = 16

// pixelQueue is a fixed ring holding up to two tiles of pixels.
type pixelQueue struct {
	buf        [queueCapacity]pixel
	head, size int
}

func (q *pixelQueue) len() int {
	return q.size
}

func (q *pixelQueue) reset() {
	q.head, q.size = 0, 0
}

func (q *pixelQueue) push(p pixel) bool {
	if q.size == queueCapacity {
		return false
	}
	q.buf[(q.head+q.size)%queueCapacity] = p
	q.size++
	return true
}

func (q *pixelQueue) pop() (pixel, bool) {
	if q.size == 0 {
		return pixel{}, false
	}
	p := q.buf[q.head]
	q.head = (q.head + 1) % queueCapacity
	q.size--
	return p, true
}
