package window

import (
	"github.com/ushitora-anqou/gbemu/ppu"
)

// Window is a host front-end that shows frames and plays audio buffers.
type Window interface {
	Draw(fb *ppu.Framebuffer) error
	EnqueueAudioBuffer(buf []float32) error
}

// argbToBytes stores fb into dst in the given byte order: dst receives
// 4 bytes per pixel, with byte i of each pixel taken from the channel at
// shift order[i].
func argbToBytes(dst []uint8, fb *ppu.Framebuffer, order [4]uint) {
	for i, px := range fb {
		off := i * 4
		dst[off+0] = uint8(px >> order[0])
		dst[off+1] = uint8(px >> order[1])
		dst[off+2] = uint8(px >> order[2])
		dst[off+3] = uint8(px >> order[3])
	}
}
