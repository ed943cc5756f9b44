//go:build ebiten

package window

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/ushitora-anqou/gbemu/constant"
	"github.com/ushitora-anqou/gbemu/joypad"
	"github.com/ushitora-anqou/gbemu/ppu"
)

// ebiten.Image.WritePixels takes r, g, b, a.
var ebitenByteOrder = [4]uint{16, 8, 0, 24}

var ebitenKeys = map[ebiten.Key]joypad.Buttons{
	ebiten.KeyW:     joypad.ButtonUp,
	ebiten.KeyA:     joypad.ButtonLeft,
	ebiten.KeyS:     joypad.ButtonDown,
	ebiten.KeyD:     joypad.ButtonRight,
	ebiten.KeyK:     joypad.ButtonA,
	ebiten.KeyJ:     joypad.ButtonB,
	ebiten.KeyEnter: joypad.ButtonStart,
	ebiten.KeySpace: joypad.ButtonSelect,
}

func EbitenInitialize(scale int) error {
	ebiten.SetTPS(60)
	ebiten.SetWindowSize(constant.LCD_WIDTH*scale, constant.LCD_HEIGHT*scale)
	ebiten.SetWindowTitle(constant.WINDOW_TITLE)

	audio.NewContext(constant.AUDIO_FREQ)

	return nil
}

type EbitenWindow struct {
	pixels         []uint8
	mtxPixels      sync.Mutex
	audioPlayer    *audio.Player
	audioLen       int
	audioBuffer    [][]uint8
	mtxAudioBuffer sync.Mutex
}

func NewEbitenWindow(samples int) (*EbitenWindow, error) {
	if constant.CHANNELS != 2 {
		return nil, fmt.Errorf("window: ebiten supports only 2 channels")
	}

	wind := &EbitenWindow{
		pixels:   make([]uint8, 4*constant.LCD_WIDTH*constant.LCD_HEIGHT),
		audioLen: samples * constant.CHANNELS,
	}
	player, err := audio.CurrentContext().NewPlayer(&ebitenAudioReader{wind})
	if err != nil {
		return nil, fmt.Errorf("window: audio: %w", err)
	}
	player.Play()
	wind.audioPlayer = player
	return wind, nil
}

// Buttons polls the keyboard. It reports whether the user asked to quit.
func (wind *EbitenWindow) Buttons() (bool, joypad.Buttons) {
	var b joypad.Buttons
	for key, button := range ebitenKeys {
		if ebiten.IsKeyPressed(key) {
			b |= button
		}
	}
	return ebiten.IsKeyPressed(ebiten.KeyEscape), b
}

func (wind *EbitenWindow) Draw(fb *ppu.Framebuffer) error {
	wind.mtxPixels.Lock()
	defer wind.mtxPixels.Unlock()
	argbToBytes(wind.pixels, fb, ebitenByteOrder)
	return nil
}

// Render copies the last drawn frame onto screen.
func (wind *EbitenWindow) Render(screen *ebiten.Image) {
	wind.mtxPixels.Lock()
	defer wind.mtxPixels.Unlock()
	screen.WritePixels(wind.pixels)
}

func (wind *EbitenWindow) EnqueueAudioBuffer(buf []float32) error {
	if len(buf) != wind.audioLen {
		return fmt.Errorf("window: audio buffer holds %d values, want %d", len(buf), wind.audioLen)
	}

	bufU := make([]uint8, len(buf)*2 /* 16 bits */)
	for i, v := range buf {
		// signed, 16-bit, and little endian
		val := int16(v * 0x7fff)
		bufU[i*2] = uint8(val)
		bufU[i*2+1] = uint8(val >> 8)
	}

	wind.mtxAudioBuffer.Lock()
	defer wind.mtxAudioBuffer.Unlock()

	if len(wind.audioBuffer) >= constant.AUDIO_QUEUE_SIZE {
		wind.audioBuffer = wind.audioBuffer[1:] // Discard the old one
	}
	wind.audioBuffer = append(wind.audioBuffer, bufU)

	return nil
}

type ebitenAudioReader struct {
	wind *EbitenWindow
}

func (r *ebitenAudioReader) Read(buf []uint8) (int, error) {
	wind := r.wind
	wind.mtxAudioBuffer.Lock()
	defer wind.mtxAudioBuffer.Unlock()

	if len(wind.audioBuffer) == 0 {
		// Return no sound
		length := wind.audioLen * 2
		if len(buf) < length {
			length = len(buf)
		}
		for i := 0; i < length; i++ {
			buf[i] = 0
		}
		return length, nil
	}

	src := wind.audioBuffer[0]
	length := copy(buf, src)
	if length == len(src) {
		wind.audioBuffer = wind.audioBuffer[1:]
	} else {
		wind.audioBuffer[0] = src[length:]
	}

	return length, nil
}
