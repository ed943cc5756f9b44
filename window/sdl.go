//go:build !ebiten

package window

// typedef float Float32;
// typedef unsigned char Uint8;
// void OnAudioPlayback(void *userdata, Uint8 *stream, int len);
import "C"
import (
	"fmt"
	"unsafe"

	"github.com/mattn/go-pointer"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/ushitora-anqou/gbemu/constant"
	"github.com/ushitora-anqou/gbemu/joypad"
	"github.com/ushitora-anqou/gbemu/ppu"
)

// ARGB8888 is stored little endian: b, g, r, a.
var sdlByteOrder = [4]uint{0, 8, 16, 24}

var sdlKeys = map[sdl.Keycode]joypad.Buttons{
	sdl.K_w:      joypad.ButtonUp,
	sdl.K_a:      joypad.ButtonLeft,
	sdl.K_s:      joypad.ButtonDown,
	sdl.K_d:      joypad.ButtonRight,
	sdl.K_k:      joypad.ButtonA,
	sdl.K_j:      joypad.ButtonB,
	sdl.K_RETURN: joypad.ButtonStart,
	sdl.K_SPACE:  joypad.ButtonSelect,
}

func SDLInitialize() error {
	return sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS)
}

func SDLQuit() {
	sdl.Quit()
}

type SDLWindow struct {
	window      *sdl.Window
	renderer    *sdl.Renderer
	texture     *sdl.Texture
	buttons     joypad.Buttons
	audioDevice sdl.AudioDeviceID
	audioLen    int
	userdata    unsafe.Pointer
	audioBuffer [][]C.Float32 // NOTE: Access to this variable must be mutually excluded by sdl.LockAudioDevice(audioDevice).
}

// NewSDLWindow opens a window scale times the LCD size and an audio device
// that plays buffers of samples stereo frames.
func NewSDLWindow(scale, samples int) (*SDLWindow, error) {
	window, err := sdl.CreateWindow(
		constant.WINDOW_TITLE,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(constant.LCD_WIDTH*scale),
		int32(constant.LCD_HEIGHT*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("window: %w", err)
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		constant.LCD_WIDTH,
		constant.LCD_HEIGHT,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return nil, fmt.Errorf("window: %w", err)
	}

	wind := &SDLWindow{
		window:   window,
		renderer: renderer,
		texture:  texture,
		audioLen: samples * constant.CHANNELS,
	}
	wind.userdata = pointer.Save(wind)

	audioDevice, err := sdl.OpenAudioDevice(
		"",
		false,
		&sdl.AudioSpec{
			Freq:     constant.AUDIO_FREQ,
			Format:   sdl.AUDIO_F32,
			Channels: constant.CHANNELS,
			Samples:  uint16(samples),
			Callback: sdl.AudioCallback(C.OnAudioPlayback),
			UserData: wind.userdata,
		},
		nil,
		0,
	)
	if err != nil {
		wind.Destroy()
		return nil, fmt.Errorf("window: audio: %w", err)
	}
	sdl.PauseAudioDevice(audioDevice, false)
	wind.audioDevice = audioDevice

	return wind, nil
}

func (wind *SDLWindow) Destroy() {
	if wind.audioDevice != 0 {
		sdl.CloseAudioDevice(wind.audioDevice)
	}
	pointer.Unref(wind.userdata)
	wind.texture.Destroy()
	wind.renderer.Destroy()
	wind.window.Destroy()
}

// HandleEvents drains the event queue. It reports whether the user asked to
// quit, and the buttons held down after all events were applied.
func (wind *SDLWindow) HandleEvents() (bool, joypad.Buttons) {
	escape := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			escape = true

		case *sdl.KeyboardEvent:
			if ev.Keysym.Sym == sdl.K_ESCAPE {
				escape = true
				continue
			}
			button, ok := sdlKeys[ev.Keysym.Sym]
			if !ok {
				continue
			}
			switch ev.Type {
			case sdl.KEYDOWN:
				wind.buttons |= button
			case sdl.KEYUP:
				wind.buttons &^= button
			}
		}
	}

	return escape, wind.buttons
}

func (wind *SDLWindow) Draw(fb *ppu.Framebuffer) error {
	pixels, _, err := wind.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	argbToBytes(pixels, fb, sdlByteOrder)
	wind.texture.Unlock()

	// Present the scene
	wind.renderer.Clear()
	wind.renderer.Copy(wind.texture, nil, nil)
	wind.renderer.Present()

	return nil
}

func (wind *SDLWindow) EnqueueAudioBuffer(buf []float32) error {
	if len(buf) != wind.audioLen {
		return fmt.Errorf("window: audio buffer holds %d values, want %d", len(buf), wind.audioLen)
	}

	bufC := make([]C.Float32, len(buf))
	for i, v := range buf {
		bufC[i] = C.Float32(v)
	}

	// Lock the device to avoid data race with OnAudioPlayback.
	sdl.LockAudioDevice(wind.audioDevice)
	defer sdl.UnlockAudioDevice(wind.audioDevice)

	if len(wind.audioBuffer) >= constant.AUDIO_QUEUE_SIZE {
		wind.popAudioBuffer() // Discard the old one
	}
	wind.audioBuffer = append(wind.audioBuffer, bufC)

	return nil
}

// popAudioBuffer assumes that access to wind.audioBuffer is locked beforehand.
func (wind *SDLWindow) popAudioBuffer() []C.Float32 {
	if len(wind.audioBuffer) == 0 {
		return nil
	}

	ret := wind.audioBuffer[0]
	wind.audioBuffer = wind.audioBuffer[1:]
	return ret
}

//export OnAudioPlayback
func OnAudioPlayback(userdata unsafe.Pointer, stream *C.Uint8, length C.int) {
	buf := unsafe.Slice((*C.Float32)(unsafe.Pointer(stream)), int(length)/4)
	wind := pointer.Restore(userdata).(*SDLWindow)
	src := wind.popAudioBuffer()

	n := copy(buf, src)
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
}

type sdlClock struct{}

func (sdlClock) now() int64 {
	return int64(sdl.GetTicks()) * 1000
}

func (sdlClock) sleep(us int64) {
	sdl.Delay(uint32(us / 1000))
}

func NewSDLTimeSynchronizer(targetFPS float64) *TimeSynchronizer {
	return newTimeSynchronizer(sdlClock{}, targetFPS)
}
