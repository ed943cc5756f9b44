package gameboy

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ushitora-anqou/gbemu/apu"
	"github.com/ushitora-anqou/gbemu/bus"
	"github.com/ushitora-anqou/gbemu/cartridge"
	"github.com/ushitora-anqou/gbemu/constant"
	"github.com/ushitora-anqou/gbemu/cpu"
	"github.com/ushitora-anqou/gbemu/dma"
	"github.com/ushitora-anqou/gbemu/joypad"
	"github.com/ushitora-anqou/gbemu/ppu"
	"github.com/ushitora-anqou/gbemu/ram"
	"github.com/ushitora-anqou/gbemu/serial"
	"github.com/ushitora-anqou/gbemu/timer"
	"github.com/ushitora-anqou/gbemu/util"
)

// Event reports which conditions ended a RunUntil call.
type Event uint8

const (
	EventFrame Event = 1 << iota
	EventAudio
	EventTicks
	EventStopped
)

func (e Event) String() string {
	var names []string
	for i, name := range []string{"frame", "audio", "ticks", "stopped"} {
		if e&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// GameBoy is one emulation session. The core runs on whichever goroutine
// calls Step or RunUntil; every exported method may be called from any
// goroutine.
type GameBoy struct {
	mtx sync.Mutex

	bus    *bus.Bus
	cpu    *cpu.CPU
	ppu    *ppu.PPU
	cart   *cartridge.Cartridge
	wram   *ram.RAM
	hram   *ram.RAM
	timer  *timer.Timer
	dma    *dma.DMA
	serial *serial.Serial
	joypad *joypad.Joypad
	apu    *apu.APU

	ticks     uint64
	audioFull bool
	fatal     error
	stop      atomic.Bool
}

func New(rom []uint8, cfg Config) (*GameBoy, error) {
	cart, err := cartridge.New(rom)
	if err != nil {
		return nil, fmt.Errorf("gameboy: load cartridge: %w", err)
	}

	gb := &GameBoy{
		bus:  bus.NewBus(),
		cart: cart,
		wram: ram.NewWorkRAM(),
		hram: ram.NewHighRAM(),
		apu:  apu.NewAPU(cfg.AudioSamples),
	}
	gb.cpu = cpu.NewCPU(gb.bus, gb)
	gb.cpu.SetHaltBug(cfg.HaltBug)
	gb.ppu = ppu.NewPPU(gb.cpu)
	gb.ppu.SetPalette(cfg.Palette)
	gb.ppu.SetAccessRestriction(cfg.RestrictAccess)
	gb.timer = timer.NewTimer(gb.cpu)
	gb.dma = dma.NewDMA(gb.bus, gb.ppu)
	gb.serial = serial.NewSerial(gb.cpu, cfg.Serial)
	gb.joypad = joypad.NewJoypad(gb.cpu)

	b := gb.bus
	b.Cartridge = cart
	b.VRAM = gb.ppu.VRAM()
	b.OAM = gb.ppu.OAM()
	b.WRAM = gb.wram
	b.HRAM = gb.hram
	b.CPU = gb.cpu
	gb.joypad.MapRegisters(b)
	gb.serial.MapRegisters(b)
	gb.timer.MapRegisters(b)
	gb.apu.MapRegisters(b)
	gb.ppu.MapRegisters(b)
	gb.dma.MapRegisters(b)

	return gb, nil
}

// Tick implements cpu.Clock. One machine cycle is four dots.
func (gb *GameBoy) Tick(cycles uint) {
	ticks := cycles * constant.TICKS_PER_CYCLE
	gb.dma.Tick(cycles)
	gb.ppu.Tick(ticks)
	gb.timer.Tick(ticks)
	if gb.apu.Tick(ticks) {
		gb.audioFull = true
	}
	gb.ticks += uint64(ticks)
}

// step runs one instruction. A decode failure stops the session for good.
func (gb *GameBoy) step() (uint, error) {
	if gb.fatal != nil {
		return 0, gb.fatal
	}
	gb.joypad.Update()
	cycles, err := gb.cpu.Step()
	if err != nil {
		gb.fatal = fmt.Errorf("gameboy: %w", err)
		util.Logf("gameboy", "emulation halted: %v", err)
		return cycles, gb.fatal
	}
	return cycles, nil
}

// Step executes exactly one instruction, or services one interrupt, and
// returns the machine cycles consumed.
func (gb *GameBoy) Step() (uint, error) {
	gb.mtx.Lock()
	defer gb.mtx.Unlock()
	return gb.step()
}

// RunUntil executes whole instructions until at least ticks dots have
// elapsed, a frame is published, the audio buffer fills, or Stop is called.
// A ticks value of 0 disables the tick limit. The returned Event holds every
// condition that held when the loop ended.
func (gb *GameBoy) RunUntil(ticks uint64) (Event, error) {
	gb.mtx.Lock()
	defer gb.mtx.Unlock()

	start := gb.ticks
	frame := gb.ppu.Frame()
	gb.audioFull = false

	var ev Event
	for ev == 0 {
		if gb.stop.CompareAndSwap(true, false) {
			ev |= EventStopped
			break
		}
		if _, err := gb.step(); err != nil {
			return ev, err
		}
		if gb.ppu.Frame() != frame {
			ev |= EventFrame
		}
		if gb.audioFull {
			gb.audioFull = false
			ev |= EventAudio
		}
		if ticks > 0 && gb.ticks-start >= ticks {
			ev |= EventTicks
		}
	}
	return ev, nil
}

// Stop makes a running or the next RunUntil return EventStopped before its
// next instruction.
func (gb *GameBoy) Stop() {
	gb.stop.Store(true)
}

// SwapFramebuffer returns the last published frame and hands fb to the PPU
// for future frames. A nil fb allocates a fresh buffer.
func (gb *GameBoy) SwapFramebuffer(fb *ppu.Framebuffer) *ppu.Framebuffer {
	gb.mtx.Lock()
	defer gb.mtx.Unlock()
	return gb.ppu.SwapFramebuffer(fb)
}

// SetButtons publishes the pressed buttons. It never blocks on the core.
func (gb *GameBoy) SetButtons(b joypad.Buttons) {
	gb.joypad.SetButtons(b)
}

// TakeBattery returns a copy of the battery-backed RAM and clears the dirty
// flag, or false when nothing changed since the last call.
func (gb *GameBoy) TakeBattery() ([]uint8, bool) {
	gb.mtx.Lock()
	defer gb.mtx.Unlock()
	return gb.cart.TakeBattery()
}

func (gb *GameBoy) LoadBattery(blob []uint8) error {
	gb.mtx.Lock()
	defer gb.mtx.Unlock()
	if err := gb.cart.LoadBattery(blob); err != nil {
		return fmt.Errorf("gameboy: load battery: %w", err)
	}
	return nil
}

// TakeBatteryImage is TakeBattery over every RAM bank, bank-major.
func (gb *GameBoy) TakeBatteryImage() ([]uint8, bool) {
	gb.mtx.Lock()
	defer gb.mtx.Unlock()
	if _, dirty := gb.cart.TakeBattery(); !dirty {
		return nil, false
	}
	return gb.cart.Image(), true
}

// LoadBatteryImage restores every RAM bank from a bank-major image.
func (gb *GameBoy) LoadBatteryImage(img []uint8) error {
	gb.mtx.Lock()
	defer gb.mtx.Unlock()
	if err := gb.cart.LoadImage(img); err != nil {
		return fmt.Errorf("gameboy: load battery image: %w", err)
	}
	return nil
}

// RAMBanks returns the number of external RAM banks on the cartridge.
func (gb *GameBoy) RAMBanks() int {
	return gb.cart.RAMBanks()
}

func (gb *GameBoy) HasBattery() bool {
	return gb.cart.HasBattery()
}

// AudioBuffer copies the last full audio buffer into dst.
func (gb *GameBoy) AudioBuffer(dst []float32) int {
	gb.mtx.Lock()
	defer gb.mtx.Unlock()
	return gb.apu.ReadSamples(dst)
}

// AudioBufferLen is the number of float32 values AudioBuffer can return.
func (gb *GameBoy) AudioBufferLen() int {
	return gb.apu.BufferLen()
}

// Ticks returns the dots elapsed since power on.
func (gb *GameBoy) Ticks() uint64 {
	gb.mtx.Lock()
	defer gb.mtx.Unlock()
	return gb.ticks
}

func (gb *GameBoy) Frame() uint64 {
	gb.mtx.Lock()
	defer gb.mtx.Unlock()
	return gb.ppu.Frame()
}

func (gb *GameBoy) Header() cartridge.Header {
	return gb.cart.Header()
}
