package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ushitora-anqou/gbemu/constant"
	"github.com/ushitora-anqou/gbemu/gameboy"
	"github.com/ushitora-anqou/gbemu/ppu"
	"github.com/ushitora-anqou/gbemu/util"
	"github.com/ushitora-anqou/gbemu/wavcapture"
	"github.com/ushitora-anqou/gbemu/window"
)

const saveInterval = time.Second

var errStopped = errors.New("emulation stopped")

// emulator is the host side of a session shared by every front-end: it pumps
// frames and audio into a window and keeps the .sav file up to date.
type emulator struct {
	gb       *gameboy.GameBoy
	savePath string
	lastSave time.Time
	fb       *ppu.Framebuffer
	audio    []float32
	wav      *wavcapture.Recorder
}

func newEmulator(opts *options) (*emulator, error) {
	if opts.trace {
		util.EnableTrace()
	}

	rom, err := os.ReadFile(opts.romPath)
	if err != nil {
		return nil, err
	}
	gb, err := gameboy.New(rom, gameboy.DefaultConfig())
	if err != nil {
		return nil, err
	}

	emu := &emulator{
		gb:       gb,
		lastSave: time.Now(),
		audio:    make([]float32, gb.AudioBufferLen()),
	}
	if gb.HasBattery() && !opts.noSave {
		emu.savePath = strings.TrimSuffix(opts.romPath, filepath.Ext(opts.romPath)) + ".sav"
		if err := emu.loadSave(); err != nil {
			return nil, err
		}
	}
	if opts.wavPath != "" {
		emu.wav, err = wavcapture.Create(opts.wavPath, constant.AUDIO_FREQ, constant.CHANNELS)
		if err != nil {
			return nil, err
		}
	}
	return emu, nil
}

func (emu *emulator) loadSave() error {
	blob, err := os.ReadFile(emu.savePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	util.Logf("main", "loaded %s", emu.savePath)
	if len(blob) > constant.BATTERY_SIZE {
		return emu.gb.LoadBatteryImage(blob)
	}
	if len(blob) != constant.BATTERY_SIZE {
		util.Logf("main", "%s: expected %d bytes, got %d", emu.savePath, constant.BATTERY_SIZE, len(blob))
	}
	return emu.gb.LoadBattery(blob)
}

// flushSave writes the battery RAM out when the game changed it.
func (emu *emulator) flushSave() error {
	if emu.savePath == "" {
		return nil
	}
	// Carts with several RAM banks persist all of them.
	take := emu.gb.TakeBattery
	if emu.gb.RAMBanks() > 1 {
		take = emu.gb.TakeBatteryImage
	}
	blob, dirty := take()
	if !dirty {
		return nil
	}
	if err := os.WriteFile(emu.savePath, blob, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// stopOnInterrupt stops the session on SIGINT so the save is flushed.
func (emu *emulator) stopOnInterrupt() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		<-ch
		emu.gb.Stop()
	}()
}

// runFrame emulates up to one frame, feeding wind with the picture and any
// audio produced on the way.
func (emu *emulator) runFrame(wind window.Window) error {
	for {
		ev, err := emu.gb.RunUntil(constant.FRAME_TICKS)
		if err != nil {
			return err
		}
		if ev&gameboy.EventStopped != 0 {
			return errStopped
		}
		if ev&gameboy.EventAudio != 0 {
			if err := emu.playAudio(wind); err != nil {
				return err
			}
		}
		if ev&(gameboy.EventFrame|gameboy.EventTicks) == 0 {
			continue
		}

		if ev&gameboy.EventFrame != 0 {
			emu.fb = emu.gb.SwapFramebuffer(emu.fb)
			if err := wind.Draw(emu.fb); err != nil {
				return err
			}
		}
		if time.Since(emu.lastSave) >= saveInterval {
			emu.lastSave = time.Now()
			if err := emu.flushSave(); err != nil {
				return err
			}
		}
		return nil
	}
}

func (emu *emulator) playAudio(wind window.Window) error {
	n := emu.gb.AudioBuffer(emu.audio)
	if err := wind.EnqueueAudioBuffer(emu.audio[:n]); err != nil {
		return err
	}
	if emu.wav != nil {
		return emu.wav.Write(emu.audio[:n])
	}
	return nil
}

func (emu *emulator) Close() error {
	err := emu.flushSave()
	if emu.wav != nil {
		if werr := emu.wav.Close(); err == nil {
			err = werr
		}
	}
	return err
}

func framesPerSecond() float64 {
	return float64(constant.CPU_FREQ) / constant.FRAME_TICKS
}
