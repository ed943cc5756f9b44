//go:build !ebiten

package main

import (
	"errors"
	"log"

	"github.com/ushitora-anqou/gbemu/constant"
	"github.com/ushitora-anqou/gbemu/window"
)

func runSDL2() (rerr error) {
	opts, err := parseOptions()
	if err != nil {
		return err
	}
	defer opts.startProfile().Stop()

	emu, err := newEmulator(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := emu.Close(); rerr == nil {
			rerr = err
		}
	}()

	// Initialize SDL
	if err := window.SDLInitialize(); err != nil {
		return err
	}
	defer window.SDLQuit()

	// Create a window
	wind, err := window.NewSDLWindow(opts.scale, emu.gb.AudioBufferLen()/constant.CHANNELS)
	if err != nil {
		return err
	}
	defer wind.Destroy()

	emu.stopOnInterrupt()
	synchronizer := window.NewSDLTimeSynchronizer(framesPerSecond())
	for {
		quit, buttons := wind.HandleEvents()
		if quit {
			return nil
		}
		emu.gb.SetButtons(buttons)

		if err := emu.runFrame(wind); err != nil {
			if errors.Is(err, errStopped) {
				return nil
			}
			return err
		}
		synchronizer.MaySleep()
	}
}

func main() {
	err := runSDL2()
	if err != nil {
		log.Fatal(err)
	}
}
