//go:build ebiten

package main

import (
	"errors"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ushitora-anqou/gbemu/constant"
	"github.com/ushitora-anqou/gbemu/window"
)

type Game struct {
	emu  *emulator
	wind *window.EbitenWindow
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return constant.LCD_WIDTH, constant.LCD_HEIGHT
}

func (g *Game) Update() error {
	quit, buttons := g.wind.Buttons()
	if quit {
		return ebiten.Termination
	}
	g.emu.gb.SetButtons(buttons)

	err := g.emu.runFrame(g.wind)
	if errors.Is(err, errStopped) {
		return ebiten.Termination
	}
	return err
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.wind.Render(screen)
}

func runEbiten() (rerr error) {
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

	if err := window.EbitenInitialize(opts.scale); err != nil {
		return err
	}
	wind, err := window.NewEbitenWindow(emu.gb.AudioBufferLen() / constant.CHANNELS)
	if err != nil {
		return err
	}

	emu.stopOnInterrupt()
	err = ebiten.RunGame(&Game{emu: emu, wind: wind})
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func main() {
	err := runEbiten()
	if err != nil {
		log.Fatal(err)
	}
}
