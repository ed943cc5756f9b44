package gameboy

import (
	"io"

	"github.com/ushitora-anqou/gbemu/constant"
	"github.com/ushitora-anqou/gbemu/ppu"
)

type Config struct {
	// Palette maps the four DMG shades to packed ARGB.
	Palette ppu.Palette
	// HaltBug enables the repeated fetch after HALT with IME clear.
	HaltBug bool
	// Serial receives every byte sent over the link port. May be nil.
	Serial io.Writer
	// RestrictAccess locks the CPU out of VRAM and OAM while the PPU uses them.
	RestrictAccess bool
	// AudioSamples is the number of stereo frames per audio buffer.
	AudioSamples int
}

func DefaultConfig() Config {
	return Config{
		Palette:        ppu.DefaultPalette,
		HaltBug:        true,
		RestrictAccess: true,
		AudioSamples:   constant.AUDIO_SAMPLES,
	}
}
