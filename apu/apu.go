package apu

import (
	"github.com/ushitora-anqou/gbemu/bus"
	"github.com/ushitora-anqou/gbemu/constant"
	"github.com/ushitora-anqou/gbemu/util"
)

const (
	addrNR10 = 0xff10
	addrNR52 = 0xff26
	addrWave = 0xff30
	addrEnd  = 0xff3f

	ticksPerSample = constant.CPU_FREQ / constant.AUDIO_FREQ
)

// Bits that read back as 1 regardless of what was written, FF10-FF2F.
var readMask = [0x20]uint8{
	0x80, 0x3f, 0x00, 0xff, 0xbf, // NR10-NR14
	0xff, 0x3f, 0x00, 0xff, 0xbf, // NR20-NR24
	0x7f, 0xff, 0x9f, 0xff, 0xbf, // NR30-NR34
	0xff, 0xff, 0x00, 0x00, 0xbf, // NR40-NR44
	0x00, 0x00, 0x70, // NR50-NR52
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// APU is an approximate four-channel synthesizer. It produces interleaved
// stereo float32 frames into a fixed-size buffer.
type APU struct {
	enabled bool
	regs    [0x20]uint8

	so1Level, so2Level int
	outputTerminal     uint8

	ch1, ch2 squareChannel
	ch3      waveChannel
	ch4      noiseChannel

	sampleTick    *util.TickCounter
	buffer, ready []float32
	bufferIndex   int
	hasReady      bool
}

// NewAPU returns an APU whose buffer holds samples stereo frames.
func NewAPU(samples int) *APU {
	if samples <= 0 {
		samples = constant.AUDIO_SAMPLES
	}
	apu := &APU{
		sampleTick: util.NewTickCounter(ticksPerSample),
		buffer:     make([]float32, samples*constant.CHANNELS),
		ready:      make([]float32, samples*constant.CHANNELS),
	}
	apu.resetChannels()
	apu.powerOn()
	apu.Write8(0xff24, 0x77)
	apu.Write8(0xff25, 0xf3)
	return apu
}

func (apu *APU) MapRegisters(b *bus.Bus) {
	b.MapIO(addrNR10, addrEnd, apu)
}

func (apu *APU) powerOn() {
	apu.enabled = true
	apu.regs[addrNR52-addrNR10] = 0x80
}

// powerOff clears every register except wave RAM.
func (apu *APU) powerOff() {
	apu.enabled = false
	apu.regs = [0x20]uint8{}
	apu.so1Level, apu.so2Level, apu.outputTerminal = 0, 0, 0
	apu.resetChannels()
}

func (apu *APU) resetChannels() {
	wave := apu.ch3.wave
	apu.ch1 = newSquareChannel(true)
	apu.ch2 = newSquareChannel(false)
	apu.ch3 = waveChannel{wave: wave, length: lengthCounter{max: 256}}
	apu.ch4 = noiseChannel{length: lengthCounter{max: 64}}
}

func (apu *APU) Read8(addr uint16) uint8 {
	switch {
	case addr == addrNR52:
		val := uint8(0x70)
		val |= util.BoolToU8(apu.enabled) << 7
		val |= util.BoolToU8(apu.ch4.active()) << 3
		val |= util.BoolToU8(apu.ch3.active()) << 2
		val |= util.BoolToU8(apu.ch2.active()) << 1
		val |= util.BoolToU8(apu.ch1.active())
		return val
	case addrWave <= addr && addr <= addrEnd:
		return apu.ch3.wave[addr-addrWave]
	case addrNR10 <= addr && addr < addrWave:
		off := addr - addrNR10
		return apu.regs[off] | readMask[off]
	}
	return 0xff
}

func (apu *APU) Write8(addr uint16, val uint8) {
	util.Trace("\t<<<APU: 0x%04x <- 0x%02x>>>", addr, val)

	if addrWave <= addr && addr <= addrEnd {
		apu.ch3.wave[addr-addrWave] = val
		return
	}
	if addr < addrNR10 || addr >= addrWave {
		return
	}
	if addr == addrNR52 {
		on := val&0x80 != 0
		if on && !apu.enabled {
			apu.powerOn()
		} else if !on && apu.enabled {
			apu.powerOff()
		}
		return
	}
	if !apu.enabled {
		return
	}
	apu.regs[addr-addrNR10] = val

	v := int(val)
	switch addr {
	case 0xff10:
		apu.ch1.sweep.load(v)
	case 0xff11:
		apu.ch1.duty = v >> 6
		apu.ch1.length.load(v & 0x3f)
	case 0xff12:
		apu.ch1.env.load(v)
		if !apu.ch1.env.dacOn() {
			apu.ch1.on = false
		}
	case 0xff13:
		apu.ch1.setFreqLow(v)
	case 0xff14:
		apu.ch1.setFreqHigh(v)
		apu.ch1.length.enabled = val&0x40 != 0
		if val&0x80 != 0 {
			apu.ch1.trigger()
		}

	case 0xff16:
		apu.ch2.duty = v >> 6
		apu.ch2.length.load(v & 0x3f)
	case 0xff17:
		apu.ch2.env.load(v)
		if !apu.ch2.env.dacOn() {
			apu.ch2.on = false
		}
	case 0xff18:
		apu.ch2.setFreqLow(v)
	case 0xff19:
		apu.ch2.setFreqHigh(v)
		apu.ch2.length.enabled = val&0x40 != 0
		if val&0x80 != 0 {
			apu.ch2.trigger()
		}

	case 0xff1a:
		apu.ch3.dacOn = val&0x80 != 0
		if !apu.ch3.dacOn {
			apu.ch3.on = false
		}
	case 0xff1b:
		apu.ch3.length.load(v)
	case 0xff1c:
		apu.ch3.outputLevel = (v >> 5) & 3
	case 0xff1d:
		apu.ch3.setFreqLow(v)
	case 0xff1e:
		apu.ch3.setFreqHigh(v)
		apu.ch3.length.enabled = val&0x40 != 0
		if val&0x80 != 0 {
			apu.ch3.trigger()
		}

	case 0xff20:
		apu.ch4.length.load(v & 0x3f)
	case 0xff21:
		apu.ch4.env.load(v)
		if !apu.ch4.env.dacOn() {
			apu.ch4.on = false
		}
	case 0xff22:
		apu.ch4.setPolynomialCounter(v)
	case 0xff23:
		apu.ch4.length.enabled = val&0x40 != 0
		if val&0x80 != 0 {
			apu.ch4.trigger()
		}

	case 0xff24:
		apu.so2Level = (v >> 4) & 7
		apu.so1Level = v & 7
	case 0xff25:
		apu.outputTerminal = val
	}
}

// Tick advances the channels by ticks dots and reports whether the sample
// buffer filled up during the call.
func (apu *APU) Tick(ticks uint) bool {
	if apu.enabled {
		apu.ch1.step(ticks)
		apu.ch2.step(ticks)
		apu.ch3.step(ticks)
		apu.ch4.step(ticks)
	}

	if !apu.sampleTick.Tick(ticks) {
		return false
	}

	left, right := apu.mix()
	apu.buffer[apu.bufferIndex] = left
	apu.buffer[apu.bufferIndex+1] = right
	apu.bufferIndex += constant.CHANNELS
	if apu.bufferIndex < len(apu.buffer) {
		return false
	}

	apu.bufferIndex = 0
	apu.buffer, apu.ready = apu.ready, apu.buffer
	apu.hasReady = true
	return true
}

// mix returns the current (SO2, SO1) = (left, right) output.
func (apu *APU) mix() (float32, float32) {
	if !apu.enabled {
		return 0, 0
	}
	amps := [4]float32{
		apu.ch1.amplitude(),
		apu.ch2.amplitude(),
		apu.ch3.amplitude(),
		apu.ch4.amplitude(),
	}
	var left, right float32
	for i, amp := range amps {
		if apu.outputTerminal&(0x10<<i) != 0 {
			left += amp
		}
		if apu.outputTerminal&(0x01<<i) != 0 {
			right += amp
		}
	}
	left *= float32(apu.so2Level+1) / 8 / 4
	right *= float32(apu.so1Level+1) / 8 / 4
	return left, right
}

// BufferLen is the number of float32 values in one full buffer.
func (apu *APU) BufferLen() int {
	return len(apu.buffer)
}

// ReadSamples copies the most recently completed buffer into dst and returns
// the number of values copied. It returns 0 until a buffer has filled.
func (apu *APU) ReadSamples(dst []float32) int {
	if !apu.hasReady {
		return 0
	}
	return copy(dst, apu.ready)
}
