package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ushitora-anqou/gbemu/constant"
)

func TestRegisterReadMasks(t *testing.T) {
	apu := NewAPU(16)

	apu.Write8(0xff11, 0x80)
	assert.Equal(t, uint8(0xbf), apu.Read8(0xff11), "length bits are write-only")
	apu.Write8(0xff13, 0x12)
	assert.Equal(t, uint8(0xff), apu.Read8(0xff13), "frequency low is write-only")
	apu.Write8(0xff12, 0xf3)
	assert.Equal(t, uint8(0xf3), apu.Read8(0xff12))
	assert.Equal(t, uint8(0xff), apu.Read8(0xff15))
	assert.Equal(t, uint8(0xff), apu.Read8(0xff2a))
}

func TestWaveRAM(t *testing.T) {
	apu := NewAPU(16)
	for i := uint16(0); i < 16; i++ {
		apu.Write8(addrWave+i, uint8(i*0x11))
	}
	for i := uint16(0); i < 16; i++ {
		assert.Equal(t, uint8(i*0x11), apu.Read8(addrWave+i))
	}
}

func TestPowerOffClearsRegisters(t *testing.T) {
	apu := NewAPU(16)
	apu.Write8(0xff30, 0xab)
	apu.Write8(0xff12, 0xf0)
	apu.Write8(0xff14, 0x80)
	require.Equal(t, uint8(0xf1), apu.Read8(addrNR52))

	apu.Write8(addrNR52, 0x00)
	assert.Equal(t, uint8(0x70), apu.Read8(addrNR52))
	assert.Equal(t, uint8(0x00), apu.Read8(0xff12))
	assert.Equal(t, uint8(0xab), apu.Read8(0xff30), "wave RAM survives power off")

	apu.Write8(0xff12, 0xf0)
	assert.Equal(t, uint8(0x00), apu.Read8(0xff12), "writes are ignored while powered off")

	apu.Write8(addrNR52, 0x80)
	assert.Equal(t, uint8(0xf0), apu.Read8(addrNR52))
}

func TestTriggerNeedsDAC(t *testing.T) {
	apu := NewAPU(16)
	apu.Write8(0xff17, 0x00)
	apu.Write8(0xff19, 0x80)
	assert.Zero(t, apu.Read8(addrNR52)&0x02)

	apu.Write8(0xff17, 0x80)
	apu.Write8(0xff19, 0x80)
	assert.NotZero(t, apu.Read8(addrNR52)&0x02)
}

func TestLengthCounterSilencesChannel(t *testing.T) {
	apu := NewAPU(16)
	apu.Write8(0xff16, 0x3f) // length 1 of 64
	apu.Write8(0xff17, 0xf0)
	apu.Write8(0xff19, 0xc0) // trigger, length enabled
	require.NotZero(t, apu.Read8(addrNR52)&0x02)

	apu.Tick(lengthUnit - 1)
	assert.NotZero(t, apu.Read8(addrNR52)&0x02)
	apu.Tick(1)
	assert.Zero(t, apu.Read8(addrNR52)&0x02)
}

func TestBufferFills(t *testing.T) {
	const samples = 8
	apu := NewAPU(samples)
	assert.Equal(t, samples*constant.CHANNELS, apu.BufferLen())

	dst := make([]float32, apu.BufferLen())
	assert.Equal(t, 0, apu.ReadSamples(dst))

	full := false
	for i := 0; i < samples-1; i++ {
		full = apu.Tick(ticksPerSample) || full
	}
	assert.False(t, full)
	assert.True(t, apu.Tick(ticksPerSample))
	assert.Equal(t, len(dst), apu.ReadSamples(dst))
}

func TestSilentWhenPoweredOff(t *testing.T) {
	const samples = 4
	apu := NewAPU(samples)
	apu.Write8(0xff12, 0xf0)
	apu.Write8(0xff14, 0x87)
	apu.Write8(addrNR52, 0x00)

	for i := 0; i < samples; i++ {
		apu.Tick(ticksPerSample)
	}
	dst := make([]float32, apu.BufferLen())
	require.Equal(t, len(dst), apu.ReadSamples(dst))
	for _, v := range dst {
		assert.Zero(t, v)
	}
}

func TestNoiseLFSR(t *testing.T) {
	var ch noiseChannel
	ch.env.load(0xf0)
	ch.setPolynomialCounter(0x00)
	ch.trigger()
	require.Equal(t, 0x7fff, ch.lfsr)

	ch.step(8)
	assert.Equal(t, 0x3fff, ch.lfsr)
}
