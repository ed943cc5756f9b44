package apu

import "github.com/ushitora-anqou/gbemu/util"

// Frame sequencer periods in dots.
const (
	lengthUnit   = 16384 // 256 Hz
	sweepUnit    = 32768 // 128 Hz
	envelopeUnit = 65536 // 64 Hz
)

// lengthCounter silences a channel once its programmed length runs out.
type lengthCounter struct {
	enabled, expired bool
	max, length      int
	tick             *util.TickCounter
}

func (l *lengthCounter) load(val int) {
	l.length = val
}

func (l *lengthCounter) trigger() {
	l.expired = false
	remaining := l.max - l.length
	if remaining <= 0 {
		remaining = l.max
	}
	l.tick = util.NewTickCounter(uint(remaining) * lengthUnit)
}

func (l *lengthCounter) step(ticks uint) {
	if !l.enabled || l.expired || l.tick == nil {
		return
	}
	if l.tick.Tick(ticks) {
		l.expired = true
	}
}

type envelope struct {
	initVolume, volume, period int
	increase                   bool
	tick                       *util.TickCounter
}

func (e *envelope) load(val int) {
	e.initVolume = val >> 4
	e.increase = (val>>3)&1 != 0
	e.period = val & 7
}

// dacOn reports whether NRx2 leaves the channel's DAC powered.
func (e *envelope) dacOn() bool {
	return e.initVolume != 0 || e.increase
}

func (e *envelope) trigger() {
	e.volume = e.initVolume
	e.tick = nil
	if e.period != 0 {
		e.tick = util.NewTickCounter(uint(e.period) * envelopeUnit)
	}
}

func (e *envelope) step(ticks uint) {
	if e.tick == nil || !e.tick.Tick(ticks) {
		return
	}
	switch {
	case e.increase && e.volume < 0xf:
		e.volume++
	case !e.increase && e.volume > 0:
		e.volume--
	}
}

func (e *envelope) apply(src float32) float32 {
	return src * float32(e.volume) / 15
}

type sweep struct {
	period, shift int
	decrease      bool
	freq          int
	overflow      bool
	tick          *util.TickCounter
}

func (s *sweep) load(val int) {
	s.period = (val >> 4) & 7
	s.decrease = (val>>3)&1 != 0
	s.shift = val & 7
}

func (s *sweep) trigger(freq int) {
	s.freq = freq
	s.overflow = false
	s.tick = nil
	if s.period == 0 && s.shift == 0 {
		return
	}
	period := uint(s.period)
	if period == 0 {
		period = 8
	}
	s.tick = util.NewTickCounter(period * sweepUnit)
}

// step returns true when the sweep produced a new frequency.
func (s *sweep) step(ticks uint) bool {
	if s.tick == nil || !s.tick.Tick(ticks) {
		return false
	}
	delta := s.freq >> s.shift
	next := s.freq + delta
	if s.decrease {
		next = s.freq - delta
	}
	if next <= 0 || next >= 2048 {
		s.tick = nil
		s.overflow = true
		return false
	}
	s.freq = next
	return true
}

var dutyTable = [4][8]float32{
	{-1, -1, -1, -1, -1, -1, -1, +1}, // 12.5%
	{-1, -1, -1, -1, -1, -1, +1, +1}, // 25%
	{-1, -1, -1, -1, +1, +1, +1, +1}, // 50%
	{+1, +1, +1, +1, +1, +1, -1, -1}, // 75%
}

type squareChannel struct {
	on            bool
	duty, dutyPos int
	freq          int
	freqTick      *util.TickCounter
	env           envelope
	length        lengthCounter
	sweep         *sweep // channel 1 only
}

func newSquareChannel(withSweep bool) squareChannel {
	ch := squareChannel{length: lengthCounter{max: 64}}
	if withSweep {
		ch.sweep = &sweep{}
	}
	return ch
}

func (ch *squareChannel) setFreqTick(freq int) {
	ch.freqTick = util.NewTickCounter(uint(2048-freq) * 4)
}

func (ch *squareChannel) setFreqLow(val int) {
	ch.freq = ch.freq&^0xff | val
	ch.setFreqTick(ch.freq)
}

func (ch *squareChannel) setFreqHigh(val int) {
	ch.freq = ch.freq&0xff | (val&7)<<8
	ch.setFreqTick(ch.freq)
}

func (ch *squareChannel) trigger() {
	ch.on = ch.env.dacOn()
	ch.setFreqTick(ch.freq)
	ch.env.trigger()
	ch.length.trigger()
	if ch.sweep != nil {
		ch.sweep.trigger(ch.freq)
	}
}

func (ch *squareChannel) active() bool {
	if !ch.on || ch.length.expired {
		return false
	}
	return ch.sweep == nil || !ch.sweep.overflow
}

func (ch *squareChannel) step(ticks uint) {
	if ch.freqTick != nil && ch.freqTick.Tick(ticks) {
		ch.dutyPos = (ch.dutyPos + 1) % 8
	}
	if ch.sweep != nil && ch.sweep.step(ticks) {
		ch.setFreqTick(ch.sweep.freq)
	}
	ch.env.step(ticks)
	ch.length.step(ticks)
}

func (ch *squareChannel) amplitude() float32 {
	if !ch.active() {
		return 0
	}
	return ch.env.apply(dutyTable[ch.duty][ch.dutyPos])
}

type waveChannel struct {
	dacOn, on   bool
	outputLevel int
	freq        int
	wave        [16]uint8
	wavePos     int
	freqTick    *util.TickCounter
	length      lengthCounter
}

func (ch *waveChannel) setFreqTick() {
	ch.freqTick = util.NewTickCounter(uint(2048-ch.freq) * 2)
}

func (ch *waveChannel) setFreqLow(val int) {
	ch.freq = ch.freq&^0xff | val
	ch.setFreqTick()
}

func (ch *waveChannel) setFreqHigh(val int) {
	ch.freq = ch.freq&0xff | (val&7)<<8
	ch.setFreqTick()
}

func (ch *waveChannel) trigger() {
	ch.on = ch.dacOn
	ch.wavePos = 0
	ch.setFreqTick()
	ch.length.trigger()
}

func (ch *waveChannel) step(ticks uint) {
	if ch.freqTick != nil && ch.freqTick.Tick(ticks) {
		ch.wavePos = (ch.wavePos + 1) % 32
	}
	ch.length.step(ticks)
}

func (ch *waveChannel) active() bool {
	return ch.on && ch.dacOn && !ch.length.expired
}

func (ch *waveChannel) amplitude() float32 {
	if !ch.active() || ch.outputLevel == 0 {
		return 0
	}
	val := ch.wave[ch.wavePos/2]
	if ch.wavePos%2 == 0 {
		val >>= 4
	}
	val &= 0x0f
	val >>= ch.outputLevel - 1
	return float32(val)/7.5 - 1.0
}

type noiseChannel struct {
	on                 bool
	shift, divisorCode int
	narrow             bool
	lfsr               int
	freqTick           *util.TickCounter
	env                envelope
	length             lengthCounter
}

func (ch *noiseChannel) setFreqTick() {
	divisor := 8
	if ch.divisorCode > 0 {
		divisor = ch.divisorCode << 4
	}
	ch.freqTick = util.NewTickCounter(uint(divisor << ch.shift))
}

func (ch *noiseChannel) setPolynomialCounter(val int) {
	ch.shift = val >> 4
	ch.narrow = (val>>3)&1 != 0
	ch.divisorCode = val & 7
	ch.setFreqTick()
}

func (ch *noiseChannel) trigger() {
	ch.on = ch.env.dacOn()
	ch.lfsr = 0x7fff
	ch.setFreqTick()
	ch.env.trigger()
	ch.length.trigger()
}

func (ch *noiseChannel) step(ticks uint) {
	if ch.freqTick != nil && ch.freqTick.Tick(ticks) {
		bit := (ch.lfsr & 1) ^ ((ch.lfsr >> 1) & 1)
		ch.lfsr = ch.lfsr>>1 | bit<<14
		if ch.narrow {
			ch.lfsr = ch.lfsr&^(1<<6) | bit<<6
		}
	}
	ch.env.step(ticks)
	ch.length.step(ticks)
}

func (ch *noiseChannel) active() bool {
	return ch.on && !ch.length.expired
}

func (ch *noiseChannel) amplitude() float32 {
	if !ch.active() {
		return 0
	}
	return ch.env.apply(float32(1&^ch.lfsr)*2 - 1)
}
