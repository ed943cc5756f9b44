package window

// clock is the host's notion of wall-clock time, in microseconds.
type clock interface {
	now() int64
	sleep(us int64)
}

// TimeSynchronizer paces the emulation to a target frame rate.
type TimeSynchronizer struct {
	prevTicks, usPerFrame int64
	clock                 clock
}

func newTimeSynchronizer(c clock, targetFPS float64) *TimeSynchronizer {
	return &TimeSynchronizer{
		prevTicks:  c.now(),
		usPerFrame: int64(1000000.0 / targetFPS),
		clock:      c,
	}
}

// MaySleep waits out what is left of the current frame. A frame finished
// ahead of the previous deadline also waits out the gap to it. When the host
// falls more than a frame behind, the schedule is reset instead of catching
// up.
func (ts *TimeSynchronizer) MaySleep() {
	cur := ts.clock.now()
	diff := ts.usPerFrame - (cur - ts.prevTicks)
	if diff < -ts.usPerFrame {
		ts.prevTicks = cur
		return
	}
	if diff > 1000 { // Larger than 1ms
		ts.clock.sleep(diff)
	}
	ts.prevTicks += ts.usPerFrame
}
