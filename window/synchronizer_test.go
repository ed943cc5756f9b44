package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	us     int64
	sleeps []int64
}

func (c *fakeClock) now() int64 {
	return c.us
}

func (c *fakeClock) sleep(us int64) {
	c.sleeps = append(c.sleeps, us)
	c.us += us
}

func TestMaySleepWaitsOutFrame(t *testing.T) {
	c := &fakeClock{us: 1000}
	ts := newTimeSynchronizer(c, 50) // 20ms per frame

	c.us += 5000
	ts.MaySleep()
	assert.Equal(t, []int64{15000}, c.sleeps)
	assert.Equal(t, int64(21000), ts.prevTicks)
}

func TestMaySleepAheadOfDeadline(t *testing.T) {
	c := &fakeClock{us: 1000}
	ts := newTimeSynchronizer(c, 50)
	ts.prevTicks = 11000

	ts.MaySleep()
	assert.Equal(t, []int64{30000}, c.sleeps, "waits up to the deadline, then one frame")
	assert.Equal(t, int64(31000), ts.prevTicks)
	assert.Equal(t, ts.prevTicks, c.us)
}

func TestMaySleepSkipsShortWaits(t *testing.T) {
	c := &fakeClock{}
	ts := newTimeSynchronizer(c, 50)

	c.us = 19500
	ts.MaySleep()
	assert.Empty(t, c.sleeps)
	assert.Equal(t, int64(20000), ts.prevTicks)
}

func TestMaySleepResetsWhenFarBehind(t *testing.T) {
	c := &fakeClock{}
	ts := newTimeSynchronizer(c, 50)

	c.us = 45000
	ts.MaySleep()
	assert.Empty(t, c.sleeps)
	assert.Equal(t, int64(45000), ts.prevTicks)
}
