package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(time.Second))

	for i := 0; i < 9; i++ {
		clock.t = clock.t.Add(100 * time.Millisecond)
		_, ok := p.Tick(10)
		require.False(t, ok, "tick %d", i)
	}

	clock.t = clock.t.Add(100 * time.Millisecond)
	s, ok := p.Tick(20)
	require.True(t, ok)

	assert.InDelta(t, 10, s.FPS, 1e-9)
	assert.InDelta(t, 11, s.GlyphsPerFrame, 1e-9)
	assert.Positive(t, s.SysMB)
	assert.Equal(t, s, p.Last())

	clock.t = clock.t.Add(100 * time.Millisecond)
	_, ok = p.Tick(0)
	assert.False(t, ok)
}

func TestInvalidIntervalKeepsDefault(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
