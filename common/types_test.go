package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectExtents(t *testing.T) {
	r := NewRect(2, 3, 12, 8)
	assert.Equal(t, float32(10), r.Width())
	assert.Equal(t, float32(5), r.Height())

	inverted := NewRect(5, 5, 1, 1)
	assert.Equal(t, float32(-4), inverted.Width())
}

func TestRectContains(t *testing.T) {
	bounds := NewRect(0, 0, 100, 50)
	assert.True(t, bounds.Contains(NewRect(0, 0, 100, 50)))
	assert.True(t, bounds.Contains(NewRect(10, 10, 20, 20)))
	assert.False(t, bounds.Contains(NewRect(-1, 0, 20, 20)))
	assert.False(t, bounds.Contains(NewRect(0, 0, 20, 51)))
}

func TestRegionWithin(t *testing.T) {
	assert.True(t, Region{X: 0, Y: 0, Width: 256, Height: 256}.Within(256, 256))
	assert.True(t, Region{X: 250, Y: 10, Width: 6, Height: 1}.Within(256, 256))
	assert.False(t, Region{X: 250, Y: 10, Width: 7, Height: 1}.Within(256, 256))
	assert.False(t, Region{X: 0, Y: 0xFFFFFFFF, Width: 1, Height: 2}.Within(256, 256))
	assert.Equal(t, 12, Region{Width: 4, Height: 3}.Area())
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
	assert.Equal(t, float32(1.5), Coalesce(float32(0), 1.5))
}
