package text

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manyGlyphs(n int) []common.GlyphVertex {
	glyphs := make([]common.GlyphVertex, n)
	for i := range glyphs {
		x := float32(i%100) * 9
		y := float32(i/100) * 12
		glyphs[i] = common.GlyphVertex{
			PixelCoords: common.NewRect(x-2, y-3, x+8, y+10),
			Bounds:      common.NewRect(0, 0, 600, 400),
			TexCoords:   common.NewRect(0.1, 0.2, 0.3, 0.4),
			Extra:       common.GlyphExtra{Depth: float32(i), Color: [4]float32{1, 1, 1, 1}},
		}
	}
	return glyphs
}

func TestBatchBuilderParallelMatchesSerial(t *testing.T) {
	glyphs := manyGlyphs(5000)
	b := NewBatchBuilder(WithWorkers(4), WithParallelThreshold(100), WithChunkSize(333))
	defer b.Release()

	assert.Equal(t, 4, b.Workers())
	assert.Equal(t, BuildVertices(glyphs), b.Build(nil, glyphs))
}

func TestBatchBuilderInlineBelowThreshold(t *testing.T) {
	glyphs := manyGlyphs(50)
	b := NewBatchBuilder(WithWorkers(4), WithParallelThreshold(100))

	assert.Equal(t, BuildVertices(glyphs), b.Build(nil, glyphs))
	assert.Nil(t, b.(*batchBuilder).pool)
}

func TestBatchBuilderReusesDestination(t *testing.T) {
	b := NewBatchBuilder(WithWorkers(1))
	dst := make([]Vertex, 0, 64)

	out := b.Build(dst, manyGlyphs(10))
	require.Len(t, out, 10)
	assert.Same(t, &dst[:1][0], &out[0])

	out = b.Build(out, nil)
	assert.Empty(t, out)
}

func TestBatchBuilderAfterRelease(t *testing.T) {
	glyphs := manyGlyphs(1000)
	b := NewBatchBuilder(WithWorkers(2), WithParallelThreshold(10), WithChunkSize(100))
	assert.Equal(t, BuildVertices(glyphs), b.Build(nil, glyphs))

	b.Release()
	assert.Equal(t, 1, b.Workers())
	assert.Equal(t, BuildVertices(glyphs), b.Build(nil, glyphs))
}

func TestBatchBuilderOptionsIgnoreInvalid(t *testing.T) {
	b := NewBatchBuilder(WithWorkers(0), WithParallelThreshold(-1), WithChunkSize(0)).(*batchBuilder)
	assert.GreaterOrEqual(t, b.workers, 1)
	assert.Equal(t, defaultParallelThreshold, b.parallelThreshold)
	assert.Equal(t, defaultChunkSize, b.chunkSize)
}
