package text

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBrush(t *testing.T) {
	f := newFakeBackend()
	depth := DepthStencilState(wgpu.TextureFormatDepth24Plus)
	b, err := NewBrush(f,
		WithLabel("hud"),
		WithAtlasSize(512, 256),
		WithViewport(1280, 720),
		WithDepthStencil(depth),
		WithColorFormat(wgpu.TextureFormatRGBA8Unorm),
		WithSampleCount(4),
	)
	require.NoError(t, err)
	defer b.Release()

	assert.True(t, strings.HasPrefix(b.Pipeline().PipelineKey(), "hud "))
	assert.Contains(t, b.Pipeline().PipelineKey(), b.ID().String())
	assert.Same(t, depth, b.Pipeline().DepthStencil())
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, b.Pipeline().ColorFormat())
	assert.Equal(t, uint32(4), b.Pipeline().SampleCount())

	w, h := b.Atlas().Size()
	assert.Equal(t, [2]uint32{512, 256}, [2]uint32{w, h})
	projection := common.Ortho(1280, 720)
	assert.Equal(t, common.SliceToBytes(projection[:]), f.bufferContents[b.Atlas().ProjectionBuffer()])

	// The draw pipeline is laid out against the atlas layout.
	require.Len(t, f.pipelineLayout, 1)
	assert.Same(t, b.Atlas().BindGroupLayout(), f.pipelineLayout[0][0])
	assert.Equal(t, AtlasLayoutDescriptor("").Entries, f.layouts[b.Atlas().BindGroupLayout()].Entries)
}

func TestNewBrushErrors(t *testing.T) {
	_, err := NewBrush(nil)
	assert.ErrorIs(t, err, ErrNilBackend)

	_, err = NewBrush(newFakeBackend(), WithAtlasSize(0, 0))
	assert.ErrorIs(t, err, ErrZeroAtlasSize)

	f := newFakeBackend()
	f.fail["CreateRenderPipeline"] = true
	_, err = NewBrush(f)
	assert.ErrorIs(t, err, errFake)
	// The atlas is released when the draw resource cannot be created.
	assert.Len(t, f.released, 6)
}

func TestBrushFrame(t *testing.T) {
	f := newFakeBackend()
	b, err := NewBrush(f, WithBuilder(NewBatchBuilder(WithWorkers(1))))
	require.NoError(t, err)

	glyphs := manyGlyphs(3)
	b.Queue(glyphs[0])
	b.Queue(glyphs[1:]...)
	assert.Equal(t, 3, b.Queued())

	require.NoError(t, b.Process())
	assert.Equal(t, 0, b.Queued())
	assert.Equal(t, 3, b.DrawResource().Len())
	assert.Equal(t, common.SliceToBytes(BuildVertices(glyphs)), f.bufferContents[b.DrawResource().Buffer()])

	pass := &recordingPass{}
	b.Draw(pass)
	assert.Equal(t, uint32(3), pass.instanceCount)
	assert.Same(t, b.Atlas().BindGroup(), pass.bindGroup)

	// An empty frame clears the draw.
	require.NoError(t, b.Process())
	pass = &recordingPass{}
	b.Draw(pass)
	assert.Empty(t, pass.calls)
}

func TestBrushProcessFailureKeepsQueue(t *testing.T) {
	f := newFakeBackend()
	b, err := NewBrush(f)
	require.NoError(t, err)

	b.Queue(manyGlyphs(2)...)
	f.fail["CreateBuffer"] = true
	assert.ErrorIs(t, b.Process(), errFake)
	assert.Equal(t, 2, b.Queued())
}

func TestBrushAtlasOperations(t *testing.T) {
	f := newFakeBackend()
	b, err := NewBrush(f, WithAtlasSize(64, 64), WithAtlasRowAlignment(4))
	require.NoError(t, err)

	oldGroup := b.Atlas().BindGroup()
	require.NoError(t, b.ResizeTexture(128, 32))
	assert.NotSame(t, oldGroup, b.Atlas().BindGroup())

	b.UpdateTexture(common.Region{X: 1, Y: 1, Width: 2, Height: 1}, []byte{7, 8})
	require.Len(t, f.textureWrites, 1)
	assert.Equal(t, []byte{7, 8, 0, 0}, f.textureWrites[0].data)

	b.UpdateMatrix(640, 480)
	require.Len(t, f.bufferWrites, 1)
	projection := common.Ortho(640, 480)
	assert.Equal(t, common.SliceToBytes(projection[:]), f.bufferWrites[0].data)

	require.NoError(t, b.UpdateVertices(vertices(2)))
	assert.Equal(t, 2, b.DrawResource().Len())
}

func TestBrushRelease(t *testing.T) {
	f := newFakeBackend()
	b, err := NewBrush(f)
	require.NoError(t, err)
	handles := []any{b.DrawResource().Buffer(), b.DrawResource().RenderPipeline(), b.Atlas().BindGroup(), b.Atlas().Texture()}

	b.Release()
	for _, h := range handles {
		assert.Contains(t, f.released, h)
	}
	assert.Nil(t, b.Pipeline().RenderPipeline())
}
