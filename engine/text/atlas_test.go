package text

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAtlas(t *testing.T, f *fakeBackend, opts ...AtlasOption) *Atlas {
	t.Helper()
	a, err := NewAtlas(f, 256, 128, [2]float32{800, 600}, opts...)
	require.NoError(t, err)
	return a
}

func TestNewAtlasCreatesResources(t *testing.T) {
	f := newFakeBackend()
	a := newTestAtlas(t, f)

	// The bind group references everything else and so comes last.
	assert.Equal(t, "CreateBindGroup", f.ops[len(f.ops)-1])
	assert.Equal(t, 1, f.count("CreateBindGroup"))

	tex := f.textures[a.Texture()]
	assert.Equal(t, uint32(256), tex.width)
	assert.Equal(t, uint32(128), tex.height)
	assert.Equal(t, wgpu.TextureFormatR8Unorm, tex.format)
	assert.Equal(t, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst, tex.usage)
	assert.Same(t, tex.view, a.TextureView())

	sampler := f.samplers[a.Sampler()]
	assert.Equal(t, wgpu.AddressModeClampToEdge, sampler.AddressModeU)
	assert.Equal(t, wgpu.AddressModeClampToEdge, sampler.AddressModeV)
	assert.Equal(t, wgpu.AddressModeClampToEdge, sampler.AddressModeW)
	assert.Equal(t, wgpu.FilterModeLinear, sampler.MagFilter)
	assert.Equal(t, wgpu.FilterModeLinear, sampler.MinFilter)

	projection := common.Ortho(800, 600)
	assert.Equal(t, common.SliceToBytes(projection[:]), f.bufferContents[a.ProjectionBuffer()])
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, f.bufferUsage[a.ProjectionBuffer()])

	desc := f.bindGroups[a.BindGroup()]
	assert.Same(t, a.BindGroupLayout(), desc.Layout)
	require.Len(t, desc.Entries, 3)
	assert.Same(t, a.ProjectionBuffer(), desc.Entries[ProjectionBinding].Buffer)
	assert.Same(t, a.TextureView(), desc.Entries[TextureBinding].TextureView)
	assert.Same(t, a.Sampler(), desc.Entries[SamplerBinding].Sampler)

	layout := f.layouts[a.BindGroupLayout()]
	assert.Equal(t, AtlasLayoutDescriptor("").Entries, layout.Entries)

	w, h := a.Size()
	assert.Equal(t, uint32(256), w)
	assert.Equal(t, uint32(128), h)
}

func TestNewAtlasErrors(t *testing.T) {
	_, err := NewAtlas(nil, 1, 1, [2]float32{1, 1})
	assert.ErrorIs(t, err, ErrNilBackend)

	_, err = NewAtlas(newFakeBackend(), 0, 1, [2]float32{1, 1})
	assert.ErrorIs(t, err, ErrZeroAtlasSize)

	for _, op := range []string{"CreateBindGroupLayout", "CreateBuffer", "CreateTexture", "CreateSampler", "CreateBindGroup"} {
		t.Run(op, func(t *testing.T) {
			f := newFakeBackend()
			f.fail[op] = true

			_, err := NewAtlas(f, 64, 64, [2]float32{100, 100})
			assert.ErrorIs(t, err, errFake)

			// Everything created before the failure is released.
			created := len(f.bufferContents) + len(f.samplers) + len(f.layouts) + 2*len(f.textures) + len(f.bindGroups)
			assert.Len(t, f.released, created)
		})
	}
}

func TestAtlasResizeRecreatesTextureAndBindGroup(t *testing.T) {
	f := newFakeBackend()
	a := newTestAtlas(t, f)

	oldTex, oldView, oldGroup := a.Texture(), a.TextureView(), a.BindGroup()
	buf, sampler, layout := a.ProjectionBuffer(), a.Sampler(), a.BindGroupLayout()

	require.NoError(t, a.Resize(512, 512))

	assert.NotSame(t, oldTex, a.Texture())
	assert.NotSame(t, oldGroup, a.BindGroup())
	assert.Equal(t, uint32(512), f.textures[a.Texture()].width)

	desc := f.bindGroups[a.BindGroup()]
	assert.Same(t, a.TextureView(), desc.Entries[TextureBinding].TextureView)
	assert.Same(t, buf, desc.Entries[ProjectionBinding].Buffer)
	assert.Same(t, sampler, desc.Entries[SamplerBinding].Sampler)
	assert.Same(t, layout, desc.Layout)

	assert.True(t, f.isReleased(oldTex))
	assert.True(t, f.isReleased(oldView))
	assert.True(t, f.isReleased(oldGroup))
	assert.False(t, f.isReleased(buf))
	assert.False(t, f.isReleased(sampler))
	assert.Equal(t, 1, f.count("CreateSampler"))
	assert.Equal(t, 1, f.count("CreateBuffer"))

	w, h := a.Size()
	assert.Equal(t, [2]uint32{512, 512}, [2]uint32{w, h})
}

func TestAtlasResizeFailureKeepsState(t *testing.T) {
	for _, op := range []string{"CreateTexture", "CreateBindGroup"} {
		t.Run(op, func(t *testing.T) {
			f := newFakeBackend()
			a := newTestAtlas(t, f)
			tex, view, group := a.Texture(), a.TextureView(), a.BindGroup()

			f.fail[op] = true
			assert.ErrorIs(t, a.Resize(512, 512), errFake)

			assert.Same(t, tex, a.Texture())
			assert.Same(t, view, a.TextureView())
			assert.Same(t, group, a.BindGroup())
			assert.False(t, f.isReleased(tex))
			assert.False(t, f.isReleased(group))
			w, h := a.Size()
			assert.Equal(t, [2]uint32{256, 128}, [2]uint32{w, h})
		})
	}

	a := newTestAtlas(t, newFakeBackend())
	assert.ErrorIs(t, a.Resize(0, 10), ErrZeroAtlasSize)
}

func TestAtlasUpdateRegion(t *testing.T) {
	f := newFakeBackend()
	a := newTestAtlas(t, f)

	region := common.Region{X: 10, Y: 20, Width: 3, Height: 2}
	pixels := []byte{1, 2, 3, 4, 5, 6}
	a.UpdateRegion(region, pixels)

	require.Len(t, f.textureWrites, 1)
	w := f.textureWrites[0]
	assert.Same(t, a.Texture(), w.tex)
	assert.Equal(t, region, w.region)
	assert.Equal(t, pixels, w.data)
	assert.Equal(t, uint32(3), w.bytesPerRow)

	a.UpdateRegion(common.Region{X: 5, Y: 5}, nil)
	assert.Len(t, f.textureWrites, 1)
}

func TestAtlasUpdateRegionPadsRows(t *testing.T) {
	f := newFakeBackend()
	a := newTestAtlas(t, f, WithRowAlignment(4))

	a.UpdateRegion(common.Region{Width: 3, Height: 2}, []byte{1, 2, 3, 4, 5, 6})

	require.Len(t, f.textureWrites, 1)
	assert.Equal(t, []byte{1, 2, 3, 0, 4, 5, 6, 0}, f.textureWrites[0].data)
	assert.Equal(t, uint32(4), f.textureWrites[0].bytesPerRow)
}

func TestAtlasUpdateRegionPreconditions(t *testing.T) {
	a := newTestAtlas(t, newFakeBackend())

	assert.Panics(t, func() {
		a.UpdateRegion(common.Region{Width: 2, Height: 2}, []byte{1, 2, 3})
	})
	assert.Panics(t, func() {
		a.UpdateRegion(common.Region{X: 255, Y: 0, Width: 2, Height: 1}, []byte{1, 2})
	})
	assert.Panics(t, func() {
		a.UpdateRegion(common.Region{X: 0, Y: 127, Width: 1, Height: 2}, []byte{1, 2})
	})
	assert.NotPanics(t, func() {
		a.UpdateRegion(common.Region{X: 254, Y: 127, Width: 2, Height: 1}, []byte{1, 2})
	})
}

func TestAtlasUpdateRegionAfterResize(t *testing.T) {
	f := newFakeBackend()
	a := newTestAtlas(t, f)
	require.NoError(t, a.Resize(512, 512))

	a.UpdateRegion(common.Region{X: 400, Y: 400, Width: 1, Height: 1}, []byte{9})
	require.Len(t, f.textureWrites, 1)
	assert.Same(t, a.Texture(), f.textureWrites[0].tex)
}

func TestAtlasUpdateProjection(t *testing.T) {
	f := newFakeBackend()
	a := newTestAtlas(t, f)
	buffers := f.count("CreateBuffer")

	a.UpdateProjection(1024, 768)

	require.Len(t, f.bufferWrites, 1)
	w := f.bufferWrites[0]
	assert.Same(t, a.ProjectionBuffer(), w.buf)
	assert.Equal(t, uint64(0), w.offset)
	require.Len(t, w.data, ProjectionSize)
	projection := common.Ortho(1024, 768)
	assert.Equal(t, common.SliceToBytes(projection[:]), w.data)
	assert.Equal(t, buffers, f.count("CreateBuffer"))
}

func TestAtlasRelease(t *testing.T) {
	f := newFakeBackend()
	a := newTestAtlas(t, f)
	handles := []common.Releasable{a.BindGroup(), a.BindGroupLayout(), a.ProjectionBuffer(), a.Texture(), a.TextureView(), a.Sampler()}

	a.Release()
	for _, h := range handles {
		assert.True(t, f.isReleased(h))
	}
	assert.Len(t, f.released, len(handles))
	assert.Nil(t, a.BindGroup())
}

func TestWithLayoutDescriptor(t *testing.T) {
	f := newFakeBackend()
	desc := AtlasLayoutDescriptor("from shader")
	a := newTestAtlas(t, f, WithLayoutDescriptor(desc), WithAtlasLabel("custom"))

	assert.Equal(t, "from shader", f.layouts[a.BindGroupLayout()].Label)
	assert.Equal(t, "custom Bind Group", f.bindGroups[a.BindGroup()].Label)
}

func TestWithSamplerPassesModesThrough(t *testing.T) {
	f := newFakeBackend()
	data := common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeRepeat,
		AddressModeW: wgpu.AddressModeRepeat,
		MagFilter:    wgpu.FilterModeNearest,
		MinFilter:    wgpu.FilterModeNearest,
	}
	a := newTestAtlas(t, f, WithSampler(data))

	assert.Equal(t, data, f.samplers[a.Sampler()])
}
