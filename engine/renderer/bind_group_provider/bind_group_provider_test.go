package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBindGroupProvider(t *testing.T) {
	layout := new(wgpu.BindGroupLayout)
	buf := new(wgpu.Buffer)
	tex := new(wgpu.Texture)
	view := new(wgpu.TextureView)
	samp := new(wgpu.Sampler)

	p := NewBindGroupProvider("atlas",
		WithBindGroupLayout(layout),
		WithBuffer(0, buf),
		WithTexture(1, tex, view),
		WithSampler(2, samp),
	)

	assert.Equal(t, "atlas", p.Label())
	assert.Same(t, layout, p.BindGroupLayout())
	assert.Same(t, buf, p.Buffer(0))
	assert.Same(t, tex, p.Texture(1))
	assert.Same(t, view, p.TextureView(1))
	assert.Same(t, samp, p.Sampler(2))
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(1))
}

func TestEntriesOrderedByBinding(t *testing.T) {
	buf := new(wgpu.Buffer)
	view := new(wgpu.TextureView)
	samp := new(wgpu.Sampler)

	p := NewBindGroupProvider("atlas")
	p.SetSampler(2, samp)
	p.SetTexture(1, new(wgpu.Texture), view)
	p.SetBuffer(0, buf)

	entries := p.Entries()
	require.Len(t, entries, 3)

	assert.Equal(t, uint32(0), entries[0].Binding)
	assert.Same(t, buf, entries[0].Buffer)
	assert.Equal(t, uint64(wgpu.WholeSize), entries[0].Size)

	assert.Equal(t, uint32(1), entries[1].Binding)
	assert.Same(t, view, entries[1].TextureView)

	assert.Equal(t, uint32(2), entries[2].Binding)
	assert.Same(t, samp, entries[2].Sampler)
}

func TestReplaceTexture(t *testing.T) {
	oldTex, oldView := new(wgpu.Texture), new(wgpu.TextureView)
	newTex, newView := new(wgpu.Texture), new(wgpu.TextureView)

	p := NewBindGroupProvider("atlas", WithTexture(1, oldTex, oldView))
	gotTex, gotView := p.ReplaceTexture(1, newTex, newView)

	assert.Same(t, oldTex, gotTex)
	assert.Same(t, oldView, gotView)
	assert.Same(t, newTex, p.Texture(1))
	assert.Same(t, newView, p.TextureView(1))
	assert.Same(t, newView, p.Entries()[0].TextureView)
}

func TestRelease(t *testing.T) {
	bg := new(wgpu.BindGroup)
	layout := new(wgpu.BindGroupLayout)

	p := NewBindGroupProvider("atlas",
		WithBindGroupLayout(layout),
		WithBuffer(0, new(wgpu.Buffer)),
		WithTexture(1, new(wgpu.Texture), new(wgpu.TextureView)),
		WithSampler(2, new(wgpu.Sampler)),
	)
	p.SetBindGroup(bg)

	var released []common.Releasable
	p.Release(func(r common.Releasable) {
		released = append(released, r)
	})

	require.Len(t, released, 6)
	assert.Same(t, bg, released[0])
	assert.Same(t, layout, released[len(released)-1])
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
	assert.Empty(t, p.Entries())

	released = nil
	p.Release(func(r common.Releasable) {
		released = append(released, r)
	})
	assert.Empty(t, released)
}

func TestReleaseBindGroupOnly(t *testing.T) {
	bg := new(wgpu.BindGroup)
	buf := new(wgpu.Buffer)
	p := NewBindGroupProvider("atlas", WithBuffer(0, buf))
	p.SetBindGroup(bg)

	var released []common.Releasable
	p.ReleaseBindGroup(func(r common.Releasable) {
		released = append(released, r)
	})

	assert.Equal(t, []common.Releasable{bg}, released)
	assert.Nil(t, p.BindGroup())
	assert.Same(t, buf, p.Buffer(0))
}

func TestBufferWriteApply(t *testing.T) {
	buf := new(wgpu.Buffer)
	p := NewBindGroupProvider("atlas", WithBuffer(0, buf))

	var gotBuf *wgpu.Buffer
	var gotOffset uint64
	var gotData []byte
	write := func(b *wgpu.Buffer, offset uint64, data []byte) {
		gotBuf, gotOffset, gotData = b, offset, data
	}

	ok := BufferWrite{Provider: p, Binding: 0, Offset: 16, Data: []byte{1, 2, 3}}.Apply(write)
	assert.True(t, ok)
	assert.Same(t, buf, gotBuf)
	assert.Equal(t, uint64(16), gotOffset)
	assert.Equal(t, []byte{1, 2, 3}, gotData)

	assert.False(t, BufferWrite{Provider: p, Binding: 5}.Apply(write))
	assert.False(t, BufferWrite{}.Apply(write))
}
