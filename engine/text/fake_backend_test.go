package text

import (
	"errors"
	"reflect"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var errFake = errors.New("fake allocation failure")

type fakeTexture struct {
	width, height uint32
	format        wgpu.TextureFormat
	usage         wgpu.TextureUsage
	view          *wgpu.TextureView
}

type bufferWrite struct {
	buf    *wgpu.Buffer
	offset uint64
	data   []byte
}

type textureWrite struct {
	tex         *wgpu.Texture
	region      common.Region
	data        []byte
	bytesPerRow uint32
}

// fakeBackend records every call and hands out distinct handles that are never dereferenced.
type fakeBackend struct {
	ops []string

	bufferContents map[*wgpu.Buffer][]byte
	bufferUsage    map[*wgpu.Buffer]wgpu.BufferUsage
	textures       map[*wgpu.Texture]fakeTexture
	samplers       map[*wgpu.Sampler]common.SamplerStagingData
	layouts        map[*wgpu.BindGroupLayout]wgpu.BindGroupLayoutDescriptor
	bindGroups     map[*wgpu.BindGroup]wgpu.BindGroupDescriptor
	pipelines      map[*wgpu.RenderPipeline]pipeline.Pipeline
	pipelineLayout [][]*wgpu.BindGroupLayout

	bufferWrites  []bufferWrite
	textureWrites []textureWrite
	released      []common.Releasable

	// fail makes the named operation return errFake, e.g. "CreateBuffer".
	fail map[string]bool
}

var _ renderer.Backend = &fakeBackend{}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		bufferContents: make(map[*wgpu.Buffer][]byte),
		bufferUsage:    make(map[*wgpu.Buffer]wgpu.BufferUsage),
		textures:       make(map[*wgpu.Texture]fakeTexture),
		samplers:       make(map[*wgpu.Sampler]common.SamplerStagingData),
		layouts:        make(map[*wgpu.BindGroupLayout]wgpu.BindGroupLayoutDescriptor),
		bindGroups:     make(map[*wgpu.BindGroup]wgpu.BindGroupDescriptor),
		pipelines:      make(map[*wgpu.RenderPipeline]pipeline.Pipeline),
		fail:           make(map[string]bool),
	}
}

func (f *fakeBackend) record(op string) error {
	f.ops = append(f.ops, op)
	if f.fail[op] {
		return errFake
	}
	return nil
}

func (f *fakeBackend) SurfaceFormat() wgpu.TextureFormat {
	return wgpu.TextureFormatBGRA8Unorm
}

func (f *fakeBackend) SampleCount() uint32 {
	return 1
}

func (f *fakeBackend) CreateBuffer(label string, usage wgpu.BufferUsage, contents []byte) (*wgpu.Buffer, error) {
	if err := f.record("CreateBuffer"); err != nil {
		return nil, err
	}
	buf := new(wgpu.Buffer)
	f.bufferContents[buf] = append([]byte{}, contents...)
	f.bufferUsage[buf] = usage
	return buf, nil
}

func (f *fakeBackend) CreateTexture(label string, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	if err := f.record("CreateTexture"); err != nil {
		return nil, nil, err
	}
	tex, view := new(wgpu.Texture), new(wgpu.TextureView)
	f.textures[tex] = fakeTexture{width: width, height: height, format: format, usage: usage, view: view}
	return tex, view, nil
}

func (f *fakeBackend) CreateSampler(label string, data common.SamplerStagingData) (*wgpu.Sampler, error) {
	if err := f.record("CreateSampler"); err != nil {
		return nil, err
	}
	s := new(wgpu.Sampler)
	f.samplers[s] = data
	return s, nil
}

func (f *fakeBackend) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	if err := f.record("CreateBindGroupLayout"); err != nil {
		return nil, err
	}
	l := new(wgpu.BindGroupLayout)
	f.layouts[l] = *desc
	return l, nil
}

func (f *fakeBackend) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	if err := f.record("CreateBindGroup"); err != nil {
		return nil, err
	}
	bg := new(wgpu.BindGroup)
	f.bindGroups[bg] = *desc
	return bg, nil
}

func (f *fakeBackend) CreateRenderPipeline(p pipeline.Pipeline, layouts []*wgpu.BindGroupLayout) (*wgpu.RenderPipeline, error) {
	if err := f.record("CreateRenderPipeline"); err != nil {
		return nil, err
	}
	rp := new(wgpu.RenderPipeline)
	f.pipelines[rp] = p
	f.pipelineLayout = append(f.pipelineLayout, layouts)
	p.SetRenderPipeline(rp)
	return rp, nil
}

func (f *fakeBackend) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	f.ops = append(f.ops, "WriteBuffer")
	f.bufferWrites = append(f.bufferWrites, bufferWrite{buf: buf, offset: offset, data: append([]byte{}, data...)})
}

func (f *fakeBackend) WriteTexture(tex *wgpu.Texture, region common.Region, data []byte, bytesPerRow uint32) {
	f.ops = append(f.ops, "WriteTexture")
	f.textureWrites = append(f.textureWrites, textureWrite{tex: tex, region: region, data: append([]byte{}, data...), bytesPerRow: bytesPerRow})
}

func (f *fakeBackend) Release(r common.Releasable) {
	if r == nil {
		return
	}
	if v := reflect.ValueOf(r); v.Kind() == reflect.Pointer && v.IsNil() {
		return
	}
	f.released = append(f.released, r)
}

// isReleased reports whether the handle was passed to Release.
func (f *fakeBackend) isReleased(r common.Releasable) bool {
	for _, x := range f.released {
		if x == r {
			return true
		}
	}
	return false
}

// count returns how many times op was called.
func (f *fakeBackend) count(op string) int {
	n := 0
	for _, o := range f.ops {
		if o == op {
			n++
		}
	}
	return n
}

// recordingPass records the calls a draw makes.
type recordingPass struct {
	calls []string

	pipeline      *wgpu.RenderPipeline
	vertexBuffer  *wgpu.Buffer
	vertexSlot    uint32
	vertexSize    uint64
	bindGroup     *wgpu.BindGroup
	groupIndex    uint32
	vertexCount   uint32
	instanceCount uint32
}

var _ renderer.RenderPass = &recordingPass{}

func (p *recordingPass) SetPipeline(rp *wgpu.RenderPipeline) {
	p.calls = append(p.calls, "SetPipeline")
	p.pipeline = rp
}

func (p *recordingPass) SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64) {
	p.calls = append(p.calls, "SetVertexBuffer")
	p.vertexSlot, p.vertexBuffer, p.vertexSize = slot, buffer, size
}

func (p *recordingPass) SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	p.calls = append(p.calls, "SetBindGroup")
	p.groupIndex, p.bindGroup = groupIndex, group
}

func (p *recordingPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.calls = append(p.calls, "Draw")
	p.vertexCount, p.instanceCount = vertexCount, instanceCount
}
