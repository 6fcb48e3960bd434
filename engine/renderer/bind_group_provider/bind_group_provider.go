package bind_group_provider

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are GPU allocated resources and must be released when no longer needed.

	// bindGroup is the GPU bind group tying the bindings together, or nil until the owner creates it.
	bindGroup *wgpu.BindGroup
	// bindGroupLayout is the layout the bind group was created against.
	bindGroupLayout *wgpu.BindGroupLayout
	// buffers holds the GPU buffers bound by this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// textures holds the textures backing textureViews, keyed by the same binding index as their view.
	textures map[int]*wgpu.Texture
	// textureViews holds the GPU texture views bound by this provider, keyed by binding index.
	textureViews map[int]*wgpu.TextureView
	// samplers holds the GPU samplers bound by this provider, keyed by binding index.
	samplers map[int]*wgpu.Sampler
}

// BindGroupProvider holds the resources behind a single bind group: buffers, textures and their
// views, samplers, the layout and the bind group itself. The owner creates the resources through
// a backend, stores them here, builds the bind group from Entries and hands the provider a release
// function when the resources are no longer needed.
//
// Usage pattern:
//  1. Owner creates the layout, buffers, textures and samplers and stores them by binding
//  2. Owner creates the bind group from Entries() and stores it with SetBindGroup()
//  3. Draw code binds BindGroup()
//  4. To swap a texture, the owner calls ReplaceTexture, rebuilds the bind group and releases the old objects
type BindGroupProvider interface {
	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding, or nil if it has not been created.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the bind group layout for this provider, or nil if not set.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Texture returns the texture backing the view at a specific binding, or nil if not set.
	Texture(binding int) *wgpu.Texture

	// TextureView returns the GPU texture view for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the GPU sampler for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// Entries builds the bind group entries for every stored buffer, texture view and sampler,
	// ordered by binding index. Buffers are bound whole.
	//
	// Returns:
	//   - []wgpu.BindGroupEntry: the entries ready for a wgpu.BindGroupDescriptor
	Entries() []wgpu.BindGroupEntry

	// SetBindGroup stores the bind group created from Entries().
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout stores the bind group layout.
	//
	// Parameters:
	//   - bgl: the created bind group layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores a buffer for a specific binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTexture stores a texture and the view bound at a specific binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tex: the texture backing the view
	//   - tv: the texture view to bind
	SetTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView)

	// SetSampler stores a GPU sampler for a specific binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to store
	SetSampler(binding int, s *wgpu.Sampler)

	// ReplaceTexture swaps the texture and view at a binding and returns the previous pair without
	// releasing them. The current bind group still references the old view until it is rebuilt.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tex: the new texture
	//   - tv: the new texture view
	//
	// Returns:
	//   - *wgpu.Texture: the previous texture, or nil
	//   - *wgpu.TextureView: the previous texture view, or nil
	ReplaceTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView) (*wgpu.Texture, *wgpu.TextureView)

	// ReleaseBindGroup releases only the bind group and clears it.
	//
	// Parameters:
	//   - release: the function that releases a GPU handle, normally Backend.Release
	ReleaseBindGroup(release func(common.Releasable))

	// Release releases every GPU resource held by this provider and clears the provider.
	// The bind group goes first, the layout last.
	//
	// Parameters:
	//   - release: the function that releases a GPU handle, normally Backend.Release
	Release(release func(common.Releasable))
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label for the provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textures:     make(map[int]*wgpu.Texture),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Texture(binding int) *wgpu.Texture {
	return p.textures[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) Entries() []wgpu.BindGroupEntry {
	entries := make([]wgpu.BindGroupEntry, 0, len(p.buffers)+len(p.textureViews)+len(p.samplers))
	for binding, buf := range p.buffers {
		if buf == nil {
			continue
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(binding),
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}
	for binding, tv := range p.textureViews {
		if tv == nil {
			continue
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     uint32(binding),
			TextureView: tv,
		})
	}
	for binding, s := range p.samplers {
		if s == nil {
			continue
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(binding),
			Sampler: s,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Binding < entries[j].Binding
	})
	return entries
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if p.buffers == nil {
		p.buffers = make(map[int]*wgpu.Buffer)
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView) {
	if p.textures == nil {
		p.textures = make(map[int]*wgpu.Texture)
	}
	if p.textureViews == nil {
		p.textureViews = make(map[int]*wgpu.TextureView)
	}
	p.textures[binding] = tex
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	if p.samplers == nil {
		p.samplers = make(map[int]*wgpu.Sampler)
	}
	p.samplers[binding] = s
}

func (p *bindGroupProvider) ReplaceTexture(binding int, tex *wgpu.Texture, tv *wgpu.TextureView) (*wgpu.Texture, *wgpu.TextureView) {
	oldTex, oldView := p.textures[binding], p.textureViews[binding]
	p.SetTexture(binding, tex, tv)
	return oldTex, oldView
}

func (p *bindGroupProvider) ReleaseBindGroup(release func(common.Releasable)) {
	if p.bindGroup != nil {
		release(p.bindGroup)
		p.bindGroup = nil
	}
}

func (p *bindGroupProvider) Release(release func(common.Releasable)) {
	p.ReleaseBindGroup(release)

	for i, tv := range p.textureViews {
		if tv != nil {
			release(tv)
		}
		delete(p.textureViews, i)
	}
	for i, tex := range p.textures {
		if tex != nil {
			release(tex)
		}
		delete(p.textures, i)
	}
	for i, s := range p.samplers {
		if s != nil {
			release(s)
		}
		delete(p.samplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil {
			release(buf)
		}
		delete(p.buffers, i)
	}

	if p.bindGroupLayout != nil {
		release(p.bindGroupLayout)
		p.bindGroupLayout = nil
	}
}
