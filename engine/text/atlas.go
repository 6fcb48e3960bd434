package text

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/Carmen-Shannon/oxy-text/engine/logging"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer/bind_group_provider"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// Atlas bindings within bind group 0.
const (
	ProjectionBinding = 0
	TextureBinding    = 1
	SamplerBinding    = 2
)

// AtlasFormat is the texel format of the glyph atlas: one 8-bit coverage channel.
const AtlasFormat = wgpu.TextureFormatR8Unorm

// Atlas owns the glyph atlas texture, its sampler, the projection uniform and the bind group
// tying them together. The bind group always references the current texture: Resize swaps the
// texture and the bind group as one step.
type Atlas struct {
	backend  renderer.Backend
	provider bind_group_provider.BindGroupProvider
	log      *log.Logger

	label         string
	width, height uint32
	rowAlignment  uint32
	layout        wgpu.BindGroupLayoutDescriptor
	sampler       common.SamplerStagingData
}

// AtlasLayoutDescriptor returns the bind group layout of an atlas: the projection uniform read by the
// vertex stage at ProjectionBinding, the coverage texture and its filtering sampler read by the fragment
// stage at TextureBinding and SamplerBinding.
//
// Parameters:
//   - label: the debug label of the layout
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
func AtlasLayoutDescriptor(label string) wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    ProjectionBinding,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: ProjectionSize,
				},
			},
			{
				Binding:    TextureBinding,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    SamplerBinding,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
}

// NewAtlas creates the atlas texture, sampler, projection uniform and layout, then the bind group
// referencing them. If any object fails to create, everything created so far is released.
//
// Parameters:
//   - backend: the GPU backend to allocate on
//   - width, height: the atlas size in texels
//   - viewport: the viewport width and height in pixels the projection is computed for
//   - opts: a variadic list of AtlasOption functions
//
// Returns:
//   - *Atlas: the initialized atlas
//   - error: ErrNilBackend, ErrZeroAtlasSize or a wrapped allocation failure
func NewAtlas(backend renderer.Backend, width, height uint32, viewport [2]float32, opts ...AtlasOption) (*Atlas, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	if width == 0 || height == 0 {
		return nil, ErrZeroAtlasSize
	}

	a := &Atlas{
		backend: backend,
		label:   "Glyph Atlas",
		width:   width,
		height:  height,
		sampler: common.SamplerStagingData{
			AddressModeU: wgpu.AddressModeClampToEdge,
			AddressModeV: wgpu.AddressModeClampToEdge,
			AddressModeW: wgpu.AddressModeClampToEdge,
			MagFilter:    wgpu.FilterModeLinear,
			MinFilter:    wgpu.FilterModeLinear,
			MipmapFilter: wgpu.MipmapFilterModeNearest,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.layout.Entries == nil {
		a.layout = AtlasLayoutDescriptor(a.label)
	}
	a.layout.Label = common.Coalesce(a.layout.Label, a.label)
	a.provider = bind_group_provider.NewBindGroupProvider(a.label)
	a.log = logging.With("atlas", a.label)

	if err := a.init(viewport); err != nil {
		a.provider.Release(backend.Release)
		return nil, err
	}
	a.log.Debug("atlas created", "width", width, "height", height)
	return a, nil
}

func (a *Atlas) init(viewport [2]float32) error {
	layout, err := a.backend.CreateBindGroupLayout(&a.layout)
	if err != nil {
		return fmt.Errorf("failed to create atlas bind group layout: %w", err)
	}
	a.provider.SetBindGroupLayout(layout)

	projection := common.Ortho(viewport[0], viewport[1])
	buf, err := a.backend.CreateBuffer(a.label+" Projection", wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, common.SliceToBytes(projection[:]))
	if err != nil {
		return fmt.Errorf("failed to create atlas projection buffer: %w", err)
	}
	a.provider.SetBuffer(ProjectionBinding, buf)

	tex, view, err := a.createTexture(a.width, a.height)
	if err != nil {
		return err
	}
	a.provider.SetTexture(TextureBinding, tex, view)

	sampler, err := a.backend.CreateSampler(a.label+" Sampler", a.sampler)
	if err != nil {
		return fmt.Errorf("failed to create atlas sampler: %w", err)
	}
	a.provider.SetSampler(SamplerBinding, sampler)

	bg, err := a.createBindGroup()
	if err != nil {
		return err
	}
	a.provider.SetBindGroup(bg)
	return nil
}

func (a *Atlas) createTexture(width, height uint32) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, view, err := a.backend.CreateTexture(a.label+" Texture", width, height, AtlasFormat,
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %dx%d atlas texture: %w", width, height, err)
	}
	return tex, view, nil
}

func (a *Atlas) createBindGroup() (*wgpu.BindGroup, error) {
	bg, err := a.backend.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   a.label + " Bind Group",
		Layout:  a.provider.BindGroupLayout(),
		Entries: a.provider.Entries(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create atlas bind group: %w", err)
	}
	return bg, nil
}

// Resize replaces the atlas texture with an empty one of the new size and rebuilds the bind group
// against it. The old texture, view and bind group are released only once both new objects exist;
// on failure the atlas is left unchanged. The projection buffer and sampler are kept.
//
// Parameters:
//   - width, height: the new atlas size in texels
//
// Returns:
//   - error: ErrZeroAtlasSize or a wrapped allocation failure
func (a *Atlas) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return ErrZeroAtlasSize
	}

	tex, view, err := a.createTexture(width, height)
	if err != nil {
		return err
	}

	oldTex, oldView := a.provider.ReplaceTexture(TextureBinding, tex, view)
	bg, err := a.createBindGroup()
	if err != nil {
		a.provider.ReplaceTexture(TextureBinding, oldTex, oldView)
		a.backend.Release(view)
		a.backend.Release(tex)
		return err
	}

	a.provider.ReleaseBindGroup(a.backend.Release)
	a.provider.SetBindGroup(bg)
	a.backend.Release(oldView)
	a.backend.Release(oldTex)

	a.log.Debug("atlas texture recreated", "from", fmt.Sprintf("%dx%d", a.width, a.height), "to", fmt.Sprintf("%dx%d", width, height))
	a.width, a.height = width, height
	return nil
}

// UpdateRegion writes tightly packed coverage bytes into a sub-rectangle of the atlas. The region
// must lie inside the atlas and pixels must hold exactly one byte per texel of the region; anything
// else is a programming error and panics. With a row alignment configured, rows are padded before upload.
//
// Parameters:
//   - region: the destination rectangle in texels
//   - pixels: the coverage bytes, region.Width per row, region.Height rows
func (a *Atlas) UpdateRegion(region common.Region, pixels []byte) {
	if len(pixels) != region.Area() {
		panic(fmt.Sprintf("text: atlas region %dx%d needs %d bytes, got %d", region.Width, region.Height, region.Area(), len(pixels)))
	}
	if !region.Within(a.width, a.height) {
		panic(fmt.Sprintf("text: atlas region %+v outside %dx%d atlas", region, a.width, a.height))
	}
	if region.Area() == 0 {
		return
	}

	data, bytesPerRow := pixels, region.Width
	if a.rowAlignment > 0 {
		data, bytesPerRow = common.PadRows(pixels, region.Width, region.Height, a.rowAlignment)
	}
	a.backend.WriteTexture(a.provider.Texture(TextureBinding), region, data, bytesPerRow)
}

// UpdateProjection overwrites the projection uniform with the matrix for a new viewport. The buffer is never reallocated.
//
// Parameters:
//   - width, height: the viewport size in pixels, both non-zero
func (a *Atlas) UpdateProjection(width, height float32) {
	projection := common.Ortho(width, height)
	bind_group_provider.BufferWrite{
		Provider: a.provider,
		Binding:  ProjectionBinding,
		Data:     common.SliceToBytes(projection[:]),
	}.Apply(a.backend.WriteBuffer)
}

// BindGroup returns the bind group referencing the current texture.
func (a *Atlas) BindGroup() *wgpu.BindGroup {
	return a.provider.BindGroup()
}

// BindGroupLayout returns the layout the bind group was created against. Draw pipelines use it at group 0.
func (a *Atlas) BindGroupLayout() *wgpu.BindGroupLayout {
	return a.provider.BindGroupLayout()
}

// Size returns the atlas width and height in texels.
func (a *Atlas) Size() (uint32, uint32) {
	return a.width, a.height
}

// Texture returns the current atlas texture. It is invalid after the next Resize.
func (a *Atlas) Texture() *wgpu.Texture {
	return a.provider.Texture(TextureBinding)
}

// TextureView returns the view of the current atlas texture bound at TextureBinding.
func (a *Atlas) TextureView() *wgpu.TextureView {
	return a.provider.TextureView(TextureBinding)
}

// ProjectionBuffer returns the uniform buffer holding the orthographic projection for the viewport.
func (a *Atlas) ProjectionBuffer() *wgpu.Buffer {
	return a.provider.Buffer(ProjectionBinding)
}

// Sampler returns the sampler the glyph pipeline reads the atlas with.
func (a *Atlas) Sampler() *wgpu.Sampler {
	return a.provider.Sampler(SamplerBinding)
}

// Release frees every GPU object held by the atlas.
func (a *Atlas) Release() {
	a.provider.Release(a.backend.Release)
}
