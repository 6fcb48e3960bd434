package renderer

import (
	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode maps a configuration name ("vsync" or "uncapped") to a PresentMode.
// Unknown names select PresentModeVSync.
func ParsePresentMode(name string) PresentMode {
	if name == "uncapped" {
		return PresentModeUncapped
	}
	return PresentModeVSync
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1). This is the default.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// Backend is the GPU device surface the text resources are built on. It creates and releases
// GPU objects and queues buffer and texture writes. All calls are fire-and-forget from the
// caller's point of view: writes are queued on the device queue and never wait for the GPU.
//
// The returned handles are owned by the caller and must be freed through Release.
type Backend interface {
	// SurfaceFormat returns the color format render pipelines target by default.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface color format
	SurfaceFormat() wgpu.TextureFormat

	// SampleCount returns the multisample count of the render passes this backend produces.
	//
	// Returns:
	//   - uint32: the sample count (1 when MSAA is off)
	SampleCount() uint32

	// CreateBuffer allocates a GPU buffer of exactly len(contents) bytes and uploads contents as its initial data.
	// A nil or empty contents slice allocates a zero-length buffer.
	//
	// Parameters:
	//   - label: the debug label of the buffer
	//   - usage: the buffer usage flags
	//   - contents: the initial bytes of the buffer
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: an error if allocation fails
	CreateBuffer(label string, usage wgpu.BufferUsage, contents []byte) (*wgpu.Buffer, error)

	// CreateTexture allocates a 2D texture with a single mip level and a default view of it.
	//
	// Parameters:
	//   - label: the debug label of the texture
	//   - width, height: the texture size in texels
	//   - format: the texel format
	//   - usage: the texture usage flags
	//
	// Returns:
	//   - *wgpu.Texture: the created texture
	//   - *wgpu.TextureView: a view over the whole texture
	//   - error: an error if allocation fails
	CreateTexture(label string, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error)

	// CreateSampler creates a sampler. Addressing and filter modes are used as given; a zero LodMaxClamp
	// or MaxAnisotropy falls back to 32 and 1.
	//
	// Parameters:
	//   - label: the debug label of the sampler
	//   - data: the sampler configuration
	//
	// Returns:
	//   - *wgpu.Sampler: the created sampler
	//   - error: an error if creation fails
	CreateSampler(label string, data common.SamplerStagingData) (*wgpu.Sampler, error)

	// CreateBindGroupLayout creates a bind group layout from its descriptor.
	//
	// Parameters:
	//   - desc: the layout descriptor
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the created layout
	//   - error: an error if creation fails
	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)

	// CreateBindGroup creates a bind group referencing the resources named in the descriptor.
	//
	// Parameters:
	//   - desc: the bind group descriptor
	//
	// Returns:
	//   - *wgpu.BindGroup: the created bind group
	//   - error: an error if creation fails
	CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error)

	// CreateRenderPipeline compiles the pipeline's shader and creates the render pipeline with the given bind group layouts,
	// in group order.
	//
	// Parameters:
	//   - p: the pipeline configuration
	//   - layouts: the bind group layouts, index i is bound at group i
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the created render pipeline
	//   - error: an error if shader compilation or pipeline creation fails
	CreateRenderPipeline(p pipeline.Pipeline, layouts []*wgpu.BindGroupLayout) (*wgpu.RenderPipeline, error)

	// WriteBuffer queues a write of data into buf at offset.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the byte offset in the buffer
	//   - data: the bytes to write
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)

	// WriteTexture queues a write of data into the region of tex.
	//
	// Parameters:
	//   - tex: the destination texture
	//   - region: the destination area in texels
	//   - data: the pixel bytes, row-major
	//   - bytesPerRow: the stride between rows in data
	WriteTexture(tex *wgpu.Texture, region common.Region, data []byte, bytesPerRow uint32)

	// Release frees a GPU object created by this backend. Nil handles are ignored.
	//
	// Parameters:
	//   - r: the object to release
	Release(r common.Releasable)
}

// RenderPass is the subset of a render pass encoder used to issue glyph draws.
type RenderPass interface {
	SetPipeline(p *wgpu.RenderPipeline)
	SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64)
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}
