package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// DepthFormat is the depth attachment format used when the depth buffer is enabled.
const DepthFormat = wgpu.TextureFormatDepth24Plus

type wgpuBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount
	depthBuffer bool
	clearColor  wgpu.Color

	// Frame state for batching every draw of a frame into one render pass
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

// SurfaceBackend is a Backend bound to a window surface. On top of resource creation it owns the
// swapchain configuration and the per-frame command encoding used to present glyphs on screen.
type SurfaceBackend interface {
	Backend

	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Adapter() *wgpu.Adapter
	Surface() *wgpu.Surface

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	// The MSAA and depth attachments are recreated at the new size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// The change takes effect on the next ConfigureSurface call.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// DepthEnabled reports whether render passes carry a DepthFormat depth attachment.
	DepthEnabled() bool

	// BeginFrame acquires the next swapchain texture, creates a command encoder, and begins
	// the main render pass. Must be paired with EndFrame after all draws of the frame.
	//
	// Returns:
	//   - RenderPass: the render pass that draws of this frame are recorded into
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() (RenderPass, error)

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface, call Present after EndFrame to display the frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// Destroy releases the surface attachments, device, adapter, surface and instance.
	Destroy()
}

var _ SurfaceBackend = &wgpuBackendImpl{}

// NewWGPUBackend creates the wgpu instance for the given surface, requests an adapter and device,
// and returns a backend ready to have its surface configured. The calling goroutine is locked to
// its OS thread since the native surface must be driven from the thread that created it.
// Failing to acquire an adapter or device panics.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor, usually obtained from the window
//   - opts: functional options applied before the device is requested
//
// Returns:
//   - SurfaceBackend: the initialized backend
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, opts ...BackendBuilderOption) SurfaceBackend {
	runtime.LockOSThread()

	cfg := &backendOptions{
		presentMode: PresentModeVSync,
		sampleCount: MSAAOff,
		clearColor:  wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	w := &wgpuBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		sampleCount: cfg.sampleCount,
		depthBuffer: cfg.depthBuffer,
		clearColor:  cfg.clearColor,
	}
	w.SetPresentMode(cfg.presentMode)
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Text Device",
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	// the format is known before the first ConfigureSurface so pipelines can be built up front
	capabilities := w.surface.GetCapabilities(w.adapter)
	w.surfaceFormat = capabilities.Formats[0]

	return w
}

func (b *wgpuBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuBackendImpl) Adapter() *wgpu.Adapter {
	return b.adapter
}

func (b *wgpuBackendImpl) Surface() *wgpu.Surface {
	return b.surface
}

func (b *wgpuBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	return b.surfaceFormat
}

func (b *wgpuBackendImpl) SampleCount() uint32 {
	return uint32(b.sampleCount)
}

func (b *wgpuBackendImpl) DepthEnabled() bool {
	return b.depthBuffer
}

func (b *wgpuBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseAttachments()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// the render pass draws into the MSAA texture and resolves into the swapchain view
		b.msaaTexture, b.msaaTextureView = b.mustAttachment("MSAA Texture", width, height, count, b.surfaceFormat)
	}
	if b.depthBuffer {
		// depth sample count must match the color attachment
		b.depthTexture, b.depthTextureView = b.mustAttachment("Depth Texture", width, height, count, DepthFormat)
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: b.clearColor,
			},
		},
	}
	if b.depthBuffer {
		b.renderPassDescriptor.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		}
	}
}

// mustAttachment creates a render attachment texture and its view. Failure panics, matching
// the surface configuration path which has no error return.
func (b *wgpuBackendImpl) mustAttachment(label string, width, height int, sampleCount uint32, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		panic(err)
	}
	return tex, view
}

func (b *wgpuBackendImpl) releaseAttachments() {
	for _, r := range []common.Releasable{b.msaaTextureView, b.msaaTexture, b.depthTextureView, b.depthTexture} {
		if !isNilHandle(r) {
			r.Release()
		}
	}
	b.msaaTexture, b.msaaTextureView = nil, nil
	b.depthTexture, b.depthTextureView = nil, nil
}

func (b *wgpuBackendImpl) SetPresentMode(mode PresentMode) {
	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuBackendImpl) CreateBuffer(label string, usage wgpu.BufferUsage, contents []byte) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(contents)),
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", label, err)
	}
	if len(contents) > 0 {
		b.queue.WriteBuffer(buf, 0, contents)
	}
	return buf, nil
}

func (b *wgpuBackendImpl) CreateTexture(label string, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     usage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create texture %q: %w", label, err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("failed to create view of texture %q: %w", label, err)
	}
	return tex, view, nil
}

func (b *wgpuBackendImpl) CreateSampler(label string, data common.SamplerStagingData) (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(samplerDescriptor(label, data))
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler %q: %w", label, err)
	}
	return samp, nil
}

// samplerDescriptor converts staging data to a sampler descriptor. Modes are copied as given since
// their zero values (repeat addressing, nearest filtering) are valid choices.
func samplerDescriptor(label string, data common.SamplerStagingData) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  data.AddressModeU,
		AddressModeV:  data.AddressModeV,
		AddressModeW:  data.AddressModeW,
		MagFilter:     data.MagFilter,
		MinFilter:     data.MinFilter,
		MipmapFilter:  data.MipmapFilter,
		LodMinClamp:   data.LodMinClamp,
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, 1),
	}
}

func (b *wgpuBackendImpl) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	layout, err := b.device.CreateBindGroupLayout(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group layout %q: %w", desc.Label, err)
	}
	return layout, nil
}

func (b *wgpuBackendImpl) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bg, err := b.device.CreateBindGroup(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group %q: %w", desc.Label, err)
	}
	return bg, nil
}

func (b *wgpuBackendImpl) CreateRenderPipeline(p pipeline.Pipeline, layouts []*wgpu.BindGroupLayout) (*wgpu.RenderPipeline, error) {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return nil, errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader %q: %w", vertexShader.Key(), err)
	}
	defer vs.Release()
	fs := vs
	if fragmentShader.Key() != vertexShader.Key() {
		fs, err = b.device.CreateShaderModule(fragmentShader.Module())
		if err != nil {
			return nil, fmt.Errorf("failed to compile shader %q: %w", fragmentShader.Key(), err)
		}
		defer fs.Release()
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout %q: %w", p.PipelineKey(), err)
	}
	defer pipelineLayout.Release()

	colorFormat := common.Coalesce(p.ColorFormat(), b.surfaceFormat)
	target := wgpu.ColorTargetState{
		Format:    colorFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexShader.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:         p.Topology(),
			StripIndexFormat: p.StripIndexFormat(),
			FrontFace:        p.FrontFace(),
			CullMode:         p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: common.Coalesce(p.SampleCount(), uint32(b.sampleCount)),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: p.DepthStencil(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render pipeline %q: %w", p.PipelineKey(), err)
	}

	p.SetRenderPipeline(created)
	return created, nil
}

func (b *wgpuBackendImpl) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	if len(data) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.queue.WriteBuffer(buf, offset, data)
}

func (b *wgpuBackendImpl) WriteTexture(tex *wgpu.Texture, region common.Region, data []byte, bytesPerRow uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: region.X, Y: region.Y, Z: 0},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: region.Height,
		},
		&wgpu.Extent3D{
			Width:              region.Width,
			Height:             region.Height,
			DepthOrArrayLayers: 1,
		},
	)
}

func (b *wgpuBackendImpl) Release(r common.Releasable) {
	if isNilHandle(r) {
		return
	}
	r.Release()
}

func (b *wgpuBackendImpl) BeginFrame() (RenderPass, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return nil, errors.New("surface has not been configured")
	}
	// a surface image still held from the last frame would trip "Surface image is already acquired"
	if b.frameSurface != nil {
		return nil, errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return nil, err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return NewRenderPass(pass), nil
}

func (b *wgpuBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

func (b *wgpuBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuBackendImpl) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseAttachments()
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}

// isNilHandle reports whether r is nil or wraps a nil wgpu handle.
func isNilHandle(r common.Releasable) bool {
	switch h := r.(type) {
	case nil:
		return true
	case *wgpu.Buffer:
		return h == nil
	case *wgpu.Texture:
		return h == nil
	case *wgpu.TextureView:
		return h == nil
	case *wgpu.Sampler:
		return h == nil
	case *wgpu.BindGroup:
		return h == nil
	case *wgpu.BindGroupLayout:
		return h == nil
	case *wgpu.RenderPipeline:
		return h == nil
	default:
		return false
	}
}
