package text

import "github.com/cogentcore/webgpu/wgpu"

// brushOptions collects the construction-time settings of a Brush.
type brushOptions struct {
	label        string
	atlasSize    [2]uint32
	viewport     [2]float32
	rowAlignment uint32
	colorFormat  wgpu.TextureFormat
	depthStencil *wgpu.DepthStencilState
	sampleCount  uint32
	builder      BatchBuilder
}

// BrushOption is a functional option used to configure a Brush during construction via NewBrush.
type BrushOption func(*brushOptions)

// WithLabel sets the label prefix of the brush's GPU objects. The brush id is always appended.
func WithLabel(label string) BrushOption {
	return func(o *brushOptions) {
		o.label = label
	}
}

// WithAtlasSize sets the initial atlas size in texels. The default is 1024x1024.
//
// Parameters:
//   - width, height: the atlas size
//
// Returns:
//   - BrushOption: a function that sets the atlas size
func WithAtlasSize(width, height uint32) BrushOption {
	return func(o *brushOptions) {
		o.atlasSize = [2]uint32{width, height}
	}
}

// WithViewport sets the viewport the initial projection is computed for. The default is 800x600.
//
// Parameters:
//   - width, height: the viewport size in pixels
//
// Returns:
//   - BrushOption: a function that sets the viewport
func WithViewport(width, height float32) BrushOption {
	return func(o *brushOptions) {
		o.viewport = [2]float32{width, height}
	}
}

// WithAtlasRowAlignment pads atlas uploads to rows of a multiple of n bytes.
func WithAtlasRowAlignment(n uint32) BrushOption {
	return func(o *brushOptions) {
		o.rowAlignment = n
	}
}

// WithColorFormat sets the color target format. Without it the backend's surface format is used.
func WithColorFormat(format wgpu.TextureFormat) BrushOption {
	return func(o *brushOptions) {
		o.colorFormat = format
	}
}

// WithDepthStencil sets the depth-stencil state the glyphs are drawn with. Glyph depth comes from
// each glyph's depth value. Nil draws without depth testing.
//
// Parameters:
//   - state: the depth-stencil state, or nil
//
// Returns:
//   - BrushOption: a function that sets the depth-stencil state
func WithDepthStencil(state *wgpu.DepthStencilState) BrushOption {
	return func(o *brushOptions) {
		o.depthStencil = state
	}
}

// WithSampleCount sets the multisample count of the pass the brush draws into. Zero uses the backend's count.
func WithSampleCount(count uint32) BrushOption {
	return func(o *brushOptions) {
		o.sampleCount = count
	}
}

// WithBuilder shares a BatchBuilder between brushes. A shared builder is not released with the brush.
//
// Parameters:
//   - builder: the builder to build vertices with
//
// Returns:
//   - BrushOption: a function that sets the builder
func WithBuilder(builder BatchBuilder) BrushOption {
	return func(o *brushOptions) {
		o.builder = builder
	}
}

// DepthStencilState returns a depth-stencil state for format that keeps the nearest glyph,
// with stencil testing disabled.
//
// Parameters:
//   - format: the depth attachment format
//
// Returns:
//   - *wgpu.DepthStencilState: the depth-stencil state
func DepthStencilState(format wgpu.TextureFormat) *wgpu.DepthStencilState {
	return &wgpu.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: true,
		DepthCompare:      wgpu.CompareFunctionLessEqual,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}
