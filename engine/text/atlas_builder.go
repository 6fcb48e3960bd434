package text

import (
	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// AtlasOption is a functional option used to configure an Atlas during construction.
type AtlasOption func(*Atlas)

// WithAtlasLabel sets the debug label prefix of every GPU object the atlas creates.
func WithAtlasLabel(label string) AtlasOption {
	return func(a *Atlas) {
		if label != "" {
			a.label = label
		}
	}
}

// WithRowAlignment pads uploaded rows to a multiple of n bytes before they are written.
// Zero uploads rows tightly packed.
//
// Parameters:
//   - n: the row stride alignment in bytes
//
// Returns:
//   - AtlasOption: a function that sets the row alignment
func WithRowAlignment(n uint32) AtlasOption {
	return func(a *Atlas) {
		a.rowAlignment = n
	}
}

// WithLayoutDescriptor replaces the default atlas layout, e.g. with the layout parsed from the shader
// that samples the atlas. The bindings must stay at ProjectionBinding, TextureBinding and SamplerBinding.
//
// Parameters:
//   - desc: the bind group layout descriptor
//
// Returns:
//   - AtlasOption: a function that sets the layout descriptor
func WithLayoutDescriptor(desc wgpu.BindGroupLayoutDescriptor) AtlasOption {
	return func(a *Atlas) {
		a.layout = desc
	}
}

// WithSampler replaces the sampler configuration. Every addressing and filter mode is used as given,
// including the zero values wgpu.AddressModeRepeat and wgpu.FilterModeNearest.
func WithSampler(data common.SamplerStagingData) AtlasOption {
	return func(a *Atlas) {
		a.sampler = data
	}
}
