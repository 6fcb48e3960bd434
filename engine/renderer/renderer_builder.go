package renderer

import "github.com/cogentcore/webgpu/wgpu"

// backendOptions collects the construction-time settings of a wgpu backend.
type backendOptions struct {
	presentMode          PresentMode
	sampleCount          MSAASampleCount
	depthBuffer          bool
	forceFallbackAdapter bool
	clearColor           wgpu.Color
}

// BackendBuilderOption is a functional option applied to a backend during construction via NewWGPUBackend.
type BackendBuilderOption func(*backendOptions)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - BackendBuilderOption: a function that applies the present mode option to a backend
func WithPresentMode(mode PresentMode) BackendBuilderOption {
	return func(o *backendOptions) {
		o.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the main render pass.
// When not specified, the default is MSAAOff.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff or MSAA4x)
//
// Returns:
//   - BackendBuilderOption: a function that applies the MSAA option to a backend
func WithMSAA(count MSAASampleCount) BackendBuilderOption {
	return func(o *backendOptions) {
		o.sampleCount = count
	}
}

// WithDepthBuffer attaches a DepthFormat depth buffer to the main render pass so glyph depth
// values can be depth tested.
//
// Parameters:
//   - enabled: true to allocate a depth attachment
//
// Returns:
//   - BackendBuilderOption: a function that applies the depth buffer option to a backend
func WithDepthBuffer(enabled bool) BackendBuilderOption {
	return func(o *backendOptions) {
		o.depthBuffer = enabled
	}
}

// WithClearColor sets the color the main render pass clears to at the start of each frame.
//
// Parameters:
//   - c: the clear color as RGBA floats
//
// Returns:
//   - BackendBuilderOption: a function that applies the clear color option to a backend
func WithClearColor(c [4]float64) BackendBuilderOption {
	return func(o *backendOptions) {
		o.clearColor = wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - BackendBuilderOption: a function that applies the force software renderer option to a backend
func WithForceSoftwareRenderer(force bool) BackendBuilderOption {
	return func(o *backendOptions) {
		o.forceFallbackAdapter = force
	}
}
