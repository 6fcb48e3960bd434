package pipeline

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-text/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the render pipeline handle once created and every setting needed to create it.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for labels and lookups
	pipelineKey string

	// vertexShader and fragmentShader are required before the pipeline is created. They may be the same module.
	vertexShader, fragmentShader shader.Shader

	// renderPipeline is set by the backend once the pipeline has been created
	renderPipeline *wgpu.RenderPipeline

	topology         wgpu.PrimitiveTopology
	stripIndexFormat wgpu.IndexFormat
	frontFace        wgpu.FrontFace
	cullMode         wgpu.CullMode
	blendEnabled     bool
	blendState       *wgpu.BlendState
	writeMask        wgpu.ColorWriteMask
	colorFormat      wgpu.TextureFormat
	depthStencil     *wgpu.DepthStencilState
	sampleCount      uint32
}

// Pipeline defines the interface for a render pipeline configuration. It carries the shaders,
// primitive, blend, depth and multisample settings a backend needs to create the GPU pipeline,
// and holds the created pipeline afterwards.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for labels and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader associated with the specified type if it exists, nil otherwise.
	//
	// Parameters:
	//   - shaderType: the type of shader to retrieve (vertex or fragment)
	//
	// Returns:
	//   - shader.Shader: the shader associated with the specified type, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// BindGroupLayoutDescriptors merges the bind group layouts declared by the vertex and fragment
	// shaders. A binding declared in both stages gets the union of their visibilities.
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutDescriptor: the merged descriptors, index i describes group i
	BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor

	// RenderPipeline returns the created render pipeline, or nil before creation.
	RenderPipeline() *wgpu.RenderPipeline

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology (e.g., wgpu.PrimitiveTopologyTriangleStrip)
	Topology() wgpu.PrimitiveTopology

	// StripIndexFormat returns the strip index format used by strip topologies.
	//
	// Returns:
	//   - wgpu.IndexFormat: the strip index format (e.g., wgpu.IndexFormatUint16)
	StripIndexFormat() wgpu.IndexFormat

	// FrontFace returns the front face winding order configured for this pipeline.
	FrontFace() wgpu.FrontFace

	// CullMode returns the cull mode configured for this pipeline.
	CullMode() wgpu.CullMode

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state for this pipeline
	BlendState() *wgpu.BlendState

	// WriteMask returns the color write mask configured for this pipeline.
	WriteMask() wgpu.ColorWriteMask

	// ColorFormat returns the color target format. wgpu.TextureFormatUndefined selects the surface format.
	ColorFormat() wgpu.TextureFormat

	// DepthStencil returns the depth-stencil state, or nil when the pipeline draws without a depth attachment.
	DepthStencil() *wgpu.DepthStencilState

	// SampleCount returns the multisample count. Zero selects the backend's sample count.
	SampleCount() uint32

	// SetRenderPipeline sets the render pipeline
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline interface. The defaults suit instanced
// quad drawing: triangle strips with a Uint16 strip index format, no culling and standard alpha blending.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:      pipelineKey,
		topology:         wgpu.PrimitiveTopologyTriangleStrip,
		stripIndexFormat: wgpu.IndexFormatUint16,
		frontFace:        wgpu.FrontFaceCCW,
		cullMode:         wgpu.CullModeNone,
		blendEnabled:     true,
		writeMask:        wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor {
	var vertex, fragment map[int]wgpu.BindGroupLayoutDescriptor
	if p.vertexShader != nil {
		vertex = p.vertexShader.BindGroupLayoutDescriptors()
	}
	if p.fragmentShader != nil {
		fragment = p.fragmentShader.BindGroupLayoutDescriptors()
	}
	merged := mergeBindGroupLayouts(vertex, fragment)

	maxGroup := -1
	for g := range merged {
		maxGroup = max(maxGroup, g)
	}
	result := make([]wgpu.BindGroupLayoutDescriptor, maxGroup+1)
	for g, desc := range merged {
		if desc.Label == "" {
			desc.Label = p.pipelineKey
		}
		result[g] = desc
	}
	return result
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) StripIndexFormat() wgpu.IndexFormat {
	return p.stripIndexFormat
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) ColorFormat() wgpu.TextureFormat {
	return p.colorFormat
}

func (p *pipeline) DepthStencil() *wgpu.DepthStencilState {
	return p.depthStencil
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

// mergeBindGroupLayouts combines per-stage layout descriptors by group index. Entries sharing a
// binding number across stages are merged by OR-ing their visibility.
func mergeBindGroupLayouts(
	vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor,
) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)

	groupIndices := make(map[int]bool)
	for g := range vertexLayouts {
		groupIndices[g] = true
	}
	for g := range fragmentLayouts {
		groupIndices[g] = true
	}

	for g := range groupIndices {
		vDesc, hasV := vertexLayouts[g]
		fDesc, hasF := fragmentLayouts[g]

		switch {
		case hasV && !hasF:
			merged[g] = vDesc
		case hasF && !hasV:
			merged[g] = fDesc
		default:
			entryMap := make(map[uint32]wgpu.BindGroupLayoutEntry)
			for _, e := range vDesc.Entries {
				entryMap[e.Binding] = e
			}
			for _, e := range fDesc.Entries {
				if existing, ok := entryMap[e.Binding]; ok {
					existing.Visibility |= e.Visibility
					entryMap[e.Binding] = existing
				} else {
					entryMap[e.Binding] = e
				}
			}

			entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
			for _, e := range entryMap {
				entries = append(entries, e)
			}
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Binding < entries[j].Binding
			})

			merged[g] = wgpu.BindGroupLayoutDescriptor{
				Label:   vDesc.Label,
				Entries: entries,
			}
		}
	}

	return merged
}
