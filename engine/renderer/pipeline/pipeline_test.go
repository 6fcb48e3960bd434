package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-text/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSource = `struct Projection {
    transform: mat4x4<f32>,
}
@group(0) @binding(0) var<uniform> projection: Projection;
@group(0) @binding(1) var atlas_texture: texture_2d<f32>;
@group(0) @binding(2) var atlas_sampler: sampler;

struct Quad {
    @location(0) pos: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
}

@vertex
fn vs_main(input: Quad) -> VertexOutput {
    var out: VertexOutput;
    out.position = projection.transform * vec4<f32>(input.pos, 0.0, 1.0);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let m = projection.transform[0][0];
    return textureSample(atlas_texture, atlas_sampler, vec2<f32>(m, 0.0));
}
`

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("glyph")

	assert.Equal(t, "glyph", p.PipelineKey())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, p.Topology())
	assert.Equal(t, wgpu.IndexFormatUint16, p.StripIndexFormat())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.True(t, p.BlendEnabled())
	require.NotNil(t, p.BlendState())
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, p.BlendState().Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, p.BlendState().Color.DstFactor)
	assert.Equal(t, wgpu.BlendFactorOne, p.BlendState().Alpha.SrcFactor)
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.Equal(t, wgpu.TextureFormatUndefined, p.ColorFormat())
	assert.Nil(t, p.DepthStencil())
	assert.Zero(t, p.SampleCount())
	assert.Nil(t, p.RenderPipeline())
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))
	assert.Empty(t, p.BindGroupLayoutDescriptors())
}

func TestPipelineOptions(t *testing.T) {
	depth := &wgpu.DepthStencilState{
		Format:            wgpu.TextureFormatDepth24Plus,
		DepthWriteEnabled: true,
		DepthCompare:      wgpu.CompareFunctionLessEqual,
	}
	p := NewPipeline("glyph",
		WithTopology(wgpu.PrimitiveTopologyTriangleList),
		WithStripIndexFormat(wgpu.IndexFormatUndefined),
		WithFrontFace(wgpu.FrontFaceCW),
		WithCullMode(wgpu.CullModeBack),
		WithBlendEnabled(false),
		WithWriteMask(wgpu.ColorWriteMaskRed),
		WithColorFormat(wgpu.TextureFormatBGRA8Unorm),
		WithDepthStencil(depth),
		WithSampleCount(4),
	)

	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.IndexFormatUndefined, p.StripIndexFormat())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, p.ColorFormat())
	assert.Same(t, depth, p.DepthStencil())
	assert.Equal(t, uint32(4), p.SampleCount())

	rp := new(wgpu.RenderPipeline)
	p.SetRenderPipeline(rp)
	assert.Same(t, rp, p.RenderPipeline())
}

func TestBindGroupLayoutDescriptorsMergeStages(t *testing.T) {
	vs := shader.NewShader("glyph", shader.ShaderTypeVertex, testSource)
	fs := shader.NewShader("glyph", shader.ShaderTypeFragment, testSource)
	p := NewPipeline("glyph", WithShader(vs, fs))

	assert.Same(t, vs, p.Shader(shader.ShaderTypeVertex))
	assert.Same(t, fs, p.Shader(shader.ShaderTypeFragment))

	descs := p.BindGroupLayoutDescriptors()
	require.Len(t, descs, 1)
	assert.Equal(t, "glyph", descs[0].Label)

	entries := descs[0].Entries
	require.Len(t, entries, 3)
	assert.Equal(t, uint32(0), entries[0].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, entries[0].Visibility)
	assert.Equal(t, uint64(64), entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint32(1), entries[1].Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, entries[1].Visibility)
	assert.Equal(t, uint32(2), entries[2].Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, entries[2].Visibility)
}

func TestMergeBindGroupLayoutsSingleStage(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		1: {Label: "v", Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageVertex}}},
	}
	merged := mergeBindGroupLayouts(vertex, nil)
	require.Contains(t, merged, 1)
	assert.Equal(t, "v", merged[1].Label)

	p := NewPipeline("glyph", WithVertexShader(nil))
	assert.Empty(t, p.BindGroupLayoutDescriptors())
}
