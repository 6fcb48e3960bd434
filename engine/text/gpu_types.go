package text

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-text/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// GlyphShaderSource is the WGSL source of the glyph pipeline. It holds both the vs_main and fs_main entry points.
//
//go:embed assets/glyph.wgsl
var GlyphShaderSource string

// ProjectionSource is the canonical WGSL definition of the Projection uniform struct.
// Matches the 64 byte column-major matrix written by Atlas.UpdateProjection.
//
//go:embed assets/projection.wgsl
var ProjectionSource string

// GlyphInstanceSource is the canonical WGSL definition of the GlyphInstance vertex input struct.
// Matches Vertex layout exactly (52 bytes, tightly packed).
//
//go:embed assets/glyph_instance.wgsl
var GlyphInstanceSource string

const (
	// structKeyProjection is the @oxy:include key of ProjectionSource.
	structKeyProjection shader.AnnotationArg = "projection"
	// structKeyGlyphInstance is the @oxy:include key of GlyphInstanceSource.
	structKeyGlyphInstance shader.AnnotationArg = "glyph_instance"
)

// ProjectionSize is the byte size of the projection uniform: one 4x4 float32 matrix.
const ProjectionSize = 64

// VertexSize is the byte size of a single Vertex as laid out in the vertex buffer.
const VertexSize = 52

// Vertex is the GPU representation of one glyph quad. One Vertex is uploaded per glyph and
// stepped once per instance; the shader expands it to the four corners of a triangle strip.
// Matches the WGSL GlyphInstance struct exactly (see GlyphInstanceSource).
// Size: 52 bytes, no padding.
type Vertex struct {
	TopLeft        [3]float32 // offset  0: left, top and depth in pixel space (12 bytes)
	BottomRight    [2]float32 // offset 12: right and bottom in pixel space (8 bytes)
	TexTopLeft     [2]float32 // offset 20: atlas coordinates of the top left corner (8 bytes)
	TexBottomRight [2]float32 // offset 28: atlas coordinates of the bottom right corner (8 bytes)
	Color          [4]float32 // offset 36: RGBA color (16 bytes)
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// VertexBufferLayout describes how the vertex buffer is read by the glyph pipeline: one Vertex per instance
// at shader locations 0 through 4.
//
// Returns:
//   - wgpu.VertexBufferLayout: the instance-stepped layout with a 52 byte stride
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexSize,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 20, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 28, ShaderLocation: 3},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 36, ShaderLocation: 4},
		},
	}
}

// glyphShaders parses both stages of glyph.wgsl with one pre-processor holding the structs it includes.
func glyphShaders(label string) (vs, fs shader.Shader) {
	pp := shader.NewPreProcessor()
	pp.RegisterStruct(structKeyProjection, shader.StructSource{Source: ProjectionSource, Type: "Projection"})
	pp.RegisterStruct(structKeyGlyphInstance, shader.StructSource{Source: GlyphInstanceSource, Type: "GlyphInstance"})

	vs = shader.NewShader(label, shader.ShaderTypeVertex, GlyphShaderSource, shader.WithPreProcessor(pp))
	fs = shader.NewShader(label, shader.ShaderTypeFragment, GlyphShaderSource, shader.WithPreProcessor(pp))
	return vs, fs
}
