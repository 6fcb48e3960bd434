package text

import (
	"fmt"
	"reflect"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/Carmen-Shannon/oxy-text/engine/logging"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer/shader"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// brushShaderKey is the shader and pipeline key prefix of every brush.
const brushShaderKey = "glyph"

// Brush draws queued glyphs with one atlas and one draw resource. It is the surface a frame loop talks to:
// queue glyphs, process them once per frame, then draw into the frame's render pass.
//
// A Brush is used from the render thread only.
type Brush struct {
	id      uuid.UUID
	label   string
	backend renderer.Backend
	log     *log.Logger

	pipeline pipeline.Pipeline
	atlas    *Atlas
	draw     *DrawResource

	builder     BatchBuilder
	ownsBuilder bool
	queued      []common.GlyphVertex
	vertices    []Vertex
}

// NewBrush compiles the glyph shader, checks it against the Vertex layout and atlas bindings,
// and creates the atlas and draw resource.
//
// Parameters:
//   - backend: the GPU backend to allocate on
//   - opts: a variadic list of BrushOption functions
//
// Returns:
//   - *Brush: the ready brush
//   - error: ErrNilBackend, ErrShaderLayout or a wrapped creation failure
func NewBrush(backend renderer.Backend, opts ...BrushOption) (*Brush, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}

	o := brushOptions{
		atlasSize: [2]uint32{1024, 1024},
		viewport:  [2]float32{800, 600},
	}
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.New()
	b := &Brush{
		id:      id,
		label:   fmt.Sprintf("%s %s", common.Coalesce(o.label, brushShaderKey), id),
		backend: backend,
		builder: o.builder,
	}
	b.log = logging.With("brush", id.String())
	if b.builder == nil {
		b.builder = NewBatchBuilder()
		b.ownsBuilder = true
	}

	vs, fs := glyphShaders(b.label)
	if err := checkGlyphShader(vs); err != nil {
		return nil, err
	}

	b.pipeline = pipeline.NewPipeline(b.label,
		pipeline.WithShader(vs, fs),
		pipeline.WithColorFormat(o.colorFormat),
		pipeline.WithDepthStencil(o.depthStencil),
		pipeline.WithSampleCount(o.sampleCount),
	)

	atlas, err := NewAtlas(backend, o.atlasSize[0], o.atlasSize[1], o.viewport,
		WithAtlasLabel(b.label+" Atlas"),
		WithLayoutDescriptor(b.pipeline.BindGroupLayoutDescriptors()[0]),
		WithRowAlignment(o.rowAlignment),
	)
	if err != nil {
		return nil, err
	}
	b.atlas = atlas

	draw, err := NewDrawResource(backend, b.pipeline, atlas.BindGroupLayout())
	if err != nil {
		atlas.Release()
		return nil, err
	}
	b.draw = draw

	b.log.Info("brush created", "atlas", fmt.Sprintf("%dx%d", o.atlasSize[0], o.atlasSize[1]), "depth", o.depthStencil != nil)
	return b, nil
}

// checkGlyphShader verifies that the vertex stage reads Vertex exactly as VertexBufferLayout describes it
// and that its atlas provider annotations use the bindings the Atlas fills.
func checkGlyphShader(vs shader.Shader) error {
	layouts := vs.VertexLayouts()
	if len(layouts) != 1 || !reflect.DeepEqual(layouts[0], VertexBufferLayout()) {
		return fmt.Errorf("%w: vertex input does not match Vertex", ErrShaderLayout)
	}

	roles := []struct {
		role    shader.AnnotationArg
		binding int
	}{
		{shader.AnnotationArgProjection, ProjectionBinding},
		{shader.AnnotationArgAtlasTexture, TextureBinding},
		{shader.AnnotationArgAtlasSampler, SamplerBinding},
	}
	for _, r := range roles {
		group, binding, ok := shader.FindProvider(vs.Declarations(), shader.AnnotationArgAtlas, r.role)
		if !ok || group != 0 || binding != r.binding {
			return fmt.Errorf("%w: %s must be provided at group 0 binding %d", ErrShaderLayout, r.role, r.binding)
		}
	}
	return nil
}

// ID returns the brush's unique id. It is part of every GPU label the brush creates.
func (b *Brush) ID() uuid.UUID {
	return b.id
}

// Queue adds glyphs to the next Process call.
//
// Parameters:
//   - glyphs: the laid out glyphs to draw
func (b *Brush) Queue(glyphs ...common.GlyphVertex) {
	b.queued = append(b.queued, glyphs...)
}

// Queued returns the number of glyphs waiting for Process.
func (b *Brush) Queued() int {
	return len(b.queued)
}

// Process builds vertices for the queued glyphs and uploads them, replacing what the previous frame drew.
// The queue is cleared once the upload succeeds. Processing an empty queue clears the draw.
//
// Returns:
//   - error: a wrapped allocation failure, the queue is kept
func (b *Brush) Process() error {
	b.vertices = b.builder.Build(b.vertices, b.queued)
	if err := b.draw.Update(b.vertices); err != nil {
		return err
	}
	b.queued = b.queued[:0]
	return nil
}

// Drawn returns the number of glyph instances the next Draw will issue.
func (b *Brush) Drawn() int {
	return b.draw.Len()
}

// UpdateVertices uploads already built vertices, bypassing the queue.
//
// Parameters:
//   - vertices: the vertices to draw
//
// Returns:
//   - error: a wrapped allocation failure
func (b *Brush) UpdateVertices(vertices []Vertex) error {
	return b.draw.Update(vertices)
}

// Draw records the uploaded glyphs into pass. The pass must match the brush's color format,
// depth-stencil state and sample count.
func (b *Brush) Draw(pass renderer.RenderPass) {
	b.draw.Draw(pass, b.atlas.BindGroup())
}

// ResizeTexture recreates the atlas texture at a new size. The atlas content is lost and must be uploaded again.
//
// Parameters:
//   - width, height: the new atlas size in texels
//
// Returns:
//   - error: ErrZeroAtlasSize or a wrapped allocation failure
func (b *Brush) ResizeTexture(width, height uint32) error {
	return b.atlas.Resize(width, height)
}

// UpdateTexture writes coverage bytes into a region of the atlas. See Atlas.UpdateRegion.
func (b *Brush) UpdateTexture(region common.Region, pixels []byte) {
	b.atlas.UpdateRegion(region, pixels)
}

// UpdateMatrix recomputes the projection for a new viewport size.
//
// Parameters:
//   - width, height: the viewport size in pixels
func (b *Brush) UpdateMatrix(width, height float32) {
	b.atlas.UpdateProjection(width, height)
}

// Atlas returns the brush's atlas.
func (b *Brush) Atlas() *Atlas {
	return b.atlas
}

// DrawResource returns the brush's draw resource.
func (b *Brush) DrawResource() *DrawResource {
	return b.draw
}

// Pipeline returns the glyph pipeline configuration.
func (b *Brush) Pipeline() pipeline.Pipeline {
	return b.pipeline
}

// Release frees the draw resource and the atlas, and stops the batch builder if the brush created it.
func (b *Brush) Release() {
	b.draw.Release()
	b.atlas.Release()
	if b.ownsBuilder {
		b.builder.Release()
	}
	b.log.Debug("brush released")
}
