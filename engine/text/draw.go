package text

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/Carmen-Shannon/oxy-text/engine/logging"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer/pipeline"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// quadVertexCount is the number of strip vertices the shader expands each glyph instance into.
const quadVertexCount = 4

// vertexBufferUsage is the usage of the glyph vertex buffer: bound as a vertex buffer and written from the CPU.
const vertexBufferUsage = wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst

// DrawResource owns the glyph render pipeline and a grow-only vertex buffer. The buffer starts at
// zero length and is reallocated to exactly the requested length whenever a frame holds more glyphs
// than any frame before it. Smaller frames overwrite the front of the buffer in place.
type DrawResource struct {
	backend        renderer.Backend
	pipeline       pipeline.Pipeline
	renderPipeline *wgpu.RenderPipeline
	log            *log.Logger

	buffer *wgpu.Buffer
	// capacity is the number of vertices the buffer holds, live the number drawn. live <= capacity.
	capacity int
	live     int
}

// NewDrawResource creates the render pipeline for p with the atlas layout at group 0 and an empty vertex buffer.
//
// Parameters:
//   - backend: the GPU backend to allocate on
//   - p: the glyph pipeline configuration
//   - atlasLayout: the bind group layout of the atlas the pipeline samples
//
// Returns:
//   - *DrawResource: the resource in its empty state
//   - error: ErrNilBackend or a wrapped creation failure
func NewDrawResource(backend renderer.Backend, p pipeline.Pipeline, atlasLayout *wgpu.BindGroupLayout) (*DrawResource, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}

	rp, err := backend.CreateRenderPipeline(p, []*wgpu.BindGroupLayout{atlasLayout})
	if err != nil {
		return nil, fmt.Errorf("failed to create glyph render pipeline: %w", err)
	}

	buf, err := backend.CreateBuffer(p.PipelineKey()+" Vertex Buffer", vertexBufferUsage, nil)
	if err != nil {
		backend.Release(rp)
		return nil, fmt.Errorf("failed to create glyph vertex buffer: %w", err)
	}

	return &DrawResource{
		backend:        backend,
		pipeline:       p,
		renderPipeline: rp,
		buffer:         buf,
		log:            logging.With("pipeline", p.PipelineKey()),
	}, nil
}

// Update uploads the vertices of the next draw. When there are more vertices than the buffer holds,
// a new buffer of exactly len(vertices) is created with the vertices as its contents and the old one
// is released. Otherwise the vertices overwrite the front of the current buffer; the bytes after them
// are left stale and never drawn. On failure the previous buffer and counts are kept.
//
// Parameters:
//   - vertices: the vertices to draw, one per glyph
//
// Returns:
//   - error: a wrapped allocation failure
func (d *DrawResource) Update(vertices []Vertex) error {
	data := common.SliceToBytes(vertices)

	if len(vertices) > d.capacity {
		buf, err := d.backend.CreateBuffer(d.pipeline.PipelineKey()+" Vertex Buffer", vertexBufferUsage, data)
		if err != nil {
			return fmt.Errorf("failed to grow glyph vertex buffer to %d vertices: %w", len(vertices), err)
		}
		d.backend.Release(d.buffer)
		d.log.Debug("vertex buffer reallocated", "from", d.capacity, "to", len(vertices))
		d.buffer = buf
		d.capacity = len(vertices)
	} else if len(data) > 0 {
		d.backend.WriteBuffer(d.buffer, 0, data)
	}

	d.live = len(vertices)
	return nil
}

// Draw records the glyph draw into pass: one instanced 4 vertex triangle strip per live vertex with
// the atlas bound at group 0. Nothing is recorded while there are no live vertices.
//
// Parameters:
//   - pass: the render pass to record into
//   - atlasBinding: the atlas bind group
func (d *DrawResource) Draw(pass renderer.RenderPass, atlasBinding *wgpu.BindGroup) {
	if d.live == 0 {
		return
	}

	pass.SetPipeline(d.renderPipeline)
	pass.SetVertexBuffer(0, d.buffer, 0, wgpu.WholeSize)
	pass.SetBindGroup(0, atlasBinding, nil)
	pass.Draw(quadVertexCount, uint32(d.live), 0, 0)
}

// Capacity returns the number of vertices the current buffer holds.
func (d *DrawResource) Capacity() int {
	return d.capacity
}

// Len returns the number of vertices the next Draw will draw.
func (d *DrawResource) Len() int {
	return d.live
}

// Buffer returns the current vertex buffer. It is invalid after the next growing Update.
func (d *DrawResource) Buffer() *wgpu.Buffer {
	return d.buffer
}

// RenderPipeline returns the glyph render pipeline.
func (d *DrawResource) RenderPipeline() *wgpu.RenderPipeline {
	return d.renderPipeline
}

// Release frees the vertex buffer and the render pipeline.
func (d *DrawResource) Release() {
	d.backend.Release(d.buffer)
	d.backend.Release(d.renderPipeline)
	d.buffer, d.renderPipeline = nil, nil
	d.pipeline.SetRenderPipeline(nil)
	d.capacity, d.live = 0, 0
}
