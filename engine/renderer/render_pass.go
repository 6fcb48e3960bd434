package renderer

import "github.com/cogentcore/webgpu/wgpu"

type renderPassImpl struct {
	encoder *wgpu.RenderPassEncoder
}

var _ RenderPass = &renderPassImpl{}

// NewRenderPass adapts a live wgpu render pass encoder to the RenderPass interface.
//
// Parameters:
//   - encoder: the render pass encoder returned by BeginRenderPass
//
// Returns:
//   - RenderPass: the adapted render pass
func NewRenderPass(encoder *wgpu.RenderPassEncoder) RenderPass {
	return &renderPassImpl{encoder: encoder}
}

func (r *renderPassImpl) SetPipeline(p *wgpu.RenderPipeline) {
	r.encoder.SetPipeline(p)
}

func (r *renderPassImpl) SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64) {
	r.encoder.SetVertexBuffer(slot, buffer, offset, size)
}

func (r *renderPassImpl) SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	r.encoder.SetBindGroup(groupIndex, group, dynamicOffsets)
}

func (r *renderPassImpl) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	r.encoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}
