package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Apply performs the write through the given write function, normally Backend.WriteBuffer.
// Writes against a binding with no buffer are dropped.
//
// Parameters:
//   - write: the function that uploads data into a GPU buffer
//
// Returns:
//   - bool: true if a buffer was found and written
func (w BufferWrite) Apply(write func(buf *wgpu.Buffer, offset uint64, data []byte)) bool {
	if w.Provider == nil {
		return false
	}
	buf := w.Provider.Buffer(w.Binding)
	if buf == nil {
		return false
	}
	write(buf, w.Offset, w.Data)
	return true
}
