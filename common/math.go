package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Ortho creates the orthographic projection that maps pixel space, origin top-left and y-down,
// onto clip space. The point (0, 0) maps to (-1, 1) and (width, height) maps to (1, -1).
// The z axis is passed through unscaled so glyph depth values reach the depth test unchanged.
// The matrix is stored in column-major order (WebGPU convention).
//
// A zero width or height yields infinite scale factors; callers must supply a non-empty viewport.
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Ortho(width, height float32) mgl32.Mat4 {
	// near=1, far=-1 keeps the z row at (0, 0, 1, 0) with no translation.
	return mgl32.Ortho(0, width, height, 0, 1, -1)
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// AlignUp rounds value up to the next multiple of alignment. An alignment of zero returns value unchanged.
func AlignUp(value, alignment uint32) uint32 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) / alignment * alignment
}

// PadRows copies tightly packed single-channel rows into a new buffer whose row stride is
// rounded up to alignment bytes. The padding bytes are zero.
//
// Parameters:
//   - data: tightly packed pixel rows, width bytes each
//   - width: the row length in bytes
//   - height: the number of rows
//   - alignment: the required row stride alignment in bytes
//
// Returns:
//   - []byte: the padded pixel data
//   - uint32: the padded row stride in bytes
func PadRows(data []byte, width, height, alignment uint32) ([]byte, uint32) {
	stride := AlignUp(width, alignment)
	if stride == width {
		return data, width
	}
	out := make([]byte, int(stride)*int(height))
	for row := range int(height) {
		copy(out[row*int(stride):], data[row*int(width):(row+1)*int(width)])
	}
	return out, stride
}
