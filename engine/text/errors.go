package text

import "errors"

var (
	// ErrNilBackend is returned when a resource is created without a GPU backend.
	ErrNilBackend = errors.New("text: backend is nil")

	// ErrZeroAtlasSize is returned when an atlas is created or resized with a zero width or height.
	ErrZeroAtlasSize = errors.New("text: atlas width and height must be non-zero")

	// ErrShaderLayout is returned when the glyph shader does not match the Vertex layout or the atlas bindings.
	ErrShaderLayout = errors.New("text: glyph shader does not match the resource layout")
)
