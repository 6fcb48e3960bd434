// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Rect is an axis-aligned rectangle described by its minimum (top-left) and maximum (bottom-right) corners.
// Pixel-space rectangles use a y-down convention, texture-space rectangles are normalized to [0, 1].
type Rect struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

// NewRect creates a Rect from its corner coordinates.
//
// Parameters:
//   - minX, minY: the top-left corner
//   - maxX, maxY: the bottom-right corner
//
// Returns:
//   - Rect: the rectangle spanning the two corners
func NewRect(minX, minY, maxX, maxY float32) Rect {
	return Rect{
		Min: mgl32.Vec2{minX, minY},
		Max: mgl32.Vec2{maxX, maxY},
	}
}

// Width returns the horizontal extent of the rectangle. It is negative if Max lies left of Min.
func (r Rect) Width() float32 {
	return r.Max.X() - r.Min.X()
}

// Height returns the vertical extent of the rectangle. It is negative if Max lies above Min.
func (r Rect) Height() float32 {
	return r.Max.Y() - r.Min.Y()
}

// Contains reports whether o lies inside r on all four edges.
func (r Rect) Contains(o Rect) bool {
	return o.Min.X() >= r.Min.X() && o.Min.Y() >= r.Min.Y() &&
		o.Max.X() <= r.Max.X() && o.Max.Y() <= r.Max.Y()
}

// Region is a rectangle in texel units used to address a sub-area of an atlas texture.
type Region struct {
	// X and Y are the texel coordinates of the top-left corner of the region.
	X, Y uint32
	// Width and Height are the region's extent in texels.
	Width, Height uint32
}

// Area returns the number of texels covered by the region.
func (r Region) Area() int {
	return int(r.Width) * int(r.Height)
}

// Within reports whether the region lies fully inside a texture of the given size.
//
// Parameters:
//   - width: the texture width in texels
//   - height: the texture height in texels
//
// Returns:
//   - bool: true if every texel of the region is addressable in the texture
func (r Region) Within(width, height uint32) bool {
	return uint64(r.X)+uint64(r.Width) <= uint64(width) && uint64(r.Y)+uint64(r.Height) <= uint64(height)
}

// GlyphExtra holds the per-glyph attributes that pass through vertex construction untouched.
type GlyphExtra struct {
	// Depth is the z value written into the glyph quad's position.
	Depth float32
	// Color is the RGBA color of the glyph in linear [0, 1] floats.
	Color [4]float32
}

// GlyphVertex is a single positioned glyph as produced by a layout engine.
// One GlyphVertex is produced per glyph per frame and is never mutated after creation.
type GlyphVertex struct {
	// PixelCoords is the glyph quad in pixel space. It may extend outside Bounds.
	PixelCoords Rect
	// Bounds is the clip rectangle in pixel space the glyph must be cut to.
	Bounds Rect
	// TexCoords is the glyph's rectangle inside the atlas texture, normalized to [0, 1].
	TexCoords Rect
	// Extra carries depth and color.
	Extra GlyphExtra
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Addressing and filter modes are passed through as given. A zero LodMaxClamp or MaxAnisotropy
// falls back to 32 and 1.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level.
	MaxAnisotropy uint16
}

// Releasable is any GPU object that owns native resources freed by Release.
// Every wgpu handle (buffers, textures, views, samplers, bind groups, pipelines) satisfies it.
type Releasable interface {
	Release()
}
