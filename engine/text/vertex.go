// package text turns positioned glyphs into instanced quads and owns the GPU resources a text
// draw needs: the glyph atlas texture with its projection uniform and sampler, and a grow-only
// vertex buffer drawn as one instanced triangle strip per glyph.
package text

import (
	"github.com/Carmen-Shannon/oxy-text/common"
)

// BuildVertex converts a laid out glyph into its GPU quad, cutting the quad to the glyph's bounds.
// Each edge that lies outside bounds is moved onto the bounds edge and the texture rectangle is shrunk
// on the same side by the same proportion, so the visible part of the glyph keeps its texel density.
// A clipped max edge holds the min texture edge, a clipped min edge holds the max texture edge.
//
// Quads that clip to nothing, or that had no extent to begin with, come out with zero area on that axis.
// An inverted pixel rectangle is collapsed onto its min edge first, so it also yields a zero-area quad.
// Depth and color are copied unchanged.
//
// Parameters:
//   - g: the glyph to convert
//
// Returns:
//   - Vertex: the clipped quad
func BuildVertex(g common.GlyphVertex) Vertex {
	rect := g.PixelCoords
	uv := g.TexCoords
	bounds := g.Bounds

	if rect.Width() < 0 {
		rect.Max[0] = rect.Min.X()
	}
	if rect.Height() < 0 {
		rect.Max[1] = rect.Min.Y()
	}

	if rect.Max.X() > bounds.Max.X() {
		oldWidth := rect.Width()
		rect.Max[0] = bounds.Max.X()
		if rect.Max.X() < rect.Min.X() {
			rect.Min[0] = rect.Max.X()
		}
		uv.Max[0] = uv.Min.X() + scaleExtent(uv.Width(), rect.Width(), oldWidth)
	}
	if rect.Min.X() < bounds.Min.X() {
		oldWidth := rect.Width()
		rect.Min[0] = bounds.Min.X()
		if rect.Min.X() > rect.Max.X() {
			rect.Max[0] = rect.Min.X()
		}
		uv.Min[0] = uv.Max.X() - scaleExtent(uv.Width(), rect.Width(), oldWidth)
	}
	if rect.Max.Y() > bounds.Max.Y() {
		oldHeight := rect.Height()
		rect.Max[1] = bounds.Max.Y()
		if rect.Max.Y() < rect.Min.Y() {
			rect.Min[1] = rect.Max.Y()
		}
		uv.Max[1] = uv.Min.Y() + scaleExtent(uv.Height(), rect.Height(), oldHeight)
	}
	if rect.Min.Y() < bounds.Min.Y() {
		oldHeight := rect.Height()
		rect.Min[1] = bounds.Min.Y()
		if rect.Min.Y() > rect.Max.Y() {
			rect.Max[1] = rect.Min.Y()
		}
		uv.Min[1] = uv.Max.Y() - scaleExtent(uv.Height(), rect.Height(), oldHeight)
	}

	return Vertex{
		TopLeft:        [3]float32{rect.Min.X(), rect.Min.Y(), g.Extra.Depth},
		BottomRight:    [2]float32(rect.Max),
		TexTopLeft:     [2]float32(uv.Min),
		TexBottomRight: [2]float32(uv.Max),
		Color:          g.Extra.Color,
	}
}

// scaleExtent scales a texture extent by after/before. A non-positive pixel extent on
// either side collapses the texture extent to zero.
func scaleExtent(extent, after, before float32) float32 {
	if before <= 0 || after <= 0 {
		return 0
	}
	return extent * after / before
}

// BuildVertices converts a batch of glyphs, preserving order.
//
// Parameters:
//   - glyphs: the glyphs to convert
//
// Returns:
//   - []Vertex: one vertex per glyph, in input order
func BuildVertices(glyphs []common.GlyphVertex) []Vertex {
	out := make([]Vertex, len(glyphs))
	buildRange(out, glyphs)
	return out
}

func buildRange(dst []Vertex, glyphs []common.GlyphVertex) {
	for i := range glyphs {
		dst[i] = BuildVertex(glyphs[i])
	}
}
