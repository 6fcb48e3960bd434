package layout

import (
	"math"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Style holds the placement and appearance applied to every glyph of a laid out string.
type Style struct {
	// Origin is the top-left corner of the first line in pixels.
	Origin mgl32.Vec2
	// Bounds is the clip rectangle handed to the vertex builder with each glyph.
	Bounds common.Rect
	// Scale multiplies every font metric. Zero is treated as 1.
	Scale float32
	Depth float32
	Color [4]float32
}

// LayoutOption is a functional option used to configure a Style.
type LayoutOption func(*Style)

// WithOrigin sets the top-left corner of the first line.
func WithOrigin(x, y float32) LayoutOption {
	return func(s *Style) {
		s.Origin = mgl32.Vec2{x, y}
	}
}

// WithBounds sets the clip rectangle of every glyph.
func WithBounds(bounds common.Rect) LayoutOption {
	return func(s *Style) {
		s.Bounds = bounds
	}
}

// WithScale multiplies the font's pixel metrics by scale.
func WithScale(scale float32) LayoutOption {
	return func(s *Style) {
		if scale > 0 {
			s.Scale = scale
		}
	}
}

// WithDepth sets the z value written into every glyph quad.
func WithDepth(depth float32) LayoutOption {
	return func(s *Style) {
		s.Depth = depth
	}
}

// WithColor sets the RGBA color of every glyph.
func WithColor(color [4]float32) LayoutOption {
	return func(s *Style) {
		s.Color = color
	}
}

func defaultStyle() Style {
	return Style{
		Bounds: common.NewRect(-math.MaxFloat32, -math.MaxFloat32, math.MaxFloat32, math.MaxFloat32),
		Scale:  1,
		Color:  [4]float32{1, 1, 1, 1},
	}
}

// Layout positions every rune of text and returns one GlyphVertex per visible glyph.
// Newlines start a new line at the origin's x. Runes missing from the font fall back to '?',
// and are skipped if that is missing too. Glyphs with no area advance the pen but produce no vertex.
//
// Parameters:
//   - text: the string to lay out
//   - opts: a variadic list of LayoutOption functions
//
// Returns:
//   - []common.GlyphVertex: the positioned glyphs in reading order
func (f *Font) Layout(text string, opts ...LayoutOption) []common.GlyphVertex {
	return f.AppendLayout(nil, text, opts...)
}

// AppendLayout is Layout appending to dst, so callers can reuse a slice across frames.
func (f *Font) AppendLayout(dst []common.GlyphVertex, text string, opts ...LayoutOption) []common.GlyphVertex {
	s := defaultStyle()
	for _, opt := range opts {
		opt(&s)
	}

	penX, penY := s.Origin.X(), s.Origin.Y()
	var prev rune = -1
	for _, r := range text {
		if r == '\n' {
			penX = s.Origin.X()
			penY += f.lineHeight * s.Scale
			prev = -1
			continue
		}
		drawn, g, ok := f.lookup(r)
		if !ok {
			prev = -1
			continue
		}
		if prev >= 0 {
			penX += f.kerning[kernPair{prev, drawn}] * s.Scale
		}
		prev = drawn

		if g.width > 0 && g.height > 0 {
			x0 := penX + g.xOffset*s.Scale
			y0 := penY + g.yOffset*s.Scale
			dst = append(dst, common.GlyphVertex{
				PixelCoords: common.NewRect(x0, y0, x0+g.width*s.Scale, y0+g.height*s.Scale),
				Bounds:      s.Bounds,
				TexCoords: common.NewRect(
					g.x/f.scaleW, g.y/f.scaleH,
					(g.x+g.width)/f.scaleW, (g.y+g.height)/f.scaleH,
				),
				Extra: common.GlyphExtra{Depth: s.Depth, Color: s.Color},
			})
		}
		penX += g.xAdvance * s.Scale
	}
	return dst
}

// Measure returns the width of the widest line and the total height of text in pixels at the given scale.
func (f *Font) Measure(text string, scale float32) (float32, float32) {
	if scale <= 0 {
		scale = 1
	}
	var width, line float32
	lines := 1
	var prev rune = -1
	for _, r := range text {
		if r == '\n' {
			width = max(width, line)
			line = 0
			lines++
			prev = -1
			continue
		}
		drawn, g, ok := f.lookup(r)
		if !ok {
			prev = -1
			continue
		}
		if prev >= 0 {
			line += f.kerning[kernPair{prev, drawn}] * scale
		}
		prev = drawn
		line += g.xAdvance * scale
	}
	return max(width, line), float32(lines) * f.lineHeight * scale
}

// lookup returns the rune actually drawn for r and its glyph, falling back to '?' for runes the font lacks.
func (f *Font) lookup(r rune) (rune, glyph, bool) {
	if g, ok := f.glyphs[r]; ok {
		return r, g, true
	}
	g, ok := f.glyphs['?']
	return '?', g, ok
}
