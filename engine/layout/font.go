// package layout turns strings into positioned glyphs using an AngelCode BMFont and exposes the font's
// page image as single-channel atlas pixels.
package layout

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-text/engine/logging"
	"github.com/fzipp/bmfont"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
)

// ErrNoPage is returned when a font descriptor does not name a page with id 0.
var ErrNoPage = errors.New("layout: font has no page 0")

// glyph holds the metrics of a single character in pixels.
type glyph struct {
	x, y, width, height float32
	xOffset, yOffset    float32
	xAdvance            float32
}

type kernPair struct {
	first, second rune
}

// Font is a loaded bitmap font: glyph metrics, kerning, and page 0 as a grayscale atlas.
type Font struct {
	face       string
	size       int
	lineHeight float32
	base       float32
	scaleW     float32
	scaleH     float32
	glyphs     map[rune]glyph
	kerning    map[kernPair]float32
	page       *image.Gray
	pagePath   string
}

// Load reads a BMFont descriptor and decodes its first page into a grayscale atlas.
//
// Parameters:
//   - path: the .fnt descriptor path. Page files are resolved relative to its directory
//
// Returns:
//   - *Font: the loaded font
//   - error: an error if the descriptor or its page cannot be read
func Load(path string) (*Font, error) {
	bf, err := bmfont.Load(path)
	if err != nil {
		return nil, fmt.Errorf("layout: failed to load font %q: %w", path, err)
	}
	d := bf.Descriptor

	f := &Font{
		face:       d.Info.Face,
		size:       int(d.Info.Size),
		lineHeight: float32(d.Common.LineHeight),
		base:       float32(d.Common.Base),
		scaleW:     float32(d.Common.ScaleW),
		scaleH:     float32(d.Common.ScaleH),
		glyphs:     make(map[rune]glyph, len(d.Chars)),
		kerning:    make(map[kernPair]float32, len(d.Kerning)),
	}
	for _, c := range d.Chars {
		if int(c.Page) != 0 {
			continue
		}
		f.glyphs[rune(c.ID)] = glyph{
			x:        float32(c.X),
			y:        float32(c.Y),
			width:    float32(c.Width),
			height:   float32(c.Height),
			xOffset:  float32(c.XOffset),
			yOffset:  float32(c.YOffset),
			xAdvance: float32(c.XAdvance),
		}
	}
	for p, k := range d.Kerning {
		f.kerning[kernPair{rune(p.First), rune(p.Second)}] = float32(k.Amount)
	}

	for _, p := range d.Pages {
		if int(p.ID) == 0 {
			f.pagePath = filepath.Join(filepath.Dir(path), p.File)
		}
	}
	if f.pagePath == "" {
		return nil, ErrNoPage
	}
	if err := f.ReloadPage(); err != nil {
		return nil, err
	}

	logging.Debug("font loaded", "face", f.face, "glyphs", len(f.glyphs), "page", f.pagePath)
	return f, nil
}

// ReloadPage decodes the page image again, picking up changes made on disk since the font was loaded.
//
// Returns:
//   - error: an error if the page cannot be opened or decoded
func (f *Font) ReloadPage() error {
	file, err := os.Open(f.pagePath)
	if err != nil {
		return fmt.Errorf("layout: failed to open page %q: %w", f.pagePath, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return fmt.Errorf("layout: failed to decode page %q: %w", f.pagePath, err)
	}
	f.page = toGray(img)
	return nil
}

// toGray converts a page image to one coverage byte per texel. Images with an alpha channel use it as
// coverage, opaque images use their luminance.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		draw.Copy(gray, image.Point{}, img, b, draw.Src, nil)
		return gray
	}

	alpha := image.NewAlpha(gray.Rect)
	draw.Copy(alpha, image.Point{}, img, b, draw.Src, nil)
	for y := 0; y < b.Dy(); y++ {
		copy(gray.Pix[y*gray.Stride:y*gray.Stride+b.Dx()], alpha.Pix[y*alpha.Stride:y*alpha.Stride+b.Dx()])
	}
	return gray
}

// Face returns the font's face name.
func (f *Font) Face() string {
	return f.face
}

// Size returns the font's nominal size in pixels.
func (f *Font) Size() int {
	return f.size
}

// LineHeight returns the distance in pixels between consecutive baselines.
func (f *Font) LineHeight() float32 {
	return f.lineHeight
}

// Base returns the distance in pixels from the top of a line to its baseline.
func (f *Font) Base() float32 {
	return f.base
}

// PagePath returns the resolved path of the page image backing the atlas.
func (f *Font) PagePath() string {
	return f.pagePath
}

// AtlasPixels returns the page image as tightly packed rows of one byte per texel.
//
// Returns:
//   - []byte: the pixel data, row-major
//   - uint32: the atlas width in texels
//   - uint32: the atlas height in texels
func (f *Font) AtlasPixels() ([]byte, uint32, uint32) {
	if f.page == nil {
		return nil, 0, 0
	}
	w, h := f.page.Rect.Dx(), f.page.Rect.Dy()
	if f.page.Stride == w {
		return f.page.Pix[:w*h], uint32(w), uint32(h)
	}
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(out[y*w:(y+1)*w], f.page.Pix[y*f.page.Stride:y*f.page.Stride+w])
	}
	return out, uint32(w), uint32(h)
}
