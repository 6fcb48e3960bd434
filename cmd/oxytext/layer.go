package main

import (
	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/Carmen-Shannon/oxy-text/engine/layout"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer"
)

const (
	margin = 20
	// scrollSpeed is the marquee speed in pixels per second.
	scrollSpeed = 120
)

// glyphBrush is the part of *text.Brush the demo layer draws with.
type glyphBrush interface {
	Queue(glyphs ...common.GlyphVertex)
	Process() error
	Draw(pass renderer.RenderPass)
	UpdateMatrix(width, height float32)
	Drawn() int
}

// textLayer lays out the demo text each frame: the sample as a static block, and the same sample
// scrolling through a clip box below it.
type textLayer struct {
	brush  glyphBrush
	font   *layout.Font
	sample string

	width, height float32
	scroll        float32
	paused        bool
	pauseToggle   chan struct{}

	glyphs []common.GlyphVertex
}

func newTextLayer(brush glyphBrush, font *layout.Font, sample string, width, height int) *textLayer {
	return &textLayer{
		brush:       brush,
		font:        font,
		sample:      sample,
		width:       float32(width),
		height:      float32(height),
		pauseToggle: make(chan struct{}, 1),
	}
}

// TogglePause pauses or resumes the marquee. It may be called from any goroutine.
func (l *textLayer) TogglePause() {
	select {
	case l.pauseToggle <- struct{}{}:
	default:
	}
}

// Advance moves the marquee by dt seconds.
func (l *textLayer) Advance(dt float32) {
	select {
	case <-l.pauseToggle:
		l.paused = !l.paused
	default:
	}
	if l.paused {
		return
	}

	l.scroll += dt * scrollSpeed
	w, _ := l.font.Measure(l.sample, 1)
	if span := l.marqueeBox().Width() + w; span > 0 && l.scroll > span {
		l.scroll -= span
	}
}

// marqueeBox is the clip rectangle of the scrolling line.
func (l *textLayer) marqueeBox() common.Rect {
	_, h := l.font.Measure(l.sample, 1)
	top := margin*2 + h
	return common.NewRect(margin*4, top, max(l.width-margin*4, margin*4), top+l.font.LineHeight())
}

func (l *textLayer) Process() error {
	viewport := common.NewRect(0, 0, l.width, l.height)
	l.glyphs = l.font.AppendLayout(l.glyphs[:0], l.sample,
		layout.WithOrigin(margin, margin),
		layout.WithBounds(viewport),
		layout.WithDepth(0.5),
	)

	box := l.marqueeBox()
	l.glyphs = l.font.AppendLayout(l.glyphs, l.sample,
		layout.WithOrigin(box.Max.X()-l.scroll, box.Min.Y()),
		layout.WithBounds(box),
		layout.WithDepth(0.25),
		layout.WithColor([4]float32{1, 0.8, 0.2, 1}),
	)

	l.brush.Queue(l.glyphs...)
	return l.brush.Process()
}

func (l *textLayer) Draw(pass renderer.RenderPass) {
	l.brush.Draw(pass)
}

func (l *textLayer) UpdateMatrix(width, height float32) {
	l.width, l.height = width, height
	l.brush.UpdateMatrix(width, height)
}

func (l *textLayer) Drawn() int {
	return l.brush.Drawn()
}
