package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-text/engine/profiler"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopPass struct{}

func (nopPass) SetPipeline(*wgpu.RenderPipeline) {}
func (nopPass) SetVertexBuffer(uint32, *wgpu.Buffer, uint64, uint64) {}
func (nopPass) SetBindGroup(uint32, *wgpu.BindGroup, []uint32) {}
func (nopPass) Draw(uint32, uint32, uint32, uint32) {}

type fakeBackend struct {
	log      *[]string
	beginErr error
}

func (b *fakeBackend) ConfigureSurface(width, height int) {
	*b.log = append(*b.log, fmt.Sprintf("configure %dx%d", width, height))
}

func (b *fakeBackend) BeginFrame() (renderer.RenderPass, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	*b.log = append(*b.log, "begin")
	return nopPass{}, nil
}

func (b *fakeBackend) EndFrame() {
	*b.log = append(*b.log, "end")
}

func (b *fakeBackend) Present() {
	*b.log = append(*b.log, "present")
}

type fakeLayer struct {
	name       string
	log        *[]string
	drawn      int
	processErr error
}

func (l *fakeLayer) Process() error {
	*l.log = append(*l.log, "process "+l.name)
	return l.processErr
}

func (l *fakeLayer) Draw(renderer.RenderPass) {
	*l.log = append(*l.log, "draw "+l.name)
}

func (l *fakeLayer) UpdateMatrix(width, height float32) {
	*l.log = append(*l.log, fmt.Sprintf("matrix %s %gx%g", l.name, width, height))
}

func (l *fakeLayer) Drawn() int {
	return l.drawn
}

func TestRenderFrameOrder(t *testing.T) {
	var log []string
	e := newEngine(
		WithBackend(&fakeBackend{log: &log}),
		WithLayer(10, &fakeLayer{name: "hud", log: &log}),
		WithLayer(-1, &fakeLayer{name: "world", log: &log}),
	)
	e.SetRenderCallback(func(float32) { log = append(log, "callback") })

	e.renderFrame(0.016)

	assert.Equal(t, []string{
		"callback",
		"process world", "process hud",
		"begin", "draw world", "draw hud", "end", "present",
	}, log)
}

func TestRenderFrameAppliesLatestResize(t *testing.T) {
	var log []string
	e := newEngine(WithBackend(&fakeBackend{log: &log}), WithLayer(0, &fakeLayer{name: "a", log: &log}))

	e.requestResize(640, 480)
	e.requestResize(0, 300)
	e.requestResize(1024, 768)
	e.renderFrame(0)

	require.GreaterOrEqual(t, len(log), 2)
	assert.Equal(t, []string{"configure 1024x768", "matrix a 1024x768"}, log[:2])

	log = log[:0]
	e.renderFrame(0)
	assert.NotContains(t, log, "configure 1024x768")
}

func TestRenderFrameSkipsDrawWhenFrameUnavailable(t *testing.T) {
	var log []string
	e := newEngine(
		WithBackend(&fakeBackend{log: &log, beginErr: errors.New("surface lost")}),
		WithLayer(0, &fakeLayer{name: "a", log: &log, processErr: errors.New("oom")}),
	)

	e.renderFrame(0)
	assert.Equal(t, []string{"process a"}, log)
}

func TestRenderFrameReportsStats(t *testing.T) {
	var log []string
	clock := time.Unix(0, 0)
	p := profiler.NewProfiler(profiler.WithInterval(time.Second), profiler.WithClock(func() time.Time { return clock }))
	e := newEngine(
		WithProfiling(true),
		WithProfiler(p),
		WithBackend(&fakeBackend{log: &log}),
		WithLayer(0, &fakeLayer{name: "a", log: &log, drawn: 3}),
		WithLayer(1, &fakeLayer{name: "b", log: &log, drawn: 4}),
	)
	var got []profiler.Stats
	e.SetStatsCallback(func(s profiler.Stats) { got = append(got, s) })

	e.renderFrame(0)
	assert.Empty(t, got)

	clock = clock.Add(time.Second)
	e.renderFrame(0)
	require.Len(t, got, 1)
	assert.InDelta(t, 7, got[0].GlyphsPerFrame, 1e-9)
}

func TestLayerRegistry(t *testing.T) {
	e := newEngine()
	l := &fakeLayer{name: "a", log: new([]string)}

	e.AddLayer(3, l)
	assert.Same(t, l, e.Layer(3))
	e.RemoveLayer(3)
	assert.Nil(t, e.Layer(3))
}

func TestTickAndFrameRates(t *testing.T) {
	e := newEngine(WithTickRate(0), WithRenderFrameLimit(120))
	assert.Equal(t, time.Second/60, e.engineTickRate)
	assert.Equal(t, time.Duration(float64(time.Second)/120), e.renderFrameLimit)

	e.SetTickRate(30)
	assert.Equal(t, time.Duration(float64(time.Second)/30), e.engineTickRate)

	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}

func TestQuitIsIdempotent(t *testing.T) {
	e := newEngine()
	e.Quit()
	e.Quit()

	select {
	case <-e.quitChannel:
	default:
		t.Fatal("quit channel not closed")
	}
}
