package engine

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-text/engine/logging"
	"github.com/Carmen-Shannon/oxy-text/engine/profiler"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer"
	"github.com/Carmen-Shannon/oxy-text/engine/text"
	"github.com/Carmen-Shannon/oxy-text/engine/window"
)

// FrameBackend is the part of a surface backend the engine drives each frame.
// renderer.SurfaceBackend satisfies it.
type FrameBackend interface {
	ConfigureSurface(width, height int)
	BeginFrame() (renderer.RenderPass, error)
	EndFrame()
	Present()
}

// Layer is a set of glyphs drawn in one render pass. *text.Brush satisfies it.
type Layer interface {
	// Process uploads whatever was queued since the last frame.
	Process() error
	// Draw records the layer's draw calls into pass.
	Draw(pass renderer.RenderPass)
	// UpdateMatrix recomputes the projection for a new viewport size.
	UpdateMatrix(width, height float32)
	// Drawn returns the number of glyph instances the last Process uploaded.
	Drawn() int
}

var _ Layer = &text.Brush{}

// engine implements the Engine interface.
// Coordinates the tick and render goroutines with the window's message loop.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window  window.Window
	backend FrameBackend

	profiler         *profiler.Profiler
	profilingEnabled bool
	statsCallback    func(profiler.Stats)

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	layersMu sync.RWMutex
	layers   map[int]Layer

	// pendingSize holds a resize reported by the window, packed as width<<32 | height, until the render loop applies it.
	pendingSize atomic.Uint64

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point of a text rendering host.
// It runs the tick loop, the render loop and the window's message loop.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables frame statistics.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// SetStatsCallback registers the function receiving the profiler's statistics once per interval.
	SetStatsCallback(callback func(profiler.Stats))

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called at the start of each render frame, before the
	// layers are processed. Queue glyphs and update atlases here.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	SetRenderFrameLimit(fps float64)

	// AddLayer registers a layer at the given z-index key.
	// Layers are drawn in ascending key order in a single render pass.
	//
	// Parameters:
	//   - key: the z-index determining draw order (lower draws first)
	//   - l: the Layer to register
	AddLayer(key int, l Layer)

	// RemoveLayer removes the layer at the given z-index key.
	RemoveLayer(key int)

	// Layer returns the layer registered at key, or nil.
	Layer(key int) Layer

	// Run starts the engine and blocks until the window closes.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	return newEngine(options...)
}

func newEngine(options ...EngineBuilderOption) *engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		layers:          make(map[int]Layer),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.requestResize)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick and render goroutines.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// requestResize records a window resize for the render loop. Resizes arrive on the window's thread
// while the render loop owns the surface, so only the latest size is kept.
func (e *engine) requestResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.pendingSize.Store(uint64(uint32(width))<<32 | uint64(uint32(height)))
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logging.Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			e.renderFrame(dt)

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// renderFrame runs one frame: apply a pending resize, run the render callback, upload every layer,
// then draw them in ascending key order into a single render pass.
func (e *engine) renderFrame(dt float32) {
	if size := e.pendingSize.Swap(0); size != 0 && e.backend != nil {
		width, height := int(size>>32), int(uint32(size))
		e.backend.ConfigureSurface(width, height)
		for _, l := range e.sortedLayers() {
			l.UpdateMatrix(float32(width), float32(height))
		}
		logging.Debug("surface resized", "width", width, "height", height)
	}

	if e.renderCallback != nil {
		e.renderCallback(dt)
	}

	layers := e.sortedLayers()
	glyphs := 0
	for _, l := range layers {
		if err := l.Process(); err != nil {
			logging.Warn("layer upload failed, drawing previous frame", "err", err)
		}
		glyphs += l.Drawn()
	}

	if e.backend != nil {
		if pass, err := e.backend.BeginFrame(); err == nil {
			for _, l := range layers {
				l.Draw(pass)
			}
			e.backend.EndFrame()
			e.backend.Present()
		}
	}

	if e.profilingEnabled && e.profiler != nil {
		if stats, ok := e.profiler.Tick(glyphs); ok && e.statsCallback != nil {
			e.statsCallback(stats)
		}
	}
}

func (e *engine) sortedLayers() []Layer {
	e.layersMu.RLock()
	defer e.layersMu.RUnlock()

	keys := make([]int, 0, len(e.layers))
	for k := range e.layers {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]Layer, len(keys))
	for i, k := range keys {
		out[i] = e.layers[k]
	}
	return out
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetStatsCallback(callback func(profiler.Stats)) {
	e.statsCallback = callback
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running {
		e.engineTickRate = newRate
		return
	}
	// replace a pending update that the loop has not picked up yet
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddLayer(key int, l Layer) {
	e.layersMu.Lock()
	defer e.layersMu.Unlock()
	e.layers[key] = l
}

func (e *engine) RemoveLayer(key int) {
	e.layersMu.Lock()
	defer e.layersMu.Unlock()
	delete(e.layers, key)
}

func (e *engine) Layer(key int) Layer {
	e.layersMu.RLock()
	defer e.layersMu.RUnlock()
	return e.layers[key]
}
