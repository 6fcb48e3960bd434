// Command oxytext opens a window and draws BMFont text with the instanced glyph renderer.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/Carmen-Shannon/oxy-text/engine"
	"github.com/Carmen-Shannon/oxy-text/engine/config"
	"github.com/Carmen-Shannon/oxy-text/engine/layout"
	"github.com/Carmen-Shannon/oxy-text/engine/logging"
	"github.com/Carmen-Shannon/oxy-text/engine/profiler"
	"github.com/Carmen-Shannon/oxy-text/engine/renderer"
	"github.com/Carmen-Shannon/oxy-text/engine/text"
	"github.com/Carmen-Shannon/oxy-text/engine/window"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		fontPath   = flag.String("font", "", "BMFont descriptor, overrides the configured font")
		sample     = flag.String("text", "", "text to draw, overrides the configured sample")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logging.Error("failed to load config", "err", err)
			os.Exit(1)
		}
	}
	cfg.Text.Font = common.Coalesce(*fontPath, cfg.Text.Font)
	cfg.Text.Sample = common.Coalesce(*sample, cfg.Text.Sample)

	if err := logging.SetLevel(cfg.Log.Level); err != nil {
		logging.Warn("unknown log level, keeping info", "level", cfg.Log.Level)
	}
	if err := run(cfg); err != nil {
		logging.Error("oxytext failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if cfg.Text.Font == "" {
		return fmt.Errorf("no font configured, pass -font or set [text] font")
	}
	font, err := layout.Load(cfg.Text.Font)
	if err != nil {
		return err
	}

	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
	)
	defer win.Close()

	backend := renderer.NewWGPUBackend(
		win.SurfaceDescriptor(),
		renderer.WithPresentMode(renderer.ParsePresentMode(cfg.Renderer.PresentMode)),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithDepthBuffer(cfg.Renderer.Depth),
		renderer.WithClearColor(cfg.Renderer.ClearColor),
	)
	defer backend.Destroy()
	backend.ConfigureSurface(win.Width(), win.Height())

	builder := text.NewBatchBuilder(
		text.WithWorkers(cfg.Text.Workers),
		text.WithParallelThreshold(cfg.Text.ParallelThreshold),
	)
	defer builder.Release()

	opts := []text.BrushOption{
		text.WithLabel("oxytext"),
		text.WithAtlasSize(cfg.Atlas.Width, cfg.Atlas.Height),
		text.WithViewport(float32(win.Width()), float32(win.Height())),
		text.WithAtlasRowAlignment(cfg.Atlas.RowAlignment),
		text.WithBuilder(builder),
	}
	if backend.DepthEnabled() {
		opts = append(opts, text.WithDepthStencil(text.DepthStencilState(renderer.DepthFormat)))
	}
	brush, err := text.NewBrush(backend, opts...)
	if err != nil {
		return err
	}
	defer brush.Release()

	if err := uploadAtlas(brush, font); err != nil {
		return err
	}

	scene := newTextLayer(brush, font, cfg.Text.Sample, win.Width(), win.Height())

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithBackend(backend),
		engine.WithLayer(0, scene),
		engine.WithProfiling(cfg.Renderer.Profile),
	)

	var reloads <-chan string
	if watcher, err := layout.Watch(font.PagePath()); err != nil {
		logging.Warn("atlas hot reload disabled", "err", err)
	} else {
		defer watcher.Close()
		reloads = watcher.Changes()
	}

	eng.SetRenderCallback(func(dt float32) {
		select {
		case path := <-reloads:
			if err := font.ReloadPage(); err != nil {
				logging.Warn("failed to reload atlas page", "path", path, "err", err)
				break
			}
			if err := uploadAtlas(brush, font); err != nil {
				logging.Warn("failed to upload atlas page", "path", path, "err", err)
				break
			}
			logging.Info("atlas reloaded", "path", path)
		default:
		}
		scene.Advance(dt)
	})

	// the title can only be changed from the window's thread
	var title atomic.Pointer[string]
	eng.SetStatsCallback(func(s profiler.Stats) {
		t := fmt.Sprintf("%s | %.0f fps | %.0f glyphs", cfg.Window.Title, s.FPS, s.GlyphsPerFrame)
		title.Store(&t)
	})
	win.SetUpdateCallback(func() {
		if t := title.Swap(nil); t != nil {
			win.SetTitle(*t)
		}
	})
	win.SetKeyDownCallback(func(keyCode uint32) {
		if glfw.Key(keyCode) == glfw.KeySpace {
			scene.TogglePause()
		}
	})

	eng.Run()
	return nil
}

// uploadAtlas copies the font's page into the brush atlas, resizing the atlas first if the page size changed.
func uploadAtlas(brush *text.Brush, font *layout.Font) error {
	pixels, width, height := font.AtlasPixels()
	if w, h := brush.Atlas().Size(); w != width || h != height {
		if err := brush.ResizeTexture(width, height); err != nil {
			return err
		}
	}
	brush.UpdateTexture(common.Region{Width: width, Height: height}, pixels)
	return nil
}
