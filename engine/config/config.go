// package config loads the TOML configuration for the text renderer and its demo host.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-text/common"
	"github.com/pelletier/go-toml/v2"
)

// Config is the root configuration document.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Atlas    AtlasConfig    `toml:"atlas"`
	Renderer RendererConfig `toml:"renderer"`
	Text     TextConfig     `toml:"text"`
	Log      LogConfig      `toml:"log"`
}

// WindowConfig configures the host window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// AtlasConfig configures the glyph atlas texture.
type AtlasConfig struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	// RowAlignment pads atlas upload rows to a multiple of this many bytes. Zero uploads tightly packed rows.
	RowAlignment uint32 `toml:"row_alignment"`
}

// RendererConfig configures the GPU surface.
type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode"`
	// MSAA is the sample count, 1 or 4.
	MSAA       uint32     `toml:"msaa"`
	ClearColor [4]float64 `toml:"clear_color"`
	// Depth attaches a depth buffer and depth tests glyphs by their depth value.
	Depth bool `toml:"depth"`
	// Profile logs frame statistics and shows the frame rate in the window title.
	Profile bool `toml:"profile"`
}

// TextConfig configures vertex building and the demo text.
type TextConfig struct {
	// Workers is the number of goroutines used to build large glyph batches.
	Workers int `toml:"workers"`
	// ParallelThreshold is the batch size at or above which building is spread across workers.
	ParallelThreshold int `toml:"parallel_threshold"`
	// Font is the path to an AngelCode BMFont descriptor.
	Font string `toml:"font"`
	// Sample is the text rendered by the demo.
	Sample string `toml:"sample"`
}

// LogConfig configures the shared logger.
type LogConfig struct {
	Level string `toml:"level"`
}

var (
	// ErrInvalidWindow is returned when the window dimensions are not positive.
	ErrInvalidWindow = errors.New("config: window width and height must be positive")
	// ErrInvalidAtlas is returned when the atlas dimensions are zero.
	ErrInvalidAtlas = errors.New("config: atlas width and height must be non-zero")
	// ErrInvalidPresentMode is returned for an unknown present mode name.
	ErrInvalidPresentMode = errors.New("config: present_mode must be \"vsync\" or \"uncapped\"")
	// ErrInvalidMSAA is returned for an unsupported sample count.
	ErrInvalidMSAA = errors.New("config: msaa must be 1 or 4")
)

// Default returns the configuration used when no file is supplied.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy-text",
			Width:  1280,
			Height: 720,
		},
		Atlas: AtlasConfig{
			Width:  256,
			Height: 256,
		},
		Renderer: RendererConfig{
			PresentMode: "vsync",
			MSAA:        1,
			ClearColor:  [4]float64{0.1, 0.1, 0.1, 1.0},
		},
		Text: TextConfig{
			Workers:           4,
			ParallelThreshold: 4096,
			Sample:            "The quick brown fox jumps over the lazy dog",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads and parses the TOML file at path. Missing keys take their default values.
//
// Parameters:
//   - path: the TOML file to read
//
// Returns:
//   - Config: the parsed configuration
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a TOML document, fills unset keys from Default and validates the result.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the parsed configuration
//   - error: an error if decoding or validation fails
func Parse(data []byte) (Config, error) {
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: failed to decode: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Encode serializes the configuration back to TOML.
//
// Returns:
//   - []byte: the TOML document
//   - error: an error if encoding fails
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate checks the configuration for values the renderer cannot use.
//
// Returns:
//   - error: the first violation found, or nil
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return ErrInvalidWindow
	}
	if c.Atlas.Width == 0 || c.Atlas.Height == 0 {
		return ErrInvalidAtlas
	}
	switch c.Renderer.PresentMode {
	case "vsync", "uncapped":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidPresentMode, c.Renderer.PresentMode)
	}
	switch c.Renderer.MSAA {
	case 1, 4:
	default:
		return fmt.Errorf("%w: got %d", ErrInvalidMSAA, c.Renderer.MSAA)
	}
	return nil
}

func (c *Config) applyDefaults() {
	d := Default()
	c.Window.Title = common.Coalesce(c.Window.Title, d.Window.Title)
	c.Window.Width = common.Coalesce(c.Window.Width, d.Window.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, d.Window.Height)
	c.Atlas.Width = common.Coalesce(c.Atlas.Width, d.Atlas.Width)
	c.Atlas.Height = common.Coalesce(c.Atlas.Height, d.Atlas.Height)
	c.Renderer.PresentMode = common.Coalesce(c.Renderer.PresentMode, d.Renderer.PresentMode)
	c.Renderer.MSAA = common.Coalesce(c.Renderer.MSAA, d.Renderer.MSAA)
	c.Renderer.ClearColor = common.Coalesce(c.Renderer.ClearColor, d.Renderer.ClearColor)
	c.Text.Workers = common.Coalesce(c.Text.Workers, d.Text.Workers)
	c.Text.ParallelThreshold = common.Coalesce(c.Text.ParallelThreshold, d.Text.ParallelThreshold)
	c.Text.Sample = common.Coalesce(c.Text.Sample, d.Text.Sample)
	c.Log.Level = common.Coalesce(c.Log.Level, d.Log.Level)
}
