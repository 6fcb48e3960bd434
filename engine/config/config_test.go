package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
[atlas]
width = 1024

[text]
font = "fonts/mono.fnt"
`))
	require.NoError(t, err)

	assert.Equal(t, uint32(1024), c.Atlas.Width)
	assert.Equal(t, uint32(256), c.Atlas.Height)
	assert.Equal(t, "fonts/mono.fnt", c.Text.Font)
	assert.Equal(t, Default().Window, c.Window)
	assert.Equal(t, "vsync", c.Renderer.PresentMode)
	assert.Equal(t, [4]float64{0.1, 0.1, 0.1, 1.0}, c.Renderer.ClearColor)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	_, err := Parse([]byte(`
[renderer]
present_mode = "mailbox"
`))
	assert.ErrorIs(t, err, ErrInvalidPresentMode)

	_, err = Parse([]byte(`
[renderer]
msaa = 8
`))
	assert.ErrorIs(t, err, ErrInvalidMSAA)

	_, err = Parse([]byte(`
[window]
width = -5
`))
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = Parse([]byte(`[window`))
	assert.Error(t, err)
}

func TestLoadRoundTripsThroughFile(t *testing.T) {
	want := Default()
	want.Atlas.RowAlignment = 256
	want.Text.Workers = 2

	data, err := want.Encode()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "oxytext.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRendererFlags(t *testing.T) {
	c, err := Parse([]byte(`
[renderer]
depth = true
profile = true
msaa = 4
`))
	require.NoError(t, err)

	assert.True(t, c.Renderer.Depth)
	assert.True(t, c.Renderer.Profile)
	assert.Equal(t, uint32(4), c.Renderer.MSAA)
	assert.False(t, Default().Renderer.Depth)
}
