package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signpad/internal/stroke"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signpad.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	w, h := cfg.PixelSize()
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, h)
	assert.Equal(t, stroke.DefaultPen(), cfg.Stroke())
	assert.Equal(t, 0.3, cfg.Pen.Smoothing)
	r, g, b, a := cfg.BackgroundColor().RGBA()
	assert.Equal(t, [4]uint32{0xffff, 0xffff, 0xffff, 0xffff}, [4]uint32{r, g, b, a})
	r, g, b, a = cfg.InkColor().RGBA()
	assert.Equal(t, [4]uint32{0, 0, 0, 0xffff}, [4]uint32{r, g, b, a})
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[surface]
pixel_ratio = 2.0
ink = "#1a237e"

[pen]
jitter = 0.25
seed = 99

[remote]
listen = ":9000"
advertise = false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 320, cfg.Surface.Width, "unset keys keep defaults")
	w, h := cfg.PixelSize()
	assert.Equal(t, 640, w)
	assert.Equal(t, 400, h)

	pen := cfg.Stroke()
	assert.Equal(t, 2.0, pen.MinWidth)
	assert.Equal(t, 8.0, pen.MaxWidth)
	assert.Equal(t, 0.5, pen.Jitter)
	assert.Equal(t, uint64(99), cfg.Pen.Seed)

	assert.Equal(t, ":9000", cfg.Remote.Listen)
	assert.False(t, cfg.Remote.Advertise)
	ink := color.NRGBAModel.Convert(cfg.InkColor()).(color.NRGBA)
	assert.InDelta(t, 0x1a, int(ink.R), 1)
	assert.InDelta(t, 0x23, int(ink.G), 1)
	assert.InDelta(t, 0x7e, int(ink.B), 1)
	assert.Equal(t, uint8(255), ink.A)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "[pen]\nwidht = 3\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Surface.Width = 0 }},
		{"negative height", func(c *Config) { c.Surface.Height = -5 }},
		{"zero ratio", func(c *Config) { c.Surface.PixelRatio = 0 }},
		{"min above max", func(c *Config) { c.Pen.MinWidth = 5 }},
		{"zero normalizer", func(c *Config) { c.Pen.VelocityNormalizer = 0 }},
		{"negative jitter", func(c *Config) { c.Pen.Jitter = -0.1 }},
		{"smoothing above one", func(c *Config) { c.Pen.Smoothing = 1.5 }},
		{"zero spacing", func(c *Config) { c.Pen.Spacing = 0 }},
		{"bad ink", func(c *Config) { c.Surface.Ink = "black" }},
		{"bad background", func(c *Config) { c.Surface.Background = "#12345" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
