// Package config loads signpad settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/gg"

	"signpad/internal/kinematics"
	"signpad/internal/stroke"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full settings tree.
type Config struct {
	Surface Surface `toml:"surface"`
	Pen     Pen     `toml:"pen"`
	Remote  Remote  `toml:"remote"`
}

// Surface sizes the raster. Width and Height are logical units; the pixel
// buffer is PixelRatio times larger.
type Surface struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	PixelRatio float64 `toml:"pixel_ratio"`
	Background string  `toml:"background"`
	Ink        string  `toml:"ink"`
}

// Pen is the width model in logical units. MinWidth..VelocityNormalizer and
// Jitter are tuning values, not derived constants.
type Pen struct {
	MinWidth           float64 `toml:"min_width"`
	MaxWidth           float64 `toml:"max_width"`
	VelocityNormalizer float64 `toml:"velocity_normalizer"`
	Jitter             float64 `toml:"jitter"`
	Smoothing          float64 `toml:"smoothing"`
	MinDistance        float64 `toml:"min_distance"`
	Spacing            float64 `toml:"spacing"`
	// Seed fixes the jitter sequence when non-zero.
	Seed uint64 `toml:"seed"`
}

// Remote configures the remote signing pad server.
type Remote struct {
	Listen    string `toml:"listen"`
	Advertise bool   `toml:"advertise"`
	Service   string `toml:"service"`
}

// Default returns the stock configuration: a 320×200 white surface with
// black ink and the default pen.
func Default() Config {
	pen := stroke.DefaultPen()
	return Config{
		Surface: Surface{
			Width:      320,
			Height:     200,
			PixelRatio: 1,
			Background: "#ffffff",
			Ink:        "#000000",
		},
		Pen: Pen{
			MinWidth:           pen.MinWidth,
			MaxWidth:           pen.MaxWidth,
			VelocityNormalizer: pen.VelocityNormalizer,
			Jitter:             pen.Jitter,
			Smoothing:          kinematics.DefaultSmoothing,
			MinDistance:        pen.MinDistance,
			Spacing:            pen.Spacing,
		},
		Remote: Remote{
			Listen:    ":8888",
			Advertise: true,
			Service:   "_signpad._tcp",
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown keys %v", ErrInvalid, undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and color syntax.
func (c Config) Validate() error {
	s, p := c.Surface, c.Pen
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: surface %dx%d", ErrInvalid, s.Width, s.Height)
	case s.PixelRatio <= 0 || math.IsNaN(s.PixelRatio):
		return fmt.Errorf("%w: pixel_ratio %v", ErrInvalid, s.PixelRatio)
	case p.MinWidth <= 0 || p.MaxWidth < p.MinWidth:
		return fmt.Errorf("%w: pen width %v..%v", ErrInvalid, p.MinWidth, p.MaxWidth)
	case p.VelocityNormalizer <= 0:
		return fmt.Errorf("%w: velocity_normalizer %v", ErrInvalid, p.VelocityNormalizer)
	case p.Jitter < 0:
		return fmt.Errorf("%w: jitter %v", ErrInvalid, p.Jitter)
	case p.Smoothing <= 0 || p.Smoothing > 1:
		return fmt.Errorf("%w: smoothing %v", ErrInvalid, p.Smoothing)
	case p.MinDistance < 0 || p.Spacing <= 0:
		return fmt.Errorf("%w: min_distance %v spacing %v", ErrInvalid, p.MinDistance, p.Spacing)
	}
	for name, v := range map[string]string{"background": s.Background, "ink": s.Ink} {
		if !validHex(v) {
			return fmt.Errorf("%w: %s color %q", ErrInvalid, name, v)
		}
	}
	return nil
}

// PixelSize returns the raster dimensions after applying the pixel ratio.
func (c Config) PixelSize() (int, int) {
	r := c.Surface.PixelRatio
	return int(math.Round(float64(c.Surface.Width) * r)), int(math.Round(float64(c.Surface.Height) * r))
}

// Stroke returns the pen in raster pixels.
func (c Config) Stroke() stroke.Pen {
	p := c.Pen
	return stroke.Pen{
		MinWidth:           p.MinWidth,
		MaxWidth:           p.MaxWidth,
		VelocityNormalizer: p.VelocityNormalizer,
		Jitter:             p.Jitter,
		MinDistance:        p.MinDistance,
		Spacing:            p.Spacing,
	}.Scaled(c.Surface.PixelRatio)
}

// BackgroundColor parses Surface.Background.
func (c Config) BackgroundColor() color.Color { return gg.Hex(c.Surface.Background).Color() }

// InkColor parses Surface.Ink.
func (c Config) InkColor() color.Color { return gg.Hex(c.Surface.Ink).Color() }

func validHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
