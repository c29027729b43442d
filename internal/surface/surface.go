// Package surface owns the signature raster: background fill, preloading a
// previously stored signature, ink stamps, clearing and PNG export.
//
// A Surface is owned by exactly one capture session and is not safe for
// concurrent use.
package surface

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"signpad/internal/logging"
)

// ErrInvalidSize is returned by New for non-positive dimensions.
var ErrInvalidSize = errors.New("surface: width and height must be positive")

// Surface is a fixed-size pixel buffer drawn with a software rasterizer.
type Surface struct {
	width      int
	height     int
	dc         *gg.Context
	background gg.RGBA
	ink        color.Color
}

// Option configures a Surface.
type Option func(*Surface)

// WithBackground sets the fill used by New and Clear. Default opaque white.
func WithBackground(c color.Color) Option {
	return func(s *Surface) { s.background = gg.FromColor(c) }
}

// WithInk sets the stamp color. Default opaque black.
func WithInk(c color.Color) Option {
	return func(s *Surface) { s.ink = c }
}

// New allocates a width×height surface filled with the background color.
func New(width, height int, opts ...Option) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	s := &Surface{
		width:      width,
		height:     height,
		background: gg.White,
		ink:        color.Black,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dc = gg.NewContext(width, height)
	s.dc.SetColor(s.ink)
	s.Clear()
	return s, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Clear refills the surface with the background color. Prior ink is gone.
func (s *Surface) Clear() {
	s.dc.ClearWithColor(s.background)
}

// Stamp fills a circle of the given radius centred on (x, y) with ink.
// Parts outside the surface are clipped.
func (s *Surface) Stamp(x, y, radius float64) error {
	if radius <= 0 {
		return nil
	}
	s.dc.DrawCircle(x, y, radius)
	if err := s.dc.Fill(); err != nil {
		return fmt.Errorf("stamp at (%.1f, %.1f): %w", x, y, err)
	}
	return nil
}

// LoadExisting decodes a stored signature (raw image bytes or a data URI),
// scales it to fill the surface and draws it over the background. When the
// image cannot be decoded the surface is left blank and false is returned;
// the caller can still draw.
func (s *Surface) LoadExisting(data []byte) bool {
	src, format, err := decode(data)
	if err != nil {
		logging.Logger().Warn("[surface] preload ignored", "err", err)
		s.Clear()
		return false
	}

	dst := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(s.background.Color()), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			s.dc.SetPixel(x, y, gg.FromColor(dst.RGBAAt(x, y)))
		}
	}
	logging.Logger().Debug("[surface] preloaded signature",
		"format", format, "src", src.Bounds().Size(), "dst", dst.Bounds().Size())
	return true
}

// Image returns a copy of the current pixels.
func (s *Surface) Image() *image.RGBA {
	img := s.dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}

// Export encodes the current pixels as PNG. It does not modify the surface.
func (s *Surface) Export() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI returns the PNG export as a data:image/png;base64 URI.
func (s *Surface) DataURI() (string, error) {
	data, err := s.Export()
	if err != nil {
		return "", err
	}
	return EncodeDataURI("image/png", data), nil
}
