// Package session ties sampling, kinematics and stroke rendering to one
// raster surface. A Session is the runtime object behind one open signature
// widget: it is created when the widget opens and discarded when it closes.
//
// A Session is not safe for concurrent use. Exactly one goroutine (the UI
// event loop, or one remote connection) drives it.
package session

import (
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/google/uuid"

	"signpad/internal/config"
	"signpad/internal/kinematics"
	"signpad/internal/logging"
	"signpad/internal/sample"
	"signpad/internal/stroke"
	"signpad/internal/surface"
)

// Stamps are clipped to the surface's size.
var _ stroke.Sized = (*surface.Surface)(nil)

// State is the drawing state.
type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session is a two-state capture machine with an orthogonal hasContent flag
// that gates saving.
type Session struct {
	id         string
	surface    *surface.Surface
	sampler    *sample.Sampler
	bounds     sample.Rect
	pen        stroke.Pen
	rng        stroke.Rand
	kin        kinematics.State
	state      State
	hasContent bool
}

type options struct {
	rng     stroke.Rand
	clock   sample.Clock
	preload []byte
}

// Option configures New.
type Option func(*options)

// WithRand injects the jitter source.
func WithRand(r stroke.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithClock injects the sample clock.
func WithClock(c sample.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithPreload prefills the surface with a stored signature (image bytes or a
// data URI). A preload that fails to decode leaves the surface blank.
func WithPreload(data []byte) Option {
	return func(o *options) { o.preload = data }
}

// New opens a session on a fresh surface sized from cfg.
func New(cfg config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = newRand(cfg.Pen.Seed)
	}

	w, h := cfg.PixelSize()
	surf, err := surface.New(w, h,
		surface.WithBackground(cfg.BackgroundColor()),
		surface.WithInk(cfg.InkColor()))
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	s := &Session{
		id:      uuid.NewString(),
		surface: surf,
		sampler: sample.NewSampler(w, h, o.clock),
		bounds:  sample.Rect{W: float64(cfg.Surface.Width), H: float64(cfg.Surface.Height)},
		pen:     cfg.Stroke(),
		rng:     o.rng,
		kin:     kinematics.NewState(cfg.Pen.Smoothing),
	}
	if o.preload != nil {
		s.Preload(o.preload)
	}
	logging.Logger().Info("[session] opened", "id", s.id, "width", w, "height", h,
		"preloaded", s.hasContent)
	return s, nil
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ID identifies the session in logs and saved artifacts.
func (s *Session) ID() string { return s.id }

// State returns the current drawing state.
func (s *Session) State() State { return s.state }

// HasContent reports whether there is anything worth saving.
func (s *Session) HasContent() bool { return s.hasContent }

// Surface exposes the raster for display.
func (s *Session) Surface() *surface.Surface { return s.surface }

// Image returns a snapshot of the current pixels.
func (s *Session) Image() *image.RGBA { return s.surface.Image() }

// SetBounds sets the screen-space rectangle raw events are relative to.
func (s *Session) SetBounds(r sample.Rect) { s.bounds = r }

// Bounds returns the current screen-space rectangle.
func (s *Session) Bounds() sample.Rect { return s.bounds }

// Preload draws a stored signature over the surface. It marks the session as
// having content only when the image decodes.
func (s *Session) Preload(data []byte) bool {
	ok := s.surface.LoadExisting(data)
	if ok {
		s.hasContent = true
	}
	return ok
}

// Begin starts a stroke at p.
func (s *Session) Begin(p sample.Sample) {
	s.state = Drawing
	s.kin.Start(p)
	s.hasContent = true
	logging.Logger().Debug("[session] stroke start", "id", s.id, "x", p.X, "y", p.Y, "t", p.T)
}

// Move extends the current stroke to p and returns the number of stamps
// drawn. It does nothing while Idle.
func (s *Session) Move(p sample.Sample) int {
	if s.state != Drawing || s.kin.Last == nil {
		return 0
	}
	from := *s.kin.Last
	_, v := s.kin.Advance(p)
	n, err := s.pen.Draw(s.surface, from, p, v, s.rng)
	if err != nil {
		logging.Logger().Warn("[session] stamp failed", "id", s.id, "err", err)
	}
	return n
}

// End finishes the current stroke. Drawn pixels stay.
func (s *Session) End() {
	if s.state == Drawing {
		logging.Logger().Debug("[session] stroke end", "id", s.id)
	}
	s.state = Idle
	s.kin.Reset()
}

// Leave ends the current stroke because input left the surface.
func (s *Session) Leave() {
	if s.state == Drawing {
		logging.Logger().Debug("[session] input left surface", "id", s.id)
	}
	s.state = Idle
	s.kin.Reset()
}

// Clear blanks the surface and forgets all content. Valid in any state.
func (s *Session) Clear() {
	s.state = Idle
	s.kin.Reset()
	s.hasContent = false
	s.surface.Clear()
	logging.Logger().Debug("[session] cleared", "id", s.id)
}

// Save exports the surface as PNG. Without content it is a no-op and
// reports false.
func (s *Session) Save() ([]byte, bool, error) {
	if !s.hasContent {
		return nil, false, nil
	}
	data, err := s.surface.Export()
	if err != nil {
		return nil, false, fmt.Errorf("save session %s: %w", s.id, err)
	}
	logging.Logger().Info("[session] saved", "id", s.id, "bytes", len(data))
	return data, true, nil
}

// SaveDataURI is Save encoded as a data:image/png;base64 URI.
func (s *Session) SaveDataURI() (string, bool, error) {
	data, ok, err := s.Save()
	if !ok || err != nil {
		return "", ok, err
	}
	return surface.EncodeDataURI("image/png", data), true, nil
}

// Apply dispatches a raw host event. For KindSave it returns the PNG, or
// nil when there is nothing to save.
func (s *Session) Apply(ev sample.Event) ([]byte, error) {
	switch ev.Kind {
	case sample.KindStart:
		if p, ok := s.sampler.Sample(ev, s.bounds); ok {
			s.Begin(p)
		}
	case sample.KindMove:
		if p, ok := s.sampler.Sample(ev, s.bounds); ok {
			s.Move(p)
		}
	case sample.KindEnd:
		s.End()
	case sample.KindLeave:
		s.Leave()
	case sample.KindClear:
		s.Clear()
	case sample.KindSave:
		data, _, err := s.Save()
		return data, err
	default:
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return nil, nil
}
