// Package sample normalizes raw pointer and touch events into
// surface-local, timestamped samples.
package sample

import (
	"encoding/json"
	"fmt"
	"time"
)

// Sample is one input reading in surface-local pixels. T is in milliseconds
// and never decreases within a stroke.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	T int64   `json:"t"`
}

// Point is a raw screen-space position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the surface's bounding rectangle in screen space.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Kind identifies what an Event asks the capture session to do.
type Kind string

const (
	KindStart Kind = "start"
	KindMove  Kind = "move"
	KindEnd   Kind = "end"
	KindLeave Kind = "leave"
	KindClear Kind = "clear"
	KindSave  Kind = "save"
)

// Valid reports whether k is a known event kind.
func (k Kind) Valid() bool {
	switch k {
	case KindStart, KindMove, KindEnd, KindLeave, KindClear, KindSave:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown kinds.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !Kind(s).Valid() {
		return fmt.Errorf("unknown event kind %q", s)
	}
	*k = Kind(s)
	return nil
}

// Event is a raw input event from the host UI. Either Pointer or Touches
// carries the position; T optionally carries the event's own timestamp in
// milliseconds (replayed scripts, remote pads).
type Event struct {
	Kind    Kind    `json:"type"`
	Pointer *Point  `json:"pointer,omitempty"`
	Touches []Point `json:"touches,omitempty"`
	T       *int64  `json:"t,omitempty"`
}

// Position returns the point the event refers to. Only the first touch is
// used; additional simultaneous touches are ignored.
func (e Event) Position() (Point, bool) {
	if e.Pointer != nil {
		return *e.Pointer, true
	}
	if len(e.Touches) > 0 {
		return e.Touches[0], true
	}
	return Point{}, false
}

// Clock supplies monotonic millisecond timestamps.
type Clock interface {
	Millis() int64
}

// MonotonicClock measures milliseconds since it was created using the
// runtime's monotonic clock reading.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock starts a clock at zero.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

func (c *MonotonicClock) Millis() int64 {
	return time.Since(c.start).Milliseconds()
}

// Sampler converts events into Samples for a surface of a fixed pixel size.
type Sampler struct {
	clock  Clock
	width  float64
	height float64
	last   int64
}

// NewSampler creates a sampler for a surface of width×height pixels.
// A nil clock selects a MonotonicClock.
func NewSampler(width, height int, clock Clock) *Sampler {
	if clock == nil {
		clock = NewMonotonicClock()
	}
	return &Sampler{
		clock:  clock,
		width:  float64(width),
		height: float64(height),
	}
}

// Sample translates ev into surface-local coordinates relative to bounds.
// When bounds has a size that differs from the surface, coordinates are
// scaled to surface pixels. Out-of-bounds positions are returned as-is.
// It reports false when the event has no position.
func (s *Sampler) Sample(ev Event, bounds Rect) (Sample, bool) {
	p, ok := ev.Position()
	if !ok {
		return Sample{}, false
	}

	sx, sy := 1.0, 1.0
	if bounds.W > 0 {
		sx = s.width / bounds.W
	}
	if bounds.H > 0 {
		sy = s.height / bounds.H
	}

	t := s.now(ev)
	return Sample{
		X: (p.X - bounds.X) * sx,
		Y: (p.Y - bounds.Y) * sy,
		T: t,
	}, true
}

func (s *Sampler) now(ev Event) int64 {
	t := s.clock.Millis()
	if ev.T != nil {
		t = *ev.T
	}
	if t < s.last {
		t = s.last
	}
	s.last = t
	return t
}
