// Package kinematics derives distance and smoothed velocity from consecutive
// input samples.
package kinematics

import (
	"math"

	"signpad/internal/sample"
)

// DefaultSmoothing is the weight given to each new raw velocity in the
// exponential moving average.
const DefaultSmoothing = 0.3

// Distance returns the Euclidean distance between a and b in pixels.
func Distance(a, b sample.Sample) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// RawVelocity returns distance per millisecond from a to b, or 0 when b is
// not later than a.
func RawVelocity(a, b sample.Sample) float64 {
	dt := b.T - a.T
	if dt <= 0 {
		return 0
	}
	return Distance(a, b) / float64(dt)
}

// Smooth blends raw into prev with the given factor.
func Smooth(prev, raw, factor float64) float64 {
	return prev*(1-factor) + raw*factor
}

// State carries the last sample and smoothed velocity across a stroke.
type State struct {
	Last      *sample.Sample
	Velocity  float64
	Smoothing float64
}

// NewState returns an empty state using factor for smoothing.
func NewState(factor float64) State {
	return State{Smoothing: factor}
}

// Reset clears the last sample and velocity, keeping the smoothing factor.
func (s *State) Reset() {
	s.Last = nil
	s.Velocity = 0
}

// Start begins a stroke at p with zero velocity.
func (s *State) Start(p sample.Sample) {
	s.Last = &p
	s.Velocity = 0
}

// Advance moves the state to p and returns the raw and smoothed velocity of
// the segment from the previous sample. With no previous sample it behaves
// like Start.
func (s *State) Advance(p sample.Sample) (raw, smoothed float64) {
	if s.Last == nil {
		s.Start(p)
		return 0, 0
	}
	raw = RawVelocity(*s.Last, p)
	s.Velocity = Smooth(s.Velocity, raw, s.Smoothing)
	s.Last = &p
	return raw, s.Velocity
}
