// Package stroke maps smoothed pen velocity to ink width and turns a
// segment between two samples into a run of filled circular stamps.
//
// Faster movement gives a thinner line, the way a real pen lightens when
// moved quickly.
package stroke

import (
	"math"

	"signpad/internal/kinematics"
	"signpad/internal/sample"
)

// Rand is the jitter source. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Fixed is a Rand that always returns the same value in [0, 1).
type Fixed float64

func (f Fixed) Float64() float64 { return float64(f) }

// Canvas receives stamps.
type Canvas interface {
	Stamp(x, y, radius float64) error
}

// Sized is a Canvas with a finite pixel area. Draw skips stamps that cannot
// reach it.
type Sized interface {
	Canvas
	Width() int
	Height() int
}

// maxSteps bounds the stamp index so it stays a well-defined int. Only
// segments over two billion pixels long reach it.
const maxSteps = 1 << 30

// Stamp is one filled circle.
type Stamp struct {
	X, Y   float64
	Radius float64
}

// Pen holds the width model. All values are in surface pixels; velocity is
// pixels per millisecond.
type Pen struct {
	MinWidth float64
	MaxWidth float64
	// VelocityNormalizer is the speed at which the line reaches MinWidth.
	VelocityNormalizer float64
	// Jitter is the upper bound (exclusive) of random width added per segment.
	Jitter float64
	// MinDistance is the shortest segment that produces any ink.
	MinDistance float64
	// Spacing is the distance between stamps along a segment.
	Spacing float64
}

// DefaultPen returns the stock pen: 1–4px wide, thinnest at 2px/ms,
// up to 0.5px of jitter, stamps every 2px, nothing under 2px of movement.
func DefaultPen() Pen {
	return Pen{
		MinWidth:           1,
		MaxWidth:           4,
		VelocityNormalizer: 2,
		Jitter:             0.5,
		MinDistance:        2,
		Spacing:            2,
	}
}

// Scaled returns p with every length multiplied by k, for surfaces
// allocated at a device pixel ratio.
func (p Pen) Scaled(k float64) Pen {
	return Pen{
		MinWidth:           p.MinWidth * k,
		MaxWidth:           p.MaxWidth * k,
		VelocityNormalizer: p.VelocityNormalizer * k,
		Jitter:             p.Jitter * k,
		MinDistance:        p.MinDistance * k,
		Spacing:            p.Spacing * k,
	}
}

// Width returns the stroke width for velocity v.
// The result lies in [MinWidth, MaxWidth+Jitter) for v >= 0.
func (p Pen) Width(v float64, rng Rand) float64 {
	ratio := 0.0
	if p.VelocityNormalizer > 0 {
		ratio = math.Min(math.Max(v, 0)/p.VelocityNormalizer, 1)
	}
	return p.MaxWidth - ratio*(p.MaxWidth-p.MinWidth) + rng.Float64()*p.Jitter
}

// Steps returns how many intervals a segment of length d is split into.
func (p Pen) Steps(d float64) int {
	if p.Spacing <= 0 {
		return 1
	}
	n := math.Floor(d / p.Spacing)
	if n > maxSteps || math.IsNaN(n) {
		return maxSteps
	}
	return max(int(n), 1)
}

// Stamps returns the stamps for the segment from → to drawn at velocity v,
// or nil when the segment is shorter than MinDistance.
func (p Pen) Stamps(from, to sample.Sample, v float64, rng Rand) []Stamp {
	d := kinematics.Distance(from, to)
	if d < p.MinDistance {
		return nil
	}
	steps := p.Steps(d)
	return p.stamps(from, to, p.Width(v, rng)/2, steps, 0, steps)
}

func (p Pen) stamps(from, to sample.Sample, r float64, steps, lo, hi int) []Stamp {
	out := make([]Stamp, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		t := float64(i) / float64(steps)
		out = append(out, Stamp{
			X:      from.X + (to.X-from.X)*t,
			Y:      from.Y + (to.Y-from.Y)*t,
			Radius: r,
		})
	}
	return out
}

// Draw stamps the segment onto dst and returns the number of stamps drawn.
// When dst is Sized, only the stamps that can touch it are drawn; their
// positions are the same as in Stamps.
func (p Pen) Draw(dst Canvas, from, to sample.Sample, v float64, rng Rand) (int, error) {
	d := kinematics.Distance(from, to)
	if d < p.MinDistance {
		return 0, nil
	}
	r := p.Width(v, rng) / 2
	steps := p.Steps(d)
	lo, hi := 0, steps
	if sized, ok := dst.(Sized); ok {
		var visible bool
		if lo, hi, visible = p.clip(from, to, steps, sized.Width(), sized.Height()); !visible {
			return 0, nil
		}
	}

	stamps := p.stamps(from, to, r, steps, lo, hi)
	for i, s := range stamps {
		if err := dst.Stamp(s.X, s.Y, s.Radius); err != nil {
			return i, err
		}
	}
	return len(stamps), nil
}

// clip returns the stamp index range of the segment that lies inside the
// w×h area grown by the pen's widest reach, using Liang-Barsky.
func (p Pen) clip(from, to sample.Sample, steps, w, h int) (lo, hi int, ok bool) {
	pad := p.MaxWidth + p.Jitter + 1
	dx, dy := to.X-from.X, to.Y-from.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, from.X + pad},
		{dx, float64(w) + pad - from.X},
		{-dy, from.Y + pad},
		{dy, float64(h) + pad - from.Y},
	}
	for _, e := range edges {
		den, num := e[0], e[1]
		if den == 0 {
			if num < 0 {
				return 0, 0, false
			}
			continue
		}
		r := num / den
		if den < 0 {
			t0 = math.Max(t0, r)
		} else {
			t1 = math.Min(t1, r)
		}
	}
	if !(t0 <= t1) {
		return 0, 0, false
	}
	lo = int(math.Ceil(t0 * float64(steps)))
	hi = int(math.Floor(t1 * float64(steps)))
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}
