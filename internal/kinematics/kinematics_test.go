package kinematics

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signpad/internal/sample"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b sample.Sample
		want float64
	}{
		{"same point", sample.Sample{X: 3, Y: 3}, sample.Sample{X: 3, Y: 3}, 0},
		{"horizontal", sample.Sample{}, sample.Sample{X: 100}, 100},
		{"3-4-5", sample.Sample{X: 1, Y: 1}, sample.Sample{X: 4, Y: 5}, 5},
		{"negative", sample.Sample{X: 0, Y: 0}, sample.Sample{X: -6, Y: -8}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRawVelocity(t *testing.T) {
	a := sample.Sample{X: 0, Y: 0, T: 0}
	assert.InDelta(t, 5.0, RawVelocity(a, sample.Sample{X: 100, T: 20}), 1e-9)
	assert.Equal(t, 0.0, RawVelocity(a, sample.Sample{X: 100, T: 0}), "shared timestamp")
	assert.Equal(t, 0.0, RawVelocity(sample.Sample{T: 10}, sample.Sample{X: 5, T: 5}))
}

func TestRawVelocityNonNegative(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	prev := sample.Sample{}
	for i := 0; i < 1000; i++ {
		next := sample.Sample{
			X: r.Float64()*640 - 160,
			Y: r.Float64()*400 - 100,
			T: prev.T + int64(r.IntN(5)),
		}
		require.GreaterOrEqual(t, RawVelocity(prev, next), 0.0)
		prev = next
	}
}

func TestSmooth(t *testing.T) {
	assert.InDelta(t, 1.5, Smooth(0, 5, DefaultSmoothing), 1e-9)
	assert.InDelta(t, 0.7*1.5+0.3*5, Smooth(1.5, 5, DefaultSmoothing), 1e-9)
}

func TestStateCarriesAcrossStroke(t *testing.T) {
	s := NewState(DefaultSmoothing)
	raw, smoothed := s.Advance(sample.Sample{X: 0, T: 0})
	assert.Equal(t, 0.0, raw)
	assert.Equal(t, 0.0, smoothed)
	require.NotNil(t, s.Last)

	raw, smoothed = s.Advance(sample.Sample{X: 100, T: 20})
	assert.InDelta(t, 5.0, raw, 1e-9)
	assert.InDelta(t, 1.5, smoothed, 1e-9)

	raw, smoothed = s.Advance(sample.Sample{X: 200, T: 40})
	assert.InDelta(t, 5.0, raw, 1e-9)
	assert.InDelta(t, 1.5*0.7+5*0.3, smoothed, 1e-9)
	assert.Equal(t, 200.0, s.Last.X)
}

func TestStateReset(t *testing.T) {
	s := NewState(DefaultSmoothing)
	s.Start(sample.Sample{X: 1})
	s.Advance(sample.Sample{X: 50, T: 10})
	s.Reset()

	assert.Nil(t, s.Last)
	assert.Equal(t, 0.0, s.Velocity)
	assert.Equal(t, DefaultSmoothing, s.Smoothing)
}
