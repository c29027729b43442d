package sample

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now int64 }

func (c *fakeClock) Millis() int64 { return c.now }

func ms(v int64) *int64 { return &v }

func TestSamplerTranslatesToLocal(t *testing.T) {
	clock := &fakeClock{now: 42}
	s := NewSampler(320, 200, clock)

	got, ok := s.Sample(Event{Kind: KindStart, Pointer: &Point{X: 110, Y: 60}},
		Rect{X: 100, Y: 50, W: 320, H: 200})
	require.True(t, ok)
	assert.Equal(t, Sample{X: 10, Y: 10, T: 42}, got)
}

func TestSamplerFirstTouchOnly(t *testing.T) {
	s := NewSampler(320, 200, &fakeClock{})

	got, ok := s.Sample(Event{
		Kind:    KindMove,
		Touches: []Point{{X: 5, Y: 6}, {X: 300, Y: 150}, {X: 1, Y: 1}},
	}, Rect{W: 320, H: 200})
	require.True(t, ok)
	assert.Equal(t, 5.0, got.X)
	assert.Equal(t, 6.0, got.Y)
}

func TestSamplerPointerWinsOverTouches(t *testing.T) {
	s := NewSampler(320, 200, &fakeClock{})
	got, ok := s.Sample(Event{
		Pointer: &Point{X: 1, Y: 2},
		Touches: []Point{{X: 9, Y: 9}},
	}, Rect{})
	require.True(t, ok)
	assert.Equal(t, Point{X: 1, Y: 2}, Point{X: got.X, Y: got.Y})
}

func TestSamplerNoPosition(t *testing.T) {
	s := NewSampler(320, 200, &fakeClock{})
	_, ok := s.Sample(Event{Kind: KindEnd}, Rect{})
	assert.False(t, ok)
}

func TestSamplerOutOfBoundsAccepted(t *testing.T) {
	s := NewSampler(320, 200, &fakeClock{})
	got, ok := s.Sample(Event{Pointer: &Point{X: -20, Y: 500}}, Rect{W: 320, H: 200})
	require.True(t, ok)
	assert.Equal(t, -20.0, got.X)
	assert.Equal(t, 500.0, got.Y)
}

func TestSamplerScalesToPixelRatio(t *testing.T) {
	// 2x surface displayed at logical size.
	s := NewSampler(640, 400, &fakeClock{})
	got, ok := s.Sample(Event{Pointer: &Point{X: 10, Y: 20}}, Rect{W: 320, H: 200})
	require.True(t, ok)
	assert.Equal(t, 20.0, got.X)
	assert.Equal(t, 40.0, got.Y)
}

func TestSamplerTimestamps(t *testing.T) {
	clock := &fakeClock{now: 100}
	s := NewSampler(320, 200, clock)
	p := &Point{}

	got, _ := s.Sample(Event{Pointer: p}, Rect{})
	assert.Equal(t, int64(100), got.T)

	got, _ = s.Sample(Event{Pointer: p, T: ms(250)}, Rect{})
	assert.Equal(t, int64(250), got.T, "event timestamp takes precedence")

	got, _ = s.Sample(Event{Pointer: p, T: ms(200)}, Rect{})
	assert.Equal(t, int64(250), got.T, "timestamps never decrease")

	clock.now = 90
	got, _ = s.Sample(Event{Pointer: p}, Rect{})
	assert.Equal(t, int64(250), got.T)
}

func TestMonotonicClockNonDecreasing(t *testing.T) {
	c := NewMonotonicClock()
	a := c.Millis()
	b := c.Millis()
	assert.GreaterOrEqual(t, b, a)
	assert.GreaterOrEqual(t, a, int64(0))
}

func TestEventJSON(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"type":"move","touches":[{"x":1,"y":2}],"t":7}`), &ev))
	assert.Equal(t, KindMove, ev.Kind)
	require.NotNil(t, ev.T)
	assert.Equal(t, int64(7), *ev.T)

	err := json.Unmarshal([]byte(`{"type":"wiggle"}`), &ev)
	assert.Error(t, err)
}
