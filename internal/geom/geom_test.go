package geom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRectIntersection(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 5, Y: 5, W: 10, H: 10}
	got, ok := a.Intersection(b)
	require.True(t, ok)
	require.Equal(t, Rect{X: 5, Y: 5, W: 5, H: 5}, got)

	c := Rect{X: 20, Y: 20, W: 5, H: 5}
	_, ok = a.Intersection(c)
	require.False(t, ok)
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 10, H: 10}
	require.True(t, r.Contains(0, 0))
	require.True(t, r.Contains(9, 9))
	require.False(t, r.Contains(10, 0))
	require.False(t, r.Contains(0, 10))
}

func TestEdgeCrossedRight(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 1000, H: 800}
	edge, ok := EdgeCrossed(r, Vec2[float64]{X: 995, Y: 400}, Vec2[float64]{X: 1010, Y: 400})
	require.True(t, ok)
	require.Equal(t, Right, edge)
}

func TestEdgeCrossedTieBreak(t *testing.T) {
	// p1 exits exactly through the top-right corner: Left<Right<Top<Bottom
	// means Right wins over Top when both candidate t values are equal.
	r := Rect{X: 0, Y: 0, W: 10, H: 10}
	edge, ok := EdgeCrossed(r, Vec2[float64]{X: 5, Y: 5}, Vec2[float64]{X: 15, Y: -5})
	require.True(t, ok)
	require.Equal(t, Right, edge)
}

func TestEdgeCrossedNoCrossing(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 10, H: 10}
	_, ok := EdgeCrossed(r, Vec2[float64]{X: 5, Y: 5}, Vec2[float64]{X: 6, Y: 6})
	require.False(t, ok)
}

func TestClamp(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 10, H: 10}
	x, y := r.Clamp(-5, 50)
	require.Equal(t, int32(0), x)
	require.Equal(t, int32(9), y)
}

func TestRectFClamp(t *testing.T) {
	r := RectF{X: 0, Y: 0, W: 300, H: 200}
	x, y := r.Clamp(-10, 250)
	require.Equal(t, 0.0, x)
	require.Equal(t, 200.0, y)
}
