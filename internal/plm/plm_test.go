package plm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stilch/internal/geom"
	"stilch/internal/ids"
)

func outputAt(id ids.PhysicalOutputId, mmX, mmY, mmW, mmH float64) Output {
	return Output{
		Id:            id,
		MMBounds:      geom.RectF{X: mmX, Y: mmY, W: mmW, H: mmH},
		LogicalBounds: geom.Rect{X: 0, Y: 0, W: int32(mmW), H: int32(mmH)},
	}
}

// TestGapJump covers scenario S3: cursor at A's mm (295,100), delta
// (20,0) device units at 1000 DPI, output A at mm (0,0,300,200), output B
// at mm (400,0,300,200).
func TestGapJump(t *testing.T) {
	m := NewManager()
	a := outputAt(1, 0, 0, 300, 200)
	b := outputAt(2, 400, 0, 300, 200)
	m.SetOutput(a)
	m.SetOutput(b)
	m.WarpTo(a.Id, geom.Vec2[float64]{X: 295, Y: 100})

	// delta (device units) * 25.4 / DPI == 20mm  =>  delta == 20*1000/25.4
	ev := m.Move(20*1000/25.4, 0, 1000)

	require.True(t, ev.Warped)
	require.Equal(t, b.Id, ev.Output)
	require.InDelta(t, 415, m.mmPos.X, 1e-6)
	require.InDelta(t, 100, m.mmPos.Y, 1e-6)
}

func TestMoveWithinBoundsNoWarp(t *testing.T) {
	m := NewManager()
	a := outputAt(1, 0, 0, 300, 200)
	m.SetOutput(a)
	m.WarpTo(a.Id, geom.Vec2[float64]{X: 100, Y: 100})

	ev := m.Move(10*1000/25.4, 0, 1000)
	require.False(t, ev.Warped)
	require.InDelta(t, 110, m.mmPos.X, 1e-6)
}

func TestMoveClampsWithNoNeighbour(t *testing.T) {
	m := NewManager()
	a := outputAt(1, 0, 0, 300, 200)
	m.SetOutput(a)
	m.WarpTo(a.Id, geom.Vec2[float64]{X: 295, Y: 100})

	ev := m.Move(100*1000/25.4, 0, 1000)
	require.False(t, ev.Warped)
	require.InDelta(t, 300, m.mmPos.X, 1e-6)
}

func TestPhysicalToLogicalScales(t *testing.T) {
	o := Output{
		MMBounds:      geom.RectF{X: 0, Y: 0, W: 300, H: 200},
		LogicalBounds: geom.Rect{X: 0, Y: 0, W: 1920, H: 1280},
	}
	p := o.PhysicalToLogical(geom.Vec2[float64]{X: 150, Y: 100})
	require.InDelta(t, 960, p.X, 1e-6)
	require.InDelta(t, 640, p.Y, 1e-6)
}

func TestLogicalToPhysicalRoundTrip(t *testing.T) {
	o := Output{
		MMBounds:      geom.RectF{X: 10, Y: 20, W: 300, H: 200},
		LogicalBounds: geom.Rect{X: 0, Y: 0, W: 1920, H: 1280},
	}
	mm := geom.Vec2[float64]{X: 160, Y: 90}
	logical := o.PhysicalToLogical(mm)
	back := o.LogicalToPhysical(logical)
	require.InDelta(t, mm.X, back.X, 1e-6)
	require.InDelta(t, mm.Y, back.Y, 1e-6)
}

func TestRotate90RoundTrip(t *testing.T) {
	o := Output{
		MMBounds:      geom.RectF{X: 0, Y: 0, W: 300, H: 200},
		LogicalBounds: geom.Rect{X: 0, Y: 0, W: 1280, H: 1920},
		Rotation:      Rotate90,
	}
	mm := geom.Vec2[float64]{X: 123, Y: 45}
	logical := o.PhysicalToLogical(mm)
	back := o.LogicalToPhysical(logical)
	require.InDelta(t, mm.X, back.X, 1e-6)
	require.InDelta(t, mm.Y, back.Y, 1e-6)
}
