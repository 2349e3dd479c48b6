package vom

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stilch/internal/geom"
	"stilch/internal/ids"
)

func TestEnsureDefaultsCreates1to1(t *testing.T) {
	m := NewManager()
	m.AddPhysicalOutput("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	created := m.EnsureDefaults()
	require.Len(t, created, 1)

	vo, err := m.Get(created[0])
	require.NoError(t, err)
	require.Equal(t, geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}, vo.Bounds)
}

func TestDeclareVirtualOutputSplitsPhysical(t *testing.T) {
	m := NewManager()
	m.AddPhysicalOutput("DP-1", geom.Rect{X: 0, Y: 0, W: 3840, H: 1080})

	left, err := m.DeclareVirtualOutput("left", "DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	require.NoError(t, err)
	right, err := m.DeclareVirtualOutput("right", "DP-1", geom.Rect{X: 1920, Y: 0, W: 1920, H: 1080})
	require.NoError(t, err)
	require.NotEqual(t, left, right)

	// No defaults created since DP-1 already has declared virtual outputs.
	created := m.EnsureDefaults()
	require.Empty(t, created)
}

func TestDeclareVirtualOutputRejectsOverlap(t *testing.T) {
	m := NewManager()
	m.AddPhysicalOutput("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	_, err := m.DeclareVirtualOutput("a", "DP-1", geom.Rect{X: 0, Y: 0, W: 1000, H: 1080})
	require.NoError(t, err)

	_, err = m.DeclareVirtualOutput("b", "DP-1", geom.Rect{X: 500, Y: 0, W: 1000, H: 1080})
	require.Error(t, err)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, ErrRegionOverlap, verr.Kind)
}

func TestDeclareVirtualOutputRejectsOutOfBounds(t *testing.T) {
	m := NewManager()
	m.AddPhysicalOutput("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	_, err := m.DeclareVirtualOutput("a", "DP-1", geom.Rect{X: 0, Y: 0, W: 2000, H: 1080})
	require.Error(t, err)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, ErrRegionOutOfBounds, verr.Kind)
}

func findByName(t *testing.T, m *Manager, name string) ids.VirtualOutputId {
	t.Helper()
	for _, id := range m.All() {
		vo, err := m.Get(id)
		require.NoError(t, err)
		if vo.Name == name {
			return id
		}
	}
	t.Fatalf("no virtual output named %q", name)
	return 0
}

func TestNeighbourReturnsNearestMatch(t *testing.T) {
	m := NewManager()
	m.AddPhysicalOutput("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	m.AddPhysicalOutput("DP-2", geom.Rect{X: 1920, Y: 0, W: 1920, H: 1080})
	m.AddPhysicalOutput("DP-3", geom.Rect{X: 3840, Y: 0, W: 1920, H: 1080})
	m.EnsureDefaults()

	left := findByName(t, m, "DP-1")
	middle := findByName(t, m, "DP-2")
	right := findByName(t, m, "DP-3")

	got, ok := m.Neighbour(left, geom.Right)
	require.True(t, ok)
	require.Equal(t, middle, got)

	got, ok = m.Neighbour(right, geom.Left)
	require.True(t, ok)
	require.Equal(t, middle, got)

	_, ok = m.Neighbour(left, geom.Left)
	require.False(t, ok)
}

func TestRemovePhysicalOutputDeactivatesVirtualOutputs(t *testing.T) {
	m := NewManager()
	physId := m.AddPhysicalOutput("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	created := m.EnsureDefaults()
	require.Len(t, created, 1)

	affected := m.RemovePhysicalOutput(physId)
	require.Equal(t, created, affected)

	vo, err := m.Get(created[0])
	require.NoError(t, err)
	require.False(t, vo.Active)
}

func TestClipWindowGeometryTiledIntersects(t *testing.T) {
	vo := VirtualOutput{Bounds: geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}}
	clipped := ClipWindowGeometry(vo, geom.Rect{X: 1800, Y: 0, W: 400, H: 400}, false)
	require.Equal(t, geom.Rect{X: 1800, Y: 0, W: 120, H: 400}, clipped)
}

func TestClipWindowGeometryFloatingClamps(t *testing.T) {
	vo := VirtualOutput{Bounds: geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}}
	clamped := ClipWindowGeometry(vo, geom.Rect{X: 1800, Y: 900, W: 400, H: 400}, true)
	require.Equal(t, geom.Rect{X: 1520, Y: 680, W: 400, H: 400}, clamped)
}
