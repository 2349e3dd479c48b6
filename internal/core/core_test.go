package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stilch/internal/dispatch"
	"stilch/internal/fullscreen"
	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/registry"
)

func TestHandleOutputAddedCreatesDefaultAndAssignsWorkspace(t *testing.T) {
	c := New(10, false)
	effects := c.HandleOutputAdded(OutputAdded{
		Name:          "DP-1",
		LogicalRegion: geom.Rect{X: 0, Y: 0, W: 1920, H: 1080},
	})

	var sawVisible bool
	for _, e := range effects {
		if e.SetWorkspaceVisible != nil {
			sawVisible = true
			require.Equal(t, ids.WorkspaceId(1), e.SetWorkspaceVisible.Workspace)
		}
	}
	require.True(t, sawVisible)
	require.Len(t, c.VOM.All(), 1)
}

// TestVirtualOutputSplitAndPhysicalFullscreen verifies scenario S2's
// geometry: a physical output split into two virtual outputs, and a
// window fullscreened PhysicalOutput receiving the whole physical output
// over the split. Only that window's rectangle is checked; no effect
// hides or marks the other virtual output's workspace.
func TestVirtualOutputSplitAndPhysicalFullscreen(t *testing.T) {
	c := New(10, false)
	data := []byte(`
virtual_output main outputs DP-1 region 0,0,2880,2160
virtual_output side outputs DP-1 region 2880,0,960,2160
`)
	errs := c.LoadConfig(data)
	require.Empty(t, errs)

	c.HandleOutputAdded(OutputAdded{
		Name:          "DP-1",
		LogicalRegion: geom.Rect{X: 0, Y: 0, W: 3840, H: 2160},
	})
	require.Len(t, c.VOM.All(), 2)

	mainVO := findVOByBounds(t, c, geom.Rect{X: 0, Y: 0, W: 2880, H: 2160})

	window, effects, err := c.HandleWindowMapped(WindowMapped{Hints: registry.Hints{}})
	require.NoError(t, err)
	require.NotEmpty(t, effects)

	ws, ok := c.Workspaces.WorkspaceOn(mainVO)
	require.True(t, ok)
	require.NoError(t, c.Registry.SetWorkspace(window, ws))

	effects, err = c.HandleCommand(dispatch.Command{Kind: dispatch.KindSetFullscreen, Window: window, FullscreenMode: fullscreen.VirtualOutput})
	require.NoError(t, err)
	rect := geometryFor(t, effects, window)
	require.Equal(t, geom.Rect{X: 0, Y: 0, W: 2880, H: 2160}, rect)

	effects, err = c.HandleCommand(dispatch.Command{Kind: dispatch.KindSetFullscreen, Window: window, FullscreenMode: fullscreen.PhysicalOutput})
	require.NoError(t, err)
	rect = geometryFor(t, effects, window)
	require.Equal(t, geom.Rect{X: 0, Y: 0, W: 3840, H: 2160}, rect)
}

// TestHotplugRemoveIdlesWorkspaceAndReplugReassigns verifies scenario S5.
func TestHotplugRemoveIdlesWorkspaceAndReplugReassigns(t *testing.T) {
	c := New(10, false)
	c.HandleOutputAdded(OutputAdded{Name: "HDMI-1", LogicalRegion: geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}})
	ws, ok := c.Workspaces.FocusedWorkspace()
	require.True(t, ok)

	window, _, err := c.HandleWindowMapped(WindowMapped{Hints: registry.Hints{}})
	require.NoError(t, err)
	require.True(t, c.Registry.Exists(window))

	c.HandleOutputRemoved(OutputRemoved{Name: "HDMI-1"})
	require.True(t, c.Registry.Exists(window))

	wsAfter, err := c.Workspaces.Get(ws)
	require.NoError(t, err)
	require.True(t, wsAfter.Idle())

	c.HandleOutputAdded(OutputAdded{Name: "HDMI-1", LogicalRegion: geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}})
	wsAfter, err = c.Workspaces.Get(ws)
	require.NoError(t, err)
	require.False(t, wsAfter.Idle())
}

func TestPointerMotionEmitsCursorWarp(t *testing.T) {
	c := New(10, false)
	c.HandleOutputAdded(OutputAdded{
		Name:          "DP-1",
		LogicalRegion: geom.Rect{X: 0, Y: 0, W: 1920, H: 1080},
		MMSize:        geom.Vec2[float64]{X: 520, Y: 290},
	})
	effects := c.HandlePointerMotion(PointerMotion{Dx: 10, Dy: 0})
	require.Len(t, effects, 1)
	require.NotNil(t, effects[0].CursorWarp)
	require.Equal(t, "DP-1", effects[0].CursorWarp.OutputName)
}

func TestFrameOrdersHotplugAfterInput(t *testing.T) {
	c := New(10, false)
	c.HandleOutputAdded(OutputAdded{Name: "DP-1", LogicalRegion: geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}})

	effects := c.Frame([]InboundEvent{
		{OutputAdded: &OutputAdded{Name: "DP-2", LogicalRegion: geom.Rect{X: 1920, Y: 0, W: 1920, H: 1080}}},
		{WindowMapped: &WindowMapped{Hints: registry.Hints{}}},
	})
	require.NotEmpty(t, effects)
	// The window map's geometry comes first even though the hotplug event
	// was listed first; DP-2's SetWorkspaceVisible follows it.
	require.NotNil(t, effects[0].SetWindowGeometry)
	require.Len(t, c.VOM.All(), 2)
}

// TestKillWindowEmitsCloseWindowEffect verifies §4.H: a kill command
// produces an outbound CloseWindow request, not an immediate unmap.
func TestKillWindowEmitsCloseWindowEffect(t *testing.T) {
	c := New(10, false)
	c.HandleOutputAdded(OutputAdded{Name: "DP-1", LogicalRegion: geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}})
	window, _, err := c.HandleWindowMapped(WindowMapped{Hints: registry.Hints{}})
	require.NoError(t, err)

	effects, err := c.HandleCommand(dispatch.Command{Kind: dispatch.KindKillWindow, Window: window})
	require.NoError(t, err)

	var closed *CloseWindow
	for _, e := range effects {
		if e.CloseWindow != nil {
			closed = e.CloseWindow
		}
	}
	require.NotNil(t, closed)
	require.Equal(t, window, closed.Window)
	require.True(t, c.Registry.Exists(window))
}

// TestWindowUnmappedDoesNotEmitCloseWindow verifies §6's WindowUnmapped
// contract: it reports a surface that is already gone, so handling it must
// never re-request a close (that would close->unmap->close loop against a
// real backend). Only a kill command may produce CloseWindow.
func TestWindowUnmappedDoesNotEmitCloseWindow(t *testing.T) {
	c := New(10, false)
	c.HandleOutputAdded(OutputAdded{Name: "DP-1", LogicalRegion: geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}})
	a, _, err := c.HandleWindowMapped(WindowMapped{Hints: registry.Hints{}})
	require.NoError(t, err)
	_, _, err = c.HandleWindowMapped(WindowMapped{Hints: registry.Hints{}})
	require.NoError(t, err)

	effects, err := c.HandleWindowUnmapped(WindowUnmapped{Window: a})
	require.NoError(t, err)
	require.NotEmpty(t, effects)

	var sawGeometry, sawClose bool
	for _, e := range effects {
		if e.SetWindowGeometry != nil {
			sawGeometry = true
		}
		if e.CloseWindow != nil {
			sawClose = true
		}
	}
	require.True(t, sawGeometry)
	require.False(t, sawClose)
	require.False(t, c.Registry.Exists(a))
}

func findVOByBounds(t *testing.T, c *Core, bounds geom.Rect) ids.VirtualOutputId {
	t.Helper()
	for _, voId := range c.VOM.All() {
		vo, err := c.VOM.Get(voId)
		require.NoError(t, err)
		if vo.Bounds == bounds {
			return voId
		}
	}
	t.Fatalf("no virtual output with bounds %+v", bounds)
	return 0
}

func geometryFor(t *testing.T, effects []Effect, window ids.WindowId) geom.Rect {
	t.Helper()
	for _, e := range effects {
		if e.SetWindowGeometry != nil && e.SetWindowGeometry.Window == window {
			return e.SetWindowGeometry.Rect
		}
	}
	t.Fatalf("no geometry update for window %d", window)
	return geom.Rect{}
}
