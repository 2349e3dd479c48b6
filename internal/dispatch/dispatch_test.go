package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stilch/internal/fullscreen"
	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/layout"
	"stilch/internal/registry"
	"stilch/internal/vom"
	"stilch/internal/workspace"
)

func newHarness(t *testing.T) (*Dispatcher, ids.VirtualOutputId) {
	t.Helper()
	reg := registry.New()
	ws := workspace.NewManager(10)
	v := vom.NewManager()
	fs := fullscreen.New()

	v.AddPhysicalOutput("DP-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080})
	created := v.EnsureDefaults()
	require.Len(t, created, 1)
	require.NoError(t, ws.ShowOn(ids.WorkspaceId(1), created[0]))
	ws.Focus(ids.WorkspaceId(1))

	d := New(reg, ws, v, fs, false)
	d.SetGaps(0, 0)
	return d, created[0]
}

func TestMapWindowInsertsTiledAndFocuses(t *testing.T) {
	d, _ := newHarness(t)
	window, effects, err := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)
	require.NoError(t, err)
	require.True(t, effects.HasFocusChanged)
	require.Equal(t, window, effects.FocusChanged)
	require.Len(t, effects.Geometry, 1)
	require.Equal(t, geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}, effects.Geometry[0].Rect)
}

func TestMapWindowSplitsOnSecondInsertion(t *testing.T) {
	d, _ := newHarness(t)
	_, _, err := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)
	require.NoError(t, err)
	_, effects, err := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)
	require.NoError(t, err)
	require.Len(t, effects.Geometry, 2)
}

func TestUnmapWindowRecomputesRemainingGeometry(t *testing.T) {
	d, _ := newHarness(t)
	a, _, _ := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)
	b, _, _ := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)

	effects, err := d.UnmapWindow(a)
	require.NoError(t, err)
	require.False(t, effects.HasKilled)
	require.Len(t, effects.Geometry, 1)
	require.Equal(t, b, effects.Geometry[0].Window)
	require.Equal(t, geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}, effects.Geometry[0].Rect)

	require.False(t, d.Registry.Exists(a))
}

func TestFocusDirectionMovesFocus(t *testing.T) {
	d, _ := newHarness(t)
	a, _, _ := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)
	_, _, _ = d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)

	// focused is the second window; focus-left should land back on a.
	effects, err := d.Dispatch(Command{Kind: KindFocusDirection, Direction: geom.Left})
	require.NoError(t, err)
	require.True(t, effects.HasFocusChanged)
	require.Equal(t, a, effects.FocusChanged)
}

func TestFocusDirectionNoNeighbourIsNoop(t *testing.T) {
	d, _ := newHarness(t)
	_, _, _ = d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)

	effects, err := d.Dispatch(Command{Kind: KindFocusDirection, Direction: geom.Right})
	require.NoError(t, err)
	require.False(t, effects.HasFocusChanged)
}

func TestToggleFloatingRoundTrips(t *testing.T) {
	d, _ := newHarness(t)
	a, _, _ := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)

	_, err := d.Dispatch(Command{Kind: KindToggleFloating, Window: a})
	require.NoError(t, err)
	w, err := d.Registry.Get(a)
	require.NoError(t, err)
	require.Equal(t, registry.Floating, w.Placement)

	_, err = d.Dispatch(Command{Kind: KindToggleFloating, Window: a})
	require.NoError(t, err)
	w, err = d.Registry.Get(a)
	require.NoError(t, err)
	require.Equal(t, registry.Tiled, w.Placement)
}

func TestSetFullscreenVirtualOutputDemotesPriorOccupant(t *testing.T) {
	d, _ := newHarness(t)
	a, _, _ := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)
	b, _, _ := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)

	_, err := d.Dispatch(Command{Kind: KindSetFullscreen, Window: a, FullscreenMode: fullscreen.VirtualOutput})
	require.NoError(t, err)
	effects, err := d.Dispatch(Command{Kind: KindSetFullscreen, Window: b, FullscreenMode: fullscreen.VirtualOutput})
	require.NoError(t, err)

	byWindow := map[ids.WindowId]geom.Rect{}
	for _, g := range effects.Geometry {
		byWindow[g.Window] = g.Rect
	}
	require.Equal(t, geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}, byWindow[b])

	wa, err := d.Registry.Get(a)
	require.NoError(t, err)
	require.Equal(t, registry.FullscreenNone, wa.Fullscreen)
}

func TestScratchpadMoveAndShowRoundTrip(t *testing.T) {
	d, _ := newHarness(t)
	a, _, _ := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)

	_, err := d.Dispatch(Command{Kind: KindScratchpadMove, Window: a})
	require.NoError(t, err)
	w, err := d.Registry.Get(a)
	require.NoError(t, err)
	require.Equal(t, registry.Scratchpad, w.Placement)
	require.Equal(t, workspace.ScratchpadId, w.Workspace)

	effects, err := d.Dispatch(Command{Kind: KindScratchpadShow})
	require.NoError(t, err)
	require.Equal(t, a, effects.FocusChanged)
	w, err = d.Registry.Get(a)
	require.NoError(t, err)
	require.Equal(t, registry.Floating, w.Placement)
	require.Equal(t, ids.WorkspaceId(1), w.Workspace)

	require.Len(t, effects.Geometry, 1)
	// shown at 3/4 of the 1920x1080 virtual output, centered.
	require.Equal(t, geom.Rect{X: 240, Y: 135, W: 1440, H: 810}, effects.Geometry[0].Rect)
}

func TestMarkSetAndFocusMark(t *testing.T) {
	d, _ := newHarness(t)
	a, _, _ := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)
	_, _, _ = d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)

	_, err := d.Dispatch(Command{Kind: KindMarkSet, Window: a, Mark: "editor"})
	require.NoError(t, err)

	effects, err := d.Dispatch(Command{Kind: KindFocusMark, Mark: "editor"})
	require.NoError(t, err)
	require.Equal(t, a, effects.FocusChanged)
}

func TestMoveWorkspaceToOutputInDirection(t *testing.T) {
	d, vo1 := newHarness(t)
	_, _, _ = d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)

	d.VOM.AddPhysicalOutput("DP-2", geom.Rect{X: 1920, Y: 0, W: 1920, H: 1080})
	created := d.VOM.EnsureDefaults()
	require.Len(t, created, 1)
	vo2 := created[0]

	effects, err := d.Dispatch(Command{Kind: KindMoveWorkspaceToOutput, Workspace: ids.WorkspaceId(1), Direction: geom.Right})
	require.NoError(t, err)
	require.NotEmpty(t, effects.Visibility)

	ws, err := d.Workspaces.Get(ids.WorkspaceId(1))
	require.NoError(t, err)
	require.Equal(t, vo2, ws.DisplayedOn)
	_, stillOnVo1 := d.Workspaces.WorkspaceOn(vo1)
	require.False(t, stillOnVo1)
}

func TestResizeClampsRatiosAndRecomputesGeometry(t *testing.T) {
	d, _ := newHarness(t)
	a, _, _ := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)
	_, _, _ = d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)

	effects, err := d.Dispatch(Command{Kind: KindResize, Window: a, ResizeAxis: layout.Horizontal, ResizeDelta: 0.2})
	require.NoError(t, err)
	require.Len(t, effects.Geometry, 2)
}

func TestKillWindowReturnsKilledEffectWithoutRemoving(t *testing.T) {
	d, _ := newHarness(t)
	a, _, _ := d.MapWindow(registry.Hints{}, ids.WorkspaceId(1), false)

	effects, err := d.Dispatch(Command{Kind: KindKillWindow, Window: a})
	require.NoError(t, err)
	require.True(t, effects.HasKilled)
	require.Equal(t, a, effects.Killed)
	require.True(t, d.Registry.Exists(a))
}

func TestUnknownWindowFocusReturnsError(t *testing.T) {
	d, _ := newHarness(t)
	_, err := d.Dispatch(Command{Kind: KindFocusWindow, Window: 999})
	require.Error(t, err)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, ErrUnknownWindow, derr.Kind)
}
