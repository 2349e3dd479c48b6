package dispatch

import (
	"stilch/internal/fullscreen"
	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/layout"
	"stilch/internal/registry"
	"stilch/internal/vom"
)

// toFSState converts the registry's mirrored fullscreen tier to the
// fullscreen package's state type. The two enums share ordinal values by
// construction (both None=0, Container=1, VirtualOutput=2,
// PhysicalOutput=3); only the Registry.Window.Fullscreen field persists
// the tier for external consumers, while internal/fullscreen.Manager
// remains the sole authority on exclusivity.
func toFSState(m registry.FullscreenMode) fullscreen.State { return fullscreen.State(m) }

func toRegistryMode(s fullscreen.State) registry.FullscreenMode { return registry.FullscreenMode(s) }

// withInvariantCheck runs mutate against ws's layout tree, rolling the
// tree back to its pre-mutate snapshot if the result violates §3's
// structural invariants (§4.H "invariant check... rolled back"). Rather
// than snapshotting the entire process (registry + every manager), only
// the affected workspace's tree is cloned: a structural mutation can only
// ever break that tree's own invariants, so this is the narrowest
// snapshot that still covers every way CheckInvariants can fail.
func (d *Dispatcher) withInvariantCheck(wsId ids.WorkspaceId, mutate func() error) error {
	ws, err := d.Workspaces.Get(wsId)
	if err != nil {
		return err
	}
	snapshot := ws.Tree.Clone()

	if err := mutate(); err != nil {
		return err
	}
	if err := layout.CheckInvariants(ws.Tree.Root); err != nil {
		ws.Tree = snapshot
		if d.debug {
			panic(&Error{Kind: ErrInvariantViolation, Detail: err.Error()})
		}
		d.log.Errorf("rolled back workspace %d: %s", wsId, err)
		return &Error{Kind: ErrInvariantViolation, Detail: err.Error()}
	}
	return nil
}

// RecomputeWorkspace is the exported form of recomputeWorkspace, for
// callers outside the Command shape (internal/core's hotplug and
// workspace-assignment handling, which mutate VOM/Workspace state
// directly rather than through Dispatch).
func (d *Dispatcher) RecomputeWorkspace(wsId ids.WorkspaceId) ([]GeometryUpdate, error) {
	return d.recomputeWorkspace(wsId)
}

// recomputeWorkspace recomputes target rectangles for every window in ws
// (tiled, via the layout tree; floating, clamped to the hosting virtual
// output) and overlays any active fullscreen tier (§4.G "Target
// rectangles"). It is a no-op returning no updates if the workspace is
// currently idle (displayed nowhere).
func (d *Dispatcher) recomputeWorkspace(wsId ids.WorkspaceId) ([]GeometryUpdate, error) {
	ws, err := d.Workspaces.Get(wsId)
	if err != nil {
		return nil, err
	}
	if ws.Idle() {
		return nil, nil
	}
	vo, err := d.VOM.Get(ws.DisplayedOn)
	if err != nil {
		return nil, err
	}

	outer := geom.Rect{
		X: vo.Bounds.X + d.outerGap,
		Y: vo.Bounds.Y + d.outerGap,
		W: vo.Bounds.W - 2*d.outerGap,
		H: vo.Bounds.H - 2*d.outerGap,
	}
	if outer.W < 0 {
		outer.W = 0
	}
	if outer.H < 0 {
		outer.H = 0
	}

	rects := layout.ComputeGeometry(ws.Tree.Root, outer, d.innerGap, d.Registry)
	var updates []GeometryUpdate
	for _, lr := range rects {
		rect := lr.Rect
		if lr.Visible {
			rect = d.applyFullscreenOverride(lr.Window, rect, vo)
		}
		updates = append(updates, GeometryUpdate{Window: lr.Window, Rect: rect, Visible: lr.Visible})
	}

	for _, fw := range ws.Floating {
		rect, _ := ws.FloatingRect(fw)
		rect = vom.ClipWindowGeometry(*vo, rect, true)
		ws.SetFloatingRect(fw, rect)
		rect = d.applyFullscreenOverride(fw, rect, vo)
		updates = append(updates, GeometryUpdate{Window: fw, Rect: rect, Visible: true})
	}

	return updates, nil
}

// applyFullscreenOverride replaces containerRect with the target
// rectangle for window's active fullscreen tier, if any (§4.G).
func (d *Dispatcher) applyFullscreenOverride(window ids.WindowId, containerRect geom.Rect, vo *vom.VirtualOutput) geom.Rect {
	mode := d.Fullscreen.State(window)
	if mode == fullscreen.None {
		return containerRect
	}
	var poBounds geom.Rect
	if mode == fullscreen.PhysicalOutput {
		if po, err := d.VOM.GetPhysical(vo.Backing); err == nil {
			poBounds = po.Bounds
		} else {
			poBounds = vo.Bounds
		}
	}
	return fullscreen.TargetRect(mode, containerRect, vo.Bounds, poBounds)
}
