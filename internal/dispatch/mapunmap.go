package dispatch

import (
	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/layout"
	"stilch/internal/registry"
	"stilch/internal/workspace"
)

// MapWindow registers a newly mapped window (§6 WindowMapped) and inserts
// it into the destination workspace, tiled by default unless floating is
// requested (e.g. by a `for_window` rule matching its hints). It focuses
// the new window and returns the geometry updates the insertion produced.
func (d *Dispatcher) MapWindow(hints registry.Hints, dest ids.WorkspaceId, floating bool) (ids.WindowId, Effects, error) {
	ws, err := d.Workspaces.Get(dest)
	if err != nil {
		return 0, Effects{}, err
	}

	window := d.Registry.Insert(hints)
	_ = d.Registry.SetWorkspace(window, dest)

	if floating {
		_ = d.Registry.SetPlacement(window, registry.Floating)
		rect := d.initialFloatingRect(ws, hints)
		ws.InsertFloating(window, rect)
	} else {
		if err := d.withInvariantCheck(dest, func() error {
			return ws.InsertTiled(window, d.defaultOrientation)
		}); err != nil {
			_ = d.Registry.Remove(window)
			return 0, Effects{}, err
		}
	}

	focusEffects := d.setFocus(window)
	updates, err := d.recomputeWorkspace(dest)
	if err != nil {
		return window, Effects{}, err
	}
	focusEffects.Geometry = updates
	return window, focusEffects, nil
}

// initialFloatingRect picks a starting rectangle for a newly floated
// window: its preferred size (or a reasonable fallback) centered over the
// destination workspace's virtual output, clamped to that output's
// bounds (§4.E "Window constraint").
func (d *Dispatcher) initialFloatingRect(ws *workspace.Workspace, hints registry.Hints) geom.Rect {
	fallback := hints
	if fallback.Preferred.X <= 0 {
		fallback.Preferred.X = 640
	}
	if fallback.Preferred.Y <= 0 {
		fallback.Preferred.Y = 480
	}
	if ws.Idle() {
		return geom.Rect{X: 0, Y: 0, W: fallback.Preferred.X, H: fallback.Preferred.Y}
	}
	vo, err := d.VOM.Get(ws.DisplayedOn)
	if err != nil {
		return geom.Rect{X: 0, Y: 0, W: fallback.Preferred.X, H: fallback.Preferred.Y}
	}
	return layout.ClampToHints(vo.Bounds, fallback, true)
}

// UnmapWindow retires a window (§6 WindowUnmapped): it leaves whatever
// fullscreen tier it held, detaches from its workspace (tiled tree,
// floating list, or the scratchpad overlay), and removes its registry
// record. Returns the geometry/focus updates needed to fill the space it
// left behind. A WindowUnmapped event reports a surface that is already
// gone, so unlike killWindow this never sets Killed/HasKilled — doing so
// would make internal/core re-request a close on a window the backend
// just told us it closed (see killWindow's doc comment for the request
// vs. confirmation split this preserves).
func (d *Dispatcher) UnmapWindow(window ids.WindowId) (Effects, error) {
	w, err := d.Registry.Get(window)
	if err != nil {
		return Effects{}, &Error{Kind: ErrUnknownWindow, Detail: err.Error()}
	}

	d.Fullscreen.Exit(window)

	wsId := w.Workspace
	if w.Placement == registry.Scratchpad {
		_ = d.Workspaces.Scratchpad().RemoveWindow(window)
	} else if ws, err := d.Workspaces.Get(wsId); err == nil {
		if err := d.withInvariantCheck(wsId, func() error {
			return ws.RemoveWindow(window)
		}); err != nil {
			return Effects{}, err
		}
	}
	_ = d.Registry.Remove(window)

	var effects Effects
	if d.hasFocusedWindow && d.focusedWindow == window {
		d.hasFocusedWindow = false
		if ws, err := d.Workspaces.Get(wsId); err == nil {
			if next, ok := ws.FocusedWindow(); ok {
				effects = d.setFocus(next)
			}
		}
	}

	if w.Placement != registry.Scratchpad {
		updates, err := d.recomputeWorkspace(wsId)
		if err != nil {
			return effects, err
		}
		effects.Geometry = updates
	}
	return effects, nil
}
