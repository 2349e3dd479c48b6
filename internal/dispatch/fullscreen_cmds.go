package dispatch

import (
	"stilch/internal/fullscreen"
	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/registry"
	"stilch/internal/workspace"
)

// currentRect returns window's rect as it would be without any active
// fullscreen override: its floating rect if floating, else its
// tree-computed leaf rect if tiled and currently visible.
func (d *Dispatcher) currentRect(ws *workspace.Workspace, window ids.WindowId) (geom.Rect, bool) {
	if ws.IsFloating(window) {
		return ws.FloatingRect(window)
	}
	for _, lr := range d.leafRects(ws) {
		if lr.Window == window && lr.Visible {
			return lr.Rect, true
		}
	}
	return geom.Rect{}, false
}

// setFullscreen transitions window into cmd.FullscreenMode, or back to
// None when that mode is fullscreen.None (§4.G). Entering a tier demotes
// whatever window previously held the relevant output's exclusivity
// slot; both the demoted window's and the requesting window's geometry
// are recomputed.
func (d *Dispatcher) setFullscreen(cmd Command) (Effects, error) {
	window, ok := d.resolveWindow(cmd.Window)
	if !ok {
		return Effects{}, &Error{Kind: ErrUnknownWindow}
	}
	w, err := d.Registry.Get(window)
	if err != nil {
		return Effects{}, &Error{Kind: ErrUnknownWindow, Detail: err.Error()}
	}
	ws, err := d.Workspaces.Get(w.Workspace)
	if err != nil {
		return Effects{}, &Error{Kind: ErrUnknownWorkspace, Detail: err.Error()}
	}

	var voId ids.VirtualOutputId
	var poId ids.PhysicalOutputId
	if !ws.Idle() {
		voId = ws.DisplayedOn
		if vo, err := d.VOM.Get(voId); err == nil {
			poId = vo.Backing
		}
	}

	mode := cmd.FullscreenMode
	prevMode := d.Fullscreen.State(window)
	var demoted ids.WindowId
	var hasDemoted bool

	if mode == fullscreen.None {
		if d.Fullscreen.Exit(window) {
			_ = d.Registry.SetFullscreen(window, registry.FullscreenNone)
			// §4.G "X -> None: restore saved": a floating window's rect
			// isn't reconstructed by tree layout the way a tiled leaf's
			// is, so its pre-fullscreen rect must come back from the
			// registry explicitly.
			if w.Placement == registry.Floating {
				if saved, has, _ := d.Registry.RestoreGeometry(window); has {
					ws.SetFloatingRect(window, saved)
				}
			}
		}
	} else {
		if prevMode == fullscreen.None {
			// §4.G "None -> X: current tiled geometry saved to registry".
			if rect, has := d.currentRect(ws, window); has {
				_ = d.Registry.SaveGeometry(window, rect)
			}
		}
		t := d.Fullscreen.Enter(window, mode, voId, poId)
		_ = d.Registry.SetFullscreen(window, toRegistryMode(mode))
		if t.HasDemote {
			demoted, hasDemoted = t.Demoted, true
			_ = d.Registry.SetFullscreen(demoted, registry.FullscreenNone)
		}
	}

	updates, err := d.recomputeWorkspace(w.Workspace)
	if err != nil {
		return Effects{}, err
	}
	effects := Effects{Geometry: updates}

	if hasDemoted {
		if dw, err := d.Registry.Get(demoted); err == nil && dw.Workspace != w.Workspace {
			if more, err := d.recomputeWorkspace(dw.Workspace); err == nil {
				effects.Geometry = append(effects.Geometry, more...)
			}
		}
	}
	return effects, nil
}

// killWindow requests that window be closed (§4.H "kill"). It does not
// itself remove the window: the backend's confirmation arrives as a
// WindowUnmapped event, which UnmapWindow handles. The caller
// (internal/core) translates a Killed effect into the outbound close
// request.
func (d *Dispatcher) killWindow(cmd Command) (Effects, error) {
	window, ok := d.resolveWindow(cmd.Window)
	if !ok {
		return Effects{}, &Error{Kind: ErrUnknownWindow}
	}
	if !d.Registry.Exists(window) {
		return Effects{}, &Error{Kind: ErrUnknownWindow}
	}
	return Effects{Killed: window, HasKilled: true}, nil
}
