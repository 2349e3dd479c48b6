package dispatch

import (
	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/registry"
	"stilch/internal/workspace"
)

// workspaceSwitch focuses wsId, showing it on whichever virtual output
// currently hosts the focused workspace if wsId is idle (§4.D
// "show_on"/switch semantics).
func (d *Dispatcher) workspaceSwitch(wsId ids.WorkspaceId) (Effects, error) {
	target, err := d.Workspaces.Get(wsId)
	if err != nil {
		return Effects{}, &Error{Kind: ErrUnknownWorkspace, Detail: err.Error()}
	}

	var vo ids.VirtualOutputId
	var haveVO bool
	if !target.Idle() {
		vo, haveVO = target.DisplayedOn, true
	} else if cur, ok := d.Workspaces.FocusedWorkspace(); ok {
		if curWs, err := d.Workspaces.Get(cur); err == nil && !curWs.Idle() {
			vo, haveVO = curWs.DisplayedOn, true
		}
	}

	d.Workspaces.Focus(wsId)

	var vis []VisibilityUpdate
	if target.Idle() && haveVO {
		if err := d.Workspaces.ShowOn(wsId, vo); err != nil {
			return Effects{}, err
		}
		vis = append(vis, VisibilityUpdate{VirtualOutput: vo, Workspace: wsId})
	}

	var effects Effects
	if fw, ok := target.FocusedWindow(); ok {
		effects = d.setFocus(fw)
	}

	updates, err := d.recomputeWorkspace(wsId)
	if err != nil {
		return Effects{}, err
	}
	effects.Geometry = updates
	effects.Visibility = vis
	return effects, nil
}

// workspaceBackAndForth toggles to the workspace that was focused
// immediately before the current one (§4.D supplemented feature). No
// prior focus to toggle back to is a quiet no-op.
func (d *Dispatcher) workspaceBackAndForth() (Effects, error) {
	wsId, ok := d.Workspaces.BackAndForth()
	if !ok {
		return Effects{}, nil
	}
	return d.workspaceSwitch(wsId)
}

// scratchpadShow implements `scratchpad show` (SPEC_FULL.md's scratchpad
// supplement): it cycles the next scratchpad window into view on the
// focused workspace, or jumps directly to cmd.Window (or, failing that,
// the window carrying cmd.Mark) when a specific window is named. No
// matching scratchpad window is a quiet no-op.
func (d *Dispatcher) scratchpadShow(cmd Command) (Effects, error) {
	var window ids.WindowId
	target := cmd.Window
	if target == 0 && cmd.Mark != "" {
		marked, ok := d.Registry.FindMark(cmd.Mark)
		if !ok {
			return Effects{}, nil
		}
		target = marked
	}
	if target != 0 {
		if !d.Workspaces.ScratchpadTake(target) {
			return Effects{}, nil
		}
		window = target
	} else {
		w, ok := d.Workspaces.ScratchpadNext()
		if !ok {
			return Effects{}, nil
		}
		window = w
	}

	dest, ok := d.Workspaces.FocusedWorkspace()
	if !ok {
		return Effects{}, &Error{Kind: ErrUnknownWorkspace}
	}
	ws, err := d.Workspaces.Get(dest)
	if err != nil {
		return Effects{}, err
	}

	_ = d.Registry.SetWorkspace(window, dest)
	_ = d.Registry.SetPlacement(window, registry.Floating)
	rect := d.scratchpadRect(ws)
	ws.InsertFloating(window, rect)

	effects := d.setFocus(window)
	updates, err := d.recomputeWorkspace(dest)
	if err != nil {
		return Effects{}, err
	}
	effects.Geometry = updates
	return effects, nil
}

// scratchpadRect sizes a window being shown from the scratchpad at 3/4 of
// its destination virtual output's bounds, centered within it (SPEC_FULL.md's
// resolution of the §9 scratchpad Open Question). A workspace with nowhere
// to show falls back to an unclamped 1280x720 rect at the origin.
func (d *Dispatcher) scratchpadRect(ws *workspace.Workspace) geom.Rect {
	if ws.Idle() {
		return geom.Rect{X: 0, Y: 0, W: 1280, H: 720}
	}
	vo, err := d.VOM.Get(ws.DisplayedOn)
	if err != nil {
		return geom.Rect{X: 0, Y: 0, W: 1280, H: 720}
	}
	return centeredFraction(vo.Bounds, 3, 4)
}

func centeredFraction(bounds geom.Rect, num, den int32) geom.Rect {
	w := bounds.W * num / den
	h := bounds.H * num / den
	return geom.Rect{
		X: bounds.X + (bounds.W-w)/2,
		Y: bounds.Y + (bounds.H-h)/2,
		W: w,
		H: h,
	}
}

// scratchpadMove implements `move to scratchpad`: it parks window on the
// hidden scratchpad overlay, detaching it from wherever it currently
// lives.
func (d *Dispatcher) scratchpadMove(cmd Command) (Effects, error) {
	window, ok := d.resolveWindow(cmd.Window)
	if !ok {
		return Effects{}, &Error{Kind: ErrUnknownWindow}
	}
	w, err := d.Registry.Get(window)
	if err != nil {
		return Effects{}, &Error{Kind: ErrUnknownWindow, Detail: err.Error()}
	}
	wsId := w.Workspace

	if err := d.withInvariantCheck(wsId, func() error {
		return d.Workspaces.MoveToScratchpad(wsId, window)
	}); err != nil {
		return Effects{}, err
	}
	_ = d.Registry.SetWorkspace(window, workspace.ScratchpadId)
	_ = d.Registry.SetPlacement(window, registry.Scratchpad)

	if d.hasFocusedWindow && d.focusedWindow == window {
		d.hasFocusedWindow = false
		if ws, err := d.Workspaces.Get(wsId); err == nil {
			if next, ok := ws.FocusedWindow(); ok {
				d.setFocus(next)
			}
		}
	}

	updates, err := d.recomputeWorkspace(wsId)
	if err != nil {
		return Effects{}, err
	}
	return Effects{Geometry: updates}, nil
}
