package dispatch

import "stilch/internal/registry"

// moveWindowDirection moves a tiled window one step within its
// workspace's layout tree (§4.C "Swap/Move"). Floating windows don't
// participate in directional tree moves; the command is a no-op for one.
func (d *Dispatcher) moveWindowDirection(cmd Command) (Effects, error) {
	window, ok := d.resolveWindow(cmd.Window)
	if !ok {
		return Effects{}, &Error{Kind: ErrUnknownWindow}
	}
	w, err := d.Registry.Get(window)
	if err != nil {
		return Effects{}, &Error{Kind: ErrUnknownWindow, Detail: err.Error()}
	}
	if w.Placement != registry.Tiled {
		return Effects{}, nil
	}
	wsId := w.Workspace

	if err := d.withInvariantCheck(wsId, func() error {
		ws, err := d.Workspaces.Get(wsId)
		if err != nil {
			return err
		}
		return ws.Tree.MoveDirection(window, cmd.Direction)
	}); err != nil {
		return Effects{}, err
	}

	updates, err := d.recomputeWorkspace(wsId)
	if err != nil {
		return Effects{}, err
	}
	return Effects{Geometry: updates}, nil
}

// moveWorkspaceToOutputInDirection relocates a whole workspace to the
// virtual output neighbouring its current one (§4.E "Directional
// navigation"), idling whatever workspace previously occupied the
// destination. No neighbour in that direction is a quiet no-op.
func (d *Dispatcher) moveWorkspaceToOutputInDirection(cmd Command) (Effects, error) {
	wsId := cmd.Workspace
	if wsId == 0 {
		focused, ok := d.Workspaces.FocusedWorkspace()
		if !ok {
			return Effects{}, &Error{Kind: ErrUnknownWorkspace}
		}
		wsId = focused
	}
	ws, err := d.Workspaces.Get(wsId)
	if err != nil {
		return Effects{}, &Error{Kind: ErrUnknownWorkspace, Detail: err.Error()}
	}
	if ws.Idle() {
		return Effects{}, nil
	}

	oldVO := ws.DisplayedOn
	neighbourVO, ok := d.VOM.Neighbour(oldVO, cmd.Direction)
	if !ok {
		return Effects{}, nil
	}

	displacedWs, hadDisplaced := d.Workspaces.WorkspaceOn(neighbourVO)
	if err := d.Workspaces.ShowOn(wsId, neighbourVO); err != nil {
		return Effects{}, err
	}

	vis := []VisibilityUpdate{{VirtualOutput: neighbourVO, Workspace: wsId}}
	if hadDisplaced {
		vis = append(vis, VisibilityUpdate{VirtualOutput: oldVO, Workspace: displacedWs})
	}

	updates, err := d.recomputeWorkspace(wsId)
	if err != nil {
		return Effects{}, err
	}
	effects := Effects{Geometry: updates, Visibility: vis}
	if hadDisplaced {
		if moreUpdates, err := d.recomputeWorkspace(displacedWs); err == nil {
			effects.Geometry = append(effects.Geometry, moreUpdates...)
		}
	}
	return effects, nil
}

// toggleFloating moves window between the tiled tree and the floating
// list of its workspace (i3/sway `floating toggle`).
func (d *Dispatcher) toggleFloating(cmd Command) (Effects, error) {
	window, ok := d.resolveWindow(cmd.Window)
	if !ok {
		return Effects{}, &Error{Kind: ErrUnknownWindow}
	}
	w, err := d.Registry.Get(window)
	if err != nil {
		return Effects{}, &Error{Kind: ErrUnknownWindow, Detail: err.Error()}
	}
	wsId := w.Workspace
	ws, err := d.Workspaces.Get(wsId)
	if err != nil {
		return Effects{}, &Error{Kind: ErrUnknownWorkspace, Detail: err.Error()}
	}

	if ws.IsFloating(window) {
		if err := d.withInvariantCheck(wsId, func() error {
			if err := ws.RemoveWindow(window); err != nil {
				return err
			}
			return ws.InsertTiled(window, d.defaultOrientation)
		}); err != nil {
			return Effects{}, err
		}
		_ = d.Registry.SetPlacement(window, registry.Tiled)
	} else {
		if err := d.withInvariantCheck(wsId, func() error {
			return ws.RemoveWindow(window)
		}); err != nil {
			return Effects{}, err
		}
		_ = d.Registry.SetPlacement(window, registry.Floating)
		rect := d.initialFloatingRect(ws, d.Registry.Hints(window))
		ws.InsertFloating(window, rect)
	}

	updates, err := d.recomputeWorkspace(wsId)
	if err != nil {
		return Effects{}, err
	}
	return Effects{Geometry: updates}, nil
}
