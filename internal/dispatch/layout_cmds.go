package dispatch

// setContainerKind sets the focused window's parent container to the
// requested Split(h/v), Tabbed, or Stacked kind (§4.H layout command group: `split h`,
// `split v`, `layout tabbed`, `layout stacking`).
func (d *Dispatcher) setContainerKind(cmd Command) (Effects, error) {
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
		ws, err := d.Workspaces.Get(wsId)
		if err != nil {
			return err
		}
		return ws.Tree.SetParentKind(window, cmd.ContainerKind, cmd.Orientation)
	}); err != nil {
		return Effects{}, err
	}

	updates, err := d.recomputeWorkspace(wsId)
	if err != nil {
		return Effects{}, err
	}
	return Effects{Geometry: updates}, nil
}

// resize adjusts the focused window's split-parent ratio (§4.C
// "Resize"). Ratio renormalization can never break a structural
// invariant, so this skips the snapshot/rollback machinery other
// structural commands use.
func (d *Dispatcher) resize(cmd Command) (Effects, error) {
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
	if err := ws.Tree.Resize(window, cmd.ResizeAxis, cmd.ResizeDelta); err != nil {
		return Effects{}, err
	}

	updates, err := d.recomputeWorkspace(wsId)
	if err != nil {
		return Effects{}, err
	}
	return Effects{Geometry: updates}, nil
}
