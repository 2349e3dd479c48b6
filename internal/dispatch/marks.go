package dispatch

// markSet assigns cmd.Mark to the resolved window, stealing it from
// whatever other window held it (i3/sway marks are unique).
func (d *Dispatcher) markSet(cmd Command) (Effects, error) {
	window, ok := d.resolveWindow(cmd.Window)
	if !ok {
		return Effects{}, &Error{Kind: ErrUnknownWindow}
	}
	if err := d.Registry.SetMark(window, cmd.Mark); err != nil {
		return Effects{}, &Error{Kind: ErrUnknownWindow, Detail: err.Error()}
	}
	return Effects{}, nil
}

// markClear removes cmd.Mark from the resolved window, if present.
func (d *Dispatcher) markClear(cmd Command) (Effects, error) {
	window, ok := d.resolveWindow(cmd.Window)
	if !ok {
		return Effects{}, &Error{Kind: ErrUnknownWindow}
	}
	if err := d.Registry.ClearMark(window, cmd.Mark); err != nil {
		return Effects{}, &Error{Kind: ErrUnknownWindow, Detail: err.Error()}
	}
	return Effects{}, nil
}
