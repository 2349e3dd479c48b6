package dispatch

import (
	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/layout"
	"stilch/internal/workspace"
)

// leafRects computes the current on-screen geometry of every leaf in ws,
// using its real virtual-output bounds when displayed so that directional
// tie-breaks (§4.C) operate on the same rectangles the user actually
// sees. An idle workspace gets a synthetic 65536x65536 canvas: relative
// geometry among its leaves is unaffected by the overall scale.
func (d *Dispatcher) leafRects(ws *workspace.Workspace) []layout.LeafRect {
	outer := geom.Rect{X: 0, Y: 0, W: 1 << 16, H: 1 << 16}
	if !ws.Idle() {
		if vo, err := d.VOM.Get(ws.DisplayedOn); err == nil {
			outer = geom.Rect{
				X: vo.Bounds.X + d.outerGap, Y: vo.Bounds.Y + d.outerGap,
				W: vo.Bounds.W - 2*d.outerGap, H: vo.Bounds.H - 2*d.outerGap,
			}
		}
	}
	return layout.ComputeGeometry(ws.Tree.Root, outer, d.innerGap, d.Registry)
}

// focusDirection resolves the §4.C "focus direction" command: it locates
// the window to move focus away from, ranks its workspace's other
// visible leaves by the tie-break rule, and focuses the winner. A
// NoNeighbour result is a quiet no-op, never an error (§7).
func (d *Dispatcher) focusDirection(cmd Command) (Effects, error) {
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

	rects := d.leafRects(ws)
	target, ok := layout.FocusDirection(rects, window, cmd.Direction, ws.Tree.FocusHistory())
	if !ok {
		return Effects{}, nil
	}
	return d.setFocus(target), nil
}

// focusWindow focuses a specific window directly (e.g. from a criteria
// match or IPC request).
func (d *Dispatcher) focusWindow(window ids.WindowId) (Effects, error) {
	if !d.Registry.Exists(window) {
		return Effects{}, &Error{Kind: ErrUnknownWindow}
	}
	return d.setFocus(window), nil
}

// focusMark focuses the window carrying mark, if any (i3/sway
// `[con_mark="..."] focus`). No window carrying the mark is a quiet
// no-op.
func (d *Dispatcher) focusMark(mark string) (Effects, error) {
	window, ok := d.Registry.FindMark(mark)
	if !ok {
		return Effects{}, nil
	}
	return d.setFocus(window), nil
}
