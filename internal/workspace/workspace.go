// Package workspace implements the Workspace Manager (§4.D): a fixed pool
// of global workspaces, each owning a layout tree, a floating-window list,
// and a per-workspace focus history, plus the scratchpad overlay and
// workspace-level back_and_forth toggle the distilled spec left out.
package workspace

import (
	"fmt"

	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/layout"
)

// ScratchpadId is the reserved workspace id backing the scratchpad
// overlay (§9 open question resolution, SPEC_FULL.md "SUPPLEMENTED
// FEATURES"). It is never a target of ShowOn and never appears in a
// Manager's ordered workspace list.
const ScratchpadId = ids.WorkspaceId(0)

// Workspace is one of the fixed global workspaces (§4.D), or the
// scratchpad overlay when Id == ScratchpadId.
type Workspace struct {
	Id           ids.WorkspaceId
	Tree         *layout.Tree
	Floating     []ids.WindowId
	floatingRect map[ids.WindowId]geom.Rect
	DisplayedOn  ids.VirtualOutputId // ids.None sentinel if idle

	focusHistory []ids.WindowId
}

func newWorkspace(id ids.WorkspaceId) *Workspace {
	return &Workspace{
		Id:           id,
		Tree:         layout.New(),
		floatingRect: make(map[ids.WindowId]geom.Rect),
		DisplayedOn:  ids.VirtualOutputId(ids.None),
	}
}

// Idle reports whether no virtual output currently displays this
// workspace.
func (w *Workspace) Idle() bool {
	return w.DisplayedOn == ids.VirtualOutputId(ids.None)
}

// Empty reports whether the workspace holds no windows at all (tiled or
// floating). Per §4.D, empty workspaces are never auto-destroyed.
func (w *Workspace) Empty() bool {
	return w.Tree.Empty() && len(w.Floating) == 0
}

// touch records window as most-recently-focused within this workspace.
func (w *Workspace) touch(window ids.WindowId) {
	for i, h := range w.focusHistory {
		if h == window {
			w.focusHistory = append(w.focusHistory[:i], w.focusHistory[i+1:]...)
			break
		}
	}
	w.focusHistory = append(w.focusHistory, window)
}

// untrack drops window from the focus history, e.g. on removal.
func (w *Workspace) untrack(window ids.WindowId) {
	for i, h := range w.focusHistory {
		if h == window {
			w.focusHistory = append(w.focusHistory[:i], w.focusHistory[i+1:]...)
			return
		}
	}
}

// FocusedWindow returns the most recently focused window in this
// workspace (tiled or floating), if any.
func (w *Workspace) FocusedWindow() (ids.WindowId, bool) {
	if len(w.focusHistory) == 0 {
		return 0, false
	}
	return w.focusHistory[len(w.focusHistory)-1], true
}

// InsertTiled adds window to the tiled layout tree next to the currently
// focused tiled leaf.
func (w *Workspace) InsertTiled(window ids.WindowId, orientation layout.Orientation) error {
	if _, err := w.Tree.Insert(window, orientation); err != nil {
		return err
	}
	w.touch(window)
	return nil
}

// InsertFloating adds window to the floating list at the given initial
// rectangle (computed by the caller via layout.ClampToHints against the
// hosting virtual output's bounds).
func (w *Workspace) InsertFloating(window ids.WindowId, rect geom.Rect) {
	w.Floating = append(w.Floating, window)
	w.floatingRect[window] = rect
	w.touch(window)
}

// FloatingRect returns the last-known rectangle of a floating window.
func (w *Workspace) FloatingRect(window ids.WindowId) (geom.Rect, bool) {
	r, ok := w.floatingRect[window]
	return r, ok
}

// SetFloatingRect updates a floating window's current rectangle, e.g.
// after a move/resize command or a virtual-output clamp (§4.E "Window
// constraint").
func (w *Workspace) SetFloatingRect(window ids.WindowId, rect geom.Rect) {
	w.floatingRect[window] = rect
}

// IsFloating reports whether window is currently in this workspace's
// floating list.
func (w *Workspace) IsFloating(window ids.WindowId) bool {
	for _, f := range w.Floating {
		if f == window {
			return true
		}
	}
	return false
}

// RemoveWindow removes window from wherever it lives in this workspace
// (tiled tree or floating list).
func (w *Workspace) RemoveWindow(window ids.WindowId) error {
	if _, ok := w.Tree.FindLeaf(window); ok {
		if err := w.Tree.Remove(window); err != nil {
			return err
		}
		w.untrack(window)
		return nil
	}
	for i, f := range w.Floating {
		if f == window {
			w.Floating = append(w.Floating[:i], w.Floating[i+1:]...)
			delete(w.floatingRect, window)
			w.untrack(window)
			return nil
		}
	}
	return fmt.Errorf("workspace: window %d not present in workspace %d", window, w.Id)
}

// ErrKind enumerates workspace-level error conditions (§7).
type ErrKind int

const (
	ErrUnknownWorkspace ErrKind = iota
)

type Error struct {
	Kind ErrKind
	Id   ids.WorkspaceId
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUnknownWorkspace:
		return fmt.Sprintf("workspace: unknown workspace %d", e.Id)
	default:
		return "workspace: unknown error"
	}
}

// Manager owns the fixed pool of global workspaces (§4.D) plus the
// scratchpad overlay and the back_and_forth toggle.
type Manager struct {
	order      []ids.WorkspaceId
	workspaces map[ids.WorkspaceId]*Workspace
	voToWs     map[ids.VirtualOutputId]ids.WorkspaceId

	focused         ids.WorkspaceId
	hasFocused      bool
	previousFocused ids.WorkspaceId
	hasPrevFocused  bool
}

// NewManager creates a fixed pool of n global workspaces numbered 1..n,
// plus the scratchpad overlay workspace.
func NewManager(n int) *Manager {
	m := &Manager{
		workspaces: make(map[ids.WorkspaceId]*Workspace, n+1),
		voToWs:     make(map[ids.VirtualOutputId]ids.WorkspaceId),
	}
	m.workspaces[ScratchpadId] = newWorkspace(ScratchpadId)
	for i := 1; i <= n; i++ {
		id := ids.WorkspaceId(i)
		m.workspaces[id] = newWorkspace(id)
		m.order = append(m.order, id)
	}
	return m
}

// Get returns the workspace for id, or UnknownWorkspace.
func (m *Manager) Get(id ids.WorkspaceId) (*Workspace, error) {
	w, ok := m.workspaces[id]
	if !ok {
		return nil, &Error{Kind: ErrUnknownWorkspace, Id: id}
	}
	return w, nil
}

// All returns the ordered list of the fixed global workspaces (excludes
// the scratchpad overlay).
func (m *Manager) All() []ids.WorkspaceId {
	out := make([]ids.WorkspaceId, len(m.order))
	copy(out, m.order)
	return out
}

// ShowOn assigns workspace to display on virtual output vo (§4.D
// "show_on"). If another virtual output was displaying workspace, that
// virtual output becomes idle. If vo was already displaying a different
// workspace, that workspace becomes idle (not displayed anywhere).
func (m *Manager) ShowOn(workspaceId ids.WorkspaceId, vo ids.VirtualOutputId) error {
	ws, err := m.Get(workspaceId)
	if err != nil {
		return err
	}
	if ws.DisplayedOn != ids.VirtualOutputId(ids.None) && ws.DisplayedOn != vo {
		delete(m.voToWs, ws.DisplayedOn)
	}
	if prevWsId, ok := m.voToWs[vo]; ok && prevWsId != workspaceId {
		if prevWs, ok := m.workspaces[prevWsId]; ok {
			prevWs.DisplayedOn = ids.VirtualOutputId(ids.None)
		}
	}
	m.voToWs[vo] = workspaceId
	ws.DisplayedOn = vo
	return nil
}

// MarkIdle detaches any virtual output currently displaying workspaceId.
// Used when a virtual output is deactivated by a physical-output hotplug
// remove (§4.E "Hotplug").
func (m *Manager) MarkIdle(workspaceId ids.WorkspaceId) error {
	ws, err := m.Get(workspaceId)
	if err != nil {
		return err
	}
	if ws.DisplayedOn == ids.VirtualOutputId(ids.None) {
		return nil
	}
	delete(m.voToWs, ws.DisplayedOn)
	ws.DisplayedOn = ids.VirtualOutputId(ids.None)
	return nil
}

// WorkspaceOn returns the workspace currently displayed on vo, if any.
func (m *Manager) WorkspaceOn(vo ids.VirtualOutputId) (ids.WorkspaceId, bool) {
	id, ok := m.voToWs[vo]
	return id, ok
}

// LowestIdle returns the lowest-numbered workspace with no virtual
// output displaying it, used when a physical output is hotplugged in
// (§4.E "On add: ... receives the lowest-numbered idle workspace").
func (m *Manager) LowestIdle() (ids.WorkspaceId, bool) {
	for _, id := range m.order {
		if m.workspaces[id].Idle() {
			return id, true
		}
	}
	return 0, false
}

// Focus records workspaceId as the currently focused workspace, rotating
// the previous focus into the back_and_forth slot (§4.D supplemented
// feature).
func (m *Manager) Focus(workspaceId ids.WorkspaceId) {
	if m.hasFocused && m.focused != workspaceId {
		m.previousFocused = m.focused
		m.hasPrevFocused = true
	}
	m.focused = workspaceId
	m.hasFocused = true
}

// FocusedWorkspace returns the currently focused workspace, if any has
// been focused yet.
func (m *Manager) FocusedWorkspace() (ids.WorkspaceId, bool) {
	return m.focused, m.hasFocused
}

// BackAndForth returns the workspace that was focused immediately before
// the current one, implementing i3/sway's `workspace back_and_forth`
// (§4.D supplemented feature). Returns false if there is no prior focus
// to toggle back to.
func (m *Manager) BackAndForth() (ids.WorkspaceId, bool) {
	return m.previousFocused, m.hasPrevFocused
}
