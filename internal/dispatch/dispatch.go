// Package dispatch implements the Command Dispatcher (§4.H): the sole
// legal mutator of the Window Registry, Layout Tree, Workspace Manager,
// Virtual Output Manager, and Fullscreen State Machine. Every command is
// a function from (current state, command) to (next state, emitted
// effects); after each command the dispatcher checks invariants and
// recomputes geometry for affected workspaces, rolling back on
// violation (and panicking as well in debug builds).
package dispatch

import (
	"fmt"

	"stilch/internal/fullscreen"
	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/layout"
	"stilch/internal/logx"
	"stilch/internal/registry"
	"stilch/internal/vom"
	"stilch/internal/workspace"
)

// Kind enumerates the command categories §4.H groups commands into:
// focus, move, layout, resize, workspace, fullscreen, kill.
type Kind int

const (
	KindFocusDirection Kind = iota
	KindFocusWindow
	KindFocusMark
	KindMoveWindowDirection
	KindMoveWorkspaceToOutput
	KindSetContainerKind
	KindResize
	KindWorkspaceSwitch
	KindWorkspaceBackAndForth
	KindSetFullscreen
	KindKillWindow
	KindToggleFloating
	KindMarkSet
	KindMarkClear
	KindScratchpadShow
	KindScratchpadMove
)

// Command is the dispatcher's single input shape; only the fields
// relevant to Kind are read.
type Command struct {
	Kind           Kind
	Window         ids.WindowId // 0 means "the currently focused window"
	Direction      geom.Edge
	Workspace      ids.WorkspaceId
	Mark           string
	FullscreenMode fullscreen.State
	ResizeAxis     layout.Orientation
	ResizeDelta    float64
	ContainerKind  layout.Kind
	Orientation    layout.Orientation
}

// GeometryUpdate is one window's recomputed target rectangle, destined
// for the `SetWindowGeometry` outbound effect (§6).
type GeometryUpdate struct {
	Window  ids.WindowId
	Rect    geom.Rect
	Visible bool
}

// VisibilityUpdate mirrors the `SetWorkspaceVisible` outbound effect.
type VisibilityUpdate struct {
	VirtualOutput ids.VirtualOutputId
	Workspace     ids.WorkspaceId
}

// Effects is everything a Command produced, for the caller (internal/core)
// to translate into outbound protocol effects (§6).
type Effects struct {
	Geometry        []GeometryUpdate
	Visibility      []VisibilityUpdate
	FocusChanged    ids.WindowId
	HasFocusChanged bool
	Killed          ids.WindowId
	HasKilled       bool
}

// ErrKind enumerates the dispatcher's share of §7's error taxonomy.
type ErrKind int

const (
	ErrUnknownWindow ErrKind = iota
	ErrUnknownWorkspace
	ErrInvariantViolation
)

type Error struct {
	Kind   ErrKind
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUnknownWindow:
		return fmt.Sprintf("dispatch: unknown window: %s", e.Detail)
	case ErrUnknownWorkspace:
		return fmt.Sprintf("dispatch: unknown workspace: %s", e.Detail)
	case ErrInvariantViolation:
		return fmt.Sprintf("dispatch: invariant violation: %s", e.Detail)
	default:
		return "dispatch: unknown error"
	}
}

// Dispatcher wires the Window Registry, Workspace Manager, Virtual Output
// Manager, and Fullscreen State Machine together behind a single mutating
// entry point (§4.H).
type Dispatcher struct {
	Registry   *registry.Registry
	Workspaces *workspace.Manager
	VOM        *vom.Manager
	Fullscreen *fullscreen.Manager

	log                *logx.Logger
	debug              bool // §7: InvariantViolation is fatal in debug, logged+rolled-back in release
	innerGap, outerGap int32
	defaultOrientation layout.Orientation
	focusSeq           uint64
	focusedWindow      ids.WindowId
	hasFocusedWindow   bool
}

// New returns a Dispatcher over the given subsystem managers.
func New(reg *registry.Registry, ws *workspace.Manager, v *vom.Manager, fs *fullscreen.Manager, debug bool) *Dispatcher {
	return &Dispatcher{
		Registry:           reg,
		Workspaces:         ws,
		VOM:                v,
		Fullscreen:         fs,
		log:                logx.New("dispatch"),
		debug:              debug,
		innerGap:           4,
		outerGap:           0,
		defaultOrientation: layout.Horizontal,
	}
}

// SetGaps configures the inner (between windows) and outer (workspace
// edge) gap sizes from the `gaps inner|outer N` config directive (§6).
func (d *Dispatcher) SetGaps(inner, outer int32) {
	d.innerGap, d.outerGap = inner, outer
}

// Dispatch routes cmd to its category handler (§4.H). It is the sole
// entry point that mutates B-G.
func (d *Dispatcher) Dispatch(cmd Command) (Effects, error) {
	switch cmd.Kind {
	case KindFocusDirection:
		return d.focusDirection(cmd)
	case KindFocusWindow:
		return d.focusWindow(cmd.Window)
	case KindFocusMark:
		return d.focusMark(cmd.Mark)
	case KindMoveWindowDirection:
		return d.moveWindowDirection(cmd)
	case KindMoveWorkspaceToOutput:
		return d.moveWorkspaceToOutputInDirection(cmd)
	case KindSetContainerKind:
		return d.setContainerKind(cmd)
	case KindResize:
		return d.resize(cmd)
	case KindWorkspaceSwitch:
		return d.workspaceSwitch(cmd.Workspace)
	case KindWorkspaceBackAndForth:
		return d.workspaceBackAndForth()
	case KindSetFullscreen:
		return d.setFullscreen(cmd)
	case KindKillWindow:
		return d.killWindow(cmd)
	case KindToggleFloating:
		return d.toggleFloating(cmd)
	case KindMarkSet:
		return d.markSet(cmd)
	case KindMarkClear:
		return d.markClear(cmd)
	case KindScratchpadShow:
		return d.scratchpadShow(cmd)
	case KindScratchpadMove:
		return d.scratchpadMove(cmd)
	default:
		return Effects{}, fmt.Errorf("dispatch: unknown command kind %d", cmd.Kind)
	}
}

// resolveWindow returns cmd.Window, falling back to the currently focused
// window when cmd.Window is the zero value.
func (d *Dispatcher) resolveWindow(window ids.WindowId) (ids.WindowId, bool) {
	if window != 0 {
		return window, true
	}
	return d.focusedWindow, d.hasFocusedWindow
}

// setFocus updates the dispatcher-wide and per-workspace focus state and
// returns the effect describing the change.
func (d *Dispatcher) setFocus(window ids.WindowId) Effects {
	d.focusedWindow = window
	d.hasFocusedWindow = true
	d.focusSeq++
	_ = d.Registry.Touch(window, d.focusSeq)
	if w, err := d.Registry.Get(window); err == nil {
		if ws, err := d.Workspaces.Get(w.Workspace); err == nil {
			ws.Tree.SetFocus(window)
		}
	}
	return Effects{FocusChanged: window, HasFocusChanged: true}
}
