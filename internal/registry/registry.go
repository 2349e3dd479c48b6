// Package registry implements the Window Registry (§4.B): the sole
// authoritative owner of per-window state. All other components hold
// only a WindowId; mutation happens exclusively through this package's
// methods, which the Command Dispatcher (internal/dispatch) calls.
package registry

import (
	"fmt"

	"stilch/internal/geom"
	"stilch/internal/ids"
)

// Placement is where a window currently lives (§3 ManagedWindow).
type Placement int

const (
	Tiled Placement = iota
	Floating
	Scratchpad
)

func (p Placement) String() string {
	switch p {
	case Tiled:
		return "tiled"
	case Floating:
		return "floating"
	case Scratchpad:
		return "scratchpad"
	default:
		return "unknown"
	}
}

// FullscreenMode is the three-tier fullscreen state (§4.G).
type FullscreenMode int

const (
	FullscreenNone FullscreenMode = iota
	FullscreenContainer
	FullscreenVirtualOutput
	FullscreenPhysicalOutput
)

// Hints carries the size-hint and identification fields supplied on
// window map (§6 WindowMapped).
type Hints struct {
	Min        geom.Vec2[int32]
	Max        geom.Vec2[int32]
	Preferred  geom.Vec2[int32]
	Class      string
	Title      string
	Role       string
	Type       string
}

// Window is the authoritative per-window record (§3 ManagedWindow).
type Window struct {
	Id          ids.WindowId
	Workspace   ids.WorkspaceId
	Placement   Placement
	Fullscreen  FullscreenMode
	Hints       Hints
	SavedRect   geom.Rect
	HasSaved    bool
	Urgent      bool
	Marks       map[string]struct{}
	FocusOrder  uint64 // monotonic stamp, higher = more recently focused
}

// HasMark reports whether the window carries the given mark.
func (w *Window) HasMark(mark string) bool {
	_, ok := w.Marks[mark]
	return ok
}

// ErrKind enumerates the error conditions §7 assigns to the registry.
type ErrKind int

const (
	ErrUnknownWindow ErrKind = iota
)

type Error struct {
	Kind ErrKind
	Id   ids.WindowId
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUnknownWindow:
		return fmt.Sprintf("registry: unknown window %d", e.Id)
	default:
		return "registry: unknown error"
	}
}

// Registry owns every ManagedWindow for the lifetime of the process.
type Registry struct {
	gen     *ids.Gen
	windows map[ids.WindowId]*Window
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{gen: ids.NewGen(), windows: make(map[ids.WindowId]*Window)}
}

// Insert creates a new window record with no workspace assignment and
// returns its id. The caller (Command Dispatcher) is responsible for
// assigning it to a workspace immediately afterward.
func (r *Registry) Insert(hints Hints) ids.WindowId {
	id := ids.WindowId(r.gen.Next())
	r.windows[id] = &Window{
		Id:        id,
		Workspace: ids.WorkspaceId(ids.None),
		Placement: Tiled,
		Hints:     hints,
		Marks:     make(map[string]struct{}),
	}
	return id
}

// Remove deletes a window record. Callers must first detach it from its
// workspace's layout tree / floating / scratchpad list.
func (r *Registry) Remove(id ids.WindowId) error {
	if _, ok := r.windows[id]; !ok {
		return &Error{Kind: ErrUnknownWindow, Id: id}
	}
	delete(r.windows, id)
	return nil
}

// Get returns the window record for id, or an UnknownWindow error.
func (r *Registry) Get(id ids.WindowId) (*Window, error) {
	w, ok := r.windows[id]
	if !ok {
		return nil, &Error{Kind: ErrUnknownWindow, Id: id}
	}
	return w, nil
}

// Exists reports whether id names a live window.
func (r *Registry) Exists(id ids.WindowId) bool {
	_, ok := r.windows[id]
	return ok
}

// SetWorkspace updates the registry's side of the workspace<->window
// link (§3 "Relationship invariant"). It does not touch the layout tree;
// the Command Dispatcher keeps both sides in lockstep.
func (r *Registry) SetWorkspace(id ids.WindowId, ws ids.WorkspaceId) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	w.Workspace = ws
	return nil
}

// SetPlacement updates a window's placement (Tiled/Floating/Scratchpad).
func (r *Registry) SetPlacement(id ids.WindowId, p Placement) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	w.Placement = p
	return nil
}

// SetFullscreen updates a window's fullscreen tier.
func (r *Registry) SetFullscreen(id ids.WindowId, mode FullscreenMode) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	w.Fullscreen = mode
	return nil
}

// SaveGeometry stores rect as the window's tiled geometry to restore to
// later (§4.G transition table: "None -> X" saves geometry).
func (r *Registry) SaveGeometry(id ids.WindowId, rect geom.Rect) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	w.SavedRect = rect
	w.HasSaved = true
	return nil
}

// RestoreGeometry returns the previously saved geometry, if any.
func (r *Registry) RestoreGeometry(id ids.WindowId) (geom.Rect, bool, error) {
	w, err := r.Get(id)
	if err != nil {
		return geom.Rect{}, false, err
	}
	return w.SavedRect, w.HasSaved, nil
}

// SetUrgent sets or clears the urgency flag.
func (r *Registry) SetUrgent(id ids.WindowId, urgent bool) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	w.Urgent = urgent
	return nil
}

// SetMark adds a mark to a window, clearing it from any other window that
// held it (marks are unique, i3/sway-style).
func (r *Registry) SetMark(id ids.WindowId, mark string) error {
	if _, err := r.Get(id); err != nil {
		return err
	}
	for _, w := range r.windows {
		delete(w.Marks, mark)
	}
	r.windows[id].Marks[mark] = struct{}{}
	return nil
}

// ClearMark removes a mark from a window.
func (r *Registry) ClearMark(id ids.WindowId, mark string) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	delete(w.Marks, mark)
	return nil
}

// FindMark returns the window carrying the given mark, if any.
func (r *Registry) FindMark(mark string) (ids.WindowId, bool) {
	for id, w := range r.windows {
		if w.HasMark(mark) {
			return id, true
		}
	}
	return 0, false
}

// Touch stamps a window as most-recently-focused using the provided
// monotonic counter value (the Command Dispatcher owns the counter so
// that focus ordering is consistent across workspaces).
func (r *Registry) Touch(id ids.WindowId, stamp uint64) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	w.FocusOrder = stamp
	return nil
}

// All returns every window id currently registered, in no particular
// order. Intended for invariant checks and snapshotting, not hot paths.
func (r *Registry) All() []ids.WindowId {
	out := make([]ids.WindowId, 0, len(r.windows))
	for id := range r.windows {
		out = append(out, id)
	}
	return out
}

// Len returns the number of registered windows.
func (r *Registry) Len() int { return len(r.windows) }

// Sizing is the narrow read-only view internal/layout needs to clamp leaf
// rectangles to a window's size hints, kept separate from *Registry so
// layout depends only on the slice of registry behavior it actually uses.
type Sizing interface {
	Hints(id ids.WindowId) Hints
}

// Hints returns the size hints for id, or the zero Hints if unknown (the
// zero value imposes no clamping, which is the safe default for a window
// the caller no longer tracks).
func (r *Registry) Hints(id ids.WindowId) Hints {
	w, ok := r.windows[id]
	if !ok {
		return Hints{}
	}
	return w.Hints
}
