package core

import (
	"stilch/internal/dispatch"
	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/plm"
	"stilch/internal/registry"
)

// InboundEvent is the tagged union of everything collaborators deliver to
// the core (§6 "Inbound events"): exactly one field is set per event,
// mirroring the teacher's NiriEvent shape (niri/niri_event.go) of nilable
// pointer fields rather than a Go interface hierarchy.
type InboundEvent struct {
	OutputAdded    *OutputAdded
	OutputRemoved  *OutputRemoved
	PointerMotion  *PointerMotion
	WindowMapped   *WindowMapped
	WindowUnmapped *WindowUnmapped
	Command        *dispatch.Command
	ConfigReload   *ConfigReload
}

// OutputAdded is a hot-plugged or startup-enumerated physical output
// (§6). MMSize/MMOrigin are zero when the backend can't report physical
// dimensions (PLM then falls back to a 1:1 mm-to-pixel mapping, see
// internal/plm.Output.dpi).
type OutputAdded struct {
	Name          string
	LogicalRegion geom.Rect
	MMSize        geom.Vec2[float64]
	MMOrigin      geom.Vec2[float64]
	Scale         float64
	Transform     plm.Rotation
	RefreshHz     float64
}

// OutputRemoved is a physical-output unplug event (§6).
type OutputRemoved struct {
	Name string
}

// PointerMotion is a raw pointer delta in device units (§6). HasDeviceDPI
// false means "unknown", falling back to plm.DefaultDeviceDPI.
type PointerMotion struct {
	DeviceId     string
	Dx, Dy       float64
	DeviceDPI    float64
	HasDeviceDPI bool
}

// WindowMapped is a newly mapped client surface (§6). It carries only
// the hints, mirroring §6's WindowMapped payload; Core.HandleWindowMapped
// runs them through the configured for_window rules to choose the
// destination workspace, placement and urgency.
type WindowMapped struct {
	Hints registry.Hints
}

// WindowUnmapped is a client surface unmap (§6).
type WindowUnmapped struct {
	Window ids.WindowId
}

// ConfigReload carries a freshly parsed config snapshot (§6, §5 "Config
// snapshots are immutable once loaded; a reload swaps the snapshot
// atomically at frame boundaries").
type ConfigReload struct {
	Data []byte
}

// Effect is the tagged union of outbound effects the core emits (§6
// "Outbound effects"), one field set per effect.
type Effect struct {
	SetWindowGeometry  *SetWindowGeometry
	SetWorkspaceVisible *SetWorkspaceVisible
	CursorWarp         *CursorWarp
	FocusChanged       *FocusChanged
	CloseWindow        *CloseWindow
}

// SetWindowGeometry is the per-window target rectangle effect (§6).
type SetWindowGeometry struct {
	Window  ids.WindowId
	Rect    geom.Rect
	Visible bool
}

// SetWorkspaceVisible announces which workspace a virtual output now
// displays (§6).
type SetWorkspaceVisible struct {
	VirtualOutput ids.VirtualOutputId
	Workspace     ids.WorkspaceId
}

// CursorWarp is a cursor relocation, whether a plain in-output move or a
// cross-output gap jump (§6); OutputName lets the render collaborator
// pick the right output-local coordinate space.
type CursorWarp struct {
	Logical    geom.Vec2[float64]
	OutputName string
}

// FocusChanged announces the newly focused window, or no window at all
// when HasWindow is false (§6).
type FocusChanged struct {
	Window    ids.WindowId
	HasWindow bool
}

// CloseWindow requests that the backend close window (§4.H "kill"). It
// is a request, not a confirmation: the window stays in the registry
// until a matching WindowUnmapped event arrives.
type CloseWindow struct {
	Window ids.WindowId
}

func geometryEffects(updates []dispatch.GeometryUpdate) []Effect {
	out := make([]Effect, 0, len(updates))
	for _, u := range updates {
		u := u
		out = append(out, Effect{SetWindowGeometry: &SetWindowGeometry{Window: u.Window, Rect: u.Rect, Visible: u.Visible}})
	}
	return out
}

func visibilityEffects(updates []dispatch.VisibilityUpdate) []Effect {
	out := make([]Effect, 0, len(updates))
	for _, u := range updates {
		u := u
		out = append(out, Effect{SetWorkspaceVisible: &SetWorkspaceVisible{VirtualOutput: u.VirtualOutput, Workspace: u.Workspace}})
	}
	return out
}

func effectsFromDispatch(e dispatch.Effects) []Effect {
	out := geometryEffects(e.Geometry)
	out = append(out, visibilityEffects(e.Visibility)...)
	if e.HasFocusChanged {
		out = append(out, Effect{FocusChanged: &FocusChanged{Window: e.FocusChanged, HasWindow: true}})
	}
	if e.HasKilled {
		out = append(out, Effect{CloseWindow: &CloseWindow{Window: e.Killed}})
	}
	return out
}
