package main

import (
	"fmt"
	"strings"

	"stilch/internal/config"
	"stilch/internal/core"
	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/plm"
	"stilch/internal/registry"
)

// WireInbound is the JSON-line wire shape a backend feeds to stilchd's
// socket (or stdin, in the default no-backend mode): a tagged union of
// nilable pointer fields, mirroring the teacher's NiriEvent
// (niri/niri_event.go) rather than a polymorphic JSON envelope.
type WireInbound struct {
	OutputAdded    *WireOutputAdded    `json:"output_added,omitempty"`
	OutputRemoved  *WireOutputRemoved  `json:"output_removed,omitempty"`
	PointerMotion  *WirePointerMotion  `json:"pointer_motion,omitempty"`
	WindowMapped   *WireWindowMapped   `json:"window_mapped,omitempty"`
	WindowUnmapped *WireWindowUnmapped `json:"window_unmapped,omitempty"`
	// Command carries the identical text a bindsym/for_window action
	// clause would (§6), e.g. "focus left" or "fullscreen toggle",
	// compiled through config.ParseCommand rather than its own enum
	// encoding.
	Command *string `json:"command,omitempty"`
}

type WireOutputAdded struct {
	Name      string  `json:"name"`
	X         int32   `json:"x"`
	Y         int32   `json:"y"`
	W         int32   `json:"w"`
	H         int32   `json:"h"`
	MMWidth   float64 `json:"mm_width"`
	MMHeight  float64 `json:"mm_height"`
	MMX       float64 `json:"mm_x"`
	MMY       float64 `json:"mm_y"`
	Scale     float64 `json:"scale"`
	Transform int     `json:"transform"`
	RefreshHz float64 `json:"refresh_hz"`
}

type WireOutputRemoved struct {
	Name string `json:"name"`
}

type WirePointerMotion struct {
	DeviceId     string  `json:"device_id"`
	Dx           float64 `json:"dx"`
	Dy           float64 `json:"dy"`
	DeviceDPI    float64 `json:"device_dpi"`
	HasDeviceDPI bool    `json:"has_device_dpi"`
}

type WireWindowMapped struct {
	Class string `json:"class"`
	Title string `json:"title"`
	Role  string `json:"role"`
	Type  string `json:"type"`

	MinW  int32 `json:"min_w"`
	MinH  int32 `json:"min_h"`
	MaxW  int32 `json:"max_w"`
	MaxH  int32 `json:"max_h"`
	PrefW int32 `json:"pref_w"`
	PrefH int32 `json:"pref_h"`
}

type WireWindowUnmapped struct {
	Window uint64 `json:"window"`
}

// toCore translates one decoded wire event into a core.InboundEvent,
// resolving a bare Command string through the same parser §6's keybinding
// grammar uses.
func (w *WireInbound) toCore() (core.InboundEvent, error) {
	switch {
	case w.OutputAdded != nil:
		oa := w.OutputAdded
		return core.InboundEvent{OutputAdded: &core.OutputAdded{
			Name:          oa.Name,
			LogicalRegion: geom.Rect{X: oa.X, Y: oa.Y, W: oa.W, H: oa.H},
			MMSize:        geom.Vec2[float64]{X: oa.MMWidth, Y: oa.MMHeight},
			MMOrigin:      geom.Vec2[float64]{X: oa.MMX, Y: oa.MMY},
			Scale:         oa.Scale,
			Transform:     plm.Rotation(oa.Transform),
			RefreshHz:     oa.RefreshHz,
		}}, nil
	case w.OutputRemoved != nil:
		return core.InboundEvent{OutputRemoved: &core.OutputRemoved{Name: w.OutputRemoved.Name}}, nil
	case w.PointerMotion != nil:
		pm := w.PointerMotion
		return core.InboundEvent{PointerMotion: &core.PointerMotion{
			DeviceId:     pm.DeviceId,
			Dx:           pm.Dx,
			Dy:           pm.Dy,
			DeviceDPI:    pm.DeviceDPI,
			HasDeviceDPI: pm.HasDeviceDPI,
		}}, nil
	case w.WindowMapped != nil:
		wm := w.WindowMapped
		return core.InboundEvent{WindowMapped: &core.WindowMapped{Hints: registry.Hints{
			Min:       geom.Vec2[int32]{X: wm.MinW, Y: wm.MinH},
			Max:       geom.Vec2[int32]{X: wm.MaxW, Y: wm.MaxH},
			Preferred: geom.Vec2[int32]{X: wm.PrefW, Y: wm.PrefH},
			Class:     wm.Class,
			Title:     wm.Title,
			Role:      wm.Role,
			Type:      wm.Type,
		}}}, nil
	case w.WindowUnmapped != nil:
		return core.InboundEvent{WindowUnmapped: &core.WindowUnmapped{Window: ids.WindowId(w.WindowUnmapped.Window)}}, nil
	case w.Command != nil:
		tokens := strings.Fields(*w.Command)
		bc, err := config.ParseCommand(tokens)
		if err != nil {
			return core.InboundEvent{}, err
		}
		if bc.Kind == config.CommandSwitchMode {
			// Bindsym mode switching is a property of key-chord matching
			// against raw input, which belongs to the input backend
			// (out of scope, §1); accepted here as a quiet no-op.
			return core.InboundEvent{}, nil
		}
		return core.InboundEvent{Command: &bc.Command}, nil
	default:
		return core.InboundEvent{}, fmt.Errorf("wire: event has no recognised field set")
	}
}

// WireOutbound is the JSON-line shape stilchd writes back for each
// effect core.Core.Apply/Frame produces (§6 outbound events).
type WireOutbound struct {
	SetWindowGeometry   *WireSetWindowGeometry   `json:"set_window_geometry,omitempty"`
	SetWorkspaceVisible *WireSetWorkspaceVisible `json:"set_workspace_visible,omitempty"`
	CursorWarp          *WireCursorWarp          `json:"cursor_warp,omitempty"`
	FocusChanged        *WireFocusChanged        `json:"focus_changed,omitempty"`
	CloseWindow         *WireCloseWindow         `json:"close_window,omitempty"`
}

type WireSetWindowGeometry struct {
	Window  uint64 `json:"window"`
	X       int32  `json:"x"`
	Y       int32  `json:"y"`
	W       int32  `json:"w"`
	H       int32  `json:"h"`
	Visible bool   `json:"visible"`
}

type WireSetWorkspaceVisible struct {
	VirtualOutput uint64 `json:"virtual_output"`
	Workspace     uint64 `json:"workspace"`
}

type WireCursorWarp struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	OutputName string  `json:"output_name"`
}

type WireFocusChanged struct {
	Window    uint64 `json:"window"`
	HasWindow bool   `json:"has_window"`
}

// WireCloseWindow is the outbound close request §4.H's "kill" command
// produces; the backend confirms the close by later sending a
// WireWindowUnmapped for the same window.
type WireCloseWindow struct {
	Window uint64 `json:"window"`
}

func fromCoreEffect(e core.Effect) WireOutbound {
	var w WireOutbound
	if e.SetWindowGeometry != nil {
		g := e.SetWindowGeometry
		w.SetWindowGeometry = &WireSetWindowGeometry{
			Window: uint64(g.Window), X: g.Rect.X, Y: g.Rect.Y, W: g.Rect.W, H: g.Rect.H, Visible: g.Visible,
		}
	}
	if e.SetWorkspaceVisible != nil {
		v := e.SetWorkspaceVisible
		w.SetWorkspaceVisible = &WireSetWorkspaceVisible{VirtualOutput: uint64(v.VirtualOutput), Workspace: uint64(v.Workspace)}
	}
	if e.CursorWarp != nil {
		c := e.CursorWarp
		w.CursorWarp = &WireCursorWarp{X: c.Logical.X, Y: c.Logical.Y, OutputName: c.OutputName}
	}
	if e.FocusChanged != nil {
		f := e.FocusChanged
		w.FocusChanged = &WireFocusChanged{Window: uint64(f.Window), HasWindow: f.HasWindow}
	}
	if e.CloseWindow != nil {
		w.CloseWindow = &WireCloseWindow{Window: uint64(e.CloseWindow.Window)}
	}
	return w
}
