// Package core wires the Window Registry, Layout Tree, Workspace
// Manager, Virtual Output Manager, Physical Layout Manager, and
// Fullscreen State Machine (B-G) behind the Command Dispatcher (H) into
// the single-threaded event loop §5 describes, translating the §6
// inbound/outbound event shapes at the boundary. It is the top-level
// type cmd/stilchd constructs and drives.
package core

import (
	"strings"

	"stilch/internal/config"
	"stilch/internal/dispatch"
	"stilch/internal/fullscreen"
	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/logx"
	"stilch/internal/plm"
	"stilch/internal/registry"
	"stilch/internal/vom"
	"stilch/internal/workspace"
)

// Core owns every subsystem for the process lifetime (§5 "the only
// process-wide state is the core struct, owned by the event loop").
type Core struct {
	Registry   *registry.Registry
	Workspaces *workspace.Manager
	VOM        *vom.Manager
	Fullscreen *fullscreen.Manager
	PLM        *plm.Manager
	Dispatch   *dispatch.Dispatcher

	Config *config.Config

	log *logx.Logger

	physicalByName  map[string]ids.PhysicalOutputId
	outputsDeclared map[string]bool
}

// New constructs a Core with n fixed global workspaces (§4.D). debug
// enables §4.H/§7's fatal-on-invariant-violation behavior.
func New(n int, debug bool) *Core {
	reg := registry.New()
	ws := workspace.NewManager(n)
	v := vom.NewManager()
	fs := fullscreen.New()
	d := dispatch.New(reg, ws, v, fs, debug)
	return &Core{
		Registry:        reg,
		Workspaces:      ws,
		VOM:             v,
		Fullscreen:      fs,
		PLM:             plm.NewManager(),
		Dispatch:        d,
		Config:          config.Default(),
		log:             logx.New("core"),
		physicalByName:  make(map[string]ids.PhysicalOutputId),
		outputsDeclared: make(map[string]bool),
	}
}

// LoadConfig parses and applies data as the initial config (startup, §6).
// Unlike ReloadConfig, a partially malformed file is still applied
// directive-by-directive (§6 "unknown directives emit a warning and are
// skipped") since there is no previous config to fall back to.
func (c *Core) LoadConfig(data []byte) []config.ParseError {
	cfg, errs := config.Parse(data)
	c.applyConfig(cfg)
	return errs
}

// ReloadConfig parses data and, only if it parsed cleanly, swaps it in as
// the active config (§6 ConfigReload, §7 "InvalidConfig{line, reason}...
// previous config remains active"). A non-empty return means the reload
// was rejected outright; the caller should log each ParseError.
func (c *Core) ReloadConfig(data []byte) []config.ParseError {
	cfg, errs := config.Parse(data)
	if len(errs) > 0 {
		return errs
	}
	c.applyConfig(cfg)
	return nil
}

// applyConfig installs cfg as the active snapshot (§5 "a reload swaps the
// snapshot atomically at frame boundaries" — the core's single-threaded
// event loop means this assignment already happens between frames, with
// no concurrent reader to observe a torn state), re-applies gaps, and
// declares virtual outputs for any physical output that has not had
// config-driven declarations applied to it yet. Live re-partitioning of
// an already-declared output's virtual-output topology on every reload
// is out of scope: §4.E's "Configuration" describes ingestion at startup
// and hotplug, not tearing down an active declaration.
func (c *Core) applyConfig(cfg *config.Config) {
	c.Config = cfg
	c.Dispatch.SetGaps(cfg.InnerGap, cfg.OuterGap)

	var declared []ids.VirtualOutputId
	for name := range c.physicalByName {
		declared = append(declared, c.declareVirtualOutputsFor(name)...)
	}
	c.assignIdleWorkspaces(append(declared, c.VOM.EnsureDefaults()...))
}

// declareVirtualOutputsFor ingests every virtual_output directive
// targeting name, once per physical output (§4.E "Configuration"), and
// returns the ids it declared in config order. A
// RegionOverlap/RegionOutOfBounds declaration is dropped per §7, logged,
// and EnsureDefaults (called by the caller) fills the gap with a 1:1
// passthrough.
func (c *Core) declareVirtualOutputsFor(name string) []ids.VirtualOutputId {
	if c.outputsDeclared[name] {
		return nil
	}
	c.outputsDeclared[name] = true
	var declared []ids.VirtualOutputId
	for _, voCfg := range c.Config.VirtualOutputs {
		if voCfg.PhysicalName != name {
			continue
		}
		voId, err := c.VOM.DeclareVirtualOutput(voCfg.Name, voCfg.PhysicalName, voCfg.Region)
		if err != nil {
			c.log.Warnf("config: %s", err)
			continue
		}
		declared = append(declared, voId)
		if len(voCfg.ExtraOutputs) > 0 {
			c.log.Warnf("config: virtual_output %s: merging multiple outputs (%s) is not supported; backed by %s only",
				voCfg.Name, strings.Join(voCfg.ExtraOutputs, ","), voCfg.PhysicalName)
		}
	}
	return declared
}

// assignIdleWorkspaces gives each virtual output in vos the lowest-
// numbered idle workspace, if it has no workspace yet (§4.E "Hotplug: On
// add... receives the lowest-numbered idle workspace" — applied here both
// to hotplug-created defaults and to startup's config-declared virtual
// outputs, since neither the i3/sway-derived config grammar of §6 nor
// spec.md gives a way to pin a specific workspace to a specific named
// virtual output).
func (c *Core) assignIdleWorkspaces(vos []ids.VirtualOutputId) []Effect {
	var effects []Effect
	for _, vo := range vos {
		if _, ok := c.Workspaces.WorkspaceOn(vo); ok {
			continue
		}
		wsId, ok := c.Workspaces.LowestIdle()
		if !ok {
			continue
		}
		if err := c.Workspaces.ShowOn(wsId, vo); err != nil {
			c.log.Warnf("assigning workspace %d to virtual output %d: %s", wsId, vo, err)
			continue
		}
		if _, ok := c.Workspaces.FocusedWorkspace(); !ok {
			c.Workspaces.Focus(wsId)
		}
		effects = append(effects, Effect{SetWorkspaceVisible: &SetWorkspaceVisible{VirtualOutput: vo, Workspace: wsId}})
		if updates, err := c.Dispatch.RecomputeWorkspace(wsId); err == nil {
			effects = append(effects, geometryEffects(updates)...)
		}
	}
	return effects
}

// HandleOutputAdded registers a newly discovered physical output (§6
// OutputAdded): it applies any `output NAME ...` config override (§6),
// declares config-specified virtual outputs targeting it, falls back to
// a default 1:1 virtual output if none were declared, keeps the Physical
// Layout Manager's millimetre model in sync (§4.F "LogicalBounds is kept
// in step with the Virtual Output Manager's view... the caller keeps the
// two in sync"), and assigns an idle workspace to anything newly shown.
func (c *Core) HandleOutputAdded(ev OutputAdded) []Effect {
	region := ev.LogicalRegion
	mmSize := ev.MMSize
	mmOrigin := ev.MMOrigin
	rotation := ev.Transform

	if oc, ok := c.Config.Outputs[ev.Name]; ok {
		if oc.HasPosition {
			region.X, region.Y = oc.Position.X, oc.Position.Y
		}
		if oc.HasTransform {
			rotation = plm.Rotation(oc.Transform)
		}
		if oc.HasPhysicalSize {
			mmSize = oc.PhysicalSizeMM
		}
		if oc.HasPhysicalPosition {
			mmOrigin = oc.PhysicalPositionMM
		}
	}

	physId := c.VOM.AddPhysicalOutput(ev.Name, region)
	c.physicalByName[ev.Name] = physId

	created := append(c.declareVirtualOutputsFor(ev.Name), c.VOM.EnsureDefaults()...)

	var dpiX, dpiY float64
	if mmSize.X > 0 {
		dpiX = float64(region.W) / mmSize.X
	}
	if mmSize.Y > 0 {
		dpiY = float64(region.H) / mmSize.Y
	}
	c.PLM.SetOutput(plm.Output{
		Id:            physId,
		MMBounds:      geom.RectF{X: mmOrigin.X, Y: mmOrigin.Y, W: mmSize.X, H: mmSize.Y},
		LogicalBounds: region,
		DPIx:          dpiX,
		DPIy:          dpiY,
		Rotation:      rotation,
	})

	return c.assignIdleWorkspaces(created)
}

// HandleOutputRemoved retires a physical output (§6 OutputRemoved, §4.E
// "Hotplug: On remove"): every virtual output it backed is deactivated,
// whichever workspace each was displaying becomes idle, and the Physical
// Layout Manager forgets its millimetre bounds. Windows are untouched —
// they remain in the registry, simply no longer rendered anywhere (§4.E
// "windows are retained... still in registry").
func (c *Core) HandleOutputRemoved(ev OutputRemoved) []Effect {
	physId, ok := c.physicalByName[ev.Name]
	if !ok {
		return nil
	}
	delete(c.physicalByName, ev.Name)
	delete(c.outputsDeclared, ev.Name)

	for _, vo := range c.VOM.RemovePhysicalOutput(physId) {
		if wsId, ok := c.Workspaces.WorkspaceOn(vo); ok {
			_ = c.Workspaces.MarkIdle(wsId)
		}
	}
	c.PLM.RemoveOutput(physId)
	return nil
}

// HandlePointerMotion applies one raw pointer delta (§6 PointerMotion)
// through the Physical Layout Manager's gap-jump algorithm (§4.F) and
// translates the result into a CursorWarp effect naming the destination
// output, regardless of whether a jump actually occurred.
func (c *Core) HandlePointerMotion(ev PointerMotion) []Effect {
	dpi := plm.DefaultDeviceDPI
	if ev.HasDeviceDPI && ev.DeviceDPI > 0 {
		dpi = ev.DeviceDPI
	}
	motion := c.PLM.Move(ev.Dx, ev.Dy, dpi)

	name := ""
	if po, err := c.VOM.GetPhysical(motion.Output); err == nil {
		name = po.Name
	}
	return []Effect{{CursorWarp: &CursorWarp{Logical: motion.Logical, OutputName: name}}}
}

// HandleWindowMapped runs a newly mapped window's hints through the
// configured for_window rules (SPEC_FULL.md supplemented feature) to
// decide its destination workspace, initial placement, and urgency, then
// inserts it via the Command Dispatcher (§6 WindowMapped).
func (c *Core) HandleWindowMapped(ev WindowMapped) (ids.WindowId, []Effect, error) {
	floating, wsId, hasWs, urgent := c.Config.WindowRules.Apply(ev.Hints)
	if !hasWs {
		if focused, ok := c.Workspaces.FocusedWorkspace(); ok {
			wsId = focused
		} else if all := c.Workspaces.All(); len(all) > 0 {
			wsId = all[0]
		}
	}

	window, effects, err := c.Dispatch.MapWindow(ev.Hints, wsId, floating)
	if err != nil {
		return 0, nil, err
	}
	if urgent {
		_ = c.Registry.SetUrgent(window, true)
	}
	return window, effectsFromDispatch(effects), nil
}

// HandleWindowUnmapped retires a window (§6 WindowUnmapped).
func (c *Core) HandleWindowUnmapped(ev WindowUnmapped) ([]Effect, error) {
	effects, err := c.Dispatch.UnmapWindow(ev.Window)
	return effectsFromDispatch(effects), err
}

// HandleCommand routes a user command to the Command Dispatcher (§4.H,
// §6 Command). NoNeighbour and similar quiet no-ops simply produce no
// effects, matching §7's "treated as a quiet no-op, not surfaced to the
// user".
func (c *Core) HandleCommand(cmd dispatch.Command) ([]Effect, error) {
	effects, err := c.Dispatch.Dispatch(cmd)
	return effectsFromDispatch(effects), err
}

// Apply routes one InboundEvent to its handler and returns whatever
// outbound effects it produced. Recoverable errors are logged rather
// than propagated (§7 "recoverable errors are logged and the command is
// a no-op") since Apply is the core's synchronous boundary; there is no
// caller further up the stack to hand an error to.
func (c *Core) Apply(ev InboundEvent) []Effect {
	switch {
	case ev.OutputAdded != nil:
		return c.HandleOutputAdded(*ev.OutputAdded)
	case ev.OutputRemoved != nil:
		return c.HandleOutputRemoved(*ev.OutputRemoved)
	case ev.PointerMotion != nil:
		return c.HandlePointerMotion(*ev.PointerMotion)
	case ev.WindowMapped != nil:
		_, effects, err := c.HandleWindowMapped(*ev.WindowMapped)
		if err != nil {
			c.log.Warnf("window map: %s", err)
		}
		return effects
	case ev.WindowUnmapped != nil:
		effects, err := c.HandleWindowUnmapped(*ev.WindowUnmapped)
		if err != nil {
			c.log.Warnf("window unmap: %s", err)
		}
		return effects
	case ev.Command != nil:
		effects, err := c.HandleCommand(*ev.Command)
		if err != nil {
			c.log.Warnf("command: %s", err)
		}
		return effects
	case ev.ConfigReload != nil:
		if errs := c.ReloadConfig(ev.ConfigReload.Data); len(errs) > 0 {
			for _, e := range errs {
				c.log.Warnf("config reload: %s", e.Error())
			}
		}
		return nil
	default:
		return nil
	}
}

// Frame processes one batch of inbound events in the fixed per-tick
// order §5 specifies: "drain input -> apply commands -> drain hotplug ->
// recompute geometry -> publish snapshot." Each handler already
// recomputes any geometry it affects synchronously, so there is no
// separate recompute pass; Frame's job is purely to order the batch
// before applying it one event at a time.
func (c *Core) Frame(events []InboundEvent) []Effect {
	var input, hotplug, reload []InboundEvent
	for _, ev := range events {
		switch {
		case ev.OutputAdded != nil, ev.OutputRemoved != nil:
			hotplug = append(hotplug, ev)
		case ev.ConfigReload != nil:
			reload = append(reload, ev)
		default:
			input = append(input, ev)
		}
	}

	var effects []Effect
	for _, batch := range [][]InboundEvent{input, hotplug, reload} {
		for _, ev := range batch {
			effects = append(effects, c.Apply(ev)...)
		}
	}
	return effects
}
