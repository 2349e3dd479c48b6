// Package fullscreen implements the three-tier Fullscreen State Machine
// (§4.G): None/Container/VirtualOutput/PhysicalOutput transitions with
// the exclusivity invariants ("at most one window per virtual output in
// Container/VirtualOutput; at most one per physical output in
// PhysicalOutput") and the geometry-save/restore semantics the Command
// Dispatcher applies on transition.
package fullscreen

import (
	"stilch/internal/geom"
	"stilch/internal/ids"
)

// State is one of the four fullscreen tiers (§4.G).
type State int

const (
	None State = iota
	Container
	VirtualOutput
	PhysicalOutput
)

func (s State) String() string {
	switch s {
	case None:
		return "none"
	case Container:
		return "container"
	case VirtualOutput:
		return "virtual_output"
	case PhysicalOutput:
		return "physical_output"
	default:
		return "unknown"
	}
}

// Transition is the result of Manager.Enter: whichever window, if any,
// was demoted back to None to preserve an exclusivity invariant.
type Transition struct {
	Demoted   ids.WindowId
	HasDemote bool
}

// Manager tracks every window's fullscreen tier and the per-output
// occupant slots that enforce §4.G's exclusivity invariants.
type Manager struct {
	state      map[ids.WindowId]State
	voOccupant map[ids.VirtualOutputId]ids.WindowId
	poOccupant map[ids.PhysicalOutputId]ids.WindowId
	windowVO   map[ids.WindowId]ids.VirtualOutputId
	windowPO   map[ids.WindowId]ids.PhysicalOutputId
}

// New returns a Manager with every window implicitly in None.
func New() *Manager {
	return &Manager{
		state:      make(map[ids.WindowId]State),
		voOccupant: make(map[ids.VirtualOutputId]ids.WindowId),
		poOccupant: make(map[ids.PhysicalOutputId]ids.WindowId),
		windowVO:   make(map[ids.WindowId]ids.VirtualOutputId),
		windowPO:   make(map[ids.WindowId]ids.PhysicalOutputId),
	}
}

// State returns window's current fullscreen tier (None if never entered).
func (m *Manager) State(window ids.WindowId) State {
	return m.state[window]
}

// Enter transitions window into mode (Container, VirtualOutput, or
// PhysicalOutput), occupying the relevant output slot and demoting
// whatever window previously held it (§4.G "Entering either mode demotes
// any conflicting window to None"). Calling Enter with mode == None is
// equivalent to Exit.
func (m *Manager) Enter(window ids.WindowId, mode State, vo ids.VirtualOutputId, po ids.PhysicalOutputId) Transition {
	if mode == None {
		return Transition{Demoted: window, HasDemote: m.Exit(window)}
	}

	m.clearOccupancy(window)

	var t Transition
	switch mode {
	case Container, VirtualOutput:
		if prev, ok := m.voOccupant[vo]; ok && prev != window {
			m.demote(prev)
			t = Transition{Demoted: prev, HasDemote: true}
		}
		m.voOccupant[vo] = window
		m.windowVO[window] = vo
	case PhysicalOutput:
		if prev, ok := m.poOccupant[po]; ok && prev != window {
			m.demote(prev)
			t = Transition{Demoted: prev, HasDemote: true}
		}
		m.poOccupant[po] = window
		m.windowPO[window] = po
	}

	m.state[window] = mode
	return t
}

// Exit transitions window back to None, freeing whatever output slot it
// held. Returns whether the window had a non-None state to leave.
func (m *Manager) Exit(window ids.WindowId) bool {
	had := m.state[window] != None
	m.clearOccupancy(window)
	delete(m.state, window)
	return had
}

func (m *Manager) demote(window ids.WindowId) {
	m.clearOccupancy(window)
	delete(m.state, window)
}

func (m *Manager) clearOccupancy(window ids.WindowId) {
	if vo, ok := m.windowVO[window]; ok {
		if m.voOccupant[vo] == window {
			delete(m.voOccupant, vo)
		}
		delete(m.windowVO, window)
	}
	if po, ok := m.windowPO[window]; ok {
		if m.poOccupant[po] == window {
			delete(m.poOccupant, po)
		}
		delete(m.windowPO, window)
	}
}

// VirtualOutputOccupant returns the window currently in Container or
// VirtualOutput tier on vo, if any.
func (m *Manager) VirtualOutputOccupant(vo ids.VirtualOutputId) (ids.WindowId, bool) {
	id, ok := m.voOccupant[vo]
	return id, ok
}

// PhysicalOutputOccupant returns the window currently in PhysicalOutput
// tier on po, if any.
func (m *Manager) PhysicalOutputOccupant(po ids.PhysicalOutputId) (ids.WindowId, bool) {
	id, ok := m.poOccupant[po]
	return id, ok
}

// TargetRect computes the new target rectangle for a window entering
// mode, per §4.G's "Target rectangles" table. containerRect is the rect
// the layout tree assigns the window's leaf before fullscreen; voBounds
// and poBounds are the virtual/physical output bounds ignoring inner
// gaps and virtual-output partitioning respectively.
func TargetRect(mode State, containerRect, voBounds, poBounds geom.Rect) geom.Rect {
	switch mode {
	case Container:
		return containerRect
	case VirtualOutput:
		return voBounds
	case PhysicalOutput:
		return poBounds
	default:
		return containerRect
	}
}
