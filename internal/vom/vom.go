// Package vom implements the Virtual Output Manager (§4.E): the mapping
// from physical outputs to the virtual outputs (sub-regions or 1:1
// passthroughs) that workspaces actually display on, directional
// navigation between them, and hotplug add/remove handling.
package vom

import (
	"fmt"

	"stilch/internal/geom"
	"stilch/internal/ids"
)

// PhysicalOutput is a real display device in global logical-pixel space.
type PhysicalOutput struct {
	Id     ids.PhysicalOutputId
	Name   string
	Bounds geom.Rect
	Active bool
}

// VirtualOutput is a region of a physical output (or the whole of it, for
// the default 1:1 case) that workspaces are shown on.
type VirtualOutput struct {
	Id      ids.VirtualOutputId
	Name    string
	Backing ids.PhysicalOutputId
	Bounds  geom.Rect
	Active  bool
}

// ErrKind enumerates the VOM's share of §7's error taxonomy.
type ErrKind int

const (
	ErrUnknownOutput ErrKind = iota
	ErrRegionOverlap
	ErrRegionOutOfBounds
)

type Error struct {
	Kind ErrKind
	Name string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUnknownOutput:
		return fmt.Sprintf("vom: unknown output %q", e.Name)
	case ErrRegionOverlap:
		return fmt.Sprintf("vom: virtual output region for %q overlaps an existing one", e.Name)
	case ErrRegionOutOfBounds:
		return fmt.Sprintf("vom: virtual output region for %q exceeds its physical output's bounds", e.Name)
	default:
		return "vom: unknown error"
	}
}

// Manager owns every physical and virtual output for the process
// lifetime (§4.E).
type Manager struct {
	genPhysical *ids.Gen
	genVirtual  *ids.Gen

	physical map[ids.PhysicalOutputId]*PhysicalOutput
	virtual  map[ids.VirtualOutputId]*VirtualOutput

	virtualByName  map[string]ids.VirtualOutputId
	physicalByName map[string]ids.PhysicalOutputId
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{
		genPhysical:    ids.NewGen(),
		genVirtual:     ids.NewGen(),
		physical:       make(map[ids.PhysicalOutputId]*PhysicalOutput),
		virtual:        make(map[ids.VirtualOutputId]*VirtualOutput),
		virtualByName:  make(map[string]ids.VirtualOutputId),
		physicalByName: make(map[string]ids.PhysicalOutputId),
	}
}

// AddPhysicalOutput registers a newly discovered physical output (backend
// startup enumeration, or a hotplug add event per §4.E "Hotplug"). It does
// not create any virtual output; call EnsureDefaults afterward once
// config ingestion for this output has run.
func (m *Manager) AddPhysicalOutput(name string, bounds geom.Rect) ids.PhysicalOutputId {
	id := ids.PhysicalOutputId(m.genPhysical.Next())
	m.physical[id] = &PhysicalOutput{Id: id, Name: name, Bounds: bounds, Active: true}
	m.physicalByName[name] = id
	return id
}

// RemovePhysicalOutput marks a physical output and every virtual output
// backed by it inactive (§4.E "Hotplug: On remove"). It returns the ids
// of virtual outputs that were active and are now deactivated, so the
// caller can idle whatever workspace each one was displaying.
func (m *Manager) RemovePhysicalOutput(id ids.PhysicalOutputId) []ids.VirtualOutputId {
	po, ok := m.physical[id]
	if !ok {
		return nil
	}
	po.Active = false

	var affected []ids.VirtualOutputId
	for _, vo := range m.virtual {
		if vo.Backing == id && vo.Active {
			vo.Active = false
			affected = append(affected, vo.Id)
		}
	}
	return affected
}

// DeclareVirtualOutput ingests a `virtual_output NAME outputs PHYS region
// (x,y,w,h)` config directive (§6, §4.E "Configuration"). The region is
// validated against the physical output's bounds and against every other
// virtual output already declared on the same physical output.
func (m *Manager) DeclareVirtualOutput(name string, physicalName string, region geom.Rect) (ids.VirtualOutputId, error) {
	physId, ok := m.physicalByName[physicalName]
	if !ok {
		return 0, &Error{Kind: ErrUnknownOutput, Name: physicalName}
	}
	po := m.physical[physId]

	local := geom.Rect{X: po.Bounds.X + region.X, Y: po.Bounds.Y + region.Y, W: region.W, H: region.H}
	if !po.Bounds.ContainsRect(local) {
		return 0, &Error{Kind: ErrRegionOutOfBounds, Name: name}
	}
	for _, vo := range m.virtual {
		if vo.Backing != physId {
			continue
		}
		if vo.Bounds.Intersects(local) {
			return 0, &Error{Kind: ErrRegionOverlap, Name: name}
		}
	}

	id := ids.VirtualOutputId(m.genVirtual.Next())
	m.virtual[id] = &VirtualOutput{Id: id, Name: name, Backing: physId, Bounds: local, Active: true}
	m.virtualByName[name] = id
	return id, nil
}

// EnsureDefaults creates a default 1:1 virtual output for every active
// physical output that has no virtual output backed by it yet (§4.E
// "If a physical output has no declared virtual output, a default 1:1
// virtual output is created"). Returns the ids of newly created virtual
// outputs.
func (m *Manager) EnsureDefaults() []ids.VirtualOutputId {
	var created []ids.VirtualOutputId
	for _, po := range m.physical {
		if !po.Active {
			continue
		}
		if m.hasVirtualOutputFor(po.Id) {
			continue
		}
		id := ids.VirtualOutputId(m.genVirtual.Next())
		name := po.Name
		m.virtual[id] = &VirtualOutput{Id: id, Name: name, Backing: po.Id, Bounds: po.Bounds, Active: true}
		m.virtualByName[name] = id
		created = append(created, id)
	}
	return created
}

func (m *Manager) hasVirtualOutputFor(physId ids.PhysicalOutputId) bool {
	for _, vo := range m.virtual {
		if vo.Backing == physId {
			return true
		}
	}
	return false
}

// GetPhysical returns the physical output for id.
func (m *Manager) GetPhysical(id ids.PhysicalOutputId) (*PhysicalOutput, error) {
	po, ok := m.physical[id]
	if !ok {
		return nil, &Error{Kind: ErrUnknownOutput, Name: fmt.Sprintf("#%d", id)}
	}
	return po, nil
}

// Get returns the virtual output for id.
func (m *Manager) Get(id ids.VirtualOutputId) (*VirtualOutput, error) {
	vo, ok := m.virtual[id]
	if !ok {
		return nil, &Error{Kind: ErrUnknownOutput, Name: fmt.Sprintf("#%d", id)}
	}
	return vo, nil
}

// All returns every virtual output id, active or not.
func (m *Manager) All() []ids.VirtualOutputId {
	out := make([]ids.VirtualOutputId, 0, len(m.virtual))
	for id := range m.virtual {
		out = append(out, id)
	}
	return out
}

// Neighbour scans every other active virtual output and returns the
// nearest one in direction dir from source (§4.E "Directional
// navigation"): its projected rectangle onto the perpendicular axis must
// overlap source's, and its start on the primary axis must be on the
// requested side; distance is measured between adjacent edges in logical
// pixels. Returns false (a no-op, not an error — NoNeighbour per §7) if no
// candidate qualifies.
func (m *Manager) Neighbour(source ids.VirtualOutputId, dir geom.Edge) (ids.VirtualOutputId, bool) {
	src, ok := m.virtual[source]
	if !ok {
		return 0, false
	}

	var best ids.VirtualOutputId
	bestDist := int32(-1)
	haveBest := false

	for id, vo := range m.virtual {
		if id == source || !vo.Active {
			continue
		}
		dist, ok := candidateDistance(src.Bounds, vo.Bounds, dir)
		if !ok {
			continue
		}
		if !haveBest || dist < bestDist {
			best, bestDist, haveBest = id, dist, true
		}
	}
	return best, haveBest
}

// candidateDistance reports the edge-to-edge distance from src to cand in
// direction dir, and whether cand qualifies as a directional neighbour at
// all (perpendicular-axis overlap plus being strictly on the requested
// side).
func candidateDistance(src, cand geom.Rect, dir geom.Edge) (int32, bool) {
	switch dir {
	case geom.Left:
		if !overlaps1D(src.Y, src.Bottom(), cand.Y, cand.Bottom()) {
			return 0, false
		}
		if cand.Right() > src.X {
			return 0, false
		}
		return src.X - cand.Right(), true
	case geom.Right:
		if !overlaps1D(src.Y, src.Bottom(), cand.Y, cand.Bottom()) {
			return 0, false
		}
		if cand.X < src.Right() {
			return 0, false
		}
		return cand.X - src.Right(), true
	case geom.Top:
		if !overlaps1D(src.X, src.Right(), cand.X, cand.Right()) {
			return 0, false
		}
		if cand.Bottom() > src.Y {
			return 0, false
		}
		return src.Y - cand.Bottom(), true
	case geom.Bottom:
		if !overlaps1D(src.X, src.Right(), cand.X, cand.Right()) {
			return 0, false
		}
		if cand.Y < src.Bottom() {
			return 0, false
		}
		return cand.Y - src.Bottom(), true
	default:
		return 0, false
	}
}

func overlaps1D(aLo, aHi, bLo, bHi int32) bool {
	return aLo < bHi && bLo < aHi
}

// ClipWindowGeometry constrains rect to lie within vo's bounds (§4.E
// "Window constraint"). Tiled windows are clipped by intersection;
// floating windows (clampFully=true) are repositioned to lie entirely
// within bounds instead of being resized.
func ClipWindowGeometry(vo VirtualOutput, rect geom.Rect, clampFully bool) geom.Rect {
	if clampFully {
		x, y := rect.X, rect.Y
		if x+rect.W > vo.Bounds.Right() {
			x = vo.Bounds.Right() - rect.W
		}
		if y+rect.H > vo.Bounds.Bottom() {
			y = vo.Bounds.Bottom() - rect.H
		}
		if x < vo.Bounds.X {
			x = vo.Bounds.X
		}
		if y < vo.Bounds.Y {
			y = vo.Bounds.Y
		}
		return geom.Rect{X: x, Y: y, W: rect.W, H: rect.H}
	}
	if clipped, ok := rect.Intersection(vo.Bounds); ok {
		return clipped
	}
	return geom.Rect{X: vo.Bounds.X, Y: vo.Bounds.Y, W: 0, H: 0}
}
