// Package plm implements the Physical Layout Manager (§4.F): millimetre-
// space output bounds, physical<->logical pixel conversion, and the
// pointer motion / gap-jump algorithm that gives cursor continuity across
// physical-output boundaries.
package plm

import (
	"stilch/internal/geom"
	"stilch/internal/ids"
)

// Rotation is one of the four output transforms §4.F names.
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// DefaultDeviceDPI is used for the motion algorithm's device-unit-to-mm
// conversion when the input device reports no DPI (§4.F step 1).
const DefaultDeviceDPI = 1000.0

// edgeEpsilon absorbs floating-point placement noise when restricting
// gap-jump candidates to outputs "wholly or partly on that side" (§4.F
// step 4).
const edgeEpsilon = 1e-6

// Output is one physical output's millimetre bounds, DPI, and rotation.
// LogicalBounds is kept in step with the Virtual Output Manager's view of
// the same physical output (internal/vom.PhysicalOutput.Bounds); plm does
// not import vom to avoid a package cycle, so the caller (internal/core)
// keeps the two in sync on every output add/hotplug/reconfigure.
type Output struct {
	Id            ids.PhysicalOutputId
	MMBounds      geom.RectF
	LogicalBounds geom.Rect
	DPIx, DPIy    float64 // logical pixels per millimetre, post-rotation
	Rotation      Rotation
}

// localRotated returns the offset of p within o's millimetre bounds, rotated
// into the output's logical orientation, along with the rotated
// millimetre extents.
func (o Output) localRotated(p geom.Vec2[float64]) (rx, ry, rw, rh float64) {
	ox := p.X - o.MMBounds.X
	oy := p.Y - o.MMBounds.Y
	mw, mh := o.MMBounds.W, o.MMBounds.H
	switch o.Rotation {
	case Rotate90:
		return oy, mw - ox, mh, mw
	case Rotate180:
		return mw - ox, mh - oy, mw, mh
	case Rotate270:
		return mh - oy, ox, mh, mw
	default:
		return ox, oy, mw, mh
	}
}

// dpi returns the effective per-axis DPI (logical pixels per
// millimetre). When no explicit DPI was configured it is derived from the
// logical size over the rotated millimetre extents, falling back to 1 on
// an axis with zero extent (keeps PhysicalToLogical well-defined for
// outputs built without DPI set, e.g. in tests).
func (o Output) dpi() (dpiX, dpiY float64) {
	if o.DPIx != 0 || o.DPIy != 0 {
		return o.DPIx, o.DPIy
	}
	_, _, rw, rh := o.localRotated(geom.Vec2[float64]{X: o.MMBounds.X, Y: o.MMBounds.Y})
	dpiX, dpiY = 1, 1
	if rw != 0 {
		dpiX = float64(o.LogicalBounds.W) / rw
	}
	if rh != 0 {
		dpiY = float64(o.LogicalBounds.H) / rh
	}
	return dpiX, dpiY
}

// PhysicalToLogical converts a millimetre-space point on output o to its
// logical pixel position, using the output's DPI per axis and transform
// (§4.F "physical_to_logical").
func (o Output) PhysicalToLogical(p geom.Vec2[float64]) geom.Vec2[float64] {
	rx, ry, _, _ := o.localRotated(p)
	dpiX, dpiY := o.dpi()
	return geom.Vec2[float64]{
		X: float64(o.LogicalBounds.X) + rx*dpiX,
		Y: float64(o.LogicalBounds.Y) + ry*dpiY,
	}
}

// LogicalToPhysical is the inverse of PhysicalToLogical (§4.F
// "logical_to_physical").
func (o Output) LogicalToPhysical(p geom.Vec2[float64]) geom.Vec2[float64] {
	dpiX, dpiY := o.dpi()
	rx := 0.0
	ry := 0.0
	if dpiX != 0 {
		rx = (p.X - float64(o.LogicalBounds.X)) / dpiX
	}
	if dpiY != 0 {
		ry = (p.Y - float64(o.LogicalBounds.Y)) / dpiY
	}

	mw, mh := o.MMBounds.W, o.MMBounds.H
	var ox, oy float64
	switch o.Rotation {
	case Rotate90:
		// inverse of (rx,ry)=(oy, mw-ox)
		oy = rx
		ox = mw - ry
	case Rotate180:
		ox = mw - rx
		oy = mh - ry
	case Rotate270:
		// inverse of (rx,ry)=(mh-oy, ox)
		ox = ry
		oy = mh - rx
	default:
		ox, oy = rx, ry
	}
	return geom.Vec2[float64]{X: o.MMBounds.X + ox, Y: o.MMBounds.Y + oy}
}

// MotionEvent is the outbound cursor-update effect emitted by Move.
type MotionEvent struct {
	Logical geom.Vec2[float64]
	Output  ids.PhysicalOutputId
	Warped  bool
}

// Manager holds the cursor's canonical millimetre position plus every
// known physical output's bounds (§4.F "Model").
type Manager struct {
	outputs map[ids.PhysicalOutputId]Output
	mmPos   geom.Vec2[float64]
	current ids.PhysicalOutputId
	hasCur  bool
}

// NewManager returns a Manager with no outputs and no cursor position.
func NewManager() *Manager {
	return &Manager{outputs: make(map[ids.PhysicalOutputId]Output)}
}

// SetOutput registers or updates an output's bounds. If no cursor
// position has been set yet, the cursor is placed at the output's
// millimetre-space centre.
func (m *Manager) SetOutput(o Output) {
	m.outputs[o.Id] = o
	if !m.hasCur {
		m.mmPos = geom.Vec2[float64]{X: o.MMBounds.CenterX(), Y: o.MMBounds.CenterY()}
		m.current = o.Id
		m.hasCur = true
	}
}

// RemoveOutput drops an output. If it was the output the cursor currently
// sits on, the caller must immediately call SetOutput/WarpTo to relocate
// the cursor; Move will otherwise operate against a stale mapping.
func (m *Manager) RemoveOutput(id ids.PhysicalOutputId) {
	delete(m.outputs, id)
}

// WarpTo forcibly relocates the cursor to a millimetre position on a
// given output, used for initial placement and hotplug recovery.
func (m *Manager) WarpTo(output ids.PhysicalOutputId, mm geom.Vec2[float64]) {
	m.mmPos = mm
	m.current = output
	m.hasCur = true
}

// Move applies a pointer delta in device units and returns the resulting
// motion event, implementing §4.F's seven-step algorithm.
func (m *Manager) Move(dx, dy, deviceDPI float64) MotionEvent {
	if deviceDPI <= 0 {
		deviceDPI = DefaultDeviceDPI
	}
	cur, ok := m.outputs[m.current]
	if !ok {
		return MotionEvent{Logical: geom.Vec2[float64]{}, Output: m.current}
	}

	scale := 25.4 / deviceDPI
	dmm := geom.Vec2[float64]{X: dx * scale, Y: dy * scale}
	candidate := geom.Vec2[float64]{X: m.mmPos.X + dmm.X, Y: m.mmPos.Y + dmm.Y}

	if cur.MMBounds.Contains(candidate.X, candidate.Y) {
		m.mmPos = candidate
		return m.emit(cur, false)
	}

	edge, crossed := geom.EdgeCrossedF(cur.MMBounds, m.mmPos, candidate)
	if !crossed {
		cx, cy := cur.MMBounds.Clamp(candidate.X, candidate.Y)
		m.mmPos = geom.Vec2[float64]{X: cx, Y: cy}
		return m.emit(cur, false)
	}

	dest, found := m.findNeighbour(cur, edge)
	if !found {
		cx, cy := cur.MMBounds.Clamp(candidate.X, candidate.Y)
		m.mmPos = geom.Vec2[float64]{X: cx, Y: cy}
		return m.emit(cur, false)
	}

	entryEdge := edge.Opposite()
	frac := perpendicularFraction(cur.MMBounds, m.mmPos, edge)
	overflow := overflowPastEdge(cur.MMBounds, candidate, edge)
	m.mmPos = warpDestination(dest.MMBounds, entryEdge, frac, overflow)
	m.current = dest.Id
	return m.emit(dest, true)
}

func (m *Manager) emit(o Output, warped bool) MotionEvent {
	return MotionEvent{Logical: o.PhysicalToLogical(m.mmPos), Output: o.Id, Warped: warped}
}

// findNeighbour implements §4.F steps 4-5: restrict to outputs on the far
// side of the crossed edge, require perpendicular-axis overlap, then pick
// the nearest by crossing-axis distance (ties broken by perpendicular
// centre distance).
func (m *Manager) findNeighbour(cur Output, edge geom.Edge) (Output, bool) {
	var best Output
	bestDist := 0.0
	bestPerp := 0.0
	found := false

	for id, cand := range m.outputs {
		if id == cur.Id {
			continue
		}
		if !onFarSide(cur.MMBounds, cand.MMBounds, edge) {
			continue
		}
		if !perpendicularOverlap(cur.MMBounds, cand.MMBounds, edge) {
			continue
		}
		dist := crossingDistance(cur.MMBounds, cand.MMBounds, edge)
		perp := perpendicularCenterDistance(cur.MMBounds, cand.MMBounds, edge)
		if !found || dist < bestDist || (dist == bestDist && perp < bestPerp) {
			best, bestDist, bestPerp, found = cand, dist, perp, true
		}
	}
	return best, found
}

func onFarSide(cur, cand geom.RectF, edge geom.Edge) bool {
	switch edge {
	case geom.Right:
		return cand.X >= cur.Right()-edgeEpsilon
	case geom.Left:
		return cand.Right() <= cur.X+edgeEpsilon
	case geom.Bottom:
		return cand.Y >= cur.Bottom()-edgeEpsilon
	case geom.Top:
		return cand.Bottom() <= cur.Y+edgeEpsilon
	default:
		return false
	}
}

func perpendicularOverlap(cur, cand geom.RectF, edge geom.Edge) bool {
	if edge == geom.Left || edge == geom.Right {
		return cur.Y < cand.Bottom() && cand.Y < cur.Bottom()
	}
	return cur.X < cand.Right() && cand.X < cur.Right()
}

func crossingDistance(cur, cand geom.RectF, edge geom.Edge) float64 {
	switch edge {
	case geom.Right:
		return cand.X - cur.Right()
	case geom.Left:
		return cur.X - cand.Right()
	case geom.Bottom:
		return cand.Y - cur.Bottom()
	case geom.Top:
		return cur.Y - cand.Bottom()
	default:
		return 0
	}
}

func perpendicularCenterDistance(cur, cand geom.RectF, edge geom.Edge) float64 {
	if edge == geom.Left || edge == geom.Right {
		return absF(cur.CenterY() - cand.CenterY())
	}
	return absF(cur.CenterX() - cand.CenterX())
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// perpendicularFraction is the source point's position along the
// perpendicular axis, expressed as a fraction of the source rectangle's
// extent on that axis (§4.F step 6 "preserve relative position on the
// perpendicular axis").
func perpendicularFraction(bounds geom.RectF, p geom.Vec2[float64], edge geom.Edge) float64 {
	var frac float64
	if edge == geom.Left || edge == geom.Right {
		if bounds.H != 0 {
			frac = (p.Y - bounds.Y) / bounds.H
		}
	} else {
		if bounds.W != 0 {
			frac = (p.X - bounds.X) / bounds.W
		}
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return frac
}

// overflowPastEdge returns how far candidate overshot cur's crossed edge,
// the "residual Δmm consumed crossing the gap" of §4.F step 6.
func overflowPastEdge(cur geom.RectF, candidate geom.Vec2[float64], edge geom.Edge) float64 {
	switch edge {
	case geom.Right:
		return candidate.X - cur.Right()
	case geom.Left:
		return cur.X - candidate.X
	case geom.Bottom:
		return candidate.Y - cur.Bottom()
	case geom.Top:
		return cur.Y - candidate.Y
	default:
		return 0
	}
}

// warpDestination snaps to dest's entry edge at the preserved
// perpendicular fraction, then consumes the overflow distance moving
// further into dest along the crossing axis, clamped to dest's bounds.
func warpDestination(dest geom.RectF, entryEdge geom.Edge, frac, overflow float64) geom.Vec2[float64] {
	switch entryEdge {
	case geom.Left:
		x := dest.X + overflow
		if x > dest.Right() {
			x = dest.Right()
		}
		return geom.Vec2[float64]{X: x, Y: dest.Y + frac*dest.H}
	case geom.Right:
		x := dest.Right() - overflow
		if x < dest.X {
			x = dest.X
		}
		return geom.Vec2[float64]{X: x, Y: dest.Y + frac*dest.H}
	case geom.Top:
		y := dest.Y + overflow
		if y > dest.Bottom() {
			y = dest.Bottom()
		}
		return geom.Vec2[float64]{X: dest.X + frac*dest.W, Y: y}
	case geom.Bottom:
		y := dest.Bottom() - overflow
		if y < dest.Y {
			y = dest.Y
		}
		return geom.Vec2[float64]{X: dest.X + frac*dest.W, Y: y}
	default:
		return geom.Vec2[float64]{X: dest.X, Y: dest.Y}
	}
}
