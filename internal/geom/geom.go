// Package geom implements the geometry primitives of §4.A: integer
// logical-pixel rectangles and float64 millimetre rectangles, shared by
// the layout tree, the virtual output manager, and the physical layout
// manager.
//
// Logical-pixel rectangles are half-open: [x, x+w) x [y, y+h).
package geom

import "golang.org/x/exp/constraints"

// Vec2 is a 2D vector generic over any signed numeric type. Unlike the
// teacher's hand-rolled Numeric constraint (niri/niri_types.go), this
// reuses golang.org/x/exp/constraints, the same package gioui and helix
// pull in for generic numeric code.
type Vec2[T constraints.Float | constraints.Signed] struct {
	X, Y T
}

// Edge identifies one side of a rectangle. Values are ordered to match
// the tie-break rule in §4.A: Left < Right < Top < Bottom.
type Edge int

const (
	Left Edge = iota
	Right
	Top
	Bottom
)

func (e Edge) String() string {
	switch e {
	case Left:
		return "left"
	case Right:
		return "right"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Opposite returns the edge on the opposite side of a rectangle.
func (e Edge) Opposite() Edge {
	switch e {
	case Left:
		return Right
	case Right:
		return Left
	case Top:
		return Bottom
	case Bottom:
		return Top
	default:
		return e
	}
}

// Rect is an integer logical-pixel rectangle, half-open on both axes.
type Rect struct {
	X, Y, W, H int32
}

// Right returns the exclusive right edge (X + W).
func (r Rect) Right() int32 { return r.X + r.W }

// Bottom returns the exclusive bottom edge (Y + H).
func (r Rect) Bottom() int32 { return r.Y + r.H }

// CenterX returns the rectangle's horizontal center, as a float to
// preserve odd-width precision for tie-break comparisons.
func (r Rect) CenterX() float64 { return float64(r.X) + float64(r.W)/2 }

// CenterY returns the rectangle's vertical center.
func (r Rect) CenterY() float64 { return float64(r.Y) + float64(r.H)/2 }

// Empty reports whether the rectangle covers zero area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether point (x, y) lies within the half-open rectangle.
func (r Rect) Contains(x, y int32) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// ContainsRect reports whether other lies entirely within r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.Right() <= r.Right() && other.Bottom() <= r.Bottom()
}

// Intersects reports whether r and other share any area.
func (r Rect) Intersects(other Rect) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return r.X < other.Right() && other.X < r.Right() &&
		r.Y < other.Bottom() && other.Y < r.Bottom()
}

// Intersection returns the overlapping region of r and other, and whether
// one exists.
func (r Rect) Intersection(other Rect) (Rect, bool) {
	if !r.Intersects(other) {
		return Rect{}, false
	}
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.Right(), other.Right())
	y1 := min(r.Bottom(), other.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// Area returns the rectangle's area in square logical pixels.
func (r Rect) Area() int64 { return int64(max(r.W, 0)) * int64(max(r.H, 0)) }

// Clamp returns p clamped to lie within r (inclusive of the half-open
// upper bound, i.e. clamped to Right()-1/Bottom()-1 when r is non-empty).
func (r Rect) Clamp(x, y int32) (int32, int32) {
	if r.Empty() {
		return r.X, r.Y
	}
	cx := min(max(x, r.X), r.Right()-1)
	cy := min(max(y, r.Y), r.Bottom()-1)
	return cx, cy
}

// EdgeCrossed implements the §4.A edge-crossed predicate: given p0 inside
// r and p1 outside r, it returns the edge first crossed by the segment
// p0->p1, breaking ties Left < Right < Top < Bottom.
func EdgeCrossed(r Rect, p0, p1 Vec2[float64]) (Edge, bool) {
	return edgeCrossedBounds(float64(r.X), float64(r.Y), float64(r.Right()), float64(r.Bottom()), p0, p1)
}

// edgeCrossedBounds is the shared implementation behind EdgeCrossed and
// EdgeCrossedF: given p0 inside [xMin,xMax)x[yMin,yMax) and p1 outside it,
// returns the edge first crossed by the segment p0->p1.
func edgeCrossedBounds(xMin, yMin, xMax, yMax float64, p0, p1 Vec2[float64]) (Edge, bool) {
	inside := func(p Vec2[float64]) bool {
		return p.X >= xMin && p.X < xMax && p.Y >= yMin && p.Y < yMax
	}
	if !inside(p0) || inside(p1) {
		return 0, false
	}
	dx := p1.X - p0.X
	dy := p1.Y - p0.Y

	type candidate struct {
		edge Edge
		t    float64
	}
	var candidates []candidate

	if dx < 0 {
		t := (xMin - p0.X) / dx
		if t >= 0 && t <= 1 {
			candidates = append(candidates, candidate{Left, t})
		}
	}
	if dx > 0 {
		t := (xMax - p0.X) / dx
		if t >= 0 && t <= 1 {
			candidates = append(candidates, candidate{Right, t})
		}
	}
	if dy < 0 {
		t := (yMin - p0.Y) / dy
		if t >= 0 && t <= 1 {
			candidates = append(candidates, candidate{Top, t})
		}
	}
	if dy > 0 {
		t := (yMax - p0.Y) / dy
		if t >= 0 && t <= 1 {
			candidates = append(candidates, candidate{Bottom, t})
		}
	}

	if len(candidates) == 0 {
		return 0, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.t < best.t || (c.t == best.t && c.edge < best.edge) {
			best = c
		}
	}
	return best.edge, true
}

// RectF is a millimetre-space rectangle, used by the Physical Layout
// Manager (§4.F). Always axis-aligned in the global canvas regardless of
// a physical output's transform.
type RectF struct {
	X, Y, W, H float64
}

func (r RectF) Right() float64  { return r.X + r.W }
func (r RectF) Bottom() float64 { return r.Y + r.H }
func (r RectF) CenterX() float64 { return r.X + r.W/2 }
func (r RectF) CenterY() float64 { return r.Y + r.H/2 }

func (r RectF) Contains(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clamp returns (x, y) clamped to lie within r.
func (r RectF) Clamp(x, y float64) (float64, float64) {
	cx := clampF(x, r.X, r.Right())
	cy := clampF(y, r.Y, r.Bottom())
	return cx, cy
}

func clampF(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EdgeCrossedF is the millimetre-space counterpart of EdgeCrossed, used by
// the cursor-continuity motion algorithm (§4.F step 4).
func EdgeCrossedF(r RectF, p0, p1 Vec2[float64]) (Edge, bool) {
	return edgeCrossedBounds(r.X, r.Y, r.Right(), r.Bottom(), p0, p1)
}
