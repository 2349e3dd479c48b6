package layout

import (
	"stilch/internal/geom"
	"stilch/internal/ids"
)

// FocusDirection resolves directional focus across container shapes
// (§4.C "Tie-breaks"): it projects every visible leaf's centre onto the
// movement axis, keeps only those strictly on the requested side of
// from's centre, and picks the one whose perpendicular-axis centre is
// closest to from's. Ties (equal perpendicular distance) resolve by
// smallest primary-axis centre distance, then by recency in history (the
// entry appearing latest in history wins).
func FocusDirection(rects []LeafRect, from ids.WindowId, dir geom.Edge, history []ids.WindowId) (ids.WindowId, bool) {
	var source geom.Rect
	haveSource := false
	for _, r := range rects {
		if r.Visible && r.Window == from {
			source = r.Rect
			haveSource = true
			break
		}
	}
	if !haveSource {
		return 0, false
	}

	horizontal := dir == geom.Left || dir == geom.Right
	forward := dir == geom.Right || dir == geom.Bottom

	srcPrimary, srcPerp := axisCenters(source, horizontal)

	var best ids.WindowId
	haveBest := false
	var bestPerp, bestPrimary float64
	var bestRecency int

	for _, r := range rects {
		if !r.Visible || r.Window == from {
			continue
		}
		primary, perp := axisCenters(r.Rect, horizontal)
		if forward && primary <= srcPrimary {
			continue
		}
		if !forward && primary >= srcPrimary {
			continue
		}
		primaryDist := absF(primary - srcPrimary)
		perpDist := absF(perp - srcPerp)
		recency := recencyIndex(history, r.Window)

		// Candidates are first filtered to the requested side, then
		// ranked by how closely their perpendicular-axis centre lines
		// up with the source's (§4.C "closest to the source leaf's
		// centre on the perpendicular axis"); primary-axis distance and
		// then recency only break exact ties.
		better := !haveBest ||
			perpDist < bestPerp ||
			(perpDist == bestPerp && primaryDist < bestPrimary) ||
			(perpDist == bestPerp && primaryDist == bestPrimary && recency > bestRecency)

		if better {
			best, bestPerp, bestPrimary, bestRecency, haveBest = r.Window, perpDist, primaryDist, recency, true
		}
	}
	return best, haveBest
}

func axisCenters(r geom.Rect, horizontal bool) (primary, perp float64) {
	if horizontal {
		return r.CenterX(), r.CenterY()
	}
	return r.CenterY(), r.CenterX()
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func recencyIndex(history []ids.WindowId, window ids.WindowId) int {
	for i, h := range history {
		if h == window {
			return i
		}
	}
	return -1
}
