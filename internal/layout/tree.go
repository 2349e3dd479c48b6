// Package layout implements the Layout Tree (§4.C): a per-workspace tree
// of containers (split-h, split-v, tabbed, stacked) with window leaves,
// and the recursive geometry computation that turns it into target
// rectangles.
package layout

import (
	"fmt"

	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/registry"
)

// Orientation is the split axis of a Split container.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Kind discriminates the container-node variants of §3.
type Kind int

const (
	KindSplit Kind = iota
	KindTabbed
	KindStacked
	KindLeaf
)

// MaxDepth bounds nesting depth per §3 invariant (iv): "max nesting depth
// bounded (<=16) to prevent pathological trees."
const MaxDepth = 16

// TabBarHeight is the fixed strip height reserved for tab/stack chrome.
const TabBarHeight = int32(24)

// Node is a container-tree node: Split/Tabbed/Stacked/Leaf, tagged by
// Kind rather than modeled with interface-based subtyping, matching the
// algebraic shape §3 specifies and the teacher's preference for plain
// structs over class-style inheritance (module/config.go, niri/niri_event.go
// both favor flat tagged structs over polymorphism).
type Node struct {
	Id          ids.ContainerNodeId
	Kind        Kind
	Orientation Orientation // meaningful for KindSplit only
	Children    []*Node
	Ratios      []float64 // meaningful for KindSplit only; len == len(Children)
	ActiveIdx   int       // meaningful for KindTabbed/KindStacked
	Window      ids.WindowId
	Parent      *Node
}

func (n *Node) isLeaf() bool { return n.Kind == KindLeaf }

// LeafRect is one computed target rectangle, along with visibility (tab
// and stack inactive children are zero-area and invisible per §4.C).
type LeafRect struct {
	Window  ids.WindowId
	Rect    geom.Rect
	Visible bool
}

// Tree is the per-workspace container tree plus focus bookkeeping used by
// insertion, directional move, and tie-break resolution (§4.C).
type Tree struct {
	gen          *ids.Gen
	Root         *Node
	focused      *Node   // currently focused leaf, nil if tree is empty
	focusHistory []*Node // most-recently-focused last; used for tie-breaks
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{gen: ids.NewGen()}
}

func (t *Tree) newNode(kind Kind) *Node {
	return &Node{Id: ids.ContainerNodeId(t.gen.Next()), Kind: kind}
}

// FocusedWindow returns the id of the currently focused leaf's window, if
// any.
func (t *Tree) FocusedWindow() (ids.WindowId, bool) {
	if t.focused == nil {
		return 0, false
	}
	return t.focused.Window, true
}

// Empty reports whether the tree has no windows.
func (t *Tree) Empty() bool { return t.Root == nil }

// FocusHistory returns the tree's MRU focus history, oldest first, for
// use by directional focus tie-break resolution (internal/layout.FocusDirection).
func (t *Tree) FocusHistory() []ids.WindowId {
	out := make([]ids.WindowId, len(t.focusHistory))
	for i, n := range t.focusHistory {
		out[i] = n.Window
	}
	return out
}

// depthOf returns the nesting depth of n starting from 0 at the root.
func depthOf(n *Node) int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Insert adds window as a sibling of the focused leaf, following the
// focused container's orientation (§4.C "Insertion"). If the focused
// container is tabbed/stacked, the window becomes a new tab/stack entry
// and is activated. With no focused leaf, window becomes the root.
func (t *Tree) Insert(window ids.WindowId, defaultOrientation Orientation) (*Node, error) {
	leaf := &Node{Kind: KindLeaf, Window: window}

	if t.Root == nil {
		t.Root = leaf
		t.setFocus(leaf)
		return leaf, nil
	}

	if t.focused == nil {
		// No focused leaf tracked; fall back to the tree's only leaf if
		// there is exactly one, else refuse (caller should pick a focus
		// target first).
		if !t.Root.isLeaf() {
			return nil, fmt.Errorf("layout: no focused leaf to insert next to")
		}
		t.focused = t.Root
	}

	parent := t.focused.Parent
	if parent == nil {
		// Focused leaf is the root: wrap it in a new split.
		split := t.newNode(KindSplit)
		split.Orientation = defaultOrientation
		split.Children = []*Node{t.focused, leaf}
		split.Ratios = []float64{0.5, 0.5}
		t.focused.Parent = split
		leaf.Parent = split
		t.Root = split
		t.setFocus(leaf)
		return leaf, nil
	}

	if depthOf(parent) >= MaxDepth-1 {
		return nil, fmt.Errorf("layout: max nesting depth %d exceeded", MaxDepth)
	}

	switch parent.Kind {
	case KindTabbed, KindStacked:
		leaf.Parent = parent
		parent.Children = append(parent.Children, leaf)
		parent.ActiveIdx = len(parent.Children) - 1
	case KindSplit:
		idx := childIndex(parent, t.focused)
		leaf.Parent = parent
		insertChildAt(parent, idx+1, leaf)
		redistributeRatiosEven(parent)
	default:
		return nil, fmt.Errorf("layout: unexpected parent kind %v", parent.Kind)
	}
	t.setFocus(leaf)
	return leaf, nil
}

func childIndex(parent, child *Node) int {
	for i, c := range parent.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func insertChildAt(parent *Node, idx int, child *Node) {
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[idx+1:], parent.Children[idx:])
	parent.Children[idx] = child
}

func redistributeRatiosEven(parent *Node) {
	n := len(parent.Children)
	parent.Ratios = make([]float64, n)
	even := 1.0 / float64(n)
	for i := range parent.Ratios {
		parent.Ratios[i] = even
	}
}

// setFocus updates the focused leaf and pushes it to the end of the
// MRU focus history, used by directional tie-break resolution (§4.C).
func (t *Tree) setFocus(n *Node) {
	t.focused = n
	for i, h := range t.focusHistory {
		if h == n {
			t.focusHistory = append(t.focusHistory[:i], t.focusHistory[i+1:]...)
			break
		}
	}
	t.focusHistory = append(t.focusHistory, n)
	if n.Parent != nil && (n.Parent.Kind == KindTabbed || n.Parent.Kind == KindStacked) {
		n.Parent.ActiveIdx = childIndex(n.Parent, n)
	}
}

// Clone returns a deep copy of the tree, including focus and focus
// history, for the Command Dispatcher's snapshot-before-mutate rollback
// strategy (§4.H "invariant check... rolled back").
func (t *Tree) Clone() *Tree {
	clone := &Tree{gen: t.gen.Clone()}
	if t.Root == nil {
		return clone
	}
	same := make(map[*Node]*Node)
	clone.Root = cloneNode(t.Root, nil, same)
	if t.focused != nil {
		clone.focused = same[t.focused]
	}
	for _, h := range t.focusHistory {
		clone.focusHistory = append(clone.focusHistory, same[h])
	}
	return clone
}

func cloneNode(n *Node, parent *Node, same map[*Node]*Node) *Node {
	cp := &Node{
		Id:          n.Id,
		Kind:        n.Kind,
		Orientation: n.Orientation,
		ActiveIdx:   n.ActiveIdx,
		Window:      n.Window,
		Parent:      parent,
	}
	same[n] = cp
	if len(n.Ratios) > 0 {
		cp.Ratios = append([]float64(nil), n.Ratios...)
	}
	for _, c := range n.Children {
		cp.Children = append(cp.Children, cloneNode(c, cp, same))
	}
	return cp
}

// FindLeaf locates the leaf node holding window, if present.
func (t *Tree) FindLeaf(window ids.WindowId) (*Node, bool) {
	return findLeaf(t.Root, window)
}

func findLeaf(n *Node, window ids.WindowId) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	if n.isLeaf() {
		if n.Window == window {
			return n, true
		}
		return nil, false
	}
	for _, c := range n.Children {
		if found, ok := findLeaf(c, window); ok {
			return found, ok
		}
	}
	return nil, false
}

// SetFocus focuses the leaf holding window, if present.
func (t *Tree) SetFocus(window ids.WindowId) bool {
	leaf, ok := t.FindLeaf(window)
	if !ok {
		return false
	}
	t.setFocus(leaf)
	return true
}

// Remove deletes the leaf holding window from the tree (§4.C "Removal").
// If the parent then has exactly one child, the parent is flattened: the
// remaining child replaces it in the grandparent, preserving the
// grandparent's ratio slot. A root that is a single leaf is permitted and
// is never flattened away.
func (t *Tree) Remove(window ids.WindowId) error {
	leaf, ok := t.FindLeaf(window)
	if !ok {
		return fmt.Errorf("layout: window %d not present", window)
	}

	if leaf == t.Root {
		t.Root = nil
		t.focused = nil
		t.focusHistory = nil
		return nil
	}

	parent := leaf.Parent
	idx := childIndex(parent, leaf)
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	if parent.Kind == KindSplit {
		removeRatioAt(parent, idx)
	} else if parent.ActiveIdx >= len(parent.Children) {
		parent.ActiveIdx = max(0, len(parent.Children)-1)
	}

	t.removeFromHistory(leaf)
	if t.focused == leaf {
		t.focused = t.mostRecentSurviving()
	}

	if len(parent.Children) == 1 {
		t.flatten(parent)
	}

	return nil
}

func removeRatioAt(parent *Node, idx int) {
	removed := parent.Ratios[idx]
	parent.Ratios = append(parent.Ratios[:idx], parent.Ratios[idx+1:]...)
	if len(parent.Ratios) == 0 {
		return
	}
	redistribute := removed / float64(len(parent.Ratios))
	for i := range parent.Ratios {
		parent.Ratios[i] += redistribute
	}
}

// flatten replaces a degenerate single-child container with its child in
// its own parent slot, preserving the grandparent's ratio.
func (t *Tree) flatten(n *Node) {
	if len(n.Children) != 1 {
		return
	}
	child := n.Children[0]
	child.Parent = n.Parent

	if n.Parent == nil {
		t.Root = child
		return
	}

	grandparent := n.Parent
	idx := childIndex(grandparent, n)
	grandparent.Children[idx] = child
	// ratio slot (grandparent.Ratios[idx]) is untouched: child inherits it.
}

func (t *Tree) removeFromHistory(n *Node) {
	for i, h := range t.focusHistory {
		if h == n {
			t.focusHistory = append(t.focusHistory[:i], t.focusHistory[i+1:]...)
			break
		}
	}
}

func (t *Tree) mostRecentSurviving() *Node {
	for i := len(t.focusHistory) - 1; i >= 0; i-- {
		if t.focusHistory[i] != nil {
			return t.focusHistory[i]
		}
	}
	return firstLeaf(t.Root)
}

func firstLeaf(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.isLeaf() {
		return n
	}
	for _, c := range n.Children {
		if l := firstLeaf(c); l != nil {
			return l
		}
	}
	return nil
}

// Swap exchanges the tree positions of the leaves holding a and b (§4.C
// "Swap/Move").
func (t *Tree) Swap(a, b ids.WindowId) error {
	na, ok := t.FindLeaf(a)
	if !ok {
		return fmt.Errorf("layout: window %d not present", a)
	}
	nb, ok := t.FindLeaf(b)
	if !ok {
		return fmt.Errorf("layout: window %d not present", b)
	}
	pa, pb := na.Parent, nb.Parent
	if pa == nil || pb == nil {
		// Swapping when either is the sole root leaf is a no-op: there is
		// nothing to exchange positions with.
		return nil
	}
	ia, ib := childIndex(pa, na), childIndex(pb, nb)
	pa.Children[ia], pb.Children[ib] = pb.Children[ib], pa.Children[ia]
	na.Parent, nb.Parent = pb, pa
	return nil
}

// orientationFor returns the orientation a Split ancestor would need to
// satisfy a move in direction edge.
func orientationFor(edge geom.Edge) Orientation {
	if edge == geom.Left || edge == geom.Right {
		return Horizontal
	}
	return Vertical
}

// MoveDirection moves window one step in direction edge: it finds the
// nearest Split ancestor whose orientation matches edge and swaps with
// the sibling on the edge side; if none exists, the window is moved to
// the tree's root as a new sibling in a new split of that orientation
// (§4.C "Swap/Move").
func (t *Tree) MoveDirection(window ids.WindowId, edge geom.Edge) error {
	leaf, ok := t.FindLeaf(window)
	if !ok {
		return fmt.Errorf("layout: window %d not present", window)
	}
	wantOrient := orientationFor(edge)
	forward := edge == geom.Right || edge == geom.Bottom

	for n := leaf; n.Parent != nil; n = n.Parent {
		parent := n.Parent
		if parent.Kind != KindSplit || parent.Orientation != wantOrient {
			continue
		}
		idx := childIndex(parent, n)
		var sibIdx int
		if forward {
			sibIdx = idx + 1
		} else {
			sibIdx = idx - 1
		}
		if sibIdx < 0 || sibIdx >= len(parent.Children) {
			continue
		}
		parent.Children[idx], parent.Children[sibIdx] = parent.Children[sibIdx], parent.Children[idx]
		parent.Ratios[idx], parent.Ratios[sibIdx] = parent.Ratios[sibIdx], parent.Ratios[idx]
		return nil
	}

	// No ancestor of matching orientation: detach and re-root as a new
	// sibling of the workspace's root in a new split of wantOrient.
	if err := t.detach(leaf); err != nil {
		return err
	}
	oldRoot := t.Root
	split := t.newNode(KindSplit)
	split.Orientation = wantOrient
	if forward {
		split.Children = []*Node{oldRoot, leaf}
	} else {
		split.Children = []*Node{leaf, oldRoot}
	}
	split.Ratios = []float64{0.5, 0.5}
	oldRoot.Parent = split
	leaf.Parent = split
	t.Root = split
	t.setFocus(leaf)
	return nil
}

// detach removes n from the tree without touching the registry, used
// internally by MoveDirection's re-root path.
func (t *Tree) detach(n *Node) error {
	if n == t.Root {
		t.Root = nil
		return nil
	}
	parent := n.Parent
	idx := childIndex(parent, n)
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	if parent.Kind == KindSplit {
		removeRatioAt(parent, idx)
	} else if parent.ActiveIdx >= len(parent.Children) {
		parent.ActiveIdx = max(0, len(parent.Children)-1)
	}
	if len(parent.Children) == 1 {
		t.flatten(parent)
	}
	return nil
}

// Resize adjusts the ratio of window's split-parent slot by delta (a
// fraction of the parent's total, positive grows). It walks up to the
// nearest ancestor of the correct orientation if the immediate parent has
// the wrong one, then clamps ratios to [0.05, 0.95] per child (§4.C
// "Resize").
func (t *Tree) Resize(window ids.WindowId, axis Orientation, delta float64) error {
	leaf, ok := t.FindLeaf(window)
	if !ok {
		return fmt.Errorf("layout: window %d not present", window)
	}
	for n := leaf; n.Parent != nil; n = n.Parent {
		parent := n.Parent
		if parent.Kind != KindSplit || parent.Orientation != axis {
			continue
		}
		idx := childIndex(parent, n)
		if len(parent.Children) < 2 {
			return nil
		}
		growRatio(parent.Ratios, idx, delta)
		return nil
	}
	return nil
}

// growRatio grows ratios[idx] by delta, taking the difference evenly from
// the other slots, and clamps every slot to [0.05, 0.95].
func growRatio(ratios []float64, idx int, delta float64) {
	n := len(ratios)
	if n < 2 {
		return
	}
	target := ratios[idx] + delta
	target = clamp01(target, 0.05, 0.95)
	actualDelta := target - ratios[idx]
	ratios[idx] = target

	others := n - 1
	per := -actualDelta / float64(others)
	for i := range ratios {
		if i == idx {
			continue
		}
		ratios[i] += per
	}
	// Re-clamp and renormalize in case the even split pushed a neighbor
	// out of bounds.
	normalizeRatios(ratios)
}

func clamp01(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeRatios clamps every entry to [0.05,0.95] then rescales so the
// slice sums to 1, satisfying §3 invariant (ii).
func normalizeRatios(ratios []float64) {
	sum := 0.0
	for i, r := range ratios {
		ratios[i] = clamp01(r, 0.05, 0.95)
		sum += ratios[i]
	}
	if sum == 0 {
		even := 1.0 / float64(len(ratios))
		for i := range ratios {
			ratios[i] = even
		}
		return
	}
	for i := range ratios {
		ratios[i] /= sum
	}
}

// SetParentKind sets the parent of window's leaf to the requested kind
// (Split with the given orientation, Tabbed or Stacked) for the §4.H
// "layout" command group: split h/v, tab, stack.
func (t *Tree) SetParentKind(window ids.WindowId, kind Kind, orientation Orientation) error {
	leaf, ok := t.FindLeaf(window)
	if !ok {
		return fmt.Errorf("layout: window %d not present", window)
	}
	parent := leaf.Parent
	if parent == nil {
		// Root leaf: wrap it so the requested container kind has
		// somewhere to live, mirroring a fresh split/tab/stack creation.
		wrap := t.newNode(kind)
		wrap.Orientation = orientation
		wrap.Children = []*Node{leaf}
		wrap.Ratios = []float64{1}
		leaf.Parent = wrap
		t.Root = wrap
		return nil
	}
	parent.Kind = kind
	parent.Orientation = orientation
	if kind == KindSplit && len(parent.Ratios) != len(parent.Children) {
		redistributeRatiosEven(parent)
	}
	return nil
}

// Depth returns the nesting depth of the leaf holding window, or -1 if
// absent.
func (t *Tree) Depth(window ids.WindowId) int {
	leaf, ok := t.FindLeaf(window)
	if !ok {
		return -1
	}
	return depthOf(leaf)
}

// ComputeGeometry recursively computes target rectangles for every leaf
// given the hosting rectangle (outer, already reduced by outer gaps) and
// an inner gap, per §4.C "Geometry computation".
func ComputeGeometry(root *Node, outer geom.Rect, innerGap int32, sizing registry.Sizing) []LeafRect {
	var out []LeafRect
	if root == nil {
		return out
	}
	computeInto(root, outer, innerGap, sizing, &out)
	return out
}

func computeInto(n *Node, rect geom.Rect, gap int32, sizing registry.Sizing, out *[]LeafRect) {
	switch n.Kind {
	case KindLeaf:
		final := ClampToHints(rect, sizing.Hints(n.Window), false)
		*out = append(*out, LeafRect{Window: n.Window, Rect: final, Visible: true})
	case KindSplit:
		rects := splitRects(rect, n.Orientation, n.Ratios, gap)
		for i, c := range n.Children {
			computeInto(c, rects[i], gap, sizing, out)
		}
	case KindTabbed, KindStacked:
		contentRect := geom.Rect{
			X: rect.X, Y: rect.Y + TabBarHeight,
			W: rect.W, H: rect.H - TabBarHeight,
		}
		if contentRect.H < 0 {
			contentRect.H = 0
		}
		for i, c := range n.Children {
			if i == n.ActiveIdx {
				computeInto(c, contentRect, gap, sizing, out)
			} else {
				markHiddenInto(c, out)
			}
		}
	}
}

// markHiddenInto records every leaf under n as invisible with a zero-area
// rect (§4.C "inactive children receive a zero-area rect with
// visible=false").
func markHiddenInto(n *Node, out *[]LeafRect) {
	if n.isLeaf() {
		*out = append(*out, LeafRect{Window: n.Window, Rect: geom.Rect{}, Visible: false})
		return
	}
	for _, c := range n.Children {
		markHiddenInto(c, out)
	}
}

// splitRects subdivides rect along orientation by ratios, subtracting the
// inner gap between adjacent children with the gap budget split equally
// (§4.C "Split(H/V)").
func splitRects(rect geom.Rect, orientation Orientation, ratios []float64, gap int32) []geom.Rect {
	n := len(ratios)
	out := make([]geom.Rect, n)
	if n == 0 {
		return out
	}
	totalGap := gap * int32(n-1)

	if orientation == Horizontal {
		usable := rect.W - totalGap
		if usable < 0 {
			usable = 0
		}
		x := rect.X
		assigned := int32(0)
		cum := 0.0
		for i, r := range ratios {
			var w int32
			if i == n-1 {
				w = usable - assigned
			} else {
				cum += r
				boundary := int32(cum * float64(usable))
				w = boundary - assigned
				assigned = boundary
			}
			out[i] = geom.Rect{X: x, Y: rect.Y, W: w, H: rect.H}
			x += w + gap
		}
		return out
	}

	usable := rect.H - totalGap
	if usable < 0 {
		usable = 0
	}
	y := rect.Y
	assigned := int32(0)
	cum := 0.0
	for i, r := range ratios {
		var h int32
		if i == n-1 {
			h = usable - assigned
		} else {
			cum += r
			boundary := int32(cum * float64(usable))
			h = boundary - assigned
			assigned = boundary
		}
		out[i] = geom.Rect{X: rect.X, Y: y, W: rect.W, H: h}
		y += h + gap
	}
	return out
}

// ClampToHints implements the shared §4.C "Leaf" rule: clamp to the
// window's min/max hints; if the preferred size fits within rect, center
// it there, but only when the window is floating. Tiled leaves are
// anchored at the assigned rect's origin with the min/max-clamped size,
// which is the full assigned rect unless the hints force another size.
func ClampToHints(rect geom.Rect, hints registry.Hints, floating bool) geom.Rect {
	w, h := rect.W, rect.H
	if hints.Min.X > 0 && w < hints.Min.X {
		w = hints.Min.X
	}
	if hints.Min.Y > 0 && h < hints.Min.Y {
		h = hints.Min.Y
	}
	if hints.Max.X > 0 && w > hints.Max.X {
		w = hints.Max.X
	}
	if hints.Max.Y > 0 && h > hints.Max.Y {
		h = hints.Max.Y
	}

	if !floating {
		if w == rect.W && h == rect.H {
			return rect
		}
		// A tiled leaf whose hints force a size smaller than the
		// assigned cell still anchors to the cell's origin; it simply
		// doesn't fill it.
		return geom.Rect{X: rect.X, Y: rect.Y, W: w, H: h}
	}

	pw, ph := w, h
	if hints.Preferred.X > 0 && hints.Preferred.X <= rect.W {
		pw = hints.Preferred.X
	}
	if hints.Preferred.Y > 0 && hints.Preferred.Y <= rect.H {
		ph = hints.Preferred.Y
	}
	x := rect.X + (rect.W-pw)/2
	y := rect.Y + (rect.H-ph)/2
	return geom.Rect{X: x, Y: y, W: pw, H: ph}
}

// CheckInvariants validates §3 invariants (i)-(iv) against the subtree
// rooted at n, used by the Command Dispatcher's invariant check after
// every structural command (§4.H, §8 universal invariant 3).
func CheckInvariants(n *Node) error {
	if n == nil {
		return nil
	}
	return checkNode(n, 0, make(map[ids.WindowId]struct{}))
}

func checkNode(n *Node, depth int, seen map[ids.WindowId]struct{}) error {
	if depth > MaxDepth {
		return fmt.Errorf("layout: nesting depth exceeds %d", MaxDepth)
	}
	if n.isLeaf() {
		if _, dup := seen[n.Window]; dup {
			return fmt.Errorf("layout: window %d appears more than once", n.Window)
		}
		seen[n.Window] = struct{}{}
		return nil
	}
	if len(n.Children) == 0 {
		return fmt.Errorf("layout: container %d has no children", n.Id)
	}
	if n.Kind == KindSplit {
		if len(n.Ratios) != len(n.Children) {
			return fmt.Errorf("layout: container %d ratio count %d != child count %d", n.Id, len(n.Ratios), len(n.Children))
		}
		sum := 0.0
		for _, r := range n.Ratios {
			sum += r
		}
		if sum < 1-1e-9 || sum > 1+1e-9 {
			return fmt.Errorf("layout: container %d ratios sum to %f, want 1", n.Id, sum)
		}
	}
	for _, c := range n.Children {
		if err := checkNode(c, depth+1, seen); err != nil {
			return err
		}
	}
	return nil
}
