package layout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/registry"
)

func TestInsertCreatesSplitOnSecondWindow(t *testing.T) {
	tr := New()
	_, err := tr.Insert(1, Horizontal)
	require.NoError(t, err)
	_, err = tr.Insert(2, Horizontal)
	require.NoError(t, err)

	require.Equal(t, KindSplit, tr.Root.Kind)
	require.Len(t, tr.Root.Children, 2)
	require.InDelta(t, 0.5, tr.Root.Ratios[0], 1e-9)
	require.InDelta(t, 0.5, tr.Root.Ratios[1], 1e-9)

	fw, ok := tr.FocusedWindow()
	require.True(t, ok)
	require.Equal(t, ids.WindowId(2), fw)
}

// TestSplitInsertionGeometry checks two windows side by side in a
// 1920x1080 virtual output with a 4px inner gap split evenly (scenario S1
// itself is TestSplitInsertionThreeWindows).
func TestSplitInsertionGeometry(t *testing.T) {
	tr := New()
	_, _ = tr.Insert(1, Horizontal)
	_, _ = tr.Insert(2, Horizontal)

	outer := geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}
	rects := ComputeGeometry(tr.Root, outer, 4, noopSizing{})
	require.Len(t, rects, 2)

	byId := map[ids.WindowId]geom.Rect{}
	for _, r := range rects {
		byId[r.Window] = r.Rect
	}

	require.Equal(t, geom.Rect{X: 0, Y: 0, W: 958, H: 1080}, byId[1])
	require.Equal(t, geom.Rect{X: 962, Y: 0, W: 958, H: 1080}, byId[2])
}

// TestSplitInsertionThreeWindows covers spec scenario S1's literal
// three-window worked example: a 1000x800 virtual output, 10px inner gap,
// W1/W2/W3 inserted in order, then W2 closed.
func TestSplitInsertionThreeWindows(t *testing.T) {
	tr := New()
	_, _ = tr.Insert(1, Horizontal)
	_, _ = tr.Insert(2, Horizontal)
	_, _ = tr.Insert(3, Horizontal)

	outer := geom.Rect{X: 0, Y: 0, W: 1000, H: 800}
	rects := ComputeGeometry(tr.Root, outer, 10, noopSizing{})
	byId := map[ids.WindowId]geom.Rect{}
	for _, r := range rects {
		byId[r.Window] = r.Rect
	}
	require.Equal(t, geom.Rect{X: 0, Y: 0, W: 326, H: 800}, byId[1])
	require.Equal(t, geom.Rect{X: 336, Y: 0, W: 327, H: 800}, byId[2])
	require.Equal(t, geom.Rect{X: 673, Y: 0, W: 327, H: 800}, byId[3])

	require.NoError(t, tr.Remove(2))
	rects = ComputeGeometry(tr.Root, outer, 10, noopSizing{})
	byId = map[ids.WindowId]geom.Rect{}
	for _, r := range rects {
		byId[r.Window] = r.Rect
	}
	require.Equal(t, geom.Rect{X: 0, Y: 0, W: 495, H: 800}, byId[1])
	require.Equal(t, geom.Rect{X: 505, Y: 0, W: 495, H: 800}, byId[3])
}

func TestTabbedHidesInactiveChildren(t *testing.T) {
	tr := New()
	_, _ = tr.Insert(1, Horizontal)
	require.NoError(t, tr.SetParentKind(1, KindTabbed, Horizontal))
	_, err := tr.Insert(2, Horizontal)
	require.NoError(t, err)

	outer := geom.Rect{X: 0, Y: 0, W: 800, H: 600}
	rects := ComputeGeometry(tr.Root, outer, 0, noopSizing{})
	require.Len(t, rects, 2)

	var visibleCount int
	for _, r := range rects {
		if r.Visible {
			visibleCount++
			require.Equal(t, ids.WindowId(2), r.Window)
		} else {
			require.Equal(t, geom.Rect{}, r.Rect)
		}
	}
	require.Equal(t, 1, visibleCount)
}

func TestRemoveFlattensSingleChildContainer(t *testing.T) {
	tr := New()
	_, _ = tr.Insert(1, Horizontal)
	_, _ = tr.Insert(2, Horizontal)
	_, _ = tr.Insert(3, Horizontal)
	// Moving 3 down finds no vertical ancestor, so the tree is re-rooted
	// as split-V[split-H[1,2], 3]; removing 1 then leaves split-H[2] with a
	// single child, which must be flattened into its parent.
	require.NoError(t, tr.MoveDirection(3, geom.Bottom))

	require.NoError(t, tr.Remove(1))
	require.NoError(t, CheckInvariants(tr.Root))
	require.Equal(t, KindSplit, tr.Root.Kind)
	require.Len(t, tr.Root.Children, 2)
	require.Equal(t, KindLeaf, tr.Root.Children[0].Kind)
	require.Equal(t, ids.WindowId(2), tr.Root.Children[0].Window)
}

func TestRemoveLastWindowEmptiesTree(t *testing.T) {
	tr := New()
	_, _ = tr.Insert(1, Horizontal)
	require.NoError(t, tr.Remove(1))
	require.True(t, tr.Empty())
	_, ok := tr.FocusedWindow()
	require.False(t, ok)
}

func TestMoveDirectionSwapsWithinSplit(t *testing.T) {
	tr := New()
	_, _ = tr.Insert(1, Horizontal)
	_, _ = tr.Insert(2, Horizontal)
	tr.SetFocus(1)

	require.NoError(t, tr.MoveDirection(1, geom.Right))
	require.Equal(t, ids.WindowId(2), tr.Root.Children[0].Window)
	require.Equal(t, ids.WindowId(1), tr.Root.Children[1].Window)
}

func TestResizeClampsAndSumsToOne(t *testing.T) {
	tr := New()
	_, _ = tr.Insert(1, Horizontal)
	_, _ = tr.Insert(2, Horizontal)

	require.NoError(t, tr.Resize(1, Horizontal, 10.0))
	sum := 0.0
	for _, r := range tr.Root.Ratios {
		require.LessOrEqual(t, r, 0.95+1e-9)
		require.GreaterOrEqual(t, r, 0.05-1e-9)
		sum += r
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestMaxDepthEnforced(t *testing.T) {
	// SetParentKind re-kinds an existing parent rather than nesting, so the
	// deep chain is built directly: each level is a split holding one leaf
	// and the next level down, MaxDepth levels in all.
	tr := New()
	var parent *Node
	var deepest ids.WindowId
	for depth := 0; depth < MaxDepth; depth++ {
		split := &Node{Kind: KindSplit, Orientation: Horizontal, Parent: parent}
		leaf := &Node{Kind: KindLeaf, Window: ids.WindowId(depth + 1), Parent: split}
		split.Children = []*Node{leaf}
		split.Ratios = []float64{1}
		if parent == nil {
			tr.Root = split
		} else {
			parent.Children = append(parent.Children, split)
			parent.Ratios = []float64{0.5, 0.5}
		}
		parent = split
		deepest = leaf.Window
	}
	require.NoError(t, CheckInvariants(tr.Root))
	require.True(t, tr.SetFocus(deepest))

	_, err := tr.Insert(ids.WindowId(MaxDepth+1), Horizontal)
	require.Error(t, err)
	require.Contains(t, err.Error(), "max nesting depth")
}

func TestClampToHintsCentersFloatingOnly(t *testing.T) {
	hints := registry.Hints{Preferred: geom.Vec2[int32]{X: 200, Y: 100}}
	outer := geom.Rect{X: 0, Y: 0, W: 800, H: 600}

	floating := ClampToHints(outer, hints, true)
	require.Equal(t, geom.Rect{X: 300, Y: 250, W: 200, H: 100}, floating)

	tiled := ClampToHints(outer, hints, false)
	require.Equal(t, outer, tiled)
}

// TestFocusDirectionScenarioS4 covers scenario S4: split-H at root with
// children (split-V[A,B], C). Focus on A. Focus-right targets C
// (nearest centre match). Focus-down from A targets B.
func TestFocusDirectionScenarioS4(t *testing.T) {
	a := &Node{Kind: KindLeaf, Window: 1}
	b := &Node{Kind: KindLeaf, Window: 2}
	c := &Node{Kind: KindLeaf, Window: 3}
	innerSplit := &Node{Kind: KindSplit, Orientation: Vertical, Children: []*Node{a, b}, Ratios: []float64{0.5, 0.5}}
	a.Parent, b.Parent = innerSplit, innerSplit
	root := &Node{Kind: KindSplit, Orientation: Horizontal, Children: []*Node{innerSplit, c}, Ratios: []float64{0.5, 0.5}}
	innerSplit.Parent, c.Parent = root, root

	outer := geom.Rect{X: 0, Y: 0, W: 1200, H: 800}
	rects := ComputeGeometry(root, outer, 0, noopSizing{})

	history := []ids.WindowId{2, 3, 1}
	right, ok := FocusDirection(rects, 1, geom.Right, history)
	require.True(t, ok)
	require.Equal(t, ids.WindowId(3), right)

	down, ok := FocusDirection(rects, 1, geom.Bottom, history)
	require.True(t, ok)
	require.Equal(t, ids.WindowId(2), down)
}

func TestCloneIsIndependent(t *testing.T) {
	tr := New()
	_, _ = tr.Insert(1, Horizontal)
	_, _ = tr.Insert(2, Horizontal)

	clone := tr.Clone()
	require.NoError(t, tr.Remove(2))
	require.NoError(t, CheckInvariants(clone.Root))
	require.Len(t, clone.Root.Children, 2)

	fw, ok := clone.FocusedWindow()
	require.True(t, ok)
	require.Equal(t, ids.WindowId(2), fw)
}

type noopSizing struct{}

func (noopSizing) Hints(ids.WindowId) registry.Hints { return registry.Hints{} }
