package fullscreen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stilch/internal/geom"
)

func TestEnterVirtualOutputDemotesPriorOccupant(t *testing.T) {
	m := New()
	t1 := m.Enter(1, VirtualOutput, 10, 0)
	require.False(t, t1.HasDemote)
	require.Equal(t, VirtualOutput, m.State(1))

	t2 := m.Enter(2, Container, 10, 0)
	require.True(t, t2.HasDemote)
	require.Equal(t, uint64(1), uint64(t2.Demoted))
	require.Equal(t, None, m.State(1))
	require.Equal(t, Container, m.State(2))

	occ, ok := m.VirtualOutputOccupant(10)
	require.True(t, ok)
	require.Equal(t, uint64(2), uint64(occ))
}

func TestPhysicalOutputExclusivityIndependentOfVirtualOutput(t *testing.T) {
	m := New()
	m.Enter(1, VirtualOutput, 10, 0)
	m.Enter(2, PhysicalOutput, 20, 100)

	// Both still hold their tiers: the two exclusivity domains are
	// independent.
	require.Equal(t, VirtualOutput, m.State(1))
	require.Equal(t, PhysicalOutput, m.State(2))
}

func TestExitFreesOccupancy(t *testing.T) {
	m := New()
	m.Enter(1, VirtualOutput, 10, 0)
	require.True(t, m.Exit(1))
	require.Equal(t, None, m.State(1))
	_, ok := m.VirtualOutputOccupant(10)
	require.False(t, ok)
}

func TestEnterNoneIsExit(t *testing.T) {
	m := New()
	m.Enter(1, PhysicalOutput, 0, 100)
	tr := m.Enter(1, None, 0, 0)
	require.True(t, tr.HasDemote)
	require.Equal(t, None, m.State(1))
}

func TestTargetRectPerTier(t *testing.T) {
	container := geom.Rect{X: 10, Y: 10, W: 100, H: 100}
	vo := geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}
	po := geom.Rect{X: 0, Y: 0, W: 3840, H: 1080}

	require.Equal(t, container, TargetRect(Container, container, vo, po))
	require.Equal(t, vo, TargetRect(VirtualOutput, container, vo, po))
	require.Equal(t, po, TargetRect(PhysicalOutput, container, vo, po))
}
