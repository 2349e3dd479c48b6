package workspace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stilch/internal/ids"
	"stilch/internal/layout"
)

func TestShowOnClearsPriorAssignment(t *testing.T) {
	m := NewManager(10)
	require.NoError(t, m.ShowOn(1, 100))
	require.NoError(t, m.ShowOn(1, 200))

	ws1, err := m.Get(1)
	require.NoError(t, err)
	require.Equal(t, ids.VirtualOutputId(200), ws1.DisplayedOn)

	_, ok := m.WorkspaceOn(100)
	require.False(t, ok)
}

func TestShowOnIdlesPreviousWorkspaceOnSameOutput(t *testing.T) {
	m := NewManager(10)
	require.NoError(t, m.ShowOn(1, 100))
	require.NoError(t, m.ShowOn(2, 100))

	ws1, err := m.Get(1)
	require.NoError(t, err)
	require.True(t, ws1.Idle())

	ws2, err := m.Get(2)
	require.NoError(t, err)
	require.Equal(t, ids.VirtualOutputId(100), ws2.DisplayedOn)
}

func TestLowestIdle(t *testing.T) {
	m := NewManager(3)
	require.NoError(t, m.ShowOn(1, 100))
	id, ok := m.LowestIdle()
	require.True(t, ok)
	require.Equal(t, ids.WorkspaceId(2), id)
}

func TestBackAndForth(t *testing.T) {
	m := NewManager(5)
	m.Focus(1)
	m.Focus(2)
	prev, ok := m.BackAndForth()
	require.True(t, ok)
	require.Equal(t, ids.WorkspaceId(1), prev)
}

func TestUnknownWorkspace(t *testing.T) {
	m := NewManager(2)
	_, err := m.Get(99)
	require.Error(t, err)
}

func TestMoveToScratchpadAndNext(t *testing.T) {
	m := NewManager(2)
	ws, err := m.Get(1)
	require.NoError(t, err)
	require.NoError(t, ws.InsertTiled(42, layout.Horizontal))

	require.NoError(t, m.MoveToScratchpad(1, 42))
	require.True(t, ws.Empty())

	w, ok := m.ScratchpadNext()
	require.True(t, ok)
	require.Equal(t, ids.WindowId(42), w)
}

func TestRemoveUnknownWindowErrors(t *testing.T) {
	m := NewManager(1)
	ws, err := m.Get(1)
	require.NoError(t, err)
	require.Error(t, ws.RemoveWindow(7))
}
