package workspace

import "stilch/internal/ids"

// Scratchpad returns the hidden overlay workspace holding
// Scratchpad-placed windows (§9 open question resolution).
func (m *Manager) Scratchpad() *Workspace {
	return m.workspaces[ScratchpadId]
}

// MoveToScratchpad detaches window from its current workspace and parks
// it on the scratchpad overlay, ready for a later `scratchpad show`.
func (m *Manager) MoveToScratchpad(from ids.WorkspaceId, window ids.WindowId) error {
	ws, err := m.Get(from)
	if err != nil {
		return err
	}
	if err := ws.RemoveWindow(window); err != nil {
		return err
	}
	m.Scratchpad().Floating = append(m.Scratchpad().Floating, window)
	return nil
}

// ScratchpadNext cycles to the next window parked on the scratchpad
// overlay, round-robining past whichever one was shown last (`scratchpad
// show` with no criteria).
func (m *Manager) ScratchpadNext() (ids.WindowId, bool) {
	sp := m.Scratchpad()
	if len(sp.Floating) == 0 {
		return 0, false
	}
	next := sp.Floating[0]
	sp.Floating = append(sp.Floating[1:], next)
	return next, true
}

// ScratchpadTake removes window from the scratchpad overlay's pending
// list so the dispatcher can show it on the destination workspace
// (`scratchpad show <criteria>` jumping directly to a matching window).
func (m *Manager) ScratchpadTake(window ids.WindowId) bool {
	sp := m.Scratchpad()
	for i, w := range sp.Floating {
		if w == window {
			sp.Floating = append(sp.Floating[:i], sp.Floating[i+1:]...)
			return true
		}
	}
	return false
}
