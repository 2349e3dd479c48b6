package config

import (
	"fmt"
	"strconv"

	"stilch/internal/dispatch"
	"stilch/internal/fullscreen"
	"stilch/internal/geom"
	"stilch/internal/ids"
	"stilch/internal/layout"
)

// CommandKind distinguishes a bound command that the dispatcher executes
// directly from one that only makes sense at the config/keybinding layer
// (switching the active bindsym mode has no Command Dispatcher
// equivalent: it never touches B-G).
type CommandKind int

const (
	CommandDispatch CommandKind = iota
	CommandSwitchMode
)

// BoundCommand is what a `bindsym`/`for_window` command string compiles
// to: either a dispatch.Command ready for the Command Dispatcher, or a
// request to switch the active keybinding mode. No component tracks a
// current mode; cmd/stilchd's wire layer accepts a mode switch as a
// no-op.
type BoundCommand struct {
	Kind     CommandKind
	Command  dispatch.Command
	ModeName string
}

var edgeNames = map[string]geom.Edge{
	"left":  geom.Left,
	"right": geom.Right,
	"up":    geom.Top,
	"down":  geom.Bottom,
}

// ParseCommand compiles a whitespace-split command string, using the
// same grammar `bindsym`/`for_window` action clauses use, into a
// BoundCommand. cmd/stilchd's wire protocol reuses this so that an
// inbound Command event carries the identical syntax a user would type
// in a keybinding, the way i3's IPC `run_command` message takes the same
// text a config file's bindsym line would.
func ParseCommand(tokens []string) (BoundCommand, error) {
	return parseCommand(tokens)
}

// parseCommand compiles the tokens following a `bindsym KEYS` (or a
// `for_window` action clause) into a BoundCommand. It covers the command
// vocabulary §4.H enumerates (focus/move/layout/resize/workspace/
// fullscreen/kill) plus the scratchpad and mark supplements.
func parseCommand(tokens []string) (BoundCommand, error) {
	if len(tokens) == 0 {
		return BoundCommand{}, fmt.Errorf("config: empty command")
	}
	switch tokens[0] {
	case "focus":
		return parseFocus(tokens[1:])
	case "move":
		return parseMove(tokens[1:])
	case "layout":
		return parseLayout(tokens[1:])
	case "split":
		return parseSplit(tokens[1:])
	case "resize":
		return parseResize(tokens[1:])
	case "workspace":
		return parseWorkspace(tokens[1:])
	case "fullscreen":
		return parseFullscreen(tokens[1:])
	case "kill":
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindKillWindow}}, nil
	case "floating":
		if len(tokens) > 1 && tokens[1] == "toggle" {
			return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindToggleFloating}}, nil
		}
	case "mark":
		if len(tokens) > 1 {
			return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindMarkSet, Mark: tokens[1]}}, nil
		}
	case "unmark":
		mark := ""
		if len(tokens) > 1 {
			mark = tokens[1]
		}
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindMarkClear, Mark: mark}}, nil
	case "scratchpad":
		if len(tokens) > 1 && tokens[1] == "show" {
			cmd := dispatch.Command{Kind: dispatch.KindScratchpadShow}
			if len(tokens) > 2 {
				cmd.Mark = tokens[2]
			}
			return BoundCommand{Command: cmd}, nil
		}
	case "mode":
		if len(tokens) > 1 {
			return BoundCommand{Kind: CommandSwitchMode, ModeName: tokens[1]}, nil
		}
	}
	return BoundCommand{}, fmt.Errorf("config: unrecognised command %q", tokens)
}

func parseFocus(tokens []string) (BoundCommand, error) {
	if len(tokens) == 0 {
		return BoundCommand{}, fmt.Errorf("config: focus requires an argument")
	}
	if tokens[0] == "mark" && len(tokens) > 1 {
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindFocusMark, Mark: tokens[1]}}, nil
	}
	if edge, ok := edgeNames[tokens[0]]; ok {
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindFocusDirection, Direction: edge}}, nil
	}
	return BoundCommand{}, fmt.Errorf("config: unrecognised focus target %q", tokens[0])
}

func parseMove(tokens []string) (BoundCommand, error) {
	if len(tokens) == 0 {
		return BoundCommand{}, fmt.Errorf("config: move requires an argument")
	}
	if edge, ok := edgeNames[tokens[0]]; ok {
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindMoveWindowDirection, Direction: edge}}, nil
	}
	if tokens[0] == "to" && len(tokens) > 1 && tokens[1] == "scratchpad" {
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindScratchpadMove}}, nil
	}
	if tokens[0] == "workspace" && len(tokens) >= 3 && tokens[1] == "to" && tokens[2] == "output" && len(tokens) > 3 {
		edge, ok := edgeNames[tokens[3]]
		if !ok {
			return BoundCommand{}, fmt.Errorf("config: unrecognised output direction %q", tokens[3])
		}
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindMoveWorkspaceToOutput, Direction: edge}}, nil
	}
	return BoundCommand{}, fmt.Errorf("config: unrecognised move command %v", tokens)
}

func parseSplit(tokens []string) (BoundCommand, error) {
	if len(tokens) == 0 {
		return BoundCommand{}, fmt.Errorf("config: split requires h or v")
	}
	switch tokens[0] {
	case "h", "horizontal":
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindSetContainerKind, ContainerKind: layout.KindSplit, Orientation: layout.Horizontal}}, nil
	case "v", "vertical":
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindSetContainerKind, ContainerKind: layout.KindSplit, Orientation: layout.Vertical}}, nil
	}
	return BoundCommand{}, fmt.Errorf("config: unrecognised split axis %q", tokens[0])
}

func parseLayout(tokens []string) (BoundCommand, error) {
	if len(tokens) == 0 {
		return BoundCommand{}, fmt.Errorf("config: layout requires an argument")
	}
	switch tokens[0] {
	case "splith":
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindSetContainerKind, ContainerKind: layout.KindSplit, Orientation: layout.Horizontal}}, nil
	case "splitv":
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindSetContainerKind, ContainerKind: layout.KindSplit, Orientation: layout.Vertical}}, nil
	case "tabbed":
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindSetContainerKind, ContainerKind: layout.KindTabbed}}, nil
	case "stacking":
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindSetContainerKind, ContainerKind: layout.KindStacked}}, nil
	}
	return BoundCommand{}, fmt.Errorf("config: unrecognised layout %q", tokens[0])
}

// parseResize handles `resize grow|shrink width|height N [px]`. N is
// treated as percentage points of the split ratio, since the layout tree
// (unlike i3's pixel-based splits) only ever stores fractional ratios.
func parseResize(tokens []string) (BoundCommand, error) {
	if len(tokens) < 3 {
		return BoundCommand{}, fmt.Errorf("config: resize requires grow|shrink, an axis, and an amount")
	}
	var sign float64
	switch tokens[0] {
	case "grow":
		sign = 1
	case "shrink":
		sign = -1
	default:
		return BoundCommand{}, fmt.Errorf("config: unrecognised resize direction %q", tokens[0])
	}
	var axis layout.Orientation
	switch tokens[1] {
	case "width":
		axis = layout.Horizontal
	case "height":
		axis = layout.Vertical
	default:
		return BoundCommand{}, fmt.Errorf("config: unrecognised resize axis %q", tokens[1])
	}
	n, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return BoundCommand{}, fmt.Errorf("config: invalid resize amount %q: %w", tokens[2], err)
	}
	return BoundCommand{Command: dispatch.Command{
		Kind:        dispatch.KindResize,
		ResizeAxis:  axis,
		ResizeDelta: sign * n / 100,
	}}, nil
}

func parseWorkspace(tokens []string) (BoundCommand, error) {
	if len(tokens) == 0 {
		return BoundCommand{}, fmt.Errorf("config: workspace requires an argument")
	}
	if tokens[0] == "back_and_forth" {
		return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindWorkspaceBackAndForth}}, nil
	}
	n, err := strconv.ParseUint(tokens[0], 10, 64)
	if err != nil {
		return BoundCommand{}, fmt.Errorf("config: workspace name %q must be numeric", tokens[0])
	}
	return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindWorkspaceSwitch, Workspace: ids.WorkspaceId(n)}}, nil
}

func parseFullscreen(tokens []string) (BoundCommand, error) {
	mode := fullscreen.Container
	if len(tokens) > 0 {
		switch tokens[0] {
		case "disable", "none":
			mode = fullscreen.None
		case "container", "toggle", "enable":
			mode = fullscreen.Container
		case "output", "virtual_output":
			mode = fullscreen.VirtualOutput
		case "global", "physical_output":
			mode = fullscreen.PhysicalOutput
		default:
			return BoundCommand{}, fmt.Errorf("config: unrecognised fullscreen target %q", tokens[0])
		}
	}
	return BoundCommand{Command: dispatch.Command{Kind: dispatch.KindSetFullscreen, FullscreenMode: mode}}, nil
}
