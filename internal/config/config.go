// Package config parses the i3/sway-style directive text format §6
// recognises (set/output/virtual_output/workspace_layout/gaps/bindsym/
// mode/focus_follows_mouse) plus the for_window rule JSON dialect
// SPEC_FULL.md's supplemented features add, turning a config file into
// the static configuration internal/core applies to the dispatcher and
// its collaborators on startup and ConfigReload.
package config

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"stilch/internal/geom"
	"stilch/internal/jsonc"
	"stilch/internal/layout"
)

// OutputConfig carries the per-output overrides the `output` directive
// declares, applied to a physical output as it arrives via OutputAdded
// (§6), keyed by output name.
type OutputConfig struct {
	Name      string
	Scale     float64
	HasScale  bool
	Transform int
	HasTransform bool

	Position    geom.Vec2[int32]
	HasPosition bool

	PhysicalSizeMM    geom.Vec2[float64]
	HasPhysicalSize   bool
	PhysicalPositionMM geom.Vec2[float64]
	HasPhysicalPosition bool
}

// VirtualOutputConfig mirrors one `virtual_output` directive. Only the
// first name in the `outputs` list backs the declared region: the VOM's
// VirtualOutput is backed by exactly one physical output (internal/vom),
// so a multi-name list beyond the first is accepted but unused, and
// recorded in ExtraOutputs for a startup warning.
type VirtualOutputConfig struct {
	Name         string
	PhysicalName string
	ExtraOutputs []string
	Region       geom.Rect
}

// Bind is one compiled keybinding: the key-chord string exactly as
// written and the command it triggers. Keys is stored only; nothing in
// this module matches chords against input events.
type Bind struct {
	Keys    string
	Command BoundCommand
}

// Mode is a named bindsym table activated by a `mode "NAME"` command and
// exited the same way (commonly back to "default").
type Mode struct {
	Name  string
	Binds []Bind
}

// Config is the fully-parsed result of one config file.
type Config struct {
	Vars               map[string]string
	Outputs            map[string]*OutputConfig
	VirtualOutputs     []VirtualOutputConfig
	WorkspaceLayout    layout.Kind
	InnerGap, OuterGap int32
	FocusFollowsMouse  bool
	Binds              []Bind
	Modes              map[string]*Mode
	WindowRules        WindowRules
}

// Default returns the zero-value config i3/sway itself assumes absent
// any directives: split layout, no gaps, focus_follows_mouse off.
func Default() *Config {
	return &Config{
		Vars:            make(map[string]string),
		Outputs:         make(map[string]*OutputConfig),
		WorkspaceLayout: layout.KindSplit,
		Modes:           make(map[string]*Mode),
	}
}

// ParseError is §7's InvalidConfig{line, reason}. ConfigReload keeps the
// previous config active when Parse returns any.
type ParseError struct {
	Line   int
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("config:%d: %s", e.Line, e.Reason)
}

// Parse reads a full i3/sway-style config file. It never fails outright:
// unknown directives and malformed lines are reported as ParseErrors and
// skipped (§6 "unknown directives emit a warning and are skipped"),
// leaving the rest of the file's directives applied.
func Parse(data []byte) (*Config, []ParseError) {
	cfg := Default()
	var errs []ParseError

	var modeStack []*Mode
	for i, raw := range bytes.Split(data, []byte("\n")) {
		lineNo := i + 1
		tokens := tokenize(stripComment(raw))
		tokens = substituteVars(tokens, cfg.Vars)
		if len(tokens) == 0 {
			continue
		}

		if tokens[0] == "}" {
			if len(modeStack) > 0 {
				modeStack = modeStack[:len(modeStack)-1]
			} else {
				errs = append(errs, ParseError{Line: lineNo, Reason: "unmatched '}'"})
			}
			continue
		}

		if tokens[0] == "for_window" {
			// tokenize drops the double quotes a JSON blob needs, so the
			// rule text is taken from the comment-stripped line instead.
			line := bytes.TrimSpace(stripComment(raw))
			blob := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("for_window")))
			if err := cfg.applyForWindow([]string{string(blob)}); err != nil {
				errs = append(errs, ParseError{Line: lineNo, Reason: err.Error()})
			}
			continue
		}

		var active *Mode
		if len(modeStack) > 0 {
			active = modeStack[len(modeStack)-1]
		}

		if err := cfg.applyDirective(tokens, active, &modeStack, lineNo); err != nil {
			errs = append(errs, ParseError{Line: lineNo, Reason: err.Error()})
		}
	}
	return cfg, errs
}

// applyDirective dispatches one tokenized, variable-substituted line to
// its directive handler. active is the enclosing `mode { ... }` block's
// Mode, if any; modeStack lets `mode "NAME" {` push a new block.
func (cfg *Config) applyDirective(tokens []string, active *Mode, modeStack *[]*Mode, lineNo int) error {
	switch tokens[0] {
	case "set":
		return cfg.applySet(tokens[1:])
	case "output":
		return cfg.applyOutput(tokens[1:])
	case "virtual_output":
		return cfg.applyVirtualOutput(tokens[1:])
	case "workspace_layout":
		return cfg.applyWorkspaceLayout(tokens[1:])
	case "gaps":
		return cfg.applyGaps(tokens[1:])
	case "focus_follows_mouse":
		return cfg.applyFocusFollowsMouse(tokens[1:])
	case "bindsym":
		return cfg.applyBindsym(tokens[1:], active)
	case "mode":
		return cfg.applyMode(tokens[1:], modeStack, lineNo)
	case "for_window":
		return cfg.applyForWindow(tokens[1:])
	default:
		return fmt.Errorf("unknown directive %q", tokens[0])
	}
}

func (cfg *Config) applySet(tokens []string) error {
	if len(tokens) < 2 || !strings.HasPrefix(tokens[0], "$") {
		return fmt.Errorf("set requires $VAR VALUE")
	}
	cfg.Vars[tokens[0]] = strings.Join(tokens[1:], " ")
	return nil
}

func (cfg *Config) applyWorkspaceLayout(tokens []string) error {
	if len(tokens) == 0 {
		return fmt.Errorf("workspace_layout requires an argument")
	}
	switch tokens[0] {
	case "default":
		cfg.WorkspaceLayout = layout.KindSplit
	case "stacking":
		cfg.WorkspaceLayout = layout.KindStacked
	case "tabbed":
		cfg.WorkspaceLayout = layout.KindTabbed
	default:
		return fmt.Errorf("unrecognised workspace_layout %q", tokens[0])
	}
	return nil
}

func (cfg *Config) applyGaps(tokens []string) error {
	if len(tokens) != 2 {
		return fmt.Errorf("gaps requires inner|outer N")
	}
	n, err := strconv.ParseInt(tokens[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid gap size %q: %w", tokens[1], err)
	}
	switch tokens[0] {
	case "inner":
		cfg.InnerGap = int32(n)
	case "outer":
		cfg.OuterGap = int32(n)
	default:
		return fmt.Errorf("gaps target must be inner or outer, got %q", tokens[0])
	}
	return nil
}

func (cfg *Config) applyFocusFollowsMouse(tokens []string) error {
	if len(tokens) != 1 {
		return fmt.Errorf("focus_follows_mouse requires yes|no")
	}
	switch tokens[0] {
	case "yes":
		cfg.FocusFollowsMouse = true
	case "no":
		cfg.FocusFollowsMouse = false
	default:
		return fmt.Errorf("focus_follows_mouse requires yes|no, got %q", tokens[0])
	}
	return nil
}

func (cfg *Config) applyBindsym(tokens []string, active *Mode) error {
	if len(tokens) < 2 {
		return fmt.Errorf("bindsym requires KEYS and a command")
	}
	cmd, err := parseCommand(tokens[1:])
	if err != nil {
		return err
	}
	bind := Bind{Keys: tokens[0], Command: cmd}
	if active != nil {
		active.Binds = append(active.Binds, bind)
	} else {
		cfg.Binds = append(cfg.Binds, bind)
	}
	return nil
}

// applyMode handles the block form (`mode "NAME" {`, pushing a new mode
// onto modeStack until a matching `}` line). A `mode "NAME"` directive
// without the trailing `{` is rejected; the switch-to-mode command form
// only appears inside bindsym lines, where parseCommand compiles it.
func (cfg *Config) applyMode(tokens []string, modeStack *[]*Mode, lineNo int) error {
	if len(tokens) == 0 {
		return fmt.Errorf("mode requires a name")
	}
	name := tokens[0]
	if len(tokens) < 2 || tokens[len(tokens)-1] != "{" {
		return fmt.Errorf("mode %q: expected a trailing '{' to open its block", name)
	}
	m := &Mode{Name: name}
	cfg.Modes[name] = m
	*modeStack = append(*modeStack, m)
	return nil
}

// applyForWindow parses a `for_window` directive's trailing JSON blob.
// The blob is sanitized with jsonc.Sanitize first, so a rule block can
// carry `//`/`/* */` comments the way the rest of the file's `#`
// comments work.
func (cfg *Config) applyForWindow(tokens []string) error {
	blob := strings.Join(tokens, " ")
	clean, err := jsonc.Sanitize([]byte(blob))
	if err != nil {
		return fmt.Errorf("for_window: %w", err)
	}
	var rules WindowRules
	if err := rules.UnmarshalJSON(clean); err != nil {
		return err
	}
	cfg.WindowRules = append(cfg.WindowRules, rules...)
	return nil
}
