package config

import (
	"encoding/json"
	"fmt"
	"regexp"

	"stilch/internal/ids"
	"stilch/internal/registry"
)

// WindowRuleConfig is the JSON-decodable shape of one `for_window` rule
// (SPEC_FULL.md's supplemented feature), mirroring the teacher's
// module.WindowRuleConfig (module/config.go) field-for-field for the
// matching criteria and extending it with the placement/workspace/urgent
// actions a for_window rule actually applies on window map.
type WindowRuleConfig struct {
	AppId    string `json:"app-id"`
	Title    string `json:"title"`
	Class    string `json:"class"`
	Workspace string `json:"workspace"`
	Floating bool   `json:"floating"`
	Urgent   bool   `json:"urgent"`
	Continue bool   `json:"continue"`
}

// WindowRule is one compiled for_window rule. AppId and Class both match
// against registry.Hints.Class, which carries the Wayland app_id or X11
// WM_CLASS depending on the originating surface type (§6 WindowMapped
// hints); Title matches registry.Hints.Title. A rule leaves a criterion
// nil to mean "don't care".
type WindowRule struct {
	AppId     *regexp.Regexp
	Title     *regexp.Regexp
	Class     *regexp.Regexp
	Workspace ids.WorkspaceId
	HasWorkspace bool
	Floating  bool
	Urgent    bool
	Continue  bool
}

// Matches reports whether hints satisfies every non-nil criterion of r.
func (r *WindowRule) Matches(hints registry.Hints) bool {
	if r.AppId != nil && !r.AppId.MatchString(hints.Class) {
		return false
	}
	if r.Title != nil && !r.Title.MatchString(hints.Title) {
		return false
	}
	if r.Class != nil && !r.Class.MatchString(hints.Class) {
		return false
	}
	return true
}

// WindowRules is an ordered list of compiled for_window rules, decoded
// from JSON exactly the way the teacher decodes its `rules` config key
// (module/config.go WindowRules.UnmarshalJSON): unmarshal into the plain
// config shape first, then compile each regex field, surfacing the first
// compile error.
type WindowRules []WindowRule

func (w *WindowRules) UnmarshalJSON(data []byte) error {
	var rules []WindowRuleConfig
	if err := json.Unmarshal(data, &rules); err != nil {
		return fmt.Errorf("config: error unmarshaling for_window rules: %w", err)
	}
	out := make([]WindowRule, len(rules))
	for idx, rule := range rules {
		if rule.AppId != "" {
			re, err := regexp.Compile(rule.AppId)
			if err != nil {
				return fmt.Errorf("config: error compiling app-id regex %q: %w", rule.AppId, err)
			}
			out[idx].AppId = re
		}
		if rule.Title != "" {
			re, err := regexp.Compile(rule.Title)
			if err != nil {
				return fmt.Errorf("config: error compiling title regex %q: %w", rule.Title, err)
			}
			out[idx].Title = re
		}
		if rule.Class != "" {
			re, err := regexp.Compile(rule.Class)
			if err != nil {
				return fmt.Errorf("config: error compiling class regex %q: %w", rule.Class, err)
			}
			out[idx].Class = re
		}
		if rule.Workspace != "" {
			var n uint64
			if _, err := fmt.Sscanf(rule.Workspace, "%d", &n); err == nil {
				out[idx].Workspace = ids.WorkspaceId(n)
				out[idx].HasWorkspace = true
			}
		}
		out[idx].Floating = rule.Floating
		out[idx].Urgent = rule.Urgent
		out[idx].Continue = rule.Continue
	}
	*w = out
	return nil
}

// Apply runs hints through rules in order, returning the accumulated
// placement decision. Matching stops at the first matching rule whose
// Continue is false; Continue: true lets later rules also contribute (e.g. one rule
// picks the workspace, another marks the window urgent).
func (w WindowRules) Apply(hints registry.Hints) (floating bool, workspace ids.WorkspaceId, hasWorkspace bool, urgent bool) {
	for _, rule := range w {
		if !rule.Matches(hints) {
			continue
		}
		if rule.Floating {
			floating = true
		}
		if rule.HasWorkspace {
			workspace, hasWorkspace = rule.Workspace, true
		}
		if rule.Urgent {
			urgent = true
		}
		if !rule.Continue {
			break
		}
	}
	return
}
