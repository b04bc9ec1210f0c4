package core

import "strings"

// Scope names used by the default bindings.
const (
	ScopeNavigate = "navigate"
	ScopeVoice    = "voice-input"
	ScopeHelp     = "help"
)

// DefaultKeyBindings is the keyboard and switch-access layout: a single
// switch maps to focus-next and a second switch to activate.
func DefaultKeyBindings() []KeyBinding {
	return []KeyBinding{
		{Keys: []string{"tab", "down", "j"}, Action: ActionFocusNext, Description: "next", Scopes: []string{ScopeNavigate}},
		{Keys: []string{"shift+tab", "up", "k"}, Action: ActionFocusPrev, Description: "previous", Scopes: []string{ScopeNavigate}},
		{Keys: []string{"enter", "space"}, Action: ActionActivate, Description: "toggle", Scopes: []string{ScopeNavigate}},
		{Keys: []string{":"}, Action: ActionVoice, Description: "speak", Scopes: []string{ScopeNavigate}},
		{Keys: []string{"r"}, Action: ActionReset, Description: "reset", Scopes: []string{ScopeNavigate}},
		{Keys: []string{"?"}, Action: ActionHelp, Description: "commands", Scopes: []string{ScopeNavigate}},
		{Keys: []string{"q"}, Action: ActionQuit, Description: "quit", Scopes: []string{ScopeNavigate}},
		{Keys: []string{"esc", "q", "?"}, Action: ActionBack, Description: "close", Scopes: []string{ScopeHelp}},
		{Keys: []string{"enter"}, Action: ActionActivate, Description: "run", Scopes: []string{ScopeVoice}},
		{Keys: []string{"esc"}, Action: ActionBack, Description: "cancel", Scopes: []string{ScopeVoice}},
		{Keys: []string{"ctrl+c"}, Action: ActionQuit, Description: "quit", Scopes: []string{"*"}},
	}
}

// ApplyActionKeybindings replaces the keys of every binding whose action
// appears in actionKeys, leaving the rest untouched. Config overrides use it.
func ApplyActionKeybindings(bindings []KeyBinding, actionKeys map[string][]string) []KeyBinding {
	out := make([]KeyBinding, 0, len(bindings))
	for _, b := range bindings {
		next := KeyBinding{
			Keys:        append([]string(nil), b.Keys...),
			Action:      b.Action,
			Description: b.Description,
			Scopes:      append([]string(nil), b.Scopes...),
		}
		if keys, ok := actionKeys[strings.TrimSpace(string(b.Action))]; ok && len(keys) > 0 {
			next.Keys = append([]string(nil), keys...)
		}
		out = append(out, next)
	}
	return out
}
