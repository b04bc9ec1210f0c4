package core

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Action is what a key press means to the coordinator's keyboard layer.
type Action string

const (
	ActionFocusNext Action = "focus-next"
	ActionFocusPrev Action = "focus-prev"
	ActionActivate  Action = "activate"
	ActionVoice     Action = "voice"
	ActionReset     Action = "reset"
	ActionBack      Action = "back"
	ActionHelp      Action = "help"
	ActionQuit      Action = "quit"
)

type KeyBinding struct {
	Keys        []string
	Action      Action
	Description string
	Scopes      []string
}

type KeyRegistry struct {
	bindings []KeyBinding
}

func NewKeyRegistry(bindings []KeyBinding) *KeyRegistry {
	return &KeyRegistry{bindings: slices.Clone(bindings)}
}

func (r *KeyRegistry) BindingsForScope(scope string) []KeyBinding {
	out := make([]KeyBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		if scopeMatch(scope, b.Scopes) {
			out = append(out, b)
		}
	}
	return out
}

// HelpBindings returns one bubbles binding per action in scope, first
// registration wins, labelled with the action's first key.
func (r *KeyRegistry) HelpBindings(scope string) []key.Binding {
	seen := map[Action]bool{}
	var out []key.Binding
	for _, b := range r.BindingsForScope(scope) {
		if len(b.Keys) == 0 || seen[b.Action] {
			continue
		}
		seen[b.Action] = true
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Description)))
	}
	return out
}

// ActionFor resolves a key press to the first binding in scope that lists it.
func (r *KeyRegistry) ActionFor(msg tea.KeyMsg, scope string) (Action, bool) {
	pressed := normalizeKey(msg.String())
	for _, b := range r.bindings {
		if !scopeMatch(scope, b.Scopes) {
			continue
		}
		for _, k := range b.Keys {
			if normalizeKey(k) == pressed {
				return b.Action, true
			}
		}
	}
	return "", false
}

func normalizeKey(k string) string {
	if k == " " {
		return "space"
	}
	return strings.ToLower(strings.TrimSpace(k))
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}
