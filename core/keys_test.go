package core

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func isAction(reg *KeyRegistry, msg tea.KeyMsg, action Action, scope string) bool {
	got, ok := reg.ActionFor(msg, scope)
	return ok && got == action
}

func TestKeyRegistryScopeMatch(t *testing.T) {
	reg := NewKeyRegistry([]KeyBinding{
		{Keys: []string{"tab"}, Action: ActionFocusNext, Scopes: []string{ScopeNavigate}},
		{Keys: []string{"ctrl+c"}, Action: ActionQuit, Scopes: []string{"*"}},
	})
	if !isAction(reg, tea.KeyMsg{Type: tea.KeyTab}, ActionFocusNext, ScopeNavigate) {
		t.Fatalf("expected tab in navigate scope")
	}
	if isAction(reg, tea.KeyMsg{Type: tea.KeyTab}, ActionFocusNext, ScopeVoice) {
		t.Fatalf("did not expect tab in voice scope")
	}
	if !isAction(reg, tea.KeyMsg{Type: tea.KeyCtrlC}, ActionQuit, ScopeVoice) {
		t.Fatalf("expected ctrl+c to match wildcard scope")
	}
}

func TestDefaultBindingsResolveTraversalKeys(t *testing.T) {
	reg := NewKeyRegistry(DefaultKeyBindings())
	cases := []struct {
		msg  tea.KeyMsg
		want Action
	}{
		{tea.KeyMsg{Type: tea.KeyTab}, ActionFocusNext},
		{tea.KeyMsg{Type: tea.KeyDown}, ActionFocusNext},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, ActionFocusPrev},
		{tea.KeyMsg{Type: tea.KeyUp}, ActionFocusPrev},
		{tea.KeyMsg{Type: tea.KeyEnter}, ActionActivate},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, ActionActivate},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{':'}}, ActionVoice},
	}
	for _, tc := range cases {
		got, ok := reg.ActionFor(tc.msg, ScopeNavigate)
		if !ok || got != tc.want {
			t.Fatalf("key %q: got %q (%v), want %q", tc.msg.String(), got, ok, tc.want)
		}
	}
	if _, ok := reg.ActionFor(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}}, ScopeNavigate); ok {
		t.Fatalf("z should be unbound")
	}
}

func TestApplyActionKeybindingsOverridesKeys(t *testing.T) {
	out := ApplyActionKeybindings(DefaultKeyBindings(), map[string][]string{"focus-next": {"n"}})
	reg := NewKeyRegistry(out)
	if !isAction(reg, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}}, ActionFocusNext, ScopeNavigate) {
		t.Fatalf("expected override key n for focus-next")
	}
	if isAction(reg, tea.KeyMsg{Type: tea.KeyTab}, ActionFocusNext, ScopeNavigate) {
		t.Fatalf("tab should no longer move focus")
	}
}

func TestHelpBindingsFollowOverrides(t *testing.T) {
	out := ApplyActionKeybindings(DefaultKeyBindings(), map[string][]string{"back": {"x", "esc"}})
	reg := NewKeyRegistry(out)
	bindings := reg.HelpBindings(ScopeVoice)
	var helps []string
	for _, b := range bindings {
		helps = append(helps, b.Help().Key+" "+b.Help().Desc)
	}
	want := []string{"enter run", "x cancel", "ctrl+c quit"}
	if len(helps) != len(want) {
		t.Fatalf("help bindings = %q, want %q", helps, want)
	}
	for i := range want {
		if helps[i] != want[i] {
			t.Fatalf("help bindings = %q, want %q", helps, want)
		}
	}
}
