package core

import (
	"strings"
	"testing"

	"github.com/jask/a11ycoord/internal/prefs"
)

func TestThemeFollowsPreferences(t *testing.T) {
	base := NewTheme(prefs.Preferences{})
	if !base.Animate || base.RowGap != 0 {
		t.Fatalf("default theme: animate=%v gap=%d", base.Animate, base.RowGap)
	}
	if base.Row.GetBold() {
		t.Fatalf("rows should not be bold by default")
	}

	th := NewTheme(prefs.Preferences{LargeText: true, BoldText: true, ReduceMotion: true})
	if th.Animate {
		t.Fatalf("reduce motion should disable animation")
	}
	if th.RowGap != 1 || th.Row.GetPaddingLeft() != 2 {
		t.Fatalf("large text should widen rows: gap=%d pad=%d", th.RowGap, th.Row.GetPaddingLeft())
	}
	if !th.Row.GetBold() {
		t.Fatalf("bold text should embolden rows")
	}
}

func TestThemeHighContrastWinsOverGrayscale(t *testing.T) {
	th := NewTheme(prefs.Preferences{HighContrast: true, Grayscale: true})
	if th.App.GetForeground() != highContrastPalette.Text {
		t.Fatalf("expected high contrast text, got %v", th.App.GetForeground())
	}
	if !th.Focused.GetUnderline() {
		t.Fatalf("high contrast focus should be underlined")
	}
	gray := NewTheme(prefs.Preferences{Grayscale: true})
	if gray.App.GetForeground() != grayscalePalette.Text {
		t.Fatalf("expected grayscale text, got %v", gray.App.GetForeground())
	}
}

func TestThemeInvertSwapsColors(t *testing.T) {
	th := NewTheme(prefs.Preferences{InvertColors: true})
	if th.App.GetForeground() != defaultPalette.Bg || th.App.GetBackground() != defaultPalette.Text {
		t.Fatalf("invert should swap text and background")
	}
}

func TestRenderFooterListsScopeKeys(t *testing.T) {
	keys := NewKeyRegistry(DefaultKeyBindings())
	th := NewTheme(prefs.Preferences{})
	out := RenderFooter(keys, ScopeVoice, 80, th)
	for _, want := range []string{"enter", "run", "esc", "cancel"} {
		if !strings.Contains(out, want) {
			t.Fatalf("footer %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "tab") {
		t.Fatalf("footer %q lists a navigate-scope key", out)
	}
	if got := ClipHeight("a\nb\nc", 2); got != "a\nb" {
		t.Fatalf("ClipHeight = %q", got)
	}
	if got := ClipHeight("a", 0); got != "" {
		t.Fatalf("ClipHeight zero = %q", got)
	}
}
