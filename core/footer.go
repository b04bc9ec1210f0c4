package core

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// RenderFooter lists the key hints for scope on one line of the given width.
func RenderFooter(keys *KeyRegistry, scope string, width int, th Theme) string {
	h := help.New()
	h.Width = max(1, width)
	h.ShortSeparator = "  "
	h.Styles.ShortKey = th.Key
	h.Styles.ShortDesc = th.Help
	h.Styles.ShortSeparator = th.Help
	h.Styles.Ellipsis = th.Help
	line := h.ShortHelpView(keys.HelpBindings(scope))
	if line == "" {
		line = th.Help.Render("No shortcuts")
	}
	return renderBar(th.Footer, max(1, width), line)
}

// RenderStatusBar shows msg, or "Ready" when empty.
func RenderStatusBar(msg string, isErr bool, width int, th Theme) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = "Ready"
	}
	if isErr {
		return renderBar(th.StatusEr, max(1, width), msg)
	}
	return renderBar(th.Status, max(1, width), msg)
}

func renderBar(style lipgloss.Style, width int, text string) string {
	line := strings.ReplaceAll(text, "\n", " ")
	return style.Width(width).MaxWidth(width).Render(line)
}

// ClipHeight drops lines past height.
func ClipHeight(s string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
