package tui

import (
	"fmt"
	"strings"

	"github.com/jask/a11ycoord/core"
)

const defaultWidth = 60

func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = defaultWidth
	}
	title := "Accessibility"
	body := a.renderSettings()
	if a.onHelp() {
		title = "Voice commands"
		body = a.renderCommands()
	}
	parts := []string{a.theme.Header.Render(title), "", body}
	if a.listening {
		parts = append(parts, "", a.input.View())
	}
	parts = append(parts, "",
		core.RenderStatusBar(a.status, a.statusErr, width, a.theme),
		core.RenderFooter(a.keys, a.keyScope(), width, a.theme),
	)
	out := a.theme.App.Render(strings.Join(parts, "\n"))
	if a.height > 0 {
		out = core.ClipHeight(out, a.height)
	}
	return out
}

func (a *App) renderSettings() string {
	focused := a.els.Focused()
	lines := make([]string, 0, len(a.rows)*(1+a.theme.RowGap))
	for _, r := range a.rows {
		text := r.label
		style := a.theme.Row
		if r.flag != "" {
			ts := a.coord.Toggle(r.flag)
			text = fmt.Sprintf("%-20s %-3s", r.label, onOff(ts.Value))
			if ts.DeviceEnforced {
				text += "  (system)"
			}
			if ts.Locked {
				style = a.theme.Locked
				text += " locked"
			}
		}
		marker := "  "
		if r.ref == focused {
			style = a.theme.Focused
			marker = "> "
		}
		lines = append(lines, style.Render(marker+text))
		for range a.theme.RowGap {
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderCommands() string {
	cmds := a.coord.Commands("")
	lines := make([]string, 0, len(cmds)+1)
	lines = append(lines, a.theme.Help.Render("Press : and say one of these."))
	for _, c := range cmds {
		lines = append(lines, a.theme.Row.Render(fmt.Sprintf("%-24s %s", c.Phrase, c.Description)))
	}
	return strings.Join(lines, "\n")
}
