package core

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/a11ycoord/internal/prefs"
)

type palette struct {
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Bg      lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Surface lipgloss.Color
}

var (
	defaultPalette = palette{
		Text:    "#cdd6f4",
		Muted:   "#a6adc8",
		Border:  "#585b70",
		Bg:      "#1e1e2e",
		Accent:  "#89b4fa",
		Success: "#a6e3a1",
		Error:   "#f38ba8",
		Surface: "#313244",
	}
	highContrastPalette = palette{
		Text:    "#ffffff",
		Muted:   "#ffffff",
		Border:  "#ffffff",
		Bg:      "#000000",
		Accent:  "#ffff00",
		Success: "#00ff00",
		Error:   "#ff5555",
		Surface: "#000000",
	}
	grayscalePalette = palette{
		Text:    "#e0e0e0",
		Muted:   "#a0a0a0",
		Border:  "#606060",
		Bg:      "#1c1c1c",
		Accent:  "#ffffff",
		Success: "#c0c0c0",
		Error:   "#ffffff",
		Surface: "#303030",
	}
)

// Theme holds the styles for one effective preference set.
type Theme struct {
	App      lipgloss.Style
	Header   lipgloss.Style
	Row      lipgloss.Style
	Focused  lipgloss.Style
	Locked   lipgloss.Style
	Status   lipgloss.Style
	StatusEr lipgloss.Style
	Key      lipgloss.Style
	Help     lipgloss.Style
	Footer   lipgloss.Style

	// RowGap is the number of blank lines between rows; large text widens it.
	RowGap int
	// Animate is false when motion should be reduced.
	Animate bool
}

// NewTheme derives styles from effective preferences. High contrast wins
// over grayscale; inversion swaps foreground and background afterwards.
func NewTheme(p prefs.Preferences) Theme {
	pal := defaultPalette
	switch {
	case p.HighContrast:
		pal = highContrastPalette
	case p.Grayscale:
		pal = grayscalePalette
	}
	if p.InvertColors {
		pal.Text, pal.Bg = pal.Bg, pal.Text
		pal.Surface, pal.Muted = pal.Muted, pal.Surface
	}

	base := lipgloss.NewStyle().Foreground(pal.Text).Background(pal.Bg).Bold(p.BoldText)
	th := Theme{
		App:      base,
		Header:   base.Foreground(pal.Accent).Bold(true),
		Row:      base.Padding(0, 1),
		Focused:  base.Padding(0, 1).Foreground(pal.Bg).Background(pal.Accent).Bold(true),
		Locked:   base.Padding(0, 1).Foreground(pal.Muted),
		Status:   base.Foreground(pal.Success).Background(pal.Surface),
		StatusEr: base.Foreground(pal.Error).Background(pal.Surface),
		Key:      base.Foreground(pal.Accent).Bold(true),
		Help:     base.Foreground(pal.Muted),
		Footer:   base.Background(pal.Surface),
		Animate:  !p.ReduceMotion,
	}
	if p.HighContrast {
		th.Focused = th.Focused.Underline(true)
	}
	if p.LargeText {
		th.RowGap = 1
		th.Row = th.Row.Padding(0, 2)
		th.Focused = th.Focused.Padding(0, 2)
		th.Locked = th.Locked.Padding(0, 2)
	}
	return th
}
