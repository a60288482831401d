package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/tui/theme"
	"github.com/theirongolddev/poupa/internal/xp"
)

// RenderToasts renders active notifications stacked, oldest first. XP
// grants are yellow, level messages use the accent colour.
func RenderToasts(notes []xp.Notification, width int) string {
	if len(notes) == 0 {
		return ""
	}
	t := theme.Active

	if width > 60 {
		width = 60
	}
	if width < 20 {
		width = 20
	}

	rendered := make([]string, 0, len(notes))
	for _, n := range notes {
		color, icon := t.Accent, "▲"
		if n.Kind == xp.KindXP {
			color, icon = t.Yellow, "★"
		}
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color).
			BorderBackground(t.Background).
			Foreground(t.TextPrimary).
			Background(t.SurfaceBright).
			Width(width-2).
			Padding(0, 1)
		iconStyle := lipgloss.NewStyle().Foreground(color).Background(t.SurfaceBright).Bold(true)
		rendered = append(rendered, style.Render(iconStyle.Render(icon)+" "+n.Message))
	}
	return strings.Join(rendered, "\n")
}

// Banner renders a one-line page message. An error banner is red, anything
// else uses the accent colour.
func Banner(msg string, isErr bool, width int) string {
	if msg == "" {
		return ""
	}
	t := theme.Active
	fg := t.Accent
	icon := "i"
	if isErr {
		fg = t.Red
		icon = "!"
	}
	return lipgloss.NewStyle().
		Foreground(fg).
		Background(t.Surface).
		Bold(true).
		Width(width).
		Padding(0, 1).
		Render(icon + " " + msg)
}
