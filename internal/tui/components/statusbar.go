package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/tui/theme"
)

// KeyHint is one "[k]label" pair in the status bar.
type KeyHint struct {
	Key   string
	Label string
}

// RenderStatusBar renders the bottom status bar: key hints on the left,
// right-aligned info (session expiry, busy state) on the right.
func RenderStatusBar(width int, hints []KeyHint, right string) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().
		Background(t.Surface).
		Width(width)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)
	labelStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	rightStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var left strings.Builder
	left.WriteString(spaceStyle.Render(" "))
	for i, h := range hints {
		if i > 0 {
			left.WriteString(spaceStyle.Render("  "))
		}
		left.WriteString(keyStyle.Render("[" + h.Key + "]"))
		left.WriteString(labelStyle.Render(h.Label))
	}

	l := left.String()
	r := ""
	if right != "" {
		r = rightStyle.Render(right + " ")
	}

	// Pad middle
	padding := width - lipgloss.Width(l) - lipgloss.Width(r)
	if padding < 0 {
		padding = 0
	}

	return barStyle.Render(l + spaceStyle.Render(strings.Repeat(" ", padding)) + r)
}
