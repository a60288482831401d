package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/tui/theme"
)

// Tab represents a single tab in a tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// ChallengeTabs are the sub-tabs of the challenges page.
var ChallengeTabs = []Tab{
	{Name: "Challenges", Key: 'c', KeyPos: 0},
	{Name: "Achievements", Key: 'a', KeyPos: 0},
	{Name: "Rankings", Key: 'k', KeyPos: -1},
}

func renderTab(tab Tab, active bool) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)
	dimKeyStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)
	padStyle := lipgloss.NewStyle().Background(t.Surface)

	if active {
		return activeStyle.Render(tab.Name)
	}

	// Render with highlighted shortcut key
	var body string
	if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
		before := tab.Name[:tab.KeyPos]
		key := string(tab.Name[tab.KeyPos])
		after := tab.Name[tab.KeyPos+1:]
		body = inactiveStyle.Render(before) +
			dimKeyStyle.Render("[") + keyStyle.Render(key) + dimKeyStyle.Render("]") +
			inactiveStyle.Render(after)
	} else {
		// Key not in name (e.g., "Rankings" with 'k')
		body = inactiveStyle.Render(tab.Name) +
			dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]")
	}
	return padStyle.Render(" ") + body + padStyle.Render(" ")
}

// RenderTabBar renders tabs on one line with the given active index.
func RenderTabBar(tabs []Tab, activeIdx int, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, len(tabs))
	for i, tab := range tabs {
		parts[i] = renderTab(tab, i == activeIdx)
	}

	return lipgloss.NewStyle().
		Background(t.Surface).
		Width(width).
		Render(strings.Join(parts, sep))
}

// TabVisualWidth is the rendered width of tab, matching RenderTabBar.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// TabAtX returns the tab index at column x of a bar rendered by
// RenderTabBar, or -1.
func TabAtX(tabs []Tab, activeIdx, x int) int {
	pos := 0
	for i, tab := range tabs {
		w := TabVisualWidth(tab, i == activeIdx)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w
		// Separator is one column between tabs.
		if i < len(tabs)-1 {
			pos++
		}
	}
	return -1
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(tabs []Tab, key rune) int {
	for i, tab := range tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
