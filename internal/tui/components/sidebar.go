package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/tui/theme"
)

// NavItem is one sidebar entry.
type NavItem struct {
	Route string
	Label string
	Icon  string
	Key   string
}

// Sidebar widths.
const (
	SidebarWidth          = 22
	SidebarCollapsedWidth = 5
)

// SidebarItemsTop is the first row of sidebar items; each item takes
// one row after it.
const SidebarItemsTop = 1

// SidebarWidthFor returns the sidebar width for the collapsed flag.
func SidebarWidthFor(collapsed bool) int {
	if collapsed {
		return SidebarCollapsedWidth
	}
	return SidebarWidth
}

// RenderSidebar renders the navigation menu at height rows. Collapsed it
// shows icons only.
func RenderSidebar(items []NavItem, activeRoute string, collapsed bool, height int) string {
	t := theme.Active
	w := SidebarWidthFor(collapsed)

	base := lipgloss.NewStyle().Background(t.Surface).Width(w)
	itemStyle := base.Foreground(t.TextMuted)
	activeStyle := base.Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	lines := []string{base.Render("")}
	for _, it := range items {
		var label string
		if collapsed {
			label = " " + it.Icon
		} else {
			label = " " + it.Icon + " " + it.Label + " " + keyStyle.Render(it.Key)
		}
		if it.Route == activeRoute {
			lines = append(lines, activeStyle.Render(label))
		} else {
			lines = append(lines, itemStyle.Render(label))
		}
	}
	for len(lines) < height {
		lines = append(lines, base.Render(""))
	}
	if len(lines) > height && height > 0 {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// SidebarItemAtY returns the item index for row y of the sidebar, or -1.
func SidebarItemAtY(items []NavItem, y int) int {
	i := y - SidebarItemsTop
	if i < 0 || i >= len(items) {
		return -1
	}
	return i
}
