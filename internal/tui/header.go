package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/cli"
	"github.com/theirongolddev/poupa/internal/gamify"
	"github.com/theirongolddev/poupa/internal/store"
	"github.com/theirongolddev/poupa/internal/tui/components"
	"github.com/theirongolddev/poupa/internal/tui/theme"
	"github.com/theirongolddev/poupa/internal/xp"
)

const xpBarWidth = 16

// renderHeader draws the top bar. Logged-in pages get the menu glyph, the
// level indicator and the username.
func (a App) renderHeader(w int) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface).Width(w)
	logoStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	userStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	deltaStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	modeGlyph := "☾"
	if a.mode == store.ThemeLight {
		modeGlyph = "☀"
	}

	left := spaceStyle.Render(" ")
	if Gated(a.route) {
		left += dimStyle.Render("☰ ")
	}
	left += logoStyle.Render("ᗧ Pac Poupança")

	right := ""
	if Gated(a.route) {
		if s, ok := a.deps.XP.Current(); ok {
			right += a.renderDelta(deltaStyle, spaceStyle)
			right += components.XPBar(s, xpBarWidth)
			if a.recalculating() {
				right += dimStyle.Render(" ↻")
			}
		} else {
			right += dimStyle.Render("Lv -")
		}
		if name := a.deps.Prefs.Session().Username; name != "" {
			right += spaceStyle.Render("  ") + userStyle.Render(truncStr(name, 16))
		}
	}
	right += spaceStyle.Render("  ") + dimStyle.Render(modeGlyph) + spaceStyle.Render(" ")

	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Too narrow for everything: drop the right side.
		return barStyle.Render(left)
	}
	return barStyle.Render(left + spaceStyle.Render(repeatSpace(gap)) + right)
}

// renderDelta shows the last XP change while its notification would still
// be visible.
func (a App) renderDelta(style, space lipgloss.Style) string {
	if a.lastDelta.XP == 0 || a.deltaAt.IsZero() {
		return ""
	}
	if a.deps.Now().Sub(a.deltaAt) >= xp.NotificationTTL {
		return ""
	}
	return style.Render(cli.FormatXPDelta(a.lastDelta.XP)) + space.Render(" ")
}

func (a App) recalculating() bool {
	rp, ok := a.page.(reconciling)
	if !ok {
		return false
	}
	return rp.Reconciler().Snapshot().Phase == gamify.PhaseRecalculating
}

func repeatSpace(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
