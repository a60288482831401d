package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/tui/theme"
	"github.com/theirongolddev/poupa/internal/xp"
)

// ProgressBar renders a challenge/achievement progress bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	barColor := ColorForPct(pct)

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
}

// ColorForPct goes from cyan to bright green as a goal nears completion.
func ColorForPct(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.GreenBright
	case pct >= 0.7:
		return t.Green
	case pct >= 0.4:
		return t.Accent
	default:
		return t.Cyan
	}
}

// XPBar renders the header level indicator: level badge, bar and
// "xp/next XP" text. A state with a non-positive next_level_xp renders an
// empty bar and a dash instead of failing.
func XPBar(s xp.State, barWidth int) string {
	t := theme.Active

	frac, err := xp.ProgressFraction(s)
	text := xp.FormatProgress(s)
	if err != nil {
		frac, text = 0, "- XP"
	}
	if barWidth < 4 {
		barWidth = 4
	}

	bar := progress.New(
		progress.WithSolidFill(string(t.Yellow)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	badgeStyle := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Yellow).
		Bold(true).
		Padding(0, 1)
	textStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return badgeStyle.Render(fmt.Sprintf("Lv %d", s.Level)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(frac) +
		spaceStyle.Render(" ") +
		textStyle.Render(text)
}

// XPBarWidth is the rendered width of XPBar for s at barWidth.
func XPBarWidth(s xp.State, barWidth int) int {
	return lipgloss.Width(XPBar(s, barWidth))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
