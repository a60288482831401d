package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/theirongolddev/poupa/internal/tui/theme"
)

var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// bucket sums values into n consecutive groups. Labels take the first
// label of each group.
func bucket(values []float64, labels []string, n int) ([]float64, []string) {
	out := make([]float64, n)
	var outLabels []string
	if len(labels) == len(values) {
		outLabels = make([]string, n)
	}
	for i, v := range values {
		j := i * n / len(values)
		if outLabels != nil && outLabels[j] == "" {
			outLabels[j] = labels[i]
		}
		out[j] += v
	}
	return out, outLabels
}

// DailyBars renders amounts per day as vertical bars with a currency scale
// on the left. When there are more days than columns, neighbouring days are
// summed into one bar.
func DailyBars(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 || height < 2 {
		return ""
	}
	t := theme.Active
	bg := lipgloss.NewStyle().Background(t.Surface)
	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	// No bar can exceed the total, so its label bounds the scale width.
	total := 0.0
	for _, v := range values {
		total += v
	}
	scaleW := ansi.StringWidth(shortBRL(total)) + 1

	chartW := max(width-scaleW-1, 2)
	if len(values) > chartW {
		values, labels = bucket(values, labels, chartW)
	}
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	top := shortBRL(peak)
	n := len(values)
	colW := min(max((chartW+1)/n-1, 1), 4)
	gap := 1
	if n*(colW+1)-1 > chartW {
		gap = 0
	}
	plotW := n*colW + (n-1)*gap

	rows := height - 1
	if len(labels) == n {
		rows--
	}
	rows = max(rows, 1)

	var b strings.Builder
	for r := rows; r >= 1; r-- {
		scale := ""
		if r == rows {
			scale = top
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s", scaleW, scale) + "│"))
		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(bg.Render(" "))
			}
			cell := ' '
			if peak > 0 {
				// Height in eighths of a row.
				h := v / peak * float64(rows*8)
				switch fill := h - float64((r-1)*8); {
				case fill >= 8:
					cell = '█'
				case fill > 0:
					cell = eighths[max(int(fill), 1)]
				}
			}
			b.WriteString(bar.Render(strings.Repeat(string(cell), colW)))
		}
		b.WriteString("\n")
	}
	b.WriteString(axis.Render(fmt.Sprintf("%*s", scaleW, "0") + "└" + strings.Repeat("─", plotW)))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(bg.Render(strings.Repeat(" ", scaleW+1)))
		b.WriteString(axis.Render(axisLabels(labels, colW+gap, plotW)))
	}
	return b.String()
}

// axisLabels places the first, middle and last labels under their columns
// when they fit without overlapping.
func axisLabels(labels []string, step, width int) string {
	line := []rune(strings.Repeat(" ", width))
	next := 0
	for _, i := range []int{0, len(labels) / 2, len(labels) - 1} {
		lbl := []rune(labels[i])
		pos := i * step
		if pos+len(lbl) > width {
			pos = width - len(lbl)
		}
		if pos < next || pos < 0 {
			continue
		}
		copy(line[pos:], lbl)
		next = pos + len(lbl) + 1
	}
	return strings.TrimRight(string(line), " ")
}

// shortBRL keeps scale labels narrow: "R$ 850", "R$ 1,2k".
func shortBRL(v float64) string {
	switch {
	case v >= 1e6:
		return "R$ " + strings.Replace(fmt.Sprintf("%.1fM", v/1e6), ".", ",", 1)
	case v >= 1e3:
		return "R$ " + strings.Replace(fmt.Sprintf("%.1fk", v/1e3), ".", ",", 1)
	default:
		return fmt.Sprintf("R$ %.0f", v)
	}
}

// BarItem is one row of HorizontalBars.
type BarItem struct {
	Label   string
	Value   float64
	Display string // right-hand text, e.g. "R$ 120,00 (35%)"
	Color   lipgloss.Color
}

// HorizontalBars renders one labelled bar per item, scaled to the largest
// value. Used for the per-category breakdown.
func HorizontalBars(items []BarItem, width int) string {
	if len(items) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 4
	displayW := 0
	peak := 0.0
	for _, it := range items {
		labelW = max(labelW, ansi.StringWidth(it.Label))
		displayW = max(displayW, ansi.StringWidth(it.Display))
		peak = math.Max(peak, it.Value)
	}
	if labelW > 18 {
		labelW = 18
	}
	if peak == 0 {
		peak = 1
	}
	barMax := width - labelW - displayW - 3
	if barMax < 4 {
		barMax = 4
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	displayStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		label := ansi.Truncate(it.Label, labelW, "…")
		label += strings.Repeat(" ", labelW-ansi.StringWidth(label))

		n := int(it.Value / peak * float64(barMax))
		if n < 1 && it.Value > 0 {
			n = 1
		}
		color := it.Color
		if color == "" {
			color = t.Accent
		}
		barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

		b.WriteString(labelStyle.Render(label))
		b.WriteString(spaceStyle.Render(" "))
		b.WriteString(barStyle.Render(strings.Repeat("█", n)))
		b.WriteString(spaceStyle.Render(strings.Repeat(" ", barMax-n+1)))
		b.WriteString(displayStyle.Render(it.Display))
	}
	return b.String()
}
