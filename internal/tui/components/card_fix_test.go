package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/poupa/internal/store"
	"github.com/theirongolddev/poupa/internal/tui/theme"
	"github.com/theirongolddev/poupa/internal/xp"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki", store.ThemeDark)

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))

	if shortLines >= tallLines {
		t.Fatal("Test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")

	if len(lines) != tallLines {
		t.Errorf("Joined height should match tallest card: got %d, want %d", len(lines), tallLines)
	}

	// After the short card ends, the padding should still have ANSI codes
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("Line %d has NO ANSI codes - will show as black squares", i)
		}
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki", store.ThemeDark)

	shortCard := ContentCard("Short", "A", 30)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")

	want := lipgloss.Width(tallCard) + lipgloss.Width(shortCard)
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("Line %d: width=%d, want %d", i, w, want)
		}
	}
}

func TestMetricCardRowSumsToWidth(t *testing.T) {
	theme.SetActive("flexoki", store.ThemeDark)

	row := MetricCardRow([]Metric{
		{Label: "Income", Value: "R$ 3.000,00", Color: theme.Active.Green},
		{Label: "Expenses", Value: "R$ 1.250,00", Color: theme.Active.Red},
		{Label: "Balance", Value: "R$ 1.750,00"},
	}, 91)

	if w := lipgloss.Width(row); w != 91 {
		t.Fatalf("row width = %d, want 91", w)
	}
}

func TestXPBarText(t *testing.T) {
	got := XPBar(xp.State{XP: 150, Level: 2, NextLevelXP: 300}, 10)
	if !strings.Contains(got, "Lv 2") || !strings.Contains(got, "150/300 XP") {
		t.Fatalf("XPBar = %q, want level badge and progress text", got)
	}

	// A broken state still renders.
	got = XPBar(xp.State{XP: 10, Level: 1, NextLevelXP: 0}, 10)
	if !strings.Contains(got, "- XP") {
		t.Fatalf("XPBar with next=0 = %q, want dash placeholder", got)
	}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range ChallengeTabs {
		pos := 0
		for i, tab := range ChallengeTabs {
			w := TabVisualWidth(tab, i == active)
			x := pos + w/2 // midpoint inside this tab
			if got := TabAtX(ChallengeTabs, active, x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1 // separator
		}
	}
	if got := TabAtX(ChallengeTabs, 0, 500); got != -1 {
		t.Fatalf("far right -> %d, want -1", got)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey(ChallengeTabs, 'k'); got != 2 {
		t.Fatalf("k -> %d, want 2", got)
	}
	if got := TabIdxByKey(ChallengeTabs, 'z'); got != -1 {
		t.Fatalf("z -> %d, want -1", got)
	}
}

func TestRenderToastsKinds(t *testing.T) {
	theme.SetActive("flexoki", store.ThemeLight)
	defer theme.SetActive("flexoki", store.ThemeDark)

	now := time.Now()
	out := RenderToasts([]xp.Notification{
		{Message: xp.GrantMessage(50), Kind: xp.KindXP, CreatedAt: now},
		{Message: xp.LevelUpMessage(3), Kind: xp.KindLevel, CreatedAt: now},
	}, 50)
	if !strings.Contains(out, "50 XP") || !strings.Contains(out, "level 3") {
		t.Fatalf("toasts missing messages: %q", out)
	}
	if RenderToasts(nil, 50) != "" {
		t.Fatal("no notifications should render nothing")
	}
}

func TestSidebarHeightAndHitbox(t *testing.T) {
	items := []NavItem{
		{Route: "/dashboard", Label: "Dashboard", Icon: "◧", Key: "1"},
		{Route: "/transactions", Label: "Transactions", Icon: "⇄", Key: "2"},
	}
	for _, collapsed := range []bool{true, false} {
		out := RenderSidebar(items, "/dashboard", collapsed, 10)
		if h := lipgloss.Height(out); h != 10 {
			t.Fatalf("collapsed=%v height = %d, want 10", collapsed, h)
		}
		if w := lipgloss.Width(out); w != SidebarWidthFor(collapsed) {
			t.Fatalf("collapsed=%v width = %d, want %d", collapsed, w, SidebarWidthFor(collapsed))
		}
	}
	if got := SidebarItemAtY(items, SidebarItemsTop+1); got != 1 {
		t.Fatalf("item at y = %d, want 1", got)
	}
	if got := SidebarItemAtY(items, 0); got != -1 {
		t.Fatalf("item at header row = %d, want -1", got)
	}
}

func TestDailyBarsFitsArea(t *testing.T) {
	theme.SetActive("flexoki", store.ThemeDark)
	values := make([]float64, 30)
	labels := make([]string, 30)
	for i := range values {
		values[i] = float64(i * 10)
		labels[i] = time.Date(2026, 9, i+1, 0, 0, 0, 0, time.UTC).Format("02/01")
	}
	for _, width := range []int{20, 40, 90} {
		out := DailyBars(values, labels, theme.Active.Red, width, 8)
		if h := lipgloss.Height(out); h != 8 {
			t.Fatalf("width %d: height = %d, want 8", width, h)
		}
		if w := lipgloss.Width(out); w > width {
			t.Fatalf("width %d: rendered %d columns", width, w)
		}
		if !strings.Contains(out, "01/09") {
			t.Fatalf("width %d: first day label missing", width)
		}
	}
}

func TestBucketSumsNeighbours(t *testing.T) {
	got, labels := bucket([]float64{1, 2, 3, 4}, []string{"a", "b", "c", "d"}, 2)
	if got[0] != 3 || got[1] != 7 {
		t.Fatalf("bucket = %v, want [3 7]", got)
	}
	if labels[0] != "a" || labels[1] != "c" {
		t.Fatalf("labels = %v, want [a c]", labels)
	}
}

func TestShortBRL(t *testing.T) {
	tests := map[float64]string{
		850:     "R$ 850",
		1200:    "R$ 1,2k",
		2500000: "R$ 2,5M",
	}
	for v, want := range tests {
		if got := shortBRL(v); got != want {
			t.Errorf("shortBRL(%v) = %q, want %q", v, got, want)
		}
	}
}
