package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/tui/components"
	"github.com/theirongolddev/poupa/internal/tui/theme"
)

type landingPage struct {
	env
}

func newLandingPage(e env) *landingPage {
	return &landingPage{env: e}
}

func (p *landingPage) Init() tea.Cmd { return nil }
func (p *landingPage) Leave()        {}
func (p *landingPage) Capturing() bool {
	return false
}

func (p *landingPage) Hints() []components.KeyHint {
	hints := []components.KeyHint{
		{Key: "l", Label: "log in"},
		{Key: "r", Label: "register"},
	}
	if p.prefs.HasToken() {
		hints = append(hints, components.KeyHint{Key: "d", Label: "dashboard"})
	}
	return hints
}

func (p *landingPage) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch km.String() {
	case "l", "enter":
		return navigate(RouteLogin, "")
	case "r":
		return navigate(RouteRegister, "")
	case "d":
		return navigate(RouteDashboard, "")
	}
	return nil
}

var landingFeatures = []struct{ title, body string }{
	{"Track every R$", "Log income and expenses by category and see where your money goes."},
	{"Level up", "Earn XP for logging in every day and for keeping your finances in order."},
	{"Take on challenges", "Complete savings challenges, unlock achievements, climb the ranking."},
}

func (p *landingPage) View(w, h int) string {
	t := theme.Active

	logoStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Background).Bold(true)
	tagStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)
	ctaStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Background).Bold(true)
	bodyStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(logoStyle.Render("ᗧ • • • Pac Poupança"))
	b.WriteString("\n")
	b.WriteString(tagStyle.Render("Save money like it's a game."))
	b.WriteString("\n\n")

	cardW := w
	if cardW > 120 {
		cardW = 120
	}
	widths := components.LayoutRow(cardW, len(landingFeatures))
	cards := make([]string, len(landingFeatures))
	for i, f := range landingFeatures {
		inner := components.CardInnerWidth(widths[i])
		cards[i] = components.ContentCard(f.title, bodyStyle.Width(inner).Render(f.body), widths[i])
	}
	b.WriteString(components.CardRow(cards))
	b.WriteString("\n\n")
	b.WriteString(ctaStyle.Render("Press l to log in or r to create an account"))

	return lipgloss.PlaceHorizontal(w, lipgloss.Center, b.String(),
		lipgloss.WithWhitespaceBackground(t.Background))
}
