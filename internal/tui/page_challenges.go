package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/cli"
	"github.com/theirongolddev/poupa/internal/tui/components"
	"github.com/theirongolddev/poupa/internal/tui/theme"
)

const msgGamifyLoadFailed = "Could not load this list. Please try again."

// Sub-tab indices into components.ChallengeTabs.
const (
	tabChallenges = iota
	tabAchievements
	tabRankings
)

// Challenge status tags.
const (
	statusNotStarted = "not_started"
	statusInProgress = "in_progress"
	statusCompleted  = "completed"
)

type challengesMsg struct {
	mountRef
	seq   int
	items []api.Challenge
	err   error
}

type achievementsMsg struct {
	mountRef
	seq   int
	items []api.Achievement
	err   error
}

type rankingsMsg struct {
	mountRef
	seq   int
	items []api.RankingUser
	err   error
}

type challengesPage struct {
	gated

	spinner spinner.Model
	tab     int
	tabY    int // row of the tab bar in the last render
	scroll  int
	lines   int // body lines in the last render

	// isLoading is shared by the three fetches of the batch numbered loadSeq.
	// The first of them to settle clears it.
	isLoading bool
	loadSeq   int

	challenges   []api.Challenge
	achievements []api.Achievement
	rankings     []api.RankingUser

	challengesErr   string
	achievementsErr string
	rankingsErr     string
}

func newChallengesPage(e env) *challengesPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)
	return &challengesPage{gated: newGated(e), spinner: sp}
}

func (p *challengesPage) Init() tea.Cmd {
	return tea.Batch(p.mountReconciler(), p.reload(), p.spinner.Tick)
}

func (p *challengesPage) Capturing() bool { return false }

func (p *challengesPage) Hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "c/a/k", Label: "tab"},
		{Key: "tab", Label: "next"},
		{Key: "r", Label: "reload"},
	}
}

func (p *challengesPage) loading() bool { return p.isLoading }

// reload issues the three fetches together. Results of an earlier batch
// still in flight are dropped when they arrive.
func (p *challengesPage) reload() tea.Cmd {
	p.loadSeq++
	p.isLoading = true
	p.challengesErr, p.achievementsErr, p.rankingsErr = "", "", ""
	client, ref, seq := p.client, p.ref(), p.loadSeq
	return tea.Batch(
		func() tea.Msg {
			items, err := client.Challenges(context.Background())
			return challengesMsg{mountRef: ref, seq: seq, items: items, err: err}
		},
		func() tea.Msg {
			items, err := client.Achievements(context.Background())
			return achievementsMsg{mountRef: ref, seq: seq, items: items, err: err}
		},
		func() tea.Msg {
			items, err := client.Rankings(context.Background())
			return rankingsMsg{mountRef: ref, seq: seq, items: items, err: err}
		},
	)
}

// settle reports whether a result of batch seq is current, clearing the
// loading flag when it is.
func (p *challengesPage) settle(seq int) bool {
	if seq != p.loadSeq {
		return false
	}
	p.isLoading = false
	return true
}

func (p *challengesPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case reconciledMsg, recalculatedMsg:
		return nil

	case challengesMsg:
		if !p.settle(msg.seq) {
			return nil
		}
		if msg.err != nil {
			p.challengesErr = errorText(msg.err, msgGamifyLoadFailed)
			return nil
		}
		p.challenges = msg.items
		return nil

	case achievementsMsg:
		if !p.settle(msg.seq) {
			return nil
		}
		if msg.err != nil {
			p.achievementsErr = errorText(msg.err, msgGamifyLoadFailed)
			return nil
		}
		p.achievements = msg.items
		return nil

	case rankingsMsg:
		if !p.settle(msg.seq) {
			return nil
		}
		if msg.err != nil {
			p.rankingsErr = errorText(msg.err, msgGamifyLoadFailed)
			return nil
		}
		p.rankings = msg.items
		return nil

	case spinner.TickMsg:
		if p.loading() {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			return cmd
		}
		return nil

	case tea.MouseMsg:
		switch {
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == p.tabY:
			if i := components.TabAtX(components.ChallengeTabs, p.tab, msg.X); i >= 0 {
				p.setTab(i)
			}
		case msg.Button == tea.MouseButtonWheelUp:
			p.scrollBy(-1)
		case msg.Button == tea.MouseButtonWheelDown:
			p.scrollBy(1)
		}
		return nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "tab", "right", "l":
			p.setTab((p.tab + 1) % len(components.ChallengeTabs))
			return nil
		case "shift+tab", "left", "h":
			p.setTab((p.tab + len(components.ChallengeTabs) - 1) % len(components.ChallengeTabs))
			return nil
		case "j", "down":
			p.scrollBy(1)
			return nil
		case "up":
			p.scrollBy(-1)
			return nil
		case "r":
			return tea.Batch(p.reload(), p.spinner.Tick)
		}
		if len(key) == 1 {
			if i := components.TabIdxByKey(components.ChallengeTabs, rune(key[0])); i >= 0 {
				p.setTab(i)
			}
		}
	}
	return nil
}

func (p *challengesPage) setTab(i int) {
	if i != p.tab {
		p.tab, p.scroll = i, 0
	}
}

func (p *challengesPage) scrollBy(d int) {
	p.scroll += d
	if n := p.lines - 1; p.scroll > n {
		p.scroll = n
	}
	if p.scroll < 0 {
		p.scroll = 0
	}
}

func (p *challengesPage) View(w, h int) string {
	var b strings.Builder
	if msg := p.reconcileBanner(); msg != "" {
		b.WriteString(components.Banner(msg, true, w))
		b.WriteString("\n")
	}
	p.tabY = strings.Count(b.String(), "\n")

	bar := components.RenderTabBar(components.ChallengeTabs, p.tab, w)
	if p.loading() {
		bar = strings.TrimRight(bar, " ")
		bar += " " + p.spinner.View()
	}
	b.WriteString(bar)
	b.WriteString("\n")

	used := lipgloss.Height(b.String())
	bodyH := h - used
	if bodyH < 1 {
		bodyH = 1
	}

	var errMsg, body string
	switch p.tab {
	case tabAchievements:
		errMsg, body = p.achievementsErr, p.viewAchievements(w)
	case tabRankings:
		errMsg, body = p.rankingsErr, p.viewRankings(w)
	default:
		errMsg, body = p.challengesErr, p.viewChallenges(w)
	}
	if errMsg != "" {
		b.WriteString(components.Banner(errMsg, true, w))
		return b.String()
	}

	lines := strings.Split(body, "\n")
	p.lines = len(lines)
	if p.scroll > 0 && p.scroll < len(lines) {
		lines = lines[p.scroll:]
	}
	if len(lines) > bodyH {
		lines = lines[:bodyH]
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func (p *challengesPage) empty(text string, w int) string {
	if p.loading() {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(theme.Active.TextDim).Background(theme.Active.Surface)
	return components.ContentCard("", style.Render(text), w)
}

// viewChallenges renders one line block per challenge: title and reward,
// description, progress bar.
func (p *challengesPage) viewChallenges(w int) string {
	if len(p.challenges) == 0 {
		return p.empty("No challenges available right now.", w)
	}
	t := theme.Active
	inner := components.CardInnerWidth(w)

	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rewardStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)

	var b strings.Builder
	for i, c := range p.challenges {
		if i > 0 {
			b.WriteString("\n\n")
		}
		reward := rewardStyle.Render(fmt.Sprintf("+%d XP", c.XPReward))
		head := icon(c.Icon) + c.Title
		status := statusLabel(c.Status)
		gap := inner - ansi.StringWidth(head) - ansi.StringWidth(status) - lipgloss.Width(reward) - 2
		if gap < 1 {
			gap = 1
		}
		b.WriteString(titleStyle.Render(head))
		b.WriteString(descStyle.Render(strings.Repeat(" ", gap) + status + "  "))
		b.WriteString(reward)
		b.WriteString("\n")
		b.WriteString(descStyle.Render(ansi.Truncate(c.Description, inner, "…")))
		b.WriteString("\n")
		b.WriteString(components.ProgressBar(c.Progress, inner-5))
	}
	return components.ContentCard("Challenges", b.String(), w)
}

func (p *challengesPage) viewAchievements(w int) string {
	if len(p.achievements) == 0 {
		return p.empty("No achievements yet.", w)
	}
	t := theme.Active
	inner := components.CardInnerWidth(w)

	earnedStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Bold(true)
	lockedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rewardStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)

	var earned, open []api.Achievement
	for _, a := range p.achievements {
		if a.Achieved() {
			earned = append(earned, a)
		} else {
			open = append(open, a)
		}
	}

	var b strings.Builder
	write := func(a api.Achievement) {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		if a.Achieved() {
			b.WriteString(earnedStyle.Render("✓ " + a.Title))
			b.WriteString(descStyle.Render("  earned " + cli.FormatDate(dateOnly(*a.AchievedAt)) + "  "))
		} else {
			b.WriteString(lockedStyle.Render(icon(a.Icon) + a.Title))
			b.WriteString(descStyle.Render("  "))
		}
		b.WriteString(rewardStyle.Render(fmt.Sprintf("+%d XP", a.XPReward)))
		b.WriteString("\n")
		b.WriteString(descStyle.Render(ansi.Truncate(a.Description, inner, "…")))
		if !a.Achieved() && a.Progress != nil {
			b.WriteString("\n")
			b.WriteString(components.ProgressBar(*a.Progress, inner-5))
		}
	}
	for _, a := range earned {
		write(a)
	}
	for _, a := range open {
		write(a)
	}

	title := fmt.Sprintf("Achievements  %d/%d", len(earned), len(p.achievements))
	return components.ContentCard(title, b.String(), w)
}

func (p *challengesPage) viewRankings(w int) string {
	if len(p.rankings) == 0 {
		return p.empty("No rankings yet.", w)
	}
	t := theme.Active
	inner := components.CardInnerWidth(w)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	meStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.SurfaceHover).Bold(true)

	const posW, levelW, xpW = 5, 6, 10
	nameW := inner - posW - levelW - xpW - 3
	if nameW < 8 {
		nameW = 8
	}
	row := func(pos, name, level, xpText string) string {
		return fmt.Sprintf("%-*s %-*s %*s %*s", posW, pos,
			nameW, ansi.Truncate(name, nameW, "…"), levelW, level, xpW, xpText)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(row("#", "User", "Level", "XP")))
	for i, u := range p.rankings {
		pos := i + 1
		if u.Position != nil {
			pos = *u.Position
		}
		name := u.Username
		if u.IsCurrentUser {
			name += " (you)"
		}
		line := row(fmt.Sprintf("%d", pos), name, cli.FormatLevel(u.Level), fmt.Sprintf("%d XP", u.XP))
		b.WriteString("\n")
		if u.IsCurrentUser {
			b.WriteString(meStyle.Width(inner).Render(line))
		} else {
			b.WriteString(rowStyle.Width(inner).Render(line))
		}
	}
	return components.ContentCard("Rankings", b.String(), w)
}

func statusLabel(s string) string {
	switch s {
	case statusCompleted:
		return "completed"
	case statusInProgress:
		return "in progress"
	case statusNotStarted:
		return "not started"
	default:
		return s
	}
}

// icon is the server-sent icon name followed by a space, or nothing when
// it is a CSS class or similar the terminal cannot show.
func icon(name string) string {
	if name == "" || ansi.StringWidth(name) > 2 {
		return ""
	}
	return name + " "
}

// dateOnly keeps the "YYYY-MM-DD" prefix of a timestamp.
func dateOnly(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
