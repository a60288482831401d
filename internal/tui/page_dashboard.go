package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/cli"
	"github.com/theirongolddev/poupa/internal/finance"
	"github.com/theirongolddev/poupa/internal/logging"
	"github.com/theirongolddev/poupa/internal/tui/components"
	"github.com/theirongolddev/poupa/internal/tui/theme"
)

const (
	msgSummaryFailed = "Could not load your summary. Please try again."
	msgProfileFailed = "Could not load your profile."
)

var dashboardPeriods = []string{api.PeriodAll, api.PeriodMonth, api.PeriodWeek}

type profileMsg struct {
	mountRef
	profile *api.Profile
	err     error
}

type summaryMsg struct {
	mountRef
	period  string
	summary *api.FinancialSummary
	err     error
}

type dashboardTxMsg struct {
	mountRef
	period string
	txs    []api.Transaction
	cats   []api.Category
	err    error
}

type dashboardPage struct {
	gated

	spinner spinner.Model
	period  string

	profile *api.Profile
	summary *api.FinancialSummary
	txs     []api.Transaction
	cats    finance.CategoryIndex

	loadingSummary bool
	loadingTxs     bool
	errMsg         string
}

func newDashboardPage(e env) *dashboardPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)
	return &dashboardPage{
		gated:   newGated(e),
		spinner: sp,
		period:  api.PeriodMonth,
	}
}

func (p *dashboardPage) Init() tea.Cmd {
	return tea.Batch(
		p.mountReconciler(),
		p.fetchProfile(),
		p.reload(),
		p.spinner.Tick,
	)
}

func (p *dashboardPage) Capturing() bool { return false }

func (p *dashboardPage) Hints() []components.KeyHint {
	return []components.KeyHint{{Key: "p", Label: "period"}, {Key: "r", Label: "reload"}}
}

func (p *dashboardPage) reload() tea.Cmd {
	p.loadingSummary, p.loadingTxs = true, true
	return tea.Batch(p.fetchSummary(), p.fetchTransactions())
}

func (p *dashboardPage) fetchProfile() tea.Cmd {
	client, ref := p.client, p.ref()
	return func() tea.Msg {
		prof, err := client.Profile(context.Background())
		return profileMsg{mountRef: ref, profile: prof, err: err}
	}
}

func (p *dashboardPage) fetchSummary() tea.Cmd {
	client, ref, period := p.client, p.ref(), p.period
	return func() tea.Msg {
		sum, err := client.Summary(context.Background(), period)
		return summaryMsg{mountRef: ref, period: period, summary: sum, err: err}
	}
}

func (p *dashboardPage) fetchTransactions() tea.Cmd {
	client, ref, period := p.client, p.ref(), p.period
	q, _ := finance.Filter{Type: api.TypeExpense, Period: period}.Query(p.now())
	if q.StartDate == "" {
		q.StartDate = p.chartStart().Format("2006-01-02")
	}
	return func() tea.Msg {
		ctx := context.Background()
		cats, err := client.Categories(ctx)
		if err != nil {
			return dashboardTxMsg{mountRef: ref, period: period, err: err}
		}
		txs, err := client.Transactions(ctx, q)
		return dashboardTxMsg{mountRef: ref, period: period, txs: txs, cats: cats, err: err}
	}
}

// chartStart is the first day of the spending chart: the period start, or
// the last 30 days for "all".
func (p *dashboardPage) chartStart() time.Time {
	if start, ok := finance.PeriodStart(p.period, p.now()); ok {
		return start
	}
	return p.now().AddDate(0, 0, -29)
}

func (p *dashboardPage) nextPeriod() string {
	for i, per := range dashboardPeriods {
		if per == p.period {
			return dashboardPeriods[(i+1)%len(dashboardPeriods)]
		}
	}
	return api.PeriodAll
}

func (p *dashboardPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case reconciledMsg, recalculatedMsg:
		// The header reads the shared store; nothing else to do.
		return nil

	case profileMsg:
		if msg.err != nil {
			p.log.Warn("profile fetch failed", logging.FieldError, msg.err)
			if p.errMsg == "" {
				p.errMsg = errorText(msg.err, msgProfileFailed)
			}
			return nil
		}
		p.profile = msg.profile
		return nil

	case summaryMsg:
		if msg.period != p.period {
			return nil
		}
		p.loadingSummary = false
		if msg.err != nil {
			p.errMsg = errorText(msg.err, msgSummaryFailed)
			return nil
		}
		p.summary = msg.summary
		return nil

	case dashboardTxMsg:
		if msg.period != p.period {
			return nil
		}
		p.loadingTxs = false
		if msg.err != nil {
			p.errMsg = errorText(msg.err, msgSummaryFailed)
			return nil
		}
		p.txs = msg.txs
		p.cats = finance.IndexCategories(msg.cats)
		return nil

	case spinner.TickMsg:
		if p.loadingSummary || p.loadingTxs {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			return cmd
		}
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "p":
			p.period = p.nextPeriod()
			p.errMsg = ""
			return tea.Batch(p.reload(), p.spinner.Tick)
		case "r":
			p.errMsg = ""
			return tea.Batch(p.reload(), p.fetchProfile(), p.spinner.Tick)
		}
	}
	return nil
}

func (p *dashboardPage) View(w, h int) string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Background).Bold(true)
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillActive := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder

	if msg := p.reconcileBanner(); msg != "" {
		b.WriteString(components.Banner(msg, true, w))
		b.WriteString("\n")
	}
	if p.errMsg != "" {
		b.WriteString(components.Banner(p.errMsg, true, w))
		b.WriteString("\n")
	}

	greeting := "Dashboard"
	if p.profile != nil {
		name := p.profile.FullName
		if name == "" {
			name = p.profile.Username
		}
		greeting = "Hello, " + name
	}
	b.WriteString(titleStyle.Render(" " + greeting))
	b.WriteString("  ")

	// Period pills
	for i, per := range dashboardPeriods {
		if i > 0 {
			b.WriteString(pillStyle.Render("│"))
		}
		if per == p.period {
			b.WriteString(pillActive.Render(" " + periodLabel(per) + " "))
		} else {
			b.WriteString(pillStyle.Render(" " + periodLabel(per) + " "))
		}
	}
	if p.loadingSummary || p.loadingTxs {
		b.WriteString(" " + p.spinner.View())
	}
	b.WriteString("\n")

	if p.summary == nil {
		if !p.loadingSummary {
			b.WriteString(mutedStyle.Render(" No summary yet."))
		}
		return b.String()
	}

	s := p.summary
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Income", Value: cli.FormatBRL(s.Income), Color: t.Green},
		{Label: "Expenses", Value: cli.FormatBRL(s.Expenses), Color: t.Red},
		{Label: "Balance", Value: cli.FormatBRL(s.Balance), Color: balanceColor(s.Balance)},
	}, w))
	b.WriteString("\n")

	half := components.LayoutRow(w, 2)
	expenseCard := components.ContentCard("Expenses by category",
		p.breakdown(s.ExpenseByCategory, components.CardInnerWidth(half[0])), half[0])
	incomeCard := components.ContentCard("Income by category",
		p.breakdown(s.IncomeByCategory, components.CardInnerWidth(half[1])), half[1])
	b.WriteString(components.CardRow([]string{expenseCard, incomeCard}))
	b.WriteString("\n")

	// Daily spending chart fills what is left.
	used := lipgloss.Height(b.String())
	chartH := h - used - 4
	if chartH >= 3 {
		values, labels := finance.DailySeries(p.txs, api.TypeExpense, p.chartStart(), p.now())
		chart := components.DailyBars(values, labels, t.Red, components.CardInnerWidth(w), chartH)
		b.WriteString(components.ContentCard("Daily spending", chart, w))
	}

	return b.String()
}

func (p *dashboardPage) breakdown(byCat map[string]float64, width int) string {
	t := theme.Active
	shares := finance.Breakdown(byCat)
	if len(shares) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("Nothing recorded")
	}
	items := make([]components.BarItem, len(shares))
	for i, sh := range shares {
		items[i] = components.BarItem{
			Label:   sh.Name,
			Value:   sh.Amount,
			Display: fmt.Sprintf("%s %s", cli.FormatBRL(sh.Amount), cli.FormatPercent(sh.Pct)),
			Color:   p.categoryColor(sh.Name),
		}
	}
	return components.HorizontalBars(items, width)
}

// categoryColor looks a category up by name; summaries key by name only.
func (p *dashboardPage) categoryColor(name string) lipgloss.Color {
	for _, c := range p.cats {
		if c.Name == name && c.Color != "" {
			return lipgloss.Color(c.Color)
		}
	}
	return ""
}

func balanceColor(v float64) lipgloss.Color {
	if v < 0 {
		return theme.Active.Red
	}
	return theme.Active.Green
}

func periodLabel(p string) string {
	switch p {
	case api.PeriodMonth:
		return "This month"
	case api.PeriodWeek:
		return "This week"
	default:
		return "All time"
	}
}
