package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/cli"
	"github.com/theirongolddev/poupa/internal/finance"
	"github.com/theirongolddev/poupa/internal/logging"
	"github.com/theirongolddev/poupa/internal/tui/components"
	"github.com/theirongolddev/poupa/internal/tui/theme"
)

const (
	msgTxLoadFailed   = "Could not load transactions. Please try again."
	msgTxSaveFailed   = "Could not save the transaction. Please try again."
	msgTxDeleteFailed = "Could not delete the transaction. Please try again."
)

type txMode int

const (
	txModeList txMode = iota
	txModeForm
	txModeConfirm
	txModeFilter
)

type categoriesMsg struct {
	mountRef
	cats []api.Category
	err  error
}

type transactionsMsg struct {
	mountRef
	seq int
	txs []api.Transaction
	err error
}

type txWriteMsg struct {
	mountRef
	op  string // "create", "update", "delete"
	err error
}

// txFormValues is what the create/edit form binds to.
type txFormValues struct {
	description string
	amount      string
	typ         string
	date        string
	categoryID  int
}

type txFilterValues struct {
	typ        string
	categoryID int
	period     string
}

type transactionsPage struct {
	gated

	spinner spinner.Model

	categories []api.Category
	cats       finance.CategoryIndex
	txs        []api.Transaction
	filter     finance.Filter
	fetchSeq   int

	cursor int
	offset int

	loading bool
	saving  bool
	errMsg  string

	mode       txMode
	form       *huh.Form
	editing    *api.Transaction // nil while creating
	formVals   *txFormValues
	filterVals *txFilterValues
	confirm    *bool
	deleting   api.Transaction
}

func newTransactionsPage(e env) *transactionsPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)
	return &transactionsPage{
		gated:   newGated(e),
		spinner: sp,
		filter:  finance.Filter{Period: api.PeriodAll},
	}
}

func (p *transactionsPage) Init() tea.Cmd {
	return tea.Batch(
		p.mountReconciler(),
		p.fetchCategories(),
		p.fetchTransactions(),
		p.spinner.Tick,
	)
}

func (p *transactionsPage) Capturing() bool {
	return p.mode != txModeList
}

func (p *transactionsPage) Hints() []components.KeyHint {
	if p.mode != txModeList {
		return nil
	}
	return []components.KeyHint{
		{Key: "n", Label: "new"},
		{Key: "e", Label: "edit"},
		{Key: "d", Label: "delete"},
		{Key: "f", Label: "filter"},
		{Key: "r", Label: "reload"},
	}
}

func (p *transactionsPage) fetchCategories() tea.Cmd {
	client, ref := p.client, p.ref()
	return func() tea.Msg {
		cats, err := client.Categories(context.Background())
		return categoriesMsg{mountRef: ref, cats: cats, err: err}
	}
}

// fetchTransactions re-reads the list under the current filter. Older
// responses are ignored once a newer fetch was issued.
func (p *transactionsPage) fetchTransactions() tea.Cmd {
	q, err := p.filter.Query(p.now())
	if err != nil {
		p.errMsg = err.Error()
		return nil
	}
	p.fetchSeq++
	p.loading = true
	client, ref, seq := p.client, p.ref(), p.fetchSeq
	return func() tea.Msg {
		txs, err := client.Transactions(context.Background(), q)
		return transactionsMsg{mountRef: ref, seq: seq, txs: txs, err: err}
	}
}

func (p *transactionsPage) selected() (api.Transaction, bool) {
	if p.cursor < 0 || p.cursor >= len(p.txs) {
		return api.Transaction{}, false
	}
	return p.txs[p.cursor], true
}

func (p *transactionsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case reconciledMsg, recalculatedMsg:
		return nil

	case categoriesMsg:
		if msg.err != nil {
			p.errMsg = errorText(msg.err, msgTxLoadFailed)
			return nil
		}
		p.categories = msg.cats
		p.cats = finance.IndexCategories(msg.cats)
		return nil

	case transactionsMsg:
		if msg.seq != p.fetchSeq {
			return nil
		}
		p.loading = false
		if msg.err != nil {
			p.errMsg = errorText(msg.err, msgTxLoadFailed)
			return nil
		}
		p.txs = msg.txs
		if p.cursor >= len(p.txs) {
			p.cursor = max(0, len(p.txs)-1)
		}
		return nil

	case txWriteMsg:
		p.saving = false
		if msg.err != nil {
			p.log.Warn("transaction write failed", "op", msg.op, logging.FieldError, msg.err)
			if msg.op == "delete" {
				p.errMsg = errorText(msg.err, msgTxDeleteFailed)
				return nil
			}
			// Keep what was typed and reopen the form.
			p.errMsg = errorText(msg.err, msgTxSaveFailed)
			return p.openForm(p.editing, p.formVals)
		}
		p.errMsg = ""
		p.editing = nil
		return tea.Batch(p.fetchTransactions(), p.spinner.Tick)

	case spinner.TickMsg:
		if p.loading || p.saving {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			return cmd
		}
		return nil
	}

	if p.mode != txModeList {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			p.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			p.moveCursor(1)
		}
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			p.moveCursor(1)
		case "k", "up":
			p.moveCursor(-1)
		case "g":
			p.cursor = 0
		case "G":
			p.cursor = max(0, len(p.txs)-1)
		case "n":
			return p.openForm(nil, nil)
		case "e", "enter":
			if tx, ok := p.selected(); ok {
				return p.openForm(&tx, nil)
			}
		case "d", "delete":
			if tx, ok := p.selected(); ok {
				return p.openConfirm(tx)
			}
		case "f":
			return p.openFilter()
		case "c":
			p.filter = finance.Filter{Period: api.PeriodAll}
			return tea.Batch(p.fetchTransactions(), p.spinner.Tick)
		case "r":
			p.errMsg = ""
			return tea.Batch(p.fetchCategories(), p.fetchTransactions(), p.spinner.Tick)
		}
	}
	return nil
}

func (p *transactionsPage) moveCursor(d int) {
	p.cursor += d
	if p.cursor >= len(p.txs) {
		p.cursor = len(p.txs) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// ─── Forms ──────────────────────────────────────────────────────

func (p *transactionsPage) categoryOptions(typ string, withAll bool) []huh.Option[int] {
	var opts []huh.Option[int]
	if withAll {
		opts = append(opts, huh.NewOption("All categories", 0))
	}
	cats := p.categories
	if typ != "" {
		cats = finance.CategoriesOfType(p.categories, typ)
	}
	for _, c := range cats {
		opts = append(opts, huh.NewOption(c.Name, c.ID))
	}
	if len(opts) == 0 {
		opts = append(opts, huh.NewOption("No categories", 0))
	}
	return opts
}

// openForm opens the create form (tx == nil) or the edit form. vals, when
// set, restores what was typed before a failed save.
func (p *transactionsPage) openForm(tx *api.Transaction, vals *txFormValues) tea.Cmd {
	if vals == nil {
		vals = &txFormValues{typ: api.TypeExpense, date: cli.FormatDate(p.now().Format("2006-01-02"))}
		if tx != nil {
			f := finance.FormFromTransaction(*tx)
			vals = &txFormValues{
				description: f.Description,
				amount:      strings.ReplaceAll(fmt.Sprintf("%.2f", f.Amount), ".", ","),
				typ:         f.Type,
				date:        cli.FormatDate(f.Date),
				categoryID:  f.CategoryID,
			}
		}
	}
	p.editing, p.formVals, p.mode = tx, vals, txModeForm

	title := "New transaction"
	if tx != nil {
		title = "Edit transaction"
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Description("Type").
				Options(
					huh.NewOption("Expense", api.TypeExpense),
					huh.NewOption("Income", api.TypeIncome),
				).
				Value(&vals.typ),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Description").
				Value(&vals.description),
			huh.NewInput().
				Title("Amount (R$)").
				Placeholder("45,90").
				Validate(func(s string) error {
					_, err := finance.ParseAmount(s)
					return err
				}).
				Value(&vals.amount),
			huh.NewSelect[int]().
				Title("Category").
				OptionsFunc(func() []huh.Option[int] {
					return p.categoryOptions(vals.typ, false)
				}, &vals.typ).
				Value(&vals.categoryID),
			huh.NewInput().
				Title("Date").
				Placeholder("DD/MM/YYYY").
				Validate(func(s string) error {
					_, err := cli.ParseDate(s)
					return err
				}).
				Value(&vals.date),
		),
	).WithShowHelp(false).WithWidth(50)
	return p.form.Init()
}

func (p *transactionsPage) openConfirm(tx api.Transaction) tea.Cmd {
	p.deleting, p.confirm, p.mode = tx, new(bool), txModeConfirm
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete this transaction?").
				Description(fmt.Sprintf("%s  %s  %s", cli.FormatDate(tx.Date), tx.Description,
					cli.FormatSignedBRL(tx.Amount, tx.Type))).
				Affirmative("Delete").
				Negative("Cancel").
				Value(p.confirm),
		),
	).WithShowHelp(false).WithWidth(50)
	return p.form.Init()
}

func (p *transactionsPage) openFilter() tea.Cmd {
	vals := &txFilterValues{typ: p.filter.Type, categoryID: p.filter.CategoryID, period: p.filter.Period}
	if vals.period == "" {
		vals.period = api.PeriodAll
	}
	p.filterVals, p.mode = vals, txModeFilter
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("All types", ""),
					huh.NewOption("Income", api.TypeIncome),
					huh.NewOption("Expense", api.TypeExpense),
				).
				Value(&vals.typ),
			huh.NewSelect[int]().
				Title("Category").
				OptionsFunc(func() []huh.Option[int] {
					return p.categoryOptions(vals.typ, true)
				}, &vals.typ).
				Value(&vals.categoryID),
			huh.NewSelect[string]().
				Title("Period").
				Options(
					huh.NewOption("All time", api.PeriodAll),
					huh.NewOption("This month", api.PeriodMonth),
					huh.NewOption("This week", api.PeriodWeek),
				).
				Value(&vals.period),
		),
	).WithShowHelp(false).WithWidth(50)
	return p.form.Init()
}

func (p *transactionsPage) updateForm(msg tea.Msg) tea.Cmd {
	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	switch p.form.State {
	case huh.StateAborted:
		p.mode, p.form, p.editing = txModeList, nil, nil
		return nil
	case huh.StateCompleted:
		mode := p.mode
		p.mode, p.form = txModeList, nil
		switch mode {
		case txModeForm:
			return p.save()
		case txModeConfirm:
			if *p.confirm {
				return p.remove(p.deleting)
			}
		case txModeFilter:
			v := p.filterVals
			p.filter = finance.Filter{Type: v.typ, CategoryID: v.categoryID, Period: v.period}
			p.cursor = 0
			return tea.Batch(p.fetchTransactions(), p.spinner.Tick)
		}
		return nil
	}
	return cmd
}

// formToTransaction parses and validates the bound values.
func formToTransaction(v *txFormValues) (finance.TransactionForm, error) {
	amount, err := finance.ParseAmount(v.amount)
	if err != nil {
		return finance.TransactionForm{}, err
	}
	date, err := cli.ParseDate(v.date)
	if err != nil {
		date = ""
	}
	f := finance.TransactionForm{
		Description: v.description,
		Amount:      amount,
		Type:        v.typ,
		Date:        date,
		CategoryID:  v.categoryID,
	}
	return f, f.Validate()
}

func (p *transactionsPage) save() tea.Cmd {
	f, err := formToTransaction(p.formVals)
	if err != nil {
		p.errMsg = err.Error()
		return p.openForm(p.editing, p.formVals)
	}

	p.saving = true
	client, ref := p.client, p.ref()
	if p.editing != nil {
		id, upd := p.editing.ID, f.Update()
		return tea.Batch(func() tea.Msg {
			_, err := client.UpdateTransaction(context.Background(), id, upd)
			return txWriteMsg{mountRef: ref, op: "update", err: err}
		}, p.spinner.Tick)
	}
	in := f.Input()
	return tea.Batch(func() tea.Msg {
		_, err := client.CreateTransaction(context.Background(), in)
		return txWriteMsg{mountRef: ref, op: "create", err: err}
	}, p.spinner.Tick)
}

func (p *transactionsPage) remove(tx api.Transaction) tea.Cmd {
	p.saving = true
	client, ref, id := p.client, p.ref(), tx.ID
	return tea.Batch(func() tea.Msg {
		_, err := client.DeleteTransaction(context.Background(), id)
		return txWriteMsg{mountRef: ref, op: "delete", err: err}
	}, p.spinner.Tick)
}

// ─── View ───────────────────────────────────────────────────────

func (p *transactionsPage) filterLabel() string {
	parts := []string{periodLabel(p.filter.Period)}
	switch p.filter.Type {
	case api.TypeIncome:
		parts = append(parts, "Income")
	case api.TypeExpense:
		parts = append(parts, "Expense")
	}
	if p.filter.CategoryID != 0 {
		if c, ok := p.cats[p.filter.CategoryID]; ok {
			parts = append(parts, c.Name)
		}
	}
	return strings.Join(parts, " · ")
}

func (p *transactionsPage) View(w, h int) string {
	t := theme.Active

	var b strings.Builder
	if msg := p.reconcileBanner(); msg != "" {
		b.WriteString(components.Banner(msg, true, w))
		b.WriteString("\n")
	}
	if p.errMsg != "" {
		b.WriteString(components.Banner(p.errMsg, true, w))
		b.WriteString("\n")
	}

	if p.mode != txModeList && p.form != nil {
		card := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderAccent).
			Padding(1, 2).
			Render(p.form.View())
		b.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Center, card,
			lipgloss.WithWhitespaceBackground(t.Background)))
		return b.String()
	}

	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Background).Bold(true)
	filterStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Background)
	b.WriteString(titleStyle.Render(" Transactions  "))
	b.WriteString(filterStyle.Render(p.filterLabel()))
	if p.loading || p.saving {
		b.WriteString(" " + p.spinner.View())
	}
	b.WriteString("\n")

	used := lipgloss.Height(b.String())
	b.WriteString(p.renderList(w, h-used))
	return b.String()
}

func (p *transactionsPage) renderList(w, h int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	incomeStyle := lipgloss.NewStyle().Foreground(t.Green)
	expenseStyle := lipgloss.NewStyle().Foreground(t.Red)

	if len(p.txs) == 0 {
		if p.loading {
			return ""
		}
		return components.ContentCard("", mutedStyle.Render("No transactions. Press n to add one."), w)
	}

	inner := components.CardInnerWidth(w)
	dateW, catW, amountW := 10, 16, 14
	descW := inner - dateW - catW - amountW - 3
	if descW < 8 {
		descW = 8
	}

	row := func(date, desc, cat, amount string) string {
		return fmt.Sprintf("%-*s %s %s %*s",
			dateW, date,
			padRight(ansi.Truncate(desc, descW, "…"), descW),
			padRight(cat, catW),
			amountW, amount)
	}

	// Card border (2) + header (1) + totals (1)
	visible := h - 4
	if visible < 1 {
		visible = 1
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+visible {
		p.offset = p.cursor - visible + 1
	}
	end := min(len(p.txs), p.offset+visible)

	var b strings.Builder
	b.WriteString(headerStyle.Render(row("Date", "Description", "Category", "Amount")))
	for i := p.offset; i < end; i++ {
		tx := p.txs[i]
		catStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(p.cats.Color(tx)))
		cat := catStyle.Render(ansi.Truncate(p.cats.Name(tx), catW, "…"))

		amountStyle := expenseStyle
		if tx.Type == api.TypeIncome {
			amountStyle = incomeStyle
		}
		amountText := cli.FormatSignedBRL(tx.Amount, tx.Type)
		amount := amountStyle.Render(fmt.Sprintf("%*s", amountW, amountText))

		line := fmt.Sprintf("%-*s %s %s %s",
			dateW, cli.FormatDate(tx.Date),
			padRight(ansi.Truncate(tx.Description, descW, "…"), descW),
			padRight(cat, catW),
			amount)

		b.WriteString("\n")
		if i == p.cursor {
			b.WriteString(selStyle.Width(inner).Render(line))
		} else {
			b.WriteString(rowStyle.Width(inner).Render(line))
		}
	}

	income, expenses := finance.Totals(p.txs)
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d shown  ", len(p.txs))))
	b.WriteString(incomeStyle.Background(t.Surface).Render("+" + cli.FormatBRL(income)))
	b.WriteString(mutedStyle.Render("  "))
	b.WriteString(expenseStyle.Background(t.Surface).Render("-" + cli.FormatBRL(expenses)))

	return components.ContentCard("", b.String(), w)
}

// padRight pads s with spaces to visual width w.
func padRight(s string, w int) string {
	sw := ansi.StringWidth(s)
	if sw >= w {
		return s
	}
	return s + strings.Repeat(" ", w-sw)
}
