// Package tui provides the interactive Bubble Tea client for poupa.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/cli"
	"github.com/theirongolddev/poupa/internal/gamify"
	"github.com/theirongolddev/poupa/internal/logging"
	"github.com/theirongolddev/poupa/internal/store"
	"github.com/theirongolddev/poupa/internal/tui/components"
	"github.com/theirongolddev/poupa/internal/tui/theme"
	"github.com/theirongolddev/poupa/internal/xp"
)

// Deps is everything the app needs from the process.
type Deps struct {
	Client *api.Client
	Prefs  *store.Prefs
	XP     *gamify.Store
	Queue  *xp.Queue
	Log    *slog.Logger
	// Nav receives forced navigations; see NewNavChannel.
	Nav chan string
	// Palette is the configured theme family.
	Palette string
	// StartRoute defaults to the landing page.
	StartRoute string
	// NeedSetup shows the first-run form before anything else.
	NeedSetup bool
	// Rebuild recreates the client when setup changes the API URL.
	Rebuild func(baseURL string) *api.Client
	Now     func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	deps Deps
	log  *slog.Logger

	// Routing
	route   string
	page    page
	mountID int

	// Header state fed by the XP store subscription
	xpSub     <-chan gamify.Event
	xpCancel  func()
	lastDelta gamify.Delta
	deltaAt   time.Time

	// UI state
	width         int
	height        int
	showHelp      bool
	menuCollapsed bool
	mode          store.Theme

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
	headerHeight     = 1
)

// NewApp creates the root model. The initial page is mounted in Init.
func NewApp(deps Deps) App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Queue == nil {
		deps.Queue = &xp.Queue{}
	}
	if deps.XP == nil {
		deps.XP = gamify.NewStore(16)
	}
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	if deps.StartRoute == "" {
		deps.StartRoute = RouteLanding
	}

	mode := deps.Prefs.Theme()
	theme.SetActive(deps.Palette, mode)

	sub, cancel := deps.XP.Subscribe()

	a := App{
		deps:          deps,
		log:           logging.For(deps.Log, logging.ComponentTUI),
		xpSub:         sub,
		xpCancel:      cancel,
		menuCollapsed: deps.Prefs.MenuCollapsed(),
		mode:          mode,
		needSetup:     deps.NeedSetup,
	}
	if a.needSetup {
		a.setupVals = &setupValues{
			baseURL: deps.Client.BaseURL(),
			palette: theme.PaletteByName(deps.Palette).Name,
		}
		a.setupForm = newSetupForm(a.setupVals)
	}
	return a
}

// Route returns the route of the live page.
func (a App) Route() string {
	return a.route
}

// Close releases the store subscription.
func (a App) Close() {
	if a.xpCancel != nil {
		a.xpCancel()
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(),
		waitForNav(a.deps.Nav),
		waitForXPEvent(a.xpSub),
	}
	if a.needSetup && a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	} else {
		cmds = append(cmds, navigate(a.deps.StartRoute, ""))
	}
	return tea.Batch(cmds...)
}

// navigate leaves the current page and mounts the one for route.
func (a *App) navigate(route, flash string) tea.Cmd {
	resolved := Resolve(route, a.deps.Prefs.HasToken())
	if a.page != nil {
		a.page.Leave()
	}
	a.mountID++
	a.route = resolved
	a.showHelp = false

	e := env{
		client:   a.deps.Client,
		prefs:    a.deps.Prefs,
		xp:       a.deps.XP,
		queue:    a.deps.Queue,
		log:      a.log,
		baseLog:  a.deps.Log,
		now:      a.deps.Now,
		navigate: NavigateFunc(a.deps.Nav),
		mount:    a.mountID,
		flash:    flash,
	}
	a.page = newPage(resolved, e)
	a.log.Info("navigate", logging.FieldRoute, resolved, "requested", route, "mount", a.mountID)
	return a.page.Init()
}

func newPage(route string, e env) page {
	switch route {
	case RouteLogin:
		return newLoginPage(e)
	case RouteRegister:
		return newRegisterPage(e)
	case RouteDashboard:
		return newDashboardPage(e)
	case RouteTransactions:
		return newTransactionsPage(e)
	case RouteChallenges:
		return newChallengesPage(e)
	default:
		return newLandingPage(e)
	}
}

// logout clears the session and every piece of derived XP state.
func (a *App) logout() tea.Cmd {
	if err := a.deps.Prefs.ClearSession(); err != nil {
		a.log.Warn("clearing session", logging.FieldError, err)
	}
	a.deps.XP.Reset()
	a.deps.Queue.Clear()
	a.lastDelta = gamify.Delta{}
	return a.navigate(RouteLanding, "")
}

func (a *App) toggleTheme() {
	a.mode = a.mode.Toggle()
	theme.SetActive(a.deps.Palette, a.mode)
	if err := a.deps.Prefs.SetTheme(a.mode); err != nil {
		a.log.Warn("saving theme", logging.FieldError, err)
	}
}

func (a *App) toggleMenu() {
	a.menuCollapsed = !a.menuCollapsed
	if err := a.deps.Prefs.SetMenuCollapsed(a.menuCollapsed); err != nil {
		a.log.Warn("saving menu state", logging.FieldError, err)
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Async page results from a page that was left are dropped.
	if pm, ok := msg.(pageMsg); ok {
		if pm.pageMount() != a.mountID || a.page == nil {
			a.log.Debug("discarding stale page result", "mount", pm.pageMount(), "live", a.mountID)
			return a, nil
		}
		if rm, ok := msg.(recalculatedMsg); ok && rm.err != nil && !errors.Is(rm.err, gamify.ErrBusy) {
			a.log.Warn("recalculate failed", logging.FieldError, rm.err)
		}
		return a, a.page.Update(msg)
	}

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Forward to setup form if active
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.page != nil {
			return a, a.page.Update(msg)
		}
		return a, nil

	case navigateMsg:
		return a, a.navigate(msg.route, msg.flash)

	case forcedNavMsg:
		cmds := []tea.Cmd{waitForNav(a.deps.Nav)}
		// A failed login already shows its own error.
		if a.route != RouteLogin {
			a.deps.XP.Reset()
			cmds = append(cmds, a.navigate(msg.route, api.MsgSessionExpired))
		}
		return a, tea.Batch(cmds...)

	case xpEventMsg:
		if !msg.ok {
			a.xpSub = nil
			return a, nil
		}
		if msg.event.Type == gamify.EventXPDelta {
			a.lastDelta = msg.event.Delta
			a.deltaAt = msg.event.Timestamp
		}
		return a, waitForXPEvent(a.xpSub)

	case tickMsg:
		// Re-render so expired toasts disappear.
		return a, tickCmd()

	case tea.MouseMsg:
		if a.needSetup || a.showHelp || a.page == nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.page != nil {
		return a, a.page.Update(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global: quit
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if a.page == nil {
		return a, nil
	}

	// Open forms get every key.
	if a.page.Capturing() {
		return a, a.page.Update(msg)
	}

	// Help toggle
	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}

	// Dismiss help
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "t":
		a.toggleTheme()
		return a, nil
	}

	if Gated(a.route) {
		switch key {
		case "m":
			a.toggleMenu()
			return a, nil
		case "L":
			return a, a.logout()
		case "R":
			if rp, ok := a.page.(reconciling); ok {
				return a, recalcCmd(rp.Reconciler(), a.mountID)
			}
			return a, nil
		}
		if route, ok := routeForKey(key); ok {
			if route == a.route {
				return a, nil
			}
			return a, a.navigate(route, "")
		}
	}

	return a, a.page.Update(msg)
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !Gated(a.route) {
		return a, a.page.Update(msg)
	}

	sideW := components.SidebarWidthFor(a.menuCollapsed)
	if msg.Y < headerHeight {
		return a, nil
	}
	if msg.X < sideW {
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress {
			if i := components.SidebarItemAtY(navItems, msg.Y-headerHeight); i >= 0 {
				if route := navItems[i].Route; route != a.route {
					return a, a.navigate(route, "")
				}
			}
		}
		return a, nil
	}

	// Forward with page-local coordinates.
	cw := a.contentWidth()
	msg.X -= sideW + (a.width-sideW-cw)/2
	msg.Y -= headerHeight
	if toasts := components.RenderToasts(a.deps.Queue.Active(a.deps.Now()), cw); toasts != "" {
		msg.Y -= lipgloss.Height(toasts)
	}
	if msg.X < 0 || msg.Y < 0 {
		return a, nil
	}
	return a, a.page.Update(msg)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	if a.setupForm.State == huh.StateCompleted {
		a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		return a, navigate(a.deps.StartRoute, "")
	}

	if a.setupForm.State == huh.StateAborted {
		a.needSetup = false
		a.setupForm = nil
		return a, navigate(a.deps.StartRoute, "")
	}

	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if Gated(a.route) {
		cw -= components.SidebarWidthFor(a.menuCollapsed)
	}
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	// First-run setup wizard
	if a.needSetup && a.setupForm != nil {
		return a.viewSetup()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	if a.page == nil {
		return ""
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  poupa needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active
	h := a.height
	w := a.width

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Navigation"))
	b.WriteString("\n")
	navBindings := []struct{ key, desc string }{
		{"1 2 3", "Dashboard / Transactions / Challenges"},
		{"m", "Collapse / expand menu"},
		{"j k", "Navigate lists"},
		{"Esc", "Back / Cancel"},
	}
	for _, bind := range navBindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Actions"))
	b.WriteString("\n")
	actionBindings := []struct{ key, desc string }{
		{"R", "Recalculate level"},
		{"r", "Reload page"},
		{"t", "Toggle dark / light"},
		{"L", "Log out"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range actionBindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	h := a.height
	cw := a.contentWidth()

	// 1. Header and status bar
	header := a.renderHeader(w)
	hints := append(a.page.Hints(), a.globalHints()...)
	statusBar := components.RenderStatusBar(w, hints, a.statusRight())

	// 2. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 3. Toasts stack above the page content
	toasts := components.RenderToasts(a.deps.Queue.Active(a.deps.Now()), cw)
	pageH := contentH
	if toasts != "" {
		pageH -= lipgloss.Height(toasts)
		if pageH < 1 {
			pageH = 1
		}
	}

	body := a.page.View(cw, pageH)
	if toasts != "" {
		body = lipgloss.JoinVertical(lipgloss.Right,
			lipgloss.PlaceHorizontal(cw, lipgloss.Right, toasts,
				lipgloss.WithWhitespaceBackground(t.Background)),
			body)
	}

	// 4. Truncate + pad to exactly contentH lines, fill background
	body = padHeight(truncateHeight(body, contentH), contentH)
	body = fillLinesWithBackground(body, cw, t.Background)

	var content string
	if Gated(a.route) {
		sideW := components.SidebarWidthFor(a.menuCollapsed)
		sidebar := components.RenderSidebar(navItems, a.route, a.menuCollapsed, contentH)
		body = lipgloss.Place(w-sideW, contentH, lipgloss.Center, lipgloss.Top, body,
			lipgloss.WithWhitespaceBackground(t.Background))
		content = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, body)
	} else {
		content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, body,
			lipgloss.WithWhitespaceBackground(t.Background))
	}

	// 5. Stack vertically
	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) globalHints() []components.KeyHint {
	if a.page.Capturing() {
		return []components.KeyHint{{Key: "esc", Label: "cancel"}}
	}
	hints := []components.KeyHint{{Key: "t", Label: "theme"}}
	if Gated(a.route) {
		hints = append(hints,
			components.KeyHint{Key: "R", Label: "recalc"},
			components.KeyHint{Key: "m", Label: "menu"},
			components.KeyHint{Key: "L", Label: "logout"},
		)
	}
	return append(hints,
		components.KeyHint{Key: "?", Label: "help"},
		components.KeyHint{Key: "q", Label: "quit"},
	)
}

// statusRight shows the session expiry read from the token.
func (a App) statusRight() string {
	if !Gated(a.route) {
		return a.deps.Client.BaseURL()
	}
	exp, ok := api.TokenExpiry(a.deps.Prefs.Token())
	if !ok {
		return ""
	}
	return "session " + cli.FormatExpiry(exp, a.deps.Now())
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
