package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/store"
	"github.com/theirongolddev/poupa/internal/tui/components"
)

var testNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestPrefs(t *testing.T, token string) *store.Prefs {
	t.Helper()
	kv, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	prefs := store.NewPrefs(kv, nil)
	if token != "" {
		if err := prefs.SaveSession(store.Session{Token: token, UserID: "7", Username: "ana"}); err != nil {
			t.Fatalf("save session: %v", err)
		}
	}
	return prefs
}

// newTestApp builds an app against handler. Commands are never run unless
// the test runs them.
func newTestApp(t *testing.T, handler http.Handler, token string) App {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	prefs := newTestPrefs(t, token)
	nav := NewNavChannel()
	client := api.NewClient(srv.URL, prefs, api.WithUnauthorizedHandler(UnauthorizedHandler(nav)))
	a := NewApp(Deps{
		Client: client,
		Prefs:  prefs,
		Nav:    nav,
		Now:    func() time.Time { return testNow },
	})
	t.Cleanup(a.Close)

	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App)
}

func goTo(t *testing.T, a App, route string) App {
	t.Helper()
	m, _ := a.Update(navigateMsg{route: route})
	return m.(App)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		route    string
		hasToken bool
		want     string
	}{
		{RouteLanding, false, RouteLanding},
		{RouteLogin, false, RouteLogin},
		{RouteLogin, true, RouteLogin},
		{RouteRegister, false, RouteRegister},
		{RouteDashboard, false, RouteLogin},
		{RouteDashboard, true, RouteDashboard},
		{RouteTransactions, false, RouteLogin},
		{RouteChallenges, true, RouteChallenges},
		{"/nope", true, RouteLanding},
		{"", false, RouteLanding},
	}
	for _, tt := range tests {
		if got := Resolve(tt.route, tt.hasToken); got != tt.want {
			t.Errorf("Resolve(%q, %v) = %q, want %q", tt.route, tt.hasToken, got, tt.want)
		}
	}
}

func TestGated(t *testing.T) {
	for _, r := range []string{RouteDashboard, RouteTransactions, RouteChallenges} {
		if !Gated(r) {
			t.Errorf("Gated(%q) = false", r)
		}
	}
	for _, r := range []string{RouteLanding, RouteLogin, RouteRegister} {
		if Gated(r) {
			t.Errorf("Gated(%q) = true", r)
		}
	}
}

func TestGatedRouteWithoutTokenShowsLogin(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "")
	a = goTo(t, a, RouteDashboard)
	if a.Route() != RouteLogin {
		t.Fatalf("route = %q, want %q", a.Route(), RouteLogin)
	}
	if _, ok := a.page.(*loginPage); !ok {
		t.Fatalf("page = %T, want *loginPage", a.page)
	}
}

func TestStaleResultIsDropped(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "tok")
	a = goTo(t, a, RouteDashboard)
	stale := a.mountID
	a = goTo(t, a, RouteDashboard)

	sum := &api.FinancialSummary{Period: api.PeriodMonth, Income: 100}
	m, _ := a.Update(summaryMsg{mountRef: mountRef{stale}, period: api.PeriodMonth, summary: sum})
	a = m.(App)
	p := a.page.(*dashboardPage)
	if p.summary != nil {
		t.Fatal("summary from the left page was applied")
	}

	m, _ = a.Update(summaryMsg{mountRef: mountRef{a.mountID}, period: api.PeriodMonth, summary: sum})
	a = m.(App)
	if a.page.(*dashboardPage).summary != sum {
		t.Fatal("summary from the live page was not applied")
	}
}

func TestThemeTogglePersists(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "")
	if a.deps.Prefs.Theme() != store.ThemeDark {
		t.Fatalf("default theme = %q", a.deps.Prefs.Theme())
	}
	a = goTo(t, a, RouteLanding)
	m, _ := a.Update(keyMsg("t"))
	a = m.(App)
	if got := a.deps.Prefs.Theme(); got != store.ThemeLight {
		t.Fatalf("theme after toggle = %q, want %q", got, store.ThemeLight)
	}
	m, _ = a.Update(keyMsg("t"))
	a = m.(App)
	if got := a.deps.Prefs.Theme(); got != store.ThemeDark {
		t.Fatalf("theme after second toggle = %q, want %q", got, store.ThemeDark)
	}
}

func TestMenuTogglePersists(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "tok")
	a = goTo(t, a, RouteDashboard)
	before := a.deps.Prefs.MenuCollapsed()
	m, _ := a.Update(keyMsg("m"))
	a = m.(App)
	if a.deps.Prefs.MenuCollapsed() == before {
		t.Fatal("menuCollapsed was not persisted")
	}
}

func TestForcedNavigationGoesToLogin(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "tok")
	a = goTo(t, a, RouteChallenges)

	m, _ := a.Update(forcedNavMsg{route: RouteLogin})
	a = m.(App)
	if a.Route() != RouteLogin {
		t.Fatalf("route = %q, want %q", a.Route(), RouteLogin)
	}
	lp, ok := a.page.(*loginPage)
	if !ok {
		t.Fatalf("page = %T", a.page)
	}
	if lp.flash != api.MsgSessionExpired {
		t.Errorf("flash = %q", lp.flash)
	}
}

func TestForcedNavigationOnLoginKeepsPage(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "")
	a = goTo(t, a, RouteLogin)
	lp := a.page.(*loginPage)
	lp.errMsg = "Invalid credentials"
	mount := a.mountID

	m, _ := a.Update(forcedNavMsg{route: RouteLogin})
	a = m.(App)
	if a.mountID != mount || a.page != page(lp) {
		t.Fatal("login page was remounted")
	}
	if lp.errMsg != "Invalid credentials" {
		t.Errorf("errMsg = %q", lp.errMsg)
	}
}

func TestUnauthorizedResponseClearsTokenAndNavigates(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"msg":"Token has expired"}`))
	})
	a := newTestApp(t, handler, "tok")

	if _, err := a.deps.Client.Profile(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if a.deps.Prefs.HasToken() {
		t.Error("token still stored")
	}
	select {
	case route := <-a.deps.Nav:
		if route != RouteLogin {
			t.Errorf("route = %q", route)
		}
	default:
		t.Fatal("no forced navigation was sent")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "tok")
	a = goTo(t, a, RouteDashboard)

	m, _ := a.Update(keyMsg("L"))
	a = m.(App)
	if a.deps.Prefs.HasToken() {
		t.Fatal("token still stored after logout")
	}
	if a.Route() != RouteLanding {
		t.Fatalf("route = %q, want %q", a.Route(), RouteLanding)
	}
	if _, ok := a.deps.XP.Current(); ok {
		t.Error("xp store not reset")
	}
}

func TestNumberKeysSwitchPages(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "tok")
	a = goTo(t, a, RouteDashboard)

	m, _ := a.Update(keyMsg("2"))
	a = m.(App)
	if a.Route() != RouteTransactions {
		t.Fatalf("route = %q", a.Route())
	}
	m, _ = a.Update(keyMsg("3"))
	a = m.(App)
	if a.Route() != RouteChallenges {
		t.Fatalf("route = %q", a.Route())
	}
}

func TestSidebarClickNavigates(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "tok")
	a = goTo(t, a, RouteDashboard)

	// Rows of the sidebar start below the header.
	y := headerHeight + components.SidebarItemsTop + 2
	m, _ := a.Update(tea.MouseMsg{X: 2, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	a = m.(App)
	if a.Route() != RouteChallenges {
		t.Fatalf("route = %q, want %q", a.Route(), RouteChallenges)
	}
}

func TestChallengeTabClick(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "tok")
	a = goTo(t, a, RouteChallenges)
	a.View()
	p := a.page.(*challengesPage)

	tabs := components.ChallengeTabs
	x := components.TabVisualWidth(tabs[0], true) + 1
	x += components.TabVisualWidth(tabs[1], false) + 1
	x += components.TabVisualWidth(tabs[2], false) / 2

	sideW := components.SidebarWidthFor(a.menuCollapsed)
	m, _ := a.Update(tea.MouseMsg{
		X: sideW + x, Y: headerHeight + p.tabY,
		Button: tea.MouseButtonLeft, Action: tea.MouseActionPress,
	})
	a = m.(App)
	if p.tab != tabRankings {
		t.Fatalf("tab = %d, want %d", p.tab, tabRankings)
	}
}

// runBatch runs cmd and every command of a batch it returns.
func runBatch(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, runBatch(c)...)
	}
	return out
}

func TestChallengesFetchesFailIndependently(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/challenges", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"challenges are down"}`))
	})
	mux.HandleFunc("/user/achievements", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"title":"First steps","xp_reward":10,"achieved_at":"2025-03-01T10:00:00","icon":""}]`))
	})
	mux.HandleFunc("/rankings", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"username":"ana","level":3,"xp":420,"is_current_user":true}]`))
	})
	a := newTestApp(t, mux, "tok")
	a = goTo(t, a, RouteChallenges)
	p := a.page.(*challengesPage)

	for _, msg := range runBatch(p.reload()) {
		p.Update(msg)
	}

	if p.loading() {
		t.Fatal("still loading after all fetches settled")
	}
	if p.challengesErr != "challenges are down" {
		t.Errorf("challengesErr = %q", p.challengesErr)
	}
	if p.achievementsErr != "" || len(p.achievements) != 1 {
		t.Errorf("achievements = %v, err %q", p.achievements, p.achievementsErr)
	}
	if p.rankingsErr != "" || len(p.rankings) != 1 || !p.rankings[0].IsCurrentUser {
		t.Errorf("rankings = %v, err %q", p.rankings, p.rankingsErr)
	}
}

func TestChallengesLoadingClearsOnFirstSettle(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "tok")
	a = goTo(t, a, RouteChallenges)
	p := a.page.(*challengesPage)

	p.reload()
	if !p.loading() {
		t.Fatal("reload did not set loading")
	}
	p.Update(achievementsMsg{mountRef: p.ref(), seq: p.loadSeq, items: []api.Achievement{{ID: 1}}})
	if p.loading() {
		t.Fatal("loading still set after one fetch settled")
	}
	if len(p.achievements) != 1 {
		t.Fatalf("achievements = %v", p.achievements)
	}
}

func TestChallengesIgnoresOlderReload(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "tok")
	a = goTo(t, a, RouteChallenges)
	p := a.page.(*challengesPage)

	p.reload()
	old := p.loadSeq
	p.reload()
	current := p.loadSeq

	p.Update(rankingsMsg{mountRef: p.ref(), seq: current, items: []api.RankingUser{{Username: "new"}}})
	p.Update(rankingsMsg{mountRef: p.ref(), seq: old, items: []api.RankingUser{{Username: "old"}}})
	p.Update(challengesMsg{mountRef: p.ref(), seq: old, err: errors.New("stale failure")})

	if len(p.rankings) != 1 || p.rankings[0].Username != "new" {
		t.Fatalf("rankings = %v, want the newer batch", p.rankings)
	}
	if p.challengesErr != "" {
		t.Fatalf("stale error surfaced: %q", p.challengesErr)
	}

	p.reload()
	p.Update(challengesMsg{mountRef: p.ref(), seq: current, items: []api.Challenge{{ID: 9}}})
	if !p.loading() {
		t.Fatal("older batch cleared the loading flag of a newer one")
	}
}

func TestTransactionsIgnoresOlderFetch(t *testing.T) {
	a := newTestApp(t, http.NotFoundHandler(), "tok")
	a = goTo(t, a, RouteTransactions)
	p := a.page.(*transactionsPage)

	first := p.fetchSeq
	p.fetchTransactions()

	p.Update(transactionsMsg{mountRef: p.ref(), seq: first, txs: []api.Transaction{{ID: 1}}})
	if len(p.txs) != 0 {
		t.Fatal("older fetch overwrote the list")
	}
	p.Update(transactionsMsg{mountRef: p.ref(), seq: p.fetchSeq, txs: []api.Transaction{{ID: 2}}})
	if len(p.txs) != 1 || p.txs[0].ID != 2 {
		t.Fatalf("txs = %v", p.txs)
	}
}

func TestFormToTransaction(t *testing.T) {
	f, err := formToTransaction(&txFormValues{
		description: "Mercado",
		amount:      "45,90",
		typ:         api.TypeExpense,
		date:        "14/03/2025",
		categoryID:  3,
	})
	if err != nil {
		t.Fatalf("formToTransaction: %v", err)
	}
	if f.Amount != 45.90 || f.Date != "2025-03-14" || f.CategoryID != 3 {
		t.Errorf("form = %+v", f)
	}

	if _, err := formToTransaction(&txFormValues{description: "x", amount: "10", typ: api.TypeIncome}); err == nil {
		t.Error("missing category accepted")
	}
	if _, err := formToTransaction(&txFormValues{description: "x", amount: "abc", typ: api.TypeIncome, categoryID: 1}); err == nil {
		t.Error("bad amount accepted")
	}
}

func TestErrorText(t *testing.T) {
	if got := errorText(&api.HTTPError{Status: 400, Message: "Saldo insuficiente"}, "fallback"); got != "Saldo insuficiente" {
		t.Errorf("server error = %q", got)
	}
	if got := errorText(&api.AuthError{Status: 401}, "fallback"); got != api.MsgSessionExpired {
		t.Errorf("auth error = %q", got)
	}
	if got := errorText(&api.NetworkError{Err: context.DeadlineExceeded}, "fallback"); got != "fallback" {
		t.Errorf("network error = %q", got)
	}
	if got := errorText(nil, "fallback"); got != "" {
		t.Errorf("nil = %q", got)
	}
}
