package tui

import (
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/gamify"
	"github.com/theirongolddev/poupa/internal/store"
	"github.com/theirongolddev/poupa/internal/tui/components"
	"github.com/theirongolddev/poupa/internal/xp"
)

// page is one routed screen. Pages are pointers; Update mutates in place.
type page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
	// Leave is called when navigation moves away from the page.
	Leave()
	// Capturing pages (open forms) receive every key, global ones included.
	Capturing() bool
	Hints() []components.KeyHint
}

// reconciling is implemented by pages that own a gamification reconciler.
type reconciling interface {
	Reconciler() *gamify.Reconciler
}

// env is what a page gets at mount time.
type env struct {
	client   *api.Client
	prefs    *store.Prefs
	xp       *gamify.Store
	queue    *xp.Queue
	log      *slog.Logger // tagged for the tui
	baseLog  *slog.Logger
	now      func() time.Time
	navigate func(route string)
	mount    int
	flash    string
}

// gated is embedded by the logged-in pages. Each mount gets its own
// reconciler; they all share the app's store and notification queue.
type gated struct {
	env
	rec *gamify.Reconciler
}

func newGated(e env) gated {
	rec := gamify.NewReconciler(e.client, e.prefs,
		gamify.WithStore(e.xp),
		gamify.WithQueue(e.queue),
		gamify.WithClock(e.now),
		gamify.WithNavigator(e.navigate),
		gamify.WithLogger(e.baseLog),
	)
	return gated{env: e, rec: rec}
}

func (g *gated) Reconciler() *gamify.Reconciler { return g.rec }

func (g *gated) mountReconciler() tea.Cmd {
	return mountCmd(g.rec, g.mount)
}

// Leave discards whatever the reconciler still has in flight.
func (g *gated) Leave() {
	g.rec.Unmount()
}

// reconcileBanner is the reconciler's error text, if any.
func (g *gated) reconcileBanner() string {
	return g.rec.Snapshot().Err
}

func (g *gated) ref() mountRef { return mountRef{g.mount} }

// errorText turns err into banner text; fallback replaces the generic
// message for non-server failures.
func errorText(err error, fallback string) string {
	if err == nil {
		return ""
	}
	switch api.Classify(err) {
	case api.KindServer, api.KindValidation:
		return api.UserMessage(err)
	case api.KindAuth:
		return api.MsgSessionExpired
	}
	if errors.Is(err, gamify.ErrDiscarded) {
		return ""
	}
	if fallback != "" {
		return fallback
	}
	return api.UserMessage(err)
}
