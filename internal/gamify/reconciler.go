// Package gamify reconciles the client's view of XP with the server. A
// Reconciler runs the per-mount sequence (fetch XP, request the daily grant,
// merge) and the user-triggered level recalculation, raising transient
// notifications and publishing every merged state to a shared Store.
package gamify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/logging"
	"github.com/theirongolddev/poupa/internal/xp"
)

var (
	// ErrLoginRequired is returned by Mount when no token is stored.
	ErrLoginRequired = errors.New("gamify: login required")
	// ErrDiscarded is returned when a call finished after Unmount.
	ErrDiscarded = errors.New("gamify: result discarded after unmount")
	// ErrBusy is returned when Recalculate is called outside Settled/Error.
	ErrBusy = errors.New("gamify: reconciler busy")
)

// MsgRetry is the banner shown when reconciliation fails.
const MsgRetry = "Could not load your progress. Please try again."

// LoginRoute is where the navigator is sent when no token is present.
const LoginRoute = "/login"

// Phase is the reconciler's position in its state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetchingXP
	PhaseGrantingDaily
	PhaseSettled
	PhaseRecalculating
	PhaseError
	PhaseLoginRequired
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetchingXP:
		return "fetching_xp"
	case PhaseGrantingDaily:
		return "granting_daily"
	case PhaseSettled:
		return "settled"
	case PhaseRecalculating:
		return "recalculating"
	case PhaseError:
		return "error"
	case PhaseLoginRequired:
		return "login_required"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Busy reports whether a network call is in flight.
func (p Phase) Busy() bool {
	return p == PhaseFetchingXP || p == PhaseGrantingDaily || p == PhaseRecalculating
}

// Gateway is the subset of the API client the reconciler needs.
type Gateway interface {
	UserXP(ctx context.Context) (xp.State, error)
	GrantDailyXP(ctx context.Context) (api.DailyGrantResult, error)
	RecalculateLevel(ctx context.Context) (api.RecalculationResult, error)
}

// TokenSource reports whether a session token is stored.
type TokenSource interface {
	HasToken() bool
}

// Snapshot is a consistent read of the reconciler for rendering.
type Snapshot struct {
	Phase    Phase
	State    xp.State
	HasState bool
	Err      string
}

// Reconciler owns one mount session's XP state.
type Reconciler struct {
	gw       Gateway
	tokens   TokenSource
	store    *Store
	queue    *xp.Queue
	now      func() time.Time
	navigate func(route string)
	log      *slog.Logger

	mu       sync.Mutex
	phase    Phase
	state    xp.State
	hasState bool
	errMsg   string
	mounted  bool
	gen      uint64
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithNavigator sets the callback used to force navigation to the login view.
func WithNavigator(fn func(route string)) Option {
	return func(r *Reconciler) { r.navigate = fn }
}

// WithStore publishes merged states into s.
func WithStore(s *Store) Option {
	return func(r *Reconciler) { r.store = s }
}

// WithQueue shares a notification queue, e.g. one owned by the app shell.
func WithQueue(q *xp.Queue) Option {
	return func(r *Reconciler) { r.queue = q }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) { r.log = logging.For(l, logging.ComponentGamify) }
}

// NewReconciler creates an idle reconciler.
func NewReconciler(gw Gateway, tokens TokenSource, opts ...Option) *Reconciler {
	r := &Reconciler{
		gw:     gw,
		tokens: tokens,
		now:    time.Now,
		log:    logging.For(nil, logging.ComponentGamify),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.queue == nil {
		r.queue = &xp.Queue{}
	}
	return r
}

// Queue returns the notification queue the reconciler pushes to.
func (r *Reconciler) Queue() *xp.Queue {
	return r.queue
}

// Snapshot returns the current phase and state.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{Phase: r.phase, State: r.state, HasState: r.hasState, Err: r.errMsg}
}

// Mount runs the mount sequence: fetch XP, then always request the daily
// grant. It blocks until both calls settle and returns the first error.
func (r *Reconciler) Mount(ctx context.Context) error {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mounted = true
	r.errMsg = ""

	if r.tokens == nil || !r.tokens.HasToken() {
		r.setPhase(PhaseLoginRequired)
		r.mu.Unlock()
		if r.navigate != nil {
			r.navigate(LoginRoute)
		}
		return ErrLoginRequired
	}
	r.setPhase(PhaseFetchingXP)
	r.mu.Unlock()

	s, err := r.gw.UserXP(ctx)
	if err != nil {
		return r.fail(gen, err)
	}
	if !r.apply(gen, func() {
		r.state, r.hasState = s, true
		r.setPhase(PhaseGrantingDaily)
	}) {
		return ErrDiscarded
	}
	r.publish(s)

	grant, err := r.gw.GrantDailyXP(ctx)
	if err != nil {
		return r.fail(gen, err)
	}

	var merged xp.State
	if !r.apply(gen, func() {
		if grant.XPGranted > 0 {
			today := xp.DateOf(r.now())
			r.state.XP = grant.TotalXP
			r.state.Level = grant.Level
			r.state.NextLevelXP = grant.NextLevelXP
			r.state.LastXPGrant = &today
			r.queue.Push(xp.Notification{
				Message:   xp.GrantMessage(grant.XPGranted),
				Kind:      xp.KindXP,
				CreatedAt: r.now(),
			})
			r.log.Info("daily xp granted", "granted", grant.XPGranted, "total", grant.TotalXP)
		}
		merged = r.state
		r.setPhase(PhaseSettled)
	}) {
		return ErrDiscarded
	}
	r.publish(merged)
	return nil
}

// Recalculate asks the server to recompute the level. Only valid once the
// mount sequence has settled or failed.
func (r *Reconciler) Recalculate(ctx context.Context) error {
	r.mu.Lock()
	if !r.mounted {
		r.mu.Unlock()
		return ErrDiscarded
	}
	if r.phase != PhaseSettled && r.phase != PhaseError {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBusy, r.phase)
	}
	gen := r.gen
	r.errMsg = ""
	r.setPhase(PhaseRecalculating)
	r.mu.Unlock()

	res, err := r.gw.RecalculateLevel(ctx)
	if err != nil {
		return r.fail(gen, err)
	}

	var merged xp.State
	if !r.apply(gen, func() {
		r.state.XP = res.XP
		r.state.NextLevelXP = res.NextLevelXP
		msg := xp.LevelCurrentMessage
		if res.LevelChanged || !r.hasState {
			r.state.Level = res.NewLevel
		}
		if res.LevelChanged {
			msg = xp.LevelUpMessage(res.NewLevel)
		}
		r.hasState = true
		r.queue.Push(xp.Notification{Message: msg, Kind: xp.KindLevel, CreatedAt: r.now()})
		merged = r.state
		r.setPhase(PhaseSettled)
	}) {
		return ErrDiscarded
	}
	r.publish(merged)
	return nil
}

// Unmount detaches the reconciler from its page. Calls still in flight
// settle into nothing.
func (r *Reconciler) Unmount() {
	r.mu.Lock()
	r.mounted = false
	r.gen++
	r.mu.Unlock()
}

// apply runs fn under the lock if gen is still the live mount session.
func (r *Reconciler) apply(gen uint64, fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.mounted || gen != r.gen {
		r.log.Debug("discarding late result", "gen", gen)
		return false
	}
	fn()
	return true
}

// fail moves to Error, or to LoginRequired when the gateway has already
// forced a logout.
func (r *Reconciler) fail(gen uint64, err error) error {
	if !r.apply(gen, func() {
		if errors.Is(err, api.ErrUnauthorized) {
			r.setPhase(PhaseLoginRequired)
			return
		}
		r.errMsg = MsgRetry
		r.setPhase(PhaseError)
	}) {
		return ErrDiscarded
	}
	r.log.Warn("reconcile failed", logging.FieldError, err)
	return err
}

// setPhase must be called with mu held.
func (r *Reconciler) setPhase(p Phase) {
	if r.phase != p {
		r.log.Debug("phase change", "from", r.phase.String(), logging.FieldState, p.String())
	}
	r.phase = p
}

func (r *Reconciler) publish(s xp.State) {
	if r.store != nil {
		r.store.Publish(s)
	}
}
