package gamify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/xp"
)

type fakeGateway struct {
	state    xp.State
	stateErr error
	grant    api.DailyGrantResult
	grantErr error
	recalc   api.RecalculationResult
	recErr   error

	// grantGate, when set, blocks GrantDailyXP until closed.
	grantGate chan struct{}

	xpCalls, grantCalls, recalcCalls int
}

func (f *fakeGateway) UserXP(context.Context) (xp.State, error) {
	f.xpCalls++
	return f.state, f.stateErr
}

func (f *fakeGateway) GrantDailyXP(context.Context) (api.DailyGrantResult, error) {
	f.grantCalls++
	if f.grantGate != nil {
		<-f.grantGate
	}
	return f.grant, f.grantErr
}

func (f *fakeGateway) RecalculateLevel(context.Context) (api.RecalculationResult, error) {
	f.recalcCalls++
	return f.recalc, f.recErr
}

type tokenFlag bool

func (t tokenFlag) HasToken() bool { return bool(t) }

var fixedNow = time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)

func newTestReconciler(gw Gateway, opts ...Option) *Reconciler {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewReconciler(gw, tokenFlag(true), opts...)
}

func TestMountZeroGrantNoNotification(t *testing.T) {
	gw := &fakeGateway{
		state: xp.State{XP: 100, Level: 1, NextLevelXP: 200},
		grant: api.DailyGrantResult{XPGranted: 0, TotalXP: 100, Level: 1, NextLevelXP: 200},
	}
	r := newTestReconciler(gw)

	if err := r.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if gw.grantCalls != 1 {
		t.Fatalf("grant calls = %d, want 1 (always requested)", gw.grantCalls)
	}
	if n := r.Queue().Active(fixedNow); len(n) != 0 {
		t.Fatalf("notifications = %+v, want none", n)
	}
	snap := r.Snapshot()
	if snap.Phase != PhaseSettled {
		t.Fatalf("phase = %s, want settled", snap.Phase)
	}
	if snap.State.LastXPGrant != nil {
		t.Fatalf("LastXPGrant set on a zero grant: %v", snap.State.LastXPGrant)
	}
}

func TestMountGrantMergesState(t *testing.T) {
	gw := &fakeGateway{
		state: xp.State{XP: 100, Level: 1, NextLevelXP: 200},
		grant: api.DailyGrantResult{XPGranted: 50, TotalXP: 150, Level: 2, NextLevelXP: 300},
	}
	store := NewStore(10)
	r := newTestReconciler(gw, WithStore(store))

	if err := r.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	s := r.Snapshot().State
	if s.XP != 150 || s.Level != 2 || s.NextLevelXP != 300 {
		t.Fatalf("state = %+v, want {150 2 300}", s)
	}
	if s.LastXPGrant == nil || s.LastXPGrant.String() != "2025-01-10" {
		t.Fatalf("LastXPGrant = %v, want today", s.LastXPGrant)
	}

	active := r.Queue().Active(fixedNow)
	if len(active) != 1 {
		t.Fatalf("notifications = %d, want exactly 1", len(active))
	}
	if active[0].Kind != xp.KindXP || !strings.Contains(active[0].Message, "50") {
		t.Fatalf("notification = %+v, want XP kind mentioning 50", active[0])
	}

	cur, ok := store.Current()
	if !ok || cur.XP != 150 {
		t.Fatalf("store current = %+v (%v), want merged state", cur, ok)
	}
}

func TestRecalculateUnchangedKeepsLevel(t *testing.T) {
	gw := &fakeGateway{
		state:  xp.State{XP: 150, Level: 2, NextLevelXP: 300},
		grant:  api.DailyGrantResult{TotalXP: 150, Level: 2, NextLevelXP: 300},
		recalc: api.RecalculationResult{LevelChanged: false, NewLevel: 2, XP: 160, NextLevelXP: 300},
	}
	r := newTestReconciler(gw)
	if err := r.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := r.Recalculate(context.Background()); err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	s := r.Snapshot().State
	if s.Level != 2 {
		t.Fatalf("level = %d, want unchanged 2", s.Level)
	}
	if s.XP != 160 {
		t.Fatalf("xp = %d, want merged 160", s.XP)
	}

	active := r.Queue().Active(fixedNow)
	if len(active) != 1 || active[0].Kind != xp.KindLevel {
		t.Fatalf("notifications = %+v, want one level notification", active)
	}
	if !strings.Contains(strings.ToLower(active[0].Message), "already up to date") {
		t.Fatalf("message = %q, want already-up-to-date text", active[0].Message)
	}
}

func TestRecalculateLevelChanged(t *testing.T) {
	gw := &fakeGateway{
		state:  xp.State{XP: 450, Level: 2, NextLevelXP: 400},
		grant:  api.DailyGrantResult{TotalXP: 450, Level: 2, NextLevelXP: 400},
		recalc: api.RecalculationResult{LevelChanged: true, NewLevel: 3, XP: 450, NextLevelXP: 600},
	}
	r := newTestReconciler(gw)
	if err := r.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.Recalculate(context.Background()); err != nil {
		t.Fatal(err)
	}

	s := r.Snapshot().State
	if s.Level != 3 || s.NextLevelXP != 600 {
		t.Fatalf("state = %+v, want level 3 next 600", s)
	}
	active := r.Queue().Active(fixedNow)
	if len(active) != 1 || !strings.Contains(active[0].Message, "3") {
		t.Fatalf("notifications = %+v, want level-up mentioning 3", active)
	}
}

func TestRecalculateRequiresSettled(t *testing.T) {
	r := newTestReconciler(&fakeGateway{})
	if err := r.Recalculate(context.Background()); !errors.Is(err, ErrDiscarded) {
		t.Fatalf("before mount err = %v, want ErrDiscarded", err)
	}
}

func TestMountWithoutTokenNavigatesToLogin(t *testing.T) {
	gw := &fakeGateway{}
	var navigated string
	r := NewReconciler(gw, tokenFlag(false), WithNavigator(func(route string) { navigated = route }))

	if err := r.Mount(context.Background()); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("err = %v, want ErrLoginRequired", err)
	}
	if navigated != LoginRoute {
		t.Fatalf("navigated to %q, want %q", navigated, LoginRoute)
	}
	if r.Snapshot().Phase != PhaseLoginRequired {
		t.Fatalf("phase = %s, want login_required", r.Snapshot().Phase)
	}
	if gw.xpCalls != 0 {
		t.Fatal("no request should be sent without a token")
	}
}

func TestMountFailureSetsError(t *testing.T) {
	gw := &fakeGateway{stateErr: &api.HTTPError{Status: 500, Message: "boom"}}
	r := newTestReconciler(gw)

	if err := r.Mount(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	snap := r.Snapshot()
	if snap.Phase != PhaseError || snap.Err != MsgRetry {
		t.Fatalf("snapshot = %+v, want error phase with retry message", snap)
	}
	if gw.grantCalls != 0 {
		t.Fatal("grant must not be requested after a failed fetch")
	}
}

func TestMountAuthFailureIsSuperseded(t *testing.T) {
	gw := &fakeGateway{stateErr: &api.AuthError{Status: 401}}
	r := newTestReconciler(gw)

	_ = r.Mount(context.Background())
	snap := r.Snapshot()
	if snap.Phase != PhaseLoginRequired || snap.Err != "" {
		t.Fatalf("snapshot = %+v, want login_required without banner", snap)
	}
}

func TestUnmountDiscardsLateResult(t *testing.T) {
	gate := make(chan struct{})
	gw := &fakeGateway{
		state:     xp.State{XP: 100, Level: 1, NextLevelXP: 200},
		grant:     api.DailyGrantResult{XPGranted: 50, TotalXP: 150, Level: 1, NextLevelXP: 200},
		grantGate: gate,
	}
	store := NewStore(10)
	r := newTestReconciler(gw, WithStore(store))

	done := make(chan error, 1)
	go func() { done <- r.Mount(context.Background()) }()

	// Wait until the grant call is in flight.
	deadline := time.After(2 * time.Second)
	for r.Snapshot().Phase != PhaseGrantingDaily {
		select {
		case <-deadline:
			t.Fatal("mount never reached granting_daily")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	r.Unmount()
	close(gate)

	if err := <-done; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("Mount err = %v, want ErrDiscarded", err)
	}
	if got := r.Snapshot().State.XP; got != 100 {
		t.Fatalf("xp = %d, late grant leaked into state", got)
	}
	if n := r.Queue().Active(fixedNow); len(n) != 0 {
		t.Fatalf("late grant queued notifications: %+v", n)
	}
	if cur, _ := store.Current(); cur.XP != 100 {
		t.Fatalf("store xp = %d, late grant was published", cur.XP)
	}
}
