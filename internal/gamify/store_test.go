package gamify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/poupa/internal/xp"
)

func TestDiffStates(t *testing.T) {
	d := diffStates(xp.State{XP: 100, Level: 1, NextLevelXP: 200}, xp.State{XP: 250, Level: 2, NextLevelXP: 300})
	if d.XP != 150 || d.Level != 1 || d.NextLevelXP != 100 {
		t.Fatalf("delta = %+v, want {150 1 100}", d)
	}
	if d.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
}

func TestStorePublishEvents(t *testing.T) {
	st := NewStore(2)
	ch, cancel := st.Subscribe()
	defer cancel()

	st.Publish(xp.State{XP: 10, Level: 1, NextLevelXP: 100})
	st.Publish(xp.State{XP: 10, Level: 1, NextLevelXP: 100}) // no change, no event
	st.Publish(xp.State{XP: 60, Level: 1, NextLevelXP: 100})
	st.Publish(xp.State{XP: 110, Level: 2, NextLevelXP: 200})

	first := <-ch
	if first.Type != EventSnapshot {
		t.Fatalf("first event type = %q, want snapshot", first.Type)
	}
	second := <-ch
	if second.Type != EventXPDelta || second.Delta.XP != 50 {
		t.Fatalf("second event = %+v, want xp delta 50", second)
	}

	events := st.Events()
	if len(events) != 2 {
		t.Fatalf("events len = %d, want 2", len(events))
	}
	if events[0].ID != 2 || events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", events[0].ID, events[1].ID)
	}
}

func TestStoreCancelUnsubscribes(t *testing.T) {
	st := NewStore(10)
	_, cancel := st.Subscribe()
	if st.SubscriberCount() != 1 {
		t.Fatalf("subscribers = %d, want 1", st.SubscriberCount())
	}
	cancel()
	cancel()
	if st.SubscriberCount() != 0 {
		t.Fatalf("subscribers = %d, want 0", st.SubscriberCount())
	}
}

func TestStoreSlowSubscriberDoesNotBlock(t *testing.T) {
	st := NewStore(10)
	_, cancel := st.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			st.Publish(xp.State{XP: i, Level: 1, NextLevelXP: 1000})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

type stubSource struct {
	states []xp.State
	i      int
}

func (s *stubSource) UserXP(context.Context) (xp.State, error) {
	if s.i >= len(s.states) {
		return xp.State{}, errors.New("exhausted")
	}
	st := s.states[s.i]
	s.i++
	return st, nil
}

func TestPollerPublishes(t *testing.T) {
	src := &stubSource{states: []xp.State{
		{XP: 10, Level: 1, NextLevelXP: 100},
		{XP: 60, Level: 1, NextLevelXP: 100},
	}}
	st := NewStore(10)
	p := NewPoller(src, st, time.Minute, nil)

	if err := p.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := p.PollOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := p.PollOnce(context.Background()); err == nil {
		t.Fatal("expected error from exhausted source")
	}

	status := p.Status()
	if status.PollCount != 3 || status.LastError == "" {
		t.Fatalf("status = %+v, want 3 polls with last error", status)
	}
	cur, _ := st.Current()
	if cur.XP != 60 {
		t.Fatalf("current xp = %d, want 60", cur.XP)
	}
}
