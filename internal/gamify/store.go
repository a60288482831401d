package gamify

import (
	"sync"
	"time"

	"github.com/theirongolddev/poupa/internal/xp"
)

// Event types.
const (
	EventSnapshot = "snapshot"
	EventXPDelta  = "xp_delta"
)

// Delta captures the change between two published states.
type Delta struct {
	XP          int `json:"xp"`
	Level       int `json:"level"`
	NextLevelXP int `json:"next_level_xp"`
}

func (d Delta) isZero() bool {
	return d.XP == 0 && d.Level == 0 && d.NextLevelXP == 0
}

func diffStates(prev, curr xp.State) Delta {
	return Delta{
		XP:          curr.XP - prev.XP,
		Level:       curr.Level - prev.Level,
		NextLevelXP: curr.NextLevelXP - prev.NextLevelXP,
	}
}

// Event is emitted to subscribers whenever the published state changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	State     xp.State  `json:"state"`
	Delta     Delta     `json:"delta"`
}

// Store is the process-wide observable XP state. Reconcilers publish into it
// and surfaces such as the header widget subscribe to it.
type Store struct {
	mu          sync.RWMutex
	has         bool
	state       xp.State
	nextEventID int64
	events      []Event
	buffer      int
	now         func() time.Time

	nextSubID int
	subs      map[int]chan Event
}

// NewStore returns an empty store keeping the last buffer events.
func NewStore(buffer int) *Store {
	if buffer < 1 {
		buffer = 100
	}
	return &Store{
		buffer: buffer,
		now:    time.Now,
		subs:   make(map[int]chan Event),
	}
}

// Publish records s. The first state produces a snapshot event; later ones
// produce a delta event only when something changed. A LastXPGrant-only
// change updates the state without an event.
func (st *Store) Publish(s xp.State) {
	var (
		ev      Event
		publish bool
	)

	st.mu.Lock()
	prev, had := st.state, st.has
	st.state, st.has = s, true
	now := st.now()

	if !had {
		st.nextEventID++
		ev = Event{ID: st.nextEventID, Type: EventSnapshot, Timestamp: now, State: s}
		publish = true
	} else if d := diffStates(prev, s); !d.isZero() {
		st.nextEventID++
		ev = Event{ID: st.nextEventID, Type: EventXPDelta, Timestamp: now, State: s, Delta: d}
		publish = true
	}

	if publish {
		st.events = append(st.events, ev)
		if len(st.events) > st.buffer {
			st.events = st.events[len(st.events)-st.buffer:]
		}
		for _, ch := range st.subs {
			select {
			case ch <- ev:
			default:
			}
		}
	}
	st.mu.Unlock()
}

// Current returns the last published state.
func (st *Store) Current() (xp.State, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.state, st.has
}

// Events returns a copy of the retained event history.
func (st *Store) Events() []Event {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]Event, len(st.events))
	copy(out, st.events)
	return out
}

// Reset forgets the current state, e.g. on logout. Subscribers stay.
func (st *Store) Reset() {
	st.mu.Lock()
	st.has = false
	st.state = xp.State{}
	st.mu.Unlock()
}

// Subscribe returns a channel of future events and a cancel func. Slow
// subscribers miss events rather than block publishers.
func (st *Store) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	st.mu.Lock()
	st.nextSubID++
	id := st.nextSubID
	st.subs[id] = ch
	st.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			st.mu.Lock()
			delete(st.subs, id)
			st.mu.Unlock()
		})
	}
	return ch, cancel
}

// SubscriberCount reports the number of live subscriptions.
func (st *Store) SubscriberCount() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.subs)
}
