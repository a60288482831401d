package xp

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// NotificationTTL is how long a notification stays visible after creation.
const NotificationTTL = 5000 * time.Millisecond

// Kind separates notification channels. One live notification per kind.
type Kind int

const (
	KindXP Kind = iota
	KindLevel
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindXP:
		return "xp"
	case KindLevel:
		return "level"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Notification is a transient user-facing message about an XP event.
type Notification struct {
	Message   string
	Kind      Kind
	CreatedAt time.Time
}

// Expired reports whether n is past its TTL at now.
func (n Notification) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) >= NotificationTTL
}

// Messages for the events the reconciler reports.

// GrantMessage announces a daily-login award.
func GrantMessage(granted int) string {
	return fmt.Sprintf("Congratulations! You earned %d XP for your daily login!", granted)
}

// LevelUpMessage announces a level change found by recalculation.
func LevelUpMessage(newLevel int) string {
	return fmt.Sprintf("Level updated! You reached level %d!", newLevel)
}

// LevelCurrentMessage is shown when recalculation changed nothing.
const LevelCurrentMessage = "Your level is already up to date!"

// Queue holds at most one notification per kind. Expiry is evaluated lazily
// against the caller's clock, so the queue needs no timers.
type Queue struct {
	mu    sync.Mutex
	slots [kindCount]*Notification
}

// Push stores n, superseding any notification of the same kind.
func (q *Queue) Push(n Notification) {
	if n.Kind < 0 || n.Kind >= kindCount {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	cp := n
	q.slots[n.Kind] = &cp
}

// Active returns unexpired notifications at now, oldest first. Expired ones
// are dropped from the queue.
func (q *Queue) Active(now time.Time) []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []Notification
	for i, n := range q.slots {
		if n == nil {
			continue
		}
		if n.Expired(now) {
			q.slots[i] = nil
			continue
		}
		out = append(out, *n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Clear drops every notification.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.slots = [kindCount]*Notification{}
}
