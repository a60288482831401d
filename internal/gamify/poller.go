package gamify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/theirongolddev/poupa/internal/logging"
	"github.com/theirongolddev/poupa/internal/xp"
)

// XPSource is what the poller reads.
type XPSource interface {
	UserXP(ctx context.Context) (xp.State, error)
}

// PollerStatus summarizes poller activity.
type PollerStatus struct {
	StartedAt  time.Time
	LastPollAt time.Time
	PollCount  int64
	LastError  string
}

// Poller periodically fetches XP and publishes it to a Store, so
// subscribers see deltas earned elsewhere (another device, the web app).
type Poller struct {
	src      XPSource
	store    *Store
	interval time.Duration
	log      *slog.Logger

	mu     sync.RWMutex
	status PollerStatus
}

// NewPoller creates a poller. Intervals under two seconds are raised to ten.
func NewPoller(src XPSource, store *Store, interval time.Duration, log *slog.Logger) *Poller {
	if interval < 2*time.Second {
		interval = 10 * time.Second
	}
	return &Poller{
		src:      src,
		store:    store,
		interval: interval,
		log:      logging.For(log, logging.ComponentGamify),
	}
}

// Run polls until ctx is canceled. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	p.status.StartedAt = time.Now()
	p.mu.Unlock()

	p.pollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// PollOnce fetches and publishes a single state.
func (p *Poller) PollOnce(ctx context.Context) error {
	return p.pollOnce(ctx)
}

func (p *Poller) pollOnce(ctx context.Context) error {
	s, err := p.src.UserXP(ctx)

	p.mu.Lock()
	p.status.LastPollAt = time.Now()
	p.status.PollCount++
	if err != nil {
		p.status.LastError = err.Error()
	} else {
		p.status.LastError = ""
	}
	p.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn("xp poll failed", logging.FieldError, err)
		}
		return err
	}
	p.store.Publish(s)
	return nil
}

// Status returns a copy of the poller's counters.
func (p *Poller) Status() PollerStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}
