// Package daemon serves the XP feed of a running `poupa watch` over local
// HTTP/SSE endpoints.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/theirongolddev/poupa/internal/gamify"
	"github.com/theirongolddev/poupa/internal/logging"
	"github.com/theirongolddev/poupa/internal/xp"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:8787"

// Config controls the service.
type Config struct {
	Addr     string
	Interval time.Duration
	BaseURL  string
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	BaseURL         string    `json:"base_url"`
	State           *xp.State `json:"state,omitempty"`
	Progress        string    `json:"progress,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service polls XP into a store and exposes it over HTTP.
type Service struct {
	cfg    Config
	store  *gamify.Store
	poller *gamify.Poller
	log    *slog.Logger
}

// New returns a service reading from src. The store is shared with any
// other subscriber in the process.
func New(cfg Config, src gamify.XPSource, store *gamify.Store, log *slog.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Service{
		cfg:    cfg,
		store:  store,
		poller: gamify.NewPoller(src, store, cfg.Interval, log),
		log:    logging.For(log, "daemon"),
	}
}

// Handler returns the HTTP routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts the HTTP endpoints and the poller until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	pollCtx, stopPoll := context.WithCancel(ctx)
	defer stopPoll()
	go func() { _ = s.poller.Run(pollCtx) }()

	s.log.Info("xp feed listening", "addr", s.cfg.Addr, "interval", s.cfg.Interval)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

func (s *Service) snapshotStatus() Status {
	ps := s.poller.Status()
	st := Status{
		StartedAt:       ps.StartedAt,
		LastPollAt:      ps.LastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       ps.PollCount,
		BaseURL:         s.cfg.BaseURL,
		LastError:       ps.LastError,
		EventCount:      len(s.store.Events()),
		SubscriberCount: s.store.SubscriberCount(),
	}
	if cur, ok := s.store.Current(); ok {
		st.State = &cur
		st.Progress = xp.FormatProgress(cur)
	}
	return st
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.store.Events())
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.store.Subscribe()
	defer cancel()

	// Send the current state immediately.
	if cur, ok := s.store.Current(); ok {
		writeSSE(w, gamify.Event{Type: gamify.EventSnapshot, Timestamp: time.Now(), State: cur})
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev gamify.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
