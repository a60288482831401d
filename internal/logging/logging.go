// Package logging sets up the slog file logger shared by all poupa components.
// The TUI owns stdout, so log records always go to a file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Common attribute keys.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldRoute     = "route"
	FieldState     = "state"
)

// Component names.
const (
	ComponentAPI    = "api"
	ComponentGamify = "gamify"
	ComponentStore  = "store"
	ComponentTUI    = "tui"
	ComponentCLI    = "cli"
)

// ParseLevel maps a config string to an slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Open creates a text logger appending to path. The returned closer must be
// closed on shutdown.
func Open(path, level string) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(h), f, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// For returns l tagged with a component, or a discard logger when l is nil.
func For(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		l = Discard()
	}
	return l.With(FieldComponent, component)
}
