// Package xp models a user's experience-point state as reported by the API,
// the values derived from it for display, and the short-lived notifications
// raised when it changes. Nothing here computes XP; the server is the only
// source of numeric truth.
package xp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidState is returned when a state violates its invariants.
var ErrInvalidState = errors.New("xp: invalid state")

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// Date is a calendar day encoded as "YYYY-MM-DD" on the wire.
type Date struct {
	time.Time
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// String formats the date as "YYYY-MM-DD".
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// State is the server-reported XP standing of the current user.
type State struct {
	XP          int   `json:"xp"`
	Level       int   `json:"level"`
	NextLevelXP int   `json:"next_level_xp"`
	LastXPGrant *Date `json:"last_xp_grant"`
}

// Validate checks the invariants a well-formed response must satisfy.
func (s State) Validate() error {
	switch {
	case s.XP < 0:
		return fmt.Errorf("%w: xp %d is negative", ErrInvalidState, s.XP)
	case s.Level < 1:
		return fmt.Errorf("%w: level %d is below 1", ErrInvalidState, s.Level)
	case s.NextLevelXP <= 0:
		return fmt.Errorf("%w: next_level_xp %d must be positive", ErrInvalidState, s.NextLevelXP)
	}
	return nil
}

// ProgressFraction returns xp/next_level_xp clamped to [0, 1].
// A non-positive next_level_xp is reported as ErrInvalidState.
func ProgressFraction(s State) (float64, error) {
	if s.NextLevelXP <= 0 {
		return 0, fmt.Errorf("%w: next_level_xp %d must be positive", ErrInvalidState, s.NextLevelXP)
	}
	f := float64(s.XP) / float64(s.NextLevelXP)
	if f < 0 {
		return 0, nil
	}
	if f > 1 {
		return 1, nil
	}
	return f, nil
}

// FormatProgress renders "{xp}/{next_level_xp} XP".
func FormatProgress(s State) string {
	return fmt.Sprintf("%d/%d XP", s.XP, s.NextLevelXP)
}

// LevelDelta is the number of levels gained between two states.
func LevelDelta(before, after State) int {
	return after.Level - before.Level
}
