package xp

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestProgressFractionBounds(t *testing.T) {
	cases := []State{
		{XP: 0, Level: 1, NextLevelXP: 100},
		{XP: 50, Level: 1, NextLevelXP: 100},
		{XP: 100, Level: 1, NextLevelXP: 100},
		{XP: 450, Level: 2, NextLevelXP: 400}, // level-up pending reconciliation
		{XP: -5, Level: 1, NextLevelXP: 100},
		{XP: 1 << 30, Level: 1, NextLevelXP: 1},
	}
	for _, s := range cases {
		f, err := ProgressFraction(s)
		if err != nil {
			t.Fatalf("ProgressFraction(%+v) error: %v", s, err)
		}
		if f < 0 || f > 1 {
			t.Fatalf("ProgressFraction(%+v) = %f, want within [0,1]", s, f)
		}
	}

	f, _ := ProgressFraction(State{XP: 150, Level: 2, NextLevelXP: 300})
	if f != 0.5 {
		t.Fatalf("150/300 = %f, want 0.5", f)
	}
}

func TestProgressFractionRejectsNonPositiveNext(t *testing.T) {
	for _, next := range []int{0, -100} {
		_, err := ProgressFraction(State{XP: 10, Level: 1, NextLevelXP: next})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("next=%d: err = %v, want ErrInvalidState", next, err)
		}
	}
}

func TestFormatProgress(t *testing.T) {
	got := FormatProgress(State{XP: 150, Level: 2, NextLevelXP: 400})
	if got != "150/400 XP" {
		t.Fatalf("FormatProgress = %q, want %q", got, "150/400 XP")
	}
}

func TestValidate(t *testing.T) {
	if err := (State{XP: 0, Level: 1, NextLevelXP: 100}).Validate(); err != nil {
		t.Fatalf("valid state rejected: %v", err)
	}
	bad := []State{
		{XP: -1, Level: 1, NextLevelXP: 100},
		{XP: 0, Level: 0, NextLevelXP: 100},
		{XP: 0, Level: 1, NextLevelXP: 0},
	}
	for _, s := range bad {
		if err := s.Validate(); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("Validate(%+v) = %v, want ErrInvalidState", s, err)
		}
	}
}

func TestStateJSONDates(t *testing.T) {
	var s State
	if err := json.Unmarshal([]byte(`{"xp":10,"level":1,"next_level_xp":100,"last_xp_grant":null}`), &s); err != nil {
		t.Fatal(err)
	}
	if s.LastXPGrant != nil {
		t.Fatalf("null last_xp_grant decoded as %v", s.LastXPGrant)
	}

	if err := json.Unmarshal([]byte(`{"xp":10,"level":1,"next_level_xp":100,"last_xp_grant":"2025-01-10"}`), &s); err != nil {
		t.Fatal(err)
	}
	if s.LastXPGrant == nil || s.LastXPGrant.String() != "2025-01-10" {
		t.Fatalf("last_xp_grant = %v, want 2025-01-10", s.LastXPGrant)
	}

	if err := json.Unmarshal([]byte(`{"last_xp_grant":"10/01/2025"}`), &s); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}
