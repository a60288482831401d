package xp

import (
	"strings"
	"testing"
	"time"
)

func TestQueueExpiryBoundary(t *testing.T) {
	var q Queue
	t0 := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	q.Push(Notification{Message: GrantMessage(50), Kind: KindXP, CreatedAt: t0})

	if got := q.Active(t0.Add(4999 * time.Millisecond)); len(got) != 1 {
		t.Fatalf("at T+4999ms active = %d, want 1", len(got))
	}
	if got := q.Active(t0.Add(5001 * time.Millisecond)); len(got) != 0 {
		t.Fatalf("at T+5001ms active = %d, want 0", len(got))
	}
}

func TestQueueSupersedesSameKind(t *testing.T) {
	var q Queue
	t0 := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	q.Push(Notification{Message: "first", Kind: KindLevel, CreatedAt: t0})
	q.Push(Notification{Message: "second", Kind: KindLevel, CreatedAt: t0.Add(time.Second)})

	got := q.Active(t0.Add(2 * time.Second))
	if len(got) != 1 || got[0].Message != "second" {
		t.Fatalf("active = %+v, want only the newer notification", got)
	}

	// The newer one lives 5s from its own creation.
	if got := q.Active(t0.Add(5500 * time.Millisecond)); len(got) != 1 {
		t.Fatalf("superseding notification expired early: %+v", got)
	}
}

func TestQueueKindsCoexist(t *testing.T) {
	var q Queue
	t0 := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	q.Push(Notification{Message: GrantMessage(50), Kind: KindXP, CreatedAt: t0})
	q.Push(Notification{Message: LevelUpMessage(3), Kind: KindLevel, CreatedAt: t0.Add(3 * time.Second)})

	got := q.Active(t0.Add(4 * time.Second))
	if len(got) != 2 {
		t.Fatalf("active = %d, want both kinds", len(got))
	}
	if got[0].Kind != KindXP || got[1].Kind != KindLevel {
		t.Fatalf("order = %v,%v, want oldest first", got[0].Kind, got[1].Kind)
	}

	// XP expires on its own schedule; the level one is still live.
	got = q.Active(t0.Add(6 * time.Second))
	if len(got) != 1 || got[0].Kind != KindLevel {
		t.Fatalf("after XP expiry active = %+v, want only level", got)
	}
}

func TestMessages(t *testing.T) {
	if !strings.Contains(GrantMessage(50), "50") {
		t.Fatal("grant message must mention the amount")
	}
	if !strings.Contains(LevelUpMessage(4), "4") {
		t.Fatal("level-up message must mention the level")
	}
	if !strings.Contains(strings.ToLower(LevelCurrentMessage), "already up to date") {
		t.Fatal("level-current message wording changed")
	}
}
