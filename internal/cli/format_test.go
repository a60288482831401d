package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/theirongolddev/poupa/internal/xp"
)

func TestFormatBRL(t *testing.T) {
	tests := map[float64]string{
		0:         "R$ 0,00",
		45.9:      "R$ 45,90",
		1234.56:   "R$ 1.234,56",
		1000000:   "R$ 1.000.000,00",
		-45.9:     "-R$ 45,90",
		-0.001:    "R$ 0,00",
		999.999:   "R$ 1.000,00",
		123456.78: "R$ 123.456,78",
	}
	for in, want := range tests {
		if got := FormatBRL(in); got != want {
			t.Errorf("FormatBRL(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate("2025-01-10"); got != "10/01/2025" {
		t.Fatalf("FormatDate = %q", got)
	}
	if got := FormatDate("garbage"); got != "garbage" {
		t.Fatalf("FormatDate(garbage) = %q", got)
	}
	for _, in := range []string{"10/01/2025", "2025-01-10"} {
		got, err := ParseDate(in)
		if err != nil || got != "2025-01-10" {
			t.Fatalf("ParseDate(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDate("31/02/2025"); err == nil {
		t.Fatal("expected error for impossible date")
	}
}

func TestFormatXP(t *testing.T) {
	if got := FormatXPLine(xp.State{XP: 150, Level: 2, NextLevelXP: 300}); got != "Lv 2  150/300 XP" {
		t.Fatalf("FormatXPLine = %q", got)
	}
	if FormatXPDelta(50) != "+50 XP" || FormatXPDelta(-5) != "-5 XP" {
		t.Fatal("FormatXPDelta sign handling")
	}
}

func TestFormatExpiry(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	if got := FormatExpiry(now.Add(25*time.Hour), now); got != "expires in 1d 1h" {
		t.Fatalf("FormatExpiry = %q", got)
	}
	if got := FormatExpiry(now.Add(-time.Second), now); got != "expired" {
		t.Fatalf("FormatExpiry past = %q", got)
	}
}

func TestRenderTableAlignsWideRunes(t *testing.T) {
	out := RenderTable(Table{
		Headers:  []string{"Descrição", "Valor"},
		Rows:     [][]string{{"Alimentação", "R$ 45,90"}, {"Lazer", "R$ 1,00"}},
		LeftCols: 1,
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("lines = %d, want 6:\n%s", len(lines), out)
	}
	// Every line must have the same display width regardless of accents.
	w := ansi.StringWidth(lines[0])
	for i, l := range lines {
		if ansi.StringWidth(l) != w {
			t.Fatalf("line %d width %d, want %d:\n%s", i, ansi.StringWidth(l), w, out)
		}
	}
}
