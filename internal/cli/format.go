// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/poupa/internal/xp"
)

// FormatBRL formats an amount as Brazilian reais.
// e.g., 1234.5 -> "R$ 1.234,50", -45.9 -> "-R$ 45,90"
func FormatBRL(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	s := fmt.Sprintf("R$ %s,%02d", FormatNumber(cents/100), cents%100)
	if neg && cents != 0 {
		return "-" + s
	}
	return s
}

// FormatSignedBRL formats a transaction amount with its type sign.
func FormatSignedBRL(v float64, typ string) string {
	switch typ {
	case "income":
		return "+" + FormatBRL(v)
	case "expense":
		return "-" + FormatBRL(v)
	default:
		return FormatBRL(v)
	}
}

// FormatNumber adds dot separators to an integer.
// e.g., 1234567 -> "1.234.567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte('.')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatDate turns "YYYY-MM-DD" into "DD/MM/YYYY". Anything else is
// returned as-is.
func FormatDate(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

// ParseDate accepts "DD/MM/YYYY" or "YYYY-MM-DD" and returns "YYYY-MM-DD".
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02"), nil
	}
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (use DD/MM/YYYY or YYYY-MM-DD)", s)
	}
	return t.Format("2006-01-02"), nil
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

// FormatLevel renders "Lv 3".
func FormatLevel(level int) string {
	return "Lv " + strconv.Itoa(level)
}

// FormatXPDelta formats an XP change with sign.
// e.g., 50 -> "+50 XP", -5 -> "-5 XP"
func FormatXPDelta(d int) string {
	if d >= 0 {
		return fmt.Sprintf("+%d XP", d)
	}
	return fmt.Sprintf("%d XP", d)
}

// FormatXPLine renders "Lv 2  150/300 XP".
func FormatXPLine(s xp.State) string {
	return FormatLevel(s.Level) + "  " + xp.FormatProgress(s)
}

// FormatExpiry describes how long a session has left.
// e.g., 25h -> "expires in 1d 1h", past -> "expired"
func FormatExpiry(exp, now time.Time) string {
	d := exp.Sub(now)
	if d <= 0 {
		return "expired"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("expires in %dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("expires in %dh %dm", hours, mins)
	default:
		return fmt.Sprintf("expires in %dm", mins)
	}
}
