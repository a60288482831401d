package store

import (
	"log/slog"
	"strconv"

	"github.com/theirongolddev/poupa/internal/logging"
)

// Theme is the persisted colour mode.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme accepts "dark" or "light"; anything else is dark.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// Toggle returns the other mode.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Session is what a successful login leaves behind.
type Session struct {
	Token    string
	UserID   string
	Username string
}

// Prefs is the typed view over the raw key-value store. It satisfies the
// API client's token source.
type Prefs struct {
	kv  *Store
	log *slog.Logger
}

// NewPrefs wraps kv. A nil logger discards read errors silently.
func NewPrefs(kv *Store, log *slog.Logger) *Prefs {
	return &Prefs{kv: kv, log: log}
}

func (p *Prefs) get(key string) string {
	v, _, err := p.kv.Get(key)
	if err != nil && p.log != nil {
		p.log.Warn("preference read failed", "key", key, logging.FieldError, err)
	}
	return v
}

// Token returns the stored bearer token, or "" when logged out.
func (p *Prefs) Token() string {
	return p.get(KeyToken)
}

// ClearToken erases only the token. Used on 401/422.
func (p *Prefs) ClearToken() error {
	return p.kv.Delete(KeyToken)
}

// HasToken reports whether a token is present.
func (p *Prefs) HasToken() bool {
	return p.Token() != ""
}

// Session returns the stored login identity.
func (p *Prefs) Session() Session {
	return Session{
		Token:    p.get(KeyToken),
		UserID:   p.get(KeyUserID),
		Username: p.get(KeyUsername),
	}
}

// SaveSession persists a login result.
func (p *Prefs) SaveSession(s Session) error {
	return p.kv.SetMany(map[string]string{
		KeyToken:    s.Token,
		KeyUserID:   s.UserID,
		KeyUsername: s.Username,
	})
}

// ClearSession is logout: identity keys go, theme and menu state stay.
func (p *Prefs) ClearSession() error {
	return p.kv.Delete(KeyToken, KeyUserID, KeyUsername)
}

// Theme returns the persisted mode, dark when unset.
func (p *Prefs) Theme() Theme {
	return ParseTheme(p.get(KeyTheme))
}

// SetTheme persists the mode.
func (p *Prefs) SetTheme(t Theme) error {
	return p.kv.Set(KeyTheme, string(t))
}

// MenuCollapsed returns the sidebar state, collapsed when unset.
func (p *Prefs) MenuCollapsed() bool {
	v := p.get(KeyMenuCollapsed)
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return b
}

// SetMenuCollapsed persists the sidebar state as "true" or "false".
func (p *Prefs) SetMenuCollapsed(collapsed bool) error {
	return p.kv.Set(KeyMenuCollapsed, strconv.FormatBool(collapsed))
}
