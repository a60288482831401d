package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);
`

// Persisted keys. The set mirrors what the web client keeps in localStorage.
const (
	KeyToken         = "token"
	KeyUserID        = "userId"
	KeyUsername      = "username"
	KeyTheme         = "theme"
	KeyMenuCollapsed = "menuCollapsed"
)
