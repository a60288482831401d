package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultBaseURL is the API root used when nothing else is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// Config holds all poupa configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// APIConfig holds settings for the Pac Poupança REST API.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
	// TimeoutSec is a per-request deadline. Zero means no deadline.
	TimeoutSec int `toml:"timeout_sec,omitempty"`
}

// AppearanceConfig holds palette settings. Dark/light mode is a user
// preference kept in the preference store, not here.
type AppearanceConfig struct {
	Palette string `toml:"palette"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},
		Appearance: AppearanceConfig{
			Palette: "flexoki",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "poupa")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "poupa")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CacheDir returns the directory holding the preference database and logs.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "poupa")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "poupa")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides (optionally from ./.env) are applied last.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path and applies env overrides.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	// A missing .env is the common case.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("POUPA_API_URL")); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("POUPA_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to the given path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// LogPath returns the configured log file, defaulting into CacheDir.
func LogPath(cfg Config) string {
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	return filepath.Join(CacheDir(), "poupa.log")
}
