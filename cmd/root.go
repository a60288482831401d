package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/config"
	"github.com/theirongolddev/poupa/internal/logging"
	"github.com/theirongolddev/poupa/internal/store"
	"github.com/theirongolddev/poupa/internal/tui"

	"github.com/spf13/cobra"
)

var (
	flagAPIURL  string
	flagDataDir string
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:           "poupa",
	Short:         "Pac Poupança terminal client",
	Long:          "Track income and expenses, earn XP and level up from the terminal.",
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  %s\n", errorLine(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "API base URL (overrides config and POUPA_API_URL)")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", config.CacheDir(), "Directory for the session store and logs")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// runtime is what every command shares: config, logger, the preference
// store and the gateway client built on it.
type runtime struct {
	cfg    config.Config
	log    *slog.Logger
	kv     *store.Store
	prefs  *store.Prefs
	client *api.Client
	nav    chan string

	closers []io.Closer
}

// openRuntime loads config, opens the log file and the store, and builds
// the client. Callers must Close it.
func openRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL
	}

	rt := &runtime{cfg: cfg, nav: tui.NewNavChannel()}

	logPath := config.LogPath(cfg)
	if cfg.Log.File == "" {
		logPath = filepath.Join(flagDataDir, "poupa.log")
	}
	log, closer, err := logging.Open(logPath, cfg.Log.Level)
	if err != nil {
		// Logging is best effort; the TUI owns stdout.
		log = logging.Discard()
	} else {
		rt.closers = append(rt.closers, closer)
	}
	rt.log = log

	kv, err := store.Open(filepath.Join(flagDataDir, "poupa.db"))
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	rt.kv = kv
	rt.closers = append(rt.closers, kv)
	rt.prefs = store.NewPrefs(kv, logging.For(log, logging.ComponentStore))
	rt.client = rt.newClient(cfg.API.BaseURL)

	log.Debug("runtime ready", "base_url", cfg.API.BaseURL, "data_dir", flagDataDir)
	return rt, nil
}

func (rt *runtime) newClient(baseURL string) *api.Client {
	opts := []api.Option{
		api.WithLogger(rt.log),
		api.WithUnauthorizedHandler(tui.UnauthorizedHandler(rt.nav)),
	}
	if rt.cfg.API.TimeoutSec > 0 {
		opts = append(opts, api.WithTimeout(time.Duration(rt.cfg.API.TimeoutSec)*time.Second))
	}
	return api.NewClient(baseURL, rt.prefs, opts...)
}

// Close releases the store and the log file.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i].Close()
	}
}

// requireLogin fails fast when no session is stored.
func (rt *runtime) requireLogin() error {
	if !rt.prefs.HasToken() {
		return errNotLoggedIn
	}
	return nil
}

var errNotLoggedIn = errors.New("not logged in (run `poupa login`)")

// cmdContext scopes a single CLI request. Deadlines come only from the
// client's configured timeout.
func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

// progress prints to stderr unless --quiet.
func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}

// errorLine turns err into the same text the TUI would show.
func errorLine(err error) string {
	switch api.Classify(err) {
	case api.KindAuth, api.KindServer, api.KindNetwork, api.KindMalformed:
		return api.UserMessage(err)
	}
	return err.Error()
}
