package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/poupa/internal/cli"
	"github.com/theirongolddev/poupa/internal/daemon"
	"github.com/theirongolddev/poupa/internal/gamify"

	"github.com/spf13/cobra"
)

var (
	flagWatchInterval time.Duration
	flagWatchAddr     string
	flagWatchServe    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow XP changes and optionally serve them over local HTTP",
	Long: "Polls /user/xp and prints every level or XP change. With --serve the\n" +
		"same feed is exposed at /v1/status, /v1/events and /v1/stream (SSE).",
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVarP(&flagWatchInterval, "interval", "i", 15*time.Second, "Poll interval")
	watchCmd.Flags().BoolVar(&flagWatchServe, "serve", false, "Serve the feed over HTTP")
	watchCmd.Flags().StringVar(&flagWatchAddr, "addr", daemon.DefaultAddr, "Listen address for --serve")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.requireLogin(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := gamify.NewStore(100)
	events, cancel := store.Subscribe()
	defer cancel()

	errCh := make(chan error, 1)
	serve := flagWatchServe || cmd.Flags().Changed("addr")
	if serve {
		svc := daemon.New(daemon.Config{
			Addr:     flagWatchAddr,
			Interval: flagWatchInterval,
			BaseURL:  rt.client.BaseURL(),
		}, rt.client, store, rt.log)
		go func() { errCh <- svc.Run(ctx) }()
		progress("Serving XP feed on http://%s", flagWatchAddr)
	} else {
		poller := gamify.NewPoller(rt.client, store, flagWatchInterval, rt.log)
		go func() { errCh <- poller.Run(ctx) }()
	}
	progress("Watching XP every %s (Ctrl+C to stop)", flagWatchInterval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case ev := <-events:
			printEvent(ev)
		}
	}
}

func printEvent(ev gamify.Event) {
	ts := cli.Muted(ev.Timestamp.Format("15:04:05"))
	line := cli.FormatXPLine(ev.State)
	if ev.Type == gamify.EventSnapshot {
		fmt.Printf("  %s  %s\n", ts, line)
		return
	}
	extra := cli.XP(cli.FormatXPDelta(ev.Delta.XP))
	if ev.Delta.Level > 0 {
		extra += "  " + cli.XP(fmt.Sprintf("level up! %s", cli.FormatLevel(ev.State.Level)))
	} else if ev.Delta.Level < 0 {
		extra += "  " + cli.Muted(fmt.Sprintf("level down to %s", cli.FormatLevel(ev.State.Level)))
	}
	fmt.Printf("  %s  %s  %s\n", ts, line, extra)
}
