package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/poupa/internal/cli"
	"github.com/theirongolddev/poupa/internal/gamify"
	"github.com/theirongolddev/poupa/internal/xp"

	"github.com/spf13/cobra"
)

var xpCmd = &cobra.Command{
	Use:   "xp",
	Short: "Show level and XP, claiming today's login award",
	RunE:  runXP,
}

var xpRecalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Ask the server to recompute your level",
	RunE:  runXPRecalc,
}

func init() {
	xpCmd.AddCommand(xpRecalcCmd)
	rootCmd.AddCommand(xpCmd)
}

// mountReconciler runs the same fetch-then-grant sequence a page mount does.
func mountReconciler(rt *runtime) (*gamify.Reconciler, *xp.Queue, error) {
	queue := &xp.Queue{}
	rec := gamify.NewReconciler(rt.client, rt.prefs,
		gamify.WithQueue(queue),
		gamify.WithLogger(rt.log),
	)
	ctx, cancel := cmdContext()
	defer cancel()
	if err := rec.Mount(ctx); err != nil {
		return nil, nil, err
	}
	return rec, queue, nil
}

func runXP(_ *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.requireLogin(); err != nil {
		return err
	}

	rec, queue, err := mountReconciler(rt)
	if err != nil {
		return err
	}
	printXP(rec.Snapshot().State, queue)
	return nil
}

func runXPRecalc(_ *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.requireLogin(); err != nil {
		return err
	}

	rec, queue, err := mountReconciler(rt)
	if err != nil {
		return err
	}
	ctx, cancel := cmdContext()
	defer cancel()
	progress("Recalculating level...")
	if err := rec.Recalculate(ctx); err != nil {
		return err
	}
	printXP(rec.Snapshot().State, queue)
	return nil
}

func printXP(s xp.State, queue *xp.Queue) {
	frac, err := xp.ProgressFraction(s)
	if err != nil {
		frac = 0
	}

	fmt.Println()
	fmt.Printf("  %s  %s %s\n",
		cli.XP(cli.FormatLevel(s.Level)),
		cli.RenderProgressBar(frac, 30),
		xp.FormatProgress(s))
	if s.LastXPGrant != nil {
		fmt.Printf("  %s\n", cli.Muted("Last daily award: "+cli.FormatDate(s.LastXPGrant.String())))
	}
	for _, n := range queue.Active(time.Now()) {
		fmt.Printf("  %s %s\n", cli.XP("★"), n.Message)
	}
	fmt.Println()
}
