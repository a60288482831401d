package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/cli"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var challengesCmd = &cobra.Command{
	Use:   "challenges",
	Short: "List open challenges",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runBoard(true, false, false)
	},
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List earned and pending achievements",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runBoard(false, true, false)
	},
}

var rankingsCmd = &cobra.Command{
	Use:     "rankings",
	Aliases: []string{"leaderboard"},
	Short:   "Show the XP leaderboard",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runBoard(false, false, true)
	},
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Challenges, achievements and rankings in one view",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runBoard(true, true, true)
	},
}

func init() {
	rootCmd.AddCommand(challengesCmd, achievementsCmd, rankingsCmd, boardCmd)
}

// boardData holds the three lists and the error of each fetch. A failed
// section does not hide the others.
type boardData struct {
	challenges   []api.Challenge
	achievements []api.Achievement
	rankings     []api.RankingUser

	challengesErr, achievementsErr, rankingsErr error
}

func fetchBoard(ctx context.Context, c *api.Client, wantC, wantA, wantR bool) boardData {
	var d boardData
	// Goroutines write disjoint fields and always return nil.
	var g errgroup.Group
	if wantC {
		g.Go(func() error {
			d.challenges, d.challengesErr = c.Challenges(ctx)
			return nil
		})
	}
	if wantA {
		g.Go(func() error {
			d.achievements, d.achievementsErr = c.Achievements(ctx)
			return nil
		})
	}
	if wantR {
		g.Go(func() error {
			d.rankings, d.rankingsErr = c.Rankings(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return d
}

func runBoard(wantC, wantA, wantR bool) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.requireLogin(); err != nil {
		return err
	}

	ctx, cancel := cmdContext()
	defer cancel()
	d := fetchBoard(ctx, rt.client, wantC, wantA, wantR)

	var failed []error
	section := func(enabled bool, err error, render func()) {
		if !enabled {
			return
		}
		if err != nil {
			failed = append(failed, err)
			return
		}
		render()
	}
	section(wantC, d.challengesErr, func() { printChallenges(d.challenges) })
	section(wantA, d.achievementsErr, func() { printAchievements(d.achievements) })
	section(wantR, d.rankingsErr, func() { printRankings(d.rankings) })

	if len(failed) > 0 && !(wantC && wantA && wantR) {
		return failed[0]
	}
	for _, err := range failed {
		fmt.Printf("\n  %s %s\n", cli.Expense("✗"), errorLine(err))
	}
	return nil
}

func printChallenges(list []api.Challenge) {
	fmt.Println()
	if len(list) == 0 {
		fmt.Println("  No challenges right now.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, ch := range list {
		rows = append(rows, []string{
			ch.Title,
			challengeStatus(ch.Status),
			cli.RenderProgressBar(ch.Progress, 12) + " " + cli.FormatPercent(ch.Progress),
			cli.XP(fmt.Sprintf("+%d XP", ch.XPReward)),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Challenges",
		Headers:  []string{"Challenge", "Status", "Progress", "Reward"},
		Rows:     rows,
		LeftCols: 3,
		MaxWidth: 36,
	}))
}

func challengeStatus(s string) string {
	switch s {
	case "completed":
		return cli.Income("Completed")
	case "in_progress":
		return "In progress"
	case "not_started", "":
		return cli.Muted("Not started")
	default:
		return strings.ReplaceAll(s, "_", " ")
	}
}

func printAchievements(list []api.Achievement) {
	fmt.Println()
	if len(list) == 0 {
		fmt.Println("  No achievements yet.")
		return
	}
	var earned, open [][]string
	for _, a := range list {
		if a.Achieved() {
			earned = append(earned, []string{
				cli.Income("✓ ") + a.Title,
				cli.FormatDate(dateOnly(*a.AchievedAt)),
				cli.XP(fmt.Sprintf("+%d XP", a.XPReward)),
			})
			continue
		}
		prog := cli.Muted("locked")
		if a.Progress != nil {
			prog = cli.RenderProgressBar(*a.Progress, 12) + " " + cli.FormatPercent(*a.Progress)
		}
		open = append(open, []string{"  " + a.Title, prog, cli.Muted(fmt.Sprintf("+%d XP", a.XPReward))})
	}
	rows := earned
	if len(earned) > 0 && len(open) > 0 {
		rows = append(rows, []string{"---"})
	}
	rows = append(rows, open...)
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("Achievements  %d/%d", len(earned), len(list)),
		Headers:  []string{"Achievement", "Earned", "Reward"},
		Rows:     rows,
		LeftCols: 2,
		MaxWidth: 36,
	}))
}

func printRankings(list []api.RankingUser) {
	fmt.Println()
	if len(list) == 0 {
		fmt.Println("  The leaderboard is empty.")
		return
	}
	rows := make([][]string, 0, len(list))
	for i, u := range list {
		pos := i + 1
		if u.Position != nil {
			pos = *u.Position
		}
		name := u.Username
		if u.IsCurrentUser {
			name = cli.XP(name + " (you)")
		}
		rows = append(rows, []string{
			"#" + strconv.Itoa(pos),
			name,
			cli.FormatLevel(u.Level),
			cli.FormatNumber(int64(u.XP)) + " XP",
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Rankings",
		Headers:  []string{"#", "User", "Level", "XP"},
		Rows:     rows,
		LeftCols: 2,
	}))
}
