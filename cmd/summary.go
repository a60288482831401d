package cmd

import (
	"fmt"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/cli"
	"github.com/theirongolddev/poupa/internal/finance"

	"github.com/spf13/cobra"
)

var flagSummaryPeriod string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Income, expenses and balance with a category breakdown",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&flagSummaryPeriod, "period", "p", api.PeriodMonth, "all, month or week")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	if !api.ValidPeriod(flagSummaryPeriod) {
		return fmt.Errorf("--period must be all, month or week, got %q", flagSummaryPeriod)
	}
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
	s, err := rt.client.Summary(ctx, flagSummaryPeriod)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SUMMARY  %s", periodLabel(flagSummaryPeriod))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"", "Amount"},
		Rows: [][]string{
			{"Income", cli.Income(cli.FormatBRL(s.Income))},
			{"Expenses", cli.Expense(cli.FormatBRL(s.Expenses))},
			{"---"},
			{"Balance", cli.FormatBRL(s.Balance)},
		},
	}))

	printBreakdown("Expenses by category", s.ExpenseByCategory)
	printBreakdown("Income by category", s.IncomeByCategory)
	return nil
}

func printBreakdown(title string, byCategory map[string]float64) {
	shares := finance.Breakdown(byCategory)
	if len(shares) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("  %s\n", cli.Muted(title))
	top := shares[0].Amount
	for _, sh := range shares {
		fmt.Printf("%s  %s\n", cli.RenderHorizontalBar(sh.Name, sh.Amount, top, 30), cli.Muted(cli.FormatPercent(sh.Pct)))
	}
}

func periodLabel(p string) string {
	switch p {
	case api.PeriodWeek:
		return "last 7 days"
	case api.PeriodMonth:
		return "this month"
	default:
		return "all time"
	}
}
