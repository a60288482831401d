package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/cli"
	"github.com/theirongolddev/poupa/internal/finance"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagTxType     string
	flagTxCategory int
	flagTxPeriod   string
	flagTxLimit    int

	flagTxDesc   string
	flagTxAmount string
	flagTxDate   string
	flagTxYes    bool
)

var txCmd = &cobra.Command{
	Use:     "tx",
	Aliases: []string{"transactions"},
	Short:   "List and manage transactions",
	RunE:    runTxList,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	RunE:  runTxList,
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction (prompts for missing fields)",
	RunE:  runTxAdd,
}

var txEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxEdit,
}

var txRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a transaction",
	Args:    cobra.ExactArgs(1),
	RunE:    runTxRm,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List transaction categories",
	RunE:  runCategories,
}

func init() {
	for _, c := range []*cobra.Command{txCmd, txListCmd} {
		c.Flags().StringVarP(&flagTxType, "type", "t", "", "Only income or expense")
		c.Flags().IntVarP(&flagTxCategory, "category", "c", 0, "Only this category id")
		c.Flags().StringVarP(&flagTxPeriod, "period", "p", api.PeriodAll, "all, month or week")
		c.Flags().IntVarP(&flagTxLimit, "limit", "n", 0, "Show at most n rows")
	}
	for _, c := range []*cobra.Command{txAddCmd, txEditCmd} {
		c.Flags().StringVar(&flagTxDesc, "desc", "", "Description")
		c.Flags().StringVar(&flagTxAmount, "amount", "", "Amount, e.g. 45,90")
		c.Flags().StringVarP(&flagTxType, "type", "t", "", "income or expense")
		c.Flags().IntVarP(&flagTxCategory, "category", "c", 0, "Category id")
		c.Flags().StringVar(&flagTxDate, "date", "", "Date (DD/MM/YYYY, default today)")
	}
	txRmCmd.Flags().BoolVarP(&flagTxYes, "yes", "y", false, "Skip the confirmation")
	categoriesCmd.Flags().StringVarP(&flagTxType, "type", "t", "", "Only income or expense")

	txCmd.AddCommand(txListCmd, txAddCmd, txEditCmd, txRmCmd)
	rootCmd.AddCommand(txCmd, categoriesCmd)
}

func runTxList(_ *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.requireLogin(); err != nil {
		return err
	}

	q, err := finance.Filter{Type: flagTxType, CategoryID: flagTxCategory, Period: flagTxPeriod}.Query(time.Now())
	if err != nil {
		return err
	}
	q.Limit = flagTxLimit

	ctx, cancel := cmdContext()
	defer cancel()
	cats, err := rt.client.Categories(ctx)
	if err != nil {
		return err
	}
	txs, err := rt.client.Transactions(ctx, q)
	if err != nil {
		return err
	}

	if len(txs) == 0 {
		fmt.Println("\n  No transactions found.")
		return nil
	}

	idx := finance.IndexCategories(cats)
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			strconv.Itoa(tx.ID),
			cli.FormatDate(tx.Date),
			tx.Description,
			idx.Name(tx),
			cli.Amount(tx.Amount, tx.Type),
		})
	}
	income, expenses := finance.Totals(txs)

	fmt.Println()
	fmt.Println(cli.RenderTitle("TRANSACTIONS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"ID", "Date", "Description", "Category", "Amount"},
		Rows:     rows,
		LeftCols: 4,
		MaxWidth: 32,
	}))
	fmt.Printf("\n  %d shown   %s   %s   balance %s\n", len(txs),
		cli.Income("+"+cli.FormatBRL(income)),
		cli.Expense("-"+cli.FormatBRL(expenses)),
		cli.FormatBRL(income-expenses))
	return nil
}

// promptTransaction fills the fields of f that are still empty. Categories
// offered depend on the chosen type.
func promptTransaction(f *finance.TransactionForm, cats []api.Category) error {
	amount := ""
	if f.Amount > 0 {
		amount = strings.ReplaceAll(fmt.Sprintf("%.2f", f.Amount), ".", ",")
	}
	date := cli.FormatDate(f.Date)
	if f.Type == "" {
		f.Type = api.TypeExpense
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Type").
				Options(huh.NewOption("Expense", api.TypeExpense), huh.NewOption("Income", api.TypeIncome)).
				Value(&f.Type),
		),
		huh.NewGroup(
			huh.NewInput().Title("Description").Value(&f.Description),
			huh.NewInput().Title("Amount (R$)").Placeholder("45,90").
				Validate(func(s string) error {
					_, err := finance.ParseAmount(s)
					return err
				}).
				Value(&amount),
			huh.NewSelect[int]().Title("Category").
				OptionsFunc(func() []huh.Option[int] {
					var opts []huh.Option[int]
					for _, c := range finance.CategoriesOfType(cats, f.Type) {
						opts = append(opts, huh.NewOption(c.Name, c.ID))
					}
					return opts
				}, &f.Type).
				Value(&f.CategoryID),
			huh.NewInput().Title("Date").Placeholder("DD/MM/YYYY").Value(&date),
		),
	).Run()
	if err != nil {
		return err
	}

	if f.Amount, err = finance.ParseAmount(amount); err != nil {
		return err
	}
	if strings.TrimSpace(date) != "" {
		if f.Date, err = cli.ParseDate(date); err != nil {
			return err
		}
	}
	return nil
}

// formFromFlags overlays the changed flags onto f. It reports whether every
// required field is now set.
func formFromFlags(cmd *cobra.Command, f *finance.TransactionForm) (bool, error) {
	fl := cmd.Flags()
	if fl.Changed("desc") {
		f.Description = flagTxDesc
	}
	if fl.Changed("amount") {
		v, err := finance.ParseAmount(flagTxAmount)
		if err != nil {
			return false, err
		}
		f.Amount = v
	}
	if fl.Changed("type") {
		f.Type = flagTxType
	}
	if fl.Changed("category") {
		f.CategoryID = flagTxCategory
	}
	if fl.Changed("date") {
		d, err := cli.ParseDate(flagTxDate)
		if err != nil {
			return false, err
		}
		f.Date = d
	}
	return f.Validate() == nil, nil
}

func runTxAdd(cmd *cobra.Command, _ []string) error {
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

	f := finance.TransactionForm{Date: time.Now().Format("2006-01-02")}
	complete, err := formFromFlags(cmd, &f)
	if err != nil {
		return err
	}
	if !complete {
		cats, err := rt.client.Categories(ctx)
		if err != nil {
			return err
		}
		if err := promptTransaction(&f, cats); err != nil {
			return err
		}
	}
	if err := f.Validate(); err != nil {
		return err
	}

	tx, err := rt.client.CreateTransaction(ctx, f.Input())
	if err != nil {
		return err
	}
	fmt.Printf("  Recorded #%d  %s  %s\n", tx.ID, tx.Description, cli.Amount(tx.Amount, tx.Type))
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q", s)
	}
	return id, nil
}

func runTxEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
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

	current, err := rt.client.Transaction(ctx, id)
	if err != nil {
		return err
	}
	f := finance.FormFromTransaction(*current)

	anyFlag := false
	for _, name := range []string{"desc", "amount", "type", "category", "date"} {
		anyFlag = anyFlag || cmd.Flags().Changed(name)
	}
	if _, err := formFromFlags(cmd, &f); err != nil {
		return err
	}
	if !anyFlag {
		cats, err := rt.client.Categories(ctx)
		if err != nil {
			return err
		}
		if err := promptTransaction(&f, cats); err != nil {
			return err
		}
	}
	if err := f.Validate(); err != nil {
		return err
	}

	tx, err := rt.client.UpdateTransaction(ctx, id, f.Update())
	if err != nil {
		return err
	}
	fmt.Printf("  Updated #%d  %s  %s\n", tx.ID, tx.Description, cli.Amount(tx.Amount, tx.Type))
	return nil
}

func runTxRm(_ *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
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

	if !flagTxYes {
		tx, err := rt.client.Transaction(ctx, id)
		if err != nil {
			return err
		}
		ok := false
		err = huh.NewConfirm().
			Title(fmt.Sprintf("Delete #%d?", id)).
			Description(fmt.Sprintf("%s  %s  %s", cli.FormatDate(tx.Date), tx.Description,
				cli.FormatSignedBRL(tx.Amount, tx.Type))).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&ok).
			Run()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("  Cancelled.")
			return nil
		}
	}

	msg, err := rt.client.DeleteTransaction(ctx, id)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("Deleted #%d.", id)
	}
	fmt.Printf("  %s\n", msg)
	return nil
}

func runCategories(_ *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.requireLogin(); err != nil {
		return err
	}
	if flagTxType != "" && !api.ValidType(flagTxType) {
		return errors.New("--type must be income or expense")
	}

	ctx, cancel := cmdContext()
	defer cancel()
	cats, err := rt.client.Categories(ctx)
	if err != nil {
		return err
	}
	if flagTxType != "" {
		cats = finance.CategoriesOfType(cats, flagTxType)
	}

	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{strconv.Itoa(c.ID), c.Name, c.Type, c.Description})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Categories",
		Headers:  []string{"ID", "Name", "Type", "Description"},
		Rows:     rows,
		LeftCols: 4,
		MaxWidth: 40,
	}))
	return nil
}
