package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/transaction"
)

// summaryRemote fetches what the summary is computed from.
type summaryRemote interface {
	ListTransactions(ctx context.Context, f transaction.Filter) ([]transaction.Transaction, error)
	Balance(ctx context.Context) (aggregate.Summary, error)
}

type summaryCommand struct {
	remote func() summaryRemote
}

// categoryTotal is one row of the category breakdown.
type categoryTotal struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

// monthTotal is one row of the monthly series.
type monthTotal struct {
	Month   string `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
}

// summaryData is the shared result of the summary command, for both outputs.
type summaryData struct {
	Balance    aggregate.Summary `json:"balance"`
	Categories []categoryTotal   `json:"categories"`
	Months     []monthTotal      `json:"months"`
	Mismatch   string            `json:"mismatch,omitempty"`
}

func newSummaryCmd(remote func() summaryRemote) *cobra.Command {
	c := summaryCommand{remote: remote}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the balance, category totals and monthly series",
		Long: `Fetch the transactions and the server balance in parallel, then print ` +
			`the balance, the total per category and income and expenses per month.`,
		RunE: c.run,
	}
	cmd.Flags().String("month", "", "only show this month in the series (YYYY-MM)")
	addOutputFlag(cmd)
	return cmd
}

func (c *summaryCommand) run(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	var opts []aggregate.Option
	if m, _ := cmd.Flags().GetString("month"); m != "" {
		k, err := aggregate.ParseMonthKey(m)
		if err != nil {
			return err
		}
		opts = append(opts, aggregate.WithMonth(k))
	}

	// Parallel fetch of the list and the remote balance
	var (
		ts      []transaction.Transaction
		balance aggregate.Summary
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		ts, err = c.remote().ListTransactions(ctx, transaction.Filter{})
		if err != nil {
			return fmt.Errorf("failed to fetch transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		balance, err = c.remote().Balance(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch balance: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	data := buildSummaryData(ts, balance, aggregate.ParseOrder(monthOrder), currentCurrency(), aggregate.ParseLocale(locale), opts...)
	if data.Mismatch != "" {
		log.Warn("balance does not match the transaction list", "mismatch", data.Mismatch)
	}

	switch format {
	case jsonOutputFormat:
		return outputJSON(cmd.OutOrStdout(), data)
	case tableOutputFormat:
		return outputSummaryTables(cmd.OutOrStdout(), data)
	default:
		return errors.New("unsupported output format")
	}
}

// buildSummaryData aggregates ts and reconciles the local balance with the
// remote one.
func buildSummaryData(
	ts []transaction.Transaction,
	remote aggregate.Summary,
	order aggregate.Order,
	currency string,
	locale language.Tag,
	opts ...aggregate.Option,
) summaryData {
	result := aggregate.Aggregate(ts, opts...)

	data := summaryData{
		Balance:    remote,
		Categories: make([]categoryTotal, 0, result.Categories.Len()),
		Months:     make([]monthTotal, 0, len(result.Series)),
	}

	for category, total := range result.Categories.All() {
		data.Categories = append(data.Categories, categoryTotal{
			Category: category,
			Total:    aggregate.Display(total, currency),
		})
	}

	for _, b := range result.Series.Ordered(order) {
		data.Months = append(data.Months, monthTotal{
			Month:   b.Month.Label(locale),
			Income:  aggregate.Display(b.Income, currency),
			Expense: aggregate.Display(b.Expense, currency),
			Net:     aggregate.Display(b.Net(), currency),
		})
	}

	if err := aggregate.Reconcile(aggregate.Summarize(ts), remote); err != nil {
		data.Mismatch = err.Error()
	}

	return data
}

func outputSummaryTables(w io.Writer, data summaryData) error {
	currency := currentCurrency()

	balance := createStyledTable("INCOME", "EXPENSES", "BALANCE")
	balance.Row(
		aggregate.Display(data.Balance.TotalIncome, currency),
		aggregate.Display(data.Balance.TotalExpense, currency),
		aggregate.Display(data.Balance.Balance, currency),
	)
	fmt.Fprintln(w, balance)

	categories := createStyledTable("CATEGORY", "TOTAL")
	for _, c := range data.Categories {
		categories.Row(c.Category, c.Total)
	}
	fmt.Fprintln(w, categories)

	months := createStyledTable("MONTH", "INCOME", "EXPENSE", "NET")
	for _, m := range data.Months {
		months.Row(m.Month, m.Income, m.Expense, m.Net)
	}
	fmt.Fprintln(w, months)

	if data.Mismatch != "" {
		fmt.Fprintf(w, "Warning: %s\n", data.Mismatch)
	}

	return nil
}
