package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Rshep3087/expensemon/aggregate"
	"github.com/Rshep3087/expensemon/transaction"
)

// transactionsRemote is the part of the API client the transactions commands use.
type transactionsRemote interface {
	ListTransactions(ctx context.Context, f transaction.Filter) ([]transaction.Transaction, error)
	CreateTransaction(ctx context.Context, n transaction.New) (transaction.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, p transaction.Patch) (transaction.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

type transactionsCommand struct {
	remote func() transactionsRemote
}

// newTransactionsCmd creates the transactions command tree.
func newTransactionsCmd(remote func() transactionsRemote) *cobra.Command {
	c := transactionsCommand{remote: remote}

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"transaction", "tx"},
		Short:   "Transaction management commands",
		Long:    `Commands for listing, adding, editing and deleting transactions.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Long:  `List transactions matching the given filter, most recent first.`,
		RunE:  c.list,
	}
	listCmd.Flags().String("from", "", "first date to include (YYYY-MM-DD)")
	listCmd.Flags().String("to", "", "last date to include (YYYY-MM-DD)")
	listCmd.Flags().String("type", "", "income or expense")
	listCmd.Flags().String("category", "", "exact category name")
	listCmd.Flags().String("id", "", "transaction id")
	listCmd.Flags().String("month", "", "only this month (YYYY-MM), instead of --from and --to")
	listCmd.MarkFlagsMutuallyExclusive("month", "from")
	listCmd.MarkFlagsMutuallyExclusive("month", "to")
	addOutputFlag(listCmd)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new transaction",
		RunE:  c.add,
	}
	addCmd.Flags().String("amount", "", "amount, always positive (required)")
	addCmd.Flags().String("category", "", "category name (required)")
	addCmd.Flags().String("type", string(transaction.Expense), "income or expense")
	addCmd.Flags().String("date", transaction.Today().String(), "transaction date (YYYY-MM-DD, defaults to today)")
	addCmd.Flags().String("note", "", "optional note")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("category")

	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Long:  `Change the given fields of a transaction. Fields without a flag are left as they are.`,
		Args:  cobra.ExactArgs(1),
		RunE:  c.edit,
	}
	editCmd.Flags().String("amount", "", "new amount")
	editCmd.Flags().String("category", "", "new category")
	editCmd.Flags().String("type", "", "new type: income or expense")
	editCmd.Flags().String("date", "", "new date (YYYY-MM-DD)")
	editCmd.Flags().String("note", "", "new note")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE:  c.delete,
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd)
	return cmd
}

func (c *transactionsCommand) list(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var f transaction.Filter
	f.StartDate, _ = flags.GetString("from")
	f.EndDate, _ = flags.GetString("to")
	f.Type, _ = flags.GetString("type")
	f.Category, _ = flags.GetString("category")
	f.ID, _ = flags.GetString("id")

	if month, _ := flags.GetString("month"); month != "" {
		k, err := aggregate.ParseMonthKey(month)
		if err != nil {
			return err
		}
		f.StartDate = k.StartDate().String()
		f.EndDate = k.EndDate().String()
	}

	if err := f.Validate(); err != nil {
		return err
	}

	ts, err := c.remote().ListTransactions(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	sortByDateDesc(ts)

	switch format {
	case jsonOutputFormat:
		return outputJSON(cmd.OutOrStdout(), ts)
	case tableOutputFormat:
		fmt.Fprintln(cmd.OutOrStdout(), transactionsTable(ts, currentCurrency()))
		return nil
	default:
		return errors.New("unsupported output format")
	}
}

func transactionsTable(ts []transaction.Transaction, currency string) fmt.Stringer {
	t := createStyledTable("ID", "DATE", "TYPE", "CATEGORY", "AMOUNT", "NOTE")

	for _, tx := range ts {
		note := tx.Note
		if note == "" {
			note = "-"
		}
		t.Row(
			tx.ID,
			tx.Date.String(),
			titleCaser.String(string(tx.Type)),
			tx.Category,
			aggregate.Display(tx.Amount, currency),
			note,
		)
	}

	return t
}

func (c *transactionsCommand) add(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	var in transaction.Input
	in.Amount, _ = flags.GetString("amount")
	in.Category, _ = flags.GetString("category")
	in.Type, _ = flags.GetString("type")
	in.Date, _ = flags.GetString("date")
	in.Note, _ = flags.GetString("note")

	n, err := in.Validate()
	if err != nil {
		return err
	}

	log.Debug("creating transaction", "transaction", n)

	created, err := c.remote().CreateTransaction(cmd.Context(), n)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Transaction %s created\n", created.ID)
	return nil
}

func (c *transactionsCommand) edit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	changed := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	p, err := transaction.PatchInput{
		Amount:   changed("amount"),
		Category: changed("category"),
		Type:     changed("type"),
		Date:     changed("date"),
		Note:     changed("note"),
	}.Validate()
	if err != nil {
		return err
	}

	updated, err := c.remote().UpdateTransaction(cmd.Context(), args[0], p)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Transaction %s updated\n", updated.ID)
	return nil
}

func (c *transactionsCommand) delete(cmd *cobra.Command, args []string) error {
	id := args[0]

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete transaction %s?", id)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("failed to confirm: %w", err)
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
	}

	if err := c.remote().DeleteTransaction(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Transaction %s deleted\n", id)
	return nil
}
