package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Rshep3087/expensemon/transaction"
)

// categoriesRemote defines the interface for fetching categories and the
// transactions that use them.
type categoriesRemote interface {
	Categories(ctx context.Context) ([]string, error)
	GetTransaction(ctx context.Context, id string) (transaction.Transaction, error)
}

// categoriesCommand encapsulates the dependencies for the categories commands.
type categoriesCommand struct {
	remote   func() categoriesRemote
	provider func() AIProvider
}

// newCategoriesCmd creates the categories command with the provided remote
// and an optional AI provider for suggestions.
func newCategoriesCmd(remote func() categoriesRemote, provider func() AIProvider) *cobra.Command {
	c := categoriesCommand{remote: remote, provider: provider}

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Category commands",
		Long:  `Commands for listing categories and suggesting one for a transaction.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Long:  `List every category known to the server, sorted by name.`,
		RunE:  c.list,
	}
	addOutputFlag(listCmd)

	suggestCmd := &cobra.Command{
		Use:   "suggest <id>",
		Short: "Suggest a category for a transaction",
		Long:  `Ask Anthropic which existing category fits a transaction best. Needs anthropic_api_key.`,
		Args:  cobra.ExactArgs(1),
		RunE:  c.suggest,
	}
	addOutputFlag(suggestCmd)

	cmd.AddCommand(listCmd, suggestCmd)
	return cmd
}

// list executes the categories list command.
func (c *categoriesCommand) list(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	categories, err := c.remote().Categories(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch categories: %w", err)
	}

	// Sort categories by name for consistent output
	categories = slices.Clone(categories)
	slices.Sort(categories)

	switch format {
	case jsonOutputFormat:
		return outputJSON(cmd.OutOrStdout(), categories)
	case tableOutputFormat:
		t := createStyledTable("NAME")
		for _, category := range categories {
			t.Row(category)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	default:
		return errors.New("unsupported output format")
	}
}

// suggest executes the categories suggest command.
func (c *categoriesCommand) suggest(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	provider := c.provider()
	if provider == nil {
		return errors.New("category suggestions need an Anthropic API key " +
			"(set via --anthropic-api-key, ANTHROPIC_API_KEY or anthropic_api_key in the config file)")
	}

	ctx := cmd.Context()

	t, err := c.remote().GetTransaction(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch transaction: %w", err)
	}

	categories, err := c.remote().Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch categories: %w", err)
	}
	categories = knownCategories(categories, []transaction.Transaction{t})

	ctx, cancel := context.WithTimeout(ctx, aiRecommendationTimeout)
	defer cancel()

	recommendation, err := provider.RecommendCategory(ctx, t, categories)
	if err != nil {
		return fmt.Errorf("failed to get suggestion: %w", err)
	}

	switch format {
	case jsonOutputFormat:
		return outputJSON(cmd.OutOrStdout(), recommendation)
	case tableOutputFormat:
		tbl := createStyledTable("ID", "CURRENT", "SUGGESTED", "CONFIDENCE", "REASONING")
		tbl.Row(
			t.ID,
			t.Category,
			recommendation.Category,
			fmt.Sprintf("%.0f%%", recommendation.Confidence),
			recommendation.Reasoning,
		)
		fmt.Fprintln(cmd.OutOrStdout(), tbl)
		return nil
	default:
		return errors.New("unsupported output format")
	}
}
