package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Rshep3087/expensemon/transaction"
)

// AIProvider recommends a category for a transaction.
type AIProvider interface {
	// RecommendCategory picks one of categories for t, with a confidence
	// score between 0 and 100.
	RecommendCategory(
		ctx context.Context,
		t transaction.Transaction,
		categories []string,
	) (*CategoryRecommendation, error)
}

// CategoryRecommendation represents an AI recommendation for a transaction category.
type CategoryRecommendation struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"` // 0-100 confidence score
	Reasoning  string  `json:"reasoning"`
}

// AIRecommendationMsg is sent when AI recommendation is completed.
type AIRecommendationMsg struct {
	Recommendation *CategoryRecommendation
	Error          error
	TransactionID  string
}

// AIRecommendationLoadingMsg indicates AI recommendation is in progress.
type AIRecommendationLoadingMsg struct {
	TransactionID string
}

// AIRecommender manages AI-powered category recommendations.
type AIRecommender struct {
	provider AIProvider
	enabled  bool
}

// NewAIRecommender creates a new AI recommender with the given provider.
func NewAIRecommender(provider AIProvider) *AIRecommender {
	return &AIRecommender{
		provider: provider,
		enabled:  provider != nil,
	}
}

// IsEnabled returns true if AI recommendations are available.
func (r *AIRecommender) IsEnabled() bool {
	return r != nil && r.enabled
}

// RecommendCategory creates a tea.Cmd to get AI recommendation for a transaction.
func (r *AIRecommender) RecommendCategory(t transaction.Transaction, categories []string) tea.Cmd {
	if !r.IsEnabled() {
		log.Debug("AIRecommender.RecommendCategory: not enabled")
		return nil
	}

	return func() tea.Msg {
		log.Debug("AIRecommender recommendation command executing", "transaction_id", t.ID)

		ctx, cancel := context.WithTimeout(context.Background(), aiRecommendationTimeout)
		defer cancel()

		recommendation, err := r.provider.RecommendCategory(ctx, t, categories)
		if err != nil {
			log.Error("AIRecommender recommendation failed", "error", err, "transaction_id", t.ID)
		} else {
			log.Debug("AIRecommender recommendation succeeded",
				"transaction_id", t.ID,
				"category", recommendation.Category,
				"confidence", recommendation.Confidence)
		}

		return AIRecommendationMsg{
			Recommendation: recommendation,
			Error:          err,
			TransactionID:  t.ID,
		}
	}
}

// RecommendCategoryCmd asks the recommender about t using every category known to the TUI.
func (m model) RecommendCategoryCmd(t transaction.Transaction) tea.Cmd {
	if !m.aiRecommender.IsEnabled() {
		log.Debug("AI recommender is disabled, skipping recommendation")
		return m.transactions.NewStatusMessage(
			m.styles.mutedStyle.Render("Set anthropic_api_key to enable category suggestions"),
		)
	}

	categories := knownCategories(m.categories, m.snapshot)
	if len(categories) == 0 {
		return m.transactions.NewStatusMessage(m.styles.warningStyle.Render("No categories to choose from"))
	}

	loadingCmd := func() tea.Msg {
		return AIRecommendationLoadingMsg{TransactionID: t.ID}
	}

	return tea.Batch(loadingCmd, m.aiRecommender.RecommendCategory(t, categories))
}

func (m model) handleAIRecommendationLoading(msg AIRecommendationLoadingMsg) (tea.Model, tea.Cmd) {
	return m, m.transactions.NewStatusMessage(
		m.styles.mutedStyle.Render(fmt.Sprintf("Asking for a category for %s...", msg.TransactionID)),
	)
}

func (m model) handleAIRecommendation(msg AIRecommendationMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		return m, m.transactions.NewStatusMessage(
			m.styles.errorStyle.Render(fmt.Sprintf("Suggestion failed: %s", msg.Error)),
		)
	}

	r := msg.Recommendation
	return m, m.transactions.NewStatusMessage(
		fmt.Sprintf("%s: %s (%.0f%%) %s", msg.TransactionID, r.Category, r.Confidence, r.Reasoning),
	)
}

// knownCategories merges the remote category list with the categories in use, sorted.
func knownCategories(remote []string, ts []transaction.Transaction) []string {
	categories := slices.Clone(remote)
	for _, t := range ts {
		categories = append(categories, t.Category)
	}
	categories = slices.DeleteFunc(categories, func(c string) bool { return c == "" })
	slices.Sort(categories)
	return slices.Compact(categories)
}

// formatTransactionForAI formats transaction data for AI analysis.
func formatTransactionForAI(t transaction.Transaction) string {
	return fmt.Sprintf(`Transaction Details:
- Type: %s
- Amount: %s
- Date: %s
- Current category: %s
- Notes: %s`,
		t.Type,
		t.Amount.StringFixed(2),
		t.Date,
		t.Category,
		t.Note,
	)
}

// formatCategoriesForAI formats available categories for AI analysis.
func formatCategoriesForAI(categories []string) string {
	var sb strings.Builder
	sb.WriteString("Available Categories:\n")
	for _, c := range categories {
		fmt.Fprintf(&sb, "- %s\n", c)
	}
	return sb.String()
}
