package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/charmbracelet/log"

	"github.com/Rshep3087/expensemon/transaction"
)

// AnthropicProvider implements AIProvider for Anthropic's Claude API.
type AnthropicProvider struct {
	client *anthropic.Client
}

// NewAnthropicProvider creates a new Anthropic AI provider.
func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client: &client,
	}
}

// RecommendCategory implements AIProvider interface.
func (p *AnthropicProvider) RecommendCategory(
	ctx context.Context,
	t transaction.Transaction,
	categories []string,
) (*CategoryRecommendation, error) {
	prompt := buildPrompt(t, categories)

	log.Debug("sending categorization request to Anthropic", "transaction_id", t.ID)

	response, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     "claude-3-haiku-20240307",
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		log.Error("failed to call Anthropic API", "error", err)
		return nil, fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	var responseText string
	if len(response.Content) > 0 {
		responseText = response.Content[0].Text
	}

	if responseText == "" {
		return nil, errors.New("empty response from Anthropic API")
	}

	recommendation, err := parseResponse(responseText, categories)
	if err != nil {
		log.Error("failed to parse Anthropic response", "error", err, "response", responseText)
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	log.Debug("received categorization recommendation",
		"category", recommendation.Category,
		"confidence", recommendation.Confidence)
	return recommendation, nil
}

func buildPrompt(t transaction.Transaction, categories []string) string {
	return fmt.Sprintf(`You are a personal finance categorization expert.
Please analyze the following transaction and recommend the most appropriate category from the available options.

%s

%s

Please respond with ONLY a JSON object in this exact format:
{
  "category": "<one of the available category names, spelled exactly>",
  "confidence": <number between 0-100>,
  "reasoning": "<brief explanation>"
}

Guidelines:
- Choose the category that best matches the transaction based on the amount, type and notes
- Confidence should reflect how certain you are (100 = very certain, 50 = moderate, 0 = just guessing)
- Keep reasoning brief (1-2 sentences max)
- If no category seems appropriate, choose the closest match and set confidence low`,
		formatTransactionForAI(t), formatCategoriesForAI(categories))
}

// parseResponse extracts the JSON object from the reply. The category must
// be one of categories, compared exactly.
func parseResponse(response string, categories []string) (*CategoryRecommendation, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON found in response: %s", response)
	}

	var result CategoryRecommendation
	if err := json.Unmarshal([]byte(response[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if !slices.Contains(categories, result.Category) {
		return nil, fmt.Errorf("recommended category %q not found in available categories", result.Category)
	}

	result.Confidence = min(max(result.Confidence, 0), maxConfidenceScore)

	return &result, nil
}
