package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"placement-service/internal/models"
)

// GeminiAdvisor asks a Gemini model for the placement analysis.
type GeminiAdvisor struct {
	client *genai.Client
	model  string
}

// NewGeminiAdvisor creates the Gemini-backed advisor.
func NewGeminiAdvisor(ctx context.Context, apiKey, model string) (*GeminiAdvisor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini advisor: missing api key")
	}
	if model == "" {
		model = "gemini-2.5-pro"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini advisor: %w", err)
	}
	return &GeminiAdvisor{client: client, model: model}, nil
}

// Analyze sends the enriched history to the model and parses the report.
// Any failure surfaces as ErrAdvisorUnavailable so the caller falls back.
func (a *GeminiAdvisor) Analyze(ctx context.Context, history []models.AnsweredRecord) (*models.PlacementReport, error) {
	prompt := buildAnalysisPrompt(history)

	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}

	var report models.PlacementReport
	if err := json.Unmarshal([]byte(cleanJSONBlock(text)), &report); err != nil {
		return nil, fmt.Errorf("%w: bad response json: %v", ErrAdvisorUnavailable, err)
	}
	return &report, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates returned")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
