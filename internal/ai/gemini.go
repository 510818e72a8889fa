package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/quickai/quickai/internal/models"
)

// GeminiClient generates text through the Gemini API. It is stateless apart
// from the underlying SDK client and credentials.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// GenerateText runs a single completion. systemPrompt may be empty; maxTokens
// bounds the output budget. No retries: upstream failures propagate with the
// provider message attached.
func (c *GeminiClient) GenerateText(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float32) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(temperature)
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", models.WrapError(models.KindUpstream, err.Error(), err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", models.NewError(models.KindUpstream, "AI returned an empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", models.NewError(models.KindUpstream, "AI returned an empty response")
	}
	return content, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}
