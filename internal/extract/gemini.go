package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient calls the Google Generative AI API.
type GeminiClient struct {
	client *genai.Client
	model  string

	Stats *LLMStats
}

func NewGeminiClient(ctx context.Context, apiKey, model string, stats *LLMStats) (*GeminiClient, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiClient{client: cl, model: model, Stats: stats}, nil
}

// Complete sends one prompt and returns the model's text response.
func (c *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.ResponseMIMEType = "application/json"
	if system != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	start := time.Now()
	resp, err := m.GenerateContent(ctx, genai.Text(user))
	if c.Stats != nil {
		c.Stats.Record(time.Since(start))
	}
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

func (c *GeminiClient) Model() string { return c.model }

// Close releases the underlying gRPC connection.
func (c *GeminiClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
