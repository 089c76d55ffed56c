// Package google provides the Gemini provider
package google

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"habitline/pkg/llm"
)

// Provider implements llm.Provider on the Gemini API
type Provider struct {
	client *genai.Client
	model  string
	budget int
}

// New creates a Gemini provider. budget bounds prompt tokens.
func New(ctx context.Context, apiKey, model string, budget int) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{client: client, model: model, budget: budget}, nil
}

func (p *Provider) Name() string { return "google" }

// Generate returns one generated response for the prompt
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		genai.Text(llm.ClipPrompt(prompt, p.budget)), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}
