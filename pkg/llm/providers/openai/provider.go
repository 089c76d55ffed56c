// Package openai provides the OpenAI chat-completion provider
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"habitline/pkg/llm"
)

// Provider implements llm.Provider on the OpenAI chat completions API
type Provider struct {
	client *openai.Client
	model  string
	budget int
}

// New creates an OpenAI provider. budget bounds prompt tokens.
func New(apiKey, model string, budget int) *Provider {
	return &Provider{
		client: openai.NewClient(apiKey),
		model:  model,
		budget: budget,
	}
}

func (p *Provider) Name() string { return "openai" }

// Generate returns one chat completion for the prompt
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: llm.ClipPrompt(prompt, p.budget)},
		},
		MaxTokens: 300,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
