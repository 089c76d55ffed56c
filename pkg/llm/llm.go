// Package llm provides generative-text providers behind a small interface
package llm

import (
	"context"
	"log"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Provider produces a generated reply for a prompt.
// Errors are recoverable: callers fall back to local canned responses.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Global tiktoken tokenizer for prompt budgeting (cl100k_base)
var (
	tokenizer     *tiktoken.Tiktoken
	tokenizerErr  error
	tokenizerOnce sync.Once
)

func getTokenizer() *tiktoken.Tiktoken {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = tiktoken.GetEncoding("cl100k_base")
		if tokenizerErr != nil {
			log.Printf("[LLM] Tokenizer unavailable, using rune-based clipping: %v", tokenizerErr)
		}
	})
	return tokenizer
}

// ClipPrompt truncates a prompt to at most budget tokens. When the
// tokenizer cannot be loaded it approximates with 4 runes per token.
func ClipPrompt(prompt string, budget int) string {
	if budget <= 0 {
		return prompt
	}

	enc := getTokenizer()
	if enc == nil {
		runes := []rune(prompt)
		if max := budget * 4; len(runes) > max {
			return string(runes[:max])
		}
		return prompt
	}

	tokens := enc.Encode(prompt, nil, nil)
	if len(tokens) <= budget {
		return prompt
	}
	return enc.Decode(tokens[:budget])
}
