package llm

import (
	"strings"
	"testing"
)

func TestClipPromptShortUnchanged(t *testing.T) {
	prompt := "你好，請簡短回覆。"
	if got := ClipPrompt(prompt, 1024); got != prompt {
		t.Errorf("short prompt must pass through unchanged, got %q", got)
	}
}

func TestClipPromptZeroBudget(t *testing.T) {
	prompt := strings.Repeat("word ", 1000)
	if got := ClipPrompt(prompt, 0); got != prompt {
		t.Error("zero budget disables clipping")
	}
}

func TestClipPromptTruncatesLong(t *testing.T) {
	prompt := strings.Repeat("hello world ", 2000)
	got := ClipPrompt(prompt, 16)
	if len(got) >= len(prompt) {
		t.Errorf("expected truncation, got %d chars from %d", len(got), len(prompt))
	}
	if !strings.HasPrefix(prompt, got) {
		t.Error("clipped prompt must be a prefix of the original")
	}
}
