// Package llm adapts chat models reached through langchaingo to the
// engine's inference contracts.
package llm

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"quizforge/internal/config"
)

// NewModel builds the langchaingo model named by cfg.
func NewModel(cfg config.ModelConfig) (llms.Model, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%s model name cannot be empty", cfg.Source)
	}

	switch cfg.Source {
	case config.SourceOllama:
		if cfg.URL == "" {
			return nil, fmt.Errorf("ollama server URL cannot be empty")
		}
		llm, err := ollama.New(ollama.WithModel(cfg.Model), ollama.WithServerURL(cfg.URL))
		if err != nil {
			return nil, fmt.Errorf("failed to create LangchainGo Ollama client: %w", err)
		}
		return llm, nil
	case config.SourceOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai API key cannot be empty")
		}
		opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model)}
		if cfg.URL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.URL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create LangchainGo OpenAI client: %w", err)
		}
		return llm, nil
	}
	return nil, fmt.Errorf("unsupported llm source %q", cfg.Source)
}

// stripThinking removes a <think>...</think> block some reasoning models
// emit before their answer.
func stripThinking(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "<think>")
	if start == -1 {
		return s
	}
	end := strings.Index(s, "</think>")
	if end == -1 || end < start {
		return s
	}
	return strings.TrimSpace(s[:start] + s[end+len("</think>"):])
}

// extractJSONObject returns the outermost {...} span of s.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
