package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/graphrag/internal/config"
)

// NewClient builds the provider named by cfg.Provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	provider := strings.ToLower(cfg.Provider)
	defaults := GenerateOptions{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, defaults), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, defaults)

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.BaseURL, defaults), nil

	case "ollama":
		return NewOllamaClient(cfg.BaseURL, defaults)

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
