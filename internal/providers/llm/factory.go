package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/factbot/internal/config"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/pkg/log"
	"github.com/sandevgo/factbot/pkg/retry"
)

// NewProvider creates the AIProvider selected by configuration, wrapped with retries.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	var provider core.AIProvider
	switch cfg.Provider {
	case "openai":
		provider = NewOpenAI(OpenAIOptions{
			BaseURL:   "https://api.openai.com/v1",
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
	case "anthropic":
		provider = NewAnthropic(cfg.AnthropicAPIKey, cfg.Model, cfg.MaxTokens)
	case "openrouter":
		provider = NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Model, cfg.MaxTokens)
	case "ollama":
		provider = NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.Model, cfg.MaxTokens)
	case "custom":
		if cfg.CustomBaseURL == "" {
			return nil, fmt.Errorf("custom llm provider needs FACTBOT_CUSTOM_BASE_URL")
		}
		provider = NewCustomOpenAI(cfg.CustomBaseURL, cfg.CustomAPIKey, cfg.Model, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}

	retryCfg := retry.NewDefaultConfig()
	retryCfg.MaxRetries = cfg.MaxRetries
	return NewRetrying(provider, retry.NewRetrier(retryCfg)), nil
}
