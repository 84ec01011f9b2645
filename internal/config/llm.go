package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/factbot/pkg/log"
)

type LLMConfig struct {
	Provider string `env:"FACTBOT_LLM_PROVIDER" envDefault:"openai"`
	Model    string `env:"FACTBOT_LLM_MODEL" envDefault:"gpt-4o-mini"`

	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`

	OllamaBaseURL string `env:"FACTBOT_OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaAPIKey  string `env:"FACTBOT_OLLAMA_API_KEY"`

	CustomBaseURL string `env:"FACTBOT_CUSTOM_BASE_URL"`
	CustomAPIKey  string `env:"FACTBOT_CUSTOM_API_KEY"`

	// Transient failures are retried this many times per call
	MaxRetries int `env:"FACTBOT_LLM_RETRIES" envDefault:"3"`
	MaxTokens  int `env:"FACTBOT_LLM_MAX_TOKENS" envDefault:"1024"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}

func (c LLMConfig) GetProvider() string {
	return c.Provider
}

func (c LLMConfig) GetModel() string {
	return c.Model
}
