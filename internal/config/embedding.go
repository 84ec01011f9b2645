package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/factbot/pkg/log"
)

// EmbeddingConfig configures the OpenAI-compatible embeddings endpoint used by the local fact store.
type EmbeddingConfig struct {
	BaseURL string `env:"FACTBOT_EMBEDDING_BASE_URL" envDefault:"https://api.openai.com/v1"`
	APIKey  string `env:"OPENAI_API_KEY"`
	Model   string `env:"FACTBOT_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	Dims    int    `env:"FACTBOT_EMBEDDING_DIMS" envDefault:"1536"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	c := &EmbeddingConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Embedding config")
	}
	return c
}
