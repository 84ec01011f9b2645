package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/factbot/pkg/log"
)

type HonchoConfig struct {
	BaseURL    string `env:"HONCHO_BASE_URL" envDefault:"https://demo.honcho.dev"`
	APIKey     string `env:"HONCHO_API_KEY"`
	AppName    string `env:"HONCHO_APP_NAME" envDefault:"factbot"`
	Collection string `env:"HONCHO_COLLECTION" envDefault:"facts"`
	PageSize   int    `env:"HONCHO_PAGE_SIZE" envDefault:"50"`
}

func NewHonchoConfig(ctx context.Context) *HonchoConfig {
	c := &HonchoConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Honcho config")
	}
	return c
}
