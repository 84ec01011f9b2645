package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/factbot/pkg/log"
)

type MetricsConfig struct {
	// Empty disables the /metrics endpoint
	Addr string `env:"FACTBOT_METRICS_ADDR"`
}

func NewMetricsConfig(ctx context.Context) *MetricsConfig {
	c := &MetricsConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Metrics config")
	}
	return c
}
