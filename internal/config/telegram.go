package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/factbot/pkg/log"
)

// TelegramConfig serves a single owner; messages from anyone else are ignored.
type TelegramConfig struct {
	Token       string        `env:"TELEGRAM_TOKEN,required,notEmpty"`
	OwnerID     int64         `env:"TELEGRAM_OWNER_ID,required"`
	PollTimeout time.Duration `env:"TELEGRAM_POLL_TIMEOUT" envDefault:"10s"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}
