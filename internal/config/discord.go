package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/factbot/pkg/log"
)

type DiscordConfig struct {
	Token string `env:"BOT_TOKEN,required,notEmpty"`
	// Register slash commands in a single guild (instant) instead of globally
	GuildID string `env:"DISCORD_GUILD_ID"`
}

func NewDiscordConfig(ctx context.Context) *DiscordConfig {
	c := &DiscordConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Discord config")
	}
	return c
}
