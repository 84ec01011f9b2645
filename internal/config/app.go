package config

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/factbot/pkg/log"
)

const (
	MemorySQLite = "sqlite"
	MemoryHoncho = "honcho"

	TransportDiscord  = "discord"
	TransportTelegram = "telegram"
)

type AppConfig struct {
	RuntimePath string `env:"FACTBOT_RUNTIME_PATH"`

	// Memory backend: sqlite (local) or honcho (remote service)
	MemoryBackend string `env:"FACTBOT_MEMORY" envDefault:"sqlite"`

	// Chat surfaces to start
	Transports []string `env:"FACTBOT_TRANSPORTS" envSeparator:"," envDefault:"discord"`

	// Orchestration
	TopK               int           `env:"FACTBOT_TOP_K" envDefault:"10"`
	CallTimeout        time.Duration `env:"FACTBOT_CALL_TIMEOUT" envDefault:"60s"`
	HistoryTokenBudget int           `env:"FACTBOT_HISTORY_TOKENS" envDefault:"3000"`
	Pipeline           []string      `env:"FACTBOT_PIPELINE" envSeparator:"," envDefault:"respond,derive_facts"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	if c.RuntimePath == "" {
		c.RuntimePath = GetRuntimePath()
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "factbot.db")
}

func (c AppConfig) GetPromptsPath() string {
	return filepath.Join(c.RuntimePath, "prompts")
}

func (c AppConfig) GetTopK() int {
	return c.TopK
}

func (c AppConfig) GetCallTimeout() time.Duration {
	return c.CallTimeout
}

func (c AppConfig) GetHistoryTokenBudget() int {
	return c.HistoryTokenBudget
}

func (c AppConfig) GetPipeline() []string {
	return c.Pipeline
}

func (c AppConfig) IsTransportSelected(name string) bool {
	return slices.Contains(c.Transports, name)
}
