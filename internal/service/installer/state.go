package installer

import (
	"slices"

	"github.com/sandevgo/factbot/internal/config"
)

// Settings is what the wizard collects. Field tags mirror the env names read by internal/config.
type Settings struct {
	Provider         string   `env:"FACTBOT_LLM_PROVIDER"`
	Model            string   `env:"FACTBOT_LLM_MODEL"`
	OpenAIAPIKey     string   `env:"OPENAI_API_KEY"`
	AnthropicAPIKey  string   `env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey string   `env:"OPENROUTER_API_KEY"`
	OllamaAPIKey     string   `env:"FACTBOT_OLLAMA_API_KEY"`
	Memory           string   `env:"FACTBOT_MEMORY"`
	HonchoAPIKey     string   `env:"HONCHO_API_KEY"`
	Transports       []string `env:"FACTBOT_TRANSPORTS" envSeparator:","`
	DiscordToken     string   `env:"BOT_TOKEN"`
	TelegramToken    string   `env:"TELEGRAM_TOKEN"`
	TelegramOwnerID  int64    `env:"TELEGRAM_OWNER_ID"`
}

type InstallState struct {
	Settings    Settings
	RuntimePath string
}

func NewInstallState() *InstallState {
	return &InstallState{
		RuntimePath: config.GetRuntimePath(),
	}
}

func (s *InstallState) usesTransport(name string) bool {
	return slices.Contains(s.Settings.Transports, name)
}
