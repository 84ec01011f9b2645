package command

import (
	"context"

	"github.com/sandevgo/factbot/internal/core"
)

type ModelCommand struct {
	cfg       core.ProviderConfig
	formatter Formatter
}

func NewModelCommand(cfg core.ProviderConfig) *ModelCommand {
	return &ModelCommand{
		cfg: cfg,
	}
}

func (c *ModelCommand) Name() string {
	return "model"
}

func (c *ModelCommand) Description() string {
	return "Show the current model"
}

func (c *ModelCommand) Execute(_ context.Context, _ core.Chat, _ []string) (string, error) {
	return c.formatter.Join(
		c.formatter.Heading("Current Model"),
		c.formatter.Field("Provider", c.cfg.GetProvider()),
		c.formatter.Field("Model", c.cfg.GetModel()),
		c.formatter.Hint("the model is set with FACTBOT_LLM_PROVIDER and FACTBOT_LLM_MODEL"),
	), nil
}
