package command

import (
	"context"
	"errors"

	"github.com/sandevgo/factbot/internal/core"
)

type RestartCommand struct {
	conv      Conversation
	formatter Formatter
}

func NewRestartCommand(conv Conversation) *RestartCommand {
	return &RestartCommand{conv: conv}
}

func (c *RestartCommand) Name() string {
	return "restart"
}

func (c *RestartCommand) Description() string {
	return "Forget this conversation and start a new one"
}

func (c *RestartCommand) Execute(ctx context.Context, chat core.Chat, _ []string) (string, error) {
	err := c.conv.Restart(ctx, chat)
	if errors.Is(err, core.ErrNotFound) {
		return c.formatter.Heading("No conversation to restart") + "Just send a message to start one.", nil
	}
	if err != nil {
		return "", err
	}
	return c.formatter.Done("Conversation restarted") +
		c.formatter.Hint("what I learned about you is kept, ask /facts to see it"), nil
}
