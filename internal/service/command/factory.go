package command

import (
	"context"

	"github.com/sandevgo/factbot/internal/core"
)

// Conversation is the part of the conversation service commands act on.
type Conversation interface {
	Restart(ctx context.Context, chat core.Chat) error
	Facts(ctx context.Context, userID, query string, topK int) ([]core.Document, error)
}

func NewCommands(cfg core.ProviderConfig, conv Conversation, topK int) []core.Command {
	return []core.Command{
		NewRestartCommand(conv),
		NewFactsCommand(conv, topK),
		NewModelCommand(cfg),
	}
}
