package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sandevgo/factbot/internal/core"
)

// Used when /facts is called without a query.
const defaultFactsQuery = "facts about the user"

type FactsCommand struct {
	conv      Conversation
	topK      int
	formatter Formatter
}

func NewFactsCommand(conv Conversation, topK int) *FactsCommand {
	return &FactsCommand{conv: conv, topK: topK}
}

func (c *FactsCommand) Name() string {
	return "facts"
}

func (c *FactsCommand) Description() string {
	return "Show what I remember about you"
}

func (c *FactsCommand) Execute(ctx context.Context, chat core.Chat, args []string) (string, error) {
	query := strings.Join(args, " ")
	if query == "" {
		query = defaultFactsQuery
	}

	docs, err := c.conv.Facts(ctx, chat.UserID, query, c.topK)
	if err != nil {
		return "", fmt.Errorf("load facts: %w", err)
	}

	if len(docs) == 0 {
		return c.formatter.Join(
			c.formatter.Heading("Nothing remembered yet"),
			c.formatter.Hint("tell me about yourself and I will keep notes"),
		), nil
	}

	items := lo.Map(docs, func(d core.Document, _ int) string {
		return d.Content
	})
	return c.formatter.Join(
		c.formatter.Heading(fmt.Sprintf("What I remember (%d)", len(items))),
		c.formatter.Numbered(items),
	), nil
}
