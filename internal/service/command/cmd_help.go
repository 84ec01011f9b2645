package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/factbot/internal/core"
)

type HelpCommand struct {
	list      func() []core.Command
	formatter Formatter
}

func NewHelpCommand(list func() []core.Command) *HelpCommand {
	return &HelpCommand{list: list}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "List available commands"
}

func (c *HelpCommand) Execute(_ context.Context, _ core.Chat, _ []string) (string, error) {
	var items []string
	for _, cmd := range c.list() {
		items = append(items, fmt.Sprintf("/%s - %s", cmd.Name(), cmd.Description()))
	}
	return c.formatter.Join(
		c.formatter.Heading("Commands"),
		c.formatter.Bullets(items),
	), nil
}
