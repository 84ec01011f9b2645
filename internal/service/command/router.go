package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/pkg/log"
)

type Router struct {
	commands  map[string]core.Command
	formatter Formatter
}

func New(commands []core.Command) *Router {
	c := &Router{
		commands: make(map[string]core.Command),
	}

	for _, cmd := range commands {
		c.commands[cmd.Name()] = cmd
	}
	c.commands["help"] = NewHelpCommand(c.ListCommands)
	return c
}

// Execute runs input as a command. The bool reports whether input was a command at all.
func (c *Router) Execute(ctx context.Context, chat core.Chat, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", false
	}

	parts := strings.Fields(input)
	name := strings.TrimPrefix(parts[0], "/")
	// "/restart@factbot" addresses a specific bot in group chats
	name, _, _ = strings.Cut(name, "@")
	args := parts[1:]

	cmd, ok := c.commands[strings.ToLower(name)]
	if !ok {
		return fmt.Sprintf("Unknown command: /%s. Try /help", name), true
	}

	result, err := cmd.Execute(ctx, chat, args)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			log.FromCtx(ctx).Error().Err(err).Str("command", cmd.Name()).Msg("command failed")
		}
		return c.formatter.Failure(cmd.Name(), err), true
	}
	return result, true
}

// ListCommands returns the registered commands sorted by name.
func (c *Router) ListCommands() []core.Command {
	res := make([]core.Command, 0, len(c.commands))
	for _, cmd := range c.commands {
		res = append(res, cmd)
	}
	slices.SortFunc(res, func(a, b core.Command) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return res
}
