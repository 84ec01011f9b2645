package core

import "context"

type CmdRouter interface {
	Execute(ctx context.Context, chat Chat, input string) (string, bool)
	ListCommands() []Command
}

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, chat Chat, args []string) (string, error)
}
