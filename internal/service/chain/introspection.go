package chain

import (
	"context"
	"fmt"

	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/internal/prompts"
)

// Introspector asks the model which questions about the user would help the reply.
type Introspector struct {
	ai      core.AIProvider
	prompts *prompts.Set
	call    caller
	budget  *Budget
}

func NewIntrospector(ai core.AIProvider, set *prompts.Set, opts Options) *Introspector {
	return &Introspector{ai: ai, prompts: set, call: opts.caller(), budget: opts.Budget}
}

func (i *Introspector) Questions(ctx context.Context, history []core.Message, input string) ([]string, error) {
	prompt, err := i.prompts.Render(prompts.Introspection, map[string]string{
		prompts.VarChatHistory: FormatHistory(i.budget.Trim(history)),
		prompts.VarUserInput:   input,
	})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", prompts.Introspection, err)
	}

	out, err := i.call.complete(ctx, i.ai, prompts.Introspection, []core.Message{
		{Role: core.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	questions, err := ParseNumberedList(out)
	if err != nil {
		return nil, fmt.Errorf("introspection: %w", err)
	}
	return questions, nil
}
