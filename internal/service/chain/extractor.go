package chain

import (
	"context"
	"fmt"

	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/internal/prompts"
	"github.com/sandevgo/factbot/pkg/log"
)

// Extractor derives candidate facts from a single user message.
type Extractor struct {
	ai      core.AIProvider
	prompts *prompts.Set
	call    caller
}

func NewExtractor(ai core.AIProvider, set *prompts.Set, opts Options) *Extractor {
	return &Extractor{ai: ai, prompts: set, call: opts.caller()}
}

func (e *Extractor) Extract(ctx context.Context, input string) ([]string, error) {
	prompt, err := e.prompts.Render(prompts.DeriveFacts, map[string]string{
		prompts.VarUserInput: input,
	})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", prompts.DeriveFacts, err)
	}

	out, err := e.call.complete(ctx, e.ai, prompts.DeriveFacts, []core.Message{
		{Role: core.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	facts, err := ParseNumberedList(out)
	if err != nil {
		return nil, fmt.Errorf("derive facts: %w", err)
	}

	log.FromCtx(ctx).Debug().Int("count", len(facts)).Msg("candidate facts derived")
	return facts, nil
}
