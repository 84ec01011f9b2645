package chain

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/internal/prompts"
)

// Responder writes the reply from recalled facts and the conversation so far.
type Responder struct {
	ai      core.AIProvider
	prompts *prompts.Set
	call    caller
	topK    int
	budget  *Budget
}

func NewResponder(ai core.AIProvider, set *prompts.Set, opts Options) *Responder {
	return &Responder{ai: ai, prompts: set, call: opts.caller(), topK: opts.topK(), budget: opts.Budget}
}

// Respond returns the raw model text.
func (r *Responder) Respond(ctx context.Context, store core.FactStore, history []core.Message, input string) (string, error) {
	return r.RespondWith(ctx, store, history, input, nil)
}

// RespondWith is Respond with facts recalled elsewhere added to the prompt.
func (r *Responder) RespondWith(ctx context.Context, store core.FactStore, history []core.Message, input string, recalled []string) (string, error) {
	docs, err := r.call.query(ctx, store, input, r.topK)
	if err != nil {
		return "", err
	}
	facts := lo.Uniq(append(contents(docs), recalled...))

	system, err := r.prompts.Render(prompts.Response, map[string]string{
		prompts.VarFacts: FormatFacts(facts),
	})
	if err != nil {
		return "", fmt.Errorf("render %s: %w", prompts.Response, err)
	}

	trimmed := r.budget.Trim(history)
	msgs := make([]core.Message, 0, len(trimmed)+2)
	msgs = append(msgs, core.Message{Role: core.RoleSystem, Content: system})
	msgs = append(msgs, trimmed...)
	msgs = append(msgs, core.Message{Role: core.RoleUser, Content: input})

	return r.call.complete(ctx, r.ai, prompts.Response, msgs)
}
