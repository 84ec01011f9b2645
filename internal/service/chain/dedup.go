package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/internal/prompts"
	"github.com/sandevgo/factbot/pkg/log"
)

// DedupFilter persists only the candidate facts the model judges new
// relative to the nearest stored facts.
type DedupFilter struct {
	ai      core.AIProvider
	prompts *prompts.Set
	call    caller
	topK    int
}

func NewDedupFilter(ai core.AIProvider, set *prompts.Set, opts Options) *DedupFilter {
	return &DedupFilter{ai: ai, prompts: set, call: opts.caller(), topK: opts.topK()}
}

// Filter returns the facts it wrote. Nothing is written unless both the
// store query and the model call succeed. A store without batch writes keeps
// the facts stored before a failing write, and those come back with the error.
func (d *DedupFilter) Filter(ctx context.Context, store core.FactStore, candidates []string) ([]string, error) {
	logger := log.FromCtx(ctx)

	candidates = normalizeFacts(candidates)
	if len(candidates) == 0 {
		return []string{}, nil
	}

	existing, err := d.call.query(ctx, store, strings.Join(candidates, "\n"), d.topK)
	if err != nil {
		return nil, err
	}
	existingFacts := contents(existing)

	prompt, err := d.prompts.Render(prompts.CheckDupFacts, map[string]string{
		prompts.VarExistingFacts: FormatFacts(existingFacts),
		prompts.VarFacts:         FormatFacts(candidates),
	})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", prompts.CheckDupFacts, err)
	}

	out, err := d.call.complete(ctx, d.ai, prompts.CheckDupFacts, []core.Message{
		{Role: core.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	judged, err := ParseNumberedList(out)
	if err != nil {
		return nil, fmt.Errorf("check duplicates: %w", err)
	}

	known := lo.SliceToMap(existingFacts, func(f string) (string, struct{}) {
		return f, struct{}{}
	})
	fresh := lo.Filter(normalizeFacts(judged), func(f string, _ int) bool {
		_, dup := known[f]
		return !dup
	})

	if dropped := len(judged) - len(fresh); dropped > 0 {
		logger.Debug().Int("dropped", dropped).Msg("model kept facts that are already stored")
	}
	if len(fresh) == 0 {
		return []string{}, nil
	}

	written, err := d.persist(ctx, store, fresh)
	if err != nil {
		return written, err
	}

	logger.Info().Int("count", len(written)).Msg("new facts stored")
	return written, nil
}

func (d *DedupFilter) persist(ctx context.Context, store core.FactStore, facts []string) ([]string, error) {
	if batch, ok := store.(core.BatchFactStore); ok {
		err := d.call.run(ctx, targetStore, "create_documents", func(ctx context.Context) error {
			_, err := batch.CreateDocuments(ctx, facts)
			return err
		})
		if err != nil {
			return []string{}, err
		}
		return facts, nil
	}

	written := make([]string, 0, len(facts))
	for _, f := range facts {
		err := d.call.run(ctx, targetStore, "create_document", func(ctx context.Context) error {
			_, err := store.CreateDocument(ctx, f)
			return err
		})
		if err != nil {
			return written, err
		}
		written = append(written, f)
	}
	return written, nil
}

// normalizeFacts trims entries and drops blanks and repeats, keeping first-seen order.
func normalizeFacts(facts []string) []string {
	trimmed := lo.Map(facts, func(f string, _ int) string {
		return strings.TrimSpace(f)
	})
	return lo.Uniq(lo.Compact(trimmed))
}

func contents(docs []core.Document) []string {
	return lo.Map(docs, func(d core.Document, _ int) string {
		return d.Content
	})
}
