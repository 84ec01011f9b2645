package chain

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/pkg/log"
	"golang.org/x/sync/errgroup"
)

const (
	StageIntrospect  = "introspect"
	StageRespond     = "respond"
	StageDeriveFacts = "derive_facts"
)

var ErrInvalidPipeline = errors.New("invalid pipeline")

// DefaultPipeline answers first and learns from the message afterwards.
var DefaultPipeline = []string{StageRespond, StageDeriveFacts}

// Run carries one message through the pipeline.
type Run struct {
	Store   core.FactStore
	History []core.Message
	Input   string

	Questions []string
	Recalled  []string
	Reply     string
	NewFacts  []string

	// Failed holds errors of best-effort stages, by stage name.
	Failed map[string]error
}

type Stage interface {
	Name() string
	// Required stages abort the run when they fail.
	Required() bool
	Run(ctx context.Context, run *Run) error
}

type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Build assembles the named stages in order. The respond stage is mandatory
// and introspect, when present, has to come before it.
func Build(names []string, c *Chain) (*Pipeline, error) {
	names = lo.Map(names, func(n string, _ int) string {
		return strings.ToLower(strings.TrimSpace(n))
	})
	names = lo.Compact(names)

	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return nil, fmt.Errorf("%w: repeated stages %v", ErrInvalidPipeline, dups)
	}

	respondAt := slices.Index(names, StageRespond)
	if respondAt < 0 {
		return nil, fmt.Errorf("%w: %q stage is required", ErrInvalidPipeline, StageRespond)
	}
	if at := slices.Index(names, StageIntrospect); at > respondAt {
		return nil, fmt.Errorf("%w: %q must run before %q", ErrInvalidPipeline, StageIntrospect, StageRespond)
	}

	stages := make([]Stage, 0, len(names))
	for _, name := range names {
		switch name {
		case StageIntrospect:
			stages = append(stages, &introspectStage{introspector: c.Introspector, call: c.Responder.call, topK: c.Responder.topK})
		case StageRespond:
			stages = append(stages, &respondStage{responder: c.Responder})
		case StageDeriveFacts:
			stages = append(stages, &deriveFactsStage{extractor: c.Extractor, dedup: c.Dedup})
		default:
			return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidPipeline, name)
		}
	}
	return NewPipeline(stages...), nil
}

func (p *Pipeline) Names() []string {
	return lo.Map(p.stages, func(s Stage, _ int) string {
		return s.Name()
	})
}

// Execute runs every stage in order. Failures of best-effort stages are
// logged and kept in run.Failed; a required stage failure is returned.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	logger := log.FromCtx(ctx)

	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := stage.Run(ctx, run)
		if err == nil {
			continue
		}
		if stage.Required() {
			return fmt.Errorf("%s: %w", stage.Name(), err)
		}

		logger.Warn().Err(err).Str("stage", stage.Name()).Msg("memory stage failed")
		if run.Failed == nil {
			run.Failed = make(map[string]error)
		}
		run.Failed[stage.Name()] = err
	}
	return nil
}

type respondStage struct {
	responder *Responder
}

func (s *respondStage) Name() string   { return StageRespond }
func (s *respondStage) Required() bool { return true }

func (s *respondStage) Run(ctx context.Context, run *Run) error {
	reply, err := s.responder.RespondWith(ctx, run.Store, run.History, run.Input, run.Recalled)
	if err != nil {
		return err
	}
	run.Reply = reply
	return nil
}

type deriveFactsStage struct {
	extractor *Extractor
	dedup     *DedupFilter
}

func (s *deriveFactsStage) Name() string   { return StageDeriveFacts }
func (s *deriveFactsStage) Required() bool { return false }

func (s *deriveFactsStage) Run(ctx context.Context, run *Run) error {
	candidates, err := s.extractor.Extract(ctx, run.Input)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	written, err := s.dedup.Filter(ctx, run.Store, candidates)
	run.NewFacts = append(run.NewFacts, written...)
	return err
}

// introspectStage turns model questions into parallel fact lookups.
type introspectStage struct {
	introspector *Introspector
	call         caller
	topK         int
}

func (s *introspectStage) Name() string   { return StageIntrospect }
func (s *introspectStage) Required() bool { return false }

func (s *introspectStage) Run(ctx context.Context, run *Run) error {
	questions, err := s.introspector.Questions(ctx, run.History, run.Input)
	if err != nil {
		return err
	}
	run.Questions = questions
	if len(questions) == 0 {
		return nil
	}

	recalled := make([][]string, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range questions {
		g.Go(func() error {
			docs, err := s.call.query(gctx, run.Store, q, s.topK)
			if err != nil {
				return err
			}
			recalled[i] = contents(docs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	run.Recalled = lo.Uniq(append(run.Recalled, lo.Flatten(recalled)...))
	return nil
}
