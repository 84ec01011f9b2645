package chain

import (
	"time"

	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/internal/prompts"
)

const DefaultTopK = 10

type Options struct {
	// TopK bounds every similarity query
	TopK        int
	CallTimeout time.Duration
	Observer    Observer
	// Budget trims chat history before it is put into a prompt. Nil keeps all of it.
	Budget *Budget
}

func (o Options) topK() int {
	if o.TopK <= 0 {
		return DefaultTopK
	}
	return o.TopK
}

func (o Options) caller() caller {
	return caller{timeout: o.CallTimeout, observer: o.Observer}
}

// Chain bundles the four model-backed steps built from one provider and prompt set.
type Chain struct {
	Extractor    *Extractor
	Dedup        *DedupFilter
	Introspector *Introspector
	Responder    *Responder
}

func New(ai core.AIProvider, set *prompts.Set, opts Options) *Chain {
	return &Chain{
		Extractor:    NewExtractor(ai, set, opts),
		Dedup:        NewDedupFilter(ai, set, opts),
		Introspector: NewIntrospector(ai, set, opts),
		Responder:    NewResponder(ai, set, opts),
	}
}
