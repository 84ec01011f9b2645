package chain

import (
	"context"
	"time"

	"github.com/sandevgo/factbot/internal/core"
)

const (
	targetLLM   = "llm"
	targetStore = "store"
)

// Observer receives the outcome of every external call.
type Observer interface {
	Observe(target, op string, started time.Time, err error)
}

// caller bounds and classifies external calls.
type caller struct {
	timeout  time.Duration
	observer Observer
}

func (c caller) run(ctx context.Context, target, op string, fn func(context.Context) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	err := core.ExternalCallError(target+" "+op, fn(ctx))
	if c.observer != nil {
		c.observer.Observe(target, op, started, err)
	}
	return err
}

func (c caller) complete(ctx context.Context, ai core.AIProvider, op string, msgs []core.Message) (string, error) {
	var reply core.Message
	err := c.run(ctx, targetLLM, op, func(ctx context.Context) error {
		var err error
		reply, err = ai.Chat(ctx, msgs)
		return err
	})
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

func (c caller) query(ctx context.Context, store core.FactStore, text string, topK int) ([]core.Document, error) {
	var docs []core.Document
	err := c.run(ctx, targetStore, "query", func(ctx context.Context) error {
		var err error
		docs, err = store.Query(ctx, text, topK)
		return err
	})
	return docs, err
}
