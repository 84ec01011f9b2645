package llm

import (
	"context"

	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/pkg/log"
	"github.com/sandevgo/factbot/pkg/retry"
)

// Retrying retries transient provider failures (network errors, 429, 5xx).
type Retrying struct {
	next    core.AIProvider
	retrier *retry.Retrier
}

func NewRetrying(next core.AIProvider, retrier *retry.Retrier) *Retrying {
	return &Retrying{next: next, retrier: retrier}
}

func (r *Retrying) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	var out core.Message
	attempt := 0
	err := r.retrier.Do(ctx, func() error {
		attempt++
		msg, err := r.next.Chat(ctx, history)
		if err == nil {
			out = msg
			return nil
		}
		err = retry.Classify(ctx, err)
		if !retry.IsPermanent(err) {
			log.FromCtx(ctx).Warn().Err(err).Int("attempt", attempt).Msg("llm call failed, retrying")
		}
		return err
	})
	return out, err
}
