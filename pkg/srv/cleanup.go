package srv

import (
	"context"
	"fmt"

	"github.com/sandevgo/factbot/pkg/log"
)

// Cleanup releases a resource (a database handle, a client) when services stop.
type Cleanup struct {
	name    string
	release func() error
}

func NewCleanup(name string, fn func() error) *Cleanup {
	return &Cleanup{name: name, release: fn}
}

func (c *Cleanup) Start(ctx context.Context) error {
	return nil
}

func (c *Cleanup) Shutdown(ctx context.Context) error {
	if c.release == nil {
		return nil
	}
	if err := c.release(); err != nil {
		return fmt.Errorf("release %s: %w", c.name, err)
	}
	log.FromCtx(ctx).Debug().Str("resource", c.name).Msg("released")
	return nil
}
