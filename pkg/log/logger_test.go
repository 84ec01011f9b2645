package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)
	ctx := logger.WithContext(context.Background())

	ctx = WithComponent(ctx, "chain")
	FromCtx(ctx).Info().Str("user_id", "u1").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "chain", entry["component"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, "hello", entry["message"])
}

func TestFromCtx_NoLogger(t *testing.T) {
	// zerolog returns a disabled logger when none is attached
	logger := FromCtx(context.Background())
	require.NotNil(t, logger)
	logger.Info().Msg("discarded")
}
