package chain

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/factbot/internal/core"
)

// per-message overhead of the chat format
const messageOverhead = 4

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

// TokenCounter returns the number of tokens in text.
type TokenCounter func(text string) int

// CL100K counts tokens with the cl100k_base encoding. When the encoding
// cannot be loaded it falls back to one token per four bytes.
func CL100K() TokenCounter {
	encOnce.Do(func() {
		enc, encErr = tiktoken.GetEncoding("cl100k_base")
	})
	if encErr != nil {
		return func(text string) int { return (len(text) + 3) / 4 }
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}
}

// Budget keeps the most recent messages that fit into a token limit.
type Budget struct {
	limit int
	count TokenCounter
}

func NewBudget(limit int, count TokenCounter) *Budget {
	return &Budget{limit: limit, count: count}
}

// Trim drops messages from the oldest side until the rest fits.
// A non-positive limit keeps everything.
func (b *Budget) Trim(history []core.Message) []core.Message {
	if b == nil || b.limit <= 0 || len(history) == 0 {
		return history
	}

	used := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := b.count(history[i].Content) + messageOverhead
		if used+cost > b.limit {
			break
		}
		used += cost
		start = i
	}
	return history[start:]
}
