package chain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/internal/prompts"
	"github.com/stretchr/testify/require"
)

// stubModel answers with scripted replies in call order.
type stubModel struct {
	mu      sync.Mutex
	replies []string
	err     error
	block   bool
	calls   [][]core.Message
}

func (m *stubModel) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	m.mu.Lock()
	m.calls = append(m.calls, history)
	if m.block {
		m.mu.Unlock()
		<-ctx.Done()
		return core.Message{}, ctx.Err()
	}
	defer m.mu.Unlock()

	if m.err != nil {
		return core.Message{}, m.err
	}
	if len(m.replies) == 0 {
		return core.Message{}, errors.New("stub model: no reply scripted")
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return core.Message{Role: core.RoleAssistant, Content: reply}, nil
}

func (m *stubModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// stubStore returns fixed documents, or per-query documents when byQuery is set.
// createErr is returned once failAfter documents have been created.
type stubStore struct {
	mu        sync.Mutex
	docs      []core.Document
	byQuery   map[string][]core.Document
	queryErr  error
	createErr error
	failAfter int
	queries   []string
	topKs     []int
	created   []string
}

func (s *stubStore) Query(_ context.Context, text string, topK int) ([]core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, text)
	s.topKs = append(s.topKs, topK)
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if s.byQuery != nil {
		return s.byQuery[text], nil
	}
	return s.docs, nil
}

func (s *stubStore) CreateDocument(_ context.Context, content string) (core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil && len(s.created) >= s.failAfter {
		return core.Document{}, s.createErr
	}
	s.created = append(s.created, content)
	return core.Document{ID: content, Content: content, CreatedAt: time.Now()}, nil
}

type batchStore struct {
	stubStore
	batches [][]string
}

func (s *batchStore) CreateDocuments(_ context.Context, contents []string) ([]core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return nil, s.createErr
	}
	s.batches = append(s.batches, contents)
	s.created = append(s.created, contents...)
	docs := make([]core.Document, len(contents))
	for i, c := range contents {
		docs[i] = core.Document{ID: c, Content: c}
	}
	return docs, nil
}

type observation struct {
	target, op string
	err        error
}

type recordingObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingObserver) Observe(target, op string, _ time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{target: target, op: op, err: err})
}

func docs(contents ...string) []core.Document {
	out := make([]core.Document, len(contents))
	for i, c := range contents {
		out[i] = core.Document{ID: c, Content: c}
	}
	return out
}

func loadPrompts(t *testing.T) *prompts.Set {
	t.Helper()
	set, err := prompts.Load(context.Background(), "")
	require.NoError(t, err)
	return set
}
