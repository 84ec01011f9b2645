package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/internal/prompts"
	"github.com/sandevgo/factbot/internal/service/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMemory keeps sessions and facts in maps.
type fakeMemory struct {
	mu       sync.Mutex
	seq      int
	sessions []*core.Session
	messages map[string][]core.Turn
	facts    map[string]*fakeFacts
	listErr  error
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{
		messages: make(map[string][]core.Turn),
		facts:    make(map[string]*fakeFacts),
	}
}

func (m *fakeMemory) ListSessions(_ context.Context, userID, locationID string) ([]core.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	var out []core.Session
	for i := len(m.sessions) - 1; i >= 0; i-- {
		s := m.sessions[i]
		if s.UserID == userID && s.LocationID == locationID && s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *fakeMemory) CreateSession(_ context.Context, userID, locationID string) (core.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	s := &core.Session{ID: fmt.Sprintf("s%d", m.seq), UserID: userID, LocationID: locationID, Active: true}
	m.sessions = append(m.sessions, s)
	return *s, nil
}

func (m *fakeMemory) CloseSession(_ context.Context, session core.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == session.ID {
			s.Active = false
			return nil
		}
	}
	return core.ErrNotFound
}

func (m *fakeMemory) ListMessages(_ context.Context, session core.Session) ([]core.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Turn(nil), m.messages[session.ID]...), nil
}

func (m *fakeMemory) CreateMessage(_ context.Context, session core.Session, isUser bool, content string) (core.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := core.Turn{ID: fmt.Sprint(len(m.messages[session.ID])), IsUser: isUser, Content: content}
	m.messages[session.ID] = append(m.messages[session.ID], t)
	return t, nil
}

func (m *fakeMemory) Facts(_ context.Context, userID string) (core.FactStore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facts[userID]
	if !ok {
		f = &fakeFacts{}
		m.facts[userID] = f
	}
	return f, nil
}

type fakeFacts struct {
	mu   sync.Mutex
	docs []core.Document
}

func (f *fakeFacts) Query(_ context.Context, _ string, topK int) ([]core.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.docs) > topK {
		return append([]core.Document(nil), f.docs[:topK]...), nil
	}
	return append([]core.Document(nil), f.docs...), nil
}

func (f *fakeFacts) CreateDocument(_ context.Context, content string) (core.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := core.Document{ID: content, Content: content}
	f.docs = append(f.docs, d)
	return d, nil
}

// echoModel replies with the last message content, prefixed.
type echoModel struct {
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
	err      error
}

func (m *echoModel) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		seen := m.maxSeen.Load()
		if n <= seen || m.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return core.Message{}, m.err
	}
	return core.Message{Role: core.RoleAssistant, Content: "echo: " + history[len(history)-1].Content}, nil
}

func newService(t *testing.T, mem core.Memory, model core.AIProvider) *Service {
	t.Helper()
	set, err := prompts.Load(context.Background(), "")
	require.NoError(t, err)

	p, err := chain.Build([]string{chain.StageRespond}, chain.New(model, set, chain.Options{}))
	require.NoError(t, err)
	return NewService(mem, p)
}

func TestService_HandleMessage(t *testing.T) {
	mem := newFakeMemory()
	svc := newService(t, mem, &echoModel{})
	chat := core.Chat{UserID: "u1", LocationID: "c1"}

	reply, err := svc.HandleMessage(context.Background(), chat, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "echo: Hello", reply)

	reply, err = svc.HandleMessage(context.Background(), chat, "Again")
	require.NoError(t, err)
	assert.Equal(t, "echo: Again", reply)

	require.Len(t, mem.sessions, 1, "an open session is reused")
	assert.Equal(t, []core.Turn{
		{ID: "0", IsUser: true, Content: "Hello"},
		{ID: "1", IsUser: false, Content: "echo: Hello"},
		{ID: "2", IsUser: true, Content: "Again"},
		{ID: "3", IsUser: false, Content: "echo: Again"},
	}, mem.messages["s1"])
}

func TestService_RestartStartsNewSession(t *testing.T) {
	mem := newFakeMemory()
	svc := newService(t, mem, &echoModel{})
	chat := core.Chat{UserID: "u1", LocationID: "c1"}
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, chat, "first")
	require.NoError(t, err)

	require.NoError(t, svc.Restart(ctx, chat))
	assert.False(t, mem.sessions[0].Active)

	_, err = svc.HandleMessage(ctx, chat, "second")
	require.NoError(t, err)

	require.Len(t, mem.sessions, 2)
	assert.True(t, mem.sessions[1].Active)
	assert.Len(t, mem.messages["s1"], 2)
	assert.Len(t, mem.messages["s2"], 2)
}

func TestService_RestartWithoutSession(t *testing.T) {
	svc := newService(t, newFakeMemory(), &echoModel{})

	err := svc.Restart(context.Background(), core.Chat{UserID: "u1", LocationID: "c1"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_SessionsAreScopedPerLocation(t *testing.T) {
	mem := newFakeMemory()
	svc := newService(t, mem, &echoModel{})
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, core.Chat{UserID: "u1", LocationID: "c1"}, "a")
	require.NoError(t, err)
	_, err = svc.HandleMessage(ctx, core.Chat{UserID: "u1", LocationID: "c2"}, "b")
	require.NoError(t, err)

	assert.Len(t, mem.sessions, 2)
}

func TestService_HandleMessage_Failures(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		mem := newFakeMemory()
		mem.listErr = errors.New("memory service down")
		svc := newService(t, mem, &echoModel{})

		_, err := svc.HandleMessage(context.Background(), core.Chat{UserID: "u", LocationID: "c"}, "hi")
		assert.ErrorIs(t, err, core.ErrExternalCall)
	})

	t.Run("model", func(t *testing.T) {
		mem := newFakeMemory()
		svc := newService(t, mem, &echoModel{err: errors.New("quota")})

		_, err := svc.HandleMessage(context.Background(), core.Chat{UserID: "u", LocationID: "c"}, "hi")
		assert.ErrorIs(t, err, core.ErrExternalCall)
		// only the user turn is stored
		assert.Len(t, mem.messages["s1"], 1)
	})
}

func TestService_SerializesSameChat(t *testing.T) {
	model := &echoModel{delay: 10 * time.Millisecond}
	svc := newService(t, newFakeMemory(), model)
	chat := core.Chat{UserID: "u1", LocationID: "c1"}

	var wg sync.WaitGroup
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.HandleMessage(context.Background(), chat, fmt.Sprint(i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), model.maxSeen.Load())
	assert.Zero(t, svc.locks.size())
}

func TestService_ConcurrentChats(t *testing.T) {
	model := &echoModel{delay: 50 * time.Millisecond}
	svc := newService(t, newFakeMemory(), model)

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chat := core.Chat{UserID: fmt.Sprint("u", i), LocationID: "c"}
			_, err := svc.HandleMessage(context.Background(), chat, "hi")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Greater(t, model.maxSeen.Load(), int32(1))
}

func TestService_Facts(t *testing.T) {
	mem := newFakeMemory()
	store, _ := mem.Facts(context.Background(), "u1")
	_, _ = store.CreateDocument(context.Background(), "Lives in Boston")

	svc := newService(t, mem, &echoModel{})

	got, err := svc.Facts(context.Background(), "u1", "where", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lives in Boston", got[0].Content)

	got, err = svc.Facts(context.Background(), "u2", "where", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
